// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package contracts tracks which addresses belong to deployed components.
// Construction of every component checks its collaborators against the
// registry, mirroring the "is a contract" checks of an on-chain deployment.
package contracts

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/PedroGalveias/OwkenERC20/types"
)

var ErrUnknownContract = errors.New("unknown contract")

// Deployment records a single deployed component
type Deployment struct {
	Name     string        `json:"name"`
	Address  types.Address `json:"address"`
	Deployer types.Address `json:"deployer"`
	Nonce    uint64        `json:"nonce"`
}

// Registry hands out deterministic addresses and answers IsContract
type Registry struct {
	mu          sync.RWMutex
	deployments map[types.Address]Deployment
	nonces      map[types.Address]uint64
}

func NewRegistry() *Registry {
	return &Registry{
		deployments: make(map[types.Address]Deployment),
		nonces:      make(map[types.Address]uint64),
	}
}

// DeriveAddress returns the address a deployer would get for the given nonce
func DeriveAddress(deployer types.Address, nonce uint64) types.Address {
	var buf [types.AddressLength + 8]byte
	copy(buf[:], deployer.Bytes())
	binary.BigEndian.PutUint64(buf[types.AddressLength:], nonce)
	sum := sha256.Sum256(buf[:])
	return types.AddressFromBytes(sum[:])
}

// Deploy registers a new component deployed by deployer and returns its address
func (r *Registry) Deploy(deployer types.Address, name string) (types.Address, error) {
	if deployer.IsZero() {
		return types.ZeroAddress, fmt.Errorf(
			"%w: deployer is the zero address",
			types.ErrConstruction,
		)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	nonce := r.nonces[deployer]
	addr := DeriveAddress(deployer, nonce)
	r.nonces[deployer] = nonce + 1
	r.deployments[addr] = Deployment{
		Name:     name,
		Address:  addr,
		Deployer: deployer,
		Nonce:    nonce,
	}
	return addr, nil
}

// Register records an existing deployment, as when restoring from storage
func (r *Registry) Register(d Deployment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deployments[d.Address] = d
	if r.nonces[d.Deployer] <= d.Nonce {
		r.nonces[d.Deployer] = d.Nonce + 1
	}
}

func (r *Registry) IsContract(addr types.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.deployments[addr]
	return ok
}

// Lookup returns the deployment with the given name
func (r *Registry) Lookup(name string) (Deployment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.deployments {
		if d.Name == name {
			return d, nil
		}
	}
	return Deployment{}, fmt.Errorf("%w: %s", ErrUnknownContract, name)
}

// Deployments returns all deployments ordered by deployer and nonce
func (r *Registry) Deployments() []Deployment {
	r.mu.RLock()
	ret := make([]Deployment, 0, len(r.deployments))
	for _, d := range r.deployments {
		ret = append(ret, d)
	}
	r.mu.RUnlock()
	slices.SortFunc(ret, func(a, b Deployment) int {
		if c := a.Deployer.Compare(b.Deployer); c != 0 {
			return c
		}
		switch {
		case a.Nonce < b.Nonce:
			return -1
		case a.Nonce > b.Nonce:
			return 1
		}
		return 0
	})
	return ret
}
