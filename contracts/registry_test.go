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

package contracts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PedroGalveias/OwkenERC20/contracts"
	"github.com/PedroGalveias/OwkenERC20/types"
)

func TestDeployIsDeterministic(t *testing.T) {
	deployer := types.AddressFromBytes([]byte{0x01})
	r1 := contracts.NewRegistry()
	r2 := contracts.NewRegistry()
	a1, err := r1.Deploy(deployer, "token")
	require.NoError(t, err)
	a2, err := r2.Deploy(deployer, "token")
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
	assert.Equal(t, contracts.DeriveAddress(deployer, 0), a1)

	b1, err := r1.Deploy(deployer, "timelock")
	require.NoError(t, err)
	assert.NotEqual(t, a1, b1)
	assert.Equal(t, contracts.DeriveAddress(deployer, 1), b1)
}

func TestIsContractAndLookup(t *testing.T) {
	deployer := types.AddressFromBytes([]byte{0x01})
	r := contracts.NewRegistry()
	addr, err := r.Deploy(deployer, "vesting")
	require.NoError(t, err)
	assert.True(t, r.IsContract(addr))
	assert.False(t, r.IsContract(deployer))
	assert.False(t, r.IsContract(types.ZeroAddress))

	d, err := r.Lookup("vesting")
	require.NoError(t, err)
	assert.Equal(t, addr, d.Address)
	assert.Equal(t, deployer, d.Deployer)

	_, err = r.Lookup("missing")
	require.ErrorIs(t, err, contracts.ErrUnknownContract)
}

func TestDeployRejectsZeroDeployer(t *testing.T) {
	_, err := contracts.NewRegistry().Deploy(types.ZeroAddress, "token")
	require.ErrorIs(t, err, types.ErrConstruction)
}

func TestRegisterRestoresNonce(t *testing.T) {
	deployer := types.AddressFromBytes([]byte{0x01})
	src := contracts.NewRegistry()
	for _, name := range []string{"token", "timelock"} {
		_, err := src.Deploy(deployer, name)
		require.NoError(t, err)
	}
	dst := contracts.NewRegistry()
	for _, d := range src.Deployments() {
		dst.Register(d)
	}
	assert.Equal(t, src.Deployments(), dst.Deployments())
	next, err := dst.Deploy(deployer, "conversion")
	require.NoError(t, err)
	assert.Equal(t, contracts.DeriveAddress(deployer, 2), next)
}
