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

// Package access holds the capability checks shared by the distribution
// components. State machines ask an Authorizer whether a caller may perform
// an action instead of comparing addresses themselves.
package access

import (
	"fmt"
	"slices"
	"sync"

	"github.com/PedroGalveias/OwkenERC20/types"
)

// Action names a privileged operation
type Action string

const (
	// ActionAdminister covers role management and administrator-only calls
	ActionAdminister Action = "administer"
	// ActionDeposit allows recording subscription deposits
	ActionDeposit Action = "deposit"
	// ActionLock allows creating categorized lock entries
	ActionLock Action = "lock"
	// ActionControl covers controller-only vesting calls
	ActionControl Action = "control"
)

var (
	ErrNotAdmin = fmt.Errorf(
		"%w: caller is not the administrator",
		types.ErrUnauthorized,
	)
	ErrNotOwner = fmt.Errorf("%w: not owner", types.ErrUnauthorized)
)

// Authorizer decides whether caller may perform action
type Authorizer interface {
	IsAuthorized(caller types.Address, action Action) bool
}

// RoleSet is a fixed administrator plus a set of members per action. The
// administrator is authorized for every action.
type RoleSet struct {
	admin   types.Address
	members map[Action]map[types.Address]struct{}
	mu      sync.RWMutex
}

func NewRoleSet(admin types.Address) *RoleSet {
	return &RoleSet{
		admin:   admin,
		members: make(map[Action]map[types.Address]struct{}),
	}
}

func (r *RoleSet) Admin() types.Address {
	return r.admin
}

func (r *RoleSet) IsAuthorized(caller types.Address, action Action) bool {
	if caller == r.admin && !caller.IsZero() {
		return true
	}
	if action == ActionAdminister {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[action][caller]
	return ok
}

// HasMember reports explicit membership, ignoring the administrator override
func (r *RoleSet) HasMember(action Action, account types.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[action][account]
	return ok
}

// Grant adds account to the members of action. Only the administrator may
// grant, and the administer action itself cannot be granted.
func (r *RoleSet) Grant(
	caller types.Address,
	action Action,
	account types.Address,
) error {
	if !r.IsAuthorized(caller, ActionAdminister) {
		return ErrNotAdmin
	}
	if action == ActionAdminister {
		return fmt.Errorf(
			"%w: administrator role is not transferable",
			types.ErrValidation,
		)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(action, account)
	return nil
}

// Revoke removes account from the members of action. Revoking a non-member is
// not an error.
func (r *RoleSet) Revoke(
	caller types.Address,
	action Action,
	account types.Address,
) error {
	if !r.IsAuthorized(caller, ActionAdminister) {
		return ErrNotAdmin
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.members[action]; ok {
		delete(m, account)
		if len(m) == 0 {
			delete(r.members, action)
		}
	}
	return nil
}

// Members returns the sorted members of action
func (r *RoleSet) Members(action Action) []types.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret := make([]types.Address, 0, len(r.members[action]))
	for addr := range r.members[action] {
		ret = append(ret, addr)
	}
	slices.SortFunc(ret, func(a, b types.Address) int {
		return slices.Compare(a[:], b[:])
	})
	return ret
}

// SetMembers replaces the members of action without an authorization check.
// It is used when restoring persisted state.
func (r *RoleSet) SetMembers(action Action, accounts []types.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, action)
	for _, addr := range accounts {
		r.add(action, addr)
	}
}

func (r *RoleSet) add(action Action, account types.Address) {
	if _, ok := r.members[action]; !ok {
		r.members[action] = make(map[types.Address]struct{})
	}
	r.members[action][account] = struct{}{}
}

// Controller is a single rotatable owner authorized for every action
type Controller struct {
	owner types.Address
	mu    sync.RWMutex
}

func NewController(owner types.Address) *Controller {
	return &Controller{owner: owner}
}

func (c *Controller) Owner() types.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.owner
}

func (c *Controller) IsAuthorized(caller types.Address, _ Action) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !caller.IsZero() && caller == c.owner
}

// Transfer hands control to next. Validation of next is left to the owning
// component, which knows which addresses are unacceptable.
func (c *Controller) Transfer(caller, next types.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if caller.IsZero() || caller != c.owner {
		return ErrNotOwner
	}
	c.owner = next
	return nil
}

// Reset replaces the owner without an authorization check. It is used when
// restoring persisted state.
func (c *Controller) Reset(owner types.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owner = owner
}
