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

package access_test

import (
	"testing"

	"github.com/PedroGalveias/OwkenERC20/access"
	"github.com/PedroGalveias/OwkenERC20/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAdmin    = types.AddressFromBytes([]byte{0x01})
	testOperator = types.AddressFromBytes([]byte{0x02})
	testOther    = types.AddressFromBytes([]byte{0x03})
)

func TestRoleSetAdminIsAuthorizedForEverything(t *testing.T) {
	r := access.NewRoleSet(testAdmin)
	for _, action := range []access.Action{
		access.ActionAdminister,
		access.ActionDeposit,
		access.ActionLock,
	} {
		assert.True(t, r.IsAuthorized(testAdmin, action), "action %s", action)
		assert.False(t, r.IsAuthorized(testOther, action), "action %s", action)
	}
	assert.False(
		t,
		access.NewRoleSet(types.ZeroAddress).IsAuthorized(types.ZeroAddress, access.ActionDeposit),
		"zero address must never be authorized",
	)
}

func TestRoleSetGrantRevoke(t *testing.T) {
	r := access.NewRoleSet(testAdmin)
	require.NoError(t, r.Grant(testAdmin, access.ActionDeposit, testOperator))
	assert.True(t, r.IsAuthorized(testOperator, access.ActionDeposit))
	assert.False(t, r.IsAuthorized(testOperator, access.ActionLock))
	assert.False(t, r.IsAuthorized(testOperator, access.ActionAdminister))
	assert.Equal(t, []types.Address{testOperator}, r.Members(access.ActionDeposit))

	require.NoError(t, r.Revoke(testAdmin, access.ActionDeposit, testOperator))
	assert.False(t, r.IsAuthorized(testOperator, access.ActionDeposit))
	assert.Empty(t, r.Members(access.ActionDeposit))

	// Revoking again is fine
	require.NoError(t, r.Revoke(testAdmin, access.ActionDeposit, testOperator))
}

func TestRoleSetOnlyAdminGrants(t *testing.T) {
	r := access.NewRoleSet(testAdmin)
	err := r.Grant(testOther, access.ActionDeposit, testOther)
	require.ErrorIs(t, err, access.ErrNotAdmin)
	require.ErrorIs(t, err, types.ErrUnauthorized)
	err = r.Revoke(testOther, access.ActionDeposit, testOperator)
	require.ErrorIs(t, err, access.ErrNotAdmin)
	err = r.Grant(testAdmin, access.ActionAdminister, testOther)
	require.ErrorIs(t, err, types.ErrValidation)
}

func TestRoleSetSetMembers(t *testing.T) {
	r := access.NewRoleSet(testAdmin)
	r.SetMembers(access.ActionLock, []types.Address{testOther, testOperator})
	assert.True(t, r.HasMember(access.ActionLock, testOperator))
	assert.Equal(
		t,
		[]types.Address{testOperator, testOther},
		r.Members(access.ActionLock),
	)
	r.SetMembers(access.ActionLock, nil)
	assert.Empty(t, r.Members(access.ActionLock))
}

func TestControllerTransfer(t *testing.T) {
	c := access.NewController(testAdmin)
	assert.True(t, c.IsAuthorized(testAdmin, access.ActionControl))
	assert.False(t, c.IsAuthorized(testOther, access.ActionControl))

	err := c.Transfer(testOther, testOther)
	require.ErrorIs(t, err, access.ErrNotOwner)
	assert.Equal(t, testAdmin, c.Owner())

	require.NoError(t, c.Transfer(testAdmin, testOperator))
	assert.Equal(t, testOperator, c.Owner())
	assert.False(t, c.IsAuthorized(testAdmin, access.ActionControl))
	assert.True(t, c.IsAuthorized(testOperator, access.ActionControl))

	c.Reset(testAdmin)
	assert.Equal(t, testAdmin, c.Owner())
}
