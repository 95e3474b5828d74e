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

package vesting_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PedroGalveias/OwkenERC20/clock"
	"github.com/PedroGalveias/OwkenERC20/contracts"
	"github.com/PedroGalveias/OwkenERC20/event"
	"github.com/PedroGalveias/OwkenERC20/token"
	"github.com/PedroGalveias/OwkenERC20/types"
	"github.com/PedroGalveias/OwkenERC20/vesting"
)

var (
	testStart  = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	multisig   = types.AddressFromBytes([]byte{0x01})
	recipient  = types.AddressFromBytes([]byte{0x02})
	recipient2 = types.AddressFromBytes([]byte{0x03})
	stranger   = types.AddressFromBytes([]byte{0x04})
	epsilon    = time.Second
)

type fixture struct {
	clock    *clock.Manual
	ledger   *token.Ledger
	vault    *vesting.Vault
	bus      *event.EventBus
	registry *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:    clock.NewManual(testStart),
		bus:      event.NewEventBus(nil, nil),
		registry: prometheus.NewRegistry(),
	}
	t.Cleanup(f.bus.Stop)
	reg := contracts.NewRegistry()
	tokenAddr, err := reg.Deploy(multisig, "token")
	require.NoError(t, err)
	f.ledger, err = token.NewLedger(token.LedgerConfig{
		Address:     tokenAddr,
		Holder:      multisig,
		TotalSupply: types.NewAmount(1_000_000),
		Clock:       f.clock,
	})
	require.NoError(t, err)
	vaultAddr, err := reg.Deploy(multisig, "vesting")
	require.NoError(t, err)
	f.vault, err = vesting.NewVault(vesting.VaultConfig{
		PromRegistry: f.registry,
		EventBus:     f.bus,
		Clock:        f.clock,
		Contracts:    reg,
		Token:        f.ledger,
		Address:      vaultAddr,
		Controller:   multisig,
	})
	require.NoError(t, err)
	require.NoError(t, f.ledger.Approve(multisig, vaultAddr, f.ledger.TotalSupply()))
	return f
}

func (f *fixture) addGrant(
	t *testing.T,
	to types.Address,
	amount uint64,
	duration, cliff uint16,
) uint64 {
	t.Helper()
	id, err := f.vault.AddTokenGrant(
		multisig,
		to,
		f.clock.Now(),
		types.NewAmount(amount),
		duration,
		cliff,
	)
	require.NoError(t, err)
	return id
}

func TestNewVaultRequiresContractToken(t *testing.T) {
	reg := contracts.NewRegistry()
	ledger, err := token.NewLedger(token.LedgerConfig{
		Address:     types.AddressFromBytes([]byte{0x99}),
		Holder:      multisig,
		TotalSupply: types.NewAmount(1),
	})
	require.NoError(t, err)
	_, err = vesting.NewVault(vesting.VaultConfig{
		Contracts:  reg,
		Token:      ledger,
		Address:    types.AddressFromBytes([]byte{0x98}),
		Controller: multisig,
	})
	require.ErrorIs(t, err, vesting.ErrNotContract)
	require.ErrorIs(t, err, types.ErrConstruction)
}

func TestAddTokenGrantValidation(t *testing.T) {
	f := newFixture(t)
	now := f.clock.Now()
	amount := types.NewAmount(100_000)
	tests := []struct {
		name     string
		caller   types.Address
		to       types.Address
		amount   types.Amount
		duration uint16
		cliff    uint16
		err      error
	}{
		{"not owner", stranger, recipient, amount, 10, 1, vesting.ErrNotOwner},
		{"zero recipient", multisig, types.ZeroAddress, amount, 10, 1, vesting.ErrInvalidRecipient},
		{"cliff 3653", multisig, recipient, amount, 9000, 3653, vesting.ErrCliffTooLong},
		{"duration 9132", multisig, recipient, amount, 9132, 1, vesting.ErrDurationTooLong},
		{"duration below cliff", multisig, recipient, amount, 5, 6, vesting.ErrDurationBelowCliff},
		{"rate truncates to zero", multisig, recipient, types.NewAmount(9), 10, 1, vesting.ErrZeroDailyRate},
		{"zero duration", multisig, recipient, amount, 0, 0, vesting.ErrZeroDailyRate},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.vault.AddTokenGrant(tc.caller, tc.to, now, tc.amount, tc.duration, tc.cliff)
			require.ErrorIs(t, err, tc.err)
		})
	}
	assert.Empty(t, f.vault.Grants())

	// Limits themselves are accepted
	_, err := f.vault.AddTokenGrant(multisig, recipient, now, amount, 9131, 3652)
	require.NoError(t, err)
	_, err = f.vault.AddTokenGrant(multisig, recipient, now, types.NewAmount(10), 10, 10)
	require.NoError(t, err)
}

func TestAddTokenGrantStartRange(t *testing.T) {
	f := newFixture(t)
	amount := types.NewAmount(100)
	for _, start := range []time.Time{
		types.MinTime.Add(-time.Second),
		types.MaxTime.Add(time.Second),
	} {
		_, err := f.vault.AddTokenGrant(multisig, recipient, start, amount, 10, 1)
		require.ErrorIs(t, err, vesting.ErrStartOutOfRange)
		require.ErrorIs(t, err, types.ErrValidation)
	}
	assert.Empty(t, f.vault.Grants())

	far := time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC)
	id, err := f.vault.AddTokenGrant(multisig, recipient, far, amount, 10, 1)
	require.NoError(t, err)
	grant, err := f.vault.GetGrant(id)
	require.NoError(t, err)
	assert.Equal(t, far, grant.StartTime)
	days, claimable, err := f.vault.CalculateGrantClaim(id)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), days)
	assert.Equal(t, "0", claimable.String())
}

func TestAddTokenGrantZeroStartMeansNow(t *testing.T) {
	f := newFixture(t)
	f.clock.Advance(time.Hour)
	id, err := f.vault.AddTokenGrant(multisig, recipient, time.Time{}, types.NewAmount(10), 2, 0)
	require.NoError(t, err)
	grant, err := f.vault.GetGrant(id)
	require.NoError(t, err)
	assert.Equal(t, testStart.Add(time.Hour), grant.StartTime)
}

func TestCalculateGrantClaimBeforeCliff(t *testing.T) {
	f := newFixture(t)
	for _, cliff := range []uint16{0, 1, 5, 30} {
		id := f.addGrant(t, recipient, 1_000, 30, cliff)
		days, amount, err := f.vault.CalculateGrantClaim(id)
		require.NoError(t, err)
		assert.Zero(t, days)
		assert.True(t, amount.IsZero())
		if cliff > 0 {
			f.clock.Advance(time.Duration(cliff)*clock.Day - epsilon)
			days, amount, err = f.vault.CalculateGrantClaim(id)
			require.NoError(t, err)
			assert.Zero(t, days, "cliff %d", cliff)
			assert.True(t, amount.IsZero(), "cliff %d", cliff)
			f.clock.Set(testStart)
		}
	}
	_, _, err := f.vault.CalculateGrantClaim(99)
	require.ErrorIs(t, err, vesting.ErrUnknownGrant)
}

// 1000 units over 2 days with a 1 day cliff
func TestVestingEndToEnd(t *testing.T) {
	f := newFixture(t)
	_, claimed := f.bus.Subscribe(event.GrantTokensClaimedEventType)
	id := f.addGrant(t, recipient, 1000, 2, 1)
	perDay, err := f.vault.TokensVestedPerDay(id)
	require.NoError(t, err)
	assert.Equal(t, "500", perDay.String())

	f.clock.Set(testStart.Add(clock.Day - epsilon))
	_, err = f.vault.ClaimVestedTokens(id)
	require.ErrorIs(t, err, vesting.ErrNothingVested)

	f.clock.Set(testStart.Add(clock.Day + epsilon))
	days, amount, err := f.vault.CalculateGrantClaim(id)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), days)
	assert.Equal(t, "500", amount.String())

	paid, err := f.vault.ClaimVestedTokens(id)
	require.NoError(t, err)
	assert.Equal(t, "500", paid.String())
	grant, err := f.vault.GetGrant(id)
	require.NoError(t, err)
	assert.Equal(t, "500", grant.AmountRemaining.String())
	assert.Equal(t, testStart.Add(clock.Day), grant.StartTime)
	assert.Equal(t, "500", f.ledger.BalanceOf(recipient).String())

	// Immediate second claim finds nothing
	days, amount, err = f.vault.CalculateGrantClaim(id)
	require.NoError(t, err)
	assert.Zero(t, days)
	assert.True(t, amount.IsZero())
	_, err = f.vault.ClaimVestedTokens(id)
	require.ErrorIs(t, err, vesting.ErrNothingVested)

	f.clock.Advance(clock.Day)
	paid, err = f.vault.ClaimVestedTokens(id)
	require.NoError(t, err)
	assert.Equal(t, "500", paid.String())
	grant, err = f.vault.GetGrant(id)
	require.NoError(t, err)
	assert.True(t, grant.Exhausted())
	assert.Equal(t, uint16(2), grant.DaysClaimed)
	assert.Equal(t, "1000", f.ledger.BalanceOf(recipient).String())

	f.clock.Advance(10 * clock.Day)
	_, err = f.vault.ClaimVestedTokens(id)
	require.ErrorIs(t, err, vesting.ErrNothingVested)

	for range 2 {
		evt := (<-claimed).Data.(event.GrantTokensClaimedEvent)
		assert.Equal(t, id, evt.GrantID)
		assert.Equal(t, uint64(1), evt.Days)
	}
}

func TestClaimAdvancesStartByWholeDays(t *testing.T) {
	f := newFixture(t)
	id := f.addGrant(t, recipient, 1000, 10, 0)
	f.clock.Advance(3*clock.Day + 5*time.Hour)
	before, err := f.vault.GetGrant(id)
	require.NoError(t, err)
	paid, err := f.vault.ClaimVestedTokens(id)
	require.NoError(t, err)
	assert.Equal(t, "300", paid.String())
	after, err := f.vault.GetGrant(id)
	require.NoError(t, err)
	assert.Equal(t, before.StartTime.Add(3*clock.Day), after.StartTime)
	assert.Equal(
		t,
		before.AmountRemaining.Sub(paid).String(),
		after.AmountRemaining.String(),
	)
}

func TestFinalClaimIncludesDust(t *testing.T) {
	f := newFixture(t)
	id := f.addGrant(t, recipient, 1001, 3, 0)
	perDay, err := f.vault.TokensVestedPerDay(id)
	require.NoError(t, err)
	assert.Equal(t, "333", perDay.String())

	f.clock.Advance(2 * clock.Day)
	paid, err := f.vault.ClaimVestedTokens(id)
	require.NoError(t, err)
	assert.Equal(t, "666", paid.String())

	f.clock.Advance(5 * clock.Day)
	days, amount, err := f.vault.CalculateGrantClaim(id)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), days)
	assert.Equal(t, "335", amount.String())
	_, err = f.vault.ClaimVestedTokens(id)
	require.NoError(t, err)
	assert.Equal(t, "1001", f.ledger.BalanceOf(recipient).String())
}

func TestClaimFailsWithoutFunding(t *testing.T) {
	f := newFixture(t)
	id := f.addGrant(t, recipient, 1000, 2, 0)
	require.NoError(t, f.ledger.Approve(multisig, f.vault.Address(), types.NewAmount(10)))
	f.clock.Advance(clock.Day)
	_, err := f.vault.ClaimVestedTokens(id)
	require.ErrorIs(t, err, token.ErrInsufficientAllowance)
	grant, err := f.vault.GetGrant(id)
	require.NoError(t, err)
	assert.Equal(t, "1000", grant.AmountRemaining.String())
	assert.Equal(t, testStart, grant.StartTime)
}

func TestRemoveTokenGrant(t *testing.T) {
	f := newFixture(t)
	_, removed := f.bus.Subscribe(event.GrantRemovedEventType)
	a := f.addGrant(t, recipient, 100, 10, 0)
	b := f.addGrant(t, recipient, 200, 10, 0)
	c := f.addGrant(t, recipient, 300, 10, 0)
	other := f.addGrant(t, recipient2, 400, 10, 0)
	assert.Equal(t, []uint64{a, b, c}, f.vault.GetActiveGrants(recipient))

	require.ErrorIs(t, f.vault.RemoveTokenGrant(stranger, a), vesting.ErrNotOwner)
	require.ErrorIs(t, f.vault.RemoveTokenGrant(multisig, 99), vesting.ErrUnknownGrant)

	f.clock.Advance(clock.Day)
	_, err := f.vault.ClaimVestedTokens(a)
	require.NoError(t, err)
	require.NoError(t, f.vault.RemoveTokenGrant(multisig, a))
	assert.Equal(t, []uint64{c, b}, f.vault.GetActiveGrants(recipient))
	assert.Equal(t, []uint64{other}, f.vault.GetActiveGrants(recipient2))
	_, err = f.vault.GetGrant(a)
	require.ErrorIs(t, err, vesting.ErrUnknownGrant)
	_, err = f.vault.ClaimVestedTokens(a)
	require.ErrorIs(t, err, vesting.ErrUnknownGrant)

	evt := (<-removed).Data.(event.GrantRemovedEvent)
	assert.Equal(t, a, evt.GrantID)
	assert.Equal(t, "10", evt.AmountVested.String())
	assert.Equal(t, "90", evt.AmountDropped.String())

	require.NoError(t, f.vault.RemoveTokenGrant(multisig, other))
	assert.Empty(t, f.vault.GetActiveGrants(recipient2))
	assert.Len(t, f.vault.Grants(), 2)
}

func TestChangeMultiSig(t *testing.T) {
	f := newFixture(t)
	_, changed := f.bus.Subscribe(event.ChangedMultisigEventType)

	require.ErrorIs(t, f.vault.ChangeMultiSig(stranger, stranger), vesting.ErrNotOwner)
	// Ownership is checked before the new address
	require.ErrorIs(t, f.vault.ChangeMultiSig(stranger, types.ZeroAddress), vesting.ErrNotOwner)
	for _, bad := range []types.Address{types.ZeroAddress, f.vault.Address(), f.vault.Token()} {
		require.ErrorIs(t, f.vault.ChangeMultiSig(multisig, bad), vesting.ErrInvalidRecipient)
	}
	assert.Equal(t, multisig, f.vault.Controller())

	require.NoError(t, f.vault.ChangeMultiSig(multisig, stranger))
	assert.Equal(t, stranger, f.vault.Controller())
	evt := (<-changed).Data.(event.ChangedMultisigEvent)
	assert.Equal(t, multisig, evt.Previous)
	assert.Equal(t, stranger, evt.Next)

	_, err := f.vault.AddTokenGrant(multisig, recipient, testStart, types.NewAmount(10), 1, 0)
	require.ErrorIs(t, err, vesting.ErrNotOwner)
	id, err := f.vault.AddTokenGrant(stranger, recipient, testStart, types.NewAmount(10), 1, 0)
	require.NoError(t, err)

	// Claims are still paid by the original funder
	f.clock.Advance(clock.Day)
	_, err = f.vault.ClaimVestedTokens(id)
	require.NoError(t, err)
	assert.Equal(t, multisig, f.vault.Funder())
}

func TestVaultMetrics(t *testing.T) {
	f := newFixture(t)
	id := f.addGrant(t, recipient, 10, 1, 0)
	f.addGrant(t, recipient, 10, 1, 0)
	f.clock.Advance(clock.Day)
	_, err := f.vault.ClaimVestedTokens(id)
	require.NoError(t, err)
	require.NoError(t, f.vault.RemoveTokenGrant(multisig, id))
	expected := `
# HELP owken_vesting_claims_total number of successful claims
# TYPE owken_vesting_claims_total counter
owken_vesting_claims_total 1
# HELP owken_vesting_grants current number of grants held by the vault
# TYPE owken_vesting_grants gauge
owken_vesting_grants 1
# HELP owken_vesting_grants_added_total number of grants added
# TYPE owken_vesting_grants_added_total counter
owken_vesting_grants_added_total 2
# HELP owken_vesting_grants_removed_total number of grants removed by the controller
# TYPE owken_vesting_grants_removed_total counter
owken_vesting_grants_removed_total 1
`
	require.NoError(t, testutil.GatherAndCompare(f.registry, strings.NewReader(expected)))
}

func TestSnapshotRestore(t *testing.T) {
	f := newFixture(t)
	a := f.addGrant(t, recipient, 100, 10, 0)
	snap := f.vault.Snapshot()

	f.addGrant(t, recipient, 100, 10, 0)
	f.clock.Advance(clock.Day)
	_, err := f.vault.ClaimVestedTokens(a)
	require.NoError(t, err)
	require.NoError(t, f.vault.ChangeMultiSig(multisig, stranger))

	f.vault.Restore(snap)
	assert.Equal(t, multisig, f.vault.Controller())
	assert.Equal(t, []uint64{a}, f.vault.GetActiveGrants(recipient))
	grant, err := f.vault.GetGrant(a)
	require.NoError(t, err)
	assert.Equal(t, "100", grant.AmountRemaining.String())
	next := f.addGrant(t, recipient2, 100, 10, 0)
	assert.Equal(t, a+1, next)
}
