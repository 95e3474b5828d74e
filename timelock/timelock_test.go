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

package timelock_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PedroGalveias/OwkenERC20/access"
	"github.com/PedroGalveias/OwkenERC20/clock"
	"github.com/PedroGalveias/OwkenERC20/contracts"
	"github.com/PedroGalveias/OwkenERC20/event"
	"github.com/PedroGalveias/OwkenERC20/timelock"
	"github.com/PedroGalveias/OwkenERC20/token"
	"github.com/PedroGalveias/OwkenERC20/types"
)

var (
	testStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	admin     = types.AddressFromBytes([]byte{0x01})
	investor  = types.AddressFromBytes([]byte{0x02})
	investor2 = types.AddressFromBytes([]byte{0x03})
	stranger  = types.AddressFromBytes([]byte{0x04})
)

type fixture struct {
	clock    *clock.Manual
	ledger   *token.Ledger
	timelock *timelock.Timelock
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
	tokenAddr, err := reg.Deploy(admin, "token")
	require.NoError(t, err)
	f.ledger, err = token.NewLedger(token.LedgerConfig{
		Address:     tokenAddr,
		Holder:      admin,
		TotalSupply: types.NewAmount(1_000_000),
		Clock:       f.clock,
	})
	require.NoError(t, err)
	lockAddr, err := reg.Deploy(admin, "timelock")
	require.NoError(t, err)
	f.timelock, err = timelock.NewTimelock(timelock.TimelockConfig{
		PromRegistry: f.registry,
		EventBus:     f.bus,
		Clock:        f.clock,
		Contracts:    reg,
		Token:        f.ledger,
		Address:      lockAddr,
		Admin:        admin,
	})
	require.NoError(t, err)
	require.NoError(t, f.ledger.Approve(admin, lockAddr, f.ledger.TotalSupply()))
	return f
}

func TestNewTimelockRequiresContractToken(t *testing.T) {
	reg := contracts.NewRegistry()
	ledger, err := token.NewLedger(token.LedgerConfig{
		// not registered as a contract
		Address:     types.AddressFromBytes([]byte{0x99}),
		Holder:      admin,
		TotalSupply: types.NewAmount(1),
	})
	require.NoError(t, err)
	lockAddr, err := reg.Deploy(admin, "timelock")
	require.NoError(t, err)
	_, err = timelock.NewTimelock(timelock.TimelockConfig{
		Contracts: reg,
		Token:     ledger,
		Address:   lockAddr,
		Admin:     admin,
	})
	require.ErrorIs(t, err, timelock.ErrNotContract)
	require.ErrorIs(t, err, types.ErrConstruction)
}

func TestLockValidation(t *testing.T) {
	f := newFixture(t)
	release := testStart.Add(time.Hour)

	_, err := f.timelock.Lock(stranger, investor, types.NewAmount(1), release)
	require.ErrorIs(t, err, access.ErrNotAdmin)
	_, err = f.timelock.Lock(admin, types.ZeroAddress, types.NewAmount(1), release)
	require.ErrorIs(t, err, timelock.ErrInvalidAddress)
	_, err = f.timelock.Lock(admin, investor, types.NewAmount(0), release)
	require.ErrorIs(t, err, timelock.ErrInvalidAmount)
	_, err = f.timelock.Lock(admin, investor, types.NewAmount(1), testStart.Add(-time.Second))
	require.ErrorIs(t, err, timelock.ErrReleaseInPast)
	assert.Equal(t, 0, f.timelock.GetLocksLength())
	assert.Equal(t, "1000000", f.ledger.BalanceOf(admin).String())

	// Release time equal to now is accepted
	idx, err := f.timelock.Lock(admin, investor, types.NewAmount(5), testStart)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "5", f.ledger.BalanceOf(f.timelock.Address()).String())
}

func TestLockReleaseTimeRange(t *testing.T) {
	f := newFixture(t)
	_, err := f.timelock.Lock(admin, investor, types.NewAmount(1), types.MaxTime.Add(time.Second))
	require.ErrorIs(t, err, timelock.ErrReleaseOutOfRange)
	require.ErrorIs(t, err, types.ErrValidation)
	assert.Equal(t, 0, f.timelock.GetLocksLength())

	far := time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC)
	idx, err := f.timelock.Lock(admin, investor, types.NewAmount(1), far)
	require.NoError(t, err)
	entry, err := f.timelock.GetLock(idx)
	require.NoError(t, err)
	assert.Equal(t, far, entry.ReleaseTime)

	// Sub-second release times round up
	idx, err = f.timelock.Lock(admin, investor, types.NewAmount(1), testStart.Add(1500*time.Millisecond))
	require.NoError(t, err)
	entry, err = f.timelock.GetLock(idx)
	require.NoError(t, err)
	assert.Equal(t, testStart.Add(2*time.Second), entry.ReleaseTime)
}

func TestLockDrawsFromFunder(t *testing.T) {
	reg := contracts.NewRegistry()
	tokenAddr, err := reg.Deploy(admin, "token")
	require.NoError(t, err)
	ledger, err := token.NewLedger(token.LedgerConfig{
		Address:     tokenAddr,
		Holder:      investor2,
		TotalSupply: types.NewAmount(100),
	})
	require.NoError(t, err)
	lockAddr, err := reg.Deploy(admin, "timelock")
	require.NoError(t, err)
	clk := clock.NewManual(testStart)
	tl, err := timelock.NewTimelock(timelock.TimelockConfig{
		Clock:     clk,
		Contracts: reg,
		Token:     ledger,
		Address:   lockAddr,
		Admin:     admin,
		Funder:    investor2,
	})
	require.NoError(t, err)
	require.NoError(t, ledger.Approve(investor2, lockAddr, types.NewAmount(10)))

	_, err = tl.Lock(admin, investor, types.NewAmount(10), testStart.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "90", ledger.BalanceOf(investor2).String())
	assert.Equal(t, "10", ledger.BalanceOf(lockAddr).String())
	assert.Equal(t, "0", ledger.BalanceOf(admin).String())
}

func TestCategorizedLocksApplyOffsets(t *testing.T) {
	f := newFixture(t)
	d, err := f.timelock.LockDirect(admin, investor, types.NewAmount(10))
	require.NoError(t, err)
	r, err := f.timelock.LockReferral(admin, investor, types.NewAmount(20))
	require.NoError(t, err)
	p, err := f.timelock.LockPurchase(admin, investor, types.NewAmount(30))
	require.NoError(t, err)

	assert.Equal(t, testStart.Add(timelock.DefaultDirectOffset), d.ReleaseTime)
	assert.Equal(t, testStart.Add(timelock.DefaultReferralOffset), r.ReleaseTime)
	assert.Equal(t, testStart.Add(timelock.DefaultPurchaseOffset), p.ReleaseTime)
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{d.ID, r.ID, p.ID})
	assert.Equal(t, 3, f.timelock.GetLocksLength())
	assert.Equal(t, "60", f.ledger.BalanceOf(f.timelock.Address()).String())
}

func TestCategorizedLockRequiresLocker(t *testing.T) {
	f := newFixture(t)
	_, err := f.timelock.LockDirect(stranger, investor, types.NewAmount(1))
	require.ErrorIs(t, err, timelock.ErrNotLocker)
	require.ErrorIs(t, err, types.ErrUnauthorized)

	require.ErrorIs(t, f.timelock.AddLocker(stranger, stranger), access.ErrNotAdmin)
	require.NoError(t, f.timelock.AddLocker(admin, stranger))
	assert.True(t, f.timelock.IsLocker(stranger))
	// The locker funds its own locks
	_, err = f.timelock.LockDirect(stranger, investor, types.NewAmount(1))
	require.ErrorIs(t, err, token.ErrInsufficientAllowance)
	require.NoError(t, f.ledger.Transfer(admin, stranger, types.NewAmount(1)))
	require.NoError(t, f.ledger.Approve(stranger, f.timelock.Address(), types.NewAmount(1)))
	_, err = f.timelock.LockDirect(stranger, investor, types.NewAmount(1))
	require.NoError(t, err)
	assert.Equal(t, "0", f.ledger.BalanceOf(stranger).String())

	// Lockers cannot use the generic lock
	_, err = f.timelock.Lock(stranger, investor, types.NewAmount(1), testStart)
	require.ErrorIs(t, err, access.ErrNotAdmin)

	require.NoError(t, f.timelock.RemoveLocker(admin, stranger))
	_, err = f.timelock.LockDirect(stranger, investor, types.NewAmount(1))
	require.ErrorIs(t, err, timelock.ErrNotLocker)
}

func TestLockBatchIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	_, err := f.timelock.LockBatch(admin, []timelock.LockRequest{
		{Beneficiary: investor, Amount: types.NewAmount(1), Category: timelock.CategoryDirect},
		{Beneficiary: investor, Amount: types.NewAmount(0), Category: timelock.CategoryPurchase},
	})
	require.ErrorIs(t, err, timelock.ErrInvalidAmount)
	assert.Equal(t, 0, f.timelock.GetLocksLength())

	// Funding failure leaves no entries behind
	require.NoError(t, f.ledger.Approve(admin, f.timelock.Address(), types.NewAmount(2)))
	_, err = f.timelock.LockBatch(admin, []timelock.LockRequest{
		{Beneficiary: investor, Amount: types.NewAmount(2), Category: timelock.CategoryDirect},
		{Beneficiary: investor, Amount: types.NewAmount(1), Category: timelock.CategoryReferral},
	})
	require.ErrorIs(t, err, token.ErrInsufficientAllowance)
	assert.Equal(t, 0, f.timelock.GetLocksLength())
	assert.Equal(t, "0", f.ledger.BalanceOf(f.timelock.Address()).String())

	_, err = f.timelock.LockBatch(admin, []timelock.LockRequest{
		{Beneficiary: investor, Amount: types.NewAmount(1), Category: timelock.CategoryNone},
	})
	require.ErrorIs(t, err, timelock.ErrUnknownCategory)
	require.ErrorIs(t, err, types.ErrValidation)
}

func TestWithdrawBoundsAndAuthorization(t *testing.T) {
	f := newFixture(t)
	_, err := f.timelock.Lock(admin, investor, types.NewAmount(7), testStart.Add(clock.Day))
	require.NoError(t, err)

	for _, idx := range []int{-1, 1, 100} {
		err := f.timelock.Withdraw(investor, idx)
		var boundsErr timelock.IndexOutOfBoundsError
		require.ErrorAs(t, err, &boundsErr, "index %d", idx)
		require.ErrorIs(t, err, types.ErrValidation)
		assert.Equal(t, idx, boundsErr.Index)
		assert.Equal(t, 1, boundsErr.Length)
	}
	require.ErrorIs(t, f.timelock.Withdraw(stranger, 0), timelock.ErrNotBeneficiary)
	require.ErrorIs(t, f.timelock.Withdraw(investor, 0), timelock.ErrNotReleasable)

	f.clock.Advance(clock.Day)
	require.NoError(t, f.timelock.Withdraw(investor, 0))
	assert.Equal(t, "7", f.ledger.BalanceOf(investor).String())
	assert.Equal(t, 0, f.timelock.GetLocksLength())

	var boundsErr timelock.IndexOutOfBoundsError
	require.ErrorAs(t, f.timelock.Withdraw(investor, 0), &boundsErr)
}

func TestWithdrawSwapAndPop(t *testing.T) {
	f := newFixture(t)
	for i, who := range []types.Address{investor, investor2, investor} {
		_, err := f.timelock.Lock(admin, who, types.NewAmount(uint64(10*(i+1))), testStart)
		require.NoError(t, err)
	}
	locks := f.timelock.GetLocks()
	require.Len(t, locks, 3)
	last := locks[2]

	require.NoError(t, f.timelock.Withdraw(investor, 0))
	assert.Equal(t, 2, f.timelock.GetLocksLength())
	moved, err := f.timelock.GetLock(0)
	require.NoError(t, err)
	assert.Equal(t, last.ID, moved.ID)
	amount, err := f.timelock.GetLockedTokens(0)
	require.NoError(t, err)
	assert.Equal(t, "30", amount.String())
	addr, err := f.timelock.GetLockedTokensAddress(0)
	require.NoError(t, err)
	assert.Equal(t, investor, addr)

	// Removing the last entry moves nothing
	require.NoError(t, f.timelock.Withdraw(investor2, 1))
	assert.Equal(t, 1, f.timelock.GetLocksLength())
	require.NoError(t, f.timelock.Withdraw(investor, 0))
	assert.Equal(t, "40", f.ledger.BalanceOf(investor).String())
	assert.Equal(t, "20", f.ledger.BalanceOf(investor2).String())

	_, err = f.timelock.GetLockedTokens(0)
	require.ErrorIs(t, err, types.ErrValidation)
	_, err = f.timelock.GetLockedTokensAddress(-1)
	require.ErrorIs(t, err, types.ErrValidation)
}

// Release times 90, 180 and 365 days out, withdrawn after 95, 280 and 645
// days as positions shift under swap-and-pop
func TestWithdrawCategorizedScenario(t *testing.T) {
	f := newFixture(t)
	_, err := f.timelock.LockReferral(admin, investor, types.NewAmount(1))
	require.NoError(t, err)
	_, err = f.timelock.LockDirect(admin, investor, types.NewAmount(1))
	require.NoError(t, err)
	_, err = f.timelock.LockPurchase(admin, investor, types.NewAmount(1))
	require.NoError(t, err)

	f.clock.Set(testStart.Add(95 * clock.Day))
	require.NoError(t, f.timelock.Withdraw(investor, 0))
	require.ErrorIs(t, f.timelock.Withdraw(investor, 0), timelock.ErrNotReleasable)
	require.ErrorIs(t, f.timelock.Withdraw(investor, 1), timelock.ErrNotReleasable)

	f.clock.Set(testStart.Add(280 * clock.Day))
	require.NoError(t, f.timelock.Withdraw(investor, 0))
	require.ErrorIs(t, f.timelock.Withdraw(investor, 0), timelock.ErrNotReleasable)

	f.clock.Set(testStart.Add(645 * clock.Day))
	require.NoError(t, f.timelock.Withdraw(investor, 0))
	assert.Equal(t, 0, f.timelock.GetLocksLength())
	assert.Equal(t, "3", f.ledger.BalanceOf(investor).String())
}

func TestTimelockEventsAndMetrics(t *testing.T) {
	f := newFixture(t)
	_, locked := f.bus.Subscribe(event.LockedEventType)
	_, released := f.bus.Subscribe(event.ReleasedEventType)

	_, err := f.timelock.LockPurchase(admin, investor, types.NewAmount(3))
	require.NoError(t, err)
	_, err = f.timelock.Lock(admin, investor2, types.NewAmount(4), testStart)
	require.NoError(t, err)

	evt := (<-locked).Data.(event.LockedEvent)
	assert.Equal(t, uint64(1), evt.ID)
	assert.Equal(t, "purchase", evt.Category)
	evt = (<-locked).Data.(event.LockedEvent)
	assert.Equal(t, 1, evt.Index)
	assert.Empty(t, evt.Category)

	f.clock.Advance(timelock.DefaultPurchaseOffset)
	require.NoError(t, f.timelock.Withdraw(investor, 0))
	rel := (<-released).Data.(event.ReleasedEvent)
	assert.Equal(t, uint64(1), rel.ID)
	assert.Equal(t, uint64(2), rel.MovedID)

	expected := `
# HELP owken_timelock_entries current number of lock entries
# TYPE owken_timelock_entries gauge
owken_timelock_entries 1
# HELP owken_timelock_locks_created_total number of lock entries created by category
# TYPE owken_timelock_locks_created_total counter
owken_timelock_locks_created_total{category="generic"} 1
owken_timelock_locks_created_total{category="purchase"} 1
# HELP owken_timelock_releases_total number of lock entries withdrawn
# TYPE owken_timelock_releases_total counter
owken_timelock_releases_total 1
`
	require.NoError(t, testutil.GatherAndCompare(f.registry, strings.NewReader(expected)))
}

func TestSnapshotRestore(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.timelock.AddLocker(admin, stranger))
	_, err := f.timelock.LockDirect(admin, investor, types.NewAmount(1))
	require.NoError(t, err)
	snap := f.timelock.Snapshot()
	assert.Equal(t, uint64(2), snap.NextID)
	assert.Equal(t, []types.Address{stranger}, snap.Lockers)

	_, err = f.timelock.LockDirect(admin, investor, types.NewAmount(1))
	require.NoError(t, err)
	require.NoError(t, f.timelock.RemoveLocker(admin, stranger))

	f.timelock.Restore(snap)
	assert.Equal(t, 1, f.timelock.GetLocksLength())
	assert.True(t, f.timelock.IsLocker(stranger))
	entry, err := f.timelock.LockDirect(admin, investor, types.NewAmount(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), entry.ID)
}
