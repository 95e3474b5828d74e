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

// Package timelock holds amounts in custody until per-entry release times.
//
// Entries are addressed by position. Withdrawing any entry other than the
// last moves the former last entry into the vacated slot, so an index read
// before a withdrawal may refer to a different entry afterwards. Every entry
// also carries a stable ID for persistence and notifications.
package timelock

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/PedroGalveias/OwkenERC20/access"
	"github.com/PedroGalveias/OwkenERC20/clock"
	"github.com/PedroGalveias/OwkenERC20/event"
	"github.com/PedroGalveias/OwkenERC20/token"
	"github.com/PedroGalveias/OwkenERC20/types"
)

const (
	DefaultReferralOffset = 90 * clock.Day
	DefaultPurchaseOffset = 180 * clock.Day
	DefaultDirectOffset   = 365 * clock.Day
)

// ContractChecker reports whether an address belongs to a deployed component
type ContractChecker interface {
	IsContract(types.Address) bool
}

type TimelockConfig struct {
	PromRegistry prometheus.Registerer
	Logger       *slog.Logger
	EventBus     *event.EventBus
	Clock        clock.Clock
	Contracts    ContractChecker
	Token        token.AssetLedger
	// Address is the registry's own address, which holds locked funds
	Address types.Address
	Admin   types.Address
	// Funder pays for administrator locks. It defaults to Admin.
	Funder         types.Address
	DirectOffset   time.Duration
	ReferralOffset time.Duration
	PurchaseOffset time.Duration
}

// LockEntry is a single amount held until ReleaseTime
type LockEntry struct {
	ID          uint64
	Beneficiary types.Address
	Amount      types.Amount
	ReleaseTime time.Time
	Category    Category
}

// LockRequest describes one entry of a batch lock
type LockRequest struct {
	Beneficiary types.Address
	Amount      types.Amount
	Category    Category
}

// State is a point-in-time copy of the registry
type State struct {
	Entries []LockEntry
	NextID  uint64
	Lockers []types.Address
}

type Timelock struct {
	mu      sync.Mutex
	config  TimelockConfig
	logger  *slog.Logger
	roles   *access.RoleSet
	metrics timelockMetrics
	entries []LockEntry
	nextID  uint64
}

func NewTimelock(cfg TimelockConfig) (*Timelock, error) {
	if cfg.Contracts == nil || cfg.Token == nil ||
		!cfg.Contracts.IsContract(cfg.Token.Address()) {
		return nil, ErrNotContract
	}
	if cfg.Address.IsZero() || cfg.Admin.IsZero() {
		return nil, fmt.Errorf(
			"%w: registry and admin addresses are required",
			types.ErrConstruction,
		)
	}
	if cfg.Funder.IsZero() {
		cfg.Funder = cfg.Admin
	}
	if cfg.DirectOffset == 0 {
		cfg.DirectOffset = DefaultDirectOffset
	}
	if cfg.ReferralOffset == 0 {
		cfg.ReferralOffset = DefaultReferralOffset
	}
	if cfg.PurchaseOffset == 0 {
		cfg.PurchaseOffset = DefaultPurchaseOffset
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	t := &Timelock{
		config: cfg,
		logger: cfg.Logger.With("component", "timelock"),
		roles:  access.NewRoleSet(cfg.Admin),
		nextID: 1,
	}
	t.initMetrics(cfg.PromRegistry)
	return t, nil
}

func (t *Timelock) Address() types.Address {
	return t.config.Address
}

func (t *Timelock) Admin() types.Address {
	return t.roles.Admin()
}

// Token returns the address of the asset ledger
func (t *Timelock) Token() types.Address {
	return t.config.Token.Address()
}

// Offset returns the release delay applied to the given category
func (t *Timelock) Offset(category Category) (time.Duration, error) {
	switch category {
	case CategoryDirect:
		return t.config.DirectOffset, nil
	case CategoryReferral:
		return t.config.ReferralOffset, nil
	case CategoryPurchase:
		return t.config.PurchaseOffset, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
}

// AddLocker allows account to call the categorized lock helpers
func (t *Timelock) AddLocker(caller, account types.Address) error {
	return t.roles.Grant(caller, access.ActionLock, account)
}

func (t *Timelock) RemoveLocker(caller, account types.Address) error {
	return t.roles.Revoke(caller, access.ActionLock, account)
}

func (t *Timelock) IsLocker(account types.Address) bool {
	return t.roles.IsAuthorized(account, access.ActionLock)
}

// Lock appends an entry with an explicit release time. Only the administrator
// may call it. The lock is funded from the funder's allowance to the
// registry. Release times are kept at whole second precision, rounded up.
func (t *Timelock) Lock(
	caller, beneficiary types.Address,
	amount types.Amount,
	releaseTime time.Time,
) (int, error) {
	if !t.roles.IsAuthorized(caller, access.ActionAdminister) {
		t.logger.Warn("rejected lock from non-admin", "caller", caller.String())
		return 0, access.ErrNotAdmin
	}
	if err := validateRequest(beneficiary, amount); err != nil {
		return 0, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.config.Clock.Now()
	releaseTime = types.CeilSecond(releaseTime)
	if releaseTime.Before(now) {
		return 0, ErrReleaseInPast
	}
	if !types.ValidTime(releaseTime) {
		return 0, ErrReleaseOutOfRange
	}
	entries, err := t.appendLocked(
		now,
		t.config.Funder,
		[]LockEntry{{Beneficiary: beneficiary, Amount: amount, ReleaseTime: releaseTime}},
	)
	if err != nil {
		return 0, err
	}
	return len(t.entries) - len(entries), nil
}

// LockDirect locks amount for beneficiary until now plus the direct offset
func (t *Timelock) LockDirect(
	caller, beneficiary types.Address,
	amount types.Amount,
) (LockEntry, error) {
	return t.lockCategory(caller, beneficiary, amount, CategoryDirect)
}

// LockReferral locks amount for beneficiary until now plus the referral offset
func (t *Timelock) LockReferral(
	caller, beneficiary types.Address,
	amount types.Amount,
) (LockEntry, error) {
	return t.lockCategory(caller, beneficiary, amount, CategoryReferral)
}

// LockPurchase locks amount for beneficiary until now plus the purchase offset
func (t *Timelock) LockPurchase(
	caller, beneficiary types.Address,
	amount types.Amount,
) (LockEntry, error) {
	return t.lockCategory(caller, beneficiary, amount, CategoryPurchase)
}

func (t *Timelock) lockCategory(
	caller, beneficiary types.Address,
	amount types.Amount,
	category Category,
) (LockEntry, error) {
	entries, err := t.LockBatch(
		caller,
		[]LockRequest{{Beneficiary: beneficiary, Amount: amount, Category: category}},
	)
	if err != nil {
		return LockEntry{}, err
	}
	return entries[0], nil
}

// LockBatch creates several categorized entries as one unit. The funding for
// all of them is pulled from the caller in a single transfer and either every
// entry is appended or none is.
func (t *Timelock) LockBatch(
	caller types.Address,
	reqs []LockRequest,
) ([]LockEntry, error) {
	if !t.roles.IsAuthorized(caller, access.ActionLock) {
		t.logger.Warn("rejected lock from non-locker", "caller", caller.String())
		return nil, ErrNotLocker
	}
	if len(reqs) == 0 {
		return nil, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.config.Clock.Now()
	pending := make([]LockEntry, 0, len(reqs))
	for _, req := range reqs {
		if err := validateRequest(req.Beneficiary, req.Amount); err != nil {
			return nil, err
		}
		offset, err := t.Offset(req.Category)
		if err != nil {
			return nil, err
		}
		releaseTime := types.CeilSecond(now.Add(offset))
		if !types.ValidTime(releaseTime) {
			return nil, ErrReleaseOutOfRange
		}
		pending = append(pending, LockEntry{
			Beneficiary: req.Beneficiary,
			Amount:      req.Amount,
			ReleaseTime: releaseTime,
			Category:    req.Category,
		})
	}
	return t.appendLocked(now, caller, pending)
}

func validateRequest(beneficiary types.Address, amount types.Amount) error {
	if beneficiary.IsZero() {
		return ErrInvalidAddress
	}
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// appendLocked funds and appends validated entries. t.mu must be held.
func (t *Timelock) appendLocked(
	now time.Time,
	payer types.Address,
	pending []LockEntry,
) ([]LockEntry, error) {
	var total types.Amount
	for _, e := range pending {
		total = total.Add(e.Amount)
	}
	if err := t.config.Token.TransferFrom(
		t.config.Address,
		payer,
		t.config.Address,
		total,
	); err != nil {
		return nil, fmt.Errorf("fund lock: %w", err)
	}
	ret := make([]LockEntry, 0, len(pending))
	for _, e := range pending {
		e.ID = t.nextID
		t.nextID++
		t.entries = append(t.entries, e)
		ret = append(ret, e)
		index := len(t.entries) - 1
		t.logger.Debug(
			"locked",
			"id", e.ID,
			"index", index,
			"beneficiary", e.Beneficiary.String(),
			"amount", e.Amount.String(),
			"release_time", e.ReleaseTime,
			"category", e.Category.String(),
		)
		t.metrics.locksCreated.WithLabelValues(categoryLabel(e.Category)).Inc()
		t.publish(now, event.LockedEventType, event.LockedEvent{
			ID:          e.ID,
			Index:       index,
			Beneficiary: e.Beneficiary,
			Amount:      e.Amount,
			ReleaseTime: e.ReleaseTime,
			Category:    e.Category.String(),
		})
	}
	t.metrics.entries.Set(float64(len(t.entries)))
	return ret, nil
}

// Withdraw pays out the entry at index to its beneficiary and removes it by
// swap-and-pop
func (t *Timelock) Withdraw(caller types.Address, index int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.entries) {
		return IndexOutOfBoundsError{Index: index, Length: len(t.entries)}
	}
	entry := t.entries[index]
	if caller != entry.Beneficiary {
		t.logger.Warn(
			"rejected withdrawal from non-beneficiary",
			"caller", caller.String(),
			"index", index,
		)
		return ErrNotBeneficiary
	}
	now := t.config.Clock.Now()
	if now.Before(entry.ReleaseTime) {
		return ErrNotReleasable
	}
	if err := t.config.Token.Transfer(
		t.config.Address,
		entry.Beneficiary,
		entry.Amount,
	); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	last := len(t.entries) - 1
	var movedID uint64
	if index != last {
		t.entries[index] = t.entries[last]
		movedID = t.entries[index].ID
	}
	t.entries[last] = LockEntry{}
	t.entries = t.entries[:last]
	t.logger.Debug(
		"released",
		"id", entry.ID,
		"index", index,
		"beneficiary", entry.Beneficiary.String(),
		"amount", entry.Amount.String(),
	)
	t.metrics.releases.Inc()
	t.metrics.entries.Set(float64(len(t.entries)))
	t.publish(now, event.ReleasedEventType, event.ReleasedEvent{
		ID:          entry.ID,
		Index:       index,
		Beneficiary: entry.Beneficiary,
		Amount:      entry.Amount,
		MovedID:     movedID,
	})
	return nil
}

// GetLock returns the entry at index
func (t *Timelock) GetLock(index int) (LockEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.entries) {
		return LockEntry{}, IndexOutOfBoundsError{Index: index, Length: len(t.entries)}
	}
	return t.entries[index], nil
}

func (t *Timelock) GetLockedTokens(index int) (types.Amount, error) {
	entry, err := t.GetLock(index)
	if err != nil {
		return types.Amount{}, err
	}
	return entry.Amount, nil
}

func (t *Timelock) GetLockedTokensAddress(index int) (types.Address, error) {
	entry, err := t.GetLock(index)
	if err != nil {
		return types.ZeroAddress, err
	}
	return entry.Beneficiary, nil
}

func (t *Timelock) GetLocksLength() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// GetLocks returns a copy of all entries in index order
func (t *Timelock) GetLocks() []LockEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	ret := make([]LockEntry, len(t.entries))
	copy(ret, t.entries)
	return ret
}

func (t *Timelock) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	entries := make([]LockEntry, len(t.entries))
	copy(entries, t.entries)
	return State{
		Entries: entries,
		NextID:  t.nextID,
		Lockers: t.roles.Members(access.ActionLock),
	}
}

func (t *Timelock) Restore(state State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make([]LockEntry, len(state.Entries))
	copy(t.entries, state.Entries)
	t.nextID = max(state.NextID, 1)
	t.roles.SetMembers(access.ActionLock, state.Lockers)
	t.metrics.entries.Set(float64(len(t.entries)))
}

func (t *Timelock) publish(now time.Time, eventType event.EventType, data any) {
	if t.config.EventBus == nil {
		return
	}
	t.config.EventBus.Publish(eventType, event.NewEvent(eventType, now, data))
}
