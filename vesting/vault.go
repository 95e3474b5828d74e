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

// Package vesting releases token grants linearly by whole days after a cliff.
//
// A grant pays amountPerDay for every whole day elapsed since its start time,
// fixed when the grant is added. Each claim moves the start time forward by
// the days paid, and the cliff is measured from the current start time. The
// final claim releases whatever remains, including integer division dust.
package vesting

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/PedroGalveias/OwkenERC20/access"
	"github.com/PedroGalveias/OwkenERC20/clock"
	"github.com/PedroGalveias/OwkenERC20/event"
	"github.com/PedroGalveias/OwkenERC20/timelock"
	"github.com/PedroGalveias/OwkenERC20/token"
	"github.com/PedroGalveias/OwkenERC20/types"
)

const (
	// MaxCliffDays is ten years of days
	MaxCliffDays = 365*10 + 2
	// MaxDurationDays is twenty five years of days
	MaxDurationDays = 365*25 + 6
)

type VaultConfig struct {
	PromRegistry prometheus.Registerer
	Logger       *slog.Logger
	EventBus     *event.EventBus
	Clock        clock.Clock
	Contracts    timelock.ContractChecker
	Token        token.AssetLedger
	// Address is the vault's own address
	Address    types.Address
	Controller types.Address
	// Funder holds the tokens and approves the vault to pay claims from them.
	// It defaults to the initial controller and does not follow later
	// controller changes.
	Funder types.Address
}

// Grant is one linear vesting schedule
type Grant struct {
	ID              uint64
	Recipient       types.Address
	StartTime       time.Time
	Amount          types.Amount
	AmountRemaining types.Amount
	AmountPerDay    types.Amount
	DurationDays    uint16
	CliffDays       uint16
	DaysClaimed     uint16
}

// Exhausted reports whether nothing is left to claim
func (g Grant) Exhausted() bool {
	return g.AmountRemaining.Sign() <= 0
}

// State is a point-in-time copy of the vault
type State struct {
	Grants     []Grant
	Active     map[types.Address][]uint64
	NextID     uint64
	Controller types.Address
}

type Vault struct {
	mu         sync.Mutex
	config     VaultConfig
	logger     *slog.Logger
	controller *access.Controller
	metrics    vaultMetrics
	grants     map[uint64]*Grant
	active     map[types.Address][]uint64
	nextID     uint64
}

func NewVault(cfg VaultConfig) (*Vault, error) {
	if cfg.Contracts == nil || cfg.Token == nil ||
		!cfg.Contracts.IsContract(cfg.Token.Address()) {
		return nil, ErrNotContract
	}
	if cfg.Address.IsZero() || cfg.Controller.IsZero() {
		return nil, fmt.Errorf(
			"%w: vault and controller addresses are required",
			types.ErrConstruction,
		)
	}
	if cfg.Funder.IsZero() {
		cfg.Funder = cfg.Controller
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	v := &Vault{
		config:     cfg,
		logger:     cfg.Logger.With("component", "vesting"),
		controller: access.NewController(cfg.Controller),
		grants:     make(map[uint64]*Grant),
		active:     make(map[types.Address][]uint64),
		nextID:     1,
	}
	v.initMetrics(cfg.PromRegistry)
	return v, nil
}

func (v *Vault) Address() types.Address {
	return v.config.Address
}

// Token returns the address of the asset ledger
func (v *Vault) Token() types.Address {
	return v.config.Token.Address()
}

// Controller returns the current controlling address
func (v *Vault) Controller() types.Address {
	return v.controller.Owner()
}

func (v *Vault) Funder() types.Address {
	return v.config.Funder
}

// AddTokenGrant registers a new grant. A zero startTime means now.
func (v *Vault) AddTokenGrant(
	caller, recipient types.Address,
	startTime time.Time,
	amount types.Amount,
	durationDays, cliffDays uint16,
) (uint64, error) {
	if !v.controller.IsAuthorized(caller, access.ActionControl) {
		v.logger.Warn("rejected grant from non-controller", "caller", caller.String())
		return 0, ErrNotOwner
	}
	if recipient.IsZero() {
		return 0, ErrInvalidRecipient
	}
	if cliffDays > MaxCliffDays {
		return 0, ErrCliffTooLong
	}
	if durationDays > MaxDurationDays {
		return 0, ErrDurationTooLong
	}
	if durationDays < cliffDays {
		return 0, ErrDurationBelowCliff
	}
	perDay := amount.DivUint64(uint64(durationDays))
	if perDay.Sign() <= 0 {
		return 0, ErrZeroDailyRate
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	now := v.config.Clock.Now()
	if startTime.IsZero() {
		startTime = now
	}
	startTime = types.CeilSecond(startTime)
	if !types.ValidTime(startTime) {
		return 0, ErrStartOutOfRange
	}
	grant := &Grant{
		ID:              v.nextID,
		Recipient:       recipient,
		StartTime:       startTime,
		Amount:          amount,
		AmountRemaining: amount,
		AmountPerDay:    perDay,
		DurationDays:    durationDays,
		CliffDays:       cliffDays,
	}
	v.nextID++
	v.grants[grant.ID] = grant
	v.active[recipient] = append(v.active[recipient], grant.ID)
	v.logger.Debug(
		"grant added",
		"grant_id", grant.ID,
		"recipient", recipient.String(),
		"start_time", startTime,
		"amount", amount.String(),
		"duration_days", durationDays,
		"cliff_days", cliffDays,
	)
	v.metrics.grantsAdded.Inc()
	v.metrics.grants.Set(float64(len(v.grants)))
	v.publish(now, event.GrantAddedEventType, event.GrantAddedEvent{
		GrantID:      grant.ID,
		Recipient:    recipient,
		StartTime:    startTime,
		Amount:       amount,
		DurationDays: durationDays,
		CliffDays:    cliffDays,
	})
	return grant.ID, nil
}

// RemoveTokenGrant deletes a grant. Anything not yet claimed is no longer
// owed; reclaiming the matching allowance is up to the funder.
func (v *Vault) RemoveTokenGrant(caller types.Address, grantID uint64) error {
	if !v.controller.IsAuthorized(caller, access.ActionControl) {
		v.logger.Warn("rejected grant removal from non-controller", "caller", caller.String())
		return ErrNotOwner
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	grant, ok := v.grants[grantID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownGrant, grantID)
	}
	delete(v.grants, grantID)
	ids := v.active[grant.Recipient]
	if i := slices.Index(ids, grantID); i >= 0 {
		last := len(ids) - 1
		ids[i] = ids[last]
		ids = ids[:last]
	}
	if len(ids) == 0 {
		delete(v.active, grant.Recipient)
	} else {
		v.active[grant.Recipient] = ids
	}
	v.logger.Debug(
		"grant removed",
		"grant_id", grantID,
		"recipient", grant.Recipient.String(),
		"amount_dropped", grant.AmountRemaining.String(),
	)
	v.metrics.grantsRemoved.Inc()
	v.metrics.grants.Set(float64(len(v.grants)))
	v.publish(v.config.Clock.Now(), event.GrantRemovedEventType, event.GrantRemovedEvent{
		GrantID:       grantID,
		Recipient:     grant.Recipient,
		AmountVested:  grant.Amount.Sub(grant.AmountRemaining),
		AmountDropped: grant.AmountRemaining,
	})
	return nil
}

// TokensVestedPerDay returns the fixed daily rate of a grant
func (v *Vault) TokensVestedPerDay(grantID uint64) (types.Amount, error) {
	grant, err := v.GetGrant(grantID)
	if err != nil {
		return types.Amount{}, err
	}
	return grant.AmountPerDay, nil
}

// CalculateGrantClaim returns the whole days and amount claimable right now
func (v *Vault) CalculateGrantClaim(grantID uint64) (uint16, types.Amount, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	grant, ok := v.grants[grantID]
	if !ok {
		return 0, types.Amount{}, fmt.Errorf("%w: %d", ErrUnknownGrant, grantID)
	}
	days, amount := grant.claimable(v.config.Clock.Now())
	return days, amount, nil
}

func (g *Grant) claimable(now time.Time) (uint16, types.Amount) {
	if g.Exhausted() {
		return 0, types.Amount{}
	}
	cliffEnd := g.StartTime.Add(time.Duration(g.CliffDays) * clock.Day)
	if now.Before(cliffEnd) {
		return 0, types.Amount{}
	}
	elapsed := clock.WholeDays(g.StartTime, now)
	if elapsed == 0 {
		return 0, types.Amount{}
	}
	remainingDays := uint64(g.DurationDays - min(g.DaysClaimed, g.DurationDays))
	if elapsed >= remainingDays {
		return uint16(remainingDays), g.AmountRemaining
	}
	amount := types.MinAmount(g.AmountPerDay.MulUint64(elapsed), g.AmountRemaining)
	return uint16(elapsed), amount
}

// ClaimVestedTokens pays everything currently claimable to the grant's
// recipient. Anyone may trigger it.
func (v *Vault) ClaimVestedTokens(grantID uint64) (types.Amount, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	grant, ok := v.grants[grantID]
	if !ok {
		return types.Amount{}, fmt.Errorf("%w: %d", ErrUnknownGrant, grantID)
	}
	now := v.config.Clock.Now()
	days, amount := grant.claimable(now)
	if amount.Sign() <= 0 {
		return types.Amount{}, ErrNothingVested
	}
	if err := v.config.Token.TransferFrom(
		v.config.Address,
		v.config.Funder,
		grant.Recipient,
		amount,
	); err != nil {
		return types.Amount{}, fmt.Errorf("pay grant %d: %w", grantID, err)
	}
	grant.AmountRemaining = grant.AmountRemaining.Sub(amount)
	grant.DaysClaimed += days
	grant.StartTime = grant.StartTime.Add(time.Duration(days) * clock.Day)
	v.logger.Debug(
		"tokens claimed",
		"grant_id", grantID,
		"recipient", grant.Recipient.String(),
		"days", days,
		"amount", amount.String(),
		"remaining", grant.AmountRemaining.String(),
	)
	v.metrics.claims.Inc()
	v.publish(now, event.GrantTokensClaimedEventType, event.GrantTokensClaimedEvent{
		GrantID:   grantID,
		Recipient: grant.Recipient,
		Amount:    amount,
		Days:      uint64(days),
	})
	return amount, nil
}

// GetActiveGrants returns the grant ids indexed under recipient. Removal
// swaps the last id into the vacated slot, so order is not creation order.
func (v *Vault) GetActiveGrants(recipient types.Address) []uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.active[recipient])
}

func (v *Vault) GetGrant(grantID uint64) (Grant, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	grant, ok := v.grants[grantID]
	if !ok {
		return Grant{}, fmt.Errorf("%w: %d", ErrUnknownGrant, grantID)
	}
	return *grant, nil
}

// Grants returns every grant ordered by id
func (v *Vault) Grants() []Grant {
	v.mu.Lock()
	defer v.mu.Unlock()
	ret := make([]Grant, 0, len(v.grants))
	for _, id := range slices.Sorted(maps.Keys(v.grants)) {
		ret = append(ret, *v.grants[id])
	}
	return ret
}

// ChangeMultiSig hands control of the vault to next
func (v *Vault) ChangeMultiSig(caller, next types.Address) error {
	if !v.controller.IsAuthorized(caller, access.ActionControl) {
		v.logger.Warn("rejected controller change", "caller", caller.String())
		return ErrNotOwner
	}
	if next.IsZero() || next == v.config.Address || next == v.config.Token.Address() {
		return ErrInvalidRecipient
	}
	if err := v.controller.Transfer(caller, next); err != nil {
		return err
	}
	v.logger.Info(
		"controller changed",
		"previous", caller.String(),
		"next", next.String(),
	)
	v.publish(v.config.Clock.Now(), event.ChangedMultisigEventType, event.ChangedMultisigEvent{
		Previous: caller,
		Next:     next,
	})
	return nil
}

func (v *Vault) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	ret := State{
		Grants:     make([]Grant, 0, len(v.grants)),
		Active:     make(map[types.Address][]uint64, len(v.active)),
		NextID:     v.nextID,
		Controller: v.controller.Owner(),
	}
	for _, id := range slices.Sorted(maps.Keys(v.grants)) {
		ret.Grants = append(ret.Grants, *v.grants[id])
	}
	for recipient, ids := range v.active {
		ret.Active[recipient] = slices.Clone(ids)
	}
	return ret
}

func (v *Vault) Restore(state State) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.grants = make(map[uint64]*Grant, len(state.Grants))
	for _, g := range state.Grants {
		v.grants[g.ID] = &g
	}
	v.active = make(map[types.Address][]uint64, len(state.Active))
	for recipient, ids := range state.Active {
		if len(ids) > 0 {
			v.active[recipient] = slices.Clone(ids)
		}
	}
	v.nextID = max(state.NextID, 1)
	if !state.Controller.IsZero() {
		v.controller.Reset(state.Controller)
	}
	v.metrics.grants.Set(float64(len(v.grants)))
}

func (v *Vault) publish(now time.Time, eventType event.EventType, data any) {
	if v.config.EventBus == nil {
		return
	}
	v.config.EventBus.Publish(eventType, event.NewEvent(eventType, now, data))
}
