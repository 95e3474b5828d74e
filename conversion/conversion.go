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

// Package conversion implements the time-boxed subscription window. Operators
// record categorized commitments while the window is open. Once it closes the
// balances are forwarded into the lock registry.
package conversion

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
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

// LockRegistry is the part of the lock registry the window forwards into
type LockRegistry interface {
	Address() types.Address
	IsLocker(types.Address) bool
	LockBatch(
		caller types.Address,
		reqs []timelock.LockRequest,
	) ([]timelock.LockEntry, error)
}

type ConversionConfig struct {
	PromRegistry prometheus.Registerer
	Logger       *slog.Logger
	EventBus     *event.EventBus
	Clock        clock.Clock
	Contracts    timelock.ContractChecker
	Token        token.AssetLedger
	Timelock     LockRegistry
	// Address is the window's own address
	Address types.Address
	Admin   types.Address
	// Funder approves the window to draw the amounts it forwards. It
	// defaults to Admin.
	Funder      types.Address
	OpeningTime time.Time
	ClosingTime time.Time
	// DeployedAt, when set, replaces the current time in the opening time
	// check. It is used when rebuilding a window from persisted state.
	DeployedAt time.Time
}

// Balance is one non-zero accumulator of a window snapshot
type Balance struct {
	Account  types.Address
	Category timelock.Category
	Amount   types.Amount
}

// State is a point-in-time copy of the mutable window state
type State struct {
	Balances  []Balance
	Operators []types.Address
}

type Conversion struct {
	mu       sync.Mutex
	config   ConversionConfig
	logger   *slog.Logger
	roles    *access.RoleSet
	metrics  conversionMetrics
	balances map[types.Address]map[timelock.Category]types.Amount
}

type deposit struct {
	category timelock.Category
	amount   types.Amount
}

func NewConversion(cfg ConversionConfig) (*Conversion, error) {
	if cfg.Contracts == nil || cfg.Token == nil || cfg.Timelock == nil {
		return nil, ErrNotContract
	}
	if !cfg.Contracts.IsContract(cfg.Token.Address()) ||
		!cfg.Contracts.IsContract(cfg.Timelock.Address()) {
		return nil, ErrNotContract
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	deployedAt := cfg.DeployedAt
	if deployedAt.IsZero() {
		deployedAt = cfg.Clock.Now()
	}
	if !cfg.OpeningTime.After(deployedAt) {
		return nil, ErrOpeningInPast
	}
	if !cfg.OpeningTime.Before(cfg.ClosingTime) {
		return nil, ErrOpeningNotBeforeClosing
	}
	if cfg.Address.IsZero() || cfg.Admin.IsZero() {
		return nil, fmt.Errorf(
			"%w: window and admin addresses are required",
			types.ErrConstruction,
		)
	}
	if cfg.Funder.IsZero() {
		cfg.Funder = cfg.Admin
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	c := &Conversion{
		config:   cfg,
		logger:   cfg.Logger.With("component", "conversion"),
		roles:    access.NewRoleSet(cfg.Admin),
		balances: make(map[types.Address]map[timelock.Category]types.Amount),
	}
	c.initMetrics(cfg.PromRegistry)
	return c, nil
}

func (c *Conversion) Address() types.Address {
	return c.config.Address
}

func (c *Conversion) Admin() types.Address {
	return c.roles.Admin()
}

// Token returns the address of the asset ledger
func (c *Conversion) Token() types.Address {
	return c.config.Token.Address()
}

// LockRegistry returns the address of the lock registry balances go to
func (c *Conversion) LockRegistry() types.Address {
	return c.config.Timelock.Address()
}

func (c *Conversion) OpeningTime() time.Time {
	return c.config.OpeningTime
}

func (c *Conversion) ClosingTime() time.Time {
	return c.config.ClosingTime
}

// IsOpen reports whether deposits are accepted right now
func (c *Conversion) IsOpen() bool {
	now := c.config.Clock.Now()
	return !now.Before(c.config.OpeningTime) && now.Before(c.config.ClosingTime)
}

// HasClosed reports whether the window has ended
func (c *Conversion) HasClosed() bool {
	return !c.config.Clock.Now().Before(c.config.ClosingTime)
}

// HasOperatorRole reports whether account may deposit. The administrator
// always may.
func (c *Conversion) HasOperatorRole(account types.Address) bool {
	return c.roles.IsAuthorized(account, access.ActionDeposit)
}

func (c *Conversion) GrantOperatorRole(caller, account types.Address) error {
	if account.IsZero() {
		return ErrInvalidAddress
	}
	if err := c.roles.Grant(caller, access.ActionDeposit, account); err != nil {
		c.logger.Warn("rejected operator grant", "caller", caller.String())
		return err
	}
	c.logger.Debug("operator granted", "operator", account.String())
	c.publish(event.OperatorGrantedEventType, event.OperatorEvent{
		Admin:    caller,
		Operator: account,
	})
	return nil
}

func (c *Conversion) RevokeOperatorRole(caller, account types.Address) error {
	if err := c.roles.Revoke(caller, access.ActionDeposit, account); err != nil {
		c.logger.Warn("rejected operator revoke", "caller", caller.String())
		return err
	}
	c.logger.Debug("operator revoked", "operator", account.String())
	c.publish(event.OperatorRevokedEventType, event.OperatorEvent{
		Admin:    caller,
		Operator: account,
	})
	return nil
}

// Operators returns the explicitly granted operators
func (c *Conversion) Operators() []types.Address {
	return c.roles.Members(access.ActionDeposit)
}

// Balance returns the accumulated amount for one category
func (c *Conversion) Balance(
	account types.Address,
	category timelock.Category,
) types.Amount {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balances[account][category]
}

func (c *Conversion) BalanceDirect(account types.Address) types.Amount {
	return c.Balance(account, timelock.CategoryDirect)
}

func (c *Conversion) BalanceReferral(account types.Address) types.Amount {
	return c.Balance(account, timelock.CategoryReferral)
}

func (c *Conversion) BalancePurchase(account types.Address) types.Amount {
	return c.Balance(account, timelock.CategoryPurchase)
}

func (c *Conversion) DepositDirect(
	caller, beneficiary types.Address,
	amount types.Amount,
) error {
	return c.deposit(caller, beneficiary,
		deposit{timelock.CategoryDirect, amount},
	)
}

func (c *Conversion) DepositReferral(
	caller, beneficiary types.Address,
	amount types.Amount,
) error {
	return c.deposit(caller, beneficiary,
		deposit{timelock.CategoryReferral, amount},
	)
}

func (c *Conversion) DepositPurchase(
	caller, beneficiary types.Address,
	amount types.Amount,
) error {
	return c.deposit(caller, beneficiary,
		deposit{timelock.CategoryPurchase, amount},
	)
}

func (c *Conversion) DepositDirectReferral(
	caller, beneficiary types.Address,
	direct, referral types.Amount,
) error {
	return c.deposit(caller, beneficiary,
		deposit{timelock.CategoryDirect, direct},
		deposit{timelock.CategoryReferral, referral},
	)
}

func (c *Conversion) DepositDirectPurchase(
	caller, beneficiary types.Address,
	direct, purchase types.Amount,
) error {
	return c.deposit(caller, beneficiary,
		deposit{timelock.CategoryDirect, direct},
		deposit{timelock.CategoryPurchase, purchase},
	)
}

func (c *Conversion) DepositReferralPurchase(
	caller, beneficiary types.Address,
	referral, purchase types.Amount,
) error {
	return c.deposit(caller, beneficiary,
		deposit{timelock.CategoryReferral, referral},
		deposit{timelock.CategoryPurchase, purchase},
	)
}

func (c *Conversion) DepositDirectReferralPurchase(
	caller, beneficiary types.Address,
	direct, referral, purchase types.Amount,
) error {
	return c.deposit(caller, beneficiary,
		deposit{timelock.CategoryDirect, direct},
		deposit{timelock.CategoryReferral, referral},
		deposit{timelock.CategoryPurchase, purchase},
	)
}

// deposit validates every part before crediting any of them
func (c *Conversion) deposit(
	caller, beneficiary types.Address,
	parts ...deposit,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.config.Clock.Now()
	if now.Before(c.config.OpeningTime) || !now.Before(c.config.ClosingTime) {
		return NotOpenError{
			Now:         now,
			OpeningTime: c.config.OpeningTime,
			ClosingTime: c.config.ClosingTime,
		}
	}
	if !c.HasOperatorRole(caller) {
		c.logger.Warn("rejected deposit from non-operator", "caller", caller.String())
		return ErrNotOperator
	}
	if beneficiary.IsZero() {
		return ErrInvalidAddress
	}
	for _, part := range parts {
		if part.amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
	}
	if _, ok := c.balances[beneficiary]; !ok {
		c.balances[beneficiary] = make(map[timelock.Category]types.Amount)
	}
	for _, part := range parts {
		acct := c.balances[beneficiary]
		acct[part.category] = acct[part.category].Add(part.amount)
		c.logger.Debug(
			"deposit",
			"operator", caller.String(),
			"beneficiary", beneficiary.String(),
			"category", part.category.String(),
			"amount", part.amount.String(),
		)
		c.metrics.deposits.WithLabelValues(part.category.String()).Inc()
		c.publishAt(now, event.DepositedEventType, event.DepositedEvent{
			Operator:    caller,
			Beneficiary: beneficiary,
			Category:    part.category.String(),
			Amount:      part.amount,
		})
	}
	return nil
}

// WithdrawDirect forwards the direct balance of beneficiary to the lock
// registry. It reports false when there was nothing to forward.
func (c *Conversion) WithdrawDirect(beneficiary types.Address) (bool, error) {
	return c.withdraw(beneficiary, timelock.CategoryDirect)
}

func (c *Conversion) WithdrawReferral(beneficiary types.Address) (bool, error) {
	return c.withdraw(beneficiary, timelock.CategoryReferral)
}

func (c *Conversion) WithdrawPurchase(beneficiary types.Address) (bool, error) {
	return c.withdraw(beneficiary, timelock.CategoryPurchase)
}

// Withdraw forwards every category at once, referral then direct then
// purchase. Either all positive balances are locked or none is.
func (c *Conversion) Withdraw(beneficiary types.Address) (bool, error) {
	return c.withdraw(beneficiary, timelock.Categories...)
}

func (c *Conversion) withdraw(
	beneficiary types.Address,
	categories ...timelock.Category,
) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.config.Clock.Now()
	if now.Before(c.config.ClosingTime) {
		return false, ErrNotClosed
	}
	var reqs []timelock.LockRequest
	var total types.Amount
	for _, category := range categories {
		amount := c.balances[beneficiary][category]
		if amount.Sign() <= 0 {
			continue
		}
		reqs = append(reqs, timelock.LockRequest{
			Beneficiary: beneficiary,
			Amount:      amount,
			Category:    category,
		})
		total = total.Add(amount)
	}
	if len(reqs) == 0 {
		return false, nil
	}
	entries, err := c.forward(total, reqs)
	if err != nil {
		return false, err
	}
	for i, req := range reqs {
		delete(c.balances[beneficiary], req.Category)
		c.logger.Debug(
			"forwarded to lock registry",
			"beneficiary", beneficiary.String(),
			"category", req.Category.String(),
			"amount", req.Amount.String(),
			"lock_id", entries[i].ID,
		)
		c.metrics.forwarded.WithLabelValues(req.Category.String()).Inc()
		c.publishAt(now, event.ForwardedEventType, event.ForwardedEvent{
			Beneficiary: beneficiary,
			Category:    req.Category.String(),
			Amount:      req.Amount,
			LockID:      entries[i].ID,
		})
	}
	if len(c.balances[beneficiary]) == 0 {
		delete(c.balances, beneficiary)
	}
	return true, nil
}

// forward draws total from the funder, lets the lock registry pull it and
// creates the entries. A failure after the draw hands the funds back.
func (c *Conversion) forward(
	total types.Amount,
	reqs []timelock.LockRequest,
) ([]timelock.LockEntry, error) {
	self := c.config.Address
	lockAddr := c.config.Timelock.Address()
	if !c.config.Timelock.IsLocker(self) {
		return nil, fmt.Errorf("%w: %s", ErrNotLocker, self)
	}
	ledger := c.config.Token
	if err := ledger.TransferFrom(self, c.config.Funder, self, total); err != nil {
		return nil, fmt.Errorf("draw from funder: %w", err)
	}
	prevAllowance := ledger.Allowance(self, lockAddr)
	if err := ledger.IncreaseAllowance(self, lockAddr, total); err != nil {
		return nil, c.refund(total, prevAllowance, fmt.Errorf("approve lock registry: %w", err))
	}
	entries, err := c.config.Timelock.LockBatch(self, reqs)
	if err != nil {
		return nil, c.refund(total, prevAllowance, err)
	}
	return entries, nil
}

func (c *Conversion) refund(total, prevAllowance types.Amount, cause error) error {
	self := c.config.Address
	ledger := c.config.Token
	return errors.Join(
		cause,
		ledger.Approve(self, c.config.Timelock.Address(), prevAllowance),
		ledger.Transfer(self, c.config.Funder, total),
	)
}

// Receive rejects a bare value transfer to the window
func (c *Conversion) Receive(from types.Address, amount types.Amount) error {
	c.logger.Warn(
		"rejected bare transfer",
		"from", from.String(),
		"amount", amount.String(),
	)
	return ErrBareTransfer
}

func (c *Conversion) Snapshot() State {
	c.mu.Lock()
	var ret State
	for account, byCategory := range c.balances {
		for category, amount := range byCategory {
			ret.Balances = append(ret.Balances, Balance{
				Account:  account,
				Category: category,
				Amount:   amount,
			})
		}
	}
	c.mu.Unlock()
	slices.SortFunc(ret.Balances, func(a, b Balance) int {
		if cmp := a.Account.Compare(b.Account); cmp != 0 {
			return cmp
		}
		return int(a.Category) - int(b.Category)
	})
	ret.Operators = c.Operators()
	return ret
}

func (c *Conversion) Restore(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances = make(map[types.Address]map[timelock.Category]types.Amount)
	for _, b := range state.Balances {
		if b.Amount.Sign() <= 0 {
			continue
		}
		if _, ok := c.balances[b.Account]; !ok {
			c.balances[b.Account] = make(map[timelock.Category]types.Amount)
		}
		c.balances[b.Account][b.Category] = b.Amount
	}
	c.roles.SetMembers(access.ActionDeposit, state.Operators)
}

func (c *Conversion) publish(eventType event.EventType, data any) {
	c.publishAt(c.config.Clock.Now(), eventType, data)
}

func (c *Conversion) publishAt(now time.Time, eventType event.EventType, data any) {
	if c.config.EventBus == nil {
		return
	}
	c.config.EventBus.Publish(eventType, event.NewEvent(eventType, now, data))
}
