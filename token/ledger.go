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

package token

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/PedroGalveias/OwkenERC20/clock"
	"github.com/PedroGalveias/OwkenERC20/event"
	"github.com/PedroGalveias/OwkenERC20/types"
)

type LedgerConfig struct {
	Logger   *slog.Logger
	EventBus *event.EventBus
	Clock    clock.Clock
	// Address is the ledger's own contract address
	Address types.Address
	// Holder receives the entire supply at construction
	Holder      types.Address
	TotalSupply types.Amount
	Name        string
	Symbol      string
	Decimals    uint8
}

// Ledger is an in-memory ERC-20 style fungible asset with a fixed supply
type Ledger struct {
	mu         sync.RWMutex
	config     LedgerConfig
	logger     *slog.Logger
	balances   map[types.Address]types.Amount
	allowances map[types.Address]map[types.Address]types.Amount
}

// Balance is one row of a ledger snapshot
type Balance struct {
	Account types.Address
	Amount  types.Amount
}

// Allowance is one row of a ledger snapshot
type Allowance struct {
	Owner   types.Address
	Spender types.Address
	Amount  types.Amount
}

// State is a point-in-time copy of the ledger, ordered by address
type State struct {
	Balances   []Balance
	Allowances []Allowance
}

// NewLedger creates the ledger and assigns the total supply to the holder
func NewLedger(cfg LedgerConfig) (*Ledger, error) {
	if cfg.Address.IsZero() {
		return nil, fmt.Errorf("%w: ledger address is zero", types.ErrConstruction)
	}
	if cfg.Holder.IsZero() {
		return nil, fmt.Errorf("%w: supply holder is zero", types.ErrConstruction)
	}
	if cfg.TotalSupply.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative supply", types.ErrConstruction)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.Symbol == "" {
		cfg.Symbol = DefaultSymbol
	}
	if cfg.Decimals == 0 {
		cfg.Decimals = DefaultDecimals
	}
	l := &Ledger{
		config:     cfg,
		logger:     cfg.Logger.With("component", "token"),
		balances:   make(map[types.Address]types.Amount),
		allowances: make(map[types.Address]map[types.Address]types.Amount),
	}
	if !cfg.TotalSupply.IsZero() {
		l.balances[cfg.Holder] = cfg.TotalSupply
	}
	l.publish(
		event.TransferEventType,
		event.TransferEvent{
			From:   types.ZeroAddress,
			To:     cfg.Holder,
			Amount: cfg.TotalSupply,
		},
	)
	return l, nil
}

func (l *Ledger) Address() types.Address {
	return l.config.Address
}

func (l *Ledger) Name() string {
	return l.config.Name
}

func (l *Ledger) Symbol() string {
	return l.config.Symbol
}

func (l *Ledger) Decimals() uint8 {
	return l.config.Decimals
}

func (l *Ledger) TotalSupply() types.Amount {
	return l.config.TotalSupply
}

func (l *Ledger) BalanceOf(account types.Address) types.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[account]
}

func (l *Ledger) Allowance(owner, spender types.Address) types.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allowances[owner][spender]
}

// Approve sets the allowance of spender over the owner's balance
func (l *Ledger) Approve(owner, spender types.Address, amount types.Amount) error {
	if owner.IsZero() || spender.IsZero() {
		return ErrInvalidAddress
	}
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	l.mu.Lock()
	l.setAllowance(owner, spender, amount)
	l.mu.Unlock()
	l.logger.Debug(
		"allowance set",
		"owner", owner.String(),
		"spender", spender.String(),
		"amount", amount.String(),
	)
	l.publish(
		event.ApprovalEventType,
		event.ApprovalEvent{Owner: owner, Spender: spender, Amount: amount},
	)
	return nil
}

// IncreaseAllowance adds to the allowance of spender over the owner's balance
func (l *Ledger) IncreaseAllowance(
	owner, spender types.Address,
	added types.Amount,
) error {
	if owner.IsZero() || spender.IsZero() {
		return ErrInvalidAddress
	}
	if added.Sign() < 0 {
		return ErrNegativeAmount
	}
	l.mu.Lock()
	next := l.allowances[owner][spender].Add(added)
	l.setAllowance(owner, spender, next)
	l.mu.Unlock()
	l.logger.Debug(
		"allowance increased",
		"owner", owner.String(),
		"spender", spender.String(),
		"amount", next.String(),
	)
	l.publish(
		event.ApprovalEventType,
		event.ApprovalEvent{Owner: owner, Spender: spender, Amount: next},
	)
	return nil
}

// Transfer moves amount from the caller's own balance
func (l *Ledger) Transfer(from, to types.Address, amount types.Amount) error {
	l.mu.Lock()
	err := l.move(from, to, amount)
	l.mu.Unlock()
	if err != nil {
		return err
	}
	l.logTransfer(from, to, amount)
	return nil
}

// TransferFrom moves amount from one account to another against the
// allowance granted to spender
func (l *Ledger) TransferFrom(
	spender, from, to types.Address,
	amount types.Amount,
) error {
	l.mu.Lock()
	allowed := l.allowances[from][spender]
	if allowed.Cmp(amount) < 0 {
		l.mu.Unlock()
		return InsufficientFundsError{
			Account:   from,
			Available: allowed,
			Requested: amount,
			Allowance: true,
		}
	}
	if err := l.move(from, to, amount); err != nil {
		l.mu.Unlock()
		return err
	}
	l.setAllowance(from, spender, allowed.Sub(amount))
	l.mu.Unlock()
	l.logTransfer(from, to, amount)
	return nil
}

// move must be called with the write lock held
func (l *Ledger) move(from, to types.Address, amount types.Amount) error {
	if from.IsZero() || to.IsZero() {
		return ErrInvalidAddress
	}
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	bal := l.balances[from]
	if bal.Cmp(amount) < 0 {
		return InsufficientFundsError{
			Account:   from,
			Available: bal,
			Requested: amount,
		}
	}
	l.setBalance(from, bal.Sub(amount))
	l.setBalance(to, l.balances[to].Add(amount))
	return nil
}

func (l *Ledger) setBalance(account types.Address, amount types.Amount) {
	if amount.IsZero() {
		delete(l.balances, account)
		return
	}
	l.balances[account] = amount
}

func (l *Ledger) setAllowance(owner, spender types.Address, amount types.Amount) {
	if amount.IsZero() {
		if spenders, ok := l.allowances[owner]; ok {
			delete(spenders, spender)
			if len(spenders) == 0 {
				delete(l.allowances, owner)
			}
		}
		return
	}
	if _, ok := l.allowances[owner]; !ok {
		l.allowances[owner] = make(map[types.Address]types.Amount)
	}
	l.allowances[owner][spender] = amount
}

func (l *Ledger) logTransfer(from, to types.Address, amount types.Amount) {
	l.logger.Debug(
		"transfer",
		"from", from.String(),
		"to", to.String(),
		"amount", amount.String(),
	)
	l.publish(
		event.TransferEventType,
		event.TransferEvent{From: from, To: to, Amount: amount},
	)
}

func (l *Ledger) publish(eventType event.EventType, data any) {
	if l.config.EventBus == nil {
		return
	}
	l.config.EventBus.Publish(
		eventType,
		event.NewEvent(eventType, l.config.Clock.Now(), data),
	)
}

// Snapshot returns a copy of every non-zero balance and allowance
func (l *Ledger) Snapshot() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var ret State
	for account, amount := range l.balances {
		ret.Balances = append(ret.Balances, Balance{Account: account, Amount: amount})
	}
	for owner, spenders := range l.allowances {
		for spender, amount := range spenders {
			ret.Allowances = append(
				ret.Allowances,
				Allowance{Owner: owner, Spender: spender, Amount: amount},
			)
		}
	}
	slices.SortFunc(ret.Balances, func(a, b Balance) int {
		return a.Account.Compare(b.Account)
	})
	slices.SortFunc(ret.Allowances, func(a, b Allowance) int {
		if c := a.Owner.Compare(b.Owner); c != 0 {
			return c
		}
		return a.Spender.Compare(b.Spender)
	})
	return ret
}

// Restore replaces the ledger contents with a previous snapshot
func (l *Ledger) Restore(state State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances = make(map[types.Address]types.Amount, len(state.Balances))
	l.allowances = make(map[types.Address]map[types.Address]types.Amount)
	for _, b := range state.Balances {
		l.setBalance(b.Account, b.Amount)
	}
	for _, a := range state.Allowances {
		l.setAllowance(a.Owner, a.Spender, a.Amount)
	}
}
