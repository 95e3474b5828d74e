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

package owken

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PedroGalveias/OwkenERC20/contracts"
	"github.com/PedroGalveias/OwkenERC20/conversion"
	"github.com/PedroGalveias/OwkenERC20/database"
	"github.com/PedroGalveias/OwkenERC20/database/models"
	"github.com/PedroGalveias/OwkenERC20/event"
	"github.com/PedroGalveias/OwkenERC20/timelock"
	"github.com/PedroGalveias/OwkenERC20/token"
	"github.com/PedroGalveias/OwkenERC20/types"
	"github.com/PedroGalveias/OwkenERC20/vesting"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrNotStarted      = errors.New("node not started")
	ErrAlreadyStarted  = errors.New("node already started")
	ErrNotDeployed     = errors.New("nothing deployed")
	ErrAlreadyDeployed = errors.New("already deployed")
	ErrDeployFailed    = errors.New("an earlier deployment failed, restart the node")
)

// Components groups the deployed distribution components
type Components struct {
	Ledger     *token.Ledger
	Timelock   *timelock.Timelock
	Conversion *conversion.Conversion
	Vault      *vesting.Vault
}

// Deployment describes a provisioned set of components
type Deployment struct {
	Deployer       types.Address `json:"deployer"`
	Funder         types.Address `json:"funder"`
	Token          types.Address `json:"token"`
	Timelock       types.Address `json:"timelock"`
	Conversion     types.Address `json:"conversion"`
	Vault          types.Address `json:"vault"`
	TotalSupply    types.Amount  `json:"totalSupply"`
	DeployedAt     time.Time     `json:"deployedAt"`
	OpeningTime    time.Time     `json:"openingTime"`
	ClosingTime    time.Time     `json:"closingTime"`
	DirectOffset   time.Duration `json:"directOffset"`
	ReferralOffset time.Duration `json:"referralOffset"`
	PurchaseOffset time.Duration `json:"purchaseOffset"`
	GrantIDs       []uint64      `json:"grantIds,omitempty"`
}

type Node struct {
	config        Config
	eventBus      *event.EventBus
	db            *database.Database
	contracts     *contracts.Registry
	components    *Components
	deployment    Deployment
	deployErr     error
	journal       *journalSink
	journalSubs   []journalSubscription
	tracer        trace.Tracer
	metrics       nodeMetrics
	shutdownFuncs []func(context.Context) error
	mu            sync.Mutex
	shutdownOnce  sync.Once
	started       bool
}

func New(cfg Config) (*Node, error) {
	n := &Node{
		config: cfg,
	}
	if err := n.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	n.eventBus = event.NewEventBus(cfg.promRegistry, cfg.logger)
	n.metrics.init(cfg.promRegistry)
	return n, nil
}

// Start opens the database and rebuilds any persisted deployment
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.started {
		return ErrAlreadyStarted
	}
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(ctx); err != nil {
			return fmt.Errorf("failed to configure tracing: %w", err)
		}
	}
	n.tracer = otel.Tracer(tracerName)
	// Load database
	db, err := database.New(n.config.logger, n.config.promRegistry, n.config.dataDir)
	if db == nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	if err != nil {
		var tsErr database.CommitTimestampError
		if !errors.As(err, &tsErr) {
			return fmt.Errorf("failed to open database: %w", err)
		}
		// The state image is authoritative, the next commit resyncs both stores
		n.config.logger.Warn(
			"database commit timestamps differ, journal may hold records of an uncommitted operation",
			"component", "node",
			"error", err,
		)
	}
	img, err := n.db.GetState(nil)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}
	if !img.Empty() {
		if err := n.load(img); err != nil {
			return fmt.Errorf("failed to rebuild deployment: %w", err)
		}
		n.config.logger.Info(
			"loaded deployment",
			"component", "node",
			"token", n.deployment.Token.String(),
			"conversion", n.deployment.Conversion.String(),
		)
	}
	// Journal everything published from here on
	n.registerJournal()
	n.started = true
	return nil
}

func (n *Node) load(img *models.State) error {
	dep, err := deploymentFromImage(img)
	if err != nil {
		return err
	}
	snap, err := states(img)
	if err != nil {
		return err
	}
	n.contracts = registryFromImage(img)
	components, err := n.build(dep)
	if err != nil {
		return err
	}
	components.restore(snap)
	n.components = components
	n.deployment = dep
	return nil
}

// build constructs every component for an existing or new deployment
func (n *Node) build(dep Deployment) (*Components, error) {
	ledger, err := token.NewLedger(token.LedgerConfig{
		Logger:      n.config.logger,
		EventBus:    n.eventBus,
		Clock:       n.config.clock,
		Address:     dep.Token,
		Holder:      dep.Funder,
		TotalSupply: dep.TotalSupply,
	})
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	lock, err := timelock.NewTimelock(timelock.TimelockConfig{
		PromRegistry:   n.config.promRegistry,
		Logger:         n.config.logger,
		EventBus:       n.eventBus,
		Clock:          n.config.clock,
		Contracts:      n.contracts,
		Token:          ledger,
		Address:        dep.Timelock,
		Admin:          dep.Deployer,
		Funder:         dep.Funder,
		DirectOffset:   dep.DirectOffset,
		ReferralOffset: dep.ReferralOffset,
		PurchaseOffset: dep.PurchaseOffset,
	})
	if err != nil {
		return nil, fmt.Errorf("timelock: %w", err)
	}
	conv, err := conversion.NewConversion(conversion.ConversionConfig{
		PromRegistry: n.config.promRegistry,
		Logger:       n.config.logger,
		EventBus:     n.eventBus,
		Clock:        n.config.clock,
		Contracts:    n.contracts,
		Token:        ledger,
		Timelock:     lock,
		Address:      dep.Conversion,
		Admin:        dep.Deployer,
		Funder:       dep.Funder,
		OpeningTime:  dep.OpeningTime,
		ClosingTime:  dep.ClosingTime,
		DeployedAt:   dep.DeployedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("conversion: %w", err)
	}
	vault, err := vesting.NewVault(vesting.VaultConfig{
		PromRegistry: n.config.promRegistry,
		Logger:       n.config.logger,
		EventBus:     n.eventBus,
		Clock:        n.config.clock,
		Contracts:    n.contracts,
		Token:        ledger,
		Address:      dep.Vault,
		Controller:   dep.Deployer,
		Funder:       dep.Funder,
	})
	if err != nil {
		return nil, fmt.Errorf("vesting: %w", err)
	}
	return &Components{
		Ledger:     ledger,
		Timelock:   lock,
		Conversion: conv,
		Vault:      vault,
	}, nil
}

// Execute runs fn against the deployed components as one atomic operation.
// The events fn produces are journaled and the resulting state persisted in a
// single database transaction. If fn or the write fails, every component is
// restored to its state before the call.
func (n *Node) Execute(
	ctx context.Context,
	name string,
	fn func(*Components) error,
) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.started {
		return ErrNotStarted
	}
	if n.components == nil {
		return ErrNotDeployed
	}
	ctx, span := n.tracer.Start(ctx, name)
	defer span.End()
	start := time.Now()
	snap := n.components.snapshot()
	n.journal.discard()
	err := fn(n.components)
	if err == nil {
		err = n.persist(ctx)
		if err != nil {
			err = fmt.Errorf("persist %s: %w", name, err)
		}
	}
	n.metrics.observe(name, start, err)
	if err != nil {
		n.components.restore(snap)
		n.journal.discard()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		n.config.logger.Debug(
			"operation rejected",
			"component", "node",
			"operation", name,
			"error", err,
		)
		return err
	}
	n.config.logger.Debug(
		"operation committed",
		"component", "node",
		"operation", name,
	)
	return nil
}

// View runs fn against the deployed components without persisting anything.
// Operations are excluded while fn runs.
func (n *Node) View(fn func(*Components) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.started {
		return ErrNotStarted
	}
	if n.components == nil {
		return ErrNotDeployed
	}
	return fn(n.components)
}

// persist writes the journal records and the state image of the operation
// that just ran
func (n *Node) persist(ctx context.Context) error {
	_, span := n.tracer.Start(ctx, "persist")
	defer span.End()
	records, err := n.journal.drain()
	if err != nil {
		return err
	}
	img := n.image()
	span.SetAttributes(
		attribute.Int("journal.records", len(records)),
		attribute.Int("state.locks", len(img.LockEntries)),
		attribute.Int("state.grants", len(img.Grants)),
	)
	return n.db.Transaction(true).Do(func(txn *database.Txn) error {
		if err := n.db.SetState(img, txn); err != nil {
			return err
		}
		return n.db.AppendJournal(records, txn)
	})
}

// Deployed reports whether components are available
func (n *Node) Deployed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.components != nil
}

// Deployment returns the provisioned addresses and parameters
func (n *Node) Deployment() (Deployment, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.components == nil {
		return Deployment{}, ErrNotDeployed
	}
	return n.deployment, nil
}

// EventBus returns the bus every component publishes to
func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

// Now reads the clock shared by the components
func (n *Node) Now() time.Time {
	return n.config.clock.Now()
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), n.config.shutdownTimeout)
	defer cancel()
	n.mu.Lock()
	defer n.mu.Unlock()

	var err error
	n.config.logger.Debug("starting graceful shutdown", "component", "node")
	if n.journal != nil {
		n.unregisterJournal()
	}
	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
		n.db = nil
	}
	// Call registered shutdown functions
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil
	n.eventBus.Stop()
	n.started = false
	n.config.logger.Debug("graceful shutdown complete", "component", "node")
	return err
}
