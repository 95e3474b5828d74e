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
	"time"

	"github.com/PedroGalveias/OwkenERC20/contracts"
	"github.com/PedroGalveias/OwkenERC20/timelock"
	"github.com/PedroGalveias/OwkenERC20/token"
	"github.com/PedroGalveias/OwkenERC20/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// GrantParams describes one vesting grant created during provisioning
type GrantParams struct {
	Recipient types.Address
	// StartOffset is added to the window opening time to get the grant start
	StartOffset  time.Duration
	Amount       types.Amount
	DurationDays uint16
	CliffDays    uint16
}

type DeployParams struct {
	Deployer types.Address
	// Funder receives the supply and approves every component. It defaults
	// to Deployer.
	Funder types.Address
	// TotalSupply defaults to token.DefaultSupply
	TotalSupply types.Amount
	// OpeningDelay is the time from now until the window opens
	OpeningDelay time.Duration
	WindowLength time.Duration
	// Zero offsets select the registry defaults
	DirectOffset   time.Duration
	ReferralOffset time.Duration
	PurchaseOffset time.Duration
	// Allowances granted by the funder. Zero means the total supply.
	TimelockAllowance   types.Amount
	ConversionAllowance types.Amount
	VaultAllowance      types.Amount
	Grants              []GrantParams
}

func (p *DeployParams) validate() error {
	if p.Deployer.IsZero() {
		return fmt.Errorf("%w: deployer is the zero address", types.ErrConstruction)
	}
	if p.OpeningDelay <= 0 {
		return fmt.Errorf("%w: opening delay must be positive", types.ErrConstruction)
	}
	if p.WindowLength <= 0 {
		return fmt.Errorf("%w: window length must be positive", types.ErrConstruction)
	}
	if p.DirectOffset < 0 || p.ReferralOffset < 0 || p.PurchaseOffset < 0 {
		return fmt.Errorf("%w: lock offsets can't be negative", types.ErrConstruction)
	}
	for idx, g := range p.Grants {
		if g.StartOffset < 0 {
			return fmt.Errorf("%w: grant %d starts before the window opens", types.ErrConstruction, idx)
		}
	}
	return nil
}

// Deploy provisions a new set of components: the asset ledger, the lock
// registry, the subscription window and the vesting vault. The funder approves
// each component, the window becomes a locker and the configured grants are
// created. Everything is persisted in one transaction.
func (n *Node) Deploy(ctx context.Context, params DeployParams) (Deployment, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.started {
		return Deployment{}, ErrNotStarted
	}
	if n.components != nil {
		return Deployment{}, ErrAlreadyDeployed
	}
	if n.deployErr != nil {
		return Deployment{}, fmt.Errorf("%w: %w", ErrDeployFailed, n.deployErr)
	}
	if err := params.validate(); err != nil {
		return Deployment{}, err
	}
	ctx, span := n.tracer.Start(ctx, "deploy")
	defer span.End()
	start := time.Now()
	dep, err := n.deploy(ctx, params)
	n.metrics.observe("deploy", start, err)
	if err != nil {
		// Component metrics are registered at construction and can't be
		// registered again by a retry
		n.deployErr = err
		n.components = nil
		n.contracts = nil
		n.journal.discard()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Deployment{}, err
	}
	span.SetAttributes(
		attribute.String("deploy.conversion", dep.Conversion.String()),
		attribute.Int("deploy.grants", len(dep.GrantIDs)),
	)
	n.config.logger.Info(
		"deployed components",
		"component", "node",
		"token", dep.Token.String(),
		"timelock", dep.Timelock.String(),
		"conversion", dep.Conversion.String(),
		"vesting", dep.Vault.String(),
		"opening_time", dep.OpeningTime,
		"closing_time", dep.ClosingTime,
	)
	return dep, nil
}

func (n *Node) deploy(ctx context.Context, params DeployParams) (Deployment, error) {
	now := n.config.clock.Now()
	dep := Deployment{
		Deployer:       params.Deployer,
		Funder:         params.Funder,
		TotalSupply:    params.TotalSupply,
		DeployedAt:     now,
		OpeningTime:    now.Add(params.OpeningDelay),
		DirectOffset:   params.DirectOffset,
		ReferralOffset: params.ReferralOffset,
		PurchaseOffset: params.PurchaseOffset,
	}
	dep.ClosingTime = dep.OpeningTime.Add(params.WindowLength)
	if dep.Funder.IsZero() {
		dep.Funder = dep.Deployer
	}
	if dep.TotalSupply.IsZero() {
		dep.TotalSupply = token.DefaultSupply()
	}
	n.contracts = contracts.NewRegistry()
	for _, item := range []struct {
		name string
		dest *types.Address
	}{
		{componentToken, &dep.Token},
		{componentTimelock, &dep.Timelock},
		{componentConversion, &dep.Conversion},
		{componentVesting, &dep.Vault},
	} {
		addr, err := n.contracts.Deploy(dep.Deployer, item.name)
		if err != nil {
			return dep, err
		}
		*item.dest = addr
	}
	components, err := n.build(dep)
	if err != nil {
		return dep, err
	}
	// Record the offsets actually in force
	if dep.DirectOffset, err = components.Timelock.Offset(timelock.CategoryDirect); err != nil {
		return dep, err
	}
	if dep.ReferralOffset, err = components.Timelock.Offset(timelock.CategoryReferral); err != nil {
		return dep, err
	}
	if dep.PurchaseOffset, err = components.Timelock.Offset(timelock.CategoryPurchase); err != nil {
		return dep, err
	}
	allowance := func(amount types.Amount) types.Amount {
		if amount.IsZero() {
			return dep.TotalSupply
		}
		return amount
	}
	ledger := components.Ledger
	if err := errors.Join(
		ledger.Approve(dep.Funder, dep.Timelock, allowance(params.TimelockAllowance)),
		ledger.Approve(dep.Funder, dep.Conversion, allowance(params.ConversionAllowance)),
		ledger.Approve(dep.Funder, dep.Vault, allowance(params.VaultAllowance)),
	); err != nil {
		return dep, fmt.Errorf("approve components: %w", err)
	}
	if err := components.Timelock.AddLocker(dep.Deployer, dep.Conversion); err != nil {
		return dep, fmt.Errorf("register window as locker: %w", err)
	}
	for idx, g := range params.Grants {
		id, err := components.Vault.AddTokenGrant(
			dep.Deployer,
			g.Recipient,
			dep.OpeningTime.Add(g.StartOffset),
			g.Amount,
			g.DurationDays,
			g.CliffDays,
		)
		if err != nil {
			return dep, fmt.Errorf("grant %d to %s: %w", idx, g.Recipient, err)
		}
		dep.GrantIDs = append(dep.GrantIDs, id)
	}
	n.components = components
	n.deployment = dep
	if err := n.persist(ctx); err != nil {
		return dep, fmt.Errorf("persist deployment: %w", err)
	}
	return dep, nil
}
