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
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/PedroGalveias/OwkenERC20/contracts"
	"github.com/PedroGalveias/OwkenERC20/conversion"
	"github.com/PedroGalveias/OwkenERC20/database/models"
	dbtypes "github.com/PedroGalveias/OwkenERC20/database/types"
	"github.com/PedroGalveias/OwkenERC20/timelock"
	"github.com/PedroGalveias/OwkenERC20/token"
	"github.com/PedroGalveias/OwkenERC20/types"
	"github.com/PedroGalveias/OwkenERC20/vesting"
)

// Component names used for the contract registry and the state tables
const (
	componentToken      = "token"
	componentTimelock   = "timelock"
	componentConversion = "conversion"
	componentVesting    = "vesting"
)

const (
	paramDeployer       = "deployer"
	paramFunder         = "funder"
	paramDeployedAt     = "deployed_at"
	paramTotalSupply    = "total_supply"
	paramOpeningTime    = "opening_time"
	paramClosingTime    = "closing_time"
	paramDirectOffset   = "direct_offset"
	paramReferralOffset = "referral_offset"
	paramPurchaseOffset = "purchase_offset"
	paramGrantIDs       = "grant_ids"
)

// snapshot is an in-memory copy of every component, taken before an
// operation so a failure can be undone
type snapshot struct {
	token      token.State
	timelock   timelock.State
	conversion conversion.State
	vault      vesting.State
}

func (c *Components) snapshot() snapshot {
	return snapshot{
		token:      c.Ledger.Snapshot(),
		timelock:   c.Timelock.Snapshot(),
		conversion: c.Conversion.Snapshot(),
		vault:      c.Vault.Snapshot(),
	}
}

func (c *Components) restore(s snapshot) {
	c.Ledger.Restore(s.token)
	c.Timelock.Restore(s.timelock)
	c.Conversion.Restore(s.conversion)
	c.Vault.Restore(s.vault)
}

func (d Deployment) parameters() []models.Parameter {
	return []models.Parameter{
		{Key: paramDeployer, Value: d.Deployer.String()},
		{Key: paramFunder, Value: d.Funder.String()},
		{Key: paramDeployedAt, Value: formatTime(d.DeployedAt)},
		{Key: paramTotalSupply, Value: d.TotalSupply.String()},
		{Key: paramOpeningTime, Value: formatTime(d.OpeningTime)},
		{Key: paramClosingTime, Value: formatTime(d.ClosingTime)},
		{Key: paramDirectOffset, Value: strconv.FormatInt(int64(d.DirectOffset), 10)},
		{Key: paramReferralOffset, Value: strconv.FormatInt(int64(d.ReferralOffset), 10)},
		{Key: paramPurchaseOffset, Value: strconv.FormatInt(int64(d.PurchaseOffset), 10)},
		{Key: paramGrantIDs, Value: formatIDs(d.GrantIDs)},
	}
}

// formatIDs joins the ids of the grants created at deployment with commas
func formatIDs(ids []uint64) string {
	tmp := make([]string, 0, len(ids))
	for _, id := range ids {
		tmp = append(tmp, strconv.FormatUint(id, 10))
	}
	return strings.Join(tmp, ",")
}

func parseIDs(s string) ([]uint64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ret := make([]uint64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ret = append(ret, id)
	}
	return ret, nil
}

func deploymentFromImage(img *models.State) (Deployment, error) {
	var ret Deployment
	params := make(map[string]string, len(img.Parameters))
	for _, p := range img.Parameters {
		params[p.Key] = p.Value
	}
	get := func(key string) (string, error) {
		val, ok := params[key]
		if !ok {
			return "", fmt.Errorf("missing deployment parameter %q", key)
		}
		return val, nil
	}
	var err error
	var val string
	if val, err = get(paramDeployer); err != nil {
		return ret, err
	}
	if ret.Deployer, err = types.ParseAddress(val); err != nil {
		return ret, fmt.Errorf("parse %s: %w", paramDeployer, err)
	}
	if val, err = get(paramFunder); err != nil {
		return ret, err
	}
	if ret.Funder, err = types.ParseAddress(val); err != nil {
		return ret, fmt.Errorf("parse %s: %w", paramFunder, err)
	}
	if val, err = get(paramTotalSupply); err != nil {
		return ret, err
	}
	if ret.TotalSupply, err = types.ParseAmount(val); err != nil {
		return ret, fmt.Errorf("parse %s: %w", paramTotalSupply, err)
	}
	for key, dest := range map[string]*time.Time{
		paramDeployedAt:  &ret.DeployedAt,
		paramOpeningTime: &ret.OpeningTime,
		paramClosingTime: &ret.ClosingTime,
	} {
		if val, err = get(key); err != nil {
			return ret, err
		}
		if *dest, err = parseTime(val); err != nil {
			return ret, fmt.Errorf("parse %s: %w", key, err)
		}
	}
	for key, dest := range map[string]*time.Duration{
		paramDirectOffset:   &ret.DirectOffset,
		paramReferralOffset: &ret.ReferralOffset,
		paramPurchaseOffset: &ret.PurchaseOffset,
	} {
		if val, err = get(key); err != nil {
			return ret, err
		}
		tmp, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return ret, fmt.Errorf("parse %s: %w", key, err)
		}
		*dest = time.Duration(tmp)
	}
	if val, err = get(paramGrantIDs); err != nil {
		return ret, err
	}
	if ret.GrantIDs, err = parseIDs(val); err != nil {
		return ret, fmt.Errorf("parse %s: %w", paramGrantIDs, err)
	}
	for _, d := range img.Deployments {
		switch d.Name {
		case componentToken:
			ret.Token = d.Address
		case componentTimelock:
			ret.Timelock = d.Address
		case componentConversion:
			ret.Conversion = d.Address
		case componentVesting:
			ret.Vault = d.Address
		}
	}
	return ret, nil
}

// formatTime stores instants as RFC 3339 text so they read back exactly
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	ret, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return ret.UTC(), nil
}

// image converts the live components into the relational state image
func (n *Node) image() *models.State {
	c := n.components
	ret := &models.State{
		Parameters: n.deployment.parameters(),
	}
	for _, d := range n.contracts.Deployments() {
		ret.Deployments = append(ret.Deployments, models.Deployment{
			Name:     d.Name,
			Address:  d.Address,
			Deployer: d.Deployer,
			Nonce:    d.Nonce,
		})
	}
	tokenState := c.Ledger.Snapshot()
	for _, b := range tokenState.Balances {
		ret.TokenBalances = append(ret.TokenBalances, models.TokenBalance{
			Account: b.Account,
			Amount:  b.Amount,
		})
	}
	for _, a := range tokenState.Allowances {
		ret.TokenAllowances = append(ret.TokenAllowances, models.TokenAllowance{
			Owner:   a.Owner,
			Spender: a.Spender,
			Amount:  a.Amount,
		})
	}
	lockState := c.Timelock.Snapshot()
	for idx, e := range lockState.Entries {
		ret.LockEntries = append(ret.LockEntries, models.LockEntry{
			LockID:      dbtypes.Uint64(e.ID),
			Position:    idx,
			Beneficiary: e.Beneficiary,
			Amount:      e.Amount,
			ReleaseTime: e.ReleaseTime.Unix(),
			Category:    e.Category.String(),
		})
	}
	for _, account := range lockState.Lockers {
		ret.Lockers = append(ret.Lockers, models.Locker{Account: account})
	}
	convState := c.Conversion.Snapshot()
	for _, b := range convState.Balances {
		ret.ConversionBalances = append(ret.ConversionBalances, models.ConversionBalance{
			Account:  b.Account,
			Category: b.Category.String(),
			Amount:   b.Amount,
		})
	}
	for _, account := range convState.Operators {
		ret.Operators = append(ret.Operators, models.Operator{Account: account})
	}
	vaultState := c.Vault.Snapshot()
	for _, g := range vaultState.Grants {
		ret.Grants = append(ret.Grants, models.Grant{
			GrantID:         dbtypes.Uint64(g.ID),
			Recipient:       g.Recipient,
			StartTime:       g.StartTime.Unix(),
			Amount:          g.Amount,
			AmountRemaining: g.AmountRemaining,
			AmountPerDay:    g.AmountPerDay,
			DurationDays:    g.DurationDays,
			CliffDays:       g.CliffDays,
			DaysClaimed:     g.DaysClaimed,
		})
	}
	recipients := slices.SortedFunc(
		maps.Keys(vaultState.Active),
		func(a, b types.Address) int { return a.Compare(b) },
	)
	for _, recipient := range recipients {
		for pos, id := range vaultState.Active[recipient] {
			ret.ActiveGrants = append(ret.ActiveGrants, models.ActiveGrant{
				Recipient: recipient,
				Position:  pos,
				GrantID:   dbtypes.Uint64(id),
			})
		}
	}
	ret.Sequences = []models.Sequence{
		{Name: componentTimelock, Value: dbtypes.Uint64(lockState.NextID)},
		{Name: componentVesting, Value: dbtypes.Uint64(vaultState.NextID)},
	}
	ret.Controllers = []models.Controller{
		{Component: componentVesting, Account: vaultState.Controller},
	}
	return ret
}

// states converts a relational state image back into component snapshots
func states(img *models.State) (snapshot, error) {
	var ret snapshot
	sequences := make(map[string]uint64, len(img.Sequences))
	for _, s := range img.Sequences {
		sequences[s.Name] = uint64(s.Value)
	}
	for _, b := range img.TokenBalances {
		ret.token.Balances = append(ret.token.Balances, token.Balance{
			Account: b.Account,
			Amount:  b.Amount,
		})
	}
	for _, a := range img.TokenAllowances {
		ret.token.Allowances = append(ret.token.Allowances, token.Allowance{
			Owner:   a.Owner,
			Spender: a.Spender,
			Amount:  a.Amount,
		})
	}
	for _, e := range img.LockEntries {
		category, err := timelock.ParseCategory(e.Category)
		if err != nil {
			return ret, fmt.Errorf("lock %d: %w", e.LockID, err)
		}
		ret.timelock.Entries = append(ret.timelock.Entries, timelock.LockEntry{
			ID:          uint64(e.LockID),
			Beneficiary: e.Beneficiary,
			Amount:      e.Amount,
			ReleaseTime: time.Unix(e.ReleaseTime, 0).UTC(),
			Category:    category,
		})
	}
	for _, l := range img.Lockers {
		ret.timelock.Lockers = append(ret.timelock.Lockers, l.Account)
	}
	ret.timelock.NextID = sequences[componentTimelock]
	for _, b := range img.ConversionBalances {
		category, err := timelock.ParseCategory(b.Category)
		if err != nil {
			return ret, fmt.Errorf("conversion balance of %s: %w", b.Account, err)
		}
		ret.conversion.Balances = append(ret.conversion.Balances, conversion.Balance{
			Account:  b.Account,
			Category: category,
			Amount:   b.Amount,
		})
	}
	for _, o := range img.Operators {
		ret.conversion.Operators = append(ret.conversion.Operators, o.Account)
	}
	for _, g := range img.Grants {
		ret.vault.Grants = append(ret.vault.Grants, vesting.Grant{
			ID:              uint64(g.GrantID),
			Recipient:       g.Recipient,
			StartTime:       time.Unix(g.StartTime, 0).UTC(),
			Amount:          g.Amount,
			AmountRemaining: g.AmountRemaining,
			AmountPerDay:    g.AmountPerDay,
			DurationDays:    g.DurationDays,
			CliffDays:       g.CliffDays,
			DaysClaimed:     g.DaysClaimed,
		})
	}
	ret.vault.Active = make(map[types.Address][]uint64)
	// Rows arrive ordered by recipient then position
	for _, a := range img.ActiveGrants {
		ret.vault.Active[a.Recipient] = append(ret.vault.Active[a.Recipient], uint64(a.GrantID))
	}
	ret.vault.NextID = sequences[componentVesting]
	for _, c := range img.Controllers {
		if c.Component == componentVesting {
			ret.vault.Controller = c.Account
		}
	}
	return ret, nil
}

func registryFromImage(img *models.State) *contracts.Registry {
	ret := contracts.NewRegistry()
	for _, d := range img.Deployments {
		ret.Register(contracts.Deployment{
			Name:     d.Name,
			Address:  d.Address,
			Deployer: d.Deployer,
			Nonce:    d.Nonce,
		})
	}
	return ret
}
