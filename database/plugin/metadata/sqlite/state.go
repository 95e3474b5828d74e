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

package sqlite

import (
	"fmt"

	"github.com/PedroGalveias/OwkenERC20/database/models"
	"github.com/PedroGalveias/OwkenERC20/database/types"
	"gorm.io/gorm"
)

const stateBatchSize = 200

// GetState loads every state table. Ordered tables come back in position order.
func (d *MetadataStoreSqlite) GetState(txn types.Txn) (*models.State, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.State{}
	queries := []struct {
		name  string
		order string
		dest  any
	}{
		{"deployment", "nonce", &ret.Deployments},
		{"parameter", "param_key", &ret.Parameters},
		{"sequence", "name", &ret.Sequences},
		{"controller", "component", &ret.Controllers},
		{"token_balance", "account", &ret.TokenBalances},
		{"token_allowance", "owner, spender", &ret.TokenAllowances},
		{"lock_entry", "position", &ret.LockEntries},
		{"locker", "account", &ret.Lockers},
		{"conversion_balance", "account, category", &ret.ConversionBalances},
		{"operator", "account", &ret.Operators},
		{"vesting_grant", "id", &ret.Grants},
		{"active_grant", "recipient, position", &ret.ActiveGrants},
	}
	for _, q := range queries {
		if result := db.Order(q.order).Find(q.dest); result.Error != nil {
			return nil, fmt.Errorf("load %s: %w", q.name, result.Error)
		}
	}
	return ret, nil
}

// SetState replaces the contents of every state table
func (d *MetadataStoreSqlite) SetState(state *models.State, txn types.Txn) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if state == nil {
		state = &models.State{}
	}
	var rows int
	steps := []struct {
		name  string
		apply func() (int, error)
	}{
		{"deployment", func() (int, error) { return replaceRows(db, state.Deployments) }},
		{"parameter", func() (int, error) { return replaceRows(db, state.Parameters) }},
		{"sequence", func() (int, error) { return replaceRows(db, state.Sequences) }},
		{"controller", func() (int, error) { return replaceRows(db, state.Controllers) }},
		{"token_balance", func() (int, error) { return replaceRows(db, state.TokenBalances) }},
		{"token_allowance", func() (int, error) { return replaceRows(db, state.TokenAllowances) }},
		{"lock_entry", func() (int, error) { return replaceRows(db, state.LockEntries) }},
		{"locker", func() (int, error) { return replaceRows(db, state.Lockers) }},
		{"conversion_balance", func() (int, error) { return replaceRows(db, state.ConversionBalances) }},
		{"operator", func() (int, error) { return replaceRows(db, state.Operators) }},
		{"vesting_grant", func() (int, error) { return replaceRows(db, state.Grants) }},
		{"active_grant", func() (int, error) { return replaceRows(db, state.ActiveGrants) }},
	}
	for _, step := range steps {
		n, err := step.apply()
		if err != nil {
			return fmt.Errorf("write %s: %w", step.name, err)
		}
		rows += n
	}
	d.metrics.stateWrites.Inc()
	d.metrics.stateRows.Set(float64(rows))
	return nil
}

// replaceRows deletes every row of the model's table and inserts rows
func replaceRows[T any](db *gorm.DB, rows []T) (int, error) {
	var model T
	if result := db.Where("1 = 1").Delete(&model); result.Error != nil {
		return 0, result.Error
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if result := db.CreateInBatches(rows, stateBatchSize); result.Error != nil {
		return 0, result.Error
	}
	return len(rows), nil
}
