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

package database

import (
	"github.com/PedroGalveias/OwkenERC20/database/models"
)

// GetState loads the persisted state image. An empty image means nothing has
// been deployed yet.
func (d *Database) GetState(txn *Txn) (*models.State, error) {
	if txn == nil || txn.Metadata() == nil {
		return d.metadata.GetState(nil)
	}
	return d.metadata.GetState(txn.Metadata())
}

// SetState replaces the persisted state image. It requires a read-write
// transaction.
func (d *Database) SetState(state *models.State, txn *Txn) error {
	if txn == nil {
		txn = d.Transaction(true)
		return txn.Do(func(txn *Txn) error {
			return d.metadata.SetState(state, txn.Metadata())
		})
	}
	return d.metadata.SetState(state, txn.Metadata())
}
