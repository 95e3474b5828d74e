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
	"errors"

	"github.com/PedroGalveias/OwkenERC20/database/types"
	"gorm.io/gorm"
)

// sqliteTxn wraps a GORM transaction and implements types.Txn
type sqliteTxn struct {
	store    *MetadataStoreSqlite
	db       *gorm.DB
	finished bool
}

func (t *sqliteTxn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	return t.db.Commit().Error
}

func (t *sqliteTxn) Rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	t.store.metrics.txnRollback.Inc()
	return t.db.Rollback().Error
}

// Transaction begins a new metadata transaction. It returns nil if the
// transaction could not be started.
func (d *MetadataStoreSqlite) Transaction() types.Txn {
	tx := d.DB().Begin()
	if tx.Error != nil {
		d.logger.Error(
			"failed to begin metadata transaction",
			"component", "database",
			"error", tx.Error,
		)
		return nil
	}
	return &sqliteTxn{store: d, db: tx}
}

// resolveDB returns the *gorm.DB for the given transaction, or d.DB() if txn is nil
func (d *MetadataStoreSqlite) resolveDB(txn types.Txn) (*gorm.DB, error) {
	if txn == nil {
		return d.DB(), nil
	}
	sqlTxn, ok := txn.(*sqliteTxn)
	if !ok {
		return nil, types.ErrTxnWrongType
	}
	if sqlTxn.store != d {
		return nil, errors.New("transaction from different store")
	}
	if sqlTxn.finished {
		return nil, types.ErrTxnFinished
	}
	return sqlTxn.db, nil
}
