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

package models

import (
	dbtypes "github.com/PedroGalveias/OwkenERC20/database/types"
	"github.com/PedroGalveias/OwkenERC20/types"
)

// LockEntry is one time-locked amount. Position preserves the order of the
// lock table, which withdrawals reorder by swapping with the last entry.
type LockEntry struct {
	Beneficiary types.Address  `gorm:"type:text;index;not null"`
	Amount      types.Amount   `gorm:"type:text;not null"`
	Category    string         `gorm:"size:16"`
	ID          uint           `gorm:"primarykey"`
	LockID      dbtypes.Uint64 `gorm:"type:text;uniqueIndex;not null"`
	Position    int            `gorm:"index;not null"`
	// ReleaseTime is in unix seconds
	ReleaseTime int64 `gorm:"not null"`
}

func (LockEntry) TableName() string {
	return "lock_entry"
}

// Locker is an account allowed to create locks on behalf of others
type Locker struct {
	Account types.Address `gorm:"type:text;uniqueIndex;not null"`
	ID      uint          `gorm:"primarykey"`
}

func (Locker) TableName() string {
	return "locker"
}
