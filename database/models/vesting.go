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

type Grant struct {
	Recipient       types.Address  `gorm:"type:text;index;not null"`
	Amount          types.Amount   `gorm:"type:text;not null"`
	AmountRemaining types.Amount   `gorm:"type:text;not null"`
	AmountPerDay    types.Amount   `gorm:"type:text;not null"`
	ID              uint           `gorm:"primarykey"`
	GrantID         dbtypes.Uint64 `gorm:"type:text;uniqueIndex;not null"`
	// StartTime is in unix seconds
	StartTime    int64  `gorm:"not null"`
	DurationDays uint16 `gorm:"not null"`
	CliffDays    uint16 `gorm:"not null"`
	DaysClaimed  uint16 `gorm:"not null"`
}

func (Grant) TableName() string {
	return "vesting_grant"
}

// ActiveGrant is one slot of a recipient's active grant list
type ActiveGrant struct {
	Recipient types.Address  `gorm:"type:text;uniqueIndex:uniq_active_grant;not null"`
	ID        uint           `gorm:"primarykey"`
	Position  int            `gorm:"uniqueIndex:uniq_active_grant;not null"`
	GrantID   dbtypes.Uint64 `gorm:"type:text;index;not null"`
}

func (ActiveGrant) TableName() string {
	return "active_grant"
}
