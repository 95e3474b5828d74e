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
	"github.com/PedroGalveias/OwkenERC20/types"
)

type TokenBalance struct {
	Account types.Address `gorm:"type:text;uniqueIndex;not null"`
	Amount  types.Amount  `gorm:"type:text;not null"`
	ID      uint          `gorm:"primarykey"`
}

func (TokenBalance) TableName() string {
	return "token_balance"
}

type TokenAllowance struct {
	Owner   types.Address `gorm:"type:text;uniqueIndex:uniq_token_allowance;not null"`
	Spender types.Address `gorm:"type:text;uniqueIndex:uniq_token_allowance;not null"`
	Amount  types.Amount  `gorm:"type:text;not null"`
	ID      uint          `gorm:"primarykey"`
}

func (TokenAllowance) TableName() string {
	return "token_allowance"
}
