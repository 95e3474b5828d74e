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

// Package token provides the fixed-supply asset ledger the distribution
// engine moves value through.
package token

import "github.com/PedroGalveias/OwkenERC20/types"

const (
	DefaultName     = "Owken"
	DefaultSymbol   = "OAK"
	DefaultDecimals = 18
)

// AssetLedger is the capability the distribution components need from the
// underlying asset. Amounts move only against balances and allowances that
// already exist; nothing here mints or burns.
type AssetLedger interface {
	Address() types.Address
	BalanceOf(account types.Address) types.Amount
	Allowance(owner, spender types.Address) types.Amount
	Approve(owner, spender types.Address, amount types.Amount) error
	IncreaseAllowance(owner, spender types.Address, added types.Amount) error
	Transfer(from, to types.Address, amount types.Amount) error
	TransferFrom(spender, from, to types.Address, amount types.Amount) error
}

// DefaultSupply returns the 10 million token supply in base units
func DefaultSupply() types.Amount {
	return types.MustParseAmount("10000000000000000000000000")
}
