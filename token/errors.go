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

package token

import (
	"fmt"

	"github.com/PedroGalveias/OwkenERC20/types"
)

var (
	ErrInvalidAddress = fmt.Errorf(
		"%w: transfer to or from the zero address",
		types.ErrValidation,
	)
	ErrInsufficientBalance = fmt.Errorf(
		"%w: transfer amount exceeds balance",
		types.ErrValidation,
	)
	ErrInsufficientAllowance = fmt.Errorf(
		"%w: transfer amount exceeds allowance",
		types.ErrValidation,
	)
	ErrNegativeAmount = fmt.Errorf(
		"%w: negative amount",
		types.ErrValidation,
	)
)

// InsufficientFundsError carries the amounts involved in a rejected transfer
type InsufficientFundsError struct {
	Account   types.Address
	Available types.Amount
	Requested types.Amount
	Allowance bool
}

func (e InsufficientFundsError) Error() string {
	if e.Allowance {
		return fmt.Sprintf(
			"%s: account %s allowance %s, requested %s",
			ErrInsufficientAllowance,
			e.Account,
			e.Available,
			e.Requested,
		)
	}
	return fmt.Sprintf(
		"%s: account %s balance %s, requested %s",
		ErrInsufficientBalance,
		e.Account,
		e.Available,
		e.Requested,
	)
}

func (e InsufficientFundsError) Is(target error) bool {
	if e.Allowance {
		return target == ErrInsufficientAllowance || target == types.ErrValidation
	}
	return target == ErrInsufficientBalance || target == types.ErrValidation
}
