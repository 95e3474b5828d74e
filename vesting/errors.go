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

package vesting

import (
	"fmt"

	"github.com/PedroGalveias/OwkenERC20/access"
	"github.com/PedroGalveias/OwkenERC20/types"
)

var (
	ErrNotContract = fmt.Errorf(
		"%w: not a contract address",
		types.ErrConstruction,
	)
	ErrCliffTooLong = fmt.Errorf(
		"%w: more than 10 years",
		types.ErrValidation,
	)
	ErrDurationTooLong = fmt.Errorf(
		"%w: more than 25 years",
		types.ErrValidation,
	)
	ErrDurationBelowCliff = fmt.Errorf(
		"%w: Duration < Cliff",
		types.ErrValidation,
	)
	ErrZeroDailyRate = fmt.Errorf(
		"%w: amountVestedPerDay > 0",
		types.ErrValidation,
	)
	ErrNothingVested = fmt.Errorf(
		"%w: amountVested is 0",
		types.ErrValidation,
	)
	ErrInvalidRecipient = fmt.Errorf(
		"%w: not valid _recipient",
		types.ErrValidation,
	)
	ErrStartOutOfRange = fmt.Errorf(
		"%w: start time out of range",
		types.ErrValidation,
	)
	ErrUnknownGrant = fmt.Errorf(
		"%w: unknown grant",
		types.ErrValidation,
	)
	ErrNotOwner = access.ErrNotOwner
)
