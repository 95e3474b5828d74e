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

package timelock

import (
	"fmt"

	"github.com/PedroGalveias/OwkenERC20/types"
)

var (
	ErrNotContract = fmt.Errorf(
		"%w: ERROR_TIMELOCK: Not a contract address",
		types.ErrConstruction,
	)
	ErrInvalidAddress = fmt.Errorf(
		"%w: ERROR_TIMELOCK: Invalid address",
		types.ErrValidation,
	)
	ErrInvalidAmount = fmt.Errorf(
		"%w: ERROR_TIMELOCK: Invalid amount",
		types.ErrValidation,
	)
	ErrReleaseInPast = fmt.Errorf(
		"%w: ERROR_TIMELOCK: Lock time is before current time",
		types.ErrValidation,
	)
	ErrNotReleasable = fmt.Errorf(
		"%w: ERROR_TIMELOCK: Release time not reached",
		types.ErrValidation,
	)
	ErrNotBeneficiary = fmt.Errorf(
		"%w: ERROR_TIMELOCK: Caller is not the beneficiary",
		types.ErrUnauthorized,
	)
	ErrNotLocker = fmt.Errorf(
		"%w: ERROR_TIMELOCK: Caller is not a locker",
		types.ErrUnauthorized,
	)
	ErrReleaseOutOfRange = fmt.Errorf(
		"%w: ERROR_TIMELOCK: Release time out of range",
		types.ErrValidation,
	)
	ErrUnknownCategory = fmt.Errorf(
		"%w: unknown lock category",
		types.ErrValidation,
	)
)

// IndexOutOfBoundsError is returned for any index outside [0, length)
type IndexOutOfBoundsError struct {
	Index  int
	Length int
}

func (e IndexOutOfBoundsError) Error() string {
	return fmt.Sprintf(
		"%s: value out-of-bounds: index %d, length %d",
		types.ErrValidation,
		e.Index,
		e.Length,
	)
}

func (e IndexOutOfBoundsError) Is(target error) bool {
	return target == types.ErrValidation
}
