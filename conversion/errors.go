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

package conversion

import (
	"fmt"
	"time"

	"github.com/PedroGalveias/OwkenERC20/types"
)

var (
	ErrNotContract = fmt.Errorf(
		"%w: ERROR_CONVERSION: Not a contract address",
		types.ErrConstruction,
	)
	ErrOpeningInPast = fmt.Errorf(
		"%w: ERROR_CONVERSION: Opening time is before current time",
		types.ErrConstruction,
	)
	ErrOpeningNotBeforeClosing = fmt.Errorf(
		"%w: ERROR_CONVERSION: Opening time is not before closing time",
		types.ErrConstruction,
	)
	ErrInvalidAddress = fmt.Errorf(
		"%w: ERROR_CONVERSION: Invalid address",
		types.ErrValidation,
	)
	ErrInvalidAmount = fmt.Errorf(
		"%w: ERROR_CONVERSION: Invalid amount",
		types.ErrValidation,
	)
	ErrNotOperator = fmt.Errorf(
		"%w: ERROR_CONVERSION: Caller is not a operator",
		types.ErrUnauthorized,
	)
	ErrNotOpen = fmt.Errorf(
		"%w: ERROR_CONVERSION: Conversion is not open",
		types.ErrValidation,
	)
	ErrNotClosed = fmt.Errorf(
		"%w: ERROR_CONVERSION: Conversion has not closed",
		types.ErrValidation,
	)
	ErrBareTransfer = fmt.Errorf(
		"%w: ERROR_CONVERSION: Direct transfers are not accepted",
		types.ErrValidation,
	)
	ErrNotLocker = fmt.Errorf(
		"%w: conversion is not a registered locker",
		types.ErrUnauthorized,
	)
)

// NotOpenError is returned by deposits outside [OpeningTime, ClosingTime)
type NotOpenError struct {
	Now         time.Time
	OpeningTime time.Time
	ClosingTime time.Time
}

func (e NotOpenError) Error() string {
	return fmt.Sprintf(
		"%s: now %s, window [%s, %s)",
		ErrNotOpen,
		e.Now.Format(time.RFC3339),
		e.OpeningTime.Format(time.RFC3339),
		e.ClosingTime.Format(time.RFC3339),
	)
}

func (e NotOpenError) Is(target error) bool {
	return target == ErrNotOpen || target == types.ErrValidation
}
