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

package types

import "errors"

// Error categories. Every error returned by a component operation wraps exactly
// one of these so callers can classify a rejection with errors.Is.
var (
	// ErrConstruction is returned when a component cannot be created from the
	// supplied references or timestamps
	ErrConstruction = errors.New("construction failed")

	// ErrUnauthorized is returned when the caller lacks the capability needed
	// for an operation
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation is returned when the arguments or the current time violate
	// a business rule
	ErrValidation = errors.New("validation failed")
)
