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

package event

import (
	"time"

	"github.com/PedroGalveias/OwkenERC20/types"
)

const (
	LockedEventType   = EventType("timelock.locked")
	ReleasedEventType = EventType("timelock.released")
)

// LockedEvent is emitted when an entry is appended to the lock registry.
// Category is empty for generic locks.
type LockedEvent struct {
	ID          uint64        `json:"id"`
	Index       int           `json:"index"`
	Beneficiary types.Address `json:"beneficiary"`
	Amount      types.Amount  `json:"amount"`
	ReleaseTime time.Time     `json:"releaseTime"`
	Category    string        `json:"category,omitempty"`
}

// ReleasedEvent is emitted when a beneficiary withdraws an entry. MovedID is
// the id of the entry relocated into Index, or zero when none moved.
type ReleasedEvent struct {
	ID          uint64        `json:"id"`
	Index       int           `json:"index"`
	Beneficiary types.Address `json:"beneficiary"`
	Amount      types.Amount  `json:"amount"`
	MovedID     uint64        `json:"movedId,omitempty"`
}
