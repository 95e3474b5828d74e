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
	GrantAddedEventType         = EventType("vesting.grant_added")
	GrantRemovedEventType       = EventType("vesting.grant_removed")
	GrantTokensClaimedEventType = EventType("vesting.tokens_claimed")
	ChangedMultisigEventType    = EventType("vesting.multisig_changed")
)

type GrantAddedEvent struct {
	GrantID      uint64        `json:"grantId"`
	Recipient    types.Address `json:"recipient"`
	StartTime    time.Time     `json:"startTime"`
	Amount       types.Amount  `json:"amount"`
	DurationDays uint16        `json:"durationDays"`
	CliffDays    uint16        `json:"cliffDays"`
}

// GrantRemovedEvent carries the amount discarded from the vesting obligations
type GrantRemovedEvent struct {
	GrantID       uint64        `json:"grantId"`
	Recipient     types.Address `json:"recipient"`
	AmountVested  types.Amount  `json:"amountVested"`
	AmountDropped types.Amount  `json:"amountDropped"`
}

type GrantTokensClaimedEvent struct {
	GrantID   uint64        `json:"grantId"`
	Recipient types.Address `json:"recipient"`
	Amount    types.Amount  `json:"amount"`
	Days      uint64        `json:"days"`
}

type ChangedMultisigEvent struct {
	Previous types.Address `json:"previous"`
	Next     types.Address `json:"next"`
}
