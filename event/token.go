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

import "github.com/PedroGalveias/OwkenERC20/types"

const (
	// TransferEventType is the event type for asset ledger transfers
	TransferEventType = EventType("token.transfer")
	// ApprovalEventType is the event type for allowance changes
	ApprovalEventType = EventType("token.approval")
)

// TransferEvent is emitted whenever the asset ledger moves value, including
// the initial supply assignment from the zero address
type TransferEvent struct {
	From   types.Address `json:"from"`
	To     types.Address `json:"to"`
	Amount types.Amount  `json:"amount"`
}

// ApprovalEvent is emitted when an allowance is set or increased. Amount is
// the resulting allowance, not the delta.
type ApprovalEvent struct {
	Owner   types.Address `json:"owner"`
	Spender types.Address `json:"spender"`
	Amount  types.Amount  `json:"amount"`
}
