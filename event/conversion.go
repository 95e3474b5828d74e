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
	DepositedEventType       = EventType("conversion.deposited")
	ForwardedEventType       = EventType("conversion.forwarded")
	OperatorGrantedEventType = EventType("conversion.operator_granted")
	OperatorRevokedEventType = EventType("conversion.operator_revoked")
)

// DepositedEvent is emitted once per category credited by a deposit
type DepositedEvent struct {
	Operator    types.Address `json:"operator"`
	Beneficiary types.Address `json:"beneficiary"`
	Category    string        `json:"category"`
	Amount      types.Amount  `json:"amount"`
}

// ForwardedEvent is emitted when a closed window pushes a balance into the
// lock registry
type ForwardedEvent struct {
	Beneficiary types.Address `json:"beneficiary"`
	Category    string        `json:"category"`
	Amount      types.Amount  `json:"amount"`
	LockID      uint64        `json:"lockId"`
}

// OperatorEvent is emitted for operator grants and revocations
type OperatorEvent struct {
	Admin    types.Address `json:"admin"`
	Operator types.Address `json:"operator"`
}
