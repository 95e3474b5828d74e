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

// AllEventTypes lists every event type produced by the engine, in a stable
// order. Sinks that want everything, such as the journal, register for each.
func AllEventTypes() []EventType {
	return []EventType{
		TransferEventType,
		ApprovalEventType,
		DepositedEventType,
		ForwardedEventType,
		OperatorGrantedEventType,
		OperatorRevokedEventType,
		LockedEventType,
		ReleasedEventType,
		GrantAddedEventType,
		GrantRemovedEventType,
		GrantTokensClaimedEventType,
		ChangedMultisigEventType,
	}
}
