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

import "time"

// Instants accepted by the components. Stored instants are whole unix
// seconds and journal payloads are JSON, which stops at year 9999.
var (
	MinTime = time.Unix(0, 0).UTC()
	MaxTime = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
)

// ValidTime reports whether t lies within [MinTime, MaxTime]
func ValidTime(t time.Time) bool {
	return !t.Before(MinTime) && !t.After(MaxTime)
}

// CeilSecond rounds t up to the next whole second
func CeilSecond(t time.Time) time.Time {
	ret := t.Truncate(time.Second)
	if ret.Before(t) {
		ret = ret.Add(time.Second)
	}
	return ret.UTC()
}
