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

// Package clock provides the time source used by every time comparison in the
// distribution engine. Business logic never reads the wall clock directly.
package clock

import (
	"sync"
	"time"
)

// Day is the length of one vesting or lock day
const Day = 24 * time.Hour

// Clock reports the current ledger time
type Clock interface {
	Now() time.Time
}

// System reads the wall clock, truncated to whole seconds to match ledger
// timestamp precision
type System struct{}

func (System) Now() time.Time {
	return time.Now().Truncate(time.Second).UTC()
}

// Func adapts a plain function to the Clock interface
type Func func() time.Time

func (f Func) Now() time.Time {
	return f()
}

// Manual is a Clock that only moves when told to. It is safe for concurrent use.
type Manual struct {
	mu  sync.RWMutex
	now time.Time
}

// NewManual returns a Manual clock set to the given time
func NewManual(now time.Time) *Manual {
	return &Manual{now: now}
}

func (m *Manual) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Set moves the clock to t. Moving backwards is allowed.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the clock forward by d and returns the new time
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}

// WholeDays returns the number of complete days between from and to, or 0 if
// to is not after from
func WholeDays(from, to time.Time) uint64 {
	if !to.After(from) {
		return 0
	}
	return uint64(to.Sub(from) / Day)
}
