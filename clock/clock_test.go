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

package clock_test

import (
	"testing"
	"time"

	"github.com/PedroGalveias/OwkenERC20/clock"
	"github.com/stretchr/testify/assert"
)

func TestManualClock(t *testing.T) {
	start := time.Unix(1_700_000_000, 0).UTC()
	c := clock.NewManual(start)
	assert.Equal(t, start, c.Now())
	got := c.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), got)
	assert.Equal(t, got, c.Now())
	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestSystemClockTruncates(t *testing.T) {
	now := clock.System{}.Now()
	assert.Equal(t, 0, now.Nanosecond())
}

func TestFuncClock(t *testing.T) {
	fixed := time.Unix(42, 0)
	var c clock.Clock = clock.Func(func() time.Time { return fixed })
	assert.Equal(t, fixed, c.Now())
}

func TestWholeDays(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	tests := []struct {
		name string
		to   time.Time
		want uint64
	}{
		{name: "before start", to: start.Add(-time.Hour), want: 0},
		{name: "same instant", to: start, want: 0},
		{name: "partial day", to: start.Add(23 * time.Hour), want: 0},
		{name: "exactly one day", to: start.Add(clock.Day), want: 1},
		{name: "one day and change", to: start.Add(clock.Day + time.Second), want: 1},
		{name: "ten days", to: start.Add(10*clock.Day + time.Hour), want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clock.WholeDays(start, tt.to))
		})
	}
}
