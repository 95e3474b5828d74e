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

package timelock

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type timelockMetrics struct {
	locksCreated *prometheus.CounterVec
	releases     prometheus.Counter
	entries      prometheus.Gauge
}

// initMetrics builds the metrics. A nil registry leaves them unregistered.
func (t *Timelock) initMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	t.metrics.locksCreated = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "owken_timelock_locks_created_total",
			Help: "number of lock entries created by category",
		},
		[]string{"category"},
	)
	t.metrics.releases = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "owken_timelock_releases_total",
		Help: "number of lock entries withdrawn",
	})
	t.metrics.entries = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "owken_timelock_entries",
		Help: "current number of lock entries",
	})
}

func categoryLabel(c Category) string {
	if c == CategoryNone {
		return "generic"
	}
	return c.String()
}
