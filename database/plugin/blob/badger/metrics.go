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

package badger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const badgerMetricNamePrefix = "owken_database_blob_"

type badgerMetrics struct {
	journalAppends prometheus.Counter
	journalBytes   prometheus.Counter
	gcRuns         prometheus.Counter
}

func (m *badgerMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.journalAppends = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: badgerMetricNamePrefix + "journal_appends_total",
		Help: "total journal records written",
	})
	m.journalBytes = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: badgerMetricNamePrefix + "journal_bytes_total",
		Help: "total bytes of journal records written",
	})
	m.gcRuns = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: badgerMetricNamePrefix + "gc_runs_total",
		Help: "total value log garbage collection passes that rewrote a file",
	})
}
