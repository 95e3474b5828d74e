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

package sqlite

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const sqliteMetricNamePrefix = "owken_database_metadata_"

type sqliteMetrics struct {
	stateWrites prometheus.Counter
	stateRows   prometheus.Gauge
	txnRollback prometheus.Counter
}

func (m *sqliteMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.stateWrites = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: sqliteMetricNamePrefix + "state_writes_total",
		Help: "total full state rewrites",
	})
	m.stateRows = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: sqliteMetricNamePrefix + "state_rows",
		Help: "rows written by the last state rewrite",
	})
	m.txnRollback = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: sqliteMetricNamePrefix + "txn_rollbacks_total",
		Help: "total metadata transactions rolled back",
	})
}
