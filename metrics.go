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

package owken

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type nodeMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func (m *nodeMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.operations = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "owken_node_operations_total",
			Help: "total operations executed, by outcome",
		},
		[]string{"operation", "result"},
	)
	m.duration = promautoFactory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "owken_node_operation_duration_seconds",
			Help:    "time taken to execute and persist an operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
}

func (m *nodeMetrics) observe(operation string, start time.Time, err error) {
	result := "committed"
	if err != nil {
		result = "rejected"
	}
	m.operations.WithLabelValues(operation, result).Inc()
	m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
