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

package conversion

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type conversionMetrics struct {
	deposits  *prometheus.CounterVec
	forwarded *prometheus.CounterVec
}

func (c *Conversion) initMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	c.metrics.deposits = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "owken_conversion_deposits_total",
			Help: "number of accepted deposits by category",
		},
		[]string{"category"},
	)
	c.metrics.forwarded = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "owken_conversion_forwarded_total",
			Help: "number of balances forwarded to the lock registry by category",
		},
		[]string{"category"},
	)
}
