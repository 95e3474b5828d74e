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

package vesting

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type vaultMetrics struct {
	grantsAdded   prometheus.Counter
	grantsRemoved prometheus.Counter
	claims        prometheus.Counter
	grants        prometheus.Gauge
}

func (v *Vault) initMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	v.metrics.grantsAdded = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "owken_vesting_grants_added_total",
		Help: "number of grants added",
	})
	v.metrics.grantsRemoved = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "owken_vesting_grants_removed_total",
		Help: "number of grants removed by the controller",
	})
	v.metrics.claims = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "owken_vesting_claims_total",
		Help: "number of successful claims",
	})
	v.metrics.grants = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "owken_vesting_grants",
		Help: "current number of grants held by the vault",
	})
}
