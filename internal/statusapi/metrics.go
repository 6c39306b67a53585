// Copyright 2025 Tom Barlow
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

// Package statusapi exposes an HTTP endpoint reporting the status of every
// daemon guardian is supervising, plus Prometheus metrics for lifecycle
// transitions.
package statusapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	daemonAlive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "guardian_daemon_alive",
			Help: "1 if the named daemon's pidfile lock is currently held, 0 otherwise",
		},
		[]string{"daemon"},
	)

	lifecycleTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardian_lifecycle_transitions_total",
			Help: "Total lifecycle transitions observed per daemon and outcome",
		},
		[]string{"daemon", "event", "outcome"},
	)

	checkDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "guardian_check_duration_seconds",
			Help:    "Time spent probing a daemon's pidfile lock",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"daemon"},
	)
)

// RecordAlive updates the alive gauge for a daemon.
func RecordAlive(daemon string, alive bool) {
	v := 0.0
	if alive {
		v = 1.0
	}
	daemonAlive.WithLabelValues(daemon).Set(v)
}

// RecordTransition increments the lifecycle transition counter.
func RecordTransition(daemon, event, outcome string) {
	lifecycleTransitions.WithLabelValues(daemon, event, outcome).Inc()
}

// ObserveCheckDuration records how long a Check probe took.
func ObserveCheckDuration(daemon string, seconds float64) {
	checkDuration.WithLabelValues(daemon).Observe(seconds)
}
