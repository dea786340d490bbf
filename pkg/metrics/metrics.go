// Copyright 2026 The bundleplan Authors.
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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResolutionDuration is a Histogram that tracks the latency of full
	// bundle resolutions in seconds.
	ResolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bundleplan_resolution_duration_seconds",
			Help:    "Bundle resolution duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-6, 2, 16), // 1us to ~65ms
		},
	)

	// ResolutionResult is a Counter that tracks resolution outcomes.
	ResolutionResult = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundleplan_resolution_result_total",
			Help: "Count of bundle resolutions by outcome",
		},
		[]string{"outcome"},
	)

	// PlanSteps is a Histogram that tracks emitted plan sizes.
	PlanSteps = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bundleplan_plan_steps",
			Help:    "Number of steps in emitted plans",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1 to 2048
		},
	)
)

// RecordResolutionLatency records the latency of one resolution pass.
func RecordResolutionLatency(elapsed float64) {
	ResolutionDuration.Observe(elapsed)
}

// RecordResolutionOutcome increments the outcome counter.
func RecordResolutionOutcome(outcome string) {
	ResolutionResult.WithLabelValues(outcome).Inc()
}

// RecordPlanSteps records the size of an emitted plan.
func RecordPlanSteps(steps int) {
	PlanSteps.Observe(float64(steps))
}
