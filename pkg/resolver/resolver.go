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

// Package resolver runs the full resolution pipeline over one bundle
// document: parse, validate, build the dependency graph, place units, wire
// relations, emit the plan. It is the single entry point callers use; the
// stage packages stay usable on their own for tooling.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bundleplan/bundleplan/api/v1alpha1"
	"github.com/bundleplan/bundleplan/pkg/graph"
	"github.com/bundleplan/bundleplan/pkg/metrics"
	"github.com/bundleplan/bundleplan/pkg/placement"
	"github.com/bundleplan/bundleplan/pkg/plan"
	"github.com/bundleplan/bundleplan/pkg/wiring"
)

// Outcome classifies how a resolution pass ended.
type Outcome string

const (
	// OutcomeResolved means a complete plan was produced.
	OutcomeResolved Outcome = "Resolved"
	// OutcomeValidationFailed means the document failed to parse or
	// validate. Result.Err collects every problem found.
	OutcomeValidationFailed Outcome = "ValidationFailed"
	// OutcomeCycleDetected means the dependency graph contains a cycle.
	OutcomeCycleDetected Outcome = "CycleDetected"
	// OutcomePlacementFailed means at least one unit could not be bound to
	// a machine.
	OutcomePlacementFailed Outcome = "PlacementFailed"
	// OutcomeWiringFailed means charm metadata was missing or at least one
	// relation could not be wired.
	OutcomeWiringFailed Outcome = "WiringFailed"
	// OutcomeInternalError means a stage after successful validation
	// produced an inconsistent intermediate state. It indicates a bug, not
	// a bad bundle.
	OutcomeInternalError Outcome = "InternalError"
)

// Input is one resolution request.
type Input struct {
	// Bundle is the raw YAML bundle document.
	Bundle []byte

	// Repository supplies charm metadata. Required.
	Repository wiring.CharmRepository

	// AllowProvision permits planning new machines for units no declared
	// machine can host.
	AllowProvision bool
}

// Result is the outcome of one resolution pass. Intermediate stage outputs
// are exposed for tooling; they are populated up to the stage that failed.
type Result struct {
	Outcome Outcome
	// Err is set for every outcome except Resolved.
	Err error

	// Parsed is the decoded document with its declaration order.
	Parsed *graph.ParsedBundle
	// Graph is the dependency graph with its topological order.
	Graph *graph.Graph
	// Assignment is the unit-to-machine binding.
	Assignment *placement.Assignment
	// Wiring is the resolved relation set.
	Wiring *wiring.WiringSet
	// Plan is the emitted deployment plan, set only when Resolved.
	Plan *plan.Plan
}

// Resolve runs the pipeline. The same input always produces the same
// result, including byte-identical plan serialization.
func Resolve(ctx context.Context, input Input) Result {
	start := time.Now()
	result := resolve(ctx, input)
	metrics.RecordResolutionLatency(time.Since(start).Seconds())
	metrics.RecordResolutionOutcome(string(result.Outcome))
	if result.Plan != nil {
		metrics.RecordPlanSteps(len(result.Plan.Steps))
	}
	return result
}

func resolve(ctx context.Context, input Input) Result {
	result := Result{}

	parsed, err := graph.ParseBundle(input.Bundle)
	if err != nil {
		result.Outcome = OutcomeValidationFailed
		result.Err = err
		return result
	}
	result.Parsed = parsed

	if err := graph.Validate(parsed); err != nil {
		result.Outcome = OutcomeValidationFailed
		result.Err = err
		return result
	}

	g, err := graph.BuildGraph(parsed)
	if err != nil {
		result.Outcome = OutcomeValidationFailed
		var ge *graph.GraphError
		if errors.As(err, &ge) {
			result.Outcome = OutcomeCycleDetected
		}
		result.Err = err
		return result
	}
	result.Graph = g

	if err := ctx.Err(); err != nil {
		result.Outcome = OutcomeInternalError
		result.Err = err
		return result
	}

	// Charm metadata is fetched up front: placement needs it for default
	// unit counts, and a bundle referencing an unknown charm must fail
	// even when the application has no relations.
	metadata, err := fetchMetadata(parsed, input.Repository)
	if err != nil {
		result.Outcome = OutcomeWiringFailed
		result.Err = err
		return result
	}
	if err := wiring.CheckOptions(parsed, input.Repository); err != nil {
		result.Outcome = OutcomeWiringFailed
		result.Err = err
		return result
	}

	assignment, err := placement.Resolve(parsed, placement.Options{
		AllowProvision: input.AllowProvision,
		Metadata:       metadata,
	})
	if err != nil {
		result.Outcome = OutcomePlacementFailed
		result.Err = err
		return result
	}
	result.Assignment = assignment

	wired, err := wiring.Wire(parsed, input.Repository)
	if err != nil {
		result.Outcome = OutcomeWiringFailed
		result.Err = err
		return result
	}
	result.Wiring = wired

	p, err := plan.Emit(parsed, g, assignment, wired)
	if err != nil {
		result.Outcome = OutcomeInternalError
		result.Err = err
		return result
	}
	result.Plan = p
	result.Outcome = OutcomeResolved
	return result
}

// fetchMetadata resolves charm metadata for every application, collecting
// the failures so an operator sees all unknown charms at once.
func fetchMetadata(parsed *graph.ParsedBundle, repo wiring.CharmRepository) (map[string]*v1alpha1.CharmMetadata, error) {
	metadata := make(map[string]*v1alpha1.CharmMetadata)
	list := &graph.ErrorList{}
	for _, name := range parsed.ApplicationOrder {
		app := parsed.Bundle.Applications[name]
		if app == nil {
			continue
		}
		if _, done := metadata[app.Charm]; done {
			continue
		}
		meta, err := repo.Metadata(app.Charm)
		if err != nil {
			list.Append(fmt.Errorf("application %q: charm %q: %w", name, app.Charm, err))
			continue
		}
		metadata[app.Charm] = meta
	}
	if err := list.OrNil(); err != nil {
		return nil, err
	}
	return metadata, nil
}
