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

// Package placement binds application units to machines.
//
// Explicit placement references bind 1:1 in declaration order. Units
// without a reference are placed first-fit over the machines in declaration
// order, taking the first machine whose declared constraints satisfy the
// application's requested constraints. First-fit is deterministic and does
// not model capacity consumption: several units may share a machine unless
// an exclusivity rule forbids it.
package placement

import (
	"fmt"

	"github.com/bundleplan/bundleplan/api/v1alpha1"
	"github.com/bundleplan/bundleplan/pkg/constraints"
	"github.com/bundleplan/bundleplan/pkg/graph"
)

// Options carries the capabilities of the surrounding environment.
type Options struct {
	// AllowProvision permits the resolver to plan new machines for units
	// that no declared machine can host. Off by default: without it, an
	// unsatisfiable placement is a hard error.
	AllowProvision bool

	// Metadata supplies charm metadata by charm reference, used for
	// default unit counts. Nil falls back to one unit per application.
	Metadata map[string]*v1alpha1.CharmMetadata
}

// UnitAssignment binds one unit of an application to a machine.
type UnitAssignment struct {
	// Application is the application name.
	Application string `json:"application"`
	// Unit is the unit index within the application, starting at 0.
	Unit int `json:"unit"`
	// Machine is the machine ID hosting the unit. Provisioned machines
	// use synthetic IDs ("new-0", "new-1", ...) assigned in resolution
	// order.
	Machine string `json:"machine"`
	// Provisioned marks machines that are not declared in the bundle and
	// must be created by the executor.
	Provisioned bool `json:"provisioned,omitempty"`
}

// Assignment is the complete placement result for one resolution pass.
type Assignment struct {
	// Units lists every unit binding, in application declaration order and
	// unit index order.
	Units []UnitAssignment

	// ProvisionedMachines lists the synthetic machines the plan must
	// create, in the order their IDs were assigned. Each entry carries the
	// constraints of the application that required it.
	ProvisionedMachines []ProvisionedMachine
}

// ProvisionedMachine describes a machine that exists only because
// AllowProvision let the resolver invent it.
type ProvisionedMachine struct {
	ID          string
	Constraints constraints.Constraints
}

// UnitsOn returns the applications with at least one unit on the given
// machine.
func (a *Assignment) UnitsOn(machine string) []UnitAssignment {
	var units []UnitAssignment
	for _, u := range a.Units {
		if u.Machine == machine {
			units = append(units, u)
		}
	}
	return units
}

// Resolve computes the unit-to-machine binding for a validated bundle. All
// placement failures are collected into one error list; a bundle with any
// unplaceable unit produces no assignment at all.
func Resolve(parsed *graph.ParsedBundle, opts Options) (*Assignment, error) {
	r := &resolver{
		parsed:      parsed,
		opts:        opts,
		machineCons: make(map[string]constraints.Constraints),
		exclusive:   make(map[string]string),
	}

	for _, id := range parsed.MachineOrder {
		machine := parsed.Bundle.Machines[id]
		if machine == nil {
			continue
		}
		cons, err := constraints.Parse(machine.Constraints)
		if err != nil {
			// Validation rejects unparseable constraints before this stage.
			return nil, fmt.Errorf("machine %q: %w", id, err)
		}
		r.machineCons[id] = cons
	}

	assignment := &Assignment{}
	list := &graph.ErrorList{}
	for _, name := range parsed.ApplicationOrder {
		units, err := r.placeApplication(name, assignment)
		if err != nil {
			list.Append(err)
			continue
		}
		assignment.Units = append(assignment.Units, units...)
	}
	if err := list.OrNil(); err != nil {
		return nil, err
	}
	return assignment, nil
}

type resolver struct {
	parsed      *graph.ParsedBundle
	opts        Options
	machineCons map[string]constraints.Constraints

	// exclusive maps a machine ID to the application that claimed it
	// exclusively.
	exclusive map[string]string
	// occupied maps a machine ID to the applications hosted on it, used to
	// reject exclusive applications joining occupied machines.
	occupied map[string][]string

	provisionSeq int
}

func (r *resolver) placeApplication(name string, assignment *Assignment) ([]UnitAssignment, error) {
	app := r.parsed.Bundle.Applications[name]
	if app == nil {
		return nil, nil
	}

	required, err := constraints.Parse(app.Constraints)
	if err != nil {
		return nil, fmt.Errorf("application %q: %w", name, err)
	}

	units := r.parsed.UnitCount(app, r.opts.Metadata[app.Charm])
	if len(app.To) > units {
		// Validation already rejects this for explicitly declared counts;
		// here the effective count may come from charm metadata.
		return nil, &graph.StructuralError{
			Subject: fmt.Sprintf("application %q", name),
			Err:     fmt.Errorf("%d placement references for %d units", len(app.To), units),
		}
	}
	list := &graph.ErrorList{}
	placements := make([]UnitAssignment, 0, units)

	for unit := 0; unit < units; unit++ {
		var ref string
		if unit < len(app.To) {
			ref = app.To[unit]
		}

		var machine string
		var provisioned bool
		if ref != "" {
			if err := r.checkExplicit(name, ref, required); err != nil {
				list.Append(err)
				continue
			}
			machine = ref
		} else {
			machine, provisioned, err = r.firstFit(name, required)
			if err != nil {
				list.Append(err)
				continue
			}
			if provisioned {
				assignment.ProvisionedMachines = append(assignment.ProvisionedMachines, ProvisionedMachine{
					ID:          machine,
					Constraints: required,
				})
			}
		}

		r.claim(name, app.Exclusive, machine)
		placements = append(placements, UnitAssignment{
			Application: name,
			Unit:        unit,
			Machine:     machine,
			Provisioned: provisioned,
		})
	}

	if err := list.OrNil(); err != nil {
		return nil, err
	}
	return placements, nil
}

// checkExplicit verifies that an explicitly referenced machine satisfies
// the application's constraints and exclusivity rules. An unmet explicit
// placement is a hard error naming the application and the unmet
// constraint; it is never downgraded.
func (r *resolver) checkExplicit(app, machine string, required constraints.Constraints) error {
	cons, declared := r.machineCons[machine]
	if !declared {
		// Validation rejects undeclared references before this stage.
		return fmt.Errorf("application %q: placement references undeclared machine %q", app, machine)
	}
	if unmet := cons.Unmet(required); len(unmet) > 0 {
		return &graph.ConstraintError{
			Subject: fmt.Sprintf("application %q", app),
			Unmet:   unmet,
			Err:     fmt.Errorf("machine %q does not satisfy %v", machine, unmet),
		}
	}
	if owner, ok := r.exclusive[machine]; ok && owner != app {
		return &graph.ConstraintError{
			Subject: fmt.Sprintf("application %q", app),
			Err:     fmt.Errorf("machine %q is exclusively claimed by application %q", machine, owner),
		}
	}
	if r.parsed.Bundle.Applications[app].Exclusive && r.hostsOther(machine, app) {
		return &graph.ConstraintError{
			Subject: fmt.Sprintf("application %q", app),
			Err:     fmt.Errorf("exclusive application cannot join machine %q, already hosting %v", machine, r.occupied[machine]),
		}
	}
	return nil
}

// firstFit selects the first declared machine, in declaration order, whose
// constraints satisfy the request and whose exclusivity state admits the
// application. When no machine fits and provisioning is allowed, a new
// machine is planned instead.
func (r *resolver) firstFit(app string, required constraints.Constraints) (machine string, provisioned bool, err error) {
	exclusiveApp := r.parsed.Bundle.Applications[app].Exclusive
	for _, id := range r.parsed.MachineOrder {
		cons, ok := r.machineCons[id]
		if !ok || !cons.Satisfies(required) {
			continue
		}
		if owner, claimed := r.exclusive[id]; claimed && owner != app {
			continue
		}
		if exclusiveApp && r.hostsOther(id, app) {
			continue
		}
		return id, false, nil
	}

	if r.opts.AllowProvision {
		id := fmt.Sprintf("new-%d", r.provisionSeq)
		r.provisionSeq++
		return id, true, nil
	}

	unmet := r.describeUnmet(required)
	err = fmt.Errorf("no eligible machine for %v", unmet)
	if len(unmet) == 0 {
		err = fmt.Errorf("no eligible machine")
	}
	return "", false, &graph.ConstraintError{
		Subject: fmt.Sprintf("application %q", app),
		Unmet:   unmet,
		Err:     err,
	}
}

func (r *resolver) claim(app string, exclusive bool, machine string) {
	if r.occupied == nil {
		r.occupied = make(map[string][]string)
	}
	r.occupied[machine] = append(r.occupied[machine], app)
	if exclusive {
		r.exclusive[machine] = app
	}
}

func (r *resolver) hostsOther(machine, app string) bool {
	for _, hosted := range r.occupied[machine] {
		if hosted != app {
			return true
		}
	}
	return false
}

// describeUnmet renders the requested values for diagnostics. When the
// request is empty the failure is about eligibility (exclusivity or no
// machines at all), so the full request is reported as-is.
func (r *resolver) describeUnmet(required constraints.Constraints) []constraints.Value {
	return constraints.Constraints{}.Unmet(required)
}
