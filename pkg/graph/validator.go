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

package graph

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/bundleplan/bundleplan/pkg/constraints"
)

// Validate checks the structural and semantic well-formedness of a parsed
// bundle. It is a pure function: it collects every problem it finds into an
// *ErrorList rather than failing on the first, and returns nil when the
// document is well-formed.
//
// Endpoint compatibility is not checked here; that requires the external
// charm metadata provider and belongs to the wiring stage.
func Validate(parsed *ParsedBundle) error {
	v := &validator{parsed: parsed}
	list := &ErrorList{}
	list.Append(v.validateDeclarationKeys()...)
	list.Append(v.validateMachines()...)
	list.Append(v.validateApplications()...)
	list.Append(v.validateRelations()...)
	return list.OrNil()
}

type validator struct {
	parsed *ParsedBundle
}

// validateDeclarationKeys rejects duplicate machine and application IDs.
// The decoded maps cannot carry duplicates, so this works off the raw
// declaration order recovered by the parser.
func (v *validator) validateDeclarationKeys() []error {
	var errs []error
	check := func(section string, order []string) {
		seen := sets.New[string]()
		for _, id := range order {
			if seen.Has(id) {
				errs = append(errs, structuralf(id, "duplicate %s ID", section))
				continue
			}
			seen.Insert(id)
		}
	}
	check("machine", v.parsed.MachineOrder)
	check("application", v.parsed.ApplicationOrder)
	return errs
}

func (v *validator) validateMachines() []error {
	var errs []error
	for _, id := range v.parsed.MachineOrder {
		machine := v.parsed.Bundle.Machines[id]
		if machine == nil {
			continue
		}
		if _, err := constraints.Parse(machine.Constraints); err != nil {
			errs = append(errs, constraintErr(fmt.Sprintf("machine %q", id), err))
		}
	}
	return errs
}

func (v *validator) validateApplications() []error {
	var errs []error
	for _, name := range v.parsed.ApplicationOrder {
		app := v.parsed.Bundle.Applications[name]
		if app == nil {
			continue
		}
		subject := fmt.Sprintf("application %q", name)

		if app.Charm == "" {
			errs = append(errs, structuralf(subject, "no charm reference"))
		}
		if app.NumUnits < 0 {
			errs = append(errs, structuralf(subject, "unit count %d is less than 1", app.NumUnits))
		}

		// The arity of the placement list is checked here only against an
		// explicitly declared unit count. With no declared count the
		// effective number of units may come from charm metadata, which
		// this stage does not see; placement rechecks with metadata in hand.
		if app.NumUnits > 0 && len(app.To) > app.NumUnits {
			errs = append(errs, structuralf(subject,
				"%d placement references for %d units", len(app.To), app.NumUnits))
		}
		for _, ref := range app.To {
			if ref == "" {
				// Empty reference means "any machine matching constraints".
				continue
			}
			if _, ok := v.parsed.Bundle.Machines[ref]; !ok {
				errs = append(errs, structuralf(subject, "placement references undeclared machine %q", ref))
			}
		}

		if _, err := constraints.Parse(app.Constraints); err != nil {
			errs = append(errs, constraintErr(subject, err))
		}
		for _, label := range sets.List(sets.KeySet(app.Storage)) {
			if _, err := constraints.ParseSize(app.Storage[label]); err != nil {
				errs = append(errs, constraintErr(subject,
					fmt.Errorf("storage %q: %w", label, err)))
			}
		}
	}
	return errs
}

func (v *validator) validateRelations() []error {
	var errs []error
	seen := sets.New[string]()
	for i, rel := range v.parsed.Bundle.Relations {
		subject := fmt.Sprintf("relation %d %v", i, []string(rel))

		if len(rel) != 2 {
			errs = append(errs, structuralf(subject, "expected exactly 2 endpoints, got %d", len(rel)))
			continue
		}

		wellFormed := true
		for _, ref := range rel {
			app, _, err := SplitEndpoint(ref)
			if err != nil {
				errs = append(errs, structuralf(subject, "%v", err))
				wellFormed = false
				continue
			}
			if _, ok := v.parsed.Bundle.Applications[app]; !ok {
				errs = append(errs, structuralf(subject, "references undeclared application %q", app))
			}
		}
		if !wellFormed {
			continue
		}

		key := canonicalRelationKey(rel[0], rel[1])
		if seen.Has(key) {
			errs = append(errs, structuralf(subject, "duplicate relation"))
			continue
		}
		seen.Insert(key)
	}
	return errs
}

// canonicalRelationKey normalizes the unordered endpoint pair so that
// "a:x b:y" and "b:y a:x" identify the same relation.
func canonicalRelationKey(ep0, ep1 string) string {
	if ep1 < ep0 {
		ep0, ep1 = ep1, ep0
	}
	return ep0 + " " + ep1
}
