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

// Package plan linearizes a resolved bundle into an ordered list of
// executable steps: provision machines, deploy applications onto them,
// wire relations between deployed applications. The order is the graph's
// topological order, so every step's prerequisites precede it, and the
// whole emission is deterministic: the same inputs produce byte-identical
// output.
package plan

import (
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/bundleplan/bundleplan/pkg/constraints"
	"github.com/bundleplan/bundleplan/pkg/graph"
	"github.com/bundleplan/bundleplan/pkg/placement"
	"github.com/bundleplan/bundleplan/pkg/wiring"
)

// ProvisionMachine creates one machine before anything is deployed on it.
type ProvisionMachine struct {
	// MachineID is the bundle's machine ID, or a synthetic "new-N" ID for
	// machines the resolver planned itself.
	MachineID string `json:"machineID"`
	// Constraints is the canonical constraint expression the machine must
	// satisfy. Empty means unconstrained.
	Constraints string `json:"constraints,omitempty"`
	// Series is the operating system series, inherited from the bundle
	// default when the machine does not declare one.
	Series string `json:"series,omitempty"`
	// Annotations carries the machine's annotations through unchanged.
	Annotations map[string]string `json:"annotations,omitempty"`
}

// UnitPlacement binds one deployed unit to a machine.
type UnitPlacement struct {
	Unit    int    `json:"unit"`
	Machine string `json:"machine"`
}

// DeployApplication deploys an application's units onto provisioned
// machines.
type DeployApplication struct {
	Application string          `json:"application"`
	Charm       string          `json:"charm"`
	Series      string          `json:"series,omitempty"`
	Units       []UnitPlacement `json:"units"`
	// Options and Storage pass through the bundle's configuration.
	Options map[string]interface{} `json:"options,omitempty"`
	Storage map[string]string      `json:"storage,omitempty"`
	Expose  bool                   `json:"expose,omitempty"`
	// Annotations carries the application's annotations through unchanged.
	Annotations map[string]string `json:"annotations,omitempty"`
}

// WireRelation establishes one resolved relation between two deployed
// endpoints.
type WireRelation struct {
	Provider  string `json:"provider"`
	Requirer  string `json:"requirer"`
	Interface string `json:"interface"`
	Peer      bool   `json:"peer,omitempty"`
}

// Step is one plan entry. Exactly one of the fields is set.
type Step struct {
	Provision *ProvisionMachine  `json:"provision,omitempty"`
	Deploy    *DeployApplication `json:"deploy,omitempty"`
	Wire      *WireRelation      `json:"wire,omitempty"`
}

// Plan is the ordered deployment plan for one bundle.
type Plan struct {
	// Description passes the bundle's description through.
	Description string `json:"description,omitempty"`
	// Steps is the executable step list. Executing the steps in order
	// never references a machine before its provision step or an
	// application before its deploy step.
	Steps []Step `json:"steps"`
}

// Marshal renders the plan as YAML. Rendering is deterministic: emitting
// the same plan twice produces byte-identical output.
func (p *Plan) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// Emit linearizes the resolution results along the graph's topological
// order. Machines the resolver provisioned itself have no graph node;
// their provision steps are inserted immediately before the first deploy
// step that references them.
func Emit(parsed *graph.ParsedBundle, g *graph.Graph, assignment *placement.Assignment, wired *wiring.WiringSet) (*Plan, error) {
	e := &emitter{
		parsed:      parsed,
		assignment:  assignment,
		provisioned: make(map[string]placement.ProvisionedMachine),
		relations:   make(map[string]wiring.Wired),
	}
	for _, m := range assignment.ProvisionedMachines {
		e.provisioned[m.ID] = m
	}
	if wired != nil {
		for _, w := range wired.Relations {
			e.relations[graph.RelationNodeID(w.Source)] = w
		}
	}

	p := &Plan{Description: parsed.Bundle.Description}
	for _, id := range g.TopologicalOrder {
		node := g.Nodes[id]
		steps, err := e.emitNode(node)
		if err != nil {
			return nil, err
		}
		p.Steps = append(p.Steps, steps...)
	}
	return p, nil
}

type emitter struct {
	parsed      *graph.ParsedBundle
	assignment  *placement.Assignment
	provisioned map[string]placement.ProvisionedMachine
	relations   map[string]wiring.Wired
}

func (e *emitter) emitNode(node *graph.Node) ([]Step, error) {
	switch node.Type {
	case graph.NodeTypeMachine:
		step, err := e.provisionStep(node.Machine)
		if err != nil {
			return nil, err
		}
		return []Step{step}, nil
	case graph.NodeTypeApplication:
		return e.deploySteps(node.Application)
	case graph.NodeTypeRelation:
		step, err := e.wireStep(node)
		if err != nil {
			return nil, err
		}
		return []Step{step}, nil
	default:
		return nil, fmt.Errorf("unknown node type %v for node %q", node.Type, node.ID)
	}
}

func (e *emitter) provisionStep(id string) (Step, error) {
	machine := e.parsed.Bundle.Machines[id]
	if machine == nil {
		return Step{}, fmt.Errorf("machine %q has a graph node but no declaration", id)
	}
	cons, err := constraints.Parse(machine.Constraints)
	if err != nil {
		return Step{}, fmt.Errorf("machine %q: %w", id, err)
	}
	series := machine.Series
	if series == "" {
		series = e.parsed.Bundle.Series
	}
	return Step{Provision: &ProvisionMachine{
		MachineID:   id,
		Constraints: cons.String(),
		Series:      series,
		Annotations: machine.Annotations,
	}}, nil
}

// deploySteps emits the application's deploy step, preceded by provision
// steps for any synthetic machines its units are the first to reference.
func (e *emitter) deploySteps(name string) ([]Step, error) {
	app := e.parsed.Bundle.Applications[name]
	if app == nil {
		return nil, fmt.Errorf("application %q has a graph node but no declaration", name)
	}

	var steps []Step
	var units []UnitPlacement
	for _, u := range e.assignment.Units {
		if u.Application != name {
			continue
		}
		if u.Provisioned {
			if m, pending := e.provisioned[u.Machine]; pending {
				steps = append(steps, Step{Provision: &ProvisionMachine{
					MachineID:   m.ID,
					Constraints: m.Constraints.String(),
					Series:      e.parsed.Bundle.Series,
				}})
				delete(e.provisioned, u.Machine)
			}
		}
		units = append(units, UnitPlacement{Unit: u.Unit, Machine: u.Machine})
	}

	steps = append(steps, Step{Deploy: &DeployApplication{
		Application: name,
		Charm:       app.Charm,
		Series:      e.parsed.Bundle.Series,
		Units:       units,
		Options:     app.Options,
		Storage:     app.Storage,
		Expose:      app.Expose,
		Annotations: app.Annotations,
	}})
	return steps, nil
}

func (e *emitter) wireStep(node *graph.Node) (Step, error) {
	w, ok := e.relations[node.ID]
	if !ok {
		return Step{}, fmt.Errorf("relation %q has a graph node but no wiring", node.ID)
	}
	return Step{Wire: &WireRelation{
		Provider:  w.Provider.String(),
		Requirer:  w.Requirer.String(),
		Interface: w.Interface,
		Peer:      w.Peer,
	}}, nil
}
