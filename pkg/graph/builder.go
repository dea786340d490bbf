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

	"github.com/bundleplan/bundleplan/pkg/graph/dag"
)

// Graph is the dependency graph derived from a validated bundle: a DAG
// whose vertices are machines, applications, and relations, with edges
// encoding "must be realized before".
type Graph struct {
	// DAG is the directed acyclic graph of node dependencies.
	DAG *dag.DirectedAcyclicGraph[string]

	// Nodes maps node ID to the node.
	Nodes map[string]*Node

	// TopologicalOrder is the deterministic realization order of all node
	// IDs: machine provisioning before dependent application deployment,
	// application deployment before dependent relation wiring, ties broken
	// by first appearance in the source document.
	TopologicalOrder []string
}

// BuildGraph derives the dependency graph from a validated bundle:
//
//   - machine -> application, for every machine an application places
//     units on;
//   - application -> relation, for both of a relation's endpoints.
//
// Relation-to-relation gating edges are reserved for a future grammar
// extension; the cycle check already covers them. A cycle is always an
// error and is reported as a GraphError naming the minimal cycle found.
func BuildGraph(parsed *ParsedBundle) (*Graph, error) {
	d := dag.NewDirectedAcyclicGraph[string]()
	nodes := make(map[string]*Node)
	index := 0

	addNode := func(n *Node) error {
		n.Index = index
		if err := d.AddVertex(n.ID, index); err != nil {
			return fmt.Errorf("failed to add vertex %q: %w", n.ID, err)
		}
		nodes[n.ID] = n
		index++
		return nil
	}

	for _, machine := range parsed.MachineOrder {
		if err := addNode(&Node{ID: MachineNodeID(machine), Type: NodeTypeMachine, Machine: machine}); err != nil {
			return nil, err
		}
	}
	for _, app := range parsed.ApplicationOrder {
		if err := addNode(&Node{ID: ApplicationNodeID(app), Type: NodeTypeApplication, Application: app}); err != nil {
			return nil, err
		}
	}
	for _, rel := range parsed.Bundle.Relations {
		if err := addNode(&Node{ID: RelationNodeID(rel), Type: NodeTypeRelation, Relation: rel}); err != nil {
			return nil, err
		}
	}

	for _, name := range parsed.ApplicationOrder {
		app := parsed.Bundle.Applications[name]
		if app == nil {
			continue
		}
		machines := sets.New[string]()
		for _, ref := range app.To {
			if ref != "" {
				machines.Insert(MachineNodeID(ref))
			}
		}
		if machines.Len() > 0 {
			if err := d.AddDependencies(ApplicationNodeID(name), sets.List(machines)); err != nil {
				return nil, wrapGraphErr(err)
			}
		}
	}

	for _, rel := range parsed.Bundle.Relations {
		deps := sets.New[string]()
		for _, ref := range rel {
			app, _, err := SplitEndpoint(ref)
			if err != nil {
				// Validation rejects malformed references before this stage.
				return nil, fmt.Errorf("failed to split endpoint %q: %w", ref, err)
			}
			deps.Insert(ApplicationNodeID(app))
		}
		if err := d.AddDependencies(RelationNodeID(rel), sets.List(deps)); err != nil {
			return nil, wrapGraphErr(err)
		}
	}

	order, err := d.TopologicalSort()
	if err != nil {
		return nil, wrapGraphErr(err)
	}

	return &Graph{
		DAG:              d,
		Nodes:            nodes,
		TopologicalOrder: order,
	}, nil
}

// Stages groups the graph's nodes into realization stages: every node in a
// stage depends only on nodes in earlier stages, so all actions of one stage
// may be executed concurrently. Node IDs within a stage keep their document
// order.
func (g *Graph) Stages() ([][]string, error) {
	levels, err := g.DAG.TopologicalSortLevels()
	if err != nil {
		return nil, wrapGraphErr(err)
	}
	return levels, nil
}

// wrapGraphErr converts DAG cycle errors into the GraphError taxonomy,
// keeping the named cycle.
func wrapGraphErr(err error) error {
	if ce := dag.AsCycleError[string](err); ce != nil {
		return &GraphError{Cycle: ce.Nodes, Err: err}
	}
	return err
}
