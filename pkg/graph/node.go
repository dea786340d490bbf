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

	"github.com/bundleplan/bundleplan/api/v1alpha1"
)

// NodeType identifies the kind of node in the dependency graph.
type NodeType int

const (
	// NodeTypeMachine is a declared machine awaiting provisioning.
	NodeTypeMachine NodeType = iota
	// NodeTypeApplication is an application awaiting deployment.
	NodeTypeApplication
	// NodeTypeRelation is an endpoint pair awaiting wiring.
	NodeTypeRelation
)

// String returns a human-readable name for the node type.
func (t NodeType) String() string {
	switch t {
	case NodeTypeMachine:
		return "Machine"
	case NodeTypeApplication:
		return "Application"
	case NodeTypeRelation:
		return "Relation"
	default:
		return "Unknown"
	}
}

// Node is one vertex of the dependency graph together with a reference back
// into the document model. Nodes hold non-owning references: the Bundle
// remains the single owner of the declarations.
type Node struct {
	// ID is the graph-wide identifier, e.g. "machine:0", "app:mysql",
	// "relation:wordpress:db mysql:db".
	ID string
	// Index is the node's first-appearance position in the source
	// document, counted across machines, then applications, then
	// relations. It is the deterministic tie-break for plan emission.
	Index int
	// Type identifies the node kind.
	Type NodeType

	// Machine is the machine ID for NodeTypeMachine.
	Machine string
	// Application is the application name for NodeTypeApplication.
	Application string
	// Relation is the declared endpoint pair for NodeTypeRelation.
	Relation v1alpha1.RelationSpec
}

// MachineNodeID returns the graph ID for a machine declaration.
func MachineNodeID(machine string) string { return "machine:" + machine }

// ApplicationNodeID returns the graph ID for an application declaration.
func ApplicationNodeID(application string) string { return "app:" + application }

// RelationNodeID returns the graph ID for a relation, keeping the source
// endpoint order.
func RelationNodeID(rel v1alpha1.RelationSpec) string {
	return fmt.Sprintf("relation:%s %s", rel[0], rel[1])
}
