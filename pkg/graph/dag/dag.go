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

// Package dag provides a directed acyclic graph with a deterministic
// topological sort. Vertices carry the index of their first appearance in
// the source document; the sort scans vertices in that order and emits
// every ready one per pass, so logically identical documents always
// produce identical orderings.
package dag

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// Vertex is a node in the graph together with its dependency set.
type Vertex[T cmp.Ordered] struct {
	// ID is the unique identifier of the vertex.
	ID T
	// Order is the position of the vertex's first appearance in the source
	// document. It is the tie-break key for topological sorting.
	Order int
	// DependsOn holds the IDs of the vertices this vertex depends on.
	DependsOn map[T]struct{}
}

// DirectedAcyclicGraph is a graph that rejects edges which would introduce
// a cycle.
type DirectedAcyclicGraph[T cmp.Ordered] struct {
	// Vertices maps vertex ID to the vertex.
	Vertices map[T]*Vertex[T]
}

// NewDirectedAcyclicGraph creates an empty graph.
func NewDirectedAcyclicGraph[T cmp.Ordered]() *DirectedAcyclicGraph[T] {
	return &DirectedAcyclicGraph[T]{
		Vertices: make(map[T]*Vertex[T]),
	}
}

// CycleError is returned when a cycle is detected. Nodes holds one minimal
// cycle, starting and ending at the same vertex.
type CycleError[T cmp.Ordered] struct {
	Nodes []T
}

func (e *CycleError[T]) Error() string {
	return fmt.Sprintf("graph contains a cycle: %v", e.Nodes)
}

// AsCycleError unwraps err to a *CycleError, or returns nil.
func AsCycleError[T cmp.Ordered](err error) *CycleError[T] {
	var ce *CycleError[T]
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}

// AddVertex adds a vertex with the given first-appearance order. Adding the
// same ID twice is an error.
func (d *DirectedAcyclicGraph[T]) AddVertex(id T, order int) error {
	if _, exists := d.Vertices[id]; exists {
		return fmt.Errorf("node %v already exists", id)
	}
	d.Vertices[id] = &Vertex[T]{
		ID:        id,
		Order:     order,
		DependsOn: make(map[T]struct{}),
	}
	return nil
}

// AddDependencies records that `from` depends on each node in `dependencies`.
// Self references, references to unknown vertices, and edges that would
// close a cycle are rejected.
func (d *DirectedAcyclicGraph[T]) AddDependencies(from T, dependencies []T) error {
	fromVertex, ok := d.Vertices[from]
	if !ok {
		return fmt.Errorf("node %v does not exist", from)
	}

	for _, dep := range dependencies {
		if dep == from {
			return fmt.Errorf("self references are not allowed: %v", from)
		}
		if _, ok := d.Vertices[dep]; !ok {
			return fmt.Errorf("node %v depends on %v, but %v does not exist", from, dep, dep)
		}

		fromVertex.DependsOn[dep] = struct{}{}

		// Reject the edge immediately if it closed a cycle, keeping the
		// graph acyclic at all times.
		if cyclic, cycle := d.hasCycle(); cyclic {
			delete(fromVertex.DependsOn, dep)
			return &CycleError[T]{Nodes: cycle}
		}
	}
	return nil
}

// Dependencies returns the IDs the given vertex depends on, sorted.
func (d *DirectedAcyclicGraph[T]) Dependencies(id T) ([]T, error) {
	v, ok := d.Vertices[id]
	if !ok {
		return nil, fmt.Errorf("node %v does not exist", id)
	}
	deps := make([]T, 0, len(v.DependsOn))
	for dep := range v.DependsOn {
		deps = append(deps, dep)
	}
	slices.Sort(deps)
	return deps, nil
}

// TopologicalSort returns all vertex IDs in dependency order. It is Kahn's
// algorithm driven by repeated scans over the vertices in first-appearance
// Order: each pass emits every vertex whose dependencies are already
// emitted, so independent vertices keep their document order and a vertex
// waiting on a later dependency is deferred to a later pass.
func (d *DirectedAcyclicGraph[T]) TopologicalSort() ([]T, error) {
	if cyclic, cycle := d.hasCycle(); cyclic {
		return nil, &CycleError[T]{Nodes: cycle}
	}

	visited := make(map[T]struct{}, len(d.Vertices))
	order := make([]T, 0, len(d.Vertices))
	vertices := d.sortedVertices()

	for len(order) < len(d.Vertices) {
		emitted := false
		for _, v := range vertices {
			if _, done := visited[v.ID]; done {
				continue
			}
			if !d.isReady(v, visited) {
				continue
			}
			visited[v.ID] = struct{}{}
			order = append(order, v.ID)
			emitted = true
		}
		if !emitted {
			// Unreachable after the cycle check above.
			return nil, fmt.Errorf("no ready vertex found with %d of %d vertices sorted", len(order), len(d.Vertices))
		}
	}
	return order, nil
}

// TopologicalSortLevels groups vertices into levels where every vertex in a
// level depends only on vertices in earlier levels. Vertices within a level
// are independent of each other and keep their Order. An executor may run
// all actions of one level concurrently.
func (d *DirectedAcyclicGraph[T]) TopologicalSortLevels() ([][]T, error) {
	if cyclic, cycle := d.hasCycle(); cyclic {
		return nil, &CycleError[T]{Nodes: cycle}
	}

	visited := make(map[T]struct{}, len(d.Vertices))
	var levels [][]T

	for len(visited) < len(d.Vertices) {
		var level []T
		for _, v := range d.sortedVertices() {
			if _, done := visited[v.ID]; done {
				continue
			}
			if d.isReady(v, visited) {
				level = append(level, v.ID)
			}
		}
		// Unreachable after the cycle check above.
		if len(level) == 0 {
			return nil, fmt.Errorf("no ready vertices found with %d of %d vertices sorted", len(visited), len(d.Vertices))
		}
		for _, id := range level {
			visited[id] = struct{}{}
		}
		levels = append(levels, level)
	}
	return levels, nil
}

func (d *DirectedAcyclicGraph[T]) isReady(v *Vertex[T], visited map[T]struct{}) bool {
	for dep := range v.DependsOn {
		if _, done := visited[dep]; !done {
			return false
		}
	}
	return true
}

// sortedVertices returns the vertices sorted by Order.
func (d *DirectedAcyclicGraph[T]) sortedVertices() []*Vertex[T] {
	vertices := make([]*Vertex[T], 0, len(d.Vertices))
	for _, v := range d.Vertices {
		vertices = append(vertices, v)
	}
	slices.SortFunc(vertices, func(a, b *Vertex[T]) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return vertices
}

// hasCycle runs a depth-first search over the dependency edges. If a cycle
// exists it returns true together with one minimal cycle, closed on the
// vertex where the search re-entered its own stack.
func (d *DirectedAcyclicGraph[T]) hasCycle() (bool, []T) {
	permanent := make(map[T]struct{}, len(d.Vertices))
	temporary := make(map[T]struct{})
	var stack []T
	var cycle []T

	var visit func(id T) bool
	visit = func(id T) bool {
		if _, done := permanent[id]; done {
			return false
		}
		if _, inStack := temporary[id]; inStack {
			// Close the cycle at the first occurrence of id on the stack.
			start := slices.Index(stack, id)
			cycle = append(slices.Clone(stack[start:]), id)
			return true
		}

		temporary[id] = struct{}{}
		stack = append(stack, id)

		// Iterate dependencies in sorted order so that the cycle reported
		// for a given graph is always the same one.
		deps, _ := d.Dependencies(id)
		for _, dep := range deps {
			if visit(dep) {
				return true
			}
		}

		stack = stack[:len(stack)-1]
		delete(temporary, id)
		permanent[id] = struct{}{}
		return false
	}

	for _, v := range d.sortedVertices() {
		if _, done := permanent[v.ID]; done {
			continue
		}
		if visit(v.ID) {
			return true, cycle
		}
	}
	return false, nil
}
