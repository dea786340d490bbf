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

// Package wiring resolves relation endpoint references against charm
// endpoint catalogs. The document represents relations as unordered pairs;
// this stage resolves each pair eagerly into a directed provider->requirer
// binding (or a peer binding), so no direction ambiguity survives it.
package wiring

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/bundleplan/bundleplan/api/v1alpha1"
	"github.com/bundleplan/bundleplan/pkg/graph"
)

// CharmRepository is the external charm metadata provider: declared
// endpoints, default unit count, and recognized configuration keys, keyed
// by the charm reference used in the bundle. A missing charm is a hard
// error.
type CharmRepository interface {
	Metadata(charm string) (*v1alpha1.CharmMetadata, error)
}

// Endpoint is one fully resolved relation endpoint.
type Endpoint struct {
	// Application is the application name.
	Application string `json:"application"`
	// Name is the endpoint name from the charm's catalog.
	Name string `json:"name"`
}

// String renders the endpoint in its source form.
func (e Endpoint) String() string { return e.Application + ":" + e.Name }

// Wired is one resolved relation.
type Wired struct {
	// Provider and Requirer are the directed endpoints. For peer
	// relations both name the same application endpoint.
	Provider Endpoint `json:"provider"`
	Requirer Endpoint `json:"requirer"`
	// Interface is the shared interface name both endpoints declare.
	Interface string `json:"interface"`
	// Peer marks peer relations.
	Peer bool `json:"peer,omitempty"`

	// Source is the relation as declared, for diagnostics and plan
	// identity.
	Source v1alpha1.RelationSpec `json:"-"`
}

// WiringSet is the complete wiring result, in relation declaration order.
type WiringSet struct {
	Relations []Wired
}

// Wire resolves every relation in the bundle. Compatibility failures are
// collected across relations; any failure means no wiring set is produced.
func Wire(parsed *graph.ParsedBundle, repo CharmRepository) (*WiringSet, error) {
	w := &wirer{
		parsed:   parsed,
		repo:     repo,
		metadata: make(map[string]*v1alpha1.CharmMetadata),
		bindings: make(map[Endpoint]int),
	}

	set := &WiringSet{}
	list := &graph.ErrorList{}
	for _, rel := range parsed.Bundle.Relations {
		wired, err := w.wireRelation(rel)
		if err != nil {
			list.Append(err)
			continue
		}
		set.Relations = append(set.Relations, wired)
	}
	if err := list.OrNil(); err != nil {
		return nil, err
	}
	return set, nil
}

// CheckOptions verifies every configured option key against the charm's
// recognized configuration keys. A charm listing no keys accepts arbitrary
// options. Failures are collected across applications.
func CheckOptions(parsed *graph.ParsedBundle, repo CharmRepository) error {
	w := &wirer{
		parsed:   parsed,
		repo:     repo,
		metadata: make(map[string]*v1alpha1.CharmMetadata),
	}

	list := &graph.ErrorList{}
	for _, name := range parsed.ApplicationOrder {
		app := parsed.Bundle.Applications[name]
		if app == nil || len(app.Options) == 0 {
			continue
		}
		meta, err := w.charmMetadata(name)
		if err != nil {
			list.Append(&graph.StructuralError{
				Subject: fmt.Sprintf("application %q", name),
				Err:     err,
			})
			continue
		}
		if len(meta.ConfigKeys) == 0 {
			continue
		}
		known := sets.New(meta.ConfigKeys...)
		for _, key := range sets.List(sets.KeySet(app.Options)) {
			if !known.Has(key) {
				list.Append(&graph.StructuralError{
					Subject: fmt.Sprintf("application %q", name),
					Err:     fmt.Errorf("charm %q does not recognize option %q", meta.Name, key),
				})
			}
		}
	}
	return list.OrNil()
}

type wirer struct {
	parsed *graph.ParsedBundle
	repo   CharmRepository

	// metadata caches repository lookups per charm reference.
	metadata map[string]*v1alpha1.CharmMetadata
	// bindings counts how many relations bind each endpoint, for
	// multiplicity enforcement.
	bindings map[Endpoint]int
}

// candidate is one endpoint reference resolved against its charm catalog.
type candidate struct {
	endpoint  Endpoint
	decl      v1alpha1.EndpointDecl
	role      v1alpha1.Role
	charmName string
}

func (w *wirer) wireRelation(rel v1alpha1.RelationSpec) (Wired, error) {
	relName := graph.RelationNodeID(rel)

	first, err := w.resolveEndpoint(relName, rel[0], rel[1])
	if err != nil {
		return Wired{}, err
	}
	second, err := w.resolveEndpoint(relName, rel[1], rel[0])
	if err != nil {
		return Wired{}, err
	}

	wired, err := direct(relName, first, second)
	if err != nil {
		return Wired{}, err
	}
	wired.Source = rel

	if err := w.bind(relName, first); err != nil {
		return Wired{}, err
	}
	if wired.Peer {
		return wired, nil
	}
	if err := w.bind(relName, second); err != nil {
		return Wired{}, err
	}
	return wired, nil
}

// resolveEndpoint resolves one endpoint reference against the owning
// charm's catalog. A bare "application" reference (no endpoint name)
// resolves only when exactly one of the charm's endpoints is compatible
// with the other side of the relation.
func (w *wirer) resolveEndpoint(relName, ref, otherRef string) (candidate, error) {
	app, name, err := graph.SplitEndpoint(ref)
	if err != nil {
		// Validation rejects malformed references before this stage.
		return candidate{}, &graph.CompatibilityError{Relation: relName, Err: err}
	}

	meta, err := w.charmMetadata(app)
	if err != nil {
		return candidate{}, &graph.CompatibilityError{Relation: relName, Err: err}
	}

	if name != "" {
		decl, role, ok := meta.Endpoint(name)
		if !ok {
			return candidate{}, &graph.CompatibilityError{
				Relation: relName,
				Err:      fmt.Errorf("charm %q of application %q declares no endpoint %q", meta.Name, app, name),
			}
		}
		return candidate{
			endpoint:  Endpoint{Application: app, Name: name},
			decl:      decl,
			role:      role,
			charmName: meta.Name,
		}, nil
	}

	return w.inferEndpoint(relName, app, meta, otherRef)
}

// inferEndpoint picks the unique endpoint of app's charm compatible with
// the other side of the relation. Zero or several candidates is an error
// naming them.
func (w *wirer) inferEndpoint(relName, app string, meta *v1alpha1.CharmMetadata, otherRef string) (candidate, error) {
	otherApp, otherName, err := graph.SplitEndpoint(otherRef)
	if err != nil {
		return candidate{}, &graph.CompatibilityError{Relation: relName, Err: err}
	}
	otherMeta, err := w.charmMetadata(otherApp)
	if err != nil {
		return candidate{}, &graph.CompatibilityError{Relation: relName, Err: err}
	}

	var matches []candidate
	forEachEndpoint(meta, func(name string, decl v1alpha1.EndpointDecl, role v1alpha1.Role) {
		if otherName != "" {
			otherDecl, otherRole, ok := otherMeta.Endpoint(otherName)
			if !ok || !compatible(decl, role, otherDecl, otherRole) {
				return
			}
		} else if !anyCompatible(decl, role, otherMeta) {
			return
		}
		matches = append(matches, candidate{
			endpoint:  Endpoint{Application: app, Name: name},
			decl:      decl,
			role:      role,
			charmName: meta.Name,
		})
	})

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return candidate{}, &graph.CompatibilityError{
			Relation: relName,
			Err:      fmt.Errorf("charm %q of application %q has no endpoint compatible with %q", meta.Name, app, otherRef),
		}
	default:
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, m.endpoint.Name)
		}
		return candidate{}, &graph.CompatibilityError{
			Relation: relName,
			Err:      fmt.Errorf("ambiguous endpoint for application %q: %v all match %q", app, names, otherRef),
		}
	}
}

// direct orients a resolved endpoint pair. A relation is valid iff the two
// endpoints declare the same interface and complementary provider/requirer
// roles on distinct applications, or the identical peer interface on the
// same application.
func direct(relName string, a, b candidate) (Wired, error) {
	if a.decl.Interface != b.decl.Interface {
		return Wired{}, &graph.CompatibilityError{
			Relation: relName,
			Err: fmt.Errorf("interface mismatch: %s declares %q, %s declares %q",
				a.endpoint, a.decl.Interface, b.endpoint, b.decl.Interface),
		}
	}

	switch {
	case a.role == v1alpha1.RolePeer && b.role == v1alpha1.RolePeer:
		if a.endpoint != b.endpoint {
			return Wired{}, &graph.CompatibilityError{
				Relation: relName,
				Err:      fmt.Errorf("peer endpoints %s and %s are distinct", a.endpoint, b.endpoint),
			}
		}
		return Wired{Provider: a.endpoint, Requirer: a.endpoint, Interface: a.decl.Interface, Peer: true}, nil
	case a.role == v1alpha1.RoleProvider && b.role == v1alpha1.RoleRequirer,
		a.role == v1alpha1.RoleRequirer && b.role == v1alpha1.RoleProvider:
		if a.endpoint.Application == b.endpoint.Application {
			return Wired{}, &graph.CompatibilityError{
				Relation: relName,
				Err: fmt.Errorf("%s and %s belong to the same application; only a peer endpoint may relate an application to itself",
					a.endpoint, b.endpoint),
			}
		}
		if a.role == v1alpha1.RoleProvider {
			return Wired{Provider: a.endpoint, Requirer: b.endpoint, Interface: a.decl.Interface}, nil
		}
		return Wired{Provider: b.endpoint, Requirer: a.endpoint, Interface: a.decl.Interface}, nil
	default:
		return Wired{}, &graph.CompatibilityError{
			Relation: relName,
			Err: fmt.Errorf("roles are not complementary: %s is a %s, %s is a %s",
				a.endpoint, a.role, b.endpoint, b.role),
		}
	}
}

// bind records one more binding on the endpoint and enforces its declared
// multiplicity limit. Exceeding the limit is an error, never an overwrite.
func (w *wirer) bind(relName string, c candidate) error {
	w.bindings[c.endpoint]++
	if c.decl.Limit > 0 && w.bindings[c.endpoint] > c.decl.Limit {
		return &graph.CompatibilityError{
			Relation: relName,
			Err: fmt.Errorf("endpoint %s permits at most %d binding(s), %d requested",
				c.endpoint, c.decl.Limit, w.bindings[c.endpoint]),
		}
	}
	return nil
}

func (w *wirer) charmMetadata(app string) (*v1alpha1.CharmMetadata, error) {
	spec := w.parsed.Bundle.Applications[app]
	if spec == nil {
		return nil, fmt.Errorf("references undeclared application %q", app)
	}
	if meta, ok := w.metadata[spec.Charm]; ok {
		return meta, nil
	}
	meta, err := w.repo.Metadata(spec.Charm)
	if err != nil {
		return nil, fmt.Errorf("charm %q of application %q: %w", spec.Charm, app, err)
	}
	w.metadata[spec.Charm] = meta
	return meta, nil
}

// compatible reports whether two resolved endpoint declarations can be
// related.
func compatible(a v1alpha1.EndpointDecl, aRole v1alpha1.Role, b v1alpha1.EndpointDecl, bRole v1alpha1.Role) bool {
	if a.Interface != b.Interface {
		return false
	}
	switch {
	case aRole == v1alpha1.RolePeer || bRole == v1alpha1.RolePeer:
		return aRole == bRole
	default:
		return aRole != bRole
	}
}

// anyCompatible reports whether any endpoint of meta is compatible with
// the declaration.
func anyCompatible(decl v1alpha1.EndpointDecl, role v1alpha1.Role, meta *v1alpha1.CharmMetadata) bool {
	found := false
	forEachEndpoint(meta, func(_ string, other v1alpha1.EndpointDecl, otherRole v1alpha1.Role) {
		if compatible(decl, role, other, otherRole) {
			found = true
		}
	})
	return found
}

// forEachEndpoint visits the charm's endpoints in a fixed role order
// (provides, requires, peers) with names sorted within each role, keeping
// inference deterministic.
func forEachEndpoint(meta *v1alpha1.CharmMetadata, fn func(name string, decl v1alpha1.EndpointDecl, role v1alpha1.Role)) {
	visit := func(catalog map[string]v1alpha1.EndpointDecl, role v1alpha1.Role) {
		for _, name := range sets.List(sets.KeySet(catalog)) {
			fn(name, catalog[name], role)
		}
	}
	visit(meta.Provides, v1alpha1.RoleProvider)
	visit(meta.Requires, v1alpha1.RoleRequirer)
	visit(meta.Peers, v1alpha1.RolePeer)
}
