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

package v1alpha1

// Role identifies which side of a relation an endpoint declaration takes.
type Role string

const (
	// RoleProvider marks an endpoint that offers an interface.
	RoleProvider Role = "provider"
	// RoleRequirer marks an endpoint that consumes an interface.
	RoleRequirer Role = "requirer"
	// RolePeer marks an endpoint shared between units of one application.
	RolePeer Role = "peer"
)

// EndpointDecl is one endpoint in a charm's catalog.
type EndpointDecl struct {
	// Interface names the protocol spoken over this endpoint. Two
	// endpoints can only be related when their interfaces match.
	Interface string `json:"interface"`

	// Limit caps how many relations may bind this endpoint. Zero means
	// unlimited.
	Limit int `json:"limit,omitempty"`
}

// CharmMetadata is the externally provided description of a charm: its
// endpoint catalog, default unit count, and recognized configuration keys.
// The resolver obtains it through a CharmRepository and treats a missing
// entry as a hard validation error.
type CharmMetadata struct {
	// Name is the charm name, used for diagnostics only.
	Name string `json:"name"`

	// Provides, Requires, and Peers are the endpoint catalogs by role,
	// keyed by endpoint name.
	Provides map[string]EndpointDecl `json:"provides,omitempty"`
	Requires map[string]EndpointDecl `json:"requires,omitempty"`
	Peers    map[string]EndpointDecl `json:"peers,omitempty"`

	// DefaultNumUnits is the unit count applied when the bundle does not
	// set one. Zero falls back to 1.
	DefaultNumUnits int `json:"defaultNumUnits,omitempty"`

	// ConfigKeys lists the configuration keys the charm recognizes. Empty
	// means the charm accepts arbitrary keys and option presence is not
	// checked.
	ConfigKeys []string `json:"configKeys,omitempty"`
}

// Endpoint looks up an endpoint declaration by name across all three role
// catalogs. It returns the declaration and its role, or ok=false.
func (m *CharmMetadata) Endpoint(name string) (EndpointDecl, Role, bool) {
	if decl, ok := m.Provides[name]; ok {
		return decl, RoleProvider, true
	}
	if decl, ok := m.Requires[name]; ok {
		return decl, RoleRequirer, true
	}
	if decl, ok := m.Peers[name]; ok {
		return decl, RolePeer, true
	}
	return EndpointDecl{}, "", false
}
