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

// Bundle is the root aggregate of a topology document. It owns all machine,
// application, and relation declarations for one resolution pass.
//
// Bundles are plain YAML documents. Anchors and aliases used to share scalar
// values (e.g. a common charm origin) are resolved by the YAML decoder before
// this model is populated; the resolver never sees them.
type Bundle struct {
	// Series is the default machine series for the deployment. Individual
	// machines may override it.
	Series string `json:"series,omitempty"`

	// Description is free-form operator documentation carried through
	// unmodified.
	Description string `json:"description,omitempty"`

	// Machines declares the machines available for placement, keyed by
	// machine ID. A machine declared with no constraints accepts any
	// placement (wildcard).
	Machines map[string]*MachineSpec `json:"machines,omitempty"`

	// Applications declares the applications to deploy, keyed by
	// application name.
	Applications map[string]*ApplicationSpec `json:"applications,omitempty"`

	// Relations wires application endpoints together. Each entry is a pair
	// of endpoint references of the form "application:endpoint". The
	// endpoint name may be omitted when the charm declares exactly one
	// compatible endpoint.
	Relations []RelationSpec `json:"relations,omitempty"`
}

// MachineSpec describes one machine declared in the bundle.
type MachineSpec struct {
	// Constraints is a resource constraint expression declaring what this
	// machine offers, e.g. "mem=3072M cores=4 root-disk=8G". Empty means
	// the machine satisfies any application constraint.
	Constraints string `json:"constraints,omitempty"`

	// Series overrides the bundle-level series for this machine.
	Series string `json:"series,omitempty"`

	// Annotations are opaque key/value pairs passed through to the plan.
	Annotations map[string]string `json:"annotations,omitempty"`
}

// ApplicationSpec describes one application deployment.
type ApplicationSpec struct {
	// Charm references the deployable unit definition. The resolver treats
	// it as opaque beyond its name and the endpoint catalog obtained from
	// the charm metadata provider.
	Charm string `json:"charm"`

	// NumUnits is the desired unit count. Zero means unset; the parser
	// defaults it from the charm metadata, or to 1.
	NumUnits int `json:"num_units,omitempty"`

	// To lists machine placement references, bound to units 1:1 in
	// declaration order. An empty string entry means "any machine that
	// satisfies the application's constraints". If To is shorter than
	// NumUnits the remaining units are placement-free.
	To []string `json:"to,omitempty"`

	// Options is the charm configuration. Keys are defined by the charm;
	// the resolver validates presence against the charm's recognized
	// config keys but never interprets values.
	Options map[string]interface{} `json:"options,omitempty"`

	// Storage maps a storage label to a size declaration, e.g.
	// "database" -> "10G".
	Storage map[string]string `json:"storage,omitempty"`

	// Constraints is the resource constraint expression that any machine
	// hosting this application's units must satisfy.
	Constraints string `json:"constraints,omitempty"`

	// Exclusive marks the application as refusing co-location: no other
	// application may be placed on a machine hosting one of its units.
	Exclusive bool `json:"exclusive,omitempty"`

	// Expose marks the application for external exposure. Carried through
	// to the plan unmodified.
	Expose bool `json:"expose,omitempty"`

	// Annotations are opaque key/value pairs passed through to the plan.
	Annotations map[string]string `json:"annotations,omitempty"`
}

// RelationSpec is one declared relation: an unordered pair of endpoint
// references. It is decoded as a list so that arity errors surface during
// validation rather than as silent truncation.
type RelationSpec []string
