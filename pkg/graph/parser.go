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
	"strings"

	yamlv3 "gopkg.in/yaml.v3"
	"sigs.k8s.io/yaml"

	"github.com/bundleplan/bundleplan/api/v1alpha1"
)

// ParsedBundle is the normalized document model after the parse stage. The
// Bundle itself is owned by the pass and never mutated by later stages;
// every stage derives new structures from it.
//
// Go maps do not preserve key order, but the first-appearance order of
// machines and applications is the documented tie-break for plan emission,
// so the parser recovers it from the raw document and carries it alongside
// the decoded model.
type ParsedBundle struct {
	Bundle *v1alpha1.Bundle

	// MachineOrder and ApplicationOrder list the declaration keys in
	// first-appearance order. They may contain duplicates when the source
	// document declares a key twice; the validator rejects that.
	MachineOrder     []string
	ApplicationOrder []string
}

// ParseBundle decodes a bundle document. YAML anchors and aliases are
// resolved by the decoder, so the model never contains them. Duplicate
// declaration keys survive into the order slices (last value wins in the
// decoded maps) so the validator can report them instead of the decoder
// failing fast.
func ParseBundle(data []byte) (*ParsedBundle, error) {
	bundle := &v1alpha1.Bundle{}
	if err := yaml.Unmarshal(data, bundle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bundle: %w", err)
	}

	// A declaration with a null body ("0":) decodes to a nil pointer. For
	// machines that is the wildcard form; normalize both sections to empty
	// specs so later stages never dereference nil.
	for id, machine := range bundle.Machines {
		if machine == nil {
			bundle.Machines[id] = &v1alpha1.MachineSpec{}
		}
	}
	for name, app := range bundle.Applications {
		if app == nil {
			bundle.Applications[name] = &v1alpha1.ApplicationSpec{}
		}
	}

	machineOrder, err := topLevelKeyOrder(data, "machines")
	if err != nil {
		return nil, fmt.Errorf("failed to recover machine declaration order: %w", err)
	}
	applicationOrder, err := topLevelKeyOrder(data, "applications")
	if err != nil {
		return nil, fmt.Errorf("failed to recover application declaration order: %w", err)
	}

	return &ParsedBundle{
		Bundle:           bundle,
		MachineOrder:     machineOrder,
		ApplicationOrder: applicationOrder,
	}, nil
}

// UnitCount returns the effective unit count for an application: the
// declared count, or the charm default when known, or 1.
func (p *ParsedBundle) UnitCount(app *v1alpha1.ApplicationSpec, meta *v1alpha1.CharmMetadata) int {
	if app.NumUnits != 0 {
		return app.NumUnits
	}
	if meta != nil && meta.DefaultNumUnits > 0 {
		return meta.DefaultNumUnits
	}
	return 1
}

// SplitEndpoint splits an endpoint reference of the form
// "application:endpoint" or "application". Both components must be
// non-empty when the colon is present.
func SplitEndpoint(ref string) (application, endpoint string, err error) {
	application, endpoint, found := strings.Cut(ref, ":")
	if !found {
		if application == "" {
			return "", "", fmt.Errorf("empty endpoint reference")
		}
		return application, "", nil
	}
	if application == "" || endpoint == "" || strings.Contains(endpoint, ":") {
		return "", "", fmt.Errorf("malformed endpoint reference %q (expected application:endpoint)", ref)
	}
	return application, endpoint, nil
}

// topLevelKeyOrder scans the raw document for a top-level mapping section
// and returns its keys in source order, duplicates included.
func topLevelKeyOrder(data []byte, section string) ([]string, error) {
	var root yamlv3.Node
	if err := yamlv3.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	if doc.Kind != yamlv3.MappingNode {
		return nil, nil
	}

	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], doc.Content[i+1]
		if key.Value != section {
			continue
		}
		if value.Kind == yamlv3.AliasNode {
			value = value.Alias
		}
		if value.Kind != yamlv3.MappingNode {
			return nil, nil
		}
		keys := make([]string, 0, len(value.Content)/2)
		for j := 0; j+1 < len(value.Content); j += 2 {
			keys = append(keys, value.Content[j].Value)
		}
		return keys, nil
	}
	return nil, nil
}
