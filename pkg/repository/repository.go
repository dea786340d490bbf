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

// Package repository provides charm metadata sources. The resolver only
// needs the wiring.CharmRepository interface; this package supplies a
// catalog-file-backed implementation for offline use and an in-memory one
// for composition and tests.
package repository

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/bundleplan/bundleplan/api/v1alpha1"
)

// Catalog is the serialized form of a charm metadata catalog: a single
// YAML document mapping charm references to their metadata.
type Catalog struct {
	Charms map[string]*v1alpha1.CharmMetadata `json:"charms"`
}

// Static serves charm metadata from a catalog loaded once. Lookups never
// touch the network, which keeps resolution usable offline and in CI.
type Static struct {
	charms map[string]*v1alpha1.CharmMetadata
}

// LoadCatalog parses a catalog document into a Static repository.
func LoadCatalog(data []byte) (*Static, error) {
	var catalog Catalog
	if err := yaml.UnmarshalStrict(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse charm catalog: %w", err)
	}
	if len(catalog.Charms) == 0 {
		return nil, fmt.Errorf("charm catalog declares no charms")
	}
	for ref, meta := range catalog.Charms {
		if meta == nil {
			return nil, fmt.Errorf("charm %q has no metadata", ref)
		}
		if meta.Name == "" {
			return nil, fmt.Errorf("charm %q has no name", ref)
		}
	}
	return &Static{charms: catalog.Charms}, nil
}

// LoadCatalogFile reads and parses a catalog file.
func LoadCatalogFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read charm catalog %q: %w", path, err)
	}
	return LoadCatalog(data)
}

// Metadata implements wiring.CharmRepository.
func (s *Static) Metadata(charm string) (*v1alpha1.CharmMetadata, error) {
	meta, ok := s.charms[charm]
	if !ok {
		return nil, fmt.Errorf("charm %q not in catalog", charm)
	}
	return meta, nil
}

// InMemory is a mutable charm repository for tests and embedding.
type InMemory struct {
	charms map[string]*v1alpha1.CharmMetadata
}

// NewInMemory returns an empty in-memory repository.
func NewInMemory() *InMemory {
	return &InMemory{charms: make(map[string]*v1alpha1.CharmMetadata)}
}

// Add registers metadata under the given charm reference, replacing any
// previous entry.
func (m *InMemory) Add(charm string, meta *v1alpha1.CharmMetadata) *InMemory {
	m.charms[charm] = meta
	return m
}

// Metadata implements wiring.CharmRepository.
func (m *InMemory) Metadata(charm string) (*v1alpha1.CharmMetadata, error) {
	meta, ok := m.charms[charm]
	if !ok {
		return nil, fmt.Errorf("charm %q not registered", charm)
	}
	return meta, nil
}
