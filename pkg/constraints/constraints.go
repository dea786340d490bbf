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

// Package constraints implements the resource constraint grammar used by
// bundle documents: space-separated key=value pairs such as
//
//	mem=3072M cores=4 root-disk=8G
//
// Size dimensions use binary prefixes with a mebibyte base: a bare number is
// mebibytes, M = 2^20 bytes, G = 2^30 bytes, T = 2^40 bytes. This unit system
// is fixed; all quantities are normalized to mebibytes at parse time so that
// satisfaction checks never compare across units.
package constraints

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Dimension identifies one resource dimension of a constraint expression.
type Dimension string

const (
	// DimensionMem is machine memory, in mebibytes.
	DimensionMem Dimension = "mem"
	// DimensionCores is the CPU core count.
	DimensionCores Dimension = "cores"
	// DimensionRootDisk is root disk capacity, in mebibytes.
	DimensionRootDisk Dimension = "root-disk"
)

// dimensionOrder fixes the rendering order of String so that logically
// identical constraints always format identically.
var dimensionOrder = []Dimension{DimensionMem, DimensionCores, DimensionRootDisk}

// Value is one parsed (dimension, quantity) pair. Size quantities are in
// mebibytes, core quantities are counts. The comparator is implicit: a
// declared Value satisfies a requested Value of the same dimension iff the
// declared quantity is greater than or equal to the requested one.
type Value struct {
	Dimension Dimension
	Quantity  uint64
}

// String renders the value in the request form used by placement
// diagnostics, e.g. "mem>=4096M".
func (v Value) String() string {
	if v.Dimension == DimensionCores {
		return fmt.Sprintf("%s>=%d", v.Dimension, v.Quantity)
	}
	return fmt.Sprintf("%s>=%dM", v.Dimension, v.Quantity)
}

// Constraints is a parsed, normalized constraint expression. The zero value
// is the empty expression, which declares nothing and requests nothing.
type Constraints struct {
	values map[Dimension]uint64
}

var sizePattern = regexp.MustCompile(`^([0-9]+)([MGT]?)$`)

// ParseSize parses a size declaration such as "3072M", "2G", or "512" into
// mebibytes. Storage directives in bundles use the same grammar.
func ParseSize(s string) (uint64, error) {
	m := sizePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("malformed size %q (expected digits with optional M, G, or T suffix)", s)
	}
	n, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed size %q: %w", s, err)
	}
	switch m[2] {
	case "", "M":
		return n, nil
	case "G":
		return n * 1024, nil
	case "T":
		return n * 1024 * 1024, nil
	}
	// Unreachable: the pattern only admits the suffixes above.
	return 0, fmt.Errorf("malformed size %q", s)
}

// Parse parses a constraint expression. Unparseable expressions are an
// error, never a warning: an unknown dimension, a malformed quantity, or a
// repeated dimension all fail the parse.
func Parse(expr string) (Constraints, error) {
	c := Constraints{}
	for _, token := range strings.Fields(expr) {
		key, value, found := strings.Cut(token, "=")
		if !found || key == "" || value == "" {
			return Constraints{}, fmt.Errorf("malformed constraint %q (expected key=value)", token)
		}

		dim := Dimension(key)
		var quantity uint64
		var err error
		switch dim {
		case DimensionMem, DimensionRootDisk:
			quantity, err = ParseSize(value)
		case DimensionCores:
			quantity, err = strconv.ParseUint(value, 10, 64)
			if err != nil {
				err = fmt.Errorf("malformed core count %q", value)
			}
		default:
			return Constraints{}, fmt.Errorf("unknown constraint dimension %q in %q", key, token)
		}
		if err != nil {
			return Constraints{}, fmt.Errorf("constraint %q: %w", token, err)
		}

		if c.values == nil {
			c.values = make(map[Dimension]uint64)
		}
		if _, dup := c.values[dim]; dup {
			return Constraints{}, fmt.Errorf("constraint dimension %q declared twice", key)
		}
		c.values[dim] = quantity
	}
	return c, nil
}

// MustParse parses expr and panics on error. Intended for tests and fixed
// expressions.
func MustParse(expr string) Constraints {
	c, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return c
}

// Empty reports whether the expression declares no dimensions.
func (c Constraints) Empty() bool { return len(c.values) == 0 }

// Get returns the quantity declared for dim.
func (c Constraints) Get(dim Dimension) (uint64, bool) {
	q, ok := c.values[dim]
	return q, ok
}

// Satisfies reports whether a machine declaring c can host an application
// requesting req: every requested dimension must be declared on the machine
// with a quantity greater than or equal to the requested one. The check is
// monotonic: raising any declared quantity never breaks satisfaction.
func (c Constraints) Satisfies(req Constraints) bool {
	return len(c.Unmet(req)) == 0
}

// Unmet returns the requested values that c does not satisfy, in the fixed
// dimension order. An empty result means c satisfies req.
func (c Constraints) Unmet(req Constraints) []Value {
	var unmet []Value
	for _, dim := range dimensionOrder {
		want, ok := req.values[dim]
		if !ok {
			continue
		}
		have, ok := c.values[dim]
		if !ok || have < want {
			unmet = append(unmet, Value{Dimension: dim, Quantity: want})
		}
	}
	return unmet
}

// String renders the expression in canonical form: fixed dimension order,
// sizes in mebibytes. Parse(c.String()) round-trips.
func (c Constraints) String() string {
	if c.Empty() {
		return ""
	}
	parts := make([]string, 0, len(c.values))
	for _, dim := range dimensionOrder {
		q, ok := c.values[dim]
		if !ok {
			continue
		}
		if dim == DimensionCores {
			parts = append(parts, fmt.Sprintf("%s=%d", dim, q))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%dM", dim, q))
		}
	}
	return strings.Join(parts, " ")
}
