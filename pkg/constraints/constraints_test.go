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

package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr string
		assert  func(*testing.T, Constraints)
	}{
		{
			name: "empty expression",
			expr: "",
			assert: func(t *testing.T, c Constraints) {
				assert.True(t, c.Empty())
			},
		},
		{
			name: "all dimensions",
			expr: "mem=3072M cores=4 root-disk=8G",
			assert: func(t *testing.T, c Constraints) {
				mem, ok := c.Get(DimensionMem)
				require.True(t, ok)
				assert.Equal(t, uint64(3072), mem)

				cores, ok := c.Get(DimensionCores)
				require.True(t, ok)
				assert.Equal(t, uint64(4), cores)

				disk, ok := c.Get(DimensionRootDisk)
				require.True(t, ok)
				assert.Equal(t, uint64(8*1024), disk)
			},
		},
		{
			name: "bare size defaults to mebibytes",
			expr: "mem=512",
			assert: func(t *testing.T, c Constraints) {
				mem, _ := c.Get(DimensionMem)
				assert.Equal(t, uint64(512), mem)
			},
		},
		{
			name: "terabyte suffix",
			expr: "root-disk=1T",
			assert: func(t *testing.T, c Constraints) {
				disk, _ := c.Get(DimensionRootDisk)
				assert.Equal(t, uint64(1024*1024), disk)
			},
		},
		{
			name:    "unknown dimension",
			expr:    "gpu=2",
			wantErr: `unknown constraint dimension "gpu"`,
		},
		{
			name:    "missing value",
			expr:    "mem=",
			wantErr: "expected key=value",
		},
		{
			name:    "no equals sign",
			expr:    "mem",
			wantErr: "expected key=value",
		},
		{
			name:    "malformed size suffix",
			expr:    "mem=4K",
			wantErr: "malformed size",
		},
		{
			name:    "fractional cores",
			expr:    "cores=1.5",
			wantErr: "malformed core count",
		},
		{
			name:    "duplicate dimension",
			expr:    "mem=1G mem=2G",
			wantErr: `declared twice`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Parse(tc.expr)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			tc.assert(t, c)
		})
	}
}

func TestSatisfies(t *testing.T) {
	machine := MustParse("mem=3072M cores=4")

	tests := []struct {
		name string
		req  string
		want bool
	}{
		{name: "empty request", req: "", want: true},
		{name: "exact match", req: "mem=3072M", want: true},
		{name: "gigabyte request within declared mebibytes", req: "mem=2G", want: true},
		{name: "request exceeds declared", req: "mem=4G", want: false},
		{name: "undeclared dimension", req: "root-disk=1G", want: false},
		{name: "multiple dimensions one unmet", req: "mem=1G cores=8", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, machine.Satisfies(MustParse(tc.req)))
		})
	}
}

// Satisfaction must be monotonic: over-provisioning a machine never breaks a
// previously satisfied request.
func TestSatisfiesMonotonic(t *testing.T) {
	req := MustParse("mem=2G cores=2")

	smaller := MustParse("mem=2048M cores=2")
	require.True(t, smaller.Satisfies(req))

	larger := MustParse("mem=8G cores=16 root-disk=1T")
	assert.True(t, larger.Satisfies(req))
}

func TestUnmet(t *testing.T) {
	machine := MustParse("mem=3072M")

	unmet := machine.Unmet(MustParse("mem=4G cores=2"))
	require.Len(t, unmet, 2)
	assert.Equal(t, "mem>=4096M", unmet[0].String())
	assert.Equal(t, "cores>=2", unmet[1].String())
}

func TestStringRoundTrip(t *testing.T) {
	tests := []string{
		"mem=3072M",
		"mem=2048M cores=4",
		"mem=1024M cores=2 root-disk=8192M",
	}
	for _, expr := range tests {
		c := MustParse(expr)
		assert.Equal(t, expr, c.String())

		again, err := Parse(c.String())
		require.NoError(t, err)
		assert.Equal(t, c.String(), again.String())
	}

	// Declaration order does not leak into the canonical form.
	assert.Equal(t, "mem=1024M cores=2", MustParse("cores=2 mem=1G").String())
}
