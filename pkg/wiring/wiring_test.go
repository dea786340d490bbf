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

package wiring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bundleplan/bundleplan/api/v1alpha1"
	"github.com/bundleplan/bundleplan/pkg/graph"
)

type fakeRepo map[string]*v1alpha1.CharmMetadata

func (r fakeRepo) Metadata(charm string) (*v1alpha1.CharmMetadata, error) {
	meta, ok := r[charm]
	if !ok {
		return nil, fmt.Errorf("charm %q not found", charm)
	}
	return meta, nil
}

func testRepo() fakeRepo {
	return fakeRepo{
		"ch:wordpress": {
			Name: "wordpress",
			Provides: map[string]v1alpha1.EndpointDecl{
				"website": {Interface: "http"},
			},
			Requires: map[string]v1alpha1.EndpointDecl{
				"db": {Interface: "mysql", Limit: 1},
			},
			Peers: map[string]v1alpha1.EndpointDecl{
				"loadbalancer": {Interface: "reversenginx"},
			},
			ConfigKeys: []string{"blog-title", "tuning"},
		},
		"ch:mysql": {
			Name: "mysql",
			Provides: map[string]v1alpha1.EndpointDecl{
				"mysql": {Interface: "mysql"},
			},
		},
		"ch:haproxy": {
			Name: "haproxy",
			Requires: map[string]v1alpha1.EndpointDecl{
				"reverseproxy": {Interface: "http"},
			},
		},
		"ch:varnish": {
			Name: "varnish",
			Provides: map[string]v1alpha1.EndpointDecl{
				"website": {Interface: "http"},
			},
		},
		"ch:logrotate": {
			Name: "logrotate",
			Provides: map[string]v1alpha1.EndpointDecl{
				"ticks": {Interface: "cron"},
			},
			Requires: map[string]v1alpha1.EndpointDecl{
				"schedule": {Interface: "cron"},
			},
		},
	}
}

func parse(t *testing.T, doc string) *graph.ParsedBundle {
	t.Helper()
	parsed, err := graph.ParseBundle([]byte(doc))
	require.NoError(t, err)
	return parsed
}

const wiringBundle = `
applications:
  wordpress:
    charm: ch:wordpress
  mysql:
    charm: ch:mysql
  haproxy:
    charm: ch:haproxy
  varnish:
    charm: ch:varnish
  logrotate:
    charm: ch:logrotate
relations:
`

func TestWire(t *testing.T) {
	tests := []struct {
		name      string
		relations string
		want      []Wired
		wantErr   string
	}{
		{
			name:      "provider listed second is still the provider",
			relations: "  - [wordpress:db, mysql:mysql]",
			want: []Wired{{
				Provider:  Endpoint{Application: "mysql", Name: "mysql"},
				Requirer:  Endpoint{Application: "wordpress", Name: "db"},
				Interface: "mysql",
			}},
		},
		{
			name:      "bare application reference infers the endpoint",
			relations: "  - [wordpress, mysql:mysql]",
			want: []Wired{{
				Provider:  Endpoint{Application: "mysql", Name: "mysql"},
				Requirer:  Endpoint{Application: "wordpress", Name: "db"},
				Interface: "mysql",
			}},
		},
		{
			name:      "both sides bare",
			relations: "  - [haproxy, wordpress]",
			want: []Wired{{
				Provider:  Endpoint{Application: "wordpress", Name: "website"},
				Requirer:  Endpoint{Application: "haproxy", Name: "reverseproxy"},
				Interface: "http",
			}},
		},
		{
			name:      "peer relation",
			relations: "  - [wordpress:loadbalancer, wordpress:loadbalancer]",
			want: []Wired{{
				Provider:  Endpoint{Application: "wordpress", Name: "loadbalancer"},
				Requirer:  Endpoint{Application: "wordpress", Name: "loadbalancer"},
				Interface: "reversenginx",
				Peer:      true,
			}},
		},
		{
			name:      "unknown endpoint",
			relations: "  - [wordpress:shared-db, mysql:mysql]",
			wantErr:   `declares no endpoint "shared-db"`,
		},
		{
			name:      "interface mismatch",
			relations: "  - [wordpress:website, mysql:mysql]",
			wantErr:   "interface mismatch",
		},
		{
			name:      "two requirers",
			relations: "  - [wordpress:db, haproxy:reverseproxy]",
			wantErr:   "interface mismatch",
		},
		{
			name:      "two providers of the same interface",
			relations: "  - [wordpress:website, varnish:website]",
			wantErr:   "roles are not complementary",
		},
		{
			name:      "provider and requirer on one application",
			relations: "  - [logrotate:ticks, logrotate:schedule]",
			wantErr:   "only a peer endpoint may relate an application to itself",
		},
		{
			name:      "no compatible endpoint to infer",
			relations: "  - [mysql, haproxy:reverseproxy]",
			wantErr:   "no endpoint compatible",
		},
		{
			name: "multiplicity limit exceeded",
			relations: "  - [wordpress:db, mysql:mysql]\n" +
				"  - [wordpress:db, mysql:mysql]",
			wantErr: "permits at most 1 binding",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed := parse(t, wiringBundle+tc.relations)
			set, err := Wire(parsed, testRepo())
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				assert.True(t, graph.IsCompatibility(err))
				return
			}
			require.NoError(t, err)
			require.Len(t, set.Relations, len(tc.want))
			for i, want := range tc.want {
				got := set.Relations[i]
				got.Source = nil
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestWireMissingCharmMetadata(t *testing.T) {
	parsed := parse(t, wiringBundle+"  - [wordpress:db, mysql:mysql]")
	_, err := Wire(parsed, fakeRepo{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCheckOptions(t *testing.T) {
	parsed := parse(t, `
applications:
  wordpress:
    charm: ch:wordpress
    options:
      blog-title: "my blog"
      tuning: optimized
  mysql:
    charm: ch:mysql
    options:
      anything-goes: true
`)
	// mysql lists no config keys, so its options pass unchecked.
	require.NoError(t, CheckOptions(parsed, testRepo()))

	parsed = parse(t, `
applications:
  wordpress:
    charm: ch:wordpress
    options:
      blog-titel: "my blog"
`)
	err := CheckOptions(parsed, testRepo())
	require.Error(t, err)
	assert.True(t, graph.IsStructural(err))
	assert.Contains(t, err.Error(), `does not recognize option "blog-titel"`)
}

func TestWireCollectsAllFailures(t *testing.T) {
	parsed := parse(t, wiringBundle+
		"  - [wordpress:shared-db, mysql:mysql]\n"+
		"  - [wordpress:website, mysql:mysql]")
	_, err := Wire(parsed, testRepo())
	require.Error(t, err)

	list := graph.AsErrorList(err)
	assert.Len(t, list.Errors, 2)
}
