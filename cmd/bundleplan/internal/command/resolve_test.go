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

package command_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bundleplan/bundleplan/cmd/bundleplan/internal/command"
	"github.com/bundleplan/bundleplan/cmd/bundleplan/internal/view"
)

const testBundleDoc = `
series: jammy
machines:
  "0":
    constraints: mem=4G
applications:
  wordpress:
    charm: ch:wordpress
    to: ["0"]
  mysql:
    charm: ch:mysql
relations:
  - [wordpress:db, mysql:mysql]
`

const testCatalogDoc = `
charms:
  ch:wordpress:
    name: wordpress
    requires:
      db:
        interface: mysql
  ch:mysql:
    name: mysql
    provides:
      mysql:
        interface: mysql
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunResolve_EmitsPlan(t *testing.T) {
	buf := &bytes.Buffer{}
	cli := command.NewCLI(view.ViewHuman, buf, view.LogLevelSilent)

	err := command.RunResolve(context.Background(), cli, command.ResolveOptions{
		Path:        writeFixture(t, "bundle.yaml", testBundleDoc),
		CatalogPath: writeFixture(t, "charms.yaml", testCatalogDoc),
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "machineID: \"0\"")
	assert.Contains(t, out, "application: wordpress")
	assert.Contains(t, out, "provider: mysql:mysql")
	assert.Contains(t, out, "requirer: wordpress:db")
}

func TestRunResolve_JSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	cli := command.NewCLI(view.ViewJSON, buf, view.LogLevelSilent)

	err := command.RunResolve(context.Background(), cli, command.ResolveOptions{
		Path:        writeFixture(t, "bundle.yaml", testBundleDoc),
		CatalogPath: writeFixture(t, "charms.yaml", testCatalogDoc),
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"type":"resolve"`)
	assert.Contains(t, out, `"status":"success"`)
	assert.Contains(t, out, `"outcome":"Resolved"`)
}

func TestRunResolve_ReportsFailureOutcome(t *testing.T) {
	buf := &bytes.Buffer{}
	cli := command.NewCLI(view.ViewHuman, buf, view.LogLevelSilent)

	bundle := `
machines:
  "0":
    constraints: mem=1024M
applications:
  api:
    charm: ch:mysql
    constraints: mem=4G
`
	err := command.RunResolve(context.Background(), cli, command.ResolveOptions{
		Path:        writeFixture(t, "bundle.yaml", bundle),
		CatalogPath: writeFixture(t, "charms.yaml", testCatalogDoc),
	})
	require.Error(t, err)
	assert.Contains(t, buf.String(), "PlacementFailed")
	assert.Contains(t, buf.String(), "mem>=4096M")
}

func TestRunResolve_MissingBundleFile(t *testing.T) {
	buf := &bytes.Buffer{}
	cli := command.NewCLI(view.ViewHuman, buf, view.LogLevelSilent)

	err := command.RunResolve(context.Background(), cli, command.ResolveOptions{
		Path:        filepath.Join(t.TempDir(), "nope.yaml"),
		CatalogPath: writeFixture(t, "charms.yaml", testCatalogDoc),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to access file")
}

func TestRunValidate_ValidBundle(t *testing.T) {
	buf := &bytes.Buffer{}
	cli := command.NewCLI(view.ViewHuman, buf, view.LogLevelSilent)

	err := command.RunValidate(context.Background(), cli, command.ValidateOptions{
		Path: writeFixture(t, "bundle.yaml", testBundleDoc),
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "no errors found")
}

func TestRunValidate_ReportsEveryProblem(t *testing.T) {
	buf := &bytes.Buffer{}
	cli := command.NewCLI(view.ViewHuman, buf, view.LogLevelSilent)

	bundle := `
machines:
  "0":
    constraints: mem=oops
applications:
  web: {}
`
	err := command.RunValidate(context.Background(), cli, command.ValidateOptions{
		Path: writeFixture(t, "bundle.yaml", bundle),
	})
	require.Error(t, err)
	out := buf.String()
	assert.Contains(t, out, "malformed size")
	assert.Contains(t, out, "no charm reference")
}

func TestRunValidate_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(testBundleDoc), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("applications:\n  web: {}\n"), 0o600))

	buf := &bytes.Buffer{}
	cli := command.NewCLI(view.ViewHuman, buf, view.LogLevelSilent)

	err := command.RunValidate(context.Background(), cli, command.ValidateOptions{Path: dir})
	require.Error(t, err)
	out := buf.String()
	assert.Contains(t, out, "no errors found")
	assert.Contains(t, out, "no charm reference")
}
