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

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bundleplan/bundleplan/cmd/bundleplan/internal/loader"
	"github.com/bundleplan/bundleplan/cmd/bundleplan/internal/view"
	"github.com/bundleplan/bundleplan/pkg/graph"
)

type ValidateOptions struct {
	Path string
}

func NewValidateCommand(cli *CLI) *cobra.Command {
	var opts ValidateOptions

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a bundle document",
		Long: Highlight("bundleplan validate -f <path>") + "\n\n" +
			"Validate bundle documents by file or directory.\n\n" +
			"Performs syntactic and structural validation: declaration keys,\n" +
			"constraint expressions, placement references, and relation syntax.\n" +
			"Endpoint compatibility needs charm metadata and is checked by the\n" +
			"resolve command instead.\n\n" +
			"Examples:\n" +
			"  # Validate a single bundle\n" +
			"  bundleplan validate -f bundle.yaml\n\n" +
			"  # Validate all bundles in a directory\n" +
			"  bundleplan validate -f .\n",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunValidate(cmd.Context(), cli, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Path, "file", "f", "", "Path to bundle file or directory")
	cmd.MarkFlagRequired("file")

	return cmd
}

func RunValidate(_ context.Context, cli *CLI, opts ValidateOptions) error {
	validateView := view.NewValidateView(cli.Viewer)

	results, err := loader.LoadBundlesDetailed(opts.Path)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no YAML files found in %q", opts.Path)
	}

	failed := false
	for _, result := range results {
		resultView := view.ValidateResult{File: result.Path}
		if result.Err != nil {
			resultView.Errors = []string{result.Err.Error()}
		} else {
			resultView.Errors = validateBundle(result.Data)
		}
		if resultView.HasErrors() {
			failed = true
		}
		validateView.Render(resultView)
	}

	if failed {
		return errors.New("")
	}
	return nil
}

// validateBundle runs parse and validation on one document, flattening the
// collected problems into printable messages.
func validateBundle(data []byte) []string {
	parsed, err := graph.ParseBundle(data)
	if err != nil {
		return []string{err.Error()}
	}
	if err := graph.Validate(parsed); err != nil {
		list := graph.AsErrorList(err)
		msgs := make([]string, 0, len(list.Errors))
		for _, e := range list.Errors {
			msgs = append(msgs, e.Error())
		}
		return msgs
	}
	return nil
}
