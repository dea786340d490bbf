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

	"github.com/spf13/cobra"

	"github.com/bundleplan/bundleplan/cmd/bundleplan/internal/loader"
	"github.com/bundleplan/bundleplan/cmd/bundleplan/internal/view"
	"github.com/bundleplan/bundleplan/pkg/graph"
	"github.com/bundleplan/bundleplan/pkg/repository"
	"github.com/bundleplan/bundleplan/pkg/resolver"
)

type ResolveOptions struct {
	Path           string
	CatalogPath    string
	AllowProvision bool
}

func NewResolveCommand(cli *CLI) *cobra.Command {
	var opts ResolveOptions

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a bundle into a deployment plan",
		Long: Highlight("bundleplan resolve -f <bundle> --charms <catalog>") + "\n\n" +
			"Resolve a bundle document into an ordered deployment plan.\n\n" +
			"Runs the full pipeline: validation, dependency graph construction,\n" +
			"unit placement, relation wiring, and plan emission. The emitted plan\n" +
			"is deterministic: the same inputs always produce the same bytes.\n\n" +
			"Examples:\n" +
			"  # Resolve a bundle against a charm catalog\n" +
			"  bundleplan resolve -f bundle.yaml --charms charms.yaml\n\n" +
			"  # Allow planning new machines for unplaceable units\n" +
			"  bundleplan resolve -f bundle.yaml --charms charms.yaml --allow-provision\n\n" +
			"  # Emit the result as JSON\n" +
			"  bundleplan resolve -f bundle.yaml --charms charms.yaml -o json\n",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunResolve(cmd.Context(), cli, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Path, "file", "f", "", "Path to the bundle file")
	cmd.Flags().StringVar(&opts.CatalogPath, "charms", "", "Path to the charm metadata catalog")
	cmd.Flags().BoolVar(&opts.AllowProvision, "allow-provision", false,
		"Plan new machines for units no declared machine can host")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("charms")

	return cmd
}

func RunResolve(ctx context.Context, cli *CLI, opts ResolveOptions) error {
	resolveView := view.NewResolveView(cli.Viewer)
	logger := cli.Logger()

	data, err := loader.LoadBundle(opts.Path)
	if err != nil {
		return err
	}
	repo, err := repository.LoadCatalogFile(opts.CatalogPath)
	if err != nil {
		return err
	}

	logger.Debug("resolving bundle", "file", opts.Path, "catalog", opts.CatalogPath,
		"allowProvision", opts.AllowProvision)

	result := resolver.Resolve(ctx, resolver.Input{
		Bundle:         data,
		Repository:     repo,
		AllowProvision: opts.AllowProvision,
	})

	resultView := view.ResolveResult{
		File:    opts.Path,
		Outcome: string(result.Outcome),
	}
	if result.Outcome == resolver.OutcomeResolved {
		logger.Info("bundle resolved", "steps", len(result.Plan.Steps))
		if stages, err := result.Graph.Stages(); err == nil {
			logger.Debug("realization stages", "count", len(stages))
		}
		resultView.Plan = result.Plan
		resolveView.Render(resultView)
		return nil
	}

	list := graph.AsErrorList(result.Err)
	for _, e := range list.Errors {
		resultView.Errors = append(resultView.Errors, e.Error())
	}
	resolveView.Render(resultView)
	return errors.New("")
}
