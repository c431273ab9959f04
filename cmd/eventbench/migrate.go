// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/adiadia/eventbench/internal/lifecycle"
	"github.com/adiadia/eventbench/internal/persistence/postgres"
	"github.com/adiadia/eventbench/internal/variants"
	"github.com/spf13/cobra"
)

func migrateCmd(a *app) *cobra.Command {
	var variantName string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, reverse or inspect one variant's schema by hand.",
	}
	cmd.PersistentFlags().StringVar(&variantName, "variant", "", "Variant whose migration set to use.")
	_ = cmd.MarkPersistentFlagRequired("variant")

	withManager := func(fn func(ctx context.Context, m *lifecycle.Manager) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			return a.withManager(cmd.Context(), variantName, fn)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations.",
			Args:  cobra.NoArgs,
			RunE: withManager(func(ctx context.Context, m *lifecycle.Manager) error {
				return m.Provision(ctx)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Reverse every applied migration and drop the version table.",
			Args:  cobra.NoArgs,
			RunE: withManager(func(ctx context.Context, m *lifecycle.Manager) error {
				return m.Teardown(ctx)
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied.",
			Args:  cobra.NoArgs,
			RunE: withManager(func(ctx context.Context, m *lifecycle.Manager) error {
				states, err := m.Status(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "VERSION\tAPPLIED\tAPPLIED AT\tFILE")
				for _, s := range states {
					appliedAt := "-"
					if s.Applied && !s.AppliedAt.IsZero() {
						appliedAt = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
					}
					fmt.Fprintf(tw, "%05d\t%t\t%s\t%s\n", s.Version, s.Applied, appliedAt, s.Path)
				}
				return tw.Flush()
			}),
		},
	)

	return cmd
}

func (a *app) withManager(ctx context.Context, name string, fn func(ctx context.Context, m *lifecycle.Manager) error) error {
	spec, ok := variants.Lookup(name)
	if !ok {
		return domain.Configurationf("unknown variant %q (known: %v)", name, variants.Names())
	}

	pool, err := postgres.NewPool(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return domain.NewError(domain.ErrConfiguration, "connect database", "", err)
	}
	defer pool.Close()

	m, err := a.manager(pool, spec)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	if err := fn(ctx, m); err != nil {
		return err
	}
	a.logger.Info("migrate command finished", "variant", spec.Name, "set", spec.MigrationSet)
	return nil
}
