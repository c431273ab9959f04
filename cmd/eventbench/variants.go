// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/adiadia/eventbench/internal/variant"
	"github.com/adiadia/eventbench/internal/variants"
	"github.com/spf13/cobra"
)

func variantsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List registered variants, their migration sets and query names.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VARIANT\tMIGRATIONS\tENABLED\tQUERIES")
			for _, s := range variants.All() {
				client := s.New(nil, variant.Options{})
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n",
					s.Name,
					s.MigrationSet,
					enabled(a.cfg.Variants, s.Name),
					strings.Join(client.QueryNames(), ","),
				)
			}
			return tw.Flush()
		},
	}
}

func enabled(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
