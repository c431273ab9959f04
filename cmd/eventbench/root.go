// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"log/slog"

	"github.com/adiadia/eventbench/internal/config"
	"github.com/adiadia/eventbench/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// app carries what every subcommand shares once flags are parsed.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        config.Config
	logger     *slog.Logger
	out        io.Writer
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"database-url":       "database_url",
	"checkpoints":        "checkpoints",
	"variants":           "variants",
	"output-dir":         "output_dir",
	"formats":            "formats",
	"chunk-size":         "chunk_size",
	"max-events-per-run": "max_events_per_run",
	"seed":               "seed",
	"migrations-dir":     "migrations_dir",
	"http-addr":          "http_addr",
	"query-timeout":      "query_timeout",
	"webhook-url":        "webhook_url",
	"webhook-secret":     "webhook_secret",
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{v: config.NewViper(), out: out}

	cmd := &cobra.Command{
		Use:   "eventbench",
		Short: "Benchmark relational schema designs for pipeline telemetry events.",
		Long: `eventbench compares schema variants for pipeline telemetry events.

For every checkpoint it provisions each variant's schema, inserts synthetic
events, times the variant's analytical queries with EXPLAIN ANALYZE and tears
the schema down again. Results are written as CSV, JSON and a PNG chart.

Settings come from flags, EVENTBENCH_* environment variables (DATABASE_URL and
ENV are also read unprefixed) and an optional config file passed with --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Path to a YAML, JSON or TOML config file.")
	flags.String("database-url", "", "PostgreSQL connection string.")
	flags.IntSlice("checkpoints", nil, "Ascending record-count increments, e.g. 100,1000,10000.")
	flags.StringSlice("variants", nil, "Variants to benchmark, in order.")
	flags.String("output-dir", "", "Directory for report artifacts.")
	flags.StringSlice("formats", nil, "Report formats: csv, json, png.")
	flags.Int("chunk-size", 0, "Events per insert chunk.")
	flags.Int("max-events-per-run", 0, "Upper bound on events generated per pipeline run.")
	flags.Uint64("seed", 0, "Generator seed; 0 picks a random seed.")
	flags.String("migrations-dir", "", "Read migration sets from this directory instead of the embedded copy.")
	flags.String("http-addr", "", "Serve progress, metrics and results on this address; keeps serving after the sweep until interrupted.")
	flags.Duration("query-timeout", 0, "Timeout for each EXPLAIN ANALYZE.")
	flags.String("webhook-url", "", "POST a sweep summary to this URL when the run ends.")
	flags.String("webhook-secret", "", "HMAC-SHA256 key for the webhook X-Signature header.")

	cmd.AddCommand(
		runCmd(a),
		migrateCmd(a),
		variantsCmd(a),
		versionCmd(a),
	)

	return cmd
}

// load binds only the flags the user set so that unset flags never shadow
// environment variables or the config file.
func (a *app) load(cmd *cobra.Command) error {
	var bindErr error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		bindErr = a.v.BindPFlag(key, f)
	})
	if bindErr != nil {
		return bindErr
	}

	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.NewLogger(cfg.Env)
	return nil
}

func versionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(a.out, "eventbench "+Version+" (commit "+Commit+", built "+BuildDate+")\n")
			return err
		},
	}
}
