// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/adiadia/eventbench/internal/generator"
	"github.com/adiadia/eventbench/internal/lifecycle"
	"github.com/adiadia/eventbench/internal/notify"
	"github.com/adiadia/eventbench/internal/orchestrator"
	"github.com/adiadia/eventbench/internal/persistence/postgres"
	"github.com/adiadia/eventbench/internal/report"
	httptransport "github.com/adiadia/eventbench/internal/transport/http"
	"github.com/adiadia/eventbench/internal/variant"
	"github.com/adiadia/eventbench/internal/variants"
	"github.com/adiadia/eventbench/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func runCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the checkpoint sweep and write the report.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBenchmark(cmd.Context())
		},
	}
}

func (a *app) runBenchmark(ctx context.Context) error {
	cfg := a.cfg
	logger := a.logger

	specs, err := variants.Select(cfg.Variants)
	if err != nil {
		return err
	}

	domains := generator.DefaultDomains()
	domains.EventsPerRun.Max = cfg.MaxEventsPerRun
	gen, err := generator.New(domains, cfg.Seed, generator.WithLogger(logger))
	if err != nil {
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return domain.NewError(domain.ErrConfiguration, "connect database", "", err)
	}
	defer pool.Close()

	regs, closeAll, err := a.registrations(pool, specs)
	defer closeAll()
	if err != nil {
		return err
	}

	orch, err := orchestrator.New(orchestrator.Deps{
		Generator:   gen,
		Variants:    regs,
		Checkpoints: cfg.Checkpoints,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	var serverAddr net.Addr
	if cfg.HTTPAddr != "" {
		addr, stopServer, err := a.serve(orch, httptransport.HealthCheckFunc(pool.Ping))
		if err != nil {
			return domain.NewError(domain.ErrConfiguration, "listen", "", err)
		}
		defer stopServer()
		serverAddr = addr
	}

	store, runErr := orch.Run(ctx)
	if store == nil {
		return runErr
	}

	reporter, err := report.NewReporter(cfg.OutputDir, cfg.Formats, logger)
	if err != nil {
		return errors.Join(runErr, err)
	}
	paths, reportErr := reporter.Write(store, report.Metadata{
		GeneratedAt: time.Now().UTC(),
		Version:     Version,
		Checkpoints: store.Checkpoints(),
		Variants:    cfg.Variants,
	})
	for _, p := range paths {
		fmt.Fprintln(a.out, p)
	}

	logger.Info("benchmark complete",
		"results", store.Len(),
		"rows", len(report.ToLongFormat(store)),
		"artifacts", len(paths),
	)
	a.notify(ctx, store, paths, runErr)

	if serverAddr != nil {
		waitForInterrupt(ctx, logger, serverAddr)
	}

	if runErr != nil {
		return errors.Join(runErr, reportErr)
	}
	return reportErr
}

// notify posts the sweep summary when a webhook is configured. Delivery
// failures are logged and never change the exit status.
func (a *app) notify(ctx context.Context, store *domain.ResultStore, artifacts []string, runErr error) {
	hook := notify.NewWebhook(a.cfg.WebhookURL, a.cfg.WebhookSecret, a.logger)
	if hook == nil {
		return
	}

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	summary := notify.NewSummary(store, a.cfg.Variants, artifacts, runErr, time.Now().UTC())
	if err := hook.Deliver(notifyCtx, summary); err != nil {
		a.logger.Warn("sweep webhook not delivered", "sweep_id", summary.SweepID, "error", err)
	}
}

// registrations builds one client and lifecycle manager per variant. The
// returned func closes every manager that was opened.
func (a *app) registrations(pool *pgxpool.Pool, specs []variants.Spec) ([]orchestrator.Registration, func(), error) {
	managers := make([]*lifecycle.Manager, 0, len(specs))
	closeAll := func() {
		for _, m := range managers {
			if err := m.Close(); err != nil {
				a.logger.Warn("close lifecycle manager failed", "variant", m.Variant(), "error", err)
			}
		}
	}

	opts := variant.Options{
		ChunkSize:    a.cfg.ChunkSize,
		QueryTimeout: a.cfg.QueryTimeout,
		Logger:       a.logger,
	}

	regs := make([]orchestrator.Registration, 0, len(specs))
	for _, s := range specs {
		mgr, err := a.manager(pool, s)
		if err != nil {
			return nil, closeAll, err
		}
		managers = append(managers, mgr)

		regs = append(regs, orchestrator.Registration{
			Client:    s.New(pool, opts),
			Lifecycle: mgr,
		})
	}
	return regs, closeAll, nil
}

func (a *app) manager(pool *pgxpool.Pool, s variants.Spec) (*lifecycle.Manager, error) {
	fsys, err := migrations.FS(a.cfg.MigrationsDir, s.MigrationSet)
	if err != nil {
		return nil, domain.NewError(domain.ErrConfiguration, "open migrations", s.Name, err)
	}
	return lifecycle.NewManager(pool, s.Name, s.MigrationSet, s.Relations, fsys, a.logger)
}

// serve binds the progress server before the sweep starts so a busy port
// fails fast, and returns the bound address with a shutdown func.
func (a *app) serve(progress httptransport.ProgressSource, health httptransport.HealthChecker) (net.Addr, func(), error) {
	ln, err := net.Listen("tcp", a.cfg.HTTPAddr)
	if err != nil {
		return nil, nil, err
	}

	handler := httptransport.NewRouter(httptransport.Deps{
		Progress:      progress,
		HealthChecker: health,
		Logger:        a.logger,
		Version:       Version,
		Commit:        Commit,
		BuildDate:     BuildDate,
	})

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("progress server listening",
			"addr", ln.Addr().String(),
			"version", Version,
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("progress server failed", "error", err)
		}
	}()

	return ln.Addr(), func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("progress server shutdown error", "error", err)
		}
	}, nil
}

// waitForInterrupt keeps /results reachable after the sweep until the
// process is signalled.
func waitForInterrupt(ctx context.Context, logger *slog.Logger, addr net.Addr) {
	if ctx.Err() != nil {
		return
	}
	logger.Info("sweep finished; serving results until interrupted", "addr", addr.String())
	<-ctx.Done()
	logger.Info("shutdown signal received")
}
