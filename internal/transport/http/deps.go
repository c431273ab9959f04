// SPDX-License-Identifier: Apache-2.0

package httptransport

import (
	"context"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/adiadia/eventbench/internal/orchestrator"
)

// ProgressSource is satisfied by *orchestrator.Orchestrator.
type ProgressSource interface {
	Progress() orchestrator.Progress
	Results() (*domain.ResultStore, bool)
}

type HealthChecker interface {
	Check(ctx context.Context) error
}

// HealthCheckFunc adapts a function such as (*pgxpool.Pool).Ping.
type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) Check(ctx context.Context) error {
	return f(ctx)
}
