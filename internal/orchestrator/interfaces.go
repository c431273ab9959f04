// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"

	"github.com/adiadia/eventbench/internal/domain"
)

//go:generate mockgen -destination=mock_orchestrator.go -package=orchestrator github.com/adiadia/eventbench/internal/orchestrator VariantClient,Lifecycle,EventGenerator

// VariantClient is satisfied by every variant.Client.
type VariantClient interface {
	Name() string
	QueryNames() []string
	BatchInsert(ctx context.Context, events []domain.Event) error
	BenchmarkQueries(ctx context.Context) (map[string]float64, error)
}

// Lifecycle is satisfied by *lifecycle.Manager.
type Lifecycle interface {
	Provision(ctx context.Context) error
	Teardown(ctx context.Context) error
}

type EventGenerator interface {
	Generate(count int) ([]domain.Event, error)
}
