// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/hashicorp/go-multierror"
	"github.com/jackc/pgx/v5"
)

var errNoExecutionTime = errors.New("explain output has no execution time")

type explainPlan struct {
	ExecutionTime *float64 `json:"Execution Time"`
}

// Measure runs EXPLAIN (ANALYZE, FORMAT JSON) for each query inside a
// read-only transaction that is always rolled back, and returns the
// reported execution time in milliseconds keyed by query label. A failing
// query is logged, left out of the map and added to the returned error; the
// remaining queries still run.
func (b *Base) Measure(ctx context.Context, queries []Query) (map[string]float64, error) {
	results := make(map[string]float64, len(queries))
	var errs *multierror.Error

	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			errs = multierror.Append(errs, domain.NewError(domain.ErrMeasurement, q.Label(), b.name, err))
			break
		}

		ms, err := b.explain(ctx, q)
		if err != nil {
			b.logger.Warn("query measurement failed", "query", q.Label(), "error", err)
			errs = multierror.Append(errs, domain.NewError(domain.ErrMeasurement, q.Label(), b.name, err))
			continue
		}

		b.logger.Debug("query measured", "query", q.Label(), "elapsed_ms", ms)
		results[q.Label()] = ms
	}

	return results, errs.ErrorOrNil()
}

func (b *Base) explain(ctx context.Context, q Query) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, b.queryTimeout)
	defer cancel()

	tx, err := b.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return 0, fmt.Errorf("begin read-only tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	started := time.Now()
	var raw []byte
	if err := tx.QueryRow(ctx, ExplainSQL(q.SQL)).Scan(&raw); err != nil {
		return 0, fmt.Errorf("explain: %w", err)
	}

	ms, err := ParseExecutionTime(raw)
	if err != nil {
		return 0, err
	}

	b.logger.Debug("explain finished", "query", q.Label(), "wall_ms", time.Since(started).Milliseconds())
	return ms, nil
}

// ExplainSQL wraps a query in the execution-statistics form.
func ExplainSQL(query string) string {
	query = strings.TrimRight(strings.TrimSpace(query), ";")
	return "EXPLAIN (ANALYZE, FORMAT JSON) " + query
}

// ParseExecutionTime extracts "Execution Time" from the first plan of a
// FORMAT JSON explain result.
func ParseExecutionTime(raw []byte) (float64, error) {
	var plans []explainPlan
	if err := json.Unmarshal(raw, &plans); err != nil {
		return 0, fmt.Errorf("decode explain output: %w", err)
	}
	if len(plans) == 0 || plans[0].ExecutionTime == nil {
		return 0, errNoExecutionTime
	}

	ms := *plans[0].ExecutionTime
	if ms < 0 {
		return 0, fmt.Errorf("negative execution time %f", ms)
	}
	return ms, nil
}
