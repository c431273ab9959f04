// SPDX-License-Identifier: Apache-2.0

// Package variant defines the contract every schema variant implements and
// the measurement and insertion machinery they share.
package variant

import (
	"context"
	"log/slog"
	"time"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/adiadia/eventbench/internal/logging"
	"github.com/jackc/pgx/v5"
)

const (
	DefaultChunkSize    = 1000
	DefaultQueryTimeout = 5 * time.Minute

	queryLabelPrefix = "query_"
)

// Client is one schema design under test.
type Client interface {
	// Name is the stable grouping key used in results.
	Name() string
	// QueryNames lists the declared query result keys in order.
	QueryNames() []string
	// BatchInsert persists all events or none of them.
	BatchInsert(ctx context.Context, events []domain.Event) error
	// BenchmarkQueries times every declared query against current data.
	// Queries that could not be measured are absent from the map; the
	// error aggregates their causes.
	BenchmarkQueries(ctx context.Context) (map[string]float64, error)
}

// Query is one analytical query of a variant.
type Query struct {
	Name string
	SQL  string
}

// Label is the result key for the query.
func (q Query) Label() string {
	return queryLabelPrefix + q.Name
}

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Options struct {
	ChunkSize    int
	QueryTimeout time.Duration
	Logger       *slog.Logger

	// AfterChunk runs after each chunk is written inside the insert
	// transaction. A non-nil error aborts and rolls back the batch. Used for
	// fault injection.
	AfterChunk func(chunk int) error
}

// Base carries what all variants share: identity, declared queries,
// EXPLAIN-based measurement and chunked transactional insertion.
type Base struct {
	name         string
	db           DB
	queries      []Query
	chunkSize    int
	queryTimeout time.Duration
	afterChunk   func(chunk int) error
	logger       *slog.Logger
}

func NewBase(name string, db DB, queries []Query, opts Options) Base {
	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	timeout := opts.QueryTimeout
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}

	return Base{
		name:         name,
		db:           db,
		queries:      append([]Query(nil), queries...),
		chunkSize:    chunk,
		queryTimeout: timeout,
		afterChunk:   opts.AfterChunk,
		logger:       logging.OrDefault(opts.Logger).With("variant", name),
	}
}

func (b *Base) Name() string {
	return b.name
}

func (b *Base) QueryNames() []string {
	out := make([]string, 0, len(b.queries))
	for _, q := range b.queries {
		out = append(out, q.Label())
	}
	return out
}

func (b *Base) Logger() *slog.Logger {
	return b.logger
}

// BenchmarkQueries measures the declared queries.
func (b *Base) BenchmarkQueries(ctx context.Context) (map[string]float64, error) {
	return b.Measure(ctx, b.queries)
}
