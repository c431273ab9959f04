// SPDX-License-Identifier: Apache-2.0

// Package lifecycle provisions and tears down one variant's schema by
// applying and reversing its goose migration set.
package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"io/fs"
	"log/slog"
	"regexp"
	"slices"
	"sync"
	"time"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/adiadia/eventbench/internal/logging"
	"github.com/adiadia/eventbench/internal/persistence/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	"github.com/pressly/goose/v3/lock"
)

const baseLockID int64 = 0x45564e54_00000000 // "EVNT"

var setNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Pool is the slice of *pgxpool.Pool the manager needs besides goose.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Reset()
}

// MigrationState is one row of Status.
type MigrationState struct {
	Version   int64
	Path      string
	Applied   bool
	AppliedAt time.Time
}

// Manager owns one variant's schema. Provision and Teardown are idempotent
// at quiescence and must not be called concurrently.
type Manager struct {
	variant      string
	versionTable string
	relations    []string

	pool     Pool
	db       *sql.DB
	provider *goose.Provider
	logger   *slog.Logger

	closeOnce sync.Once
}

// NewManager builds a manager for variant whose migrations live in fsys.
// Each migration set records its versions in its own goose_<set>_version
// table so variants sharing a database do not interfere. Provision fails
// unless every name in relations exists after the migrations ran.
func NewManager(pool *pgxpool.Pool, variant, set string, relations []string, fsys fs.FS, logger *slog.Logger) (*Manager, error) {
	if pool == nil {
		return nil, domain.NewError(domain.ErrConfiguration, "new lifecycle manager", variant, errors.New("nil database pool"))
	}
	db, err := postgres.OpenDB(pool)
	if err != nil {
		return nil, domain.NewError(domain.ErrConfiguration, "new lifecycle manager", variant, err)
	}

	m, err := newManager(pool, db, variant, set, relations, fsys, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return m, nil
}

func newManager(pool Pool, db *sql.DB, variant, set string, relations []string, fsys fs.FS, logger *slog.Logger) (*Manager, error) {
	table, err := VersionTable(set)
	if err != nil {
		return nil, domain.NewError(domain.ErrConfiguration, "new lifecycle manager", variant, err)
	}
	if fsys == nil {
		return nil, domain.NewError(domain.ErrConfiguration, "new lifecycle manager", variant, errors.New("nil migrations filesystem"))
	}

	store, err := database.NewStore(database.DialectPostgres, table)
	if err != nil {
		return nil, domain.NewError(domain.ErrConfiguration, "new goose store", variant, err)
	}
	locker, err := lock.NewPostgresSessionLocker(lock.WithLockID(LockID(set)))
	if err != nil {
		return nil, domain.NewError(domain.ErrConfiguration, "new goose session locker", variant, err)
	}

	provider, err := goose.NewProvider("", db, fsys,
		goose.WithStore(store),
		goose.WithSessionLocker(locker),
	)
	if err != nil {
		return nil, domain.NewError(domain.ErrConfiguration, "new goose provider", variant, err)
	}

	return &Manager{
		variant:      variant,
		versionTable: table,
		relations:    slices.Clone(relations),
		pool:         pool,
		db:           db,
		provider:     provider,
		logger:       logging.OrDefault(logger).With("variant", variant),
	}, nil
}

// VersionTable returns the goose version table name for a migration set.
func VersionTable(set string) (string, error) {
	if !setNamePattern.MatchString(set) {
		return "", fmt.Errorf("invalid migration set name %q", set)
	}
	return "goose_" + set + "_version", nil
}

// LockID derives a per-set advisory lock id.
func LockID(set string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(set))
	return baseLockID | int64(h.Sum32())
}

func (m *Manager) Variant() string {
	return m.variant
}

// Provision applies every pending migration and checks that the variant's
// relations exist. Re-running it on an already provisioned schema applies
// nothing.
func (m *Manager) Provision(ctx context.Context) error {
	started := time.Now()

	results, err := m.provider.Up(ctx)
	if err != nil {
		m.logger.Error("schema provision failed", "error", err)
		return domain.NewError(domain.ErrProvisioning, "provision", m.variant, err)
	}
	if err := m.verify(ctx); err != nil {
		return err
	}

	m.logger.Info("schema provisioned",
		"applied", len(results),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return nil
}

func (m *Manager) verify(ctx context.Context) error {
	if len(m.relations) == 0 {
		return nil
	}
	if err := postgres.RelationsReady(ctx, m.pool, m.relations); err != nil {
		m.logger.Error("schema not ready after provision", "error", err)
		return domain.NewError(domain.ErrProvisioning, "verify schema", m.variant, err)
	}
	return nil
}

// Teardown reverses every applied migration, drops the version table and
// resets the pool so the next cycle starts from cold connections. On a
// target that was never provisioned it does nothing harmful.
func (m *Manager) Teardown(ctx context.Context) error {
	started := time.Now()

	results, err := m.provider.DownTo(ctx, 0)
	if err != nil {
		m.logger.Error("schema teardown failed", "error", err)
		return domain.NewError(domain.ErrProvisioning, "teardown", m.variant, err)
	}

	if _, err := m.pool.Exec(ctx, `DROP TABLE IF EXISTS `+pgx.Identifier{m.versionTable}.Sanitize()); err != nil {
		m.logger.Error("drop version table failed", "table", m.versionTable, "error", err)
		return domain.NewError(domain.ErrProvisioning, "teardown", m.variant, fmt.Errorf("drop %s: %w", m.versionTable, err))
	}
	m.pool.Reset()

	m.logger.Info("schema torn down",
		"reverted", len(results),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return nil
}

// Status lists every known migration and whether it is applied.
func (m *Manager) Status(ctx context.Context) ([]MigrationState, error) {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return nil, domain.NewError(domain.ErrProvisioning, "status", m.variant, err)
	}

	out := make([]MigrationState, 0, len(statuses))
	for _, s := range statuses {
		state := MigrationState{
			Applied:   s.State == goose.StateApplied,
			AppliedAt: s.AppliedAt,
		}
		if s.Source != nil {
			state.Version = s.Source.Version
			state.Path = s.Source.Path
		}
		out = append(out, state)
	}
	return out, nil
}

// Close releases the database/sql handle. The underlying pool stays open.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		err = m.provider.Close()
	})
	return err
}
