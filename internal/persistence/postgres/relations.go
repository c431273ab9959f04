// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Querier is the read side shared by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// MissingRelations returns the names (tables, views or indexes in the public
// schema) that do not exist, in input order.
func MissingRelations(ctx context.Context, q Querier, names []string) ([]string, error) {
	if q == nil {
		return nil, errors.New("nil querier")
	}

	missing := make([]string, 0, len(names))
	for _, name := range names {
		var relationName *string
		if err := q.QueryRow(ctx, `SELECT to_regclass($1)::text`, "public."+name).Scan(&relationName); err != nil {
			return nil, fmt.Errorf("check relation %s: %w", name, err)
		}
		if relationName == nil || strings.TrimSpace(*relationName) == "" {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// RelationsReady returns an error naming every missing relation.
func RelationsReady(ctx context.Context, q Querier, names []string) error {
	missing, err := MissingRelations(ctx, q, names)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("required relations missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// CountRows returns the row count of a table.
func CountRows(ctx context.Context, q Querier, table string) (int64, error) {
	var n int64
	if err := q.QueryRow(ctx, `SELECT count(*) FROM `+pgx.Identifier{table}.Sanitize()).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows in %s: %w", table, err)
	}
	return n, nil
}
