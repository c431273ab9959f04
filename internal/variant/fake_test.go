// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
)

// fakeDB hands out fakeTx values and records how they were opened and closed.
type fakeDB struct {
	explain  map[string]func() ([]byte, error)
	beginErr error

	txs []*fakeTx
}

func (f *fakeDB) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	tx := &fakeTx{db: f, opts: opts}
	f.txs = append(f.txs, tx)
	return tx, nil
}

type fakeTx struct {
	pgx.Tx

	db         *fakeDB
	opts       pgx.TxOptions
	statements []string
	committed  bool
	rolledBack bool
}

func (t *fakeTx) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	t.statements = append(t.statements, sql)
	for marker, fn := range t.db.explain {
		if strings.Contains(sql, marker) {
			raw, err := fn()
			return fakeRow{raw: raw, err: err}
		}
	}
	return fakeRow{err: errors.New("unexpected statement")}
}

func (t *fakeTx) Commit(context.Context) error {
	if t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

type fakeRow struct {
	raw []byte
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.raw
	return nil
}
