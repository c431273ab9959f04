// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"context"
	"fmt"
	"time"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/jackc/pgx/v5"
)

// ChunkFunc writes one chunk of events inside the batch transaction.
type ChunkFunc func(ctx context.Context, tx pgx.Tx, chunk []domain.Event) error

// InsertChunks writes events in chunks of the configured size inside a
// single transaction. Any failure rolls back every chunk already written.
func (b *Base) InsertChunks(ctx context.Context, events []domain.Event, write ChunkFunc) error {
	if len(events) == 0 {
		return nil
	}

	started := time.Now()

	tx, err := b.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.NewError(domain.ErrInsertion, "begin insert tx", b.name, err)
	}
	defer func() {
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	chunks := 0
	for start := 0; start < len(events); start += b.chunkSize {
		end := min(start+b.chunkSize, len(events))

		if err := write(ctx, tx, events[start:end]); err != nil {
			b.logger.Error("insert chunk failed", "chunk", chunks, "events", end-start, "error", err)
			return domain.NewError(domain.ErrInsertion, fmt.Sprintf("insert chunk %d", chunks), b.name, err)
		}
		if b.afterChunk != nil {
			if err := b.afterChunk(chunks); err != nil {
				return domain.NewError(domain.ErrInsertion, fmt.Sprintf("after chunk %d", chunks), b.name, err)
			}
		}
		chunks++
	}

	if err := tx.Commit(ctx); err != nil {
		b.logger.Error("commit insert tx failed", "error", err)
		return domain.NewError(domain.ErrInsertion, "commit insert tx", b.name, err)
	}

	b.logger.Debug("batch inserted",
		"events", len(events),
		"chunks", chunks,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return nil
}
