package ingest

import (
	"context"
	"database/sql"
	"fmt"
)

// WriteFunc is a callback that performs database writes inside a transaction.
type WriteFunc func(ctx context.Context, tx *sql.Tx) error

// BatchWriter buffers write operations and runs each full batch inside one
// transaction. It is not safe for concurrent use.
type BatchWriter struct {
	buf    []WriteFunc
	cap    int
	closed bool
	ctx    context.Context
	db     *sql.DB
	tx     *sql.Tx

	// OnFlush, when set, is called after each executed batch with its size.
	OnFlush func(n int)
}

// NewBatchWriter creates a new BatchWriter.
// db: the database connection to use for transactions.
// bufferSize: flush when buffer reaches this size.
func NewBatchWriter(ctx context.Context, db *sql.DB, bufferSize int) *BatchWriter {
	if bufferSize <= 0 {
		bufferSize = 10
	}
	return &BatchWriter{
		buf: make([]WriteFunc, 0, bufferSize),
		cap: bufferSize,
		ctx: ctx,
		db:  db,
	}
}

// NewTxBatchWriter creates a BatchWriter whose batches all run inside tx.
// Committing or rolling back tx is left to the caller.
func NewTxBatchWriter(ctx context.Context, tx *sql.Tx, bufferSize int) *BatchWriter {
	bw := NewBatchWriter(ctx, nil, bufferSize)
	bw.tx = tx
	return bw
}

// Submit enqueues a write function, committing the batch once it is full.
// The error of that commit is returned to the caller whose write filled it.
func (bw *BatchWriter) Submit(w WriteFunc) error {
	if bw.closed {
		return ErrBatchWriterClosed
	}
	bw.buf = append(bw.buf, w)
	if len(bw.buf) >= bw.cap {
		return bw.Flush()
	}
	return nil
}

// Flush commits whatever is buffered.
func (bw *BatchWriter) Flush() error {
	if len(bw.buf) == 0 {
		return nil
	}
	batch := bw.buf
	bw.buf = make([]WriteFunc, 0, bw.cap)
	if err := bw.executeBatch(batch); err != nil {
		return err
	}
	if bw.OnFlush != nil {
		bw.OnFlush(len(batch))
	}
	return nil
}

func (bw *BatchWriter) executeBatch(batch []WriteFunc) error {
	if bw.tx != nil {
		for _, w := range batch {
			if err := w(bw.ctx, bw.tx); err != nil {
				return err
			}
		}
		return nil
	}

	// If no DB is configured (e.g. testing without DB), just run callbacks with nil tx
	if bw.db == nil {
		for _, w := range batch {
			if err := w(bw.ctx, nil); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := bw.db.BeginTx(bw.ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	for _, w := range batch {
		if err := w(bw.ctx, tx); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch (%d items): %w", len(batch), err)
	}
	return nil
}

// Close commits the remaining writes and stops accepting submissions.
func (bw *BatchWriter) Close() error {
	if bw.closed {
		return ErrBatchWriterClosed
	}
	bw.closed = true
	return bw.Flush()
}

var ErrBatchWriterClosed = &BatchWriterError{"batch writer closed"}

type BatchWriterError struct{ msg string }

func (e *BatchWriterError) Error() string { return e.msg }
