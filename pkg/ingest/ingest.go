package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/japaniel/poslowie/pkg/db"
	"github.com/japaniel/poslowie/pkg/sejm"
)

// Ingester writes extracted members into the database.
type Ingester struct {
	DB        *sql.DB
	BatchSize int
	// Logger is used for batch messages. nil means slog.Default().
	Logger *slog.Logger
}

// NewIngester creates a new Ingester.
func NewIngester(conn *sql.DB) *Ingester {
	return &Ingester{
		DB:        conn,
		BatchSize: 100,
	}
}

// Save upserts every member keyed by (id, term), then records the term
// itself with the number of members saved. The members and the term record
// are written in one transaction: a failing row leaves nothing of the term
// behind. BatchSize only groups the writes for logging.
func (ig *Ingester) Save(ctx context.Context, term db.Term, members []sejm.Member) (int, error) {
	logger := ig.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tx, err := ig.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin term %d tx: %w", term.ID, err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	saved := 0
	bw := NewTxBatchWriter(ctx, tx, ig.BatchSize)
	bw.OnFlush = func(n int) {
		saved += n
		logger.Debug("wrote member batch", "term", term.ID, "rows", n)
	}

	for _, m := range members {
		row := memberRow(m)
		err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
			if err := db.UpsertMember(tx, row); err != nil {
				return fmt.Errorf("failed to persist member %s: %w", row.ID, err)
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	if err := bw.Close(); err != nil {
		return 0, err
	}

	term.MemberCount = saved
	if err := db.UpsertTerm(tx, term); err != nil {
		return 0, fmt.Errorf("failed to record term %d: %w", term.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit term %d: %w", term.ID, err)
	}
	return saved, nil
}

func memberRow(m sejm.Member) db.Member {
	return db.Member{
		ID:             m.ID,
		Term:           m.Term,
		Name:           m.Name,
		WikipediaTitle: m.WikipediaTitle,
		Party:          m.Party,
		Source:         m.Source,
		Area:           m.Area,
		AreaID:         m.AreaID,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		Replaced:       m.Replaced,
		Wikidata:       m.Wikidata,
	}
}
