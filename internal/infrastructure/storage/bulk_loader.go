package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"ReviewLens/internal/config"
	"ReviewLens/internal/domain"
	"ReviewLens/internal/ports"
)

const copyReviewsSQL = `COPY reviews (bank_name, content, clean_content, rating, review_date, source, sentiment, sentiment_score, themes) FROM STDIN WITH (FORMAT csv, HEADER true)`

// bulkLoader is the preferred high-throughput path: stage the batch to
// a flat file, COPY it into the review table with a placeholder
// natural-key column, resolve surrogate keys set-based, drop the
// placeholder. Everything runs in one transaction, so a failure leaves
// zero rows and the caller can retry the whole batch on the fallback
// path.
type bulkLoader struct {
	pool   *pgxpool.Pool
	cfg    config.StorageConfig
	logger *slog.Logger
}

var _ ports.ReviewLoader = (*bulkLoader)(nil)

func newBulkLoader(pool *pgxpool.Pool, cfg config.StorageConfig, logger *slog.Logger) *bulkLoader {
	return &bulkLoader{pool: pool, cfg: cfg, logger: logger}
}

// Load stages and bulk-copies the batch. Staging artifacts are removed
// on every exit path.
func (l *bulkLoader) Load(ctx context.Context, batch []domain.ThemedReview) (ports.LoadReport, error) {
	report := ports.LoadReport{Path: "bulk"}

	art, staged, skipped, err := writeArtifacts(l.cfg.StagingDir, l.cfg, batch)
	defer art.remove()
	if err != nil {
		return report, fmt.Errorf("stage batch: %w", err)
	}
	report.Skipped = skipped

	resolveSQL, err := os.ReadFile(art.ResolvePath)
	if err != nil {
		return report, fmt.Errorf("read post-load script: %w", err)
	}

	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return report, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return report, fmt.Errorf("begin bulk transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `ALTER TABLE reviews ADD COLUMN IF NOT EXISTS bank_name VARCHAR(100)`); err != nil {
		return report, fmt.Errorf("add placeholder column: %w", err)
	}

	data, err := os.Open(art.DataPath)
	if err != nil {
		return report, fmt.Errorf("open staging file: %w", err)
	}

	tag, err := tx.Conn().PgConn().CopyFrom(ctx, data, copyReviewsSQL)
	data.Close()
	if err != nil {
		return report, fmt.Errorf("copy staging file: %w", err)
	}
	if int(tag.RowsAffected()) != staged {
		// COPY either loads every staged row or errors; anything in
		// between must roll back rather than pass as success.
		return report, fmt.Errorf("bulk load incomplete: staged %d, copied %d", staged, tag.RowsAffected())
	}

	for _, stmt := range strings.Split(string(resolveSQL), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return report, fmt.Errorf("post-load statement: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return report, fmt.Errorf("commit bulk transaction: %w", err)
	}

	report.Inserted = staged
	if l.logger != nil {
		l.logger.Debug("bulk load committed", "staged", staged, "skipped", skipped)
	}
	return report, nil
}
