package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ReviewLens/internal/config"
	"ReviewLens/internal/domain"
	"ReviewLens/internal/ports"
)

// maxLoggedRowErrors caps per-batch insertion error logging.
const maxLoggedRowErrors = 10

// rowLoader is the fallback path: resolve each distinct bank once,
// then insert reviews one at a time, committing in fixed-size batches
// so a crash leaves the completed batches visible. A failing row is
// rolled back to its savepoint, logged, and skipped; it never aborts
// the batch.
type rowLoader struct {
	pool   *pgxpool.Pool
	cfg    config.StorageConfig
	logger *slog.Logger
}

var _ ports.ReviewLoader = (*rowLoader)(nil)

func newRowLoader(pool *pgxpool.Pool, cfg config.StorageConfig, logger *slog.Logger) *rowLoader {
	return &rowLoader{pool: pool, cfg: cfg, logger: logger}
}

// Load inserts the batch row by row.
func (l *rowLoader) Load(ctx context.Context, batch []domain.ThemedReview) (ports.LoadReport, error) {
	report := ports.LoadReport{Path: "rows"}
	if len(batch) == 0 {
		return report, nil
	}

	bankIDs, err := l.resolveBanks(ctx, batch)
	if err != nil {
		return report, err
	}

	commitEvery := l.cfg.CommitEvery
	if commitEvery <= 0 {
		commitEvery = 100
	}

	loggedErrors := 0
	for start := 0; start < len(batch); start += commitEvery {
		end := min(start+commitEvery, len(batch))

		tx, err := l.pool.Begin(ctx)
		if err != nil {
			return report, fmt.Errorf("begin insert batch: %w", err)
		}

		for i := start; i < end; i++ {
			if insertErr := l.insertRow(ctx, tx, batch[i], bankIDs); insertErr != nil {
				report.Skipped++
				loggedErrors++
				if l.logger != nil && loggedErrors <= maxLoggedRowErrors {
					l.logger.Warn("skipping review row", "index", i, "error", insertErr)
				}
				continue
			}
			report.Inserted++
		}

		if err := tx.Commit(ctx); err != nil {
			return report, fmt.Errorf("commit insert batch: %w", err)
		}
		if l.logger != nil {
			l.logger.Debug("insert batch committed", "inserted_so_far", report.Inserted)
		}
	}

	return report, nil
}

func (l *rowLoader) insertRow(ctx context.Context, tx pgx.Tx, review domain.ThemedReview, bankIDs map[string]int64) error {
	bankID, ok := bankIDs[review.Bank]
	if !ok {
		return fmt.Errorf("bank %s has no catalog entry", review.Bank)
	}
	if review.Date == domain.DateUnknown {
		return fmt.Errorf("review date unknown")
	}

	// Explicit coercion: the date string becomes a time.Time, rating
	// and score keep their numeric types.
	reviewDate, err := time.Parse("2006-01-02", review.Date)
	if err != nil {
		return fmt.Errorf("parse review date %q: %w", review.Date, err)
	}

	query, args, err := psql.Insert("reviews").
		Columns("bank_id", "content", "clean_content", "rating",
			"review_date", "source", "sentiment", "sentiment_score", "themes").
		Values(
			bankID,
			Truncate(review.Content, l.cfg.ContentMaxChars),
			Truncate(review.CleanContent, l.cfg.ContentMaxChars),
			review.Rating,
			reviewDate,
			Truncate(review.Source, l.cfg.SourceMaxChars),
			string(review.Sentiment),
			review.Score,
			JoinThemes(review.Themes, l.cfg.ThemesMaxChars),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build review insert: %w", err)
	}

	// A savepoint confines a failed insert to this row; the enclosing
	// batch transaction stays usable.
	if _, err := tx.Exec(ctx, "SAVEPOINT review_row"); err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		if _, rbErr := tx.Exec(ctx, "ROLLBACK TO SAVEPOINT review_row"); rbErr != nil {
			return fmt.Errorf("rollback to savepoint: %w (insert: %v)", rbErr, err)
		}
		return err
	}
	if _, err := tx.Exec(ctx, "RELEASE SAVEPOINT review_row"); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

func (l *rowLoader) resolveBanks(ctx context.Context, batch []domain.ThemedReview) (map[string]int64, error) {
	distinct := make(map[string]struct{})
	names := make([]string, 0)
	for _, review := range batch {
		if _, ok := distinct[review.Bank]; ok {
			continue
		}
		distinct[review.Bank] = struct{}{}
		names = append(names, review.Bank)
	}

	query, args, err := psql.Select("bank_id", "name").
		From("banks").
		Where(sq.Eq{"name": names}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build bank lookup: %w", err)
	}

	rows, err := l.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup banks: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64, len(names))
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan bank: %w", err)
		}
		ids[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return ids, nil
}
