package storage

import (
	"context"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"ReviewLens/internal/config"
	"ReviewLens/internal/domain"
	"ReviewLens/internal/ports"
)

// psql builds Postgres-flavored SQL with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repository is the Postgres persistence adapter. It owns the
// connection pool for the duration of a run and hides the bulk/row
// path selection behind SaveBatch.
type Repository struct {
	pool   *pgxpool.Pool
	cfg    config.StorageConfig
	logger *slog.Logger
	bulk   ports.ReviewLoader
	rows   ports.ReviewLoader
}

var _ ports.ReviewStore = (*Repository)(nil)

// New connects to Postgres and wires both load paths.
func New(ctx context.Context, dsn string, cfg config.StorageConfig, logger *slog.Logger) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := &Repository{pool: pool, cfg: cfg, logger: logger}
	repo.bulk = newBulkLoader(pool, cfg, logger)
	repo.rows = newRowLoader(pool, cfg, logger)
	return repo, nil
}

// Close releases the connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// EnsureSchema creates the bank catalog and review table when absent.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS banks (
			bank_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			review_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			bank_id BIGINT REFERENCES banks (bank_id),
			content VARCHAR(4000) NOT NULL,
			clean_content VARCHAR(4000),
			rating SMALLINT NOT NULL,
			review_date DATE NOT NULL,
			source VARCHAR(50) DEFAULT 'Google Play',
			sentiment VARCHAR(10),
			sentiment_score NUMERIC,
			themes VARCHAR(500)
		)`,
	}

	for _, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// UpsertBanks inserts each distinct name into the catalog only if
// absent and returns the surrogate key per name. Re-running on the
// same batch never duplicates or errors.
func (r *Repository) UpsertBanks(ctx context.Context, names []string) (map[string]int64, error) {
	for _, name := range names {
		query, args, err := psql.Insert("banks").
			Columns("name").
			Values(name).
			Suffix("ON CONFLICT (name) DO NOTHING").
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build bank insert: %w", err)
		}
		if _, err := r.pool.Exec(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("upsert bank %s: %w", name, err)
		}
	}

	return r.resolveBankIDs(ctx, names)
}

// SaveBatch tries the bulk path first and retries the entire batch
// row-by-row when the bulk path fails as a whole. Callers see only the
// final report; logs record which path ran.
func (r *Repository) SaveBatch(ctx context.Context, batch []domain.ThemedReview) (ports.LoadReport, error) {
	return LoadWithFallback(ctx, r.bulk, r.rows, r.logger, batch)
}

// LoadWithFallback implements the try-bulk-then-fallback policy over
// two loaders. A bulk failure is never treated as partial success: the
// bulk loader is transactional, so the fallback retries the whole batch.
func LoadWithFallback(ctx context.Context, bulk, rows ports.ReviewLoader, logger *slog.Logger, batch []domain.ThemedReview) (ports.LoadReport, error) {
	report, err := bulk.Load(ctx, batch)
	if err == nil {
		if logger != nil {
			logger.Info("batch persisted", "path", report.Path,
				"inserted", report.Inserted, "skipped", report.Skipped)
		}
		return report, nil
	}

	if logger != nil {
		logger.Warn("bulk load failed, retrying batch row by row", "error", err)
	}

	report, err = rows.Load(ctx, batch)
	if err != nil {
		return ports.LoadReport{}, fmt.Errorf("fallback load: %w", err)
	}
	if logger != nil {
		logger.Info("batch persisted", "path", report.Path,
			"inserted", report.Inserted, "skipped", report.Skipped)
	}
	return report, nil
}

// CountReviews reports stored rows per bank for post-run verification.
func (r *Repository) CountReviews(ctx context.Context) (map[string]int64, error) {
	query, args, err := psql.Select("b.name", "COUNT(*)").
		From("reviews r").
		Join("banks b ON r.bank_id = b.bank_id").
		GroupBy("b.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var name string
		var count int64
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[name] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return counts, nil
}

func (r *Repository) resolveBankIDs(ctx context.Context, names []string) (map[string]int64, error) {
	query, args, err := psql.Select("bank_id", "name").
		From("banks").
		Where(sq.Eq{"name": names}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build bank lookup: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
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
