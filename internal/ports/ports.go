package ports

import (
	"context"

	"ReviewLens/internal/domain"
)

// ReviewSource pulls raw reviews from upstream providers (store
// scrapers, captured CSV dumps).
type ReviewSource interface {
	FetchAll(ctx context.Context) ([]domain.RawReview, error)
}

// SentimentModel scores cleaned text, returning a positive/negative
// confidence pair summing to roughly 1. Implementations may fail per
// call; callers degrade to the neutral sentinel.
type SentimentModel interface {
	Score(ctx context.Context, text string) (domain.SentimentScores, error)
}

// LoadReport summarizes one persistence run.
type LoadReport struct {
	Path     string // "bulk" or "rows"
	Inserted int
	Skipped  int
}

// ReviewLoader writes a labeled batch into the review table. Two
// implementations exist: a whole-batch bulk loader and a row-by-row
// fallback. Callers go through ReviewStore and never pick a path.
type ReviewLoader interface {
	Load(ctx context.Context, batch []domain.ThemedReview) (LoadReport, error)
}

// ReviewStore is the persistence adapter boundary: schema guarantee,
// idempotent entity upsert, and batch insertion with path selection
// hidden behind a single call.
type ReviewStore interface {
	EnsureSchema(ctx context.Context) error
	UpsertBanks(ctx context.Context, names []string) (map[string]int64, error)
	SaveBatch(ctx context.Context, batch []domain.ThemedReview) (LoadReport, error)
}

// Notifier delivers a short run digest to an external channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// ChatClient asks an LLM API for free-text output from a structured
// payload (used for the report's executive summary).
type ChatClient interface {
	Complete(ctx context.Context, payload []byte) (string, error)
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func()) error
	Stop(ctx context.Context) error
}
