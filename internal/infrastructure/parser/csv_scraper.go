package parser

import (
	"context"
	"fmt"

	"ReviewLens/internal/dataset"
	"ReviewLens/internal/domain"
	"ReviewLens/internal/provider"
)

// CSVScraper replays a previously captured raw dump, for offline runs
// and re-processing without hitting the store.
type CSVScraper struct{}

var _ provider.Scraper = (*CSVScraper)(nil)

// NewCSVScraper builds the dump-replay strategy.
func NewCSVScraper() *CSVScraper {
	return &CSVScraper{}
}

// Name identifies the strategy inside the registry.
func (c *CSVScraper) Name() string {
	return "csv"
}

// Scrape reads the dump named by the "path" option.
func (c *CSVScraper) Scrape(ctx context.Context, req provider.Request) ([]domain.RawReview, error) {
	path := req.Options["path"]
	if path == "" {
		return nil, fmt.Errorf("csv scraper requires a path option")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return dataset.ReadRaw(path)
}
