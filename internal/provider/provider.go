package provider

import (
	"context"
	"fmt"
	"time"

	"ReviewLens/internal/domain"
)

// App describes one tracked banking app supplied by config.
type App struct {
	Bank  string
	AppID string
	URL   string
}

// Request carries all parameters required to execute a collection run.
type Request struct {
	Apps       []App
	FetchDelay time.Duration
	Options    map[string]string
}

// Scraper captures a single provider strategy (Play store page
// scraper, captured CSV dump, etc.).
type Scraper interface {
	Name() string
	Scrape(ctx context.Context, req Request) ([]domain.RawReview, error)
}

// Registry keeps a mapping from scraper names to their implementations.
type Registry struct {
	scrapers map[string]Scraper
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scrapers: map[string]Scraper{}}
}

// Register adds or replaces a scraper implementation.
func (r *Registry) Register(s Scraper) {
	if r.scrapers == nil {
		r.scrapers = map[string]Scraper{}
	}
	r.scrapers[s.Name()] = s
}

// Resolve returns a scraper by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scraper, error) {
	if s, ok := r.scrapers[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("scraper %s is not registered", name)
}
