package parser

import (
	"context"
	"fmt"
	"log/slog"

	"ReviewLens/internal/config"
	"ReviewLens/internal/domain"
	"ReviewLens/internal/ports"
	"ReviewLens/internal/provider"
)

// StrategySource implements ReviewSource via registered scraper
// strategies selected by configuration.
type StrategySource struct {
	registry *provider.Registry
	cfg      config.ProviderConfig
	apps     []config.AppConfig
	logger   *slog.Logger
}

var _ ports.ReviewSource = (*StrategySource)(nil)

// NewStrategySource wires the scraper registry with config-defined apps.
func NewStrategySource(reg *provider.Registry, cfg config.ProviderConfig, apps []config.AppConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{registry: reg, cfg: cfg, apps: apps, logger: log}
}

// FetchAll resolves the configured strategy and executes it.
func (s *StrategySource) FetchAll(ctx context.Context) ([]domain.RawReview, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scraper registry is not configured")
	}

	strategy, err := s.registry.Resolve(s.cfg.Scraper)
	if err != nil {
		return nil, err
	}

	req := provider.Request{
		Apps:       toProviderApps(s.apps),
		FetchDelay: s.cfg.FetchDelay,
		Options:    map[string]string{"path": s.cfg.RawInputPath},
	}

	s.debug("fetch reviews", "scraper", s.cfg.Scraper, "apps", len(req.Apps))
	reviews, err := strategy.Scrape(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", s.cfg.Scraper, err)
	}

	for i := range reviews {
		if reviews[i].Source == "" {
			reviews[i].Source = playSourceName
		}
	}

	s.debug("fetch finished", "total_reviews", len(reviews))
	return reviews, nil
}

func toProviderApps(cfg []config.AppConfig) []provider.App {
	apps := make([]provider.App, 0, len(cfg))
	for _, app := range cfg {
		apps = append(apps, provider.App{Bank: app.Bank, AppID: app.AppID, URL: app.URL})
	}
	return apps
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
