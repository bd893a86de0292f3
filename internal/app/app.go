package app

import (
	"context"
	"fmt"
	"log/slog"

	"ReviewLens/internal/config"
	"ReviewLens/internal/infrastructure/llm"
	"ReviewLens/internal/infrastructure/ml"
	"ReviewLens/internal/infrastructure/parser"
	"ReviewLens/internal/infrastructure/scheduler"
	"ReviewLens/internal/infrastructure/storage"
	"ReviewLens/internal/infrastructure/telegram"
	"ReviewLens/internal/logging"
	"ReviewLens/internal/nlp"
	"ReviewLens/internal/normalize"
	"ReviewLens/internal/ports"
	"ReviewLens/internal/provider"
	"ReviewLens/internal/report"
	"ReviewLens/internal/sentiment"
	"ReviewLens/internal/themes"
	"ReviewLens/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	store    *storage.Repository
}

// New builds a runnable application instance. The NLP annotator and
// the persistence pool are constructed once and shared across runs.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := provider.NewRegistry()
	registry.Register(parser.NewPlayStoreScraper(nil))
	registry.Register(parser.NewCSVScraper())
	source := parser.NewStrategySource(registry, cfg.Provider, cfg.Apps, logging.Component(baseLogger, "source"))

	model := ml.NewClient(cfg.Model)
	classifier := sentiment.New(model, cfg.Classifier, logging.Component(baseLogger, "classifier"))

	annotator, err := nlp.NewProseAnnotator()
	if err != nil {
		return nil, fmt.Errorf("init annotator: %w", err)
	}
	taxonomy, err := themes.LoadTaxonomy(cfg.Tagger.TaxonomyPath)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}
	extractor := themes.NewExtractor(annotator, cfg.Classifier.MinTextLength)
	tagger := themes.NewTagger(extractor, taxonomy, logging.Component(baseLogger, "tagger"))

	store, err := storage.New(ctx, cfg.Database.DSN, cfg.Storage, logging.Component(baseLogger, "storage"))
	if err != nil {
		return nil, fmt.Errorf("connect storage: %w", err)
	}

	var chat ports.ChatClient
	if cfg.ChatGPT.APIKey != "" {
		chat = llm.NewChatGPTClient(cfg.ChatGPT)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	reporter := report.NewBuilder(cfg.Report, chat, notifier, logging.Component(baseLogger, "report"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Normalizer: normalize.New(logging.Component(baseLogger, "normalizer")),
		Classifier: classifier,
		Tagger:     tagger,
		Store:      store,
		Reporter:   reporter,
		DataDir:    cfg.Data.Dir,
		Logger:     logging.Component(baseLogger, "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline, store: store}, nil
}

// Run executes a single batch, or keeps running on an interval when
// the scheduler is enabled.
func (a *Application) Run(ctx context.Context) error {
	defer a.store.Close()

	if !a.cfg.Scheduler.Enabled {
		return a.pipeline.Run(ctx)
	}

	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval)
	runner := usecase.NewScheduler(driver, a.pipeline)
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()
	return runner.Stop(context.WithoutCancel(ctx))
}
