package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"ReviewLens/internal/dataset"
	"ReviewLens/internal/domain"
	"ReviewLens/internal/normalize"
	"ReviewLens/internal/ports"
	"ReviewLens/internal/report"
	"ReviewLens/internal/sentiment"
	"ReviewLens/internal/themes"
)

// PipelineDeps wires all collaborators into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.ReviewSource
	Normalizer *normalize.Normalizer
	Classifier *sentiment.Classifier
	Tagger     *themes.Tagger
	Store      ports.ReviewStore
	Reporter   *report.Builder
	DataDir    string
	Logger     *slog.Logger
}

// Pipeline implements the review analysis workflow: ingest, normalize,
// classify, tag, persist, report. Stages run strictly in sequence;
// each fully consumes its input before the next starts and writes a
// CSV checkpoint so a partial run leaves inspectable outputs.
type Pipeline struct {
	source     ports.ReviewSource
	normalizer *normalize.Normalizer
	classifier *sentiment.Classifier
	tagger     *themes.Tagger
	store      ports.ReviewStore
	reporter   *report.Builder
	dataDir    string
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:     deps.Source,
		normalizer: deps.Normalizer,
		classifier: deps.Classifier,
		tagger:     deps.Tagger,
		store:      deps.Store,
		reporter:   deps.Reporter,
		dataDir:    deps.DataDir,
		logger:     deps.Logger,
	}
}

// Run executes one full batch. Only ingestion and persistence
// connectivity failures abort the run; everything in between degrades
// per item and is reported through stage counters.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.source == nil {
		return fmt.Errorf("review source is not configured")
	}

	raw, err := p.source.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetch reviews: %w", err)
	}
	p.info("ingestion finished", "reviews", len(raw))
	p.checkpoint(dataset.RawFile, func(path string) error {
		return dataset.WriteRaw(path, raw)
	})

	clean, normStats := p.normalizer.Run(raw)
	p.checkpoint(dataset.CleanFile, func(path string) error {
		return dataset.WriteClean(path, clean)
	})

	scored, scoreStats := p.classifier.Run(ctx, clean)
	p.checkpoint(dataset.ScoredFile, func(path string) error {
		return dataset.WriteScored(path, scored)
	})

	themed, themeStats := p.tagger.Run(scored)
	p.checkpoint(dataset.ThemedFile, func(path string) error {
		return dataset.WriteThemed(path, themed)
	})

	p.info("analysis finished",
		"input", normStats.Input,
		"clean", normStats.AfterRating,
		"classifier_errors", scoreStats.Errors,
		"extraction_errors", themeStats.ExtractionErrors,
	)

	var load ports.LoadReport
	if p.store != nil {
		load, err = p.persist(ctx, themed)
		if err != nil {
			return err
		}
	}

	if p.reporter != nil {
		if err := p.reporter.Build(ctx, themed, load); err != nil {
			return fmt.Errorf("build report: %w", err)
		}
	}

	return nil
}

func (p *Pipeline) persist(ctx context.Context, themed []domain.ThemedReview) (ports.LoadReport, error) {
	if err := p.store.EnsureSchema(ctx); err != nil {
		return ports.LoadReport{}, fmt.Errorf("ensure schema: %w", err)
	}

	names := distinctBanks(themed)
	if _, err := p.store.UpsertBanks(ctx, names); err != nil {
		return ports.LoadReport{}, fmt.Errorf("upsert banks: %w", err)
	}

	load, err := p.store.SaveBatch(ctx, themed)
	if err != nil {
		return ports.LoadReport{}, fmt.Errorf("save batch: %w", err)
	}
	return load, nil
}

func distinctBanks(reviews []domain.ThemedReview) []string {
	seen := map[string]struct{}{}
	var names []string
	for _, r := range reviews {
		if _, ok := seen[r.Bank]; ok {
			continue
		}
		seen[r.Bank] = struct{}{}
		names = append(names, r.Bank)
	}
	return names
}

// checkpoint writes a stage output file. A failed checkpoint is an
// inspection aid lost, not a run failure.
func (p *Pipeline) checkpoint(relative string, write func(path string) error) {
	if p.dataDir == "" {
		return
	}
	path := filepath.Join(p.dataDir, filepath.FromSlash(relative))
	if err := write(path); err != nil && p.logger != nil {
		p.logger.Warn("checkpoint write failed", "path", path, "error", err)
	}
}

func (p *Pipeline) info(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}
