package themes

import (
	"log/slog"

	"ReviewLens/internal/domain"
)

// maxLoggedExtractionErrors caps per-batch extraction error logging.
const maxLoggedExtractionErrors = 10

// Stats accumulates per-batch tagger counters in input order.
type Stats struct {
	Input            int
	ExtractionErrors int
	Fallbacks        int // reviews tagged only with the catch-all
}

// Tagger assigns multi-label themes from extracted keywords.
type Tagger struct {
	extractor *Extractor
	taxonomy  Taxonomy
	logger    *slog.Logger
}

// NewTagger builds the theme-assignment stage.
func NewTagger(extractor *Extractor, taxonomy Taxonomy, logger *slog.Logger) *Tagger {
	return &Tagger{extractor: extractor, taxonomy: taxonomy, logger: logger}
}

// Run labels a batch one review at a time, in input order. Extraction
// failures degrade to an empty keyword list (and therefore the
// fallback theme) rather than aborting the batch.
func (t *Tagger) Run(reviews []domain.ScoredReview) ([]domain.ThemedReview, Stats) {
	stats := Stats{Input: len(reviews)}
	out := make([]domain.ThemedReview, 0, len(reviews))

	for i, review := range reviews {
		keywords, err := t.extractor.Extract(review.CleanContent)
		if err != nil {
			stats.ExtractionErrors++
			if t.logger != nil && stats.ExtractionErrors <= maxLoggedExtractionErrors {
				t.logger.Warn("keyword extraction failed", "index", i, "error", err)
			}
			keywords = nil
		}

		assigned := t.taxonomy.Assign(keywords)
		if len(assigned) == 1 && assigned[0] == FallbackTheme {
			stats.Fallbacks++
		}

		out = append(out, domain.ThemedReview{
			ScoredReview: review,
			Keywords:     keywords,
			Themes:       assigned,
		})
	}

	if t.logger != nil {
		t.logger.Info("theme tagging finished",
			"input", stats.Input,
			"extraction_errors", stats.ExtractionErrors,
			"catch_all_only", stats.Fallbacks,
		)
	}
	return out, stats
}
