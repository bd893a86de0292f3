package sentiment

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"ReviewLens/internal/config"
	"ReviewLens/internal/domain"
	"ReviewLens/internal/ports"
)

// Stats accumulates per-batch classifier counters in input order.
type Stats struct {
	Input    int
	Skipped  int // short-text short circuits
	Errors   int // model failures recovered by the neutral sentinel
	Positive int
	Negative int
	Neutral  int
}

// Classifier assigns ternary sentiment over a binary model. The model
// is a shared, read-only resource injected at construction.
type Classifier struct {
	model  ports.SentimentModel
	cfg    config.ClassifierConfig
	logger *slog.Logger
}

// New builds a Classifier around an injected model.
func New(model ports.SentimentModel, cfg config.ClassifierConfig, logger *slog.Logger) *Classifier {
	return &Classifier{model: model, cfg: cfg, logger: logger}
}

// Run scores a batch one review at a time, in input order. Model
// failures never abort the batch: the affected review receives the
// neutral sentinel and the failure is counted. Only the first
// MaxLoggedErrors failures are logged to avoid flooding.
func (c *Classifier) Run(ctx context.Context, reviews []domain.CleanReview) ([]domain.ScoredReview, Stats) {
	stats := Stats{Input: len(reviews)}
	out := make([]domain.ScoredReview, 0, len(reviews))

	for i, review := range reviews {
		scored := domain.ScoredReview{CleanReview: review}

		if len(strings.TrimSpace(review.CleanContent)) < c.cfg.MinTextLength {
			scored.Sentiment = domain.SentimentNeutral
			scored.Score = domain.NeutralSentinelScore
			stats.Skipped++
			stats.count(scored.Sentiment)
			out = append(out, scored)
			continue
		}

		scores, err := c.model.Score(ctx, review.CleanContent)
		if err != nil {
			stats.Errors++
			if c.logger != nil && stats.Errors <= c.cfg.MaxLoggedErrors {
				c.logger.Warn("model call failed, using neutral sentinel",
					"index", i, "error", err)
			}
			scored.Sentiment = domain.SentimentNeutral
			scored.Score = domain.NeutralSentinelScore
			stats.count(scored.Sentiment)
			out = append(out, scored)
			continue
		}

		scored.Sentiment, scored.Score = Decide(scores, c.cfg.NeutralBand)
		stats.count(scored.Sentiment)
		out = append(out, scored)
	}

	if c.logger != nil {
		c.logger.Info("sentiment classification finished",
			"input", stats.Input,
			"positive", stats.Positive,
			"negative", stats.Negative,
			"neutral", stats.Neutral,
			"short_text_skips", stats.Skipped,
			"errors", stats.Errors,
		)
	}
	return out, stats
}

// Decide maps a positive/negative confidence pair onto a ternary label.
// A label is decisive only when the confidence gap strictly exceeds
// the neutral band; a gap inside the band, or exactly at it, yields
// neutral with the larger confidence as the score.
func Decide(scores domain.SentimentScores, neutralBand float64) (domain.Sentiment, float64) {
	if math.Abs(scores.Positive-scores.Negative) > neutralBand {
		if scores.Positive > scores.Negative {
			return domain.SentimentPositive, scores.Positive
		}
		return domain.SentimentNegative, scores.Negative
	}
	return domain.SentimentNeutral, math.Max(scores.Positive, scores.Negative)
}

func (s *Stats) count(label domain.Sentiment) {
	switch label {
	case domain.SentimentPositive:
		s.Positive++
	case domain.SentimentNegative:
		s.Negative++
	default:
		s.Neutral++
	}
}
