package normalize

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"ReviewLens/internal/domain"
)

var (
	specialChars = regexp.MustCompile(`[^\w\s.,!?;:]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// dateLayouts are tried in order when canonicalizing review dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"Jan 2, 2006",
	"January 2, 2006",
	"02/01/2006",
}

const (
	minRating = 1
	maxRating = 5
)

// Stats reports survivor counts after each removal step so data loss
// is diagnosable without re-running.
type Stats struct {
	Input       int
	AfterEmpty  int
	AfterDedup  int
	AfterRating int
}

// Normalizer deduplicates, cleans, and filters raw reviews.
type Normalizer struct {
	logger *slog.Logger
}

// New builds a Normalizer; logger may be nil.
func New(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Run transforms raw reviews into clean reviews, order-preserving
// except removals. First occurrence wins on duplicates.
func (n *Normalizer) Run(raw []domain.RawReview) ([]domain.CleanReview, Stats) {
	stats := Stats{Input: len(raw)}

	nonEmpty := make([]domain.RawReview, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Content) == "" {
			continue
		}
		nonEmpty = append(nonEmpty, r)
	}
	stats.AfterEmpty = len(nonEmpty)

	type dedupKey struct {
		content string
		bank    string
		date    string
	}
	seen := map[dedupKey]struct{}{}
	deduped := make([]domain.RawReview, 0, len(nonEmpty))
	for _, r := range nonEmpty {
		key := dedupKey{content: r.Content, bank: r.Bank, date: r.Date}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, r)
	}
	stats.AfterDedup = len(deduped)

	out := make([]domain.CleanReview, 0, len(deduped))
	for _, r := range deduped {
		if r.Rating < minRating || r.Rating > maxRating {
			continue
		}
		clean := domain.CleanReview{RawReview: r, CleanContent: CleanText(r.Content)}
		clean.Date = CanonicalDate(r.Date)
		out = append(out, clean)
	}
	stats.AfterRating = len(out)

	n.report(stats)
	return out, stats
}

// CleanText strips characters outside word characters, whitespace, and
// sentence punctuation, then collapses whitespace runs.
func CleanText(text string) string {
	text = specialChars.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CanonicalDate parses a provider date into YYYY-MM-DD; unparsable
// values become the unknown sentinel rather than an error.
func CanonicalDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return domain.DateUnknown
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return domain.DateUnknown
}

func (n *Normalizer) report(stats Stats) {
	if n.logger == nil {
		return
	}
	n.logger.Info("normalization finished",
		"input", stats.Input,
		"after_empty_filter", stats.AfterEmpty,
		"after_dedup", stats.AfterDedup,
		"after_rating_filter", stats.AfterRating,
	)
}
