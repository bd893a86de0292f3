package report

import (
	"fmt"
	"strings"

	"ReviewLens/internal/domain"
)

// RenderMarkdown renders the final report. executive may be empty, in
// which case the section is omitted.
func RenderMarkdown(summary Summary, executive string) string {
	var b strings.Builder

	b.WriteString("# Mobile Banking App Review Analysis\n\n")
	fmt.Fprintf(&b, "Analyzed %d reviews across %d banks.\n\n", summary.TotalReviews, len(summary.Banks))

	if executive != "" {
		b.WriteString("## Executive Summary\n\n")
		b.WriteString(executive)
		b.WriteString("\n\n")
	}

	b.WriteString("## Sentiment by Bank\n\n")
	b.WriteString("| Bank | Reviews | Avg Rating | Positive | Negative | Neutral |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, bank := range summary.Banks {
		fmt.Fprintf(&b, "| %s | %d | %.1f | %.1f%% | %.1f%% | %.1f%% |\n",
			bank.Bank,
			bank.Reviews,
			bank.AvgRating,
			bank.SentimentPct[domain.SentimentPositive],
			bank.SentimentPct[domain.SentimentNegative],
			bank.SentimentPct[domain.SentimentNeutral],
		)
	}
	b.WriteString("\n")

	b.WriteString("## Top Themes\n\n")
	for _, theme := range summary.TopThemes {
		fmt.Fprintf(&b, "- %s: %d\n", theme.Theme, theme.Count)
	}
	b.WriteString("\n")

	for _, bank := range summary.Banks {
		fmt.Fprintf(&b, "### %s\n\n", bank.Bank)
		fmt.Fprintf(&b, "Average sentiment score: %.2f\n\n", bank.AvgScore)
		b.WriteString("Top themes:\n\n")
		for _, theme := range bank.TopThemes {
			fmt.Fprintf(&b, "- %s: %d\n", theme.Theme, theme.Count)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// Digest renders the short notification text for the run.
func Digest(summary Summary, path string, inserted, skipped int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ReviewLens run: %d reviews analyzed\n", summary.TotalReviews)
	fmt.Fprintf(&b, "Persisted %d rows (%d skipped) via %s path\n", inserted, skipped, path)
	for _, bank := range summary.Banks {
		fmt.Fprintf(&b, "%s: %d reviews, %.1f%% positive\n",
			bank.Bank, bank.Reviews, bank.SentimentPct[domain.SentimentPositive])
	}
	return b.String()
}
