package report

import (
	"sort"

	"ReviewLens/internal/domain"
)

// ThemeCount pairs a theme with its occurrence count.
type ThemeCount struct {
	Theme string
	Count int
}

// BankSummary aggregates the labeled dataset for one bank.
type BankSummary struct {
	Bank         string
	Reviews      int
	AvgRating    float64
	AvgScore     float64
	Sentiment    map[domain.Sentiment]int
	SentimentPct map[domain.Sentiment]float64
	TopThemes    []ThemeCount
}

// Summary is the run-level aggregate the report renders from.
type Summary struct {
	TotalReviews int
	Banks        []BankSummary
	TopThemes    []ThemeCount
}

// Summarize computes per-bank and overall aggregates from the labeled
// dataset. Output ordering is deterministic: banks by name, themes by
// count descending, ties by name.
func Summarize(reviews []domain.ThemedReview) Summary {
	summary := Summary{TotalReviews: len(reviews)}

	perBank := map[string][]domain.ThemedReview{}
	for _, r := range reviews {
		perBank[r.Bank] = append(perBank[r.Bank], r)
	}

	allThemes := map[string]int{}
	names := make([]string, 0, len(perBank))
	for name := range perBank {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rows := perBank[name]
		bank := BankSummary{
			Bank:         name,
			Reviews:      len(rows),
			Sentiment:    map[domain.Sentiment]int{},
			SentimentPct: map[domain.Sentiment]float64{},
		}

		var ratingSum, scoreSum float64
		bankThemes := map[string]int{}
		for _, r := range rows {
			ratingSum += float64(r.Rating)
			scoreSum += r.Score
			bank.Sentiment[r.Sentiment]++
			for _, theme := range r.Themes {
				bankThemes[theme]++
				allThemes[theme]++
			}
		}

		if len(rows) > 0 {
			bank.AvgRating = ratingSum / float64(len(rows))
			bank.AvgScore = scoreSum / float64(len(rows))
			for label, count := range bank.Sentiment {
				bank.SentimentPct[label] = 100 * float64(count) / float64(len(rows))
			}
		}
		bank.TopThemes = topThemes(bankThemes, 5)
		summary.Banks = append(summary.Banks, bank)
	}

	summary.TopThemes = topThemes(allThemes, 10)
	return summary
}

func topThemes(counts map[string]int, limit int) []ThemeCount {
	out := make([]ThemeCount, 0, len(counts))
	for theme, count := range counts {
		out = append(out, ThemeCount{Theme: theme, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Theme < out[j].Theme
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
