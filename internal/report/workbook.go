package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"ReviewLens/internal/domain"
)

const (
	summarySheet = "Summary"
	reviewsSheet = "Reviews"
)

// WriteWorkbook exports the run aggregates and the labeled rows to an
// xlsx workbook for analysts who live in spreadsheets.
func WriteWorkbook(path string, summary Summary, reviews []domain.ThemedReview) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	if _, err := f.NewSheet(reviewsSheet); err != nil {
		return fmt.Errorf("create reviews sheet: %w", err)
	}

	if err := writeSummarySheet(f, summary); err != nil {
		return err
	}
	if err := writeReviewsSheet(f, reviews); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, summary Summary) error {
	header := []any{"Bank", "Reviews", "Avg Rating", "Avg Score", "Positive %", "Negative %", "Neutral %", "Top Themes"}
	if err := setRow(f, summarySheet, 1, header); err != nil {
		return err
	}

	for i, bank := range summary.Banks {
		themes := make([]string, 0, len(bank.TopThemes))
		for _, t := range bank.TopThemes {
			themes = append(themes, t.Theme)
		}
		row := []any{
			bank.Bank,
			bank.Reviews,
			bank.AvgRating,
			bank.AvgScore,
			bank.SentimentPct[domain.SentimentPositive],
			bank.SentimentPct[domain.SentimentNegative],
			bank.SentimentPct[domain.SentimentNeutral],
			strings.Join(themes, ", "),
		}
		if err := setRow(f, summarySheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeReviewsSheet(f *excelize.File, reviews []domain.ThemedReview) error {
	header := []any{"Bank", "Review", "Rating", "Date", "Source", "Sentiment", "Score", "Themes"}
	if err := setRow(f, reviewsSheet, 1, header); err != nil {
		return err
	}

	for i, r := range reviews {
		row := []any{
			r.Bank,
			r.Content,
			r.Rating,
			r.Date,
			r.Source,
			string(r.Sentiment),
			r.Score,
			strings.Join(r.Themes, ","),
		}
		if err := setRow(f, reviewsSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}
