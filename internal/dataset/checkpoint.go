package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ReviewLens/internal/domain"
)

// Stage checkpoint locations relative to the data directory. Each
// pipeline stage fully replaces the file it owns, so a partial run
// leaves the last completed stage on disk for inspection or retry.
const (
	RawFile    = "raw/reviews_raw.csv"
	CleanFile  = "processed/reviews_clean.csv"
	ScoredFile = "analyzed/reviews_with_sentiment.csv"
	ThemedFile = "analyzed/reviews_with_themes.csv"
)

// keywordSep joins keyword sequences inside one CSV field. Keywords
// never contain whitespace, so a space is unambiguous.
const keywordSep = " "

// WriteRaw persists the ingestion output.
func WriteRaw(path string, reviews []domain.RawReview) error {
	header := []string{"bank", "review", "rating", "date", "source"}
	return writeCSV(path, header, len(reviews), func(i int) []string {
		r := reviews[i]
		return []string{r.Bank, r.Content, strconv.Itoa(r.Rating), r.Date, r.Source}
	})
}

// ReadRaw loads a previously captured raw dump. Rows with a malformed
// rating keep rating 0 and fall out later at the rating filter.
func ReadRaw(path string) ([]domain.RawReview, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open raw dump: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read raw dump: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("raw dump %s is empty", path)
	}

	out := make([]domain.RawReview, 0, len(records)-1)
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		if len(rec) < 5 {
			continue
		}
		rating, _ := strconv.Atoi(strings.TrimSpace(rec[2]))
		out = append(out, domain.RawReview{
			Bank:    rec[0],
			Content: rec[1],
			Rating:  rating,
			Date:    rec[3],
			Source:  rec[4],
		})
	}
	return out, nil
}

// WriteClean persists the normalizer output.
func WriteClean(path string, reviews []domain.CleanReview) error {
	header := []string{"bank", "review", "clean_review", "rating", "date", "source"}
	return writeCSV(path, header, len(reviews), func(i int) []string {
		r := reviews[i]
		return []string{r.Bank, r.Content, r.CleanContent, strconv.Itoa(r.Rating), r.Date, r.Source}
	})
}

// WriteScored persists the classifier output.
func WriteScored(path string, reviews []domain.ScoredReview) error {
	header := []string{"bank", "review", "clean_review", "rating", "date", "source", "sentiment", "sentiment_score"}
	return writeCSV(path, header, len(reviews), func(i int) []string {
		r := reviews[i]
		return []string{
			r.Bank, r.Content, r.CleanContent, strconv.Itoa(r.Rating), r.Date, r.Source,
			string(r.Sentiment), strconv.FormatFloat(r.Score, 'f', -1, 64),
		}
	})
}

// WriteThemed persists the tagger output.
func WriteThemed(path string, reviews []domain.ThemedReview) error {
	header := []string{"bank", "review", "clean_review", "rating", "date", "source", "sentiment", "sentiment_score", "keywords", "themes"}
	return writeCSV(path, header, len(reviews), func(i int) []string {
		r := reviews[i]
		return []string{
			r.Bank, r.Content, r.CleanContent, strconv.Itoa(r.Rating), r.Date, r.Source,
			string(r.Sentiment), strconv.FormatFloat(r.Score, 'f', -1, 64),
			strings.Join(r.Keywords, keywordSep), strings.Join(r.Themes, ","),
		}
	})
}

func writeCSV(path string, header []string, rows int, record func(i int) []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create checkpoint %s: %w", path, err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		file.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < rows; i++ {
		if err := writer.Write(record(i)); err != nil {
			file.Close()
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("flush checkpoint: %w", err)
	}
	return file.Close()
}
