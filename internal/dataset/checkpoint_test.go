package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ReviewLens/internal/domain"
)

func TestWriteRawReadRawRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), RawFile)
	in := []domain.RawReview{
		{Bank: "CBE", Content: "Great app, works well!", Rating: 5, Date: "May 1, 2024", Source: "Google Play"},
		{Bank: "BOA", Content: "crashes, on, commas", Rating: 2, Date: "2024-04-28", Source: "Google Play"},
	}

	if err := WriteRaw(path, in); err != nil {
		t.Fatalf("WriteRaw returned error: %v", err)
	}

	out, err := ReadRaw(path)
	if err != nil {
		t.Fatalf("ReadRaw returned error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d rows, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("row %d mismatch: got %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestReadRawMalformedRating(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "raw.csv")
	content := "bank,review,rating,date,source\nCBE,fine app,not-a-number,2024-01-01,Google Play\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	out, err := ReadRaw(path)
	if err != nil {
		t.Fatalf("ReadRaw returned error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 row, got %d", len(out))
	}
	if out[0].Rating != 0 {
		t.Fatalf("malformed rating must become 0, got %d", out[0].Rating)
	}
}

func TestReadRawEmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := ReadRaw(path); err == nil {
		t.Fatalf("expected error for empty dump")
	}
}

func TestWriteThemedSerialization(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ThemedFile)
	in := []domain.ThemedReview{
		{
			ScoredReview: domain.ScoredReview{
				CleanReview: domain.CleanReview{
					RawReview:    domain.RawReview{Bank: "CBE", Content: "transfer failed", Rating: 1, Date: "2024-05-01", Source: "Google Play"},
					CleanContent: "transfer failed",
				},
				Sentiment: domain.SentimentNegative,
				Score:     0.97,
			},
			Keywords: []string{"transfer", "fail"},
			Themes:   []string{"transaction_issues", "app_performance"},
		},
	}

	if err := WriteThemed(path, in); err != nil {
		t.Fatalf("WriteThemed returned error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open checkpoint: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read checkpoint: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus 1 row, got %d records", len(records))
	}

	wantHeader := "bank,review,clean_review,rating,date,source,sentiment,sentiment_score,keywords,themes"
	if got := strings.Join(records[0], ","); got != wantHeader {
		t.Fatalf("header = %q, want %q", got, wantHeader)
	}

	row := records[1]
	if row[6] != "negative" || row[7] != "0.97" {
		t.Fatalf("unexpected sentiment fields: %v", row[6:8])
	}
	if row[8] != "transfer fail" {
		t.Fatalf("keywords must be space joined, got %q", row[8])
	}
	if row[9] != "transaction_issues,app_performance" {
		t.Fatalf("themes must be comma joined, got %q", row[9])
	}
}

func TestWriteCleanCreatesParentDirs(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), CleanFile)
	err := WriteClean(path, []domain.CleanReview{
		{
			RawReview:    domain.RawReview{Bank: "CBE", Content: "ok app!", Rating: 4, Date: "2024-01-02", Source: "Google Play"},
			CleanContent: "ok app!",
		},
	})
	if err != nil {
		t.Fatalf("WriteClean returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected checkpoint on disk: %v", err)
	}
}
