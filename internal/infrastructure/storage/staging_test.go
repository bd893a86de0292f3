package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"strings"
	"testing"

	"ReviewLens/internal/config"
	"ReviewLens/internal/domain"
	"ReviewLens/internal/ports"
)

func testStorageConfig() config.StorageConfig {
	return config.StorageConfig{
		ContentMaxChars: 4000,
		ThemesMaxChars:  500,
		SourceMaxChars:  50,
		CommitEvery:     100,
	}
}

func themedReview(bank, content, date string) domain.ThemedReview {
	return domain.ThemedReview{
		ScoredReview: domain.ScoredReview{
			CleanReview: domain.CleanReview{
				RawReview: domain.RawReview{
					Bank:    bank,
					Content: content,
					Rating:  4,
					Date:    date,
					Source:  "Google Play",
				},
				CleanContent: content,
			},
			Sentiment: domain.SentimentPositive,
			Score:     0.91,
		},
		Keywords: []string{"transfer"},
		Themes:   []string{"transaction_issues"},
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "under limit", in: "short", max: 10, want: "short"},
		{name: "at limit", in: "12345", max: 5, want: "12345"},
		{name: "over limit", in: strings.Repeat("a", 5000), max: 4000, want: strings.Repeat("a", 4000)},
		{name: "no limit", in: "anything", max: 0, want: "anything"},
		{name: "multibyte runes", in: "ሰላም ሰላም", max: 4, want: "ሰላም "},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Truncate(tt.in, tt.max); got != tt.want {
				t.Fatalf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestJoinThemesTruncatesAtCap(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 300)
	got := JoinThemes([]string{long, long}, 500)
	if len(got) != 500 {
		t.Fatalf("expected 500 chars, got %d", len(got))
	}
	if JoinThemes([]string{"a", "b"}, 500) != "a,b" {
		t.Fatalf("short lists must join untouched")
	}
}

func TestWriteArtifactsStagingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	batch := []domain.ThemedReview{
		themedReview("CBE", "Great app", "2024-05-01"),
		themedReview("BOA", "No date here", domain.DateUnknown),
		themedReview("Dashen", strings.Repeat("y", 5000), "2024-05-02"),
	}

	art, staged, skipped, err := writeArtifacts(dir, testStorageConfig(), batch)
	defer art.remove()
	if err != nil {
		t.Fatalf("writeArtifacts returned error: %v", err)
	}
	if staged != 2 {
		t.Fatalf("expected 2 staged rows, got %d", staged)
	}
	if skipped != 1 {
		t.Fatalf("expected 1 skipped row, got %d", skipped)
	}

	file, err := os.Open(art.DataPath)
	if err != nil {
		t.Fatalf("open staging file: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read staging file: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d records", len(records))
	}

	wantHeader := "bank_name,content,clean_content,rating,review_date,source,sentiment,sentiment_score,themes"
	if got := strings.Join(records[0], ","); got != wantHeader {
		t.Fatalf("header = %q, want %q", got, wantHeader)
	}

	first := records[1]
	if first[0] != "CBE" || first[1] != "Great app" || first[3] != "4" ||
		first[4] != "2024-05-01" || first[6] != "positive" || first[8] != "transaction_issues" {
		t.Fatalf("unexpected first row: %v", first)
	}

	// Oversized content is cut at write time.
	if len(records[2][1]) != 4000 {
		t.Fatalf("expected content truncated to 4000, got %d", len(records[2][1]))
	}

	for _, path := range []string{art.ControlPath, art.ResolvePath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected companion artifact %s: %v", path, err)
		}
	}

	resolve, err := os.ReadFile(art.ResolvePath)
	if err != nil {
		t.Fatalf("read post-load script: %v", err)
	}
	if !strings.Contains(string(resolve), "DROP COLUMN bank_name") {
		t.Fatalf("post-load script must drop the placeholder column, got %q", resolve)
	}
}

func TestArtifactsRemove(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	art, _, _, err := writeArtifacts(dir, testStorageConfig(), []domain.ThemedReview{
		themedReview("CBE", "fine", "2024-01-01"),
	})
	if err != nil {
		t.Fatalf("writeArtifacts returned error: %v", err)
	}

	art.remove()
	for _, path := range []string{art.DataPath, art.ControlPath, art.ResolvePath} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected %s removed, stat err = %v", path, err)
		}
	}

	// Removing twice must be harmless.
	art.remove()
}

type fakeLoader struct {
	report ports.LoadReport
	err    error
	calls  int
	got    []domain.ThemedReview
}

func (f *fakeLoader) Load(_ context.Context, batch []domain.ThemedReview) (ports.LoadReport, error) {
	f.calls++
	f.got = batch
	return f.report, f.err
}

func TestLoadWithFallbackBulkSucceeds(t *testing.T) {
	t.Parallel()

	bulk := &fakeLoader{report: ports.LoadReport{Path: "bulk", Inserted: 3}}
	rows := &fakeLoader{}
	batch := []domain.ThemedReview{themedReview("CBE", "ok app", "2024-01-01")}

	report, err := LoadWithFallback(context.Background(), bulk, rows, nil, batch)
	if err != nil {
		t.Fatalf("LoadWithFallback returned error: %v", err)
	}
	if report.Path != "bulk" || report.Inserted != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if rows.calls != 0 {
		t.Fatalf("fallback must not run when bulk succeeds, ran %d times", rows.calls)
	}
}

func TestLoadWithFallbackRetriesWholeBatch(t *testing.T) {
	t.Parallel()

	bulk := &fakeLoader{err: errors.New("copy failed")}
	rows := &fakeLoader{report: ports.LoadReport{Path: "rows", Inserted: 2}}
	batch := []domain.ThemedReview{
		themedReview("CBE", "first", "2024-01-01"),
		themedReview("BOA", "second", "2024-01-02"),
	}

	report, err := LoadWithFallback(context.Background(), bulk, rows, nil, batch)
	if err != nil {
		t.Fatalf("LoadWithFallback returned error: %v", err)
	}
	if report.Path != "rows" || report.Inserted != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if bulk.calls != 1 || rows.calls != 1 {
		t.Fatalf("expected one call each, got bulk=%d rows=%d", bulk.calls, rows.calls)
	}
	if len(rows.got) != len(batch) {
		t.Fatalf("fallback must receive the full batch, got %d of %d", len(rows.got), len(batch))
	}
}

func TestLoadWithFallbackBothPathsFail(t *testing.T) {
	t.Parallel()

	bulk := &fakeLoader{err: errors.New("copy failed")}
	rows := &fakeLoader{err: errors.New("insert failed")}

	_, err := LoadWithFallback(context.Background(), bulk, rows, nil, nil)
	if err == nil {
		t.Fatalf("expected error when both paths fail")
	}
	if !strings.Contains(err.Error(), "fallback load") {
		t.Fatalf("error must come from the fallback path, got %v", err)
	}
}
