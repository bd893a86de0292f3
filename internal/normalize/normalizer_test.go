package normalize

import (
	"testing"

	"ReviewLens/internal/domain"
)

func TestCleanText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"strips special characters", "Great app! 😍 #1 @bank", "Great app! 1 bank"},
		{"keeps sentence punctuation", "Slow, buggy... why?", "Slow, buggy... why?"},
		{"collapses whitespace", "too   many \t spaces\n here", "too many spaces here"},
		{"trims", "  padded  ", "padded"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanText(tc.in); got != tc.want {
				t.Fatalf("CleanText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCanonicalDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"2024-06-15", "2024-06-15"},
		{"2024-06-15 10:30:00", "2024-06-15"},
		{"Jun 15, 2024", "2024-06-15"},
		{"not a date", domain.DateUnknown},
		{"", domain.DateUnknown},
	}

	for _, tc := range cases {
		if got := CanonicalDate(tc.in); got != tc.want {
			t.Fatalf("CanonicalDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRunDropsEmptyText(t *testing.T) {
	t.Parallel()

	raw := []domain.RawReview{
		{Bank: "CBE", Content: "works fine", Rating: 4},
		{Bank: "CBE", Content: "", Rating: 5},
		{Bank: "CBE", Content: "   ", Rating: 5},
	}

	out, stats := New(nil).Run(raw)
	if len(out) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(out))
	}
	if stats.AfterEmpty != 1 {
		t.Fatalf("expected AfterEmpty=1, got %d", stats.AfterEmpty)
	}
}

func TestRunDeduplicatesFirstWins(t *testing.T) {
	t.Parallel()

	raw := []domain.RawReview{
		{Bank: "BOA", Content: "crashes daily", Rating: 1, Date: "2024-01-01"},
		{Bank: "BOA", Content: "crashes daily", Rating: 5, Date: "2024-01-01"},
		{Bank: "Dashen", Content: "crashes daily", Rating: 2, Date: "2024-01-01"},
	}

	out, stats := New(nil).Run(raw)
	if stats.AfterDedup != 2 {
		t.Fatalf("expected 2 after dedup, got %d", stats.AfterDedup)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(out))
	}
	if out[0].Rating != 1 {
		t.Fatalf("first occurrence should win, got rating %d", out[0].Rating)
	}
}

func TestRunRatingBoundary(t *testing.T) {
	t.Parallel()

	raw := []domain.RawReview{
		{Bank: "CBE", Content: "zero", Rating: 0},
		{Bank: "CBE", Content: "one", Rating: 1},
		{Bank: "CBE", Content: "five", Rating: 5},
		{Bank: "CBE", Content: "six", Rating: 6},
	}

	out, _ := New(nil).Run(raw)
	if len(out) != 2 {
		t.Fatalf("expected ratings 1 and 5 to survive, got %d rows", len(out))
	}
	for _, r := range out {
		if r.Rating < 1 || r.Rating > 5 {
			t.Fatalf("rating %d escaped the filter", r.Rating)
		}
	}
}

func TestRunCanonicalizesDates(t *testing.T) {
	t.Parallel()

	raw := []domain.RawReview{
		{Bank: "CBE", Content: "dated", Rating: 3, Date: "2024-02-29 08:00:00"},
		{Bank: "CBE", Content: "undated", Rating: 3, Date: "sometime"},
	}

	out, _ := New(nil).Run(raw)
	if len(out) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(out))
	}
	if out[0].Date != "2024-02-29" {
		t.Fatalf("expected canonical date, got %q", out[0].Date)
	}
	if out[1].Date != domain.DateUnknown {
		t.Fatalf("expected unknown sentinel, got %q", out[1].Date)
	}
}
