package themes

import (
	"errors"
	"testing"

	"ReviewLens/internal/domain"
	"ReviewLens/internal/nlp"
)

// fakeAnnotator returns fixed tokens regardless of input, keeping the
// extraction rules deterministic under test.
type fakeAnnotator struct {
	tokens []nlp.Token
	err    error
}

func (f *fakeAnnotator) Annotate(_ string) ([]nlp.Token, error) {
	return f.tokens, f.err
}

func TestAssignMatchesTriggerTerms(t *testing.T) {
	t.Parallel()

	tax := DefaultTaxonomy()

	themes := tax.Assign([]string{"transfer", "fail"})
	if len(themes) != 1 || themes[0] != "transaction_issues" {
		t.Fatalf("expected [transaction_issues], got %v", themes)
	}
}

func TestAssignFallsBackToOther(t *testing.T) {
	t.Parallel()

	tax := DefaultTaxonomy()

	themes := tax.Assign([]string{"blorp", "zonk"})
	if len(themes) != 1 || themes[0] != FallbackTheme {
		t.Fatalf("expected [%s], got %v", FallbackTheme, themes)
	}

	themes = tax.Assign(nil)
	if len(themes) != 1 || themes[0] != FallbackTheme {
		t.Fatalf("empty keywords must yield [%s], got %v", FallbackTheme, themes)
	}
}

func TestAssignMultiLabel(t *testing.T) {
	t.Parallel()

	tax := DefaultTaxonomy()

	themes := tax.Assign([]string{"login", "crash", "transfer"})
	want := map[string]bool{
		"transaction_issues":   true,
		"login_authentication": true,
		"app_performance":      true,
	}
	if len(themes) != len(want) {
		t.Fatalf("expected %d themes, got %v", len(want), themes)
	}
	for _, theme := range themes {
		if !want[theme] {
			t.Fatalf("unexpected theme %s in %v", theme, themes)
		}
	}
}

func TestAssignExactMembershipOnly(t *testing.T) {
	t.Parallel()

	tax := DefaultTaxonomy()

	// "transferring" is not in the trigger list; substring or fuzzy
	// matching must not rescue it.
	themes := tax.Assign([]string{"transferring"})
	if len(themes) != 1 || themes[0] != FallbackTheme {
		t.Fatalf("inflected keyword must fall through to %s, got %v", FallbackTheme, themes)
	}
}

func TestExtractKeepsContentWords(t *testing.T) {
	t.Parallel()

	annotator := &fakeAnnotator{tokens: []nlp.Token{
		{Text: "the", Lemma: "the", POS: nlp.POSOther, Stop: true},
		{Text: "transfer", Lemma: "transfer", POS: nlp.POSNoun},
		{Text: "failed", Lemma: "fail", POS: nlp.POSVerb},
		{Text: "slow", Lemma: "slow", POS: nlp.POSAdjective},
		{Text: "yesterday", Lemma: "yesterday", POS: nlp.POSOther},
	}}

	keywords, err := NewExtractor(annotator, 3).Extract("the transfer failed slow yesterday")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	want := []string{"transfer", "fail", "slow"}
	if len(keywords) != len(want) {
		t.Fatalf("expected %v, got %v", want, keywords)
	}
	for i := range want {
		if keywords[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, keywords)
		}
	}
}

func TestExtractJoinsCompoundNouns(t *testing.T) {
	t.Parallel()

	annotator := &fakeAnnotator{tokens: []nlp.Token{
		{Text: "mobile", Lemma: "mobile", POS: nlp.POSNoun},
		{Text: "banking", Lemma: "banking", POS: nlp.POSNoun},
		{Text: "works", Lemma: "work", POS: nlp.POSVerb},
	}}

	keywords, err := NewExtractor(annotator, 3).Extract("mobile banking works")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	// The modifier is replaced by the joined lemma; the head still
	// contributes its own lemma.
	want := []string{"mobile_banking", "banking", "work"}
	if len(keywords) != len(want) {
		t.Fatalf("expected %v, got %v", want, keywords)
	}
	for i := range want {
		if keywords[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, keywords)
		}
	}
}

func TestExtractDropsShortLemmas(t *testing.T) {
	t.Parallel()

	annotator := &fakeAnnotator{tokens: []nlp.Token{
		{Text: "go", Lemma: "go", POS: nlp.POSVerb},
		{Text: "ui", Lemma: "ui", POS: nlp.POSNoun},
		{Text: "menu", Lemma: "menu", POS: nlp.POSNoun},
	}}

	keywords, err := NewExtractor(annotator, 3).Extract("go ui menu")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	// "ui" is a noun followed by a noun, so it survives as a compound;
	// short standalone lemmas are dropped.
	want := []string{"ui_menu", "menu"}
	if len(keywords) != len(want) {
		t.Fatalf("expected %v, got %v", want, keywords)
	}
	for i := range want {
		if keywords[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, keywords)
		}
	}
}

func TestExtractShortTextShortCircuits(t *testing.T) {
	t.Parallel()

	annotator := &fakeAnnotator{tokens: []nlp.Token{{Text: "ok", Lemma: "ok", POS: nlp.POSNoun}}}

	keywords, err := NewExtractor(annotator, 3).Extract("ok")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(keywords) != 0 {
		t.Fatalf("short text must yield no keywords, got %v", keywords)
	}
}

func TestTaggerRunNeverLeavesThemesEmpty(t *testing.T) {
	t.Parallel()

	annotator := &fakeAnnotator{err: errors.New("annotator exploded")}
	tagger := NewTagger(NewExtractor(annotator, 3), DefaultTaxonomy(), nil)

	reviews := []domain.ScoredReview{
		{CleanReview: domain.CleanReview{CleanContent: "something long enough"}},
	}

	out, stats := tagger.Run(reviews)
	if stats.ExtractionErrors != 1 {
		t.Fatalf("expected 1 extraction error, got %d", stats.ExtractionErrors)
	}
	if len(out) != 1 {
		t.Fatalf("batch must not shrink, got %d rows", len(out))
	}
	if len(out[0].Themes) == 0 {
		t.Fatalf("themes must never be empty")
	}
	if out[0].Themes[0] != FallbackTheme {
		t.Fatalf("expected %s, got %v", FallbackTheme, out[0].Themes)
	}
}

func TestTaggerRunAssignsFromKeywords(t *testing.T) {
	t.Parallel()

	annotator := &fakeAnnotator{tokens: []nlp.Token{
		{Text: "transfer", Lemma: "transfer", POS: nlp.POSNoun},
		{Text: "failed", Lemma: "fail", POS: nlp.POSVerb},
	}}
	tagger := NewTagger(NewExtractor(annotator, 3), DefaultTaxonomy(), nil)

	out, _ := tagger.Run([]domain.ScoredReview{
		{CleanReview: domain.CleanReview{CleanContent: "transfer failed"}},
	})

	if len(out[0].Themes) != 1 || out[0].Themes[0] != "transaction_issues" {
		t.Fatalf("expected [transaction_issues], got %v", out[0].Themes)
	}
	if len(out[0].Keywords) != 2 {
		t.Fatalf("expected 2 keywords, got %v", out[0].Keywords)
	}
}
