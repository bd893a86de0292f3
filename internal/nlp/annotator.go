package nlp

import (
	"fmt"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/jdkato/prose/v2"
)

// Part-of-speech classes retained by keyword extraction.
const (
	POSNoun      = "NOUN"
	POSVerb      = "VERB"
	POSAdjective = "ADJ"
	POSOther     = "OTHER"
)

// Token is one annotated word of a review.
type Token struct {
	Text  string
	Lemma string
	POS   string
	Stop  bool
}

// Annotator tokenizes and tags text. The production implementation
// wraps the prose tagger and the golem lemmatizer; tests substitute a
// fixed-output fake so extraction rules stay deterministic.
type Annotator interface {
	Annotate(text string) ([]Token, error)
}

// ProseAnnotator annotates with prose POS tags and golem lemmas. It is
// read-only after construction and safe to share across a batch.
type ProseAnnotator struct {
	lemmatizer *golem.Lemmatizer
}

var _ Annotator = (*ProseAnnotator)(nil)

// NewProseAnnotator loads the English lemmatizer dictionary once.
func NewProseAnnotator() (*ProseAnnotator, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load lemmatizer: %w", err)
	}
	return &ProseAnnotator{lemmatizer: lem}, nil
}

// Annotate tokenizes and POS-tags the text.
func (a *ProseAnnotator) Annotate(text string) ([]Token, error) {
	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, fmt.Errorf("annotate text: %w", err)
	}

	raw := doc.Tokens()
	tokens := make([]Token, 0, len(raw))
	for _, tok := range raw {
		lemma := a.lemmatizer.Lemma(tok.Text)
		tokens = append(tokens, Token{
			Text:  tok.Text,
			Lemma: strings.ToLower(lemma),
			POS:   classFromPennTag(tok.Tag),
			Stop:  IsStopWord(tok.Text),
		})
	}
	return tokens, nil
}

// classFromPennTag folds Penn Treebank tags into the coarse classes
// the extraction rules operate on.
func classFromPennTag(tag string) string {
	switch {
	case strings.HasPrefix(tag, "NN"):
		return POSNoun
	case strings.HasPrefix(tag, "VB"):
		return POSVerb
	case strings.HasPrefix(tag, "JJ"):
		return POSAdjective
	default:
		return POSOther
	}
}
