package themes

import (
	"strings"

	"ReviewLens/internal/nlp"
	"ReviewLens/internal/normalize"
)

// defaultMinTextLength mirrors the classifier's short-text cutoff.
const defaultMinTextLength = 3

// Extractor turns cleaned review text into an ordered keyword
// sequence. Duplicates are kept; downstream word-cloud weighting
// depends on frequency.
type Extractor struct {
	annotator     nlp.Annotator
	minTextLength int
}

// NewExtractor wires the annotator; minTextLength <= 0 uses the default.
func NewExtractor(annotator nlp.Annotator, minTextLength int) *Extractor {
	if minTextLength <= 0 {
		minTextLength = defaultMinTextLength
	}
	return &Extractor{annotator: annotator, minTextLength: minTextLength}
}

// Extract reapplies the normalizer's cleaning rule (input may come
// from an older stage run), lower-cases, then keeps lemmas of nouns,
// verbs, and adjectives that are not stop words. A noun directly
// modifying a following noun is emitted as a joined compound lemma
// instead of its own lemma; the head noun still contributes its own
// lemma when visited.
func (e *Extractor) Extract(text string) ([]string, error) {
	text = strings.ToLower(normalize.CleanText(text))
	if len(text) < e.minTextLength {
		return nil, nil
	}

	tokens, err := e.annotator.Annotate(text)
	if err != nil {
		return nil, err
	}

	var keywords []string
	for i, tok := range tokens {
		if !retainedPOS(tok.POS) || tok.Stop {
			continue
		}

		if tok.POS == nlp.POSNoun && i+1 < len(tokens) && tokens[i+1].POS == nlp.POSNoun {
			keywords = append(keywords, tok.Lemma+"_"+tokens[i+1].Lemma)
			continue
		}

		if len(tok.Lemma) > 2 {
			keywords = append(keywords, strings.ToLower(tok.Lemma))
		}
	}
	return keywords, nil
}

func retainedPOS(pos string) bool {
	switch pos {
	case nlp.POSNoun, nlp.POSVerb, nlp.POSAdjective:
		return true
	}
	return false
}
