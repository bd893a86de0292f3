package domain

// Sentiment labels a review's overall tone. The underlying model is
// binary; Neutral is synthesized from low decisiveness or assigned as
// the fallback sentinel.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// DateUnknown marks a review date that could not be parsed into the
// canonical YYYY-MM-DD form. Such rows survive normalization but are
// skipped at persistence time because the schema requires a date.
const DateUnknown = "unknown"

// NeutralSentinelScore is reported when classification is skipped or fails.
const NeutralSentinelScore = 0.5

// RawReview is a review record exactly as captured from a provider.
// Immutable once captured.
type RawReview struct {
	Bank    string
	Content string
	Rating  int
	Date    string // provider format, possibly empty
	Source  string
}

// CleanReview is a RawReview that survived normalization. CleanContent
// is never empty for a surviving row, Rating is within [1,5], and Date
// is either canonical YYYY-MM-DD or DateUnknown.
type CleanReview struct {
	RawReview
	CleanContent string
}

// ScoredReview carries the sentiment decision for one review. Score is
// the confidence of the winning label, or NeutralSentinelScore when
// the classifier was skipped or failed.
type ScoredReview struct {
	CleanReview
	Sentiment Sentiment
	Score     float64
}

// ThemedReview is the final labeled record. Keywords preserve
// appearance order and duplicates; Themes always holds at least one
// label, falling back to "other".
type ThemedReview struct {
	ScoredReview
	Keywords []string
	Themes   []string
}

// SentimentScores is the model output pair; the two confidences sum to
// approximately 1.
type SentimentScores struct {
	Positive float64
	Negative float64
}

// Bank is a tracked entity in the persisted catalog, keyed by its
// surrogate ID with a unique name.
type Bank struct {
	ID   int64
	Name string
}
