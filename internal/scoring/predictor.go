package scoring

import "context"

// Prediction is the optional ML overlay attached to a Result. It never
// feeds back into the deterministic fields.
type Prediction struct {
	PredatoryScore     float64 `json:"predatory_score"`
	EnsemblePrediction string  `json:"ensemble_prediction"`
}

// PredictionInput is the feature snapshot handed to a Predictor.
type PredictionInput struct {
	Domain          string             `json:"domain"`
	Title           string             `json:"title"`
	WordCount       int                `json:"word_count"`
	HasSSL          bool               `json:"has_ssl"`
	PhraseMatches   int                `json:"phrase_matches"`
	BoardSize       int                `json:"board_size"`
	FeesDisclosed   bool               `json:"fees_disclosed"`
	DomainRiskScore float64            `json:"domain_risk_score"`
	DimensionScores map[string]float64 `json:"dimension_scores"`
}

// Predictor produces an advisory ML prediction for an assessed journal.
// Implementations must be safe for concurrent use.
type Predictor interface {
	Enabled() bool
	Predict(ctx context.Context, input PredictionInput) (Prediction, error)
}
