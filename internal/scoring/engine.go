package scoring

import (
	"context"
	"fmt"

	"journal-risk-eval/backend/internal/domaintrust"
)

// EngineConfig configures the assessment engine.
type EngineConfig struct {
	// PhrasesPath points at the predatory phrase vocabulary JSON.
	PhrasesPath string
	// Policy overrides the default point values. Zero value means defaults.
	Policy Policy
	// Predictor is the optional ML overlay. Nil disables it.
	Predictor Predictor
}

// Engine runs the full assessment pipeline: feature extraction, the eight
// dimension scorers, critical issue detection and aggregation.
type Engine struct {
	extractor  *Extractor
	policy     Policy
	aggregator *Aggregator
}

// NewEngine loads the phrase vocabulary and wires the pipeline.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	extractor, err := NewExtractor(cfg.PhrasesPath)
	if err != nil {
		return nil, fmt.Errorf("signal extractor: %w", err)
	}

	policy := cfg.Policy
	if policy == (Policy{}) {
		policy = DefaultPolicy()
	}

	return &Engine{
		extractor:  extractor,
		policy:     policy,
		aggregator: NewAggregator(policy, cfg.Predictor),
	}, nil
}

// Assess scores one captured journal page. analysis carries the domain
// lookups and may be nil when they were skipped; the aggregator then
// redistributes that dimension's weight.
func (e *Engine) Assess(ctx context.Context, bundle Bundle, analysis *domaintrust.Analysis) Result {
	features := e.extractor.Extract(bundle)
	scores := ScoreAll(features, analysis, e.policy)
	critical := DetectCriticalIssues(features, analysis, e.policy.Critical)

	failed := 0
	domainRisk := 0.0
	if analysis != nil {
		failed = len(analysis.FailedLookups)
		domainRisk = analysis.RiskScore
	}

	mlInput := PredictionInput{
		Domain:          bundle.Domain,
		Title:           bundle.Title,
		WordCount:       features.Content.WordCount,
		HasSSL:          features.Technical.HasSSL,
		PhraseMatches:   len(features.Content.PredatoryPhrases),
		BoardSize:       features.Editorial.BoardSize,
		FeesDisclosed:   features.Fees.Disclosed,
		DomainRiskScore: domainRisk,
		DimensionScores: make(map[string]float64, len(scores)),
	}
	for _, ds := range scores {
		mlInput.DimensionScores[string(ds.Category)] = ds.Score
	}

	return e.aggregator.Aggregate(ctx, AggregateInput{
		Scores:        scores,
		Critical:      critical,
		FailedLookups: failed,
		MLInput:       mlInput,
	})
}

// Extract exposes raw feature extraction for callers that want the
// intermediate representation.
func (e *Engine) Extract(bundle Bundle) FeatureSet {
	return e.extractor.Extract(bundle)
}

// Policy returns the point values the engine scores with.
func (e *Engine) Policy() Policy {
	return e.policy
}

// PhraseCount reports the size of the loaded phrase vocabulary.
func (e *Engine) PhraseCount() int {
	return e.extractor.PhraseCount()
}

// MLEnabled reports whether the engine will attach ML predictions.
func (e *Engine) MLEnabled() bool {
	return e.aggregator.MLEnabled()
}
