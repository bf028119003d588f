package scoring

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"
)

// AggregateInput carries everything the aggregator folds into a Result.
type AggregateInput struct {
	Scores        []DimensionScore
	Critical      []CriticalIssue
	FailedLookups int
	MLInput       PredictionInput
}

// Aggregator turns dimension scores and critical issues into the final
// report. The weighted combination is deterministic; the optional ML
// prediction is attached afterwards and never alters it.
type Aggregator struct {
	policy    Policy
	predictor Predictor
}

// NewAggregator builds an Aggregator. predictor may be nil.
func NewAggregator(policy Policy, predictor Predictor) *Aggregator {
	return &Aggregator{policy: policy, predictor: predictor}
}

// MLEnabled reports whether a usable predictor is attached.
func (a *Aggregator) MLEnabled() bool {
	return a.predictor != nil && a.predictor.Enabled()
}

// Aggregate computes the overall score, tier, confidence and evidence roll-up.
//
// When dimensions are missing their weight is redistributed across the ones
// present, so a partial assessment still lands on the same 0-100 scale. With
// the full set the raw weights already sum to 1 and are used as-is, keeping
// band boundaries exact.
func (a *Aggregator) Aggregate(ctx context.Context, input AggregateInput) Result {
	var (
		weightedSum float64
		totalWeight float64
	)
	for _, ds := range input.Scores {
		weightedSum += ds.Score * ds.Weight
		totalWeight += ds.Weight
	}

	missing := len(Categories()) - len(input.Scores)
	if missing > 0 && totalWeight > 0 {
		weightedSum /= totalWeight
	}

	overall := clampScore(weightedSum)
	var floor float64
	for _, issue := range input.Critical {
		if issue.Floor > floor {
			floor = issue.Floor
		}
	}
	if floor > overall {
		overall = floor
	}

	level := ClassifyRisk(overall)

	dims := make(map[Category]DimensionScore, len(input.Scores))
	for _, ds := range input.Scores {
		if missing > 0 && totalWeight > 0 {
			ds.Weight = ds.Weight / totalWeight
		}
		dims[ds.Category] = ds
	}

	warnings := make([]string, 0)
	positives := make([]string, 0)
	for _, cat := range Categories() {
		ds, ok := dims[cat]
		if !ok {
			continue
		}
		warnings = append(warnings, ds.Warnings()...)
		positives = append(positives, ds.Positives()...)
	}

	critical := make([]string, 0, len(input.Critical))
	for _, issue := range input.Critical {
		critical = append(critical, issue.Label)
	}

	result := Result{
		OverallScore:       overall,
		RiskLevel:          level,
		Confidence:         a.confidence(input.Scores, missing, input.FailedLookups),
		Recommendation:     RecommendationFor(level),
		DimensionScores:    dims,
		WarningFlags:       warnings,
		PositiveIndicators: positives,
		CriticalIssues:     critical,
	}

	if a.predictor != nil && a.predictor.Enabled() {
		pred, err := a.predictor.Predict(ctx, input.MLInput)
		if err != nil {
			logrus.WithError(err).Warn("ml prediction unavailable")
		} else {
			result.ML = &pred
		}
	}

	return result
}

// confidence scores how much to trust the overall number: agreement across
// dimensions raises it, sharp disagreement lowers it, and every missing
// dimension or failed external lookup costs a fixed penalty.
func (a *Aggregator) confidence(scores []DimensionScore, missing, failedLookups int) float64 {
	p := a.policy.Confidence
	c := p.Base

	if len(scores) > 0 {
		low, high := scores[0].Score, scores[0].Score
		for _, ds := range scores[1:] {
			if ds.Score < low {
				low = ds.Score
			}
			if ds.Score > high {
				high = ds.Score
			}
		}
		if high-low <= p.AgreementSpread {
			c += p.AgreementBonus
		}
		if low < p.DisagreementLow && high > p.DisagreementHigh {
			c -= p.DisagreementPenalty
		}
	}

	if missing > 0 {
		c -= p.MissingDimensionPenalty * float64(missing)
	}
	if failedLookups > 0 {
		c -= p.FailedLookupPenalty * float64(failedLookups)
	}

	return clampScore(c)
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
