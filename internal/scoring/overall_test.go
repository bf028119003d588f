package scoring

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
)

func uniformScores(value float64) []DimensionScore {
	scores := make([]DimensionScore, 0, len(Categories()))
	for _, cat := range Categories() {
		scores = append(scores, DimensionScore{Category: cat, Score: value, Weight: WeightFor(cat)})
	}
	return scores
}

func dropCategory(scores []DimensionScore, cat Category) []DimensionScore {
	out := make([]DimensionScore, 0, len(scores))
	for _, ds := range scores {
		if ds.Category == cat {
			continue
		}
		out = append(out, ds)
	}
	return out
}

type stubPredictor struct {
	pred  Prediction
	err   error
	calls int
}

func (s *stubPredictor) Enabled() bool { return true }

func (s *stubPredictor) Predict(_ context.Context, _ PredictionInput) (Prediction, error) {
	s.calls++
	return s.pred, s.err
}

func TestAggregateTierBoundaries(t *testing.T) {
	agg := NewAggregator(DefaultPolicy(), nil)

	cases := []struct {
		name  string
		value float64
		exact bool
		level RiskLevel
	}{
		{name: "floor of scale", value: 0, exact: true, level: RiskVeryLow},
		{name: "just below low", value: 19.9, level: RiskVeryLow},
		{name: "low boundary", value: 20, exact: true, level: RiskLow},
		{name: "just below moderate", value: 39.9, level: RiskLow},
		{name: "moderate boundary", value: 40, exact: true, level: RiskModerate},
		{name: "just below high", value: 59.9, level: RiskModerate},
		{name: "high boundary", value: 60, exact: true, level: RiskHigh},
		{name: "just below very high", value: 79.9, level: RiskHigh},
		{name: "very high boundary", value: 80, exact: true, level: RiskVeryHigh},
		{name: "ceiling of scale", value: 100, exact: true, level: RiskVeryHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := agg.Aggregate(context.Background(), AggregateInput{Scores: uniformScores(tc.value)})
			if tc.exact {
				if got.OverallScore != tc.value {
					t.Fatalf("overall = %v, want exactly %v", got.OverallScore, tc.value)
				}
			} else if math.Abs(got.OverallScore-tc.value) > 1e-9 {
				t.Fatalf("overall = %v, want %v", got.OverallScore, tc.value)
			}
			if got.RiskLevel != tc.level {
				t.Fatalf("risk level = %q, want %q", got.RiskLevel, tc.level)
			}
			if got.Recommendation != RecommendationFor(tc.level) {
				t.Fatalf("recommendation = %q, want the fixed text for %q", got.Recommendation, tc.level)
			}
		})
	}
}

func TestAggregateMonotonic(t *testing.T) {
	agg := NewAggregator(DefaultPolicy(), nil)
	base := agg.Aggregate(context.Background(), AggregateInput{Scores: uniformScores(30)})

	for _, cat := range Categories() {
		scores := uniformScores(30)
		for i := range scores {
			if scores[i].Category == cat {
				scores[i].Score = 90
			}
		}
		got := agg.Aggregate(context.Background(), AggregateInput{Scores: scores})
		if got.OverallScore <= base.OverallScore {
			t.Fatalf("raising %s did not raise overall: %v <= %v", cat, got.OverallScore, base.OverallScore)
		}
	}
}

func TestAggregateCriticalFloor(t *testing.T) {
	agg := NewAggregator(DefaultPolicy(), nil)
	issue := CriticalIssue{Label: "Requires payment before peer review", Floor: 70}

	got := agg.Aggregate(context.Background(), AggregateInput{
		Scores:   uniformScores(25),
		Critical: []CriticalIssue{issue},
	})
	if got.OverallScore != 70 {
		t.Fatalf("overall = %v, want floor 70", got.OverallScore)
	}
	if got.RiskLevel != RiskHigh {
		t.Fatalf("risk level = %q, want %q", got.RiskLevel, RiskHigh)
	}
	if len(got.CriticalIssues) != 1 || got.CriticalIssues[0] != issue.Label {
		t.Fatalf("critical issues = %v, want the floor's label", got.CriticalIssues)
	}

	above := agg.Aggregate(context.Background(), AggregateInput{
		Scores:   uniformScores(90),
		Critical: []CriticalIssue{issue},
	})
	if above.OverallScore != 90 {
		t.Fatalf("overall = %v, want weighted sum 90 to win over floor", above.OverallScore)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	agg := NewAggregator(DefaultPolicy(), nil)
	scores := uniformScores(42)
	scores[0].Evidence = []string{"No editorial board information found"}
	scores[0].warnings = []string{"No editorial board information found"}
	input := AggregateInput{
		Scores:        scores,
		Critical:      []CriticalIssue{{Label: "Guarantees acceptance of submissions", Floor: 75}},
		FailedLookups: 1,
	}

	first := agg.Aggregate(context.Background(), input)
	second := agg.Aggregate(context.Background(), input)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same input produced different results:\n%+v\n%+v", first, second)
	}
}

func TestAggregateMissingDimension(t *testing.T) {
	agg := NewAggregator(DefaultPolicy(), nil)
	full := agg.Aggregate(context.Background(), AggregateInput{Scores: uniformScores(50)})
	partial := agg.Aggregate(context.Background(), AggregateInput{
		Scores: dropCategory(uniformScores(50), CategoryDomainAnalysis),
	})

	if math.Abs(partial.OverallScore-50) > 1e-9 {
		t.Fatalf("renormalized overall = %v, want 50", partial.OverallScore)
	}
	if len(partial.DimensionScores) != 7 {
		t.Fatalf("dimension count = %d, want 7", len(partial.DimensionScores))
	}

	var weightSum float64
	for _, ds := range partial.DimensionScores {
		weightSum += ds.Weight
	}
	if math.Abs(weightSum-1.0) > 1e-9 {
		t.Fatalf("renormalized weights sum to %v, want 1.0", weightSum)
	}

	if partial.Confidence >= full.Confidence {
		t.Fatalf("partial confidence %v not below full confidence %v", partial.Confidence, full.Confidence)
	}
	wantPenalty := DefaultPolicy().Confidence.MissingDimensionPenalty
	if diff := full.Confidence - partial.Confidence; diff != wantPenalty {
		t.Fatalf("confidence penalty = %v, want %v", diff, wantPenalty)
	}
}

func TestAggregateConfidence(t *testing.T) {
	agg := NewAggregator(DefaultPolicy(), nil)

	t.Run("agreement bonus", func(t *testing.T) {
		got := agg.Aggregate(context.Background(), AggregateInput{Scores: uniformScores(10)})
		if got.Confidence != 80 {
			t.Fatalf("confidence = %v, want 80", got.Confidence)
		}
	})

	t.Run("disagreement penalty", func(t *testing.T) {
		scores := uniformScores(50)
		scores[0].Score = 5
		scores[1].Score = 95
		got := agg.Aggregate(context.Background(), AggregateInput{Scores: scores})
		if got.Confidence != 55 {
			t.Fatalf("confidence = %v, want 55", got.Confidence)
		}
	})

	t.Run("failed lookups", func(t *testing.T) {
		got := agg.Aggregate(context.Background(), AggregateInput{
			Scores:        uniformScores(10),
			FailedLookups: 2,
		})
		if got.Confidence != 70 {
			t.Fatalf("confidence = %v, want 70", got.Confidence)
		}
	})

	t.Run("clamped at zero", func(t *testing.T) {
		got := agg.Aggregate(context.Background(), AggregateInput{
			Scores:        uniformScores(10)[:1],
			FailedLookups: 5,
		})
		if got.Confidence != 0 {
			t.Fatalf("confidence = %v, want clamp at 0", got.Confidence)
		}
	})
}

func TestAggregateCollectsEvidence(t *testing.T) {
	agg := NewAggregator(DefaultPolicy(), nil)

	scores := uniformScores(50)
	for i := range scores {
		switch scores[i].Category {
		case CategoryBibliometric:
			scores[i].warnings = []string{"No ISSN found"}
		case CategoryEditorialBoard:
			scores[i].warnings = []string{"No editorial board information found"}
			scores[i].positives = []string{"Editor-in-chief identified"}
		}
	}
	// Reverse the input so the roll-up has to impose canonical order itself.
	for i, j := 0, len(scores)-1; i < j; i, j = i+1, j-1 {
		scores[i], scores[j] = scores[j], scores[i]
	}

	got := agg.Aggregate(context.Background(), AggregateInput{Scores: scores})

	wantWarnings := []string{"No editorial board information found", "No ISSN found"}
	if !reflect.DeepEqual(got.WarningFlags, wantWarnings) {
		t.Fatalf("warning flags = %v, want %v", got.WarningFlags, wantWarnings)
	}
	if !reflect.DeepEqual(got.PositiveIndicators, []string{"Editor-in-chief identified"}) {
		t.Fatalf("positive indicators = %v", got.PositiveIndicators)
	}

	empty := agg.Aggregate(context.Background(), AggregateInput{Scores: uniformScores(0)})
	if empty.WarningFlags == nil || empty.PositiveIndicators == nil || empty.CriticalIssues == nil {
		t.Fatal("evidence slices must be empty, not nil")
	}
}

func TestAggregateMLOverlay(t *testing.T) {
	input := AggregateInput{Scores: uniformScores(60)}
	plain := NewAggregator(DefaultPolicy(), nil).Aggregate(context.Background(), input)

	stub := &stubPredictor{pred: Prediction{PredatoryScore: 0.91, EnsemblePrediction: "predatory"}}
	got := NewAggregator(DefaultPolicy(), stub).Aggregate(context.Background(), input)

	if stub.calls != 1 {
		t.Fatalf("predictor called %d times, want 1", stub.calls)
	}
	if got.ML == nil || *got.ML != stub.pred {
		t.Fatalf("ml prediction = %+v, want %+v", got.ML, stub.pred)
	}
	got.ML = nil
	if !reflect.DeepEqual(got, plain) {
		t.Fatal("ml overlay altered deterministic fields")
	}

	failing := &stubPredictor{err: errors.New("model offline")}
	degraded := NewAggregator(DefaultPolicy(), failing).Aggregate(context.Background(), input)
	if degraded.ML != nil {
		t.Fatalf("ml prediction = %+v, want nil on predictor error", degraded.ML)
	}
	if !reflect.DeepEqual(degraded, plain) {
		t.Fatal("predictor failure altered deterministic fields")
	}
}
