package ml

import (
	"context"

	"journal-risk-eval/backend/internal/scoring"
)

type predictorChain struct {
	primary  scoring.Predictor
	fallback scoring.Predictor
}

// WithFallback returns a predictor that first tries the primary
// implementation and falls back when the primary is unavailable or errors.
func WithFallback(primary, fallback scoring.Predictor) scoring.Predictor {
	if primary == nil {
		return fallback
	}
	if fallback == nil {
		return primary
	}
	return &predictorChain{primary: primary, fallback: fallback}
}

func (c *predictorChain) Enabled() bool {
	if c == nil {
		return false
	}
	if c.primary != nil && c.primary.Enabled() {
		return true
	}
	if c.fallback != nil && c.fallback.Enabled() {
		return true
	}
	return false
}

func (c *predictorChain) Predict(ctx context.Context, input scoring.PredictionInput) (scoring.Prediction, error) {
	if c == nil {
		return scoring.Prediction{}, ErrDisabled
	}
	if c.primary != nil && c.primary.Enabled() {
		if pred, err := c.primary.Predict(ctx, input); err == nil {
			return pred, nil
		}
	}
	if c.fallback != nil && c.fallback.Enabled() {
		return c.fallback.Predict(ctx, input)
	}
	return scoring.Prediction{}, ErrDisabled
}
