package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"journal-risk-eval/backend/internal/scoring"
)

// ErrDisabled is returned when no prediction service is configured.
var ErrDisabled = errors.New("ml predictor disabled")

// Config holds the prediction service parameters.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client implements scoring.Predictor against the external ensemble
// service. Its output is advisory: the deterministic pipeline never reads it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient constructs a Client if the supplied configuration is valid.
func NewClient(cfg Config) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, ErrDisabled
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
	}, nil
}

// Enabled reports whether the client can make outbound calls.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// Predict requests an ensemble prediction for the assessed journal.
func (c *Client) Predict(ctx context.Context, input scoring.PredictionInput) (scoring.Prediction, error) {
	if c == nil || !c.Enabled() {
		return scoring.Prediction{}, ErrDisabled
	}

	body, err := json.Marshal(input)
	if err != nil {
		return scoring.Prediction{}, fmt.Errorf("marshal prediction input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return scoring.Prediction{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return scoring.Prediction{}, fmt.Errorf("prediction request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return scoring.Prediction{}, fmt.Errorf("prediction status %d: %v", resp.StatusCode, apiErr)
	}

	var pred scoring.Prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return scoring.Prediction{}, fmt.Errorf("decode prediction: %w", err)
	}

	sanitizePrediction(&pred)
	return pred, nil
}

// sanitizePrediction clamps the score to [0,1] and normalizes the label so a
// misbehaving model cannot leak junk into stored reports.
func sanitizePrediction(pred *scoring.Prediction) {
	if pred == nil {
		return
	}
	pred.PredatoryScore = clampUnit(pred.PredatoryScore)
	label := strings.ToLower(strings.TrimSpace(pred.EnsemblePrediction))
	switch label {
	case "predatory", "legitimate", "uncertain":
		pred.EnsemblePrediction = label
	default:
		pred.EnsemblePrediction = labelForScore(pred.PredatoryScore)
	}
}

func labelForScore(score float64) string {
	switch {
	case score >= 0.7:
		return "predatory"
	case score <= 0.3:
		return "legitimate"
	default:
		return "uncertain"
	}
}

func clampUnit(value float64) float64 {
	if math.IsNaN(value) {
		return 0
	}
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
