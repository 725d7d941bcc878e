// Package predict talks to the optional external scoring-model service.
// The service refines heuristic scores with a trained model; when it is
// down or disabled, callers fall back to the heuristic score unchanged.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/jonloone/nx1-space-sub002/internal/config"
	"github.com/jonloone/nx1-space-sub002/internal/resilience"
)

const (
	breakerThreshold = 3
	breakerCooldown  = 30 * time.Second
)

// PredictionRequest carries the features the model scores on.
type PredictionRequest struct {
	Lat            float64            `json:"lat"`
	Lon            float64            `json:"lon"`
	ComponentScore map[string]float64 `json:"component_scores"`
}

// PredictionResponse is the model's refined estimate.
type PredictionResponse struct {
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	ModelID    string  `json:"model_id"`
}

// TrainingExample is one labelled observation submitted for retraining.
type TrainingExample struct {
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	ObservedScore float64 `json:"observed_score"`
}

// Client calls the prediction service over HTTP behind a circuit breaker.
type Client struct {
	baseURL string
	client  *http.Client
	breaker *resilience.Breaker
}

// NewClient builds a Client from configuration. Returns nil when the
// service is disabled; callers treat a nil client as "heuristics only".
func NewClient(cfg config.PredictConfig) *Client {
	if !cfg.Enabled || cfg.BaseURL == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
		breaker: resilience.NewBreaker("predict", breakerThreshold, breakerCooldown),
	}
}

// Predict asks the model for a refined score. Errors include circuit
// rejections; callers should fall back to the heuristic score on any error.
func (c *Client) Predict(ctx context.Context, req PredictionRequest) (*PredictionResponse, error) {
	var resp PredictionResponse
	err := c.breaker.Do(func() error {
		return c.post(ctx, "/v1/predict", req, &resp)
	})
	if err != nil {
		return nil, eris.Wrap(err, "predict: prediction request")
	}
	return &resp, nil
}

// Train submits labelled examples for model retraining.
func (c *Client) Train(ctx context.Context, examples []TrainingExample) error {
	err := c.breaker.Do(func() error {
		return c.post(ctx, "/v1/train", examples, nil)
	})
	if err != nil {
		return eris.Wrap(err, "predict: training request")
	}
	zap.L().Info("predict: training batch submitted",
		zap.Int("examples", len(examples)),
	)
	return nil
}

// Available reports whether the breaker would currently admit a call.
func (c *Client) Available() bool {
	return c != nil && c.breaker.State() != resilience.StateOpen
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "predict: marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "predict: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "predict: http call")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return eris.Errorf("predict: unexpected status %d from %s", resp.StatusCode, path)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrap(err, "predict: decode response")
	}
	return nil
}
