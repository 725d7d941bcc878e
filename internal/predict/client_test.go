package predict

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonloone/nx1-space-sub002/internal/config"
)

func enabledConfig(baseURL string) config.PredictConfig {
	return config.PredictConfig{
		BaseURL: baseURL,
		Timeout: time.Second,
		Enabled: true,
	}
}

func TestNewClient_DisabledReturnsNil(t *testing.T) {
	assert.Nil(t, NewClient(config.PredictConfig{Enabled: false, BaseURL: "http://x"}))
	assert.Nil(t, NewClient(config.PredictConfig{Enabled: true}))
}

func TestPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/predict", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req PredictionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.InDelta(t, 1.29, req.Lat, 1e-9)

		_ = json.NewEncoder(w).Encode(PredictionResponse{
			Score:      72.5,
			Confidence: 0.9,
			ModelID:    "m-1",
		})
	}))
	defer srv.Close()

	c := NewClient(enabledConfig(srv.URL))
	require.NotNil(t, c)

	resp, err := c.Predict(context.Background(), PredictionRequest{
		Lat: 1.29, Lon: 103.85,
		ComponentScore: map[string]float64{"market": 70},
	})
	require.NoError(t, err)
	assert.InDelta(t, 72.5, resp.Score, 1e-9)
	assert.Equal(t, "m-1", resp.ModelID)
	assert.True(t, c.Available())
}

func TestPredict_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(enabledConfig(srv.URL))
	_, err := c.Predict(context.Background(), PredictionRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestPredict_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(enabledConfig(srv.URL))
	for range breakerThreshold {
		_, err := c.Predict(context.Background(), PredictionRequest{})
		require.Error(t, err)
	}

	assert.False(t, c.Available())

	// Calls now fail fast without reaching the server.
	_, err := c.Predict(context.Background(), PredictionRequest{})
	assert.Error(t, err)
}

func TestTrain(t *testing.T) {
	var got []TrainingExample
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/train", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(enabledConfig(srv.URL))
	err := c.Train(context.Background(), []TrainingExample{
		{Lat: 1, Lon: 2, ObservedScore: 75},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 75, got[0].ObservedScore, 1e-9)
}

func TestAvailable_NilClient(t *testing.T) {
	var c *Client
	assert.False(t, c.Available())
}
