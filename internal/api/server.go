// Package api exposes the scoring service over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/jonloone/nx1-space-sub002/internal/service"
)

// Server routes scoring requests to the service layer.
type Server struct {
	scorer *service.Scorer
}

// NewServer creates a Server around a wired scorer.
func NewServer(scorer *service.Scorer) *Server {
	return &Server{scorer: scorer}
}

// Router builds the HTTP route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(v1 chi.Router) {
		v1.Get("/score", s.handleScore)
		v1.Post("/batch", s.handleBatch)
		v1.Get("/metrics", s.handleMetrics)
		v1.Post("/mode", s.handleMode)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScore scores the cell containing ?lat=&lon=. While scoring is
// inactive it answers 503 rather than an empty success.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lat")
		return
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lon")
		return
	}

	result, err := s.scorer.Score(r.Context(), lat, lon)
	if err != nil {
		zap.L().Error("api: score failed",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(err),
		)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if result == nil {
		writeError(w, http.StatusServiceUnavailable, "scoring is not active")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type batchRequest struct {
	Coordinates []service.Coordinate `json:"coordinates"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Coordinates) == 0 {
		writeError(w, http.StatusBadRequest, "coordinates are required")
		return
	}

	result, err := s.scorer.ScoreBatch(r.Context(), req.Coordinates, nil)
	if err != nil {
		zap.L().Error("api: batch failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if result == nil {
		writeError(w, http.StatusServiceUnavailable, "scoring is not active")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.scorer.Snapshot())
}

type modeRequest struct {
	Active bool `json:"active"`
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Active {
		s.scorer.Activate()
	} else {
		s.scorer.Deactivate()
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": s.scorer.Active()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
