// Package service orchestrates the conditional scoring pipeline: mode
// gating, caching, land classification, concurrent analysis, aggregation,
// validation and batch execution.
package service

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jonloone/nx1-space-sub002/internal/analyze"
	"github.com/jonloone/nx1-space-sub002/internal/cache"
	"github.com/jonloone/nx1-space-sub002/internal/config"
	"github.com/jonloone/nx1-space-sub002/internal/grid"
	"github.com/jonloone/nx1-space-sub002/internal/land"
	"github.com/jonloone/nx1-space-sub002/internal/model"
	"github.com/jonloone/nx1-space-sub002/internal/predict"
	"github.com/jonloone/nx1-space-sub002/internal/scoring"
	"github.com/jonloone/nx1-space-sub002/internal/validation"
)

// Water cells get a fixed low-value profile instead of a full analysis.
const (
	waterScoreValue      = 10.0
	waterScoreConfidence = 0.95
)

// Model predictions refine rather than replace the heuristic score.
const predictBlendWeight = 0.3

// Scorer runs the full conditional scoring pipeline for single cells.
// All collaborators are injected; tests swap in fakes freely.
type Scorer struct {
	cfg        *config.Config
	resolver   grid.Resolver
	classifier land.Classifier
	analyzers  analyze.Analyzers
	validator  *validation.Validator
	cache      *cache.ScoreCache
	predictor  *predict.Client

	active  atomic.Bool
	flight  singleflight.Group
	metrics Metrics
}

// NewScorer wires a Scorer from its collaborators. The predictor may be nil.
func NewScorer(
	cfg *config.Config,
	resolver grid.Resolver,
	classifier land.Classifier,
	analyzers analyze.Analyzers,
	validator *validation.Validator,
	scoreCache *cache.ScoreCache,
	predictor *predict.Client,
) (*Scorer, error) {
	if !analyzers.Complete() {
		return nil, eris.New("service: all five analyzers are required")
	}
	if ws := cfg.Scoring.WeightSum(); ws < 0.999 || ws > 1.001 {
		return nil, eris.Errorf("service: component weights sum to %.4f, want 1.0", ws)
	}
	return &Scorer{
		cfg:        cfg,
		resolver:   resolver,
		classifier: classifier,
		analyzers:  analyzers,
		validator:  validator,
		cache:      scoreCache,
		predictor:  predictor,
	}, nil
}

// Activate turns scoring on.
func (s *Scorer) Activate() {
	if s.active.CompareAndSwap(false, true) {
		zap.L().Info("service: scoring activated")
	}
}

// Deactivate turns scoring off and purges cached results so a later
// activation starts from fresh computations.
func (s *Scorer) Deactivate() {
	if s.active.CompareAndSwap(true, false) {
		s.cache.PurgeAll()
		zap.L().Info("service: scoring deactivated, cache purged")
	}
}

// Active reports the mode gate position.
func (s *Scorer) Active() bool { return s.active.Load() }

// Score computes the conditional opportunity score for the cell containing
// the coordinate. While scoring is inactive it returns (nil, nil): absent,
// not failed. Concurrent requests for the same cell share one computation.
func (s *Scorer) Score(ctx context.Context, lat, lon float64) (*model.ConditionalOpportunityScore, error) {
	if !s.active.Load() {
		return nil, nil
	}
	if !model.ValidCoordinate(lat, lon) {
		return nil, eris.Errorf("service: invalid coordinate (%.4f, %.4f)", lat, lon)
	}

	cell, err := s.resolver.Cell(lat, lon)
	if err != nil {
		return nil, eris.Wrap(err, "service: resolve cell")
	}

	key := s.cacheKey(cell.ID)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.CacheHits.Add(1)
		return cached, nil
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		// A sibling request may have populated the cache while this call
		// waited on the flight group. The outer Get already counted the
		// miss, so this check peeks.
		if cached, ok := s.cache.Peek(key); ok {
			s.metrics.CacheHits.Add(1)
			return cached, nil
		}
		result, err := s.compute(ctx, cell, key)
		if err != nil {
			return nil, err
		}
		s.cache.Put(key, result)
		return result, nil
	})
	if err != nil {
		s.metrics.Failures.Add(1)
		return nil, err
	}
	return v.(*model.ConditionalOpportunityScore), nil
}

func (s *Scorer) compute(ctx context.Context, cell model.SpatialCell, key string) (*model.ConditionalOpportunityScore, error) {
	started := time.Now()

	coverage, err := s.classifier.Coverage(ctx, cell.Boundary)
	if err != nil {
		return nil, eris.Wrapf(err, "service: land coverage for cell %s", cell.ID)
	}

	if coverage < s.cfg.Land.MinCoveragePct {
		s.metrics.WaterShortCircuits.Add(1)
		result := s.waterProfile(cell, coverage, key, started)
		zap.L().Debug("service: water cell short-circuit",
			zap.String("cell", cell.ID),
			zap.Float64("land_pct", coverage),
		)
		return result, nil
	}

	analyses, err := s.runAnalyzers(ctx, cell)
	if err != nil {
		return nil, eris.Wrapf(err, "service: analyze cell %s", cell.ID)
	}

	components := scoring.ScoreComponents(analyses)
	components.Overall = scoring.Aggregate(components, s.cfg.Scoring)

	s.refineWithModel(ctx, cell, &components)

	revenue := scoring.ProjectRevenue(components.Overall.Value, s.cfg.Scoring)
	financial := scoring.ProjectFinancials(revenue, components.Overall.Value, components.Risk.Value, s.cfg.Scoring)

	result := &model.ConditionalOpportunityScore{
		Cell:            cell,
		Scores:          components,
		Classification:  scoring.Classify(components.Overall.Value),
		Priority:        scoring.Prioritize(components.Overall.Value, financial.ROIPct),
		Revenue:         revenue,
		Financial:       financial,
		Analyses:        analyses,
		LandCoveragePct: coverage,
		LastUpdated:     time.Now(),
		CacheKey:        key,
	}

	if s.validator != nil {
		val, err := s.validator.Validate(ctx, validation.Context{
			Lat:        cell.CenterLat,
			Lon:        cell.CenterLon,
			Overall:    components.Overall,
			Components: components,
			Weights:    s.cfg.Scoring,
			Resimulate: s.Resimulate,
		})
		if err != nil {
			s.metrics.ValidationFailures.Add(1)
			return nil, eris.Wrapf(err, "service: validate cell %s", cell.ID)
		}
		result.Validation = val
	}

	result.ComputationTimeMs = time.Since(started).Milliseconds()
	s.metrics.Scored.Add(1)
	s.metrics.ComputeMs.Add(result.ComputationTimeMs)

	zap.L().Info("service: cell scored",
		zap.String("cell", cell.ID),
		zap.Float64("overall", components.Overall.Value),
		zap.String("classification", string(result.Classification)),
		zap.String("priority", string(result.Priority)),
		zap.Int64("ms", result.ComputationTimeMs),
	)
	return result, nil
}

// runAnalyzers executes the five domain analyses concurrently. One failure
// fails the cell; partial analysis sets never reach scoring.
func (s *Scorer) runAnalyzers(ctx context.Context, cell model.SpatialCell) (*model.AnalysisSet, error) {
	lat, lon := cell.CenterLat, cell.CenterLon
	set := &model.AnalysisSet{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		set.Proximity, err = s.analyzers.Proximity.AnalyzeProximity(gctx, lat, lon)
		return err
	})
	g.Go(func() (err error) {
		set.Competitive, err = s.analyzers.Competitive.AnalyzeCompetitive(gctx, lat, lon)
		return err
	})
	g.Go(func() (err error) {
		set.Market, err = s.analyzers.Market.AnalyzeMarket(gctx, lat, lon)
		return err
	})
	g.Go(func() (err error) {
		set.Maritime, err = s.analyzers.Maritime.AnalyzeMaritime(gctx, lat, lon, cell.AreaKm2)
		return err
	})
	g.Go(func() (err error) {
		set.Risk, err = s.analyzers.Risk.AnalyzeRisk(gctx, lat, lon)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return set, nil
}

// refineWithModel blends in the external model's estimate when the service
// is reachable. Any failure leaves the heuristic score untouched.
func (s *Scorer) refineWithModel(ctx context.Context, cell model.SpatialCell, components *model.ComponentScoreSet) {
	if s.predictor == nil || !s.predictor.Available() {
		return
	}
	resp, err := s.predictor.Predict(ctx, predict.PredictionRequest{
		Lat: cell.CenterLat,
		Lon: cell.CenterLon,
		ComponentScore: map[string]float64{
			"proximity":   components.Proximity.Value,
			"competitive": components.Competitive.Value,
			"market":      components.Market.Value,
			"maritime":    components.Maritime.Value,
			"risk":        components.Risk.Value,
		},
	})
	if err != nil {
		zap.L().Warn("service: prediction unavailable, using heuristic score",
			zap.String("cell", cell.ID),
			zap.Error(err),
		)
		return
	}
	if math.IsNaN(resp.Score) || resp.Score < 0 || resp.Score > 100 {
		zap.L().Warn("service: model score out of range, using heuristic score",
			zap.String("cell", cell.ID),
			zap.String("model", resp.ModelID),
			zap.Float64("score", resp.Score),
		)
		return
	}

	blended := (1-predictBlendWeight)*components.Overall.Value + predictBlendWeight*resp.Score
	shift := blended - components.Overall.Value
	components.Overall.Value = blended
	components.Overall.Interval.Low = clampScore(components.Overall.Interval.Low + shift)
	components.Overall.Interval.High = clampScore(components.Overall.Interval.High + shift)
	zap.L().Debug("service: score refined by model",
		zap.String("cell", cell.ID),
		zap.String("model", resp.ModelID),
		zap.Float64("shift", shift),
	)
}

// waterProfile is the fixed result for cells that are mostly water. No
// analyzers run and no validation is attached.
func (s *Scorer) waterProfile(cell model.SpatialCell, coverage float64, key string, started time.Time) *model.ConditionalOpportunityScore {
	fixed := model.OpportunityScore{
		Value:      waterScoreValue,
		Confidence: waterScoreConfidence,
		Interval:   model.ConfidenceInterval{Low: waterScoreValue, High: waterScoreValue},
	}
	components := model.ComponentScoreSet{
		Proximity:   fixed,
		Competitive: fixed,
		Market:      fixed,
		Maritime:    fixed,
		Risk:        fixed,
		Overall:     fixed,
	}

	revenue := scoring.ProjectRevenue(waterScoreValue, s.cfg.Scoring)
	financial := scoring.ProjectFinancials(revenue, waterScoreValue, waterScoreValue, s.cfg.Scoring)

	return &model.ConditionalOpportunityScore{
		Cell:              cell,
		Scores:            components,
		Classification:    model.ClassificationExploration,
		Priority:          model.PriorityAvoid,
		Revenue:           revenue,
		Financial:         financial,
		LandCoveragePct:   coverage,
		ComputationTimeMs: time.Since(started).Milliseconds(),
		LastUpdated:       time.Now(),
		CacheKey:          key,
	}
}

// Resimulate recomputes an overall score for a coordinate without caching or
// validation. Monte Carlo perturbation runs through it.
func (s *Scorer) Resimulate(ctx context.Context, lat, lon float64) (float64, error) {
	if !model.ValidCoordinate(lat, lon) {
		return 0, eris.Errorf("service: invalid coordinate (%.4f, %.4f)", lat, lon)
	}
	cell, err := s.resolver.Cell(lat, lon)
	if err != nil {
		return 0, eris.Wrap(err, "service: resolve cell")
	}

	coverage, err := s.classifier.Coverage(ctx, cell.Boundary)
	if err != nil {
		return 0, eris.Wrap(err, "service: land coverage")
	}
	if coverage < s.cfg.Land.MinCoveragePct {
		return waterScoreValue, nil
	}

	analyses, err := s.runAnalyzers(ctx, cell)
	if err != nil {
		return 0, err
	}
	components := scoring.ScoreComponents(analyses)
	return scoring.Aggregate(components, s.cfg.Scoring).Value, nil
}

func clampScore(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}

// CacheStats exposes cache effectiveness for the metrics surface.
func (s *Scorer) CacheStats() cache.Stats { return s.cache.Stats() }

// cacheKey builds the structured key for a cell under the current scoring
// context. Context changes invalidate by key divergence, not by purge.
func (s *Scorer) cacheKey(cellID string) string {
	sc := s.cfg.Scoring
	return cache.BuildKey(cellID, map[string]string{
		"res":      fmt.Sprintf("%d", s.cfg.Grid.Resolution),
		"w_prox":   fmt.Sprintf("%.4f", sc.ProximityWeight),
		"w_comp":   fmt.Sprintf("%.4f", sc.CompetitiveWeight),
		"w_market": fmt.Sprintf("%.4f", sc.MarketWeight),
		"w_mar":    fmt.Sprintf("%.4f", sc.MaritimeWeight),
		"w_risk":   fmt.Sprintf("%.4f", sc.RiskWeight),
		"land_min": fmt.Sprintf("%.1f", s.cfg.Land.MinCoveragePct),
	})
}
