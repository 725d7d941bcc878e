package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jonloone/nx1-space-sub002/internal/model"
)

// Coordinate is one batch scoring target.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ProgressFunc receives cumulative completion counts as chunks finish.
// total counts only the coordinates that actually need computation.
type ProgressFunc func(done, total int)

// CoordinateError records which batch entry failed and why.
type CoordinateError struct {
	Index int        `json:"index"`
	Coord Coordinate `json:"coordinate"`
	Err   string     `json:"error"`
}

// BatchResult is the outcome of one batch run. Ranked holds only the
// successfully scored cells, best first with 1-based ranks.
type BatchResult struct {
	RunID      string              `json:"run_id"`
	Ranked     []model.RankedScore `json:"ranked"`
	Requested  int                 `json:"requested"`
	Succeeded  int                 `json:"succeeded"`
	Failed     int                 `json:"failed"`
	CacheHits  int                 `json:"cache_hits"`
	Errors     []CoordinateError   `json:"errors,omitempty"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
}

// ScoreBatch scores many coordinates in rate-limited concurrent chunks.
// Individual failures are isolated; the run completes with whatever scored.
// While scoring is inactive it returns (nil, nil), same as Score.
func (s *Scorer) ScoreBatch(ctx context.Context, coords []Coordinate, progress ProgressFunc) (*BatchResult, error) {
	if !s.active.Load() {
		return nil, nil
	}

	result := &BatchResult{
		RunID:     uuid.NewString(),
		Requested: len(coords),
		StartedAt: time.Now(),
	}
	s.metrics.BatchRuns.Add(1)

	type target struct {
		index int
		coord Coordinate
	}

	// Cached cells resolve up front and never count toward progress.
	results := make([]*model.ConditionalOpportunityScore, len(coords))
	var pending []target
	for i, c := range coords {
		if !model.ValidCoordinate(c.Lat, c.Lon) {
			result.Errors = append(result.Errors, CoordinateError{
				Index: i, Coord: c,
				Err: "invalid coordinate",
			})
			continue
		}
		cell, err := s.resolver.Cell(c.Lat, c.Lon)
		if err != nil {
			result.Errors = append(result.Errors, CoordinateError{Index: i, Coord: c, Err: err.Error()})
			continue
		}
		if cached, ok := s.cache.Peek(s.cacheKey(cell.ID)); ok {
			results[i] = cached
			result.CacheHits++
			continue
		}
		pending = append(pending, target{index: i, coord: c})
	}

	total := len(pending)
	chunkSize := s.cfg.Batch.ChunkSize
	if chunkSize < 1 {
		chunkSize = 1
	}
	limiter := rate.NewLimiter(rate.Every(s.cfg.Batch.ChunkPause), 1)

	done := 0
	for start := 0; start < len(pending); start += chunkSize {
		end := start + chunkSize
		if end > len(pending) {
			end = len(pending)
		}
		chunk := pending[start:end]

		if start > 0 {
			if err := limiter.Wait(ctx); err != nil {
				return nil, eris.Wrap(err, "service: batch pause")
			}
		}

		var chunkErrs []CoordinateError
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.cfg.Batch.Concurrency)
		errCh := make(chan CoordinateError, len(chunk))
		for _, t := range chunk {
			g.Go(func() error {
				score, err := s.Score(gctx, t.coord.Lat, t.coord.Lon)
				if err != nil {
					errCh <- CoordinateError{Index: t.index, Coord: t.coord, Err: err.Error()}
					return nil
				}
				results[t.index] = score
				return nil
			})
		}
		_ = g.Wait()
		close(errCh)
		for e := range errCh {
			chunkErrs = append(chunkErrs, e)
		}
		result.Errors = append(result.Errors, chunkErrs...)

		done += len(chunk)
		if progress != nil {
			progress(done, total)
		}
	}

	for _, r := range results {
		if r != nil {
			result.Ranked = append(result.Ranked, model.RankedScore{Result: r})
		}
	}
	rankScores(result.Ranked)
	result.Succeeded = len(result.Ranked)
	result.Failed = len(result.Errors)
	result.FinishedAt = time.Now()

	zap.L().Info("service: batch complete",
		zap.String("run_id", result.RunID),
		zap.Int("requested", result.Requested),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Int("cache_hits", result.CacheHits),
		zap.Duration("elapsed", result.FinishedAt.Sub(result.StartedAt)),
	)
	return result, nil
}

// rankScores orders best-first and assigns 1-based ranks. Ties on overall
// value break on confidence, then on risk-adjusted score, then on cell ID
// so runs are reproducible.
func rankScores(ranked []model.RankedScore) {
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Result, ranked[j].Result
		if a.Scores.Overall.Value != b.Scores.Overall.Value {
			return a.Scores.Overall.Value > b.Scores.Overall.Value
		}
		if a.Scores.Overall.Confidence != b.Scores.Overall.Confidence {
			return a.Scores.Overall.Confidence > b.Scores.Overall.Confidence
		}
		if a.Financial.RiskAdjustedScore != b.Financial.RiskAdjustedScore {
			return a.Financial.RiskAdjustedScore > b.Financial.RiskAdjustedScore
		}
		return a.Cell.ID < b.Cell.ID
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
}
