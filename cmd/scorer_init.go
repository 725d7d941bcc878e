package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/jonloone/nx1-space-sub002/internal/analyze"
	"github.com/jonloone/nx1-space-sub002/internal/cache"
	"github.com/jonloone/nx1-space-sub002/internal/grid"
	"github.com/jonloone/nx1-space-sub002/internal/land"
	"github.com/jonloone/nx1-space-sub002/internal/predict"
	"github.com/jonloone/nx1-space-sub002/internal/service"
	"github.com/jonloone/nx1-space-sub002/internal/store"
	"github.com/jonloone/nx1-space-sub002/internal/validation"
)

// scorerEnv bundles the wired service and its optional collaborators.
type scorerEnv struct {
	Scorer *service.Scorer
	Store  *store.ResultStore
}

// Close releases held resources.
func (e *scorerEnv) Close() {
	if e.Store != nil {
		e.Store.Close()
	}
}

// initScorer wires the scoring service from configuration. The scorer comes
// back activated; commands exist to exercise it.
func initScorer(ctx context.Context) (*scorerEnv, error) {
	resolver, err := grid.NewH3Resolver(cfg.Grid.Resolution)
	if err != nil {
		return nil, eris.Wrap(err, "init resolver")
	}

	var classifier land.Classifier
	if cfg.Land.ShapefilePath != "" {
		sc, err := land.NewShapefileClassifier(cfg.Land.ShapefilePath, cfg.Land.SampleGrid)
		if err != nil {
			return nil, eris.Wrap(err, "init land classifier")
		}
		classifier = sc
		zap.L().Info("land classifier using shapefile",
			zap.String("path", cfg.Land.ShapefilePath),
		)
	} else {
		classifier = land.StaticClassifier{}
		zap.L().Debug("NX1_LAND_SHAPEFILE_PATH not set, using static continental classifier")
	}

	var benchmarks []validation.Benchmark
	if cfg.Validation.BenchmarkPath != "" {
		benchmarks, err = validation.LoadBenchmarks(cfg.Validation.BenchmarkPath)
		if err != nil {
			return nil, eris.Wrap(err, "load benchmarks")
		}
		zap.L().Info("validation benchmarks loaded",
			zap.Int("count", len(benchmarks)),
		)
	}

	scoreCache := cache.New(
		cfg.Cache.TTL,
		cfg.Cache.Capacity,
		cfg.Cache.EvictFraction,
		cache.WithPolicy(cache.PolicyByName(cfg.Cache.EvictionPolicy)),
	)

	predictor := predict.NewClient(cfg.Predict)
	if predictor != nil {
		zap.L().Info("prediction service enabled",
			zap.String("base_url", cfg.Predict.BaseURL),
		)
	}

	scorer, err := service.NewScorer(
		cfg,
		resolver,
		classifier,
		analyze.NewHeuristic(),
		validation.New(cfg.Validation, benchmarks),
		scoreCache,
		predictor,
	)
	if err != nil {
		return nil, eris.Wrap(err, "init scorer")
	}
	scorer.Activate()

	env := &scorerEnv{Scorer: scorer}

	if cfg.Store.DatabaseURL != "" {
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "init store")
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
		env.Store = st
	}

	return env, nil
}
