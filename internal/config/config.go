package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Grid       GridConfig       `yaml:"grid" mapstructure:"grid"`
	Land       LandConfig       `yaml:"land" mapstructure:"land"`
	Scoring    ScoringConfig    `yaml:"scoring" mapstructure:"scoring"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Predict    PredictConfig    `yaml:"predict" mapstructure:"predict"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// GridConfig configures the hexagonal cell resolver.
type GridConfig struct {
	Resolution int `yaml:"resolution" mapstructure:"resolution"`
}

// LandConfig configures the land/water classifier.
type LandConfig struct {
	ShapefilePath  string  `yaml:"shapefile_path" mapstructure:"shapefile_path"`
	SampleGrid     int     `yaml:"sample_grid" mapstructure:"sample_grid"`
	MinCoveragePct float64 `yaml:"min_coverage_pct" mapstructure:"min_coverage_pct"`
}

// ScoringConfig configures component weighting and business projections.
type ScoringConfig struct {
	ProximityWeight   float64 `yaml:"proximity_weight" mapstructure:"proximity_weight"`
	CompetitiveWeight float64 `yaml:"competitive_weight" mapstructure:"competitive_weight"`
	MarketWeight      float64 `yaml:"market_weight" mapstructure:"market_weight"`
	MaritimeWeight    float64 `yaml:"maritime_weight" mapstructure:"maritime_weight"`
	RiskWeight        float64 `yaml:"risk_weight" mapstructure:"risk_weight"`

	BaseAnnualRevenue   float64 `yaml:"base_annual_revenue" mapstructure:"base_annual_revenue"`
	ReferenceInvestment float64 `yaml:"reference_investment" mapstructure:"reference_investment"`
	DiscountRate        float64 `yaml:"discount_rate" mapstructure:"discount_rate"`
	ProjectionYears     int     `yaml:"projection_years" mapstructure:"projection_years"`
	RiskHaircut         float64 `yaml:"risk_haircut" mapstructure:"risk_haircut"`
}

// WeightSum returns the sum of the five component weights.
func (c ScoringConfig) WeightSum() float64 {
	return c.ProximityWeight + c.CompetitiveWeight + c.MarketWeight +
		c.MaritimeWeight + c.RiskWeight
}

// ValidationConfig configures the statistical validation suite.
type ValidationConfig struct {
	BootstrapIterations  int     `yaml:"bootstrap_iterations" mapstructure:"bootstrap_iterations"`
	MonteCarloIterations int     `yaml:"monte_carlo_iterations" mapstructure:"monte_carlo_iterations"`
	CrossValidationFolds int     `yaml:"cross_validation_folds" mapstructure:"cross_validation_folds"`
	BenchmarkRadiusKm    float64 `yaml:"benchmark_radius_km" mapstructure:"benchmark_radius_km"`
	BenchmarkPath        string  `yaml:"benchmark_path" mapstructure:"benchmark_path"`
	CoordinateJitterDeg  float64 `yaml:"coordinate_jitter_deg" mapstructure:"coordinate_jitter_deg"`
	MeasurementVariance  float64 `yaml:"measurement_variance" mapstructure:"measurement_variance"`
	ImportanceThreshold  float64 `yaml:"importance_threshold" mapstructure:"importance_threshold"`
	Seed                 int64   `yaml:"seed" mapstructure:"seed"`
}

// CacheConfig configures the in-memory score cache.
type CacheConfig struct {
	TTL            time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Capacity       int           `yaml:"capacity" mapstructure:"capacity"`
	EvictFraction  float64       `yaml:"evict_fraction" mapstructure:"evict_fraction"`
	EvictionPolicy string        `yaml:"eviction_policy" mapstructure:"eviction_policy"`
}

// BatchConfig configures batch scoring orchestration.
type BatchConfig struct {
	ChunkSize   int           `yaml:"chunk_size" mapstructure:"chunk_size"`
	Concurrency int           `yaml:"concurrency" mapstructure:"concurrency"`
	ChunkPause  time.Duration `yaml:"chunk_pause" mapstructure:"chunk_pause"`
}

// PredictConfig configures the optional external prediction service.
type PredictConfig struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
}

// StoreConfig configures optional result persistence.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("NX1")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("grid.resolution", 6)
	v.SetDefault("land.sample_grid", 8)
	v.SetDefault("land.min_coverage_pct", 50.0)
	v.SetDefault("scoring.proximity_weight", 0.25)
	v.SetDefault("scoring.competitive_weight", 0.25)
	v.SetDefault("scoring.market_weight", 0.25)
	v.SetDefault("scoring.maritime_weight", 0.15)
	v.SetDefault("scoring.risk_weight", 0.10)
	v.SetDefault("scoring.base_annual_revenue", 2_500_000.0)
	v.SetDefault("scoring.reference_investment", 10_000_000.0)
	v.SetDefault("scoring.discount_rate", 0.08)
	v.SetDefault("scoring.projection_years", 10)
	v.SetDefault("scoring.risk_haircut", 0.15)
	v.SetDefault("validation.bootstrap_iterations", 1000)
	v.SetDefault("validation.monte_carlo_iterations", 1000)
	v.SetDefault("validation.cross_validation_folds", 5)
	v.SetDefault("validation.benchmark_radius_km", 500.0)
	v.SetDefault("validation.coordinate_jitter_deg", 0.01)
	v.SetDefault("validation.measurement_variance", 25.0)
	v.SetDefault("validation.importance_threshold", 5.0)
	v.SetDefault("validation.seed", 0)
	v.SetDefault("cache.ttl", "30m")
	v.SetDefault("cache.capacity", 10000)
	v.SetDefault("cache.evict_fraction", 0.15)
	v.SetDefault("cache.eviction_policy", "computation")
	v.SetDefault("batch.chunk_size", 50)
	v.SetDefault("batch.concurrency", 10)
	v.SetDefault("batch.chunk_pause", "100ms")
	v.SetDefault("predict.timeout", "5s")
	v.SetDefault("predict.enabled", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
