// Package model defines the core value objects for conditional opportunity
// scoring: spatial cells, component scores, the aggregate scoring result,
// and the statistical validation attached to it.
package model

import (
	"time"
)

// Classification buckets an overall score into an investment strategy.
type Classification string

const (
	ClassificationExpansion    Classification = "EXPANSION"
	ClassificationGrowth       Classification = "GROWTH"
	ClassificationOptimization Classification = "OPTIMIZATION"
	ClassificationDefensive    Classification = "DEFENSIVE"
	ClassificationExploration  Classification = "EXPLORATION"
)

// InvestmentPriority ranks how urgently a cell should be pursued.
type InvestmentPriority string

const (
	PriorityCritical InvestmentPriority = "CRITICAL"
	PriorityHigh     InvestmentPriority = "HIGH"
	PriorityMedium   InvestmentPriority = "MEDIUM"
	PriorityLow      InvestmentPriority = "LOW"
	PriorityAvoid    InvestmentPriority = "AVOID"
)

// ConfidenceInterval is a closed [Low, High] range on the 0-100 score scale.
type ConfidenceInterval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// OpportunityScore is a normalized 0-100 score with attached uncertainty.
// Value always lies within the interval and both bounds lie in [0, 100].
type OpportunityScore struct {
	Value         float64            `json:"value"`
	Confidence    float64            `json:"confidence"`
	StandardError float64            `json:"standard_error"`
	Interval      ConfidenceInterval `json:"confidence_interval"`
}

// ComponentScoreSet holds the five domain scores plus the weighted overall.
type ComponentScoreSet struct {
	Proximity   OpportunityScore `json:"proximity"`
	Competitive OpportunityScore `json:"competitive"`
	Market      OpportunityScore `json:"market"`
	Maritime    OpportunityScore `json:"maritime"`
	Risk        OpportunityScore `json:"risk"`
	Overall     OpportunityScore `json:"overall"`
}

// RevenueProjection estimates annual revenue for a cell.
type RevenueProjection struct {
	AnnualRevenue float64    `json:"annual_revenue"`
	Low           float64    `json:"low"`
	High          float64    `json:"high"`
	Quarterly     [4]float64 `json:"quarterly"`
}

// FinancialProjection holds ROI and NPV figures derived from the revenue
// projection against a fixed reference investment.
type FinancialProjection struct {
	ROIPct             float64 `json:"roi_pct"`
	RiskAdjustedROIPct float64 `json:"risk_adjusted_roi_pct"`
	NPV                float64 `json:"npv"`
	RiskAdjustedScore  float64 `json:"risk_adjusted_score"`
}

// BenchmarkComparison relates a score to spatially similar reference points.
type BenchmarkComparison struct {
	Percentile          float64            `json:"percentile"`
	SimilarReferenceIDs []string           `json:"similar_reference_ids"`
	ExpectedRange       ConfidenceInterval `json:"expected_range"`
}

// SensitivityResult summarizes parameter-perturbation analysis.
type SensitivityResult struct {
	ParameterInfluence map[string]float64 `json:"parameter_influence"`
	CriticalParameters []string           `json:"critical_parameters"`
	StabilityScore     float64            `json:"stability_score"`
}

// BootstrapResult summarizes resampling-with-noise of the score estimate.
type BootstrapResult struct {
	Mean          float64            `json:"mean"`
	StandardError float64            `json:"standard_error"`
	Bias          float64            `json:"bias"`
	Skewness      float64            `json:"skewness"`
	Interval      ConfidenceInterval `json:"interval"` // 2.5 / 97.5 percentiles
	Iterations    int                `json:"iterations"`
}

// MonteCarloResult summarizes resimulation under perturbed inputs.
type MonteCarloResult struct {
	Mean        float64            `json:"mean"`
	Variance    float64            `json:"variance"`
	Percentiles map[int]float64    `json:"percentiles"` // 5, 25, 50, 75, 95
	Shape       string             `json:"shape"`       // normal | skewed | heavy_tailed
	Iterations  int                `json:"iterations"`
}

// CrossValidationResult summarizes k-fold validation against benchmarks.
type CrossValidationResult struct {
	FoldScores  []float64 `json:"fold_scores"`
	Mean        float64   `json:"mean"`
	StdDev      float64   `json:"std_dev"`
	Consistency float64   `json:"consistency"`
	Accuracy    float64   `json:"accuracy"`
	Folds       int       `json:"folds"`
	Trivial     bool      `json:"trivial"` // too few benchmarks for a real split
}

// BayesianResult holds the closed-form Normal-Normal posterior update.
type BayesianResult struct {
	PriorMean         float64            `json:"prior_mean"`
	PriorVariance     float64            `json:"prior_variance"`
	PosteriorMean     float64            `json:"posterior_mean"`
	PosteriorVariance float64            `json:"posterior_variance"`
	CredibleInterval  ConfidenceInterval `json:"credible_interval"`
	BayesFactor       float64            `json:"bayes_factor"`
}

// StatisticalValidation is the independent confidence assessment attached to
// every fully computed score.
type StatisticalValidation struct {
	Score                float64               `json:"score"`
	Confidence           float64               `json:"confidence"`
	CrossValidationScore float64               `json:"cross_validation_score"`
	Benchmark            BenchmarkComparison   `json:"benchmark_comparison"`
	Sensitivity          SensitivityResult     `json:"sensitivity_analysis"`
	Bootstrap            BootstrapResult       `json:"bootstrap"`
	MonteCarlo           MonteCarloResult      `json:"monte_carlo"`
	CrossValidation      CrossValidationResult `json:"cross_validation"`
	Bayesian             BayesianResult        `json:"bayesian"`
}

// ConditionalOpportunityScore is the aggregate scoring result for one
// (cell, context) pair. Instances are immutable once built; a recompute
// produces a replacement rather than mutating in place.
type ConditionalOpportunityScore struct {
	Cell              SpatialCell            `json:"cell"`
	Scores            ComponentScoreSet      `json:"scores"`
	Classification    Classification         `json:"classification"`
	Priority          InvestmentPriority     `json:"priority"`
	Revenue           RevenueProjection      `json:"revenue"`
	Financial         FinancialProjection    `json:"financial"`
	Validation        *StatisticalValidation `json:"validation,omitempty"`
	Analyses          *AnalysisSet           `json:"analyses,omitempty"`
	LandCoveragePct   float64                `json:"land_coverage_pct"`
	ComputationTimeMs int64                  `json:"computation_time_ms"`
	LastUpdated       time.Time              `json:"last_updated"`
	CacheKey          string                 `json:"cache_key"`
}

// RankedScore pairs a scoring result with its 1-based position in a batch
// ranking.
type RankedScore struct {
	Rank   int                          `json:"rank"`
	Result *ConditionalOpportunityScore `json:"result"`
}
