package scoring

import (
	"math"

	"github.com/jonloone/nx1-space-sub002/internal/config"
	"github.com/jonloone/nx1-space-sub002/internal/model"
)

// Aggregate computes the weighted overall score from the five components.
// Interval bounds are propagated by applying the component weights to each
// bound independently — a conservative, order-preserving approximation
// rather than a formal error-propagation model.
func Aggregate(set model.ComponentScoreSet, cfg config.ScoringConfig) model.OpportunityScore {
	type weighted struct {
		score  model.OpportunityScore
		weight float64
	}
	parts := []weighted{
		{set.Proximity, cfg.ProximityWeight},
		{set.Competitive, cfg.CompetitiveWeight},
		{set.Market, cfg.MarketWeight},
		{set.Maritime, cfg.MaritimeWeight},
		{set.Risk, cfg.RiskWeight},
	}

	var value, low, high, confidence, variance float64
	for _, p := range parts {
		value += p.score.Value * p.weight
		low += p.score.Interval.Low * p.weight
		high += p.score.Interval.High * p.weight
		confidence += p.score.Confidence * p.weight
		variance += math.Pow(p.score.StandardError*p.weight, 2)
	}

	return model.OpportunityScore{
		Value:         clampScore(value),
		Confidence:    clamp01(confidence),
		StandardError: math.Sqrt(variance),
		Interval: model.ConfidenceInterval{
			Low:  clampScore(low),
			High: clampScore(high),
		},
	}
}

// Classify buckets an overall score into an investment strategy.
func Classify(overall float64) model.Classification {
	switch {
	case overall >= 80:
		return model.ClassificationExpansion
	case overall >= 65:
		return model.ClassificationGrowth
	case overall >= 50:
		return model.ClassificationOptimization
	case overall >= 35:
		return model.ClassificationDefensive
	default:
		return model.ClassificationExploration
	}
}

// Prioritize assigns an investment priority from the overall score and the
// projected ROI percentage. High buckets require both a strong score and a
// strong return.
func Prioritize(overall, roiPct float64) model.InvestmentPriority {
	switch {
	case overall >= 80 && roiPct >= 25:
		return model.PriorityCritical
	case overall >= 65 && roiPct >= 20:
		return model.PriorityHigh
	case overall >= 50 && roiPct >= 15:
		return model.PriorityMedium
	case overall >= 35:
		return model.PriorityLow
	default:
		return model.PriorityAvoid
	}
}
