// Package scoring converts domain analyses into normalized opportunity
// scores and aggregates them into a single confidence-bearing result.
package scoring

import (
	"math"

	"github.com/jonloone/nx1-space-sub002/internal/model"
)

// Proximity scoring thresholds, in kilometers.
const (
	gapThresholdHighKm    = 500.0
	gapThresholdMidKm     = 250.0
	minViableSeparationKm = 150.0
	synergyBandLowKm      = 300.0
	synergyBandHighKm     = 800.0
)

// Threat-level penalties subtracted from the competitive base of 100.
var threatPenalties = map[model.ThreatLevel]float64{
	model.ThreatLow:      10,
	model.ThreatMedium:   25,
	model.ThreatHigh:     45,
	model.ThreatCritical: 70,
}

// Standard error grows with distance from the 0-100 midpoint: extreme scores
// come from extreme inputs, which the upstream analyses resolve least
// reliably.
const (
	seBase  = 1.5
	seSlope = 0.1
)

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// finalize populates standard error and the ±2·SE interval for a raw value.
func finalize(value, confidence float64) model.OpportunityScore {
	value = clampScore(value)
	se := seBase + seSlope*math.Abs(value-50)
	return model.OpportunityScore{
		Value:         value,
		Confidence:    clamp01(confidence),
		StandardError: se,
		Interval: model.ConfidenceInterval{
			Low:  clampScore(value - 2*se),
			High: clampScore(value + 2*se),
		},
	}
}

// ScoreProximity maps a proximity analysis to an opportunity score.
// Base 50, plus a coverage-gap bonus when the gap is serviceable, minus a
// cannibalization penalty when the nearest neighbor is too close, plus the
// average neighbor synergy.
func ScoreProximity(a *model.ProximityAnalysis) model.OpportunityScore {
	score := 50.0

	if a.GapServiceable {
		switch {
		case a.CoverageGapKm > gapThresholdHighKm:
			score += 30
		case a.CoverageGapKm > gapThresholdMidKm:
			score += 15
		}
	}

	if a.NearestNeighborKm < minViableSeparationKm {
		score -= 25
	}

	if len(a.Neighbors) > 0 {
		var total float64
		for _, n := range a.Neighbors {
			total += neighborSynergy(n.DistanceKm)
		}
		score += total / float64(len(a.Neighbors))
	}

	confidence := 0.8
	if a.GapServiceable {
		confidence = 0.95
	}
	return finalize(score, confidence)
}

// neighborSynergy scores one neighbor's contribution in [-0.2, 1.0],
// favoring neighbors 300-800 km away: close enough to share logistics,
// far enough not to cannibalize.
func neighborSynergy(distKm float64) float64 {
	switch {
	case distKm >= synergyBandLowKm && distKm <= synergyBandHighKm:
		return 1.0
	case distKm < synergyBandLowKm:
		return -0.2 + 1.2*distKm/synergyBandLowKm
	default:
		return math.Max(-0.2, 1.0-(distKm-synergyBandHighKm)/1000)
	}
}

// ScoreCompetitive maps a competitive analysis to an opportunity score.
// Base 100 (no competition), penalized by threat level, competitor density,
// and saturation, with a partial add-back for identified gaps.
func ScoreCompetitive(a *model.CompetitiveAnalysis) model.OpportunityScore {
	score := 100.0

	score -= threatPenalties[a.ThreatLevel]
	score -= math.Min(30, a.CompetitorDensity*5)
	score -= a.MarketSaturation * 0.3

	var gapBonus float64
	for _, g := range a.Gaps {
		gapBonus += g.EstimatedValue * 15
	}
	score += math.Min(20, gapBonus)

	return finalize(score, 0.85)
}

// ScoreMarket maps a market analysis to an opportunity score: an additive
// composite of demographic, segmentation, and demand-forecast terms.
func ScoreMarket(a *model.MarketAnalysis) model.OpportunityScore {
	demographic := math.Min(15, a.PopulationDensity/100) +
		a.UrbanizationPct*0.1 +
		a.EconomicActivityIndex*0.1

	var segmentation float64
	if len(a.Segments) > 0 {
		var total float64
		for _, s := range a.Segments {
			total += s.AddressableSize * s.Accessibility
		}
		segmentation = total / float64(len(a.Segments)) * 0.35
	}

	forecast := a.GrowthPotentialPct*0.15 +
		a.CurrentDemandIndex*0.1 +
		math.Min(5, float64(len(a.GrowthDrivers))*2)

	return finalize(demographic+segmentation+forecast, 0.8)
}

// ScoreMaritime maps a maritime analysis to an opportunity score: lane
// proximity and traffic, size-weighted distance-decayed port access,
// logistics diversity, and services potential net of competition.
func ScoreMaritime(a *model.MaritimeAnalysis) model.OpportunityScore {
	var lanes float64
	for _, l := range a.Lanes {
		proximity := math.Max(0, 20*(1-l.DistanceKm/500))
		lanes = math.Max(lanes, proximity+l.TrafficDensity*0.1)
	}

	var ports float64
	for _, p := range a.Ports {
		decay := math.Max(0, 1-p.DistanceKm/500)
		ports += p.SizeIndex * decay * 15
	}
	ports = math.Min(30, ports)

	diversity := math.Min(15, float64(a.LogisticsModes)*5)
	services := a.ServicesPotential*0.15 - a.CompetitionIndex*0.1

	return finalize(lanes+ports+diversity+services, 0.8)
}

// ScoreRisk maps a risk analysis to an inverted opportunity score: higher
// means lower risk. Base 100 minus regulatory, environmental, operational,
// and financial penalties.
func ScoreRisk(a *model.RiskAnalysis) model.OpportunityScore {
	regulatory := float64(a.LicensingComplexityTier)*5 +
		a.PoliticalInstability*0.15

	environmental := a.WeatherExtremity*0.08 +
		a.DisasterIndex*0.08 +
		(100-a.ClimateFactor)*0.04

	operational := a.InfrastructureDeficit*0.08 +
		a.SkillDeficit*0.05 +
		float64(len(a.LogisticalChallenges))*3

	financial := a.CurrencyInstability*0.08 +
		a.EconomicVolatility*0.06 +
		(100-a.InvestmentClimate)*0.06

	return finalize(100-regulatory-environmental-operational-financial, 0.85)
}

// ScoreComponents runs all five component scorers over an analysis set.
// Every analysis must be present.
func ScoreComponents(a *model.AnalysisSet) model.ComponentScoreSet {
	return model.ComponentScoreSet{
		Proximity:   ScoreProximity(a.Proximity),
		Competitive: ScoreCompetitive(a.Competitive),
		Market:      ScoreMarket(a.Market),
		Maritime:    ScoreMaritime(a.Maritime),
		Risk:        ScoreRisk(a.Risk),
	}
}
