package scoring

import (
	"math"

	"github.com/jonloone/nx1-space-sub002/internal/config"
	"github.com/jonloone/nx1-space-sub002/internal/model"
)

// quarterlyMultipliers are the fixed seasonal revenue factors Q1-Q4.
var quarterlyMultipliers = [4]float64{0.90, 0.95, 1.05, 1.10}

// ProjectRevenue scales the configured base annual revenue by the overall
// score relative to the 50-point midpoint, with a fixed -20%/+30% interval
// and fixed quarterly seasonality.
func ProjectRevenue(overall float64, cfg config.ScoringConfig) model.RevenueProjection {
	annual := cfg.BaseAnnualRevenue * overall / 50

	var quarterly [4]float64
	for i, m := range quarterlyMultipliers {
		quarterly[i] = annual / 4 * m
	}

	return model.RevenueProjection{
		AnnualRevenue: annual,
		Low:           annual * 0.8,
		High:          annual * 1.3,
		Quarterly:     quarterly,
	}
}

// ProjectFinancials derives ROI, NPV, and ranking figures from a revenue
// projection. ROI is projected annual revenue over the fixed reference
// investment; NPV discounts the projection horizon's cash flow at the
// configured rate; the risk-adjusted ROI applies a flat haircut.
func ProjectFinancials(rev model.RevenueProjection, overall, riskScore float64, cfg config.ScoringConfig) model.FinancialProjection {
	roiPct := 0.0
	if cfg.ReferenceInvestment > 0 {
		roiPct = rev.AnnualRevenue / cfg.ReferenceInvestment * 100
	}

	var npv float64
	for year := 1; year <= cfg.ProjectionYears; year++ {
		npv += rev.AnnualRevenue / math.Pow(1+cfg.DiscountRate, float64(year))
	}
	npv -= cfg.ReferenceInvestment

	return model.FinancialProjection{
		ROIPct:             roiPct,
		RiskAdjustedROIPct: roiPct * (1 - cfg.RiskHaircut),
		NPV:                npv,
		RiskAdjustedScore:  RiskAdjustedScore(overall, riskScore, cfg.RiskHaircut),
	}
}

// RiskAdjustedScore discounts the overall score by the risk component:
// a perfectly de-risked cell keeps its full score, the worst-risk cell
// loses the haircut fraction.
func RiskAdjustedScore(overall, riskScore, haircut float64) float64 {
	return overall * (1 - haircut + haircut*riskScore/100)
}
