// Package analyze defines the five domain analyzer contracts and built-in
// heuristic implementations. Analyzers are pure collaborators: given a
// coordinate they return a best-effort structured result and never fail for
// in-range inputs.
package analyze

import (
	"context"

	"github.com/jonloone/nx1-space-sub002/internal/model"
)

// ProximityAnalyzer reports siting proximity around a coordinate.
type ProximityAnalyzer interface {
	AnalyzeProximity(ctx context.Context, lat, lon float64) (*model.ProximityAnalysis, error)
}

// CompetitiveAnalyzer reports the competitive landscape at a coordinate.
type CompetitiveAnalyzer interface {
	AnalyzeCompetitive(ctx context.Context, lat, lon float64) (*model.CompetitiveAnalysis, error)
}

// MarketAnalyzer reports market potential at a coordinate.
type MarketAnalyzer interface {
	AnalyzeMarket(ctx context.Context, lat, lon float64) (*model.MarketAnalysis, error)
}

// MaritimeAnalyzer reports maritime access for a coordinate and cell area.
type MaritimeAnalyzer interface {
	AnalyzeMaritime(ctx context.Context, lat, lon, areaKm2 float64) (*model.MaritimeAnalysis, error)
}

// RiskAnalyzer reports downside risk exposure at a coordinate.
type RiskAnalyzer interface {
	AnalyzeRisk(ctx context.Context, lat, lon float64) (*model.RiskAnalysis, error)
}

// Analyzers bundles one analyzer per domain for injection into the scoring
// pipeline.
type Analyzers struct {
	Proximity   ProximityAnalyzer
	Competitive CompetitiveAnalyzer
	Market      MarketAnalyzer
	Maritime    MaritimeAnalyzer
	Risk        RiskAnalyzer
}

// Complete reports whether every domain has an analyzer.
func (a Analyzers) Complete() bool {
	return a.Proximity != nil && a.Competitive != nil && a.Market != nil &&
		a.Maritime != nil && a.Risk != nil
}
