package analyze

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/jonloone/nx1-space-sub002/internal/model"
)

// Heuristic implements all five analyzer contracts with deterministic,
// coordinate-derived values. It lets the full pipeline run end-to-end when
// no external data feeds are wired, and doubles as a reference collaborator
// in tests. The same coordinate always yields the same analysis.
type Heuristic struct{}

// NewHeuristic returns the built-in analyzer bundle.
func NewHeuristic() Analyzers {
	h := Heuristic{}
	return Analyzers{
		Proximity:   h,
		Competitive: h,
		Market:      h,
		Maritime:    h,
		Risk:        h,
	}
}

// channel derives a stable pseudo-random value in [0, 1) from a coordinate
// and a channel name. Coordinates are quantized to ~100 m so nearby points
// in the same cell agree.
func channel(lat, lon float64, name string) float64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(int64(lat*1000)))
	_, _ = h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(int64(lon*1000)))
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(name))
	return float64(h.Sum64()%100000) / 100000
}

// AnalyzeProximity derives a neighbor field from the coordinate channels.
func (Heuristic) AnalyzeProximity(ctx context.Context, lat, lon float64) (*model.ProximityAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	nearest := 60 + channel(lat, lon, "prox.nearest")*900
	gap := 100 + channel(lat, lon, "prox.gap")*700

	n := 2 + int(channel(lat, lon, "prox.count")*4)
	neighbors := make([]model.NeighborSite, 0, n)
	for i := 0; i < n; i++ {
		neighbors = append(neighbors, model.NeighborSite{
			ID:         fmt.Sprintf("site-%d", i+1),
			DistanceKm: nearest + channel(lat, lon, fmt.Sprintf("prox.n%d", i))*600,
		})
	}

	return &model.ProximityAnalysis{
		NearestNeighborKm: nearest,
		CoverageGapKm:     gap,
		GapServiceable:    gap > 200,
		Neighbors:         neighbors,
	}, nil
}

// AnalyzeCompetitive derives threat and saturation from the coordinate.
func (Heuristic) AnalyzeCompetitive(ctx context.Context, lat, lon float64) (*model.CompetitiveAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	threatRoll := channel(lat, lon, "comp.threat")
	threat := model.ThreatLow
	switch {
	case threatRoll > 0.9:
		threat = model.ThreatCritical
	case threatRoll > 0.7:
		threat = model.ThreatHigh
	case threatRoll > 0.4:
		threat = model.ThreatMedium
	}

	var gaps []model.CompetitiveGap
	if channel(lat, lon, "comp.gap") > 0.5 {
		gaps = append(gaps, model.CompetitiveGap{
			Description:    "underserved demand pocket",
			EstimatedValue: channel(lat, lon, "comp.gapval"),
		})
	}

	return &model.CompetitiveAnalysis{
		ThreatLevel:       threat,
		CompetitorDensity: channel(lat, lon, "comp.density") * 8,
		MarketSaturation:  channel(lat, lon, "comp.saturation") * 100,
		Gaps:              gaps,
	}, nil
}

// AnalyzeMarket derives demographic and demand terms from the coordinate.
func (Heuristic) AnalyzeMarket(ctx context.Context, lat, lon float64) (*model.MarketAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Denser markets toward the mid-latitudes.
	latBias := 1 - math.Abs(lat)/90
	segNames := []string{"enterprise", "smb", "government", "consumer", "institutional"}
	segments := make([]model.CustomerSegment, 0, len(segNames))
	for _, name := range segNames {
		segments = append(segments, model.CustomerSegment{
			Name:            name,
			AddressableSize: channel(lat, lon, "mkt.size."+name) * 100,
			Accessibility:   channel(lat, lon, "mkt.access."+name),
		})
	}

	drivers := []string{"urban growth"}
	if channel(lat, lon, "mkt.driver1") > 0.5 {
		drivers = append(drivers, "infrastructure investment")
	}
	if channel(lat, lon, "mkt.driver2") > 0.7 {
		drivers = append(drivers, "trade corridor expansion")
	}

	return &model.MarketAnalysis{
		PopulationDensity:     latBias * channel(lat, lon, "mkt.pop") * 2000,
		UrbanizationPct:       channel(lat, lon, "mkt.urban") * 100,
		EconomicActivityIndex: channel(lat, lon, "mkt.econ") * 100,
		Segments:              segments,
		GrowthPotentialPct:    channel(lat, lon, "mkt.growth") * 100,
		CurrentDemandIndex:    channel(lat, lon, "mkt.demand") * 100,
		GrowthDrivers:         drivers,
	}, nil
}

// AnalyzeMaritime derives lane and port access from the coordinate.
func (Heuristic) AnalyzeMaritime(ctx context.Context, lat, lon, areaKm2 float64) (*model.MaritimeAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lanes := []model.ShippingLane{{
		Name:           "primary corridor",
		DistanceKm:     channel(lat, lon, "mar.lane") * 500,
		TrafficDensity: channel(lat, lon, "mar.traffic") * 100,
	}}

	nPorts := 1 + int(channel(lat, lon, "mar.ports")*3)
	ports := make([]model.Port, 0, nPorts)
	for i := 0; i < nPorts; i++ {
		ports = append(ports, model.Port{
			Name:       fmt.Sprintf("port-%d", i+1),
			SizeIndex:  channel(lat, lon, fmt.Sprintf("mar.psize%d", i)),
			DistanceKm: 20 + channel(lat, lon, fmt.Sprintf("mar.pdist%d", i))*400,
		})
	}

	return &model.MaritimeAnalysis{
		Lanes:             lanes,
		Ports:             ports,
		LogisticsModes:    1 + int(channel(lat, lon, "mar.modes")*3),
		ServicesPotential: channel(lat, lon, "mar.services") * 100,
		CompetitionIndex:  channel(lat, lon, "mar.competition") * 100,
	}, nil
}

// AnalyzeRisk derives regulatory, environmental, operational, and financial
// exposure from the coordinate.
func (Heuristic) AnalyzeRisk(ctx context.Context, lat, lon float64) (*model.RiskAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var challenges []string
	if channel(lat, lon, "risk.ch1") > 0.6 {
		challenges = append(challenges, "limited road access")
	}
	if channel(lat, lon, "risk.ch2") > 0.8 {
		challenges = append(challenges, "seasonal port closures")
	}

	return &model.RiskAnalysis{
		LicensingComplexityTier: int(channel(lat, lon, "risk.lic") * 4),
		PoliticalInstability:    channel(lat, lon, "risk.pol") * 100,
		WeatherExtremity:        channel(lat, lon, "risk.weather") * 100,
		DisasterIndex:           channel(lat, lon, "risk.disaster") * 100,
		ClimateFactor:           channel(lat, lon, "risk.climate") * 100,
		InfrastructureDeficit:   channel(lat, lon, "risk.infra") * 100,
		SkillDeficit:            channel(lat, lon, "risk.skill") * 100,
		LogisticalChallenges:    challenges,
		CurrencyInstability:     channel(lat, lon, "risk.currency") * 100,
		EconomicVolatility:      channel(lat, lon, "risk.volatility") * 100,
		InvestmentClimate:       channel(lat, lon, "risk.investment") * 100,
	}, nil
}
