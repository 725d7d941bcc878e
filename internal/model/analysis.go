package model

// ThreatLevel grades the competitive threat in a cell's catchment.
type ThreatLevel string

const (
	ThreatLow      ThreatLevel = "LOW"
	ThreatMedium   ThreatLevel = "MEDIUM"
	ThreatHigh     ThreatLevel = "HIGH"
	ThreatCritical ThreatLevel = "CRITICAL"
)

// NeighborSite is an existing serviced site near the candidate cell.
type NeighborSite struct {
	ID         string  `json:"id"`
	DistanceKm float64 `json:"distance_km"`
}

// ProximityAnalysis describes siting proximity around a candidate location.
type ProximityAnalysis struct {
	NearestNeighborKm float64        `json:"nearest_neighbor_km"`
	CoverageGapKm     float64        `json:"coverage_gap_km"`
	GapServiceable    bool           `json:"gap_serviceable"`
	Neighbors         []NeighborSite `json:"neighbors"`
}

// CompetitiveGap is an underserved demand pocket a new site could capture.
type CompetitiveGap struct {
	Description    string  `json:"description"`
	EstimatedValue float64 `json:"estimated_value"` // 0-1 share of addressable value
}

// CompetitiveAnalysis describes the competitive landscape.
type CompetitiveAnalysis struct {
	ThreatLevel       ThreatLevel      `json:"threat_level"`
	CompetitorDensity float64          `json:"competitor_density"` // competitors per 1000 km²
	MarketSaturation  float64          `json:"market_saturation"`  // 0-100
	Gaps              []CompetitiveGap `json:"gaps"`
}

// CustomerSegment is one addressable demand segment.
type CustomerSegment struct {
	Name            string  `json:"name"`
	AddressableSize float64 `json:"addressable_size"` // 0-100 normalized
	Accessibility   float64 `json:"accessibility"`    // 0-1
}

// MarketAnalysis describes demand-side potential.
type MarketAnalysis struct {
	PopulationDensity     float64           `json:"population_density"`      // persons per km²
	UrbanizationPct       float64           `json:"urbanization_pct"`        // 0-100
	EconomicActivityIndex float64           `json:"economic_activity_index"` // 0-100
	Segments              []CustomerSegment `json:"segments"`
	GrowthPotentialPct    float64           `json:"growth_potential_pct"` // 0-100
	CurrentDemandIndex    float64           `json:"current_demand_index"` // 0-100
	GrowthDrivers         []string          `json:"growth_drivers"`
}

// ShippingLane is a maritime traffic corridor near the cell.
type ShippingLane struct {
	Name           string  `json:"name"`
	DistanceKm     float64 `json:"distance_km"`
	TrafficDensity float64 `json:"traffic_density"` // 0-100
}

// Port is a maritime port near the cell.
type Port struct {
	Name       string  `json:"name"`
	SizeIndex  float64 `json:"size_index"` // 0-1, relative throughput
	DistanceKm float64 `json:"distance_km"`
}

// MaritimeAnalysis describes maritime access and logistics.
type MaritimeAnalysis struct {
	Lanes             []ShippingLane `json:"lanes"`
	Ports             []Port         `json:"ports"`
	LogisticsModes    int            `json:"logistics_modes"`    // distinct transport modes available
	ServicesPotential float64        `json:"services_potential"` // 0-100
	CompetitionIndex  float64        `json:"competition_index"`  // 0-100
}

// RiskAnalysis describes downside exposure. All indices run 0-100 where
// higher means more adverse, except InvestmentClimate and ClimateFactor
// where higher is more favorable.
type RiskAnalysis struct {
	LicensingComplexityTier int     `json:"licensing_complexity_tier"` // 0-3
	PoliticalInstability    float64 `json:"political_instability"`

	WeatherExtremity float64 `json:"weather_extremity"`
	DisasterIndex    float64 `json:"disaster_index"`
	ClimateFactor    float64 `json:"climate_factor"`

	InfrastructureDeficit float64  `json:"infrastructure_deficit"`
	SkillDeficit          float64  `json:"skill_deficit"`
	LogisticalChallenges  []string `json:"logistical_challenges"`

	CurrencyInstability float64 `json:"currency_instability"`
	EconomicVolatility  float64 `json:"economic_volatility"`
	InvestmentClimate   float64 `json:"investment_climate"`
}

// AnalysisSet bundles the raw per-domain analysis payloads that fed a score.
type AnalysisSet struct {
	Proximity   *ProximityAnalysis   `json:"proximity,omitempty"`
	Competitive *CompetitiveAnalysis `json:"competitive,omitempty"`
	Market      *MarketAnalysis      `json:"market,omitempty"`
	Maritime    *MaritimeAnalysis    `json:"maritime,omitempty"`
	Risk        *RiskAnalysis        `json:"risk,omitempty"`
}
