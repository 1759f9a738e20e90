package port

import "time"

// Criterion is the optimization preference driving the cost model.
type Criterion string

const (
	CriterionFastest       Criterion = "fastest"
	CriterionEconomical    Criterion = "most_economical"
	CriterionReliable      Criterion = "most_reliable"
	CriterionBalanced      Criterion = "balanced"
)

// Request is a single route-calculation request, after parsing but before
// validation.
type Request struct {
	RequestID           string
	Origin              string
	Destination         string
	Vessel              VesselConstraints
	Criterion           Criterion
	MaxAlternativeRoutes int
	MaxConnectingPorts  int
	DepartureTime       time.Time
	Timeout             time.Duration
}

// Segment is one leg of an assembled route.
type Segment struct {
	From               string
	To                 string
	Kind               EdgeKind
	Waypoints          []WaypointCoord
	DistanceNM         float64
	TransitTimeHours   float64
	FuelTons           float64
	FuelCost           float64
	PortFees           float64
	CanalFees          float64
	WeatherRisk        float64
	PiracyRisk         float64
	PoliticalRisk      float64
}

// WaypointCoord is a single interpolated point along a segment.
type WaypointCoord struct {
	Lat float64
	Lon float64
}

// DetailedRoute is a fully expanded candidate route.
type DetailedRoute struct {
	Ports                  []string
	Segments               []Segment
	TotalDistanceNM        float64
	TotalTimeHours         float64
	TotalFuelTons          float64
	TotalFuelCost          float64
	TotalPortFees          float64
	TotalCanalFees         float64
	TotalCost              float64
	EfficiencyScore        float64
	ReliabilityScore       float64
	EnvironmentalScore     float64
	OptimizationScore      float64
	OverallRiskScore       float64
}

// RouteResponse is the top-level result of a calculation.
type RouteResponse struct {
	RequestID           string
	CalculatedAt        time.Time
	CalculationDuration time.Duration
	PrimaryRoute        *DetailedRoute
	Alternatives        []DetailedRoute
	Algorithm           string
	Criterion           Criterion
	CandidatesEvaluated int
	CacheHit            bool
	Diagnostics         []string
}
