package httpapi

import (
	"time"

	"searoute/internal/port"
)

// calculateRequestDTO is the wire shape of POST /routes/calculate and
// POST /routes/validate's body (spec §3/§6).
type calculateRequestDTO struct {
	RequestID            string     `json:"request_id"`
	Origin               string     `json:"origin"`
	Destination          string     `json:"destination"`
	Vessel               vesselDTO  `json:"vessel"`
	Criterion            string     `json:"criterion"`
	MaxAlternativeRoutes int        `json:"max_alternative_routes"`
	MaxConnectingPorts   int        `json:"max_connecting_ports"`
	DepartureTime        *time.Time `json:"departure_time,omitempty"`
	TimeoutSeconds       float64    `json:"timeout_s,omitempty"`
}

type vesselDTO struct {
	Type                  string  `json:"type"`
	LengthM               float64 `json:"length_m"`
	BeamM                 float64 `json:"beam_m"`
	DraftM                float64 `json:"draft_m"`
	DeadweightTonnage     float64 `json:"deadweight_tonnage,omitempty"`
	GrossTonnage          float64 `json:"gross_tonnage,omitempty"`
	CruiseSpeedKn         float64 `json:"cruise_speed_kn"`
	MaxSpeedKn            float64 `json:"max_speed_kn"`
	MaxRangeNM            float64 `json:"max_range_nm,omitempty"`
	FuelType              string  `json:"fuel_type"`
	SuezCanalCompatible   bool    `json:"suez_canal_compatible"`
	PanamaCanalCompatible bool    `json:"panama_canal_compatible"`
}

// toRequest translates the wire DTO into the core's port.Request.
func (d *calculateRequestDTO) toRequest() *port.Request {
	req := &port.Request{
		RequestID:            d.RequestID,
		Origin:               d.Origin,
		Destination:          d.Destination,
		Criterion:            port.Criterion(d.Criterion),
		MaxAlternativeRoutes: d.MaxAlternativeRoutes,
		MaxConnectingPorts:   d.MaxConnectingPorts,
		Vessel: port.VesselConstraints{
			Type:              port.Type(d.Vessel.Type),
			LengthM:           d.Vessel.LengthM,
			BeamM:             d.Vessel.BeamM,
			DraftM:            d.Vessel.DraftM,
			DeadweightTonnage: d.Vessel.DeadweightTonnage,
			GrossTonnage:      d.Vessel.GrossTonnage,
			CruiseSpeedKn:     d.Vessel.CruiseSpeedKn,
			MaxSpeedKn:        d.Vessel.MaxSpeedKn,
			MaxRangeNM:        d.Vessel.MaxRangeNM,
			FuelType:          port.FuelType(d.Vessel.FuelType),
			SuezCompatible:    d.Vessel.SuezCanalCompatible,
			PanamaCompatible:  d.Vessel.PanamaCanalCompatible,
		},
	}
	if d.DepartureTime != nil {
		req.DepartureTime = *d.DepartureTime
	}
	if d.TimeoutSeconds > 0 {
		req.Timeout = time.Duration(d.TimeoutSeconds * float64(time.Second))
	}
	return req
}

// routeResponseDTO is the wire shape returned by a successful calculation.
type routeResponseDTO struct {
	RequestID           string           `json:"request_id"`
	CalculatedAt        time.Time        `json:"calculated_at"`
	CalculationMS       int64            `json:"calculation_duration_ms"`
	PrimaryRoute        *detailedRouteDTO `json:"primary_route"`
	Alternatives        []detailedRouteDTO `json:"alternatives"`
	Algorithm           string           `json:"algorithm"`
	Criterion           string           `json:"criterion"`
	CandidatesEvaluated int              `json:"candidates_evaluated"`
	CacheHit            bool             `json:"cache_hit"`
	Diagnostics         []string         `json:"diagnostics,omitempty"`
}

type detailedRouteDTO struct {
	Ports              []string    `json:"ports"`
	Segments           []segmentDTO `json:"segments"`
	TotalDistanceNM    float64     `json:"total_distance_nm"`
	TotalTimeHours     float64     `json:"total_time_hours"`
	TotalFuelTons      float64     `json:"total_fuel_tons"`
	TotalFuelCost      float64     `json:"total_fuel_cost"`
	TotalPortFees      float64     `json:"total_port_fees"`
	TotalCanalFees     float64     `json:"total_canal_fees"`
	TotalCost          float64     `json:"total_cost"`
	EfficiencyScore    float64     `json:"efficiency_score"`
	ReliabilityScore   float64     `json:"reliability_score"`
	EnvironmentalScore float64     `json:"environmental_score"`
	OptimizationScore  float64     `json:"overall_optimization_score"`
	OverallRiskScore   float64     `json:"overall_risk_score"`
}

type segmentDTO struct {
	From             string            `json:"from"`
	To               string            `json:"to"`
	Kind             string            `json:"kind"`
	Waypoints        []waypointDTO     `json:"waypoints"`
	DistanceNM       float64           `json:"distance_nm"`
	TransitTimeHours float64           `json:"transit_time_hours"`
	FuelTons         float64           `json:"fuel_tons"`
	FuelCost         float64           `json:"fuel_cost"`
	PortFees         float64           `json:"port_fees"`
	CanalFees        float64           `json:"canal_fees"`
	WeatherRisk      float64           `json:"weather_risk"`
	PiracyRisk       float64           `json:"piracy_risk"`
	PoliticalRisk    float64           `json:"political_risk"`
}

type waypointDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func newRouteResponseDTO(resp *port.RouteResponse) *routeResponseDTO {
	dto := &routeResponseDTO{
		RequestID:           resp.RequestID,
		CalculatedAt:        resp.CalculatedAt,
		CalculationMS:       resp.CalculationDuration.Milliseconds(),
		Algorithm:           resp.Algorithm,
		Criterion:           string(resp.Criterion),
		CandidatesEvaluated: resp.CandidatesEvaluated,
		CacheHit:            resp.CacheHit,
		Diagnostics:         resp.Diagnostics,
	}
	if resp.PrimaryRoute != nil {
		dto.PrimaryRoute = newDetailedRouteDTO(resp.PrimaryRoute)
	}
	for _, alt := range resp.Alternatives {
		alt := alt
		dto.Alternatives = append(dto.Alternatives, *newDetailedRouteDTO(&alt))
	}
	return dto
}

func newDetailedRouteDTO(r *port.DetailedRoute) *detailedRouteDTO {
	dto := &detailedRouteDTO{
		Ports:              r.Ports,
		TotalDistanceNM:    r.TotalDistanceNM,
		TotalTimeHours:     r.TotalTimeHours,
		TotalFuelTons:      r.TotalFuelTons,
		TotalFuelCost:      r.TotalFuelCost,
		TotalPortFees:      r.TotalPortFees,
		TotalCanalFees:     r.TotalCanalFees,
		TotalCost:          r.TotalCost,
		EfficiencyScore:    r.EfficiencyScore,
		ReliabilityScore:   r.ReliabilityScore,
		EnvironmentalScore: r.EnvironmentalScore,
		OptimizationScore:  r.OptimizationScore,
		OverallRiskScore:   r.OverallRiskScore,
	}
	for _, s := range r.Segments {
		wps := make([]waypointDTO, len(s.Waypoints))
		for i, w := range s.Waypoints {
			wps[i] = waypointDTO{Lat: w.Lat, Lon: w.Lon}
		}
		dto.Segments = append(dto.Segments, segmentDTO{
			From: s.From, To: s.To, Kind: string(s.Kind), Waypoints: wps,
			DistanceNM: s.DistanceNM, TransitTimeHours: s.TransitTimeHours,
			FuelTons: s.FuelTons, FuelCost: s.FuelCost, PortFees: s.PortFees,
			CanalFees: s.CanalFees, WeatherRisk: s.WeatherRisk,
			PiracyRisk: s.PiracyRisk, PoliticalRisk: s.PoliticalRisk,
		})
	}
	return dto
}

type portDTO struct {
	Code             string   `json:"code"`
	Name             string   `json:"name"`
	Country          string   `json:"country"`
	Lat              float64  `json:"lat"`
	Lon              float64  `json:"lon"`
	Type             string   `json:"type"`
	Status           string   `json:"status"`
	MaxLengthM       float64  `json:"max_length_m,omitempty"`
	MaxBeamM         float64  `json:"max_beam_m,omitempty"`
	MaxDraftM        float64  `json:"max_draft_m,omitempty"`
	BerthCount       int      `json:"berth_count"`
	CongestionFactor float64  `json:"congestion_factor,omitempty"`
	AvgStayHours     float64  `json:"avg_stay_hours,omitempty"`
	Services         []string `json:"services,omitempty"`
	CanalConnectivity []string `json:"canal_connectivity,omitempty"`
}

func newPortDTO(p *port.Port) portDTO {
	canals := make([]string, len(p.CanalConnectivity))
	for i, c := range p.CanalConnectivity {
		canals[i] = string(c)
	}
	return portDTO{
		Code: p.Code, Name: p.Name, Country: p.Country,
		Lat: p.Location.Lat, Lon: p.Location.Lon,
		Type: string(p.Type), Status: string(p.Status),
		MaxLengthM: p.MaxLengthM, MaxBeamM: p.MaxBeamM, MaxDraftM: p.MaxDraftM,
		BerthCount: p.BerthCount, CongestionFactor: p.CongestionFactor,
		AvgStayHours: p.AvgStayHours, Services: p.Services,
		CanalConnectivity: canals,
	}
}
