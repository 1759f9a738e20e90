package portgraph

import (
	"math"

	"searoute/internal/port"
	"searoute/pkg/geo"
)

// WeatherBand is one band of the latitude-banded weather-zone lookup: legs
// whose midpoint absolute latitude is below MaxAbsLat take Factor as their
// time multiplier. Bands are evaluated in order; the last band in the
// slice is the catch-all and its MaxAbsLat is ignored.
type WeatherBand struct {
	MaxAbsLat float64
	Factor    float64
}

// CountryRisk is a single country's elevated piracy/political risk score
// ([0,100]); a country absent from RiskTables.CountryRisk carries the
// configured baseline instead.
type CountryRisk struct {
	Piracy    float64
	Political float64
}

// RiskTables carries the weather-zone and country-risk tables the builder
// stamps onto each edge (spec §4.4). These are configuration inputs to the
// graph builder, not compiled-in constants (spec §9): an operator can
// recalibrate a weather band or a country's risk score — say, after a
// canal reopens or a conflict subsides — without a binary rebuild.
// DefaultRiskTables reproduces the values this package used to hard-code,
// for tests and any caller that hasn't wired a config source.
type RiskTables struct {
	WeatherBands      []WeatherBand
	CountryRisk       map[string]CountryRisk
	BaselinePiracy    float64
	BaselinePolitical float64
}

// DefaultRiskTables returns the built-in weather/risk tables used when no
// configuration source overrides them.
func DefaultRiskTables() RiskTables {
	return RiskTables{
		WeatherBands: []WeatherBand{
			{MaxAbsLat: 10, Factor: 1.10}, // doldrums / ITCZ squalls
			{MaxAbsLat: 35, Factor: 1.00}, // temperate trade lanes
			{MaxAbsLat: 55, Factor: 1.15}, // roaring-forties adjacent
			{Factor: 1.35},                // high-latitude storm tracks (catch-all)
		},
		// A small curated set of countries known for elevated piracy or
		// political risk along their approaches. Countries absent from
		// the table carry the baseline.
		CountryRisk: map[string]CountryRisk{
			"SO": {Piracy: 70, Political: 55}, // Gulf of Aden / Somali basin approaches
			"NG": {Piracy: 60, Political: 35}, // Gulf of Guinea
			"YE": {Piracy: 45, Political: 65},
			"MM": {Piracy: 20, Political: 40},
			"VE": {Piracy: 10, Political: 50},
			"LY": {Piracy: 15, Political: 60},
		},
		BaselinePiracy:    3.0,
		BaselinePolitical: 5.0,
	}
}

// weatherFactor returns the weather-zone multiplier for a leg between a
// and b (spec §4.4: "weather-zone factor from a static zone map"). Rather
// than a real polygon lookup table, zones are banded by absolute latitude:
// the tropics and the high latitudes see materially worse average transit
// conditions than the temperate belt a typical trade route crosses.
func weatherFactor(a, b geo.Point, bands []WeatherBand) float64 {
	if len(bands) == 0 {
		bands = DefaultRiskTables().WeatherBands
	}
	mid := (math.Abs(a.Lat) + math.Abs(b.Lat)) / 2
	for _, band := range bands[:len(bands)-1] {
		if mid < band.MaxAbsLat {
			return band.Factor
		}
	}
	return bands[len(bands)-1].Factor
}

// edgeRisk returns the (piracy, political) risk pair for a leg between
// ports in countries a and b: the greater of each endpoint's individual
// exposure, since an edge is as risky as its worst approach.
func edgeRisk(a, b string, rt RiskTables) (piracy, political float64) {
	pa, oka := rt.CountryRisk[a]
	pb, okb := rt.CountryRisk[b]

	piracy, political = rt.BaselinePiracy, rt.BaselinePolitical
	if oka {
		piracy = math.Max(piracy, pa.Piracy)
		political = math.Max(political, pa.Political)
	}
	if okb {
		piracy = math.Max(piracy, pb.Piracy)
		political = math.Max(political, pb.Political)
	}
	return piracy, political
}

// canalKind maps a Canal to the Edge.Kind recorded on a canal edge.
func canalKind(c port.Canal) port.EdgeKind {
	switch c {
	case port.CanalSuez:
		return port.EdgeCanalSuez
	case port.CanalPanama:
		return port.EdgeCanalPanama
	default:
		return port.EdgeCoastal
	}
}

// legKind classifies a non-canal edge by distance: short hops between
// neighboring ports are coastal traffic, long hops are open-sea crossings.
func legKind(distanceNM float64) port.EdgeKind {
	if distanceNM <= 250 {
		return port.EdgeCoastal
	}
	return port.EdgeOpenSea
}
