package costmodel

import (
	"math"
	"testing"

	"searoute/internal/port"
)

func sampleEdge() *port.Edge {
	return &port.Edge{
		From: "NLRTM", To: "BEANR",
		DistanceNM:     200,
		BaseCongestion: 1.0,
		WeatherFactor:  1.0,
		PiracyRisk:     3,
		PoliticalRisk:  5,
	}
}

func sampleVessel() *port.VesselConstraints {
	return &port.VesselConstraints{
		Type:          port.TypeContainer,
		CruiseSpeedKn: 20,
		FuelType:      port.FuelVLSFO,
	}
}

func TestEvaluate_TimeHours(t *testing.T) {
	b := DefaultTables().Evaluate(sampleEdge(), sampleVessel())
	want := 200.0 / 20.0
	if math.Abs(b.TimeHours-want) > 1e-9 {
		t.Errorf("TimeHours = %v, want %v", b.TimeHours, want)
	}
}

func TestEvaluate_FuelTonsCubeLaw(t *testing.T) {
	b := DefaultTables().Evaluate(sampleEdge(), sampleVessel())
	ratio := 20.0 / referenceSpeedKn
	want := 150 * ratio * ratio * ratio * (b.TimeHours / 24)
	if math.Abs(b.FuelTons-want) > 1e-6 {
		t.Errorf("FuelTons = %v, want %v", b.FuelTons, want)
	}
}

func TestEvaluate_FuelCost(t *testing.T) {
	tables := DefaultTables()
	b := tables.Evaluate(sampleEdge(), sampleVessel())
	want := b.FuelTons * tables.FuelPrice[port.FuelVLSFO]
	if math.Abs(b.FuelCost-want) > 1e-6 {
		t.Errorf("FuelCost = %v, want %v", b.FuelCost, want)
	}
}

func TestEvaluate_NoCanalFeesOnNonCanalEdge(t *testing.T) {
	b := DefaultTables().Evaluate(sampleEdge(), sampleVessel())
	if b.CanalFees != 0 {
		t.Errorf("expected zero canal fees on non-canal edge, got %v", b.CanalFees)
	}
}

func TestEvaluate_CanalFeesOnSuezEdge(t *testing.T) {
	e := sampleEdge()
	e.CanalRequired = port.CanalSuez
	b := DefaultTables().Evaluate(e, sampleVessel())
	if b.CanalFees <= 0 {
		t.Error("expected positive canal fees on Suez edge")
	}
}

func TestEvaluate_UnknownTypeAndFuelFallBackToDefaults(t *testing.T) {
	e := sampleEdge()
	v := &port.VesselConstraints{Type: port.TypeRoRo, CruiseSpeedKn: 20, FuelType: "unknown"}
	b := DefaultTables().Evaluate(e, v)
	if b.FuelTons <= 0 || b.FuelCost <= 0 {
		t.Error("expected fallback base rate/price to still produce positive fuel figures")
	}
}

func TestEvaluate_SpeedCappedOnCanalEdge(t *testing.T) {
	e := sampleEdge()
	e.Kind = port.EdgeCanalSuez
	e.CanalRequired = port.CanalSuez
	fast := &port.VesselConstraints{Type: port.TypeContainer, CruiseSpeedKn: 22, FuelType: port.FuelVLSFO}
	b := DefaultTables().Evaluate(e, fast)
	want := 200.0 / 8.0 // Suez transit speed cap, well below the vessel's 22kn rating
	if math.Abs(b.TimeHours-want) > 1e-9 {
		t.Errorf("TimeHours = %v, want %v (vessel speed should be capped)", b.TimeHours, want)
	}
}

func TestEvaluate_SpeedCapDoesNotRaiseASlowerVessel(t *testing.T) {
	e := sampleEdge()
	e.Kind = port.EdgeCanalSuez
	e.CanalRequired = port.CanalSuez
	slow := &port.VesselConstraints{Type: port.TypeContainer, CruiseSpeedKn: 6, FuelType: port.FuelVLSFO}
	b := DefaultTables().Evaluate(e, slow)
	want := 200.0 / 6.0
	if math.Abs(b.TimeHours-want) > 1e-9 {
		t.Errorf("TimeHours = %v, want %v (cap should never speed up a slower vessel)", b.TimeHours, want)
	}
}

func TestScalarCost_Fastest(t *testing.T) {
	b := Breakdown{TimeHours: 10}
	if got := ScalarCost(b, 0, port.CriterionFastest); got != 10 {
		t.Errorf("ScalarCost = %v, want 10", got)
	}
}

func TestScalarCost_Economical(t *testing.T) {
	b := Breakdown{FuelCost: 1000, CanalFees: 200}
	got := ScalarCost(b, 50, port.CriterionEconomical)
	if got != 1250 {
		t.Errorf("ScalarCost = %v, want 1250", got)
	}
}

func TestScalarCost_Reliable_PenalizesHigherRisk(t *testing.T) {
	low := Breakdown{TimeHours: 10, Risk: 5}
	high := Breakdown{TimeHours: 10, Risk: 50}

	lowCost := ScalarCost(low, 0, port.CriterionReliable)
	highCost := ScalarCost(high, 0, port.CriterionReliable)
	if highCost <= lowCost {
		t.Errorf("expected higher risk to raise cost: low=%v high=%v", lowCost, highCost)
	}
}

func TestScalarCost_Balanced_IsWeightedBlend(t *testing.T) {
	b := Breakdown{TimeHours: 24, FuelCost: 100000, Risk: 100}
	got := ScalarCost(b, 0, port.CriterionBalanced)
	want := 0.4*1.0 + 0.35*1.0 + 0.25*1.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("ScalarCost = %v, want %v", got, want)
	}
}

func TestBasePortFee_DefaultsWhenDWTUnspecified(t *testing.T) {
	fee := BasePortFee(0)
	if fee <= 0 {
		t.Error("expected positive default port fee")
	}
}

func TestBasePortFee_IncreasesWithTonnage(t *testing.T) {
	small := BasePortFee(10000)
	large := BasePortFee(100000)
	if large <= small {
		t.Errorf("expected larger vessel to pay more: small=%v large=%v", small, large)
	}
}

func TestCanalFee_NonCanalIsZero(t *testing.T) {
	tables := DefaultTables()
	if fee := tables.CanalFee("", 30000); fee != 0 {
		t.Errorf("expected zero fee for non-canal, got %v", fee)
	}
	if fee := tables.CanalFee(port.CanalKiel, 30000); fee != 0 {
		t.Errorf("expected zero fee for Kiel (no toll modeled), got %v", fee)
	}
}

func TestCanalFee_SuezScalesWithTonnage(t *testing.T) {
	tables := DefaultTables()
	small := tables.CanalFee(port.CanalSuez, 10000)
	large := tables.CanalFee(port.CanalSuez, 100000)
	if large <= small {
		t.Errorf("expected larger vessel to pay more Suez toll: small=%v large=%v", small, large)
	}
}
