package port

import "fmt"

// FuelType is one of the marine fuel grades the cost model prices.
type FuelType string

const (
	FuelVLSFO FuelType = "vlsfo"
	FuelMGO   FuelType = "mgo"
	FuelLNG   FuelType = "lng"
	FuelHFO   FuelType = "hfo"
)

// VesselConstraints describes the ship a route is being planned for.
type VesselConstraints struct {
	Type               Type
	LengthM            float64
	BeamM              float64
	DraftM             float64
	DeadweightTonnage  float64 // 0 = unspecified, cost model falls back to 30000
	GrossTonnage       float64
	CruiseSpeedKn      float64
	MaxSpeedKn         float64
	MaxRangeNM         float64
	FuelType           FuelType
	SuezCompatible     bool
	PanamaCompatible   bool
}

// Validate checks the invariants of spec §3.
func (v *VesselConstraints) Validate() error {
	if v.LengthM <= 0 || v.BeamM <= 0 || v.DraftM <= 0 {
		return fmt.Errorf("vessel: length, beam, and draft must be > 0")
	}
	if v.BeamM > v.LengthM {
		return fmt.Errorf("vessel: beam (%v) must be <= length (%v)", v.BeamM, v.LengthM)
	}
	if v.CruiseSpeedKn < 1 || v.CruiseSpeedKn > 40 {
		return fmt.Errorf("vessel: cruise speed %v out of [1, 40]", v.CruiseSpeedKn)
	}
	if v.MaxSpeedKn < v.CruiseSpeedKn || v.MaxSpeedKn > 40 {
		return fmt.Errorf("vessel: max speed %v must be in [cruise speed, 40]", v.MaxSpeedKn)
	}
	switch v.FuelType {
	case FuelVLSFO, FuelMGO, FuelLNG, FuelHFO:
	default:
		return fmt.Errorf("vessel: unrecognized fuel type %q", v.FuelType)
	}
	return nil
}

// DeadweightOrDefault returns the vessel's DWT, or the 30,000-ton default
// the port-fee formula falls back to when it is unspecified (spec §4.5).
func (v *VesselConstraints) DeadweightOrDefault() float64 {
	if v.DeadweightTonnage > 0 {
		return v.DeadweightTonnage
	}
	return 30000
}

// FitsDimensions reports whether the vessel's length, beam, and draft are
// all within the given maxima. A zero maximum means unconstrained.
func (v *VesselConstraints) FitsDimensions(maxLength, maxBeam, maxDraft float64) bool {
	if maxLength > 0 && v.LengthM > maxLength {
		return false
	}
	if maxBeam > 0 && v.BeamM > maxBeam {
		return false
	}
	if maxDraft > 0 && v.DraftM > maxDraft {
		return false
	}
	return true
}

// CanalCompatible reports whether the vessel carries the flag required for
// the given canal.
func (v *VesselConstraints) CanalCompatible(c Canal) bool {
	switch c {
	case CanalSuez:
		return v.SuezCompatible
	case CanalPanama:
		return v.PanamaCompatible
	default:
		// Kiel and Bosphorus carry no separate compatibility flag in this
		// model; any vessel that fits the edge's dimensions may use them.
		return true
	}
}
