// Package port defines the plain value types shared by the route-planning
// core: ports, vessels, graph edges, and the assembled route response. These
// are deliberately anemic — no behavior beyond small invariant checks — the
// algorithms that operate on them live in sibling packages.
package port

import (
	"fmt"
	"regexp"

	"searoute/pkg/geo"
)

// Type is the kind of cargo a port is equipped to handle.
type Type string

const (
	TypeContainer     Type = "container"
	TypeBulk          Type = "bulk"
	TypeTanker        Type = "tanker"
	TypeMultipurpose  Type = "multipurpose"
	TypeGeneralCargo  Type = "general_cargo"
	TypeRoRo          Type = "ro_ro"
)

// Status is a port's current operational status.
type Status string

const (
	StatusActive      Status = "active"
	StatusRestricted  Status = "restricted"
	StatusMaintenance Status = "maintenance"
	StatusInactive    Status = "inactive"
)

// Operable reports whether an edge touching a port of this status is
// eligible for routing, per spec §3: "both endpoints' operational status is
// active or restricted".
func (s Status) Operable() bool {
	return s == StatusActive || s == StatusRestricted
}

// Canal identifies a named canal a port or edge may be compatible with.
type Canal string

const (
	CanalSuez      Canal = "suez"
	CanalPanama    Canal = "panama"
	CanalKiel      Canal = "kiel"
	CanalBosphorus Canal = "bosphorus"
)

var locodePattern = regexp.MustCompile(`^[A-Z]{5}$`)

// ValidCode reports whether code is a syntactically valid UN/LOCODE.
func ValidCode(code string) bool {
	return locodePattern.MatchString(code)
}

// Port is a single node in the port graph.
type Port struct {
	Code              string
	Name              string
	Country           string
	Location          geo.Point
	Type              Type
	Status            Status
	MaxLengthM        float64 // 0 means unconstrained
	MaxBeamM          float64
	MaxDraftM         float64
	BerthCount        int
	CongestionFactor  float64 // [0.5, 3.0]
	AvgStayHours      float64
	Services          []string
	CanalConnectivity []Canal
}

// Validate checks the invariants of spec §3.
func (p *Port) Validate() error {
	if !ValidCode(p.Code) {
		return fmt.Errorf("port: invalid UN/LOCODE %q", p.Code)
	}
	if p.Location.Lat < -90 || p.Location.Lat > 90 {
		return fmt.Errorf("port %s: latitude %v out of range", p.Code, p.Location.Lat)
	}
	if p.Location.Lon < -180 || p.Location.Lon > 180 {
		return fmt.Errorf("port %s: longitude %v out of range", p.Code, p.Location.Lon)
	}
	if p.MaxLengthM < 0 || p.MaxBeamM < 0 || p.MaxDraftM < 0 {
		return fmt.Errorf("port %s: max dimensions must be positive when present", p.Code)
	}
	if p.CongestionFactor != 0 && (p.CongestionFactor < 0.5 || p.CongestionFactor > 3.0) {
		return fmt.Errorf("port %s: congestion factor %v out of [0.5, 3.0]", p.Code, p.CongestionFactor)
	}
	return nil
}

// HasCanal reports whether the port is connected to the given canal.
func (p *Port) HasCanal(c Canal) bool {
	for _, pc := range p.CanalConnectivity {
		if pc == c {
			return true
		}
	}
	return false
}

// IsHubCandidate reports whether the port qualifies for hub-edge selection
// per spec §4.4: multipurpose or container-terminal type, ranked by berths.
func (p *Port) IsHubCandidate() bool {
	return p.Type == TypeMultipurpose || p.Type == TypeContainer
}
