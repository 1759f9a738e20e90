package coordinator

import (
	"testing"

	"searoute/internal/port"
	"searoute/pkg/geo"
)

func validateGraph() *port.Graph {
	g := port.NewGraph()
	g.AddNode(&port.Port{Code: "NLRTM", Status: port.StatusActive, Location: geo.Point{Lat: 51.9, Lon: 4.5}})
	g.AddNode(&port.Port{Code: "BEANR", Status: port.StatusRestricted, Location: geo.Point{Lat: 51.3, Lon: 4.4}})
	g.AddNode(&port.Port{Code: "ZZZZX", Status: port.StatusInactive, Location: geo.Point{Lat: 0, Lon: 0}})
	return g
}

func validRequest() *port.Request {
	return &port.Request{
		RequestID:   "r1",
		Origin:      "NLRTM",
		Destination: "BEANR",
		Criterion:   port.CriterionFastest,
		Vessel: port.VesselConstraints{
			LengthM: 300, BeamM: 45, DraftM: 14,
			CruiseSpeedKn: 18, MaxSpeedKn: 22, FuelType: port.FuelVLSFO,
		},
	}
}

func TestValidateRequest_AcceptsWellFormedRequest(t *testing.T) {
	if err := validateRequest(validateGraph(), validRequest()); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestValidateRequest_AcceptsRestrictedDestination(t *testing.T) {
	req := validRequest()
	req.Destination = "BEANR" // already restricted, not active
	if err := validateRequest(validateGraph(), req); err != nil {
		t.Errorf("restricted ports must be operable: %v", err)
	}
}

func TestValidateRequest_RejectsMalformedLocode(t *testing.T) {
	req := validRequest()
	req.Origin = "nlrtm"
	if err := validateRequest(validateGraph(), req); err == nil {
		t.Error("expected an error for a lowercase origin code")
	}
}

func TestValidateRequest_RejectsIdenticalOriginAndDestination(t *testing.T) {
	req := validRequest()
	req.Destination = req.Origin
	if err := validateRequest(validateGraph(), req); err == nil {
		t.Error("expected an error when origin equals destination")
	}
}

func TestValidateRequest_RejectsUnrecognizedCriterion(t *testing.T) {
	req := validRequest()
	req.Criterion = "quickest"
	if err := validateRequest(validateGraph(), req); err == nil {
		t.Error("expected an error for an unrecognized criterion")
	}
}

func TestValidateRequest_RejectsInvalidVesselDimensions(t *testing.T) {
	req := validRequest()
	req.Vessel.BeamM = 0
	if err := validateRequest(validateGraph(), req); err == nil {
		t.Error("expected an error for a zero beam")
	}
}

func TestValidateRequest_RejectsUnknownOrigin(t *testing.T) {
	req := validRequest()
	req.Origin = "AUSYD"
	if err := validateRequest(validateGraph(), req); err == nil {
		t.Error("expected an error for an origin absent from the graph")
	}
}

func TestValidateRequest_RejectsInactiveDestination(t *testing.T) {
	req := validRequest()
	req.Destination = "ZZZZX"
	if err := validateRequest(validateGraph(), req); err == nil {
		t.Error("expected an error for an inactive destination")
	}
}
