package coordinator

import (
	"searoute/internal/port"
	"searoute/pkg/apperror"
)

// validCriteria enumerates the criterion values the cost model recognizes
// (spec §3).
var validCriteria = map[port.Criterion]bool{
	port.CriterionFastest:    true,
	port.CriterionEconomical: true,
	port.CriterionReliable:   true,
	port.CriterionBalanced:   true,
}

// validateRequest runs step 1 of spec §4.8: syntactic port codes, vessel
// dimensions in range, a recognized criterion, and that both ports resolve
// in the current graph and are operable.
func validateRequest(graph *port.Graph, req *port.Request) error {
	if !port.ValidCode(req.Origin) {
		return apperror.NewWithField(apperror.CodeInvalidLocode, "origin is not a valid UN/LOCODE", "origin")
	}
	if !port.ValidCode(req.Destination) {
		return apperror.NewWithField(apperror.CodeInvalidLocode, "destination is not a valid UN/LOCODE", "destination")
	}
	if req.Origin == req.Destination {
		return apperror.NewWithField(apperror.CodeSameOriginDest, "origin and destination must be distinct ports", "destination")
	}
	if !validCriteria[req.Criterion] {
		return apperror.NewWithField(apperror.CodeValidation, "unrecognized criterion", "criterion")
	}
	if err := req.Vessel.Validate(); err != nil {
		return apperror.Wrap(err, apperror.CodeInvalidVessel, "vessel constraints invalid")
	}

	if _, ok := lookupOperable(graph, req.Origin); !ok {
		return apperror.NewWithField(apperror.CodePortNotFound, "origin port not found or inactive", "origin")
	}
	if _, ok := lookupOperable(graph, req.Destination); !ok {
		return apperror.NewWithField(apperror.CodePortNotFound, "destination port not found or inactive", "destination")
	}

	return nil
}

// lookupOperable resolves code in graph and checks its operational status
// (spec §8: "both endpoints are in active or restricted status").
func lookupOperable(graph *port.Graph, code string) (*port.Port, bool) {
	if graph == nil {
		return nil, false
	}
	p, ok := graph.Nodes[code]
	if !ok || !p.Status.Operable() {
		return nil, false
	}
	return p, true
}
