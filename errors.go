package hgs

import "errors"

// Sentinel errors surfaced at the boundary of the solver. Internal invariant
// violations (corrupt proximity bookkeeping, empty subpopulation on
// eviction) are programming errors and panic instead; see assertions spread
// through population.go and individual.go.
var (
	// ErrParse indicates a malformed CVRPLIB/TSPLIB instance file: an
	// unrecognised keyword, a missing section, or a depot id other than 1.
	ErrParse = errors.New("parse error")

	// ErrUndefinedProblem indicates the instance has no clients or no
	// vehicle capacity.
	ErrUndefinedProblem = errors.New("undefined problem")

	// ErrNumericalInstability indicates the distance or demand scale falls
	// outside [0.1, 1e5], which can destabilise the penalty adaptation.
	ErrNumericalInstability = errors.New("numerical instability")

	// ErrInfeasibleFleet indicates fewer vehicles than the trivial
	// bin-packing lower bound ceil(totalDemand/capacity).
	ErrInfeasibleFleet = errors.New("infeasible fleet size")

	// ErrIO indicates the instance or solution path could not be opened.
	ErrIO = errors.New("io error")
)
