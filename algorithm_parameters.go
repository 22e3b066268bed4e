package hgs

import "math"

// AlgorithmParameters holds every user-tunable knob of the HGS run. Fields
// carry JSON tags so they can be persisted with
// LoadAlgorithmParametersFromFile/SaveAlgorithmParametersToFile, mirroring
// the teacher's Config JSON round-trip.
type AlgorithmParameters struct {
	NbGranular     int     `json:"nb_granular"`     // granular neighbourhood size per client
	Mu             int     `json:"mu"`              // minimum subpopulation size
	Lambda         int     `json:"lambda"`          // generation size before pruning back to Mu
	NbElite        int     `json:"nb_elite"`        // elite individuals exempt from the diversity bonus
	NbClose        int     `json:"nb_close"`        // neighbours considered for diversity contribution
	TargetFeasible float64 `json:"target_feasible"` // target fraction of feasible admissions

	Seed      int64   `json:"seed"`
	NbIter    int     `json:"nb_iter"`    // non-productive iterations before termination/restart
	TimeLimit float64 `json:"time_limit"` // wall-clock seconds, +Inf for unbounded

	RoundDistances bool `json:"round_distances"` // integer-round distances built from coordinates
	UseSwapStar    bool `json:"use_swap_star"`

	UseDecomposition bool `json:"use_decomposition"`
	DecoIterations   int  `json:"deco_iterations"`  // 0 = auto (5000 if N<=1000 else 2500)
	DecoTargetSize   int  `json:"deco_target_size"` // cluster size target for sub-instances
	DecoNbIter       int  `json:"deco_nb_iter"`     // 0 = inherit NbIter

	NbIterPenaltyManagement int     `json:"nb_iter_penalty_management"`
	NbIterTraces            int     `json:"nb_iter_traces"`
	PenaltyIncrease         float64 `json:"penalty_increase"`
	PenaltyDecrease         float64 `json:"penalty_decrease"`
}

// NewDefaultAlgorithmParameters returns the defaults of spec §6. You must
// still decide the fleet size (MaxVehicles argument to the Params
// constructors) and whatever instance-specific constraint applies.
func NewDefaultAlgorithmParameters() AlgorithmParameters {
	return AlgorithmParameters{
		NbGranular:     20,
		Mu:             25,
		Lambda:         40,
		NbElite:        4,
		NbClose:        5,
		TargetFeasible: 0.2,

		Seed:      0,
		NbIter:    20000,
		TimeLimit: math.MaxFloat64,

		RoundDistances: true,
		UseSwapStar:    true,

		UseDecomposition: false,
		DecoIterations:   0,
		DecoTargetSize:   100,
		DecoNbIter:       0,

		NbIterPenaltyManagement: 100,
		NbIterTraces:            500,
		PenaltyIncrease:         1.2,
		PenaltyDecrease:         0.85,
	}
}

// resolveDefaults fills in the auto-computed fields that depend on instance
// size, matching spec §6's "auto: 5000 if N<=1000 else 2500" and "inherits".
func (ap *AlgorithmParameters) resolveDefaults(nbClients int) {
	if ap.DecoIterations == 0 {
		if nbClients <= 1000 {
			ap.DecoIterations = 5000
		} else {
			ap.DecoIterations = 2500
		}
	}
	if ap.DecoNbIter == 0 {
		ap.DecoNbIter = ap.NbIter
	}
}

// DefaultFleetSize computes the fleet size used when the caller does not
// specify one explicitly (maxVeh < 0): a 30% safety margin plus 3 vehicles
// over the trivial bin-packing lower bound, matching Params.cpp.
func DefaultFleetSize(totalDemand, capacity float64) int {
	return int(math.Ceil(1.3*totalDemand/capacity)) + 3
}
