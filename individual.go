package hgs

import (
	"sort"
	"sync/atomic"
)

// nextIndividualID hands out process-wide stable identifiers for
// Individuals. Proximity bookkeeping keys off these ids rather than raw
// pointers: an evicted Individual's id simply stops appearing in anyone's
// proximity map, with no cross-owner pointer to null out and no risk of a
// dangling reference if eviction order varies.
var nextIndividualID atomic.Uint64

func newIndividualID() uint64 {
	return nextIndividualID.Add(1)
}

// Eval is the cost summary of an Individual under the current penalties.
type Eval struct {
	Distance       float64
	CapacityExcess float64
	DurationExcess float64
	NbRoutes       int
	PenalizedCost  float64
	IsFeasible     bool
}

// evalEpsilon is the feasibility tolerance applied to capacity/duration
// excess, matching Individual.cpp's MY_EPSILON.
const evalEpsilon = 1e-9

// Individual is a complete candidate solution: a giant-tour permutation
// (ChromT) plus its decoded per-route assignment (ChromR), evaluated cost,
// and the bookkeeping a Population needs to rank and diversify it.
type Individual struct {
	ID uint64

	ChromT []int   // permutation of {1..N}
	ChromR [][]int // one slice of customer ids per vehicle, empty routes allowed

	Successors   []int // Successors[c] = next client after c, 0 for depot-adjacent end
	Predecessors []int

	Eval Eval

	BiasedFitness float64

	// Proximity maps another Individual's stable id, within the same
	// subpopulation, to its broken-pairs distance from this one. Entries
	// are added/removed symmetrically by the owning Population.
	Proximity map[uint64]float64
}

// NewRandomIndividual builds a fresh Individual with a uniformly shuffled
// giant tour and pre-sized adjacency slices, mirroring the
// Individual(params, generate=true) constructor.
func NewRandomIndividual(p *Params) *Individual {
	indiv := newEmptyIndividual(p)
	indiv.ChromT = p.Rng.Perm(p.NbClients)
	for i := range indiv.ChromT {
		indiv.ChromT[i]++
	}
	return indiv
}

// newEmptyIndividual allocates the slices shared by every construction
// path, leaving ChromT empty and Eval at the "unevaluated" sentinel.
func newEmptyIndividual(p *Params) *Individual {
	return &Individual{
		ID:           newIndividualID(),
		ChromR:       make([][]int, p.NbVehicles),
		Successors:   make([]int, p.NbClients+1),
		Predecessors: make([]int, p.NbClients+1),
		Eval:         Eval{PenalizedCost: 1e30},
		Proximity:    make(map[uint64]float64),
	}
}

// EvaluateCompleteCost recomputes Eval and the Successors/Predecessors
// adjacency from ChromR, under the Params' current penalty levels.
// Mirrors Individual::evaluateCompleteCost exactly, including the
// excess-over-limit accumulation per route.
func (indiv *Individual) EvaluateCompleteCost(p *Params) {
	indiv.Eval = Eval{}
	for r := 0; r < p.NbVehicles; r++ {
		route := indiv.ChromR[r]
		if len(route) == 0 {
			continue
		}

		distance := p.TimeCost[0][route[0]]
		load := p.Clients[route[0]].Demand
		service := p.Clients[route[0]].ServiceDuration
		indiv.Predecessors[route[0]] = 0

		for i := 1; i < len(route); i++ {
			distance += p.TimeCost[route[i-1]][route[i]]
			load += p.Clients[route[i]].Demand
			service += p.Clients[route[i]].ServiceDuration
			indiv.Predecessors[route[i]] = route[i-1]
			indiv.Successors[route[i-1]] = route[i]
		}
		indiv.Successors[route[len(route)-1]] = 0
		distance += p.TimeCost[route[len(route)-1]][0]

		indiv.Eval.Distance += distance
		indiv.Eval.NbRoutes++
		if load > p.VehicleCap {
			indiv.Eval.CapacityExcess += load - p.VehicleCap
		}
		if distance+service > p.DurationLimit {
			indiv.Eval.DurationExcess += distance + service - p.DurationLimit
		}
	}

	indiv.Eval.PenalizedCost = indiv.Eval.Distance +
		indiv.Eval.CapacityExcess*p.PenaltyCapacity +
		indiv.Eval.DurationExcess*p.PenaltyDuration
	indiv.Eval.IsFeasible = indiv.Eval.CapacityExcess < evalEpsilon && indiv.Eval.DurationExcess < evalEpsilon
}

// RebuildChromTFromChromR concatenates the non-empty routes of ChromR, in
// order, back into the giant tour ChromT. Called after LocalSearch, which
// mutates routes directly.
func (indiv *Individual) RebuildChromTFromChromR() {
	indiv.ChromT = indiv.ChromT[:0]
	for _, route := range indiv.ChromR {
		indiv.ChromT = append(indiv.ChromT, route...)
	}
}

// Clone returns a deep copy with a fresh stable id and empty proximity set:
// clones start unconnected to any subpopulation until the caller inserts
// them.
func (indiv *Individual) Clone() *Individual {
	out := &Individual{
		ID:            newIndividualID(),
		ChromT:        append([]int(nil), indiv.ChromT...),
		Successors:    append([]int(nil), indiv.Successors...),
		Predecessors:  append([]int(nil), indiv.Predecessors...),
		Eval:          indiv.Eval,
		BiasedFitness: indiv.BiasedFitness,
		Proximity:     make(map[uint64]float64),
	}
	out.ChromR = make([][]int, len(indiv.ChromR))
	for i, route := range indiv.ChromR {
		out.ChromR[i] = append([]int(nil), route...)
	}
	return out
}

// BrokenPairsDistance counts customer-adjacency pairs present in exactly
// one of the two individuals' successor/predecessor relations, normalized
// by the number of customers. Each customer's neighbours in b are checked
// against its neighbours in a and vice versa, and the two counts are
// averaged, so the distance is symmetric and zero iff the two individuals
// induce the same set of routes up to route order and direction.
func BrokenPairsDistance(a, b *Individual) float64 {
	n := len(a.Successors) - 1
	if n <= 0 {
		return 0
	}
	diff := 0
	for c := 1; c <= n; c++ {
		if a.Successors[c] != b.Successors[c] && a.Predecessors[c] != b.Successors[c] {
			diff++
		}
		if a.Predecessors[c] != b.Predecessors[c] && a.Successors[c] != b.Predecessors[c] {
			diff++
		}
		if b.Successors[c] != a.Successors[c] && b.Predecessors[c] != a.Successors[c] {
			diff++
		}
		if b.Predecessors[c] != a.Predecessors[c] && b.Successors[c] != a.Predecessors[c] {
			diff++
		}
	}
	return float64(diff) / float64(2*n)
}

// AverageBrokenPairsDistanceClosest averages the broken-pairs distance to
// the nbClosest nearest members currently in Proximity, matching
// Individual::averageBrokenPairsDistanceClosest.
func (indiv *Individual) AverageBrokenPairsDistanceClosest(nbClosest int) float64 {
	if len(indiv.Proximity) == 0 {
		return 0
	}
	distances := make([]float64, 0, len(indiv.Proximity))
	for _, d := range indiv.Proximity {
		distances = append(distances, d)
	}
	sort.Float64s(distances)

	maxSize := nbClosest
	if len(distances) < maxSize {
		maxSize = len(distances)
	}
	sum := 0.0
	for i := 0; i < maxSize; i++ {
		sum += distances[i]
	}
	return sum / float64(maxSize)
}
