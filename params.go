package hgs

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Params bundles an instance together with the AlgorithmParameters tuning
// its resolution, and every value derived once up front: the distance
// matrix, the granular-neighbourhood correlated vertices, penalty scale,
// and the PRNG driving every subsequent randomized decision.
type Params struct {
	Ap AlgorithmParameters

	Clients       []Client // index 0 is the depot
	NbClients     int      // excludes the depot
	NbVehicles    int
	VehicleCap    float64
	DurationLimit float64 // math.MaxFloat64 when unconstrained
	IsDurationConstrained bool

	TotalDemand float64
	MaxDemand   float64
	MaxDist     float64

	// TimeCost[i][j] is the (optionally rounded) travel cost from client i
	// to client j, indices over [0, NbClients].
	TimeCost [][]float64

	// CorrelatedVertices[i] lists the granular neighbourhood of client i:
	// the union of i's NbGranular nearest clients and clients having i
	// among their own NbGranular nearest.
	CorrelatedVertices [][]int

	PenaltyCapacity float64
	PenaltyDuration float64

	Rng *rand.Rand
}

// NewParamsFromCoords builds Params from client coordinates, computing the
// Euclidean distance matrix and polar angles around the depot (client 0).
// maxVeh < 0 requests the automatic fleet size of DefaultFleetSize.
func NewParamsFromCoords(ap AlgorithmParameters, clients []Client, capacity, durationLimit float64, maxVeh int) (*Params, error) {
	if len(clients) < 2 {
		return nil, fmt.Errorf("%w: instance has no clients", ErrUndefinedProblem)
	}
	nbClients := len(clients) - 1

	matrix := make([][]float64, len(clients))
	for i := range clients {
		matrix[i] = make([]float64, len(clients))
		for j := range clients {
			dx := clients[i].X - clients[j].X
			dy := clients[i].Y - clients[j].Y
			d := math.Sqrt(dx*dx + dy*dy)
			if ap.RoundDistances {
				d = math.Floor(d + 0.5)
			}
			matrix[i][j] = d
		}
	}

	out := make([]Client, len(clients))
	copy(out, clients)
	for i := range out {
		out[i].HasCoords = true
		if i > 0 {
			out[i].PolarAngle = computePolarAngle(out[i].X, out[i].Y, out[0].X, out[0].Y)
		}
	}

	return newParams(ap, out, nbClients, matrix, capacity, durationLimit, maxVeh)
}

// NewParamsFromMatrix builds Params from an explicit distance matrix
// (matrix[i][j], indices 0..nbClients, depot first), for instances with no
// coordinate system, e.g. asymmetric or measured travel times.
func NewParamsFromMatrix(ap AlgorithmParameters, demands []float64, matrix [][]float64, capacity, durationLimit float64, maxVeh int) (*Params, error) {
	if len(demands) < 2 {
		return nil, fmt.Errorf("%w: instance has no clients", ErrUndefinedProblem)
	}
	nbClients := len(demands) - 1
	if len(matrix) != len(demands) {
		return nil, fmt.Errorf("%w: distance matrix size %d does not match %d demands", ErrParse, len(matrix), len(demands))
	}
	for i, row := range matrix {
		if len(row) != len(demands) {
			return nil, fmt.Errorf("%w: distance matrix row %d has length %d, expected %d", ErrParse, i, len(row), len(demands))
		}
	}

	clients := make([]Client, len(demands))
	for i, d := range demands {
		clients[i] = Client{ID: i, Demand: d, HasCoords: false}
	}

	dup := make([][]float64, len(matrix))
	for i := range matrix {
		dup[i] = append([]float64(nil), matrix[i]...)
	}

	return newParams(ap, clients, nbClients, dup, capacity, durationLimit, maxVeh)
}

// newParams shares the validation, fleet sizing, correlated-vertices
// construction, and penalty initialization common to both constructors,
// mirroring Params.cpp's single linear constructor body.
func newParams(ap AlgorithmParameters, clients []Client, nbClients int, matrix [][]float64, capacity, durationLimit float64, maxVeh int) (*Params, error) {
	if nbClients <= 0 {
		return nil, fmt.Errorf("%w: number of clients is undefined", ErrUndefinedProblem)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: vehicle capacity is undefined", ErrUndefinedProblem)
	}

	clients[0].ServiceDuration = 0

	totalDemand, maxDemand := 0.0, 0.0
	for i := 1; i <= nbClients; i++ {
		if clients[i].Demand > maxDemand {
			maxDemand = clients[i].Demand
		}
		totalDemand += clients[i].Demand
	}

	maxVehicles := maxVeh
	if maxVehicles < 0 {
		maxVehicles = DefaultFleetSize(totalDemand, capacity)
	}

	maxDist := 0.0
	for i := 0; i <= nbClients; i++ {
		for j := 0; j <= nbClients; j++ {
			if matrix[i][j] > maxDist {
				maxDist = matrix[i][j]
			}
		}
	}

	ap.resolveDefaults(nbClients)
	correlated := buildCorrelatedVertices(matrix, nbClients, ap.NbGranular)

	if maxDist < 0.1 || maxDist > 100000 {
		return nil, fmt.Errorf("%w: distance scale %.4f is outside [0.1, 1e5]", ErrNumericalInstability, maxDist)
	}
	if maxDemand < 0.1 || maxDemand > 100000 {
		return nil, fmt.Errorf("%w: demand scale %.4f is outside [0.1, 1e5]", ErrNumericalInstability, maxDemand)
	}
	if float64(maxVehicles) < math.Ceil(totalDemand/capacity) {
		return nil, fmt.Errorf("%w: %d vehicles cannot service total demand %.2f at capacity %.2f", ErrInfeasibleFleet, maxVehicles, totalDemand, capacity)
	}

	isDurationConstrained := durationLimit > 0 && durationLimit < math.MaxFloat64
	if durationLimit <= 0 {
		durationLimit = math.MaxFloat64
	}

	return &Params{
		Ap:                    ap,
		Clients:               clients,
		NbClients:             nbClients,
		NbVehicles:            maxVehicles,
		VehicleCap:            capacity,
		DurationLimit:         durationLimit,
		IsDurationConstrained: isDurationConstrained,
		TotalDemand:           totalDemand,
		MaxDemand:             maxDemand,
		MaxDist:               maxDist,
		TimeCost:              matrix,
		CorrelatedVertices:    correlated,
		PenaltyCapacity:       math.Max(0.1, math.Min(1000, maxDist/maxDemand)),
		PenaltyDuration:       1,
		Rng:                   rand.New(rand.NewSource(ap.Seed)),
	}, nil
}

// buildCorrelatedVertices computes, for every client, the symmetric union
// of its nbGranular nearest neighbours and the clients for which it is
// itself among the nbGranular nearest, matching Params.cpp's
// setCorrelatedVertices construction.
func buildCorrelatedVertices(matrix [][]float64, nbClients, nbGranular int) [][]int {
	sets := make([]map[int]struct{}, nbClients+1)
	for i := 1; i <= nbClients; i++ {
		sets[i] = make(map[int]struct{})
	}

	type proximity struct {
		dist float64
		id   int
	}

	limit := nbGranular
	if nbClients-1 < limit {
		limit = nbClients - 1
	}

	for i := 1; i <= nbClients; i++ {
		order := make([]proximity, 0, nbClients-1)
		for j := 1; j <= nbClients; j++ {
			if i != j {
				order = append(order, proximity{matrix[i][j], j})
			}
		}
		sort.Slice(order, func(a, b int) bool {
			if order[a].dist != order[b].dist {
				return order[a].dist < order[b].dist
			}
			return order[a].id < order[b].id
		})
		for k := 0; k < limit; k++ {
			j := order[k].id
			sets[i][j] = struct{}{}
			sets[j][i] = struct{}{}
		}
	}

	out := make([][]int, nbClients+1)
	for i := 1; i <= nbClients; i++ {
		neighbours := make([]int, 0, len(sets[i]))
		for j := range sets[i] {
			neighbours = append(neighbours, j)
		}
		sort.Ints(neighbours)
		out[i] = neighbours
	}
	return out
}
