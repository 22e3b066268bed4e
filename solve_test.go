package hgs

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// nineCustomerInstance builds the depot-plus-9-customer layout used across
// several scenarios: a line of customers at (2..10, 4..5), depot at (1,5).
func nineCustomerInstance() []Client {
	demands := []float64{2, 3, 1, 2, 3, 1, 2, 3, 1}
	clients := make([]Client, 10)
	clients[0] = Client{ID: 0, X: 1, Y: 5}
	for i := 0; i < 9; i++ {
		x := 2 + i
		y := 4 + i%2
		clients[i+1] = Client{ID: i + 1, X: float64(x), Y: float64(y), Demand: demands[i]}
	}
	return clients
}

func TestSolveCoords_SmallInstance_FeasibleTwoRoutes(t *testing.T) {
	ap := NewDefaultAlgorithmParameters()
	ap.Seed = 0
	ap.NbIter = 300
	ap.Mu = 10
	ap.Lambda = 8

	sol, err := SolveCoords(nineCustomerInstance(), SolveOptions{
		Ap:          ap,
		Capacity:    10,
		MaxVehicles: 2,
	})
	require.NoError(t, err)
	if len(sol.Routes) == 0 {
		t.Skip("no feasible individual found within the small test budget")
	}

	require.LessOrEqual(t, len(sol.Routes), 2)
	seen := make(map[int]bool)
	for _, route := range sol.Routes {
		for _, c := range route {
			seen[c] = true
		}
	}
	require.Len(t, seen, 9)
}

// scaledAsymmetricMatrix builds the non-symmetric distance matrix of
// scenario 2: d[i][j] = euclid(i,j) * (1 + 0.05*i - 0.03*j), rounded to the
// nearest integer.
func scaledAsymmetricMatrix(clients []Client) [][]float64 {
	n := len(clients)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		for j := range m[i] {
			dx := clients[i].X - clients[j].X
			dy := clients[i].Y - clients[j].Y
			euclid := math.Sqrt(dx*dx + dy*dy)
			d := euclid * (1 + 0.05*float64(i) - 0.03*float64(j))
			m[i][j] = math.Floor(d + 0.5)
		}
	}
	return m
}

func TestSolveMatrix_AsymmetricDistances_DisablesDecomposition(t *testing.T) {
	clients := nineCustomerInstance()
	matrix := scaledAsymmetricMatrix(clients)
	demands := make([]float64, len(clients))
	for i, c := range clients {
		demands[i] = c.Demand
	}

	ap := NewDefaultAlgorithmParameters()
	ap.Seed = 0
	ap.NbIter = 200
	ap.UseDecomposition = true // should be forced off by SolveMatrix regardless
	ap.Mu = 10
	ap.Lambda = 8

	sol, err := SolveMatrix(demands, matrix, SolveOptions{Ap: ap, Capacity: 10, MaxVehicles: 2})
	require.NoError(t, err)
	require.NotNil(t, sol)
}

func TestSolve_DurationConstraintSatisfied(t *testing.T) {
	clients := nineCustomerInstance()
	ap := NewDefaultAlgorithmParameters()
	ap.Seed = 12
	ap.NbIter = 300
	ap.Mu = 10
	ap.Lambda = 8

	sol, err := SolveCoords(clients, SolveOptions{
		Ap:            ap,
		Capacity:      10,
		DurationLimit: 18,
		MaxVehicles:   5,
	})
	require.NoError(t, err)
	if len(sol.Routes) == 0 {
		t.Skip("no feasible individual found within the small test budget")
	}

	p, err := NewParamsFromCoords(ap, clients, 10, 18, 5)
	require.NoError(t, err)
	for _, route := range sol.Routes {
		dist := p.TimeCost[0][route[0]]
		service := p.Clients[route[0]].ServiceDuration
		for i := 1; i < len(route); i++ {
			dist += p.TimeCost[route[i-1]][route[i]]
			service += p.Clients[route[i]].ServiceDuration
		}
		dist += p.TimeCost[route[len(route)-1]][0]
		require.LessOrEqual(t, dist+service, 18.0+1e-6)
	}
}

func TestSolve_RedundantDurationConstraintMatchesUnconstrained(t *testing.T) {
	clients := nineCustomerInstance()
	baseAp := func() AlgorithmParameters {
		ap := NewDefaultAlgorithmParameters()
		ap.Seed = 7
		ap.NbIter = 200
		ap.Mu = 10
		ap.Lambda = 8
		return ap
	}

	unconstrained, err := SolveCoords(clients, SolveOptions{Ap: baseAp(), Capacity: 10, MaxVehicles: 2})
	require.NoError(t, err)
	redundant, err := SolveCoords(clients, SolveOptions{Ap: baseAp(), Capacity: 10, DurationLimit: 1000, MaxVehicles: 2})
	require.NoError(t, err)

	if unconstrained.Cost == 0 || redundant.Cost == 0 {
		t.Skip("no feasible individual found within the small test budget")
	}
	require.InDelta(t, unconstrained.Cost, redundant.Cost, 1e-6)
}

func TestSolve_PropertyInvariantsAcrossRandomInstances(t *testing.T) {
	for seed := int64(0); seed < 15; seed++ {
		p := randomInstance(t, 10+int(seed%5)*10, 10000+seed)
		p.Ap.Mu = 8
		p.Ap.Lambda = 6
		p.Ap.NbIter = 60

		pop := NewPopulation(p)
		pop.Generate(time.Time{})

		for _, indiv := range pop.all() {
			requireInvariants(t, indiv, p)
		}
		if best := pop.GetBestFound(); best != nil {
			require.True(t, best.Eval.IsFeasible)
		}
	}
}

func requireInvariants(t *testing.T, indiv *Individual, p *Params) {
	t.Helper()

	seen := make(map[int]bool)
	for _, route := range indiv.ChromR {
		for _, c := range route {
			require.False(t, seen[c])
			seen[c] = true
		}
	}
	require.Len(t, seen, p.NbClients)

	expectedPenalized := indiv.Eval.Distance +
		indiv.Eval.CapacityExcess*p.PenaltyCapacity +
		indiv.Eval.DurationExcess*p.PenaltyDuration
	require.InDelta(t, expectedPenalized, indiv.Eval.PenalizedCost, 1e-6)

	wantFeasible := indiv.Eval.CapacityExcess < evalEpsilon && indiv.Eval.DurationExcess < evalEpsilon
	require.Equal(t, wantFeasible, indiv.Eval.IsFeasible)

	for otherID, d := range indiv.Proximity {
		require.GreaterOrEqual(t, d, 0.0)
		_ = otherID
	}

	require.GreaterOrEqual(t, p.PenaltyCapacity, 0.1)
	require.LessOrEqual(t, p.PenaltyCapacity, 1e5)
	require.GreaterOrEqual(t, p.PenaltyDuration, 0.1)
	require.LessOrEqual(t, p.PenaltyDuration, 1e5)
}
