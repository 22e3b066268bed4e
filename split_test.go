package hgs

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// bruteForceSplitCost enumerates every way to cut chromT into an ordered
// sequence of at most maxVehicles contiguous routes and returns the
// minimum penalised cost, for comparison against Split's DP result.
func bruteForceSplitCost(chromT []int, p *Params, maxVehicles int) float64 {
	n := len(chromT)
	s := buildSplitPrefixSums(chromT, p)

	var best float64 = math.Inf(1)
	var rec func(i, routesUsed int, cost float64)
	rec = func(i, routesUsed int, cost float64) {
		if cost >= best {
			return
		}
		if i == n {
			if cost < best {
				best = cost
			}
			return
		}
		if routesUsed >= maxVehicles {
			return
		}
		for j := i + 1; j <= n; j++ {
			rec(j, routesUsed+1, cost+s.routeCost(chromT, p, i, j))
		}
	}
	rec(0, 0, 0)
	return best
}

func randomInstance(t *testing.T, n int, seed int64) *Params {
	t.Helper()
	r := rand.New(rand.NewSource(seed))
	clients := make([]Client, n+1)
	for i := 0; i <= n; i++ {
		clients[i] = Client{
			ID:     i,
			X:      float64(r.Intn(50)),
			Y:      float64(r.Intn(50)),
			Demand: float64(1 + r.Intn(5)),
		}
	}
	clients[0].Demand = 0
	ap := NewDefaultAlgorithmParameters()
	ap.NbGranular = 5
	p, err := NewParamsFromCoords(ap, clients, 15, 0, n)
	require.NoError(t, err)
	return p
}

func TestSplit_MatchesBruteForceForSmallInstances(t *testing.T) {
	for trial := 0; trial < 8; trial++ {
		n := 4 + trial
		p := randomInstance(t, n, int64(1000+trial))

		chromT := make([]int, n)
		for i := range chromT {
			chromT[i] = i + 1
		}
		p.Rng.Shuffle(n, func(i, j int) { chromT[i], chromT[j] = chromT[j], chromT[i] })

		indiv := newEmptyIndividual(p)
		indiv.ChromT = append([]int(nil), chromT...)
		Split(indiv, p)

		want := bruteForceSplitCost(chromT, p, p.NbVehicles)
		require.InDelta(t, want, indiv.Eval.PenalizedCost, 1e-6, "trial n=%d", n)
	}
}

func TestSplit_EveryCustomerAssignedExactlyOnce(t *testing.T) {
	p := randomInstance(t, 10, 42)
	indiv := NewRandomIndividual(p)
	Split(indiv, p)

	seen := make(map[int]bool)
	for _, route := range indiv.ChromR {
		for _, c := range route {
			require.False(t, seen[c], "customer %d assigned twice", c)
			seen[c] = true
		}
	}
	require.Len(t, seen, p.NbClients)
}

func TestSplit_RouteCountWithinFleet(t *testing.T) {
	p := randomInstance(t, 10, 7)
	indiv := NewRandomIndividual(p)
	Split(indiv, p)
	require.LessOrEqual(t, indiv.Eval.NbRoutes, p.NbVehicles)
	require.Len(t, indiv.ChromR, p.NbVehicles)
}
