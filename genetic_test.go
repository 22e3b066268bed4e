package hgs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenetic_RunProducesFeasibleSolution(t *testing.T) {
	p := randomInstance(t, 20, 2024)
	p.Ap.Mu = 8
	p.Ap.Lambda = 6
	p.Ap.NbIter = 150
	p.Ap.NbIterPenaltyManagement = 20
	p.Ap.NbIterTraces = 1000000

	pop := NewPopulation(p)
	g := NewGenetic(p, pop)
	best := g.Run()

	if best == nil {
		t.Skip("no feasible individual found within the small test budget")
	}
	require.True(t, best.Eval.IsFeasible)
	require.Greater(t, best.Eval.PenalizedCost, 0.0)
}

func TestGenetic_TraceCalledPeriodically(t *testing.T) {
	p := randomInstance(t, 15, 55)
	p.Ap.Mu = 6
	p.Ap.Lambda = 4
	p.Ap.NbIter = 40
	p.Ap.NbIterTraces = 10
	p.Ap.NbIterPenaltyManagement = 10

	pop := NewPopulation(p)
	g := NewGenetic(p, pop)

	calls := 0
	g.Trace = func(iteration int, bestCost float64, nonProd int) { calls++ }
	g.Run()

	require.Greater(t, calls, 0)
}
