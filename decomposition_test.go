package hgs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func decompositionTestParams(t *testing.T, n int) *Params {
	t.Helper()
	p := randomInstance(t, n, 4242)
	p.Ap.Mu = 6
	p.Ap.Lambda = 4
	p.Ap.DecoTargetSize = 8
	p.Ap.DecoNbIter = 30
	p.Ap.UseDecomposition = true
	return p
}

func TestDecomposition_NoOpBelowTargetSize(t *testing.T) {
	p := decompositionTestParams(t, 5) // below DecoTargetSize=8
	pop := NewPopulation(p)
	pop.Generate(time.Time{})
	best := pop.GetBestFound()
	if best == nil {
		t.Skip("no feasible individual for this seed")
	}
	before := best.Clone()

	d := NewDecomposition(p)
	d.Decompose(best, pop, 0)

	require.Equal(t, before.ChromR, best.ChromR)
}

func TestDecomposition_PreservesCustomerSet(t *testing.T) {
	p := decompositionTestParams(t, 25) // above DecoTargetSize=8
	pop := NewPopulation(p)
	pop.Generate(time.Time{})
	best := pop.GetBestFound()
	if best == nil {
		t.Skip("no feasible individual for this seed")
	}

	d := NewDecomposition(p)
	d.Decompose(best, pop, 0)

	seen := make(map[int]bool)
	for _, route := range best.ChromR {
		for _, c := range route {
			require.False(t, seen[c], "customer %d duplicated after decomposition", c)
			seen[c] = true
		}
	}
	require.Len(t, seen, p.NbClients)
}

func TestRouteBarycentres_OnePointPerRoute(t *testing.T) {
	p := decompositionTestParams(t, 25)
	pop := NewPopulation(p)
	pop.Generate(time.Time{})
	best := pop.GetBestFound()
	if best == nil {
		t.Skip("no feasible individual for this seed")
	}

	barycentres, nonEmpty, _ := routeBarycentres(best, p)
	require.NotEmpty(t, nonEmpty)
	require.Len(t, barycentres, len(best.ChromR))
}
