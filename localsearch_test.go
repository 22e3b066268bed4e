package hgs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalSearch_NeverIncreasesPenalizedCost(t *testing.T) {
	p := randomInstance(t, 15, 123)
	indiv := NewRandomIndividual(p)
	Split(indiv, p)
	before := indiv.Eval.PenalizedCost

	ls := NewLocalSearch(p)
	ls.Run(indiv)

	require.LessOrEqual(t, indiv.Eval.PenalizedCost, before+1e-6)
}

func TestLocalSearch_Idempotent(t *testing.T) {
	p := randomInstance(t, 15, 99)
	indiv := NewRandomIndividual(p)
	Split(indiv, p)

	ls := NewLocalSearch(p)
	ls.Run(indiv)
	costAfterFirst := indiv.Eval.PenalizedCost

	ls.Run(indiv)
	require.InDelta(t, costAfterFirst, indiv.Eval.PenalizedCost, 1e-6,
		"a second LocalSearch pass over an already-locally-optimal individual must not change its cost")
}

func TestLocalSearch_PreservesCustomerSet(t *testing.T) {
	p := randomInstance(t, 12, 55)
	indiv := NewRandomIndividual(p)
	Split(indiv, p)

	ls := NewLocalSearch(p)
	ls.Run(indiv)

	seen := make(map[int]bool)
	for _, route := range indiv.ChromR {
		for _, c := range route {
			require.False(t, seen[c], "customer %d appears twice after local search", c)
			seen[c] = true
		}
	}
	require.Len(t, seen, p.NbClients)
}
