package hgs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func squareClients() []Client {
	return []Client{
		{ID: 0, X: 0, Y: 0, Demand: 0},
		{ID: 1, X: 10, Y: 0, Demand: 5},
		{ID: 2, X: 0, Y: 10, Demand: 5},
		{ID: 3, X: 10, Y: 10, Demand: 5},
	}
}

func TestNewParamsFromCoords_Basic(t *testing.T) {
	ap := NewDefaultAlgorithmParameters()
	ap.NbGranular = 2
	p, err := NewParamsFromCoords(ap, squareClients(), 20, 0, -1)
	require.NoError(t, err)
	require.Equal(t, 3, p.NbClients)
	require.Equal(t, 15.0, p.TotalDemand)
	require.InDelta(t, p.TimeCost[1][2], p.TimeCost[2][1], 1e-9)
	require.False(t, p.IsDurationConstrained)
	require.Equal(t, math.MaxFloat64, p.DurationLimit)
}

func TestNewParamsFromCoords_DefaultFleetSize(t *testing.T) {
	ap := NewDefaultAlgorithmParameters()
	p, err := NewParamsFromCoords(ap, squareClients(), 20, 0, -1)
	require.NoError(t, err)
	// totalDemand=15, capacity=20 -> ceil(1.3*15/20)+3 = ceil(0.975)+3 = 1+3 = 4
	require.Equal(t, 4, p.NbVehicles)
}

func TestNewParamsFromCoords_ExplicitFleetSize(t *testing.T) {
	ap := NewDefaultAlgorithmParameters()
	p, err := NewParamsFromCoords(ap, squareClients(), 20, 0, 7)
	require.NoError(t, err)
	require.Equal(t, 7, p.NbVehicles)
}

func TestNewParamsFromCoords_NoClients(t *testing.T) {
	ap := NewDefaultAlgorithmParameters()
	_, err := NewParamsFromCoords(ap, []Client{{ID: 0}}, 20, 0, -1)
	require.ErrorIs(t, err, ErrUndefinedProblem)
}

func TestNewParamsFromCoords_UndefinedCapacity(t *testing.T) {
	ap := NewDefaultAlgorithmParameters()
	_, err := NewParamsFromCoords(ap, squareClients(), 0, 0, -1)
	require.ErrorIs(t, err, ErrUndefinedProblem)
}

func TestNewParamsFromCoords_InfeasibleFleet(t *testing.T) {
	ap := NewDefaultAlgorithmParameters()
	_, err := NewParamsFromCoords(ap, squareClients(), 20, 0, 0)
	require.ErrorIs(t, err, ErrInfeasibleFleet)
}

func TestNewParamsFromCoords_NumericalInstabilityTinyScale(t *testing.T) {
	ap := NewDefaultAlgorithmParameters()
	ap.RoundDistances = false
	tiny := []Client{
		{ID: 0, X: 0, Y: 0, Demand: 0},
		{ID: 1, X: 0.001, Y: 0, Demand: 1},
	}
	_, err := NewParamsFromCoords(ap, tiny, 10, 0, -1)
	require.ErrorIs(t, err, ErrNumericalInstability)
}

func TestNewParamsFromCoords_DurationConstraint(t *testing.T) {
	ap := NewDefaultAlgorithmParameters()
	p, err := NewParamsFromCoords(ap, squareClients(), 20, 50, -1)
	require.NoError(t, err)
	require.True(t, p.IsDurationConstrained)
	require.Equal(t, 50.0, p.DurationLimit)
}

func TestNewParamsFromMatrix_ShapeMismatch(t *testing.T) {
	ap := NewDefaultAlgorithmParameters()
	_, err := NewParamsFromMatrix(ap, []float64{0, 5, 5}, [][]float64{{0, 1}, {1, 0}}, 10, 0, -1)
	require.ErrorIs(t, err, ErrParse)
}

func TestBuildCorrelatedVertices_Symmetric(t *testing.T) {
	ap := NewDefaultAlgorithmParameters()
	ap.NbGranular = 1
	p, err := NewParamsFromCoords(ap, squareClients(), 20, 0, -1)
	require.NoError(t, err)

	for i := 1; i <= p.NbClients; i++ {
		for _, j := range p.CorrelatedVertices[i] {
			require.Contains(t, p.CorrelatedVertices[j], i, "correlation must be symmetric: %d->%d", i, j)
		}
	}
}

func TestBuildCorrelatedVertices_CappedByGranularity(t *testing.T) {
	ap := NewDefaultAlgorithmParameters()
	ap.NbGranular = 100 // larger than nbClients-1
	p, err := NewParamsFromCoords(ap, squareClients(), 20, 0, -1)
	require.NoError(t, err)
	for i := 1; i <= p.NbClients; i++ {
		require.Len(t, p.CorrelatedVertices[i], p.NbClients-1)
	}
}
