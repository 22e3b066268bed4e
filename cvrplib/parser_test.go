package cvrplib

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleInstance = `NAME: toy
TYPE: CVRP
DIMENSION: 4
EDGE_WEIGHT_TYPE: EUC_2D
CAPACITY: 10
SERVICE_TIME: 1
NODE_COORD_SECTION
1 0 0
2 1 0
3 0 1
4 1 1
DEMAND_SECTION
1 0
2 3
3 4
4 2
DEPOT_SECTION
1
-1
EOF
`

func parse(t *testing.T, text string) (*Instance, error) {
	t.Helper()
	return Parse(bufio.NewReader(strings.NewReader(text)))
}

func TestParse_ValidInstance(t *testing.T) {
	inst, err := parse(t, sampleInstance)
	require.NoError(t, err)
	require.Equal(t, "toy", inst.Name)
	require.Equal(t, 4, inst.Dimension)
	require.InDelta(t, 10.0, inst.Capacity, 0)
	require.Len(t, inst.Clients, 4)
	require.InDelta(t, 1.0, inst.Clients[1].X, 0)
	require.InDelta(t, 3.0, inst.Clients[1].Demand, 0)
	require.InDelta(t, 1.0, inst.Clients[1].ServiceDuration, 0)
	require.InDelta(t, 0.0, inst.Clients[0].Demand, 0, "depot demand must be zero")
	require.InDelta(t, 0.0, inst.DurationLimit, 0)
}

func TestParse_DistanceKeywordSetsDurationLimit(t *testing.T) {
	withDistance := strings.Replace(sampleInstance, "CAPACITY: 10\n", "CAPACITY: 10\nDISTANCE: 18\n", 1)
	inst, err := parse(t, withDistance)
	require.NoError(t, err)
	require.InDelta(t, 18.0, inst.DurationLimit, 0)
}

func TestParse_UnrecognisedKeywordIsFatal(t *testing.T) {
	bad := strings.Replace(sampleInstance, "TYPE: CVRP\n", "TYPE: CVRP\nWEIRD_KEY: 1\n", 1)
	_, err := parse(t, bad)
	require.Error(t, err)
}

func TestParse_DepotIDMustBeOne(t *testing.T) {
	bad := strings.Replace(sampleInstance, "DEPOT_SECTION\n1\n", "DEPOT_SECTION\n2\n", 1)
	_, err := parse(t, bad)
	require.Error(t, err)
}

func TestParse_MissingSectionIsFatal(t *testing.T) {
	noDemand := strings.Replace(sampleInstance, "DEMAND_SECTION\n1 0\n2 3\n3 4\n4 2\n", "", 1)
	_, err := parse(t, noDemand)
	require.Error(t, err)
}

func TestParse_MissingNodeRowIsFatal(t *testing.T) {
	truncated := strings.Replace(sampleInstance, "4 1 1\n", "", 1)
	_, err := parse(t, truncated)
	require.Error(t, err)
}
