package hgs

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestKMeans_TrivialSingleCluster(t *testing.T) {
	pts := []Point2D{{0, 0}, {10, 10}, {5, 5}}
	clusters := KMeans(1, pts, nil, rand.New(rand.NewSource(1)))
	require.Len(t, clusters, 1)
	require.ElementsMatch(t, []int{0, 1, 2}, clusters[0])
}

func TestKMeans_PartitionsAllPoints(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pts := make([]Point2D, 40)
	for i := range pts {
		pts[i] = Point2D{X: float64(rng.Intn(100)), Y: float64(rng.Intn(100))}
	}

	clusters := KMeans(4, pts, nil, rng)
	require.Len(t, clusters, 4)

	var flattened []int
	seen := make(map[int]bool)
	for _, cl := range clusters {
		for _, id := range cl {
			require.False(t, seen[id], "point %d assigned to multiple clusters", id)
			seen[id] = true
			flattened = append(flattened, id)
		}
	}
	sort.Ints(flattened)

	want := make([]int, len(pts))
	for i := range want {
		want[i] = i
	}
	if diff := cmp.Diff(want, flattened); diff != "" {
		t.Errorf("cluster membership does not partition every point (-want +got):\n%s", diff)
	}
}

func TestKMeans_DistributesDisregardedPointsRoundRobin(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pts := make([]Point2D, 12)
	for i := range pts {
		pts[i] = Point2D{X: float64(i), Y: float64(i)}
	}

	clusters := KMeans(3, pts, []int{9, 10, 11}, rng)
	total := 0
	for _, cl := range clusters {
		total += len(cl)
	}
	require.Equal(t, len(pts), total)

	for _, id := range []int{9, 10, 11} {
		found := false
		for _, cl := range clusters {
			for _, v := range cl {
				if v == id {
					found = true
				}
			}
		}
		require.True(t, found, "disregarded point %d must still appear in some cluster", id)
	}
}
