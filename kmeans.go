package hgs

import (
	"math/rand"
)

// Point2D is a plain 2D point, used here as the centre-of-mass
// representation a k-means centre converges to.
type Point2D struct {
	X, Y float64
}

func distSq(a, b Point2D) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// KMeans clusters pts (indexed 0..len(pts)-1) into k groups via k-means
// with k-means++ seeding, then distributes disregard (points excluded
// from the clustering proper, e.g. empty routes) round-robin across the
// resulting clusters. Returns, for each of the k clusters, the indices of
// the points assigned to it.
func KMeans(k int, pts []Point2D, disregard []int, rng *rand.Rand) [][]int {
	if k <= 1 {
		all := make([]int, len(pts))
		for i := range all {
			all[i] = i
		}
		return [][]int{all}
	}

	excluded := make(map[int]bool, len(disregard))
	for _, i := range disregard {
		excluded[i] = true
	}

	ids := make([]int, 0, len(pts))
	for i := range pts {
		if !excluded[i] {
			ids = append(ids, i)
		}
	}

	centres := kmeansPlusPlusSeed(k, ids, pts, rng)
	clusters := assignToNearest(ids, pts, centres)

	for iter := 0; iter < 100; iter++ {
		newCentres := clusterCentroids(clusters, pts)
		if !centresDiffer(newCentres, centres) {
			break
		}
		centres = newCentres
		clusters = assignToNearest(ids, pts, centres)
	}

	for i, id := range disregard {
		clusters[i%len(clusters)] = append(clusters[i%len(clusters)], id)
	}
	return clusters
}

// kmeansPlusPlusSeed picks k initial centres from pts[ids], the first
// uniformly at random and each subsequent one via roulette-wheel
// selection weighted by squared distance to the nearest centre chosen so
// far.
func kmeansPlusPlusSeed(k int, ids []int, pts []Point2D, rng *rand.Rand) []Point2D {
	remaining := append([]int(nil), ids...)
	centres := make([]Point2D, 0, k)

	first := rng.Intn(len(remaining))
	centres = append(centres, pts[remaining[first]])
	remaining = append(remaining[:first], remaining[first+1:]...)

	for len(centres) < k {
		weights := make([]float64, len(remaining))
		for i, id := range remaining {
			weights[i] = minDistSqToAny(pts[id], centres)
		}
		chosen := rouletteWheelSelect(weights, rng)
		centres = append(centres, pts[remaining[chosen]])
		remaining = append(remaining[:chosen], remaining[chosen+1:]...)
	}
	return centres
}

func minDistSqToAny(pt Point2D, centres []Point2D) float64 {
	best := distSq(pt, centres[0])
	for _, c := range centres[1:] {
		if d := distSq(pt, c); d < best {
			best = d
		}
	}
	return best
}

func assignToNearest(ids []int, pts []Point2D, centres []Point2D) [][]int {
	clusters := make([][]int, len(centres))
	for _, id := range ids {
		best, bestDist := 0, distSq(pts[id], centres[0])
		for c := 1; c < len(centres); c++ {
			if d := distSq(pts[id], centres[c]); d < bestDist {
				best, bestDist = c, d
			}
		}
		clusters[best] = append(clusters[best], id)
	}
	return clusters
}

func clusterCentroids(clusters [][]int, pts []Point2D) []Point2D {
	centres := make([]Point2D, len(clusters))
	for c, cluster := range clusters {
		if len(cluster) == 0 {
			continue
		}
		var sx, sy float64
		for _, id := range cluster {
			sx += pts[id].X
			sy += pts[id].Y
		}
		centres[c] = Point2D{X: sx / float64(len(cluster)), Y: sy / float64(len(cluster))}
	}
	return centres
}

// centresDiffer mirrors the original's "different" predicate: true if any
// pair of corresponding centres moved by more than 1e-2 in both
// coordinates.
func centresDiffer(a, b []Point2D) bool {
	for i := range a {
		if absFloat(a[i].X-b[i].X) > 1e-2 && absFloat(a[i].Y-b[i].Y) > 1e-2 {
			return true
		}
	}
	return false
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
