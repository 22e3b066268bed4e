package hgs

import (
	"math"
	"time"
)

// Decomposition implements Barycentre Clustering decomposition: every
// decoIterations main-loop iterations, it clusters the routes of an elite
// individual by route barycentre, solves each cluster as an independent
// reduced HGS sub-instance, and re-injects the recomposed solution into
// the master Population.
type Decomposition struct {
	p   *Params
	pop *Population
}

// NewDecomposition binds a Decomposition to the master Params. The
// Population is supplied per call to Decompose so Decomposition can be
// constructed before the master Population exists.
func NewDecomposition(p *Params) *Decomposition {
	return &Decomposition{p: p}
}

// Decompose runs one full decomposition pass against elite, admitting the
// recomposed solution into pop. timeElapsed is how much of the run's time
// budget has already been spent, used to size each sub-solve's remaining
// budget.
func (d *Decomposition) Decompose(elite *Individual, pop *Population, timeElapsed time.Duration) {
	d.pop = pop
	if !d.p.Clients[1].HasCoords || d.p.NbClients <= d.p.Ap.DecoTargetSize {
		return
	}

	barycentres, nonEmptyRoutes, emptyRoutes := routeBarycentres(elite, d.p)
	if len(nonEmptyRoutes) == 0 {
		return
	}

	k := int(math.Ceil(float64(d.p.NbClients) / float64(d.p.Ap.DecoTargetSize)))
	if k < 2 || k > len(nonEmptyRoutes) {
		return
	}

	clusters := KMeans(k, barycentres, emptyRoutes, d.p.Rng)

	remaining := d.p.Ap.TimeLimit - timeElapsed.Seconds()

	for _, routeIdxCluster := range clusters {
		nonEmptyInCluster := filterNonEmpty(routeIdxCluster, nonEmptyRoutes)
		if len(nonEmptyInCluster) == 0 {
			continue
		}
		spent := d.solveCluster(elite, routeIdxCluster, nonEmptyInCluster, remaining)
		remaining -= spent.Seconds()
		if remaining < 0 {
			remaining = 0
		}
	}
}

// routeBarycentres returns, for every route of elite (indexed exactly as
// elite.ChromR), the mean coordinate of its customers, plus the indices of
// non-empty and empty routes.
func routeBarycentres(elite *Individual, p *Params) (points []Point2D, nonEmpty, empty []int) {
	points = make([]Point2D, len(elite.ChromR))
	for r, route := range elite.ChromR {
		if len(route) == 0 {
			empty = append(empty, r)
			continue
		}
		nonEmpty = append(nonEmpty, r)
		var sx, sy float64
		for _, c := range route {
			sx += p.Clients[c].X
			sy += p.Clients[c].Y
		}
		points[r] = Point2D{X: sx / float64(len(route)), Y: sy / float64(len(route))}
	}
	return points, nonEmpty, empty
}

// distributeEmptyRoutes appends empty route indices round-robin across
// the clusters produced for the non-empty routes.
func distributeEmptyRoutes(clusters [][]int, empty []int) [][]int {
	for i, r := range empty {
		clusters[i%len(clusters)] = append(clusters[i%len(clusters)], r)
	}
	return clusters
}

func filterNonEmpty(cluster []int, nonEmpty []int) []int {
	set := make(map[int]bool, len(nonEmpty))
	for _, r := range nonEmpty {
		set[r] = true
	}
	out := make([]int, 0, len(cluster))
	for _, r := range cluster {
		if set[r] {
			out = append(out, r)
		}
	}
	return out
}

// solveCluster builds the sub-Params for one cluster, runs a full Genetic
// against it, recomposes the winning routes (sub-solve vs elite's
// original, whichever is cheaper) back into elite and into the master
// Population, and returns the wall-clock time spent.
func (d *Decomposition) solveCluster(elite *Individual, fullCluster, eliteRoutes []int, remaining float64) time.Duration {
	start := time.Now()

	sub := buildSubProblem(d.p, elite, eliteRoutes, remaining)
	subPop := NewPopulation(sub.params)
	subPop.Generate(time.Time{})
	subGenetic := NewGenetic(sub.params, subPop)
	subBest := subGenetic.Run()

	spent := time.Since(start)

	eliteDistance := routesDistance(elite, eliteRoutes, d.p)

	if subBest != nil && subRoutesDistance(subBest, sub.params) < eliteDistance {
		applySubSolutionToElite(elite, eliteRoutes, subBest, sub)
	}

	elite.RebuildChromTFromChromR()
	elite.EvaluateCompleteCost(d.p)
	d.pop.Add(elite, true)

	return spent
}

func routesDistance(indiv *Individual, routeIdxs []int, p *Params) float64 {
	total := 0.0
	for _, r := range routeIdxs {
		route := indiv.ChromR[r]
		if len(route) == 0 {
			continue
		}
		total += p.TimeCost[0][route[0]]
		for i := 1; i < len(route); i++ {
			total += p.TimeCost[route[i-1]][route[i]]
		}
		total += p.TimeCost[route[len(route)-1]][0]
	}
	return total
}

func subRoutesDistance(indiv *Individual, p *Params) float64 {
	total := 0.0
	for _, route := range indiv.ChromR {
		if len(route) == 0 {
			continue
		}
		total += p.TimeCost[0][route[0]]
		for i := 1; i < len(route); i++ {
			total += p.TimeCost[route[i-1]][route[i]]
		}
		total += p.TimeCost[route[len(route)-1]][0]
	}
	return total
}

// subProblem bundles the reindexed sub-instance Params together with the
// bidirectional customer-id mapping needed to merge its solution back.
type subProblem struct {
	mpParams *Params
	params   *Params
	mpToSp   map[int]int
	spToMp   map[int]int
}

// buildSubProblem reindexes the customers visited by eliteRoutes into a
// fresh 1..n' numbering, restricts the distance matrix accordingly, and
// scales down population/iteration tunables, matching spec §4.5 step 5.
func buildSubProblem(mpParams *Params, elite *Individual, eliteRoutes []int, remaining float64) *subProblem {
	mpToSp := make(map[int]int)
	spToMp := make(map[int]int)
	var spClients []Client
	spClients = append(spClients, mpParams.Clients[0]) // depot

	for _, r := range eliteRoutes {
		for _, c := range elite.ChromR[r] {
			if _, ok := mpToSp[c]; ok {
				continue
			}
			spID := len(spClients)
			mpToSp[c] = spID
			spToMp[spID] = c
			spClients = append(spClients, mpParams.Clients[c])
		}
	}

	n := len(spClients) - 1
	matrix := make([][]float64, n+1)
	for i := range matrix {
		matrix[i] = make([]float64, n+1)
	}
	for spI := 0; spI <= n; spI++ {
		mpI := 0
		if spI > 0 {
			mpI = spToMp[spI]
		}
		for spJ := 0; spJ <= n; spJ++ {
			mpJ := 0
			if spJ > 0 {
				mpJ = spToMp[spJ]
			}
			matrix[spI][spJ] = mpParams.TimeCost[mpI][mpJ]
		}
	}

	ap := mpParams.Ap
	ap.Mu = max1(ap.Mu / 2)
	ap.Lambda = max1(ap.Lambda / 2)
	ap.NbElite = ap.NbElite / 2
	ap.NbIter = mpParams.Ap.DecoNbIter
	ap.UseDecomposition = false
	ap.TimeLimit = remaining

	demands := make([]float64, n+1)
	for i, c := range spClients {
		demands[i] = c.Demand
	}

	sp, err := NewParamsFromMatrix(ap, demands, matrix, mpParams.VehicleCap, durationLimitOrZero(mpParams), len(eliteRoutes))
	if err != nil {
		// A sub-instance derived from a feasible elite solution cannot
		// violate the construction invariants; surface as a programming
		// error rather than threading an error return through Decompose.
		panic("decomposition: sub-problem construction failed: " + err.Error())
	}
	for i, c := range spClients {
		sp.Clients[i].HasCoords = c.HasCoords
		sp.Clients[i].X = c.X
		sp.Clients[i].Y = c.Y
		if c.HasCoords && i > 0 {
			sp.Clients[i].PolarAngle = computePolarAngle(c.X, c.Y, spClients[0].X, spClients[0].Y)
		}
	}

	return &subProblem{mpParams: mpParams, params: sp, mpToSp: mpToSp, spToMp: spToMp}
}

func durationLimitOrZero(p *Params) float64 {
	if p.IsDurationConstrained {
		return p.DurationLimit
	}
	return 0
}

func max1(x int) int {
	if x < 1 {
		return 1
	}
	return x
}

// applySubSolutionToElite overwrites elite's eliteRoutes with the
// sub-solve's routes, translated back to master-problem customer ids and
// padded with empty routes if the sub-solve used fewer vehicles.
func applySubSolutionToElite(elite *Individual, eliteRoutes []int, subBest *Individual, sub *subProblem) {
	slot := 0
	for _, subRoute := range subBest.ChromR {
		if slot >= len(eliteRoutes) {
			break
		}
		mpRoute := make([]int, len(subRoute))
		for i, spC := range subRoute {
			mpRoute[i] = sub.spToMp[spC]
		}
		elite.ChromR[eliteRoutes[slot]] = mpRoute
		slot++
	}
	for ; slot < len(eliteRoutes); slot++ {
		elite.ChromR[eliteRoutes[slot]] = nil
	}
}
