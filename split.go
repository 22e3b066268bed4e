package hgs

import "math"

// Split decodes indiv.ChromT into indiv.ChromR, minimising total penalised
// cost under the current penalties, and refreshes indiv.Eval.
//
// It first runs the unlimited-fleet Bellman pass; if the resulting route
// count fits within p.NbVehicles it is used directly (this is the common
// case and the cheaper of the two). Otherwise it falls back to the
// vehicle-count-bounded layered variant.
func Split(indiv *Individual, p *Params) {
	routes, ok := splitUnlimited(indiv.ChromT, p, p.NbVehicles)
	if !ok {
		routes = splitLimited(indiv.ChromT, p, p.NbVehicles)
	}

	for i := range indiv.ChromR {
		indiv.ChromR[i] = indiv.ChromR[i][:0]
	}
	for i, route := range routes {
		indiv.ChromR[i] = append(indiv.ChromR[i][:0], route...)
	}
	indiv.EvaluateCompleteCost(p)
}

// splitPrefixSums precomputes the cumulative demand, service duration, and
// intra-tour distance sums over chromT so that any segment's route cost is
// an O(1) lookup during the DP.
type splitPrefixSums struct {
	demand  []float64 // demand[i] = sum of demand over chromT[0:i]
	service []float64
	dist    []float64 // dist[i] = sum of d(chromT[k],chromT[k+1]) for k in [0,i-1)
}

func buildSplitPrefixSums(chromT []int, p *Params) splitPrefixSums {
	n := len(chromT)
	s := splitPrefixSums{
		demand:  make([]float64, n+1),
		service: make([]float64, n+1),
		dist:    make([]float64, n+1),
	}
	for i := 0; i < n; i++ {
		c := p.Clients[chromT[i]]
		s.demand[i+1] = s.demand[i] + c.Demand
		s.service[i+1] = s.service[i] + c.ServiceDuration
		if i == 0 {
			s.dist[i+1] = 0
		} else {
			s.dist[i+1] = s.dist[i] + p.TimeCost[chromT[i-1]][chromT[i]]
		}
	}
	return s
}

// routeCost returns the penalised cost of serving chromT[j:i] (0-indexed,
// half-open) as a single route, under p's current penalties.
func (s splitPrefixSums) routeCost(chromT []int, p *Params, j, i int) float64 {
	first := chromT[j]
	last := chromT[i-1]
	travel := p.TimeCost[0][first] + (s.dist[i] - s.dist[j+1]) + p.TimeCost[last][0]
	load := s.demand[i] - s.demand[j]
	service := s.service[i] - s.service[j]

	cost := travel
	if load > p.VehicleCap {
		cost += p.PenaltyCapacity * (load - p.VehicleCap)
	}
	if travel+service > p.DurationLimit {
		cost += p.PenaltyDuration * (travel + service - p.DurationLimit)
	}
	return cost
}

// splitUnlimited runs a single Bellman pass with no bound on the number of
// routes, then reports whether the induced route count fits within
// maxVehicles. O(N^2): every predecessor j < i is examined.
func splitUnlimited(chromT []int, p *Params, maxVehicles int) ([][]int, bool) {
	n := len(chromT)
	s := buildSplitPrefixSums(chromT, p)

	dist := make([]float64, n+1)
	pred := make([]int, n+1)
	for i := 1; i <= n; i++ {
		dist[i] = math.Inf(1)
	}

	for i := 1; i <= n; i++ {
		for j := 0; j < i; j++ {
			if math.IsInf(dist[j], 1) {
				continue
			}
			cand := dist[j] + s.routeCost(chromT, p, j, i)
			if cand < dist[i] {
				dist[i] = cand
				pred[i] = j
			}
		}
	}

	routes := splitPredecessorsToRoutes(chromT, pred, n)
	if len(routes) > maxVehicles {
		return nil, false
	}
	return routes, true
}

// splitLimited runs a layered DP tracking the number of routes used so
// far, guaranteeing the result never exceeds maxVehicles routes. O(N^2 *
// maxVehicles).
func splitLimited(chromT []int, p *Params, maxVehicles int) [][]int {
	n := len(chromT)
	s := buildSplitPrefixSums(chromT, p)

	const inf = math.MaxFloat64 / 2
	// dist[k][i] = best cost to serve chromT[0:i] using at most k routes.
	dist := make([][]float64, maxVehicles+1)
	pred := make([][]int, maxVehicles+1)
	for k := range dist {
		dist[k] = make([]float64, n+1)
		pred[k] = make([]int, n+1)
		for i := range dist[k] {
			dist[k][i] = inf
		}
	}
	dist[0][0] = 0

	for k := 1; k <= maxVehicles; k++ {
		for i := 1; i <= n; i++ {
			for j := 0; j < i; j++ {
				if dist[k-1][j] >= inf {
					continue
				}
				cand := dist[k-1][j] + s.routeCost(chromT, p, j, i)
				if cand < dist[k][i] {
					dist[k][i] = cand
					pred[k][i] = j
				}
			}
			// A state can also be reached by leaving route k empty,
			// carrying forward the best (k-1)-route solution.
			if dist[k-1][i] < dist[k][i] {
				dist[k][i] = dist[k-1][i]
				pred[k][i] = -i - 1 // sentinel: "route k is empty, inherit from k-1"
			}
		}
	}

	best := maxVehicles
	for k := 0; k <= maxVehicles; k++ {
		if dist[k][n] < dist[best][n] {
			best = k
		}
	}

	routes := make([][]int, 0, maxVehicles)
	k, i := best, n
	for k > 0 {
		from := pred[k][i]
		if from < 0 {
			k--
			continue
		}
		routes = append(routes, append([]int(nil), chromT[from:i]...))
		i = from
		k--
	}
	reverseRoutes(routes)
	for len(routes) < maxVehicles {
		routes = append(routes, nil)
	}
	return routes
}

func splitPredecessorsToRoutes(chromT []int, pred []int, n int) [][]int {
	var routes [][]int
	for i := n; i > 0; i = pred[i] {
		j := pred[i]
		routes = append(routes, append([]int(nil), chromT[j:i]...))
	}
	reverseRoutes(routes)
	return routes
}

func reverseRoutes(routes [][]int) {
	for i, j := 0, len(routes)-1; i < j; i, j = i+1, j-1 {
		routes[i], routes[j] = routes[j], routes[i]
	}
}
