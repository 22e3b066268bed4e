package hgs

// LocalSearch mutates an Individual in place under a fixed Params and
// penalty level, repeatedly applying the move catalogue within each
// customer's granular neighbourhood until a full sweep makes no
// improvement.
type LocalSearch struct {
	p *Params

	// order is the customer visitation order for one sweep, reshuffled
	// between sweeps as required by the granular restriction.
	order []int
}

// NewLocalSearch builds a LocalSearch bound to p.
func NewLocalSearch(p *Params) *LocalSearch {
	order := make([]int, p.NbClients)
	for i := range order {
		order[i] = i + 1
	}
	return &LocalSearch{p: p, order: order}
}

// Run repeatedly sweeps the granular neighbourhood of every customer,
// applying the first strictly-improving move found, until one full sweep
// makes no improvement at all. Mirrors spec §4.2's termination rule.
func (ls *LocalSearch) Run(indiv *Individual) {
	ctx := newMoveContext(indiv, ls.p)

	for {
		ls.p.Rng.Shuffle(len(ls.order), func(i, j int) {
			ls.order[i], ls.order[j] = ls.order[j], ls.order[i]
		})

		improvedThisSweep := false
		for _, u := range ls.order {
			if ctx.tryImproveAround(u) {
				improvedThisSweep = true
			}
		}
		if ls.p.Ap.UseSwapStar {
			if ctx.trySwapStarAllPairs() {
				improvedThisSweep = true
			}
		}
		if !improvedThisSweep {
			break
		}
	}

	indiv.RebuildChromTFromChromR()
	indiv.EvaluateCompleteCost(ls.p)
}

// moveContext carries the per-route bookkeeping (route membership, load,
// and position) that individual moves need to evaluate and apply changes,
// kept incrementally up to date as moves are applied.
type moveContext struct {
	indiv *Individual
	p     *Params

	routeOf  []int // routeOf[c] = index into indiv.ChromR holding c
	posOf    []int // posOf[c] = position of c within its route
	load     []float64
	service  []float64
	distance []float64
}

func newMoveContext(indiv *Individual, p *Params) *moveContext {
	ctx := &moveContext{
		indiv:    indiv,
		p:        p,
		routeOf:  make([]int, p.NbClients+1),
		posOf:    make([]int, p.NbClients+1),
		load:     make([]float64, len(indiv.ChromR)),
		service:  make([]float64, len(indiv.ChromR)),
		distance: make([]float64, len(indiv.ChromR)),
	}
	ctx.rebuildAll()
	return ctx
}

func (ctx *moveContext) rebuildAll() {
	for r, route := range ctx.indiv.ChromR {
		ctx.load[r], ctx.service[r], ctx.distance[r] = 0, 0, 0
		prev := 0
		for i, c := range route {
			ctx.routeOf[c] = r
			ctx.posOf[c] = i
			ctx.load[r] += ctx.p.Clients[c].Demand
			ctx.service[r] += ctx.p.Clients[c].ServiceDuration
			ctx.distance[r] += ctx.p.TimeCost[prev][c]
			prev = c
		}
		if len(route) > 0 {
			ctx.distance[r] += ctx.p.TimeCost[prev][0]
		}
	}
}

// routeExcessCost is the marginal penalised cost contributed by a route's
// own capacity/duration excess, used to evaluate move deltas.
func (ctx *moveContext) routeExcessCost(r int) float64 {
	cost := 0.0
	if ctx.load[r] > ctx.p.VehicleCap {
		cost += ctx.p.PenaltyCapacity * (ctx.load[r] - ctx.p.VehicleCap)
	}
	if ctx.distance[r]+ctx.service[r] > ctx.p.DurationLimit {
		cost += ctx.p.PenaltyDuration * (ctx.distance[r] + ctx.service[r] - ctx.p.DurationLimit)
	}
	return cost
}

// neighboursOf returns u's granular neighbourhood, CorrelatedVertices[u].
// The depot is not among the candidates, so no move is anchored at a
// route's depot endpoint.
func (ctx *moveContext) neighboursOf(u int) []int {
	return ctx.p.CorrelatedVertices[u]
}

// tryImproveAround attempts every M1-M9 move anchored at u against each
// candidate v in u's granular neighbourhood, applying and returning true on
// the first strict improvement found.
func (ctx *moveContext) tryImproveAround(u int) bool {
	for _, v := range ctx.neighboursOf(u) {
		if ctx.routeOf[u] == ctx.routeOf[v] && ctx.posOf[u] == ctx.posOf[v] {
			continue
		}
		if ctx.tryMoveInsertAfter(u, v) {
			return true
		}
		if ctx.tryMoveInsertSegmentAfter(u, v, false) {
			return true
		}
		if ctx.tryMoveInsertSegmentAfter(u, v, true) {
			return true
		}
		if ctx.tryMoveSwap(u, v) {
			return true
		}
		if ctx.tryMoveSwapSegments(u, v) {
			return true
		}
		if ctx.routeOf[u] == ctx.routeOf[v] {
			if ctx.tryMove2Opt(u, v) {
				return true
			}
		} else {
			if ctx.tryMove2OptStar(u, v, false) {
				return true
			}
			if ctx.tryMove2OptStar(u, v, true) {
				return true
			}
		}
	}
	return false
}

// --- M1: relocate u to directly after v -------------------------------

func (ctx *moveContext) tryMoveInsertAfter(u, v int) bool {
	return ctx.tryRelocateSegment(u, u, v)
}

// --- M2/M3: relocate the pair (u, succ(u)) after v, both orientations --

func (ctx *moveContext) tryMoveInsertSegmentAfter(u, v int, reversed bool) bool {
	ru := ctx.routeOf[u]
	route := ctx.indiv.ChromR[ru]
	pos := ctx.posOf[u]
	if pos+1 >= len(route) {
		return false
	}
	uNext := route[pos+1]
	if uNext == v {
		return false
	}
	if !reversed {
		return ctx.tryRelocateSegment(u, uNext, v)
	}
	return ctx.tryRelocateSegmentReversed(u, uNext, v)
}

// tryRelocateSegment removes the contiguous segment [from..to] (inclusive,
// given in route order, from must precede to in the same route) and
// reinserts it, in the same order, immediately after v.
func (ctx *moveContext) tryRelocateSegment(from, to, v int) bool {
	rFrom := ctx.routeOf[from]
	rv := ctx.routeOf[v]
	if rFrom == rv && (ctx.posOf[v] >= ctx.posOf[from] && ctx.posOf[v] <= ctx.posOf[to]) {
		return false
	}

	originalRoute := append([]int(nil), ctx.indiv.ChromR[rFrom]...)
	preDistance, preLoad, preService := ctx.distance[rFrom], ctx.load[rFrom], ctx.service[rFrom]

	segment := ctx.extractSegment(from, to)
	delta := ctx.relocationDelta(rFrom, rv, segment, v, false, preDistance, preLoad, preService)
	if delta >= -1e-9 {
		ctx.restoreRoute(rFrom, originalRoute)
		return false
	}
	ctx.applyRelocate(rFrom, rv, segment, v, false)
	return true
}

func (ctx *moveContext) tryRelocateSegmentReversed(from, to, v int) bool {
	rFrom := ctx.routeOf[from]
	rv := ctx.routeOf[v]
	if rFrom == rv && (ctx.posOf[v] >= ctx.posOf[from] && ctx.posOf[v] <= ctx.posOf[to]) {
		return false
	}

	originalRoute := append([]int(nil), ctx.indiv.ChromR[rFrom]...)
	preDistance, preLoad, preService := ctx.distance[rFrom], ctx.load[rFrom], ctx.service[rFrom]

	segment := ctx.extractSegment(from, to)
	delta := ctx.relocationDelta(rFrom, rv, segment, v, true, preDistance, preLoad, preService)
	if delta >= -1e-9 {
		ctx.restoreRoute(rFrom, originalRoute)
		return false
	}
	ctx.applyRelocate(rFrom, rv, segment, v, true)
	return true
}

// extractSegment removes customers from..to (route order) from their
// route, without touching cost bookkeeping, and returns them; used as a
// staging step before evaluating a relocation delta.
func (ctx *moveContext) extractSegment(from, to int) []int {
	r := ctx.routeOf[from]
	route := ctx.indiv.ChromR[r]
	i, j := ctx.posOf[from], ctx.posOf[to]
	segment := append([]int(nil), route[i:j+1]...)
	ctx.indiv.ChromR[r] = append(append([]int(nil), route[:i]...), route[j+1:]...)
	ctx.recomputeRoute(r)
	return segment
}

// restoreRoute puts r's route back to original (captured before a
// tentative extraction) and refreshes bookkeeping accordingly. Used to
// undo a relocation attempt that turned out not to be improving.
func (ctx *moveContext) restoreRoute(r int, original []int) {
	ctx.indiv.ChromR[r] = original
	ctx.recomputeRoute(r)
}

// relocationDelta computes the penalised-cost change of moving segment
// (already removed from rFrom; ctx's bookkeeping for rFrom reflects the
// post-removal state, while preFromDistance/preFromLoad/preFromService
// are rFrom's pre-removal state) to immediately after v in route rv,
// without mutating state. rFrom == rv is the within-route case: the
// route's cost is compared directly before/after rather than decomposed
// into separate removal/insertion deltas, since that decomposition would
// double-count the segment's own travel cost when it returns to the same
// route.
func (ctx *moveContext) relocationDelta(rFrom, rv int, segment []int, v int, reversed bool, preFromDistance, preFromLoad, preFromService float64) float64 {
	seg := segment
	if reversed {
		seg = reverseIntsCopy(segment)
	}

	route := ctx.indiv.ChromR[rv]
	pos := ctx.posOf[v]
	newRoute := make([]int, 0, len(route)+len(seg))
	newRoute = append(newRoute, route[:pos+1]...)
	newRoute = append(newRoute, seg...)
	newRoute = append(newRoute, route[pos+1:]...)
	afterToCost := ctx.routeTravelCost(newRoute)

	if rFrom == rv {
		before := ctx.routeExcessCostForLoads(rFrom, preFromLoad, preFromDistance, preFromService)
		after := ctx.routeExcessCostForLoads(rv, preFromLoad, afterToCost, preFromService)
		return (afterToCost - preFromDistance) + (after - before)
	}

	afterFromCost := ctx.distance[rFrom] // extractSegment already recomputed this post-removal
	before := ctx.routeExcessCostForLoads(rFrom, preFromLoad, preFromDistance, preFromService) +
		ctx.routeExcessCostForLoads(rv, ctx.load[rv], ctx.distance[rv], ctx.service[rv])
	after := ctx.routeExcessCostForLoads(rFrom, ctx.load[rFrom], afterFromCost, ctx.service[rFrom]) +
		ctx.routeExcessCostForLoads(rv, ctx.load[rv]+segmentDemand(seg, ctx.p), afterToCost, ctx.service[rv]+segmentService(seg, ctx.p))

	travelDelta := (afterFromCost - preFromDistance) + (afterToCost - ctx.distance[rv])
	return travelDelta + (after - before)
}

func (ctx *moveContext) routeExcessCostForLoads(_ int, load, distance, service float64) float64 {
	cost := 0.0
	if load > ctx.p.VehicleCap {
		cost += ctx.p.PenaltyCapacity * (load - ctx.p.VehicleCap)
	}
	if distance+service > ctx.p.DurationLimit {
		cost += ctx.p.PenaltyDuration * (distance + service - ctx.p.DurationLimit)
	}
	return cost
}

func (ctx *moveContext) routeTravelCost(route []int) float64 {
	if len(route) == 0 {
		return 0
	}
	cost := ctx.p.TimeCost[0][route[0]]
	for i := 1; i < len(route); i++ {
		cost += ctx.p.TimeCost[route[i-1]][route[i]]
	}
	cost += ctx.p.TimeCost[route[len(route)-1]][0]
	return cost
}

func segmentDemand(segment []int, p *Params) float64 {
	sum := 0.0
	for _, c := range segment {
		sum += p.Clients[c].Demand
	}
	return sum
}

func segmentService(segment []int, p *Params) float64 {
	sum := 0.0
	for _, c := range segment {
		sum += p.Clients[c].ServiceDuration
	}
	return sum
}

func reverseIntsCopy(s []int) []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

// applyRelocate performs the relocation already validated as improving by
// relocationDelta: insert segment into rv after v, in the given
// orientation, and refresh bookkeeping for both routes.
func (ctx *moveContext) applyRelocate(rFrom, rv int, segment []int, v int, reversed bool) {
	seg := segment
	if reversed {
		seg = reverseIntsCopy(segment)
	}
	route := ctx.indiv.ChromR[rv]
	pos := ctx.posOf[v]
	newRoute := make([]int, 0, len(route)+len(seg))
	newRoute = append(newRoute, route[:pos+1]...)
	newRoute = append(newRoute, seg...)
	newRoute = append(newRoute, route[pos+1:]...)
	ctx.indiv.ChromR[rv] = newRoute

	ctx.recomputeRoute(rFrom)
	ctx.recomputeRoute(rv)
}

// recomputeRoute refreshes load/service/distance and the routeOf/posOf
// index for every customer of route r after a structural change.
func (ctx *moveContext) recomputeRoute(r int) {
	route := ctx.indiv.ChromR[r]
	ctx.load[r], ctx.service[r], ctx.distance[r] = 0, 0, 0
	prev := 0
	for i, c := range route {
		ctx.routeOf[c] = r
		ctx.posOf[c] = i
		ctx.load[r] += ctx.p.Clients[c].Demand
		ctx.service[r] += ctx.p.Clients[c].ServiceDuration
		ctx.distance[r] += ctx.p.TimeCost[prev][c]
		prev = c
	}
	if len(route) > 0 {
		ctx.distance[r] += ctx.p.TimeCost[prev][0]
	}
}

// --- M4/M5: swap u and v, or swap the pair starting at u with v --------

func (ctx *moveContext) tryMoveSwap(u, v int) bool {
	ru, rv := ctx.routeOf[u], ctx.routeOf[v]
	if ru == rv {
		return ctx.trySwapWithinRoute(ru, ctx.posOf[u], ctx.posOf[v])
	}
	return ctx.trySwapAcrossRoutes(u, v)
}

func (ctx *moveContext) trySwapWithinRoute(r, i, j int) bool {
	if i == j {
		return false
	}
	route := ctx.indiv.ChromR[r]
	before := ctx.routeTravelCost(route) + ctx.routeExcessCost(r)

	route[i], route[j] = route[j], route[i]
	after := ctx.routeTravelCost(route) + ctx.distanceExcessPreview(r, route)

	if after-before < -1e-9 {
		ctx.recomputeRoute(r)
		return true
	}
	route[i], route[j] = route[j], route[i]
	return false
}

func (ctx *moveContext) distanceExcessPreview(r int, route []int) float64 {
	cost := 0.0
	load := 0.0
	service := 0.0
	for _, c := range route {
		load += ctx.p.Clients[c].Demand
		service += ctx.p.Clients[c].ServiceDuration
	}
	travel := ctx.routeTravelCost(route)
	if load > ctx.p.VehicleCap {
		cost += ctx.p.PenaltyCapacity * (load - ctx.p.VehicleCap)
	}
	if travel+service > ctx.p.DurationLimit {
		cost += ctx.p.PenaltyDuration * (travel + service - ctx.p.DurationLimit)
	}
	return cost
}

func (ctx *moveContext) trySwapAcrossRoutes(u, v int) bool {
	ru, rv := ctx.routeOf[u], ctx.routeOf[v]
	beforeU := ctx.routeTravelCost(ctx.indiv.ChromR[ru]) + ctx.routeExcessCost(ru)
	beforeV := ctx.routeTravelCost(ctx.indiv.ChromR[rv]) + ctx.routeExcessCost(rv)

	pu, pv := ctx.posOf[u], ctx.posOf[v]
	ctx.indiv.ChromR[ru][pu], ctx.indiv.ChromR[rv][pv] = v, u

	afterU := ctx.routeTravelCost(ctx.indiv.ChromR[ru]) + ctx.distanceExcessPreview(ru, ctx.indiv.ChromR[ru])
	afterV := ctx.routeTravelCost(ctx.indiv.ChromR[rv]) + ctx.distanceExcessPreview(rv, ctx.indiv.ChromR[rv])

	if (afterU+afterV)-(beforeU+beforeV) < -1e-9 {
		ctx.recomputeRoute(ru)
		ctx.recomputeRoute(rv)
		return true
	}
	ctx.indiv.ChromR[ru][pu], ctx.indiv.ChromR[rv][pv] = u, v
	return false
}

// tryMoveSwapSegments swaps the pair (u,succ(u)) with v as a block between
// two different routes: v takes the pair's place, and the pair, in order,
// takes v's place.
func (ctx *moveContext) tryMoveSwapSegments(u, v int) bool {
	ru := ctx.routeOf[u]
	route := ctx.indiv.ChromR[ru]
	pos := ctx.posOf[u]
	if pos+1 >= len(route) {
		return false
	}
	uNext := route[pos+1]
	rv := ctx.routeOf[v]
	if rv == ru {
		return false
	}
	routeV := ctx.indiv.ChromR[rv]
	pv := ctx.posOf[v]
	newU := append(append(append([]int(nil), route[:pos]...), v), route[pos+2:]...)
	newV := append(append(append([]int(nil), routeV[:pv]...), u, uNext), routeV[pv+1:]...)

	before := ctx.routeTravelCost(route) + ctx.routeExcessCost(ru) +
		ctx.routeTravelCost(routeV) + ctx.routeExcessCost(rv)
	after := ctx.routeTravelCost(newU) + ctx.distanceExcessPreview(ru, newU) +
		ctx.routeTravelCost(newV) + ctx.distanceExcessPreview(rv, newV)
	if after-before >= -1e-9 {
		return false
	}
	ctx.indiv.ChromR[ru], ctx.indiv.ChromR[rv] = newU, newV
	ctx.recomputeRoute(ru)
	ctx.recomputeRoute(rv)
	return true
}

// --- M7: 2-opt within a single route -----------------------------------

func (ctx *moveContext) tryMove2Opt(u, v int) bool {
	r := ctx.routeOf[u]
	route := ctx.indiv.ChromR[r]
	i, j := ctx.posOf[u], ctx.posOf[v]
	if i > j {
		i, j = j, i
	}
	if j-i < 1 {
		return false
	}

	before := ctx.routeTravelCost(route)
	reverseSlice(route[i+1 : j+1])
	after := ctx.routeTravelCost(route)

	if after-before < -1e-9 {
		ctx.recomputeRoute(r)
		return true
	}
	reverseSlice(route[i+1 : j+1])
	return false
}

func reverseSlice(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// --- M8/M9: 2-opt* between two routes, both orientations ----------------

func (ctx *moveContext) tryMove2OptStar(u, v int, swapTails bool) bool {
	ru, rv := ctx.routeOf[u], ctx.routeOf[v]
	routeU, routeV := ctx.indiv.ChromR[ru], ctx.indiv.ChromR[rv]
	pu, pv := ctx.posOf[u], ctx.posOf[v]

	headU := append([]int(nil), routeU[:pu+1]...)
	tailU := append([]int(nil), routeU[pu+1:]...)
	headV := append([]int(nil), routeV[:pv+1]...)
	tailV := append([]int(nil), routeV[pv+1:]...)

	var newU, newV []int
	if !swapTails {
		newU = append(append([]int(nil), headU...), tailV...)
		newV = append(append([]int(nil), headV...), tailU...)
	} else {
		newU = append(append([]int(nil), headU...), reverseIntsCopy(tailV)...)
		newV = append(append([]int(nil), headV...), reverseIntsCopy(tailU)...)
	}

	before := ctx.routeTravelCost(routeU) + ctx.routeExcessCost(ru) +
		ctx.routeTravelCost(routeV) + ctx.routeExcessCost(rv)
	after := ctx.routeTravelCost(newU) + ctx.distanceExcessPreview(ru, newU) +
		ctx.routeTravelCost(newV) + ctx.distanceExcessPreview(rv, newV)

	if after-before >= -1e-9 {
		return false
	}

	ctx.indiv.ChromR[ru] = newU
	ctx.indiv.ChromR[rv] = newV
	ctx.recomputeRoute(ru)
	ctx.recomputeRoute(rv)
	return true
}
