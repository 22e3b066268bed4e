package hgs

import (
	"fmt"
	"strings"
	"time"
)

// Solution is the outcome of a solve: the best feasible routes found, its
// penalised cost, and the wall-clock time spent searching.
type Solution struct {
	Cost     float64
	Time     time.Duration
	NbRoutes int
	Routes   [][]int // 1-based customer ids, depot excluded, empty routes omitted
}

// SolveOptions bundles inputs shared by SolveCoords and SolveMatrix beyond
// the demand/geometry data itself.
type SolveOptions struct {
	Ap            AlgorithmParameters
	Capacity      float64
	DurationLimit float64 // 0 disables the duration constraint
	MaxVehicles   int     // -1 selects DefaultFleetSize

	// OnNewBest, when non-nil, is checked once every NbIterTraces
	// iterations and called when the best feasible cost differs from the
	// one last reported. Several improvements between two checks produce a
	// single call, and improvements found while the initial population is
	// generated are not reported on their own.
	OnNewBest func(cost float64, elapsed time.Duration)
}

// SolveCoords runs HGS over an instance given by client coordinates (index
// 0 is the depot) and returns its best feasible Solution.
func SolveCoords(clients []Client, opts SolveOptions) (*Solution, error) {
	p, err := NewParamsFromCoords(opts.Ap, clients, opts.Capacity, opts.DurationLimit, opts.MaxVehicles)
	if err != nil {
		return nil, err
	}
	return run(p, opts)
}

// SolveMatrix runs HGS over an instance given by an explicit distance
// matrix; decomposition is unavailable since there is no coordinate
// system to cluster on.
func SolveMatrix(demands []float64, matrix [][]float64, opts SolveOptions) (*Solution, error) {
	opts.Ap.UseDecomposition = false
	p, err := NewParamsFromMatrix(opts.Ap, demands, matrix, opts.Capacity, opts.DurationLimit, opts.MaxVehicles)
	if err != nil {
		return nil, err
	}
	return run(p, opts)
}

func run(p *Params, opts SolveOptions) (*Solution, error) {
	start := time.Now()
	pop := NewPopulation(p)
	g := NewGenetic(p, pop)

	if opts.OnNewBest != nil {
		prevCost := -1.0
		g.Trace = func(iteration int, bestCost float64, nonProd int) {
			if bestCost > 0 && bestCost != prevCost {
				prevCost = bestCost
				opts.OnNewBest(bestCost, time.Since(start))
			}
		}
	}

	best := g.Run()
	elapsed := time.Since(start)

	if best == nil {
		return &Solution{Time: elapsed}, nil
	}

	sol := &Solution{
		Cost:     best.Eval.PenalizedCost,
		Time:     elapsed,
		NbRoutes: best.Eval.NbRoutes,
	}
	for _, route := range best.ChromR {
		if len(route) > 0 {
			sol.Routes = append(sol.Routes, append([]int(nil), route...))
		}
	}
	return sol, nil
}

// FormatSolution renders a Solution in the CVRPLIB-style output format of
// §6: one "Route #k: ..." line per non-empty route (1-based numbering),
// followed by a "Cost <value>" line.
func FormatSolution(sol *Solution) string {
	var b strings.Builder
	for i, route := range sol.Routes {
		fmt.Fprintf(&b, "Route #%d:", i+1)
		for _, c := range route {
			fmt.Fprintf(&b, " %d", c)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Cost %.2f\n", sol.Cost)
	return b.String()
}
