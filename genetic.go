package hgs

import "time"

// Genetic drives the outer HGS loop: select parents, OX-cross, Split,
// LocalSearch, admit, periodic penalty management, periodic tracing, and
// (optionally) periodic decomposition, until nonProdCounter exceeds nbIter
// or the time limit elapses.
type Genetic struct {
	p    *Params
	pop  *Population
	ls   *LocalSearch
	deco *Decomposition // nil when UseDecomposition is false

	nonProdCounter int
	iteration      int
	startedAt      time.Time

	// Trace, when non-nil, receives one call per nbIterTraces iterations
	// with the current best feasible cost and the iteration count,
	// mirroring the original's console progress line.
	Trace func(iteration int, bestCost float64, nonProdCounter int)
}

// NewGenetic wires a Genetic run against an already-built Population.
func NewGenetic(p *Params, pop *Population) *Genetic {
	g := &Genetic{p: p, pop: pop, ls: NewLocalSearch(p)}
	if p.Ap.UseDecomposition {
		g.deco = NewDecomposition(p)
	}
	return g
}

// Run executes the main loop and returns the best feasible Individual
// found, or nil if none was ever admitted.
func (g *Genetic) Run() *Individual {
	g.startedAt = time.Now()
	g.nonProdCounter = 1

	deadline := g.deadline()
	if len(g.pop.all()) == 0 {
		g.pop.Generate(deadline)
	}

	for !g.shouldStop() {
		g.iteration++

		parent1 := g.pop.BinaryTournament()
		parent2 := g.pop.BinaryTournament()

		childChromT := OXCrossover(parent1.ChromT, parent2.ChromT, g.p.Rng)
		offspring := newEmptyIndividual(g.p)
		offspring.ChromT = childChromT

		Split(offspring, g.p)
		g.ls.Run(offspring)

		becameBest := g.pop.Add(offspring, true)

		if !offspring.Eval.IsFeasible && g.p.Rng.Float64() < 0.5 {
			if g.repairWithInflatedPenalties(offspring) {
				becameBest = true
			}
		}

		if becameBest {
			g.nonProdCounter = 1
		} else {
			g.nonProdCounter++
		}

		if g.p.Ap.NbIterPenaltyManagement > 0 && g.iteration%g.p.Ap.NbIterPenaltyManagement == 0 {
			g.pop.ManagePenalties()
		}
		if g.Trace != nil && g.p.Ap.NbIterTraces > 0 && g.iteration%g.p.Ap.NbIterTraces == 0 {
			g.Trace(g.iteration, g.bestCost(), g.nonProdCounter)
		}
		if g.deco != nil && g.p.Ap.DecoIterations > 0 && g.iteration%g.p.Ap.DecoIterations == 0 {
			if elite := g.pop.BinaryTournament(); elite != nil {
				g.deco.Decompose(elite, g.pop, time.Since(g.startedAt))
			}
		}

		if g.hasTimeLimit() && g.nonProdCounter == g.p.Ap.NbIter {
			g.pop.Restart(g.deadline())
			g.nonProdCounter = 1
		}
	}

	return g.pop.GetBestFound()
}

// repairWithInflatedPenalties re-runs LocalSearch at 10x the current
// penalties and, if that makes the offspring feasible, admits it a second
// time, matching step 5 of the main loop. Reports whether that second
// admission became the new overall best, so the caller's nonProdCounter
// reset also accounts for it.
func (g *Genetic) repairWithInflatedPenalties(offspring *Individual) bool {
	savedCap, savedDur := g.p.PenaltyCapacity, g.p.PenaltyDuration
	g.p.PenaltyCapacity *= 10
	g.p.PenaltyDuration *= 10

	g.ls.Run(offspring)

	g.p.PenaltyCapacity, g.p.PenaltyDuration = savedCap, savedDur
	offspring.EvaluateCompleteCost(g.p)

	if offspring.Eval.IsFeasible {
		return g.pop.Add(offspring, false)
	}
	return false
}

// timeLimitUnbounded is the threshold above which TimeLimit is treated as
// "no time limit": AlgorithmParameters defaults it to math.MaxFloat64,
// which would overflow a time.Duration if converted directly.
const timeLimitUnbounded = 1e9 // seconds, ~31 years

func (g *Genetic) hasTimeLimit() bool {
	return g.p.Ap.TimeLimit > 0 && g.p.Ap.TimeLimit < timeLimitUnbounded
}

func (g *Genetic) shouldStop() bool {
	if g.nonProdCounter > g.p.Ap.NbIter {
		return true
	}
	if g.hasTimeLimit() && time.Since(g.startedAt).Seconds() > g.p.Ap.TimeLimit {
		return true
	}
	return false
}

func (g *Genetic) deadline() time.Time {
	if !g.hasTimeLimit() {
		return time.Time{}
	}
	return g.startedAt.Add(time.Duration(g.p.Ap.TimeLimit * float64(time.Second)))
}

func (g *Genetic) bestCost() float64 {
	if best := g.pop.GetBestFound(); best != nil {
		return best.Eval.PenalizedCost
	}
	return 0
}
