package hgs

import (
	"sort"
	"time"
)

// feasibilityWindowSize is the length of the sliding load-/duration-
// feasibility buffers managePenalties reads to adapt the penalties.
const feasibilityWindowSize = 100

// Population maintains the feasible and infeasible subpopulations, admits
// new Individuals, evicts by biased fitness, adapts penalties, and tracks
// the best solution found so far and since the last restart.
type Population struct {
	p *Params

	Feasible   []*Individual
	Infeasible []*Individual

	capacityWindow []bool // FIFO, true = admitted individual had no capacity excess
	durationWindow []bool

	BestSolutionRestart *Individual
	BestSolutionOverall *Individual
}

// NewPopulation returns an empty Population with both feasibility windows
// pre-filled true, matching the original's optimistic initial state.
func NewPopulation(p *Params) *Population {
	pop := &Population{p: p}
	pop.resetWindows()
	return pop
}

func (pop *Population) resetWindows() {
	pop.capacityWindow = make([]bool, feasibilityWindowSize)
	pop.durationWindow = make([]bool, feasibilityWindowSize)
	for i := range pop.capacityWindow {
		pop.capacityWindow[i] = true
		pop.durationWindow[i] = true
	}
}

// Generate produces up to 4*mu random individuals, Split-and-LocalSearch
// each, and admits them, stopping early if deadline has passed.
func (pop *Population) Generate(deadline time.Time) {
	target := 4 * pop.p.Ap.Mu
	ls := NewLocalSearch(pop.p)
	for i := 0; i < target; i++ {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return
		}
		indiv := NewRandomIndividual(pop.p)
		Split(indiv, pop.p)
		ls.Run(indiv)
		pop.Add(indiv, true)
	}
}

// Add copies indiv into the subpopulation matching its current
// feasibility, computes broken-pairs distances against every existing
// member of that subpopulation, inserts it in penalizedCost order,
// prunes back to mu if the subpopulation exceeds mu+lambda, and reports
// whether it became the new overall-best feasible solution.
func (pop *Population) Add(indiv *Individual, updateFeasibleWindow bool) bool {
	copyIndiv := indiv.Clone()

	var sub *[]*Individual
	if copyIndiv.Eval.IsFeasible {
		sub = &pop.Feasible
	} else {
		sub = &pop.Infeasible
	}

	for _, other := range *sub {
		d := BrokenPairsDistance(copyIndiv, other)
		copyIndiv.Proximity[other.ID] = d
		other.Proximity[copyIndiv.ID] = d
	}
	*sub = append(*sub, copyIndiv)
	sort.Slice(*sub, func(i, j int) bool {
		return (*sub)[i].Eval.PenalizedCost < (*sub)[j].Eval.PenalizedCost
	})

	pop.updateBiasedFitness(*sub)
	if len(*sub) > pop.p.Ap.Mu+pop.p.Ap.Lambda {
		pop.survivorSelection(sub)
	}

	if updateFeasibleWindow {
		pop.pushWindow(pop.capacityWindow, copyIndiv.Eval.CapacityExcess < evalEpsilon)
		pop.pushWindow(pop.durationWindow, copyIndiv.Eval.DurationExcess < evalEpsilon)
	}

	becameBest := false
	if copyIndiv.Eval.IsFeasible {
		if pop.BestSolutionRestart == nil || copyIndiv.Eval.PenalizedCost < pop.BestSolutionRestart.Eval.PenalizedCost {
			pop.BestSolutionRestart = copyIndiv.Clone()
		}
		if pop.BestSolutionOverall == nil || copyIndiv.Eval.PenalizedCost < pop.BestSolutionOverall.Eval.PenalizedCost {
			pop.BestSolutionOverall = copyIndiv.Clone()
			becameBest = true
		}
	}
	return becameBest
}

func (pop *Population) pushWindow(window []bool, value bool) {
	copy(window, window[1:])
	window[len(window)-1] = value
}

// updateBiasedFitness ranks sub by penalizedCost ascending (fitRank) and
// by averageBrokenPairsDistanceClosest(nbClose) descending (divRank), then
// assigns BiasedFitness = fitRank + (1 - nbElite/size)*divRank, or just
// fitRank when size <= nbElite.
func (pop *Population) updateBiasedFitness(sub []*Individual) {
	size := len(sub)
	if size == 0 {
		return
	}

	// sub is already cost-sorted by the caller; fitRank follows directly.
	fitRank := make(map[uint64]float64, size)
	for i, indiv := range sub {
		if size == 1 {
			fitRank[indiv.ID] = 0
		} else {
			fitRank[indiv.ID] = float64(i) / float64(size-1)
		}
	}

	byDiversity := append([]*Individual(nil), sub...)
	sort.Slice(byDiversity, func(i, j int) bool {
		return byDiversity[i].AverageBrokenPairsDistanceClosest(pop.p.Ap.NbClose) >
			byDiversity[j].AverageBrokenPairsDistanceClosest(pop.p.Ap.NbClose)
	})
	divRank := make(map[uint64]float64, size)
	for i, indiv := range byDiversity {
		if size == 1 {
			divRank[indiv.ID] = 0
		} else {
			divRank[indiv.ID] = float64(i) / float64(size-1)
		}
	}

	for _, indiv := range sub {
		if size > pop.p.Ap.NbElite {
			weight := 1 - float64(pop.p.Ap.NbElite)/float64(size)
			indiv.BiasedFitness = fitRank[indiv.ID] + weight*divRank[indiv.ID]
		} else {
			indiv.BiasedFitness = fitRank[indiv.ID]
		}
	}
}

// survivorSelection repeatedly evicts the worst-ranked individual (never
// position 0, the cost-best) until sub has shrunk to mu, preferring to
// evict clones over distinct individuals, unlinking proximity entries
// before each destruction.
func (pop *Population) survivorSelection(sub *[]*Individual) {
	for len(*sub) > pop.p.Ap.Mu {
		pop.updateBiasedFitness(*sub)

		victim := -1
		victimIsClone := false
		for i := 1; i < len(*sub); i++ {
			indiv := (*sub)[i]
			isClone := indiv.AverageBrokenPairsDistanceClosest(1) < evalEpsilon
			if victim == -1 {
				victim, victimIsClone = i, isClone
				continue
			}
			if isClone && !victimIsClone {
				victim, victimIsClone = i, isClone
				continue
			}
			if isClone == victimIsClone && indiv.BiasedFitness > (*sub)[victim].BiasedFitness {
				victim, victimIsClone = i, isClone
			}
		}
		if victim < 0 {
			return
		}

		pop.unlinkProximity((*sub)[victim], *sub)
		*sub = append((*sub)[:victim], (*sub)[victim+1:]...)
	}
}

// unlinkProximity removes evicted's entry from every remaining member's
// Proximity map before evicted is dropped, preventing stale references to
// a destroyed individual's id.
func (pop *Population) unlinkProximity(evicted *Individual, sub []*Individual) {
	for _, other := range sub {
		if other.ID == evicted.ID {
			continue
		}
		delete(other.Proximity, evicted.ID)
	}
}

// BinaryTournament samples two individuals uniformly from the union of
// both subpopulations and returns the one with the lower biased fitness.
func (pop *Population) BinaryTournament() *Individual {
	all := pop.all()
	i := pop.p.Rng.Intn(len(all))
	j := randomIntExcluding(len(all), i, pop.p.Rng)
	if all[i].BiasedFitness <= all[j].BiasedFitness {
		return all[i]
	}
	return all[j]
}

func (pop *Population) all() []*Individual {
	out := make([]*Individual, 0, len(pop.Feasible)+len(pop.Infeasible))
	out = append(out, pop.Feasible...)
	out = append(out, pop.Infeasible...)
	return out
}

// ManagePenalties adjusts penaltyCapacity/penaltyDuration by 1.2 up or
// 0.85 down, nudging the feasibility-window true-fraction toward
// targetFeasible within a 5% band, then reorders the infeasible
// subpopulation under the new penalties.
func (pop *Population) ManagePenalties() {
	capFraction := windowTrueFraction(pop.capacityWindow)
	pop.p.PenaltyCapacity = adjustPenalty(pop.p.PenaltyCapacity, capFraction, pop.p.Ap.TargetFeasible, pop.p.Ap)

	if pop.p.IsDurationConstrained {
		durFraction := windowTrueFraction(pop.durationWindow)
		pop.p.PenaltyDuration = adjustPenalty(pop.p.PenaltyDuration, durFraction, pop.p.Ap.TargetFeasible, pop.p.Ap)
	}

	for _, indiv := range pop.Infeasible {
		indiv.Eval.PenalizedCost = indiv.Eval.Distance +
			indiv.Eval.CapacityExcess*pop.p.PenaltyCapacity +
			indiv.Eval.DurationExcess*pop.p.PenaltyDuration
	}
	sort.Slice(pop.Infeasible, func(i, j int) bool {
		return pop.Infeasible[i].Eval.PenalizedCost < pop.Infeasible[j].Eval.PenalizedCost
	})
	pop.updateBiasedFitness(pop.Infeasible)
}

func windowTrueFraction(window []bool) float64 {
	count := 0
	for _, v := range window {
		if v {
			count++
		}
	}
	return float64(count) / float64(len(window))
}

func adjustPenalty(penalty, fraction, target float64, ap AlgorithmParameters) float64 {
	if fraction < target-0.05 {
		penalty *= ap.PenaltyIncrease
	} else if fraction > target+0.05 {
		penalty *= ap.PenaltyDecrease
	}
	if penalty < 0.1 {
		penalty = 0.1
	}
	if penalty > 1e5 {
		penalty = 1e5
	}
	return penalty
}

// Restart discards both subpopulations and the best-since-restart
// solution, then regenerates, honouring the given deadline.
func (pop *Population) Restart(deadline time.Time) {
	pop.Feasible = nil
	pop.Infeasible = nil
	pop.BestSolutionRestart = nil
	pop.resetWindows()
	pop.Generate(deadline)
}

// GetBestFound returns the best feasible solution found across the whole
// run, or nil if none has been admitted yet.
func (pop *Population) GetBestFound() *Individual {
	return pop.BestSolutionOverall
}
