// Command hgs-cvrp runs the Hybrid Genetic Search CVRP solver against a
// CVRPLIB instance file and writes the best solution found.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	hgs "github.com/vidalt/HGS-CVRP"
	"github.com/vidalt/HGS-CVRP/cvrplib"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("hgs-cvrp", pflag.ContinueOnError)
	timeLimit := flags.Float64("t", 0, "time limit in seconds (0 = unbounded)")
	nbIter := flags.Int("it", 20000, "non-productive iterations before termination/restart")
	seed := flags.Int64("seed", 0, "PRNG seed")
	maxVeh := flags.Int("veh", -1, "max vehicles (-1 = unlimited default)")
	round := flags.Int("round", 1, "integer-round distances computed from coordinates (0|1)")
	logEnabled := flags.Int("log", 1, "emit progress lines to stderr (0|1)")
	bksPath := flags.String("bks", "", "best-known-solution file to update")
	useDec := flags.Bool("useDec", false, "enable barycentre-clustering decomposition")
	decIt := flags.Int("decIt", 0, "iterations between decomposition passes (0 = auto)")
	decSz := flags.Int("decSz", 100, "decomposition cluster size target")
	decNbIter := flags.Int("decNbIter", 0, "non-productive iterations per sub-solve (0 = inherit -it)")

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "usage: hgs-cvrp <instance-path> <solution-path> [flags]")
		return 2
	}
	instancePath, solutionPath := flags.Arg(0), flags.Arg(1)

	inst, err := cvrplib.ParseFile(instancePath)
	if err != nil {
		klog.Errorf("parse %s: %v", instancePath, err)
		return 1
	}

	ap := hgs.NewDefaultAlgorithmParameters()
	ap.Seed = *seed
	ap.NbIter = *nbIter
	ap.RoundDistances = *round != 0
	ap.UseDecomposition = *useDec
	ap.DecoIterations = *decIt
	ap.DecoTargetSize = *decSz
	ap.DecoNbIter = *decNbIter
	if *timeLimit > 0 {
		ap.TimeLimit = *timeLimit
	}

	opts := hgs.SolveOptions{
		Ap:            ap,
		Capacity:      inst.Capacity,
		DurationLimit: inst.DurationLimit,
		MaxVehicles:   *maxVeh,
	}
	if *logEnabled != 0 {
		opts.OnNewBest = func(cost float64, elapsed time.Duration) {
			klog.Infof("%s;%d;%s;%s", instancePath, *seed, strconv.FormatFloat(cost, 'f', 2, 64), strconv.FormatFloat(elapsed.Seconds(), 'f', 3, 64))
		}
	}

	sol, err := hgs.SolveCoords(inst.Clients, opts)
	if err != nil {
		klog.Errorf("solve %s: %v", instancePath, err)
		return 1
	}

	if err := os.WriteFile(solutionPath, []byte(hgs.FormatSolution(sol)), 0o644); err != nil {
		klog.Errorf("%v: write %s: %v", hgs.ErrIO, solutionPath, err)
		return 1
	}

	if *bksPath != "" {
		if err := updateBestKnownSolution(*bksPath, sol); err != nil {
			klog.Errorf("update bks %s: %v", *bksPath, err)
			return 1
		}
	}

	return 0
}

// updateBestKnownSolution overwrites path with sol only if sol improves on
// whatever cost is already recorded there, or when the file does not exist
// yet or holds no parseable "Cost" line.
func updateBestKnownSolution(path string, sol *hgs.Solution) error {
	existing, err := os.ReadFile(path)
	if err == nil {
		if prevCost, ok := parseCostLine(string(existing)); ok && prevCost <= sol.Cost {
			return nil
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", hgs.ErrIO, err)
	}
	return os.WriteFile(path, []byte(hgs.FormatSolution(sol)), 0o644)
}

func parseCostLine(content string) (float64, bool) {
	const prefix = "Cost "
	idx := -1
	for i := 0; i+len(prefix) <= len(content); i++ {
		if content[i:i+len(prefix)] == prefix {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, false
	}
	rest := content[idx+len(prefix):]
	end := 0
	for end < len(rest) && rest[end] != '\n' {
		end++
	}
	cost, err := strconv.ParseFloat(rest[:end], 64)
	if err != nil {
		return 0, false
	}
	return cost, true
}
