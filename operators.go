package hgs

import "math/rand"

// OXCrossover performs order crossover (OX) between two giant-tour
// permutations of {1..N}, producing one offspring: a wrap-around slice
// [a,b] is copied verbatim from parent1, and the remaining positions are
// filled, in the order encountered in parent2 starting right after b,
// with whichever customers are not already placed.
//
// At a=0, b=N-1 the copied slice is the entire parent1 tour, so the
// offspring is identical to parent1 regardless of parent2.
func OXCrossover(parent1, parent2 []int, rng *rand.Rand) []int {
	n := len(parent1)
	a := rng.Intn(n)
	b := rng.Intn(n)
	for b == a && n > 1 {
		b = rng.Intn(n)
	}
	return oxCrossoverWithSegment(parent1, parent2, a, b)
}

// oxCrossoverWithSegment is OXCrossover with the cut points supplied
// explicitly, factored out for deterministic testing.
func oxCrossoverWithSegment(parent1, parent2 []int, a, b int) []int {
	n := len(parent1)
	offspring := make([]int, n)
	filled := make([]bool, n)
	taken := make(map[int]bool, n)

	for i := a; ; i = (i + 1) % n {
		offspring[i] = parent1[i]
		filled[i] = true
		taken[parent1[i]] = true
		if i == b {
			break
		}
	}

	pos := (b + 1) % n
	for k := 0; k < n; k++ {
		c := parent2[(b+1+k)%n]
		if taken[c] {
			continue
		}
		for filled[pos] {
			pos = (pos + 1) % n
		}
		offspring[pos] = c
		filled[pos] = true
		taken[c] = true
	}

	return offspring
}
