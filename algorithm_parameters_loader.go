package hgs

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadAlgorithmParametersFromFile loads AlgorithmParameters from a JSON
// file, starting from the defaults so an abbreviated file only needs to
// override what it cares about.
func LoadAlgorithmParametersFromFile(path string) (*AlgorithmParameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read algorithm parameters file: %v", ErrIO, err)
	}

	ap := NewDefaultAlgorithmParameters()
	if err := json.Unmarshal(data, &ap); err != nil {
		return nil, fmt.Errorf("%w: failed to parse algorithm parameters file: %v", ErrParse, err)
	}

	if err := ValidateAlgorithmParameters(&ap); err != nil {
		return nil, fmt.Errorf("invalid algorithm parameters: %w", err)
	}

	return &ap, nil
}

// SaveAlgorithmParametersToFile persists AlgorithmParameters as indented
// JSON.
func SaveAlgorithmParametersToFile(ap *AlgorithmParameters, path string) error {
	data, err := json.MarshalIndent(ap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal algorithm parameters: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: failed to write algorithm parameters file: %v", ErrIO, err)
	}
	return nil
}

// ValidateAlgorithmParameters checks that the tunables are internally
// consistent, giving actionable messages the way the teacher's
// ValidateConfig does for the mayfly Config.
func ValidateAlgorithmParameters(ap *AlgorithmParameters) error {
	if ap == nil {
		return fmt.Errorf("algorithm parameters are nil")
	}
	if ap.NbGranular <= 0 {
		return fmt.Errorf("nb_granular must be positive (got %d)", ap.NbGranular)
	}
	if ap.Mu <= 0 {
		return fmt.Errorf("mu must be positive (got %d)", ap.Mu)
	}
	if ap.Lambda <= 0 {
		return fmt.Errorf("lambda must be positive (got %d)", ap.Lambda)
	}
	if ap.NbElite < 0 {
		return fmt.Errorf("nb_elite must be non-negative (got %d)", ap.NbElite)
	}
	if ap.NbClose <= 0 {
		return fmt.Errorf("nb_close must be positive (got %d)", ap.NbClose)
	}
	if ap.TargetFeasible < 0 || ap.TargetFeasible > 1 {
		return fmt.Errorf("target_feasible should be in [0,1] (got %f)", ap.TargetFeasible)
	}
	if ap.NbIter <= 0 {
		return fmt.Errorf("nb_iter must be positive (got %d)", ap.NbIter)
	}
	if ap.TimeLimit < 0 {
		return fmt.Errorf("time_limit must be non-negative (got %f)", ap.TimeLimit)
	}
	if ap.DecoTargetSize <= 0 {
		return fmt.Errorf("deco_target_size must be positive (got %d)", ap.DecoTargetSize)
	}
	if ap.NbIterPenaltyManagement <= 0 {
		return fmt.Errorf("nb_iter_penalty_management must be positive (got %d)", ap.NbIterPenaltyManagement)
	}
	if ap.NbIterTraces <= 0 {
		return fmt.Errorf("nb_iter_traces must be positive (got %d)", ap.NbIterTraces)
	}
	if ap.PenaltyIncrease <= 1 {
		return fmt.Errorf("penalty_increase must be greater than 1 (got %f)", ap.PenaltyIncrease)
	}
	if ap.PenaltyDecrease <= 0 || ap.PenaltyDecrease >= 1 {
		return fmt.Errorf("penalty_decrease should be in (0,1) (got %f)", ap.PenaltyDecrease)
	}
	return nil
}
