package harness

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// ScenarioNotFoundError is returned when a manifest references a scenario
// file that doesn't exist.
type ScenarioNotFoundError struct {
	Contract     string
	ScenarioPath string
}

// Error implements the error interface.
func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("contract %q references scenario file %q which does not exist",
		e.Contract, e.ScenarioPath)
}

// ValidationResult summarizes a run of every scenario in a manifest.
type ValidationResult struct {
	TotalContracts int               `json:"total_contracts"`
	TotalScenarios int               `json:"total_scenarios"`
	Passed         int               `json:"passed"`
	Failed         int               `json:"failed"`
	Skipped        int               `json:"skipped"` // Contracts without scenarios
	Scenarios      []ScenarioOutcome `json:"scenarios"`
	Failures       []ScenarioFailure `json:"failures,omitempty"`
}

// OK reports whether no scenario failed.
func (v *ValidationResult) OK() bool { return v.Failed == 0 }

// ScenarioOutcome is the result of one scenario file.
type ScenarioOutcome struct {
	Contract     string   `json:"contract"`
	ScenarioPath string   `json:"scenario_path"`
	Name         string   `json:"name,omitempty"`
	Pass         bool     `json:"pass"`
	Errors       []string `json:"errors,omitempty"`
}

// ScenarioFailure is a failed scenario with its first error.
type ScenarioFailure struct {
	Contract     string `json:"contract"`
	ScenarioPath string `json:"scenario_path"`
	Error        string `json:"error"`
}

// ValidateContracts runs every scenario the manifest lists for its
// contracts, each on a fresh chain, in contract name order.
//
// Load and expectation failures are collected in the result. An error is
// returned only if ctx is cancelled.
func (h *Harness) ValidateContracts(ctx context.Context) (*ValidationResult, error) {
	return h.ValidateContractsFiltered(ctx, "")
}

// ValidateContractsFiltered is ValidateContracts limited to scenarios whose
// name contains filter. An empty filter runs everything.
func (h *Harness) ValidateContractsFiltered(ctx context.Context, filter string) (*ValidationResult, error) {
	result := &ValidationResult{}

	for _, contract := range h.manifest.ContractNames() {
		result.TotalContracts++

		paths := h.manifest.ContractScenarios(contract)
		if len(paths) == 0 {
			result.Skipped++
			continue
		}

		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			outcome := h.runFile(ctx, contract, path, filter)
			if outcome == nil {
				continue
			}
			result.TotalScenarios++
			result.Scenarios = append(result.Scenarios, *outcome)
			if outcome.Pass {
				result.Passed++
				continue
			}
			result.Failed++
			result.Failures = append(result.Failures, ScenarioFailure{
				Contract:     contract,
				ScenarioPath: path,
				Error:        outcome.Errors[0],
			})
		}
	}

	return result, nil
}

// runFile loads and runs one scenario file. It returns nil if the scenario
// is filtered out.
func (h *Harness) runFile(ctx context.Context, contract, path, filter string) *ScenarioOutcome {
	outcome := &ScenarioOutcome{Contract: contract, ScenarioPath: path}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		outcome.Errors = []string{(&ScenarioNotFoundError{Contract: contract, ScenarioPath: path}).Error()}
		return outcome
	}

	scenario, err := LoadScenario(path)
	if err != nil {
		outcome.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
		return outcome
	}
	if !matchesFilter(scenario.Name, filter) {
		return nil
	}
	outcome.Name = scenario.Name

	run, err := h.Run(ctx, scenario)
	if err != nil {
		outcome.Errors = []string{fmt.Sprintf("scenario execution error: %v", err)}
		return outcome
	}
	outcome.Pass = run.Pass
	outcome.Errors = run.Errors
	return outcome
}

func matchesFilter(name, filter string) bool {
	return filter == "" || strings.Contains(name, filter)
}
