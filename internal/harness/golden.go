package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/clartest/internal/clarity"
)

// TraceSnapshot is the golden-file form of a run. Block hashes and tx IDs
// are left out so a snapshot survives changes to the hashing scheme.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Pass         bool         `json:"pass"`
	FinalHeight  int64        `json:"final_height"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap lays the snapshot out for clarity.MarshalCanonical.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		trace[i] = event.canonical()
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"pass":          s.Pass,
		"final_height":  s.FinalHeight,
		"trace":         trace,
	}
}

// Snapshot returns the canonical JSON snapshot of a result.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Pass:         result.Pass,
		FinalHeight:  result.FinalHeight,
		Trace:        result.Trace,
	}
	return clarity.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden runs scenario on the default devnet and checks its snapshot
// against testdata/golden/<name>.golden, failing t on a mismatch. Pass
// -update to the test binary to rewrite the file. Only execution errors are
// returned.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden is RunWithGolden for a result the caller already has.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, snapshot)

	return nil
}
