package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is a declarative contract test.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps run in order against a fresh chain.
	Steps []Step `yaml:"steps"`

	// Assertions validate the full trace after all steps pass.
	// Supported types: trace_contains, trace_order, trace_count, final_height
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is either a block of transactions or a read-only call.
type Step struct {
	// Mine lists the transactions of one block.
	Mine []Call `yaml:"mine,omitempty"`

	// ReadOnly is a read-only call.
	ReadOnly *Call `yaml:"read_only,omitempty"`

	// Expect validates the outcome. If nil, any outcome is accepted as
	// long as the chain does not reject the step.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Call is a contract function call.
type Call struct {
	// Call is "<contract>.<function>".
	Call string `yaml:"call"`

	// Sender is an account role from the manifest.
	Sender string `yaml:"sender"`

	// Args are typed values (see package doc).
	Args []any `yaml:"args,omitempty"`
}

// Split returns the contract and function names.
func (c Call) Split() (contract, function string, err error) {
	contract, function, ok := strings.Cut(c.Call, ".")
	if !ok || contract == "" || function == "" {
		return "", "", fmt.Errorf("call %q: expected <contract>.<function>", c.Call)
	}
	return contract, function, nil
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Height is the expected block height (mine only).
	Height *int64 `yaml:"height,omitempty"`

	// Receipts is the expected receipt count (mine only). Results implies
	// a count when Receipts is unset.
	Receipts *int `yaml:"receipts,omitempty"`

	// Results are the expected receipt values in order (mine only).
	Results []any `yaml:"results,omitempty"`

	// Result is the expected return value (read_only only).
	Result any `yaml:"result,omitempty"`

	// Fields is a subset match on the tuple inside the read-only result,
	// after unwrapping (ok ...) or (some ...).
	Fields map[string]any `yaml:"fields,omitempty"`

	// Error expects the chain to reject the step with an error containing
	// this text.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": a call appears in the trace, optionally with a result
	// - "trace_order": calls appear in the given order
	// - "trace_count": a call appears exactly Count times
	// - "final_height": the chain ends at Height
	Type string `yaml:"type"`

	// Call is "<contract>.<function>" (trace_contains, trace_count).
	Call string `yaml:"call,omitempty"`

	// Result is the expected result value (trace_contains, optional).
	Result any `yaml:"result,omitempty"`

	// Calls is the expected call order (trace_order).
	Calls []string `yaml:"calls,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Height is the expected final height (final_height).
	Height int64 `yaml:"height,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalHeight   = "final_height"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches typos like "assertion:" vs "assertions:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step *Step) error {
	switch {
	case step.Mine != nil && step.ReadOnly != nil:
		return fmt.Errorf("steps[%d]: mine and read_only are mutually exclusive", index)
	case step.Mine == nil && step.ReadOnly == nil:
		return fmt.Errorf("steps[%d]: one of mine or read_only is required", index)
	}

	calls := step.Mine
	if step.ReadOnly != nil {
		calls = []Call{*step.ReadOnly}
	}
	for j, call := range calls {
		if _, _, err := call.Split(); err != nil {
			return fmt.Errorf("steps[%d].calls[%d]: %w", index, j, err)
		}
		if call.Sender == "" {
			return fmt.Errorf("steps[%d].calls[%d]: sender is required", index, j)
		}
	}

	e := step.Expect
	if e == nil {
		return nil
	}
	if step.ReadOnly != nil {
		if e.Height != nil || e.Receipts != nil || e.Results != nil {
			return fmt.Errorf("steps[%d].expect: height, receipts and results apply to mine steps", index)
		}
	} else {
		if e.Result != nil || e.Fields != nil {
			return fmt.Errorf("steps[%d].expect: result and fields apply to read_only steps", index)
		}
		if e.Receipts != nil && e.Results != nil && *e.Receipts != len(e.Results) {
			return fmt.Errorf("steps[%d].expect: receipts is %d but %d results are listed", index, *e.Receipts, len(e.Results))
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Call == "" {
			return fmt.Errorf("assertions[%d]: call is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Calls) == 0 {
			return fmt.Errorf("assertions[%d]: calls list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Call == "" {
			return fmt.Errorf("assertions[%d]: call is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalHeight:
		if a.Height < 1 {
			return fmt.Errorf("assertions[%d]: height must be positive for final_height", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
