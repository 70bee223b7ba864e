package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/clartest/internal/clarinet"
	"github.com/roach88/clartest/internal/clarity"
)

// AssertionError is returned when an assertion fails.
// It includes the calls made so far to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, event := range e.Trace {
		if event.Type != EventBlock {
			fmt.Fprintf(&buf, "  [%d] %s %s -> %s\n", i+1, event.Call, formatArgs(event.Args), event.Result)
		}
	}

	return buf.String()
}

func formatArgs(args []clarity.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// assertTraceContains checks that the trace holds a call to the assertion's
// function, with the given result when want is non-nil.
func assertTraceContains(trace []TraceEvent, assertion Assertion, want clarity.Value) error {
	for _, event := range trace {
		if event.Type == EventBlock || event.Call != assertion.Call {
			continue
		}
		if want == nil || clarity.Equal(want, event.Result) {
			return nil
		}
	}

	expected := "call " + assertion.Call
	if want != nil {
		expected += " returning " + want.String()
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks if calls appear in the specified order.
// Calls don't need to be consecutive (intervening calls are allowed).
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	// First position of each expected call, 1-indexed.
	positions := make(map[string]int)
	for i, event := range trace {
		if event.Type == EventBlock {
			continue
		}
		for _, expected := range assertion.Calls {
			if event.Call == expected && positions[expected] == 0 {
				positions[expected] = i + 1
			}
		}
	}

	for _, call := range assertion.Calls {
		if positions[call] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all calls present: %v", assertion.Calls),
				Actual:   fmt.Sprintf("missing call: %s", call),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Calls); i++ {
		prev := assertion.Calls[i-1]
		curr := assertion.Calls[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("calls in order: %v", assertion.Calls),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks if the call appears exactly the specified number of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type != EventBlock && event.Call == assertion.Call {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Call),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertFinalHeight checks the chain height after the last step.
func assertFinalHeight(result *Result, assertion Assertion) error {
	if result.FinalHeight != assertion.Height {
		return &AssertionError{
			Type:     AssertFinalHeight,
			Expected: fmt.Sprintf("height %d", assertion.Height),
			Actual:   fmt.Sprintf("height %d", result.FinalHeight),
			Trace:    result.Trace,
		}
	}
	return nil
}

// EvaluateAssertions runs all assertions against a result and returns the
// failure messages. Account roles in expected values resolve against
// accounts.
func EvaluateAssertions(result *Result, assertions []Assertion, accounts clarinet.AccountMap) []string {
	var errors []string
	conv := valueConverter{accounts: accounts}

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			var want clarity.Value
			if assertion.Result != nil {
				want, err = conv.value(assertion.Result)
				if err != nil {
					err = fmt.Errorf("assertion[%d]: result: %w", i, err)
					break
				}
			}
			err = assertTraceContains(result.Trace, assertion, want)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalHeight:
			err = assertFinalHeight(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
