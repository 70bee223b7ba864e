// Package asserts provides the equality and truth checks used by contract
// tests. Each check returns nil or an *AssertionError; callers return the
// error to fail the test at the first mismatch.
package asserts

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/clartest/internal/clarity"
)

// AssertionError is returned when a check fails.
type AssertionError struct {
	Message  string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	if e.Message != "" {
		buf.WriteString(e.Message)
		buf.WriteString(": ")
	}
	fmt.Fprintf(&buf, "expected %s, actual %s", e.Expected, e.Actual)
	return buf.String()
}

// AssertEquals checks that actual equals expected. Clarity values are
// compared structurally; anything else with reflect.DeepEqual.
func AssertEquals(actual, expected any, msg ...string) error {
	if equal(actual, expected) {
		return nil
	}
	return &AssertionError{
		Message:  strings.Join(msg, " "),
		Expected: render(expected),
		Actual:   render(actual),
	}
}

// AssertTrue checks that v is true.
func AssertTrue(v bool, msg ...string) error {
	return AssertEquals(v, true, msg...)
}

// AssertFalse checks that v is false.
func AssertFalse(v bool, msg ...string) error {
	return AssertEquals(v, false, msg...)
}

func equal(actual, expected any) bool {
	av, aIsValue := actual.(clarity.Value)
	ev, eIsValue := expected.(clarity.Value)
	if aIsValue || eIsValue {
		return aIsValue && eIsValue && clarity.Equal(av, ev)
	}
	return reflect.DeepEqual(actual, expected)
}

func render(v any) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case clarity.Value:
		return val.String()
	case string:
		return fmt.Sprintf("%q", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
