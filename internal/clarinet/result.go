package clarinet

import (
	"fmt"

	"github.com/roach88/clartest/internal/clarity"
)

// ExpectationError reports a result that did not have the expected shape
// or value.
type ExpectationError struct {
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Actual)
}

// Result wraps a value returned by the chain and exposes expectation
// checks. Unwrapping checks (ExpectOk, ExpectSome...) return the inner
// value as a new Result so checks can be chained.
type Result struct {
	value clarity.Value
}

// NewResult wraps v.
func NewResult(v clarity.Value) Result {
	return Result{value: v}
}

// Value returns the wrapped value.
func (r Result) Value() clarity.Value { return r.value }

// String returns the Clarity repr of the wrapped value.
func (r Result) String() string {
	if r.value == nil {
		return "<nil>"
	}
	return r.value.String()
}

// MarshalJSON encodes the wrapped value as canonical tagged JSON.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.value == nil {
		return []byte("null"), nil
	}
	return clarity.MarshalCanonical(r.value)
}

func (r Result) mismatch(expected string) error {
	return &ExpectationError{Expected: expected, Actual: r.String()}
}

func (r Result) response(wantOk bool) (Result, error) {
	resp, ok := r.value.(clarity.ResponseValue)
	if !ok || resp.IsOk() != wantOk {
		if wantOk {
			return Result{}, r.mismatch("(ok ...)")
		}
		return Result{}, r.mismatch("(err ...)")
	}
	return Result{value: resp.Inner()}, nil
}

// ExpectOk checks for an (ok ...) response and returns its payload.
func (r Result) ExpectOk() (Result, error) { return r.response(true) }

// ExpectErr checks for an (err ...) response and returns its payload. With
// want, the payload must also equal want[0]; extra values are ignored.
func (r Result) ExpectErr(want ...clarity.Value) (Result, error) {
	payload, err := r.response(false)
	if err != nil {
		return Result{}, err
	}
	if len(want) > 0 && !clarity.Equal(payload.value, want[0]) {
		return Result{}, r.mismatch(clarity.Err(want[0]).String())
	}
	return payload, nil
}

// ExpectSome checks for (some ...) and returns the wrapped value.
func (r Result) ExpectSome() (Result, error) {
	opt, ok := r.value.(clarity.OptionalValue)
	if !ok {
		return Result{}, r.mismatch("(some ...)")
	}
	inner, some := opt.Unwrap()
	if !some {
		return Result{}, r.mismatch("(some ...)")
	}
	return Result{value: inner}, nil
}

// ExpectNone checks for none.
func (r Result) ExpectNone() error {
	opt, ok := r.value.(clarity.OptionalValue)
	if !ok || opt.IsSome() {
		return r.mismatch("none")
	}
	return nil
}

// ExpectAscii checks for the ASCII string s.
func (r Result) ExpectAscii(s string) error {
	return r.expectEqual(clarity.Ascii(s))
}

// ExpectUTF8 checks for the UTF-8 string s.
func (r Result) ExpectUTF8(s string) error {
	return r.expectEqual(clarity.UTF8(s))
}

// ExpectUint checks for the unsigned integer n.
func (r Result) ExpectUint(n uint64) error {
	return r.expectEqual(clarity.Uint(n))
}

// ExpectBool checks for the boolean b.
func (r Result) ExpectBool(b bool) error {
	return r.expectEqual(clarity.Bool(b))
}

// ExpectPrincipal checks for the principal addr.
func (r Result) ExpectPrincipal(addr string) error {
	return r.expectEqual(clarity.Principal(addr))
}

// ExpectTuple checks for a tuple and returns it.
func (r Result) ExpectTuple() (clarity.TupleValue, error) {
	tuple, ok := r.value.(clarity.TupleValue)
	if !ok {
		return nil, r.mismatch("a tuple")
	}
	return tuple, nil
}

// ExpectList checks for a list and returns its elements as results.
func (r Result) ExpectList() ([]Result, error) {
	list, ok := r.value.(clarity.ListValue)
	if !ok {
		return nil, r.mismatch("a list")
	}
	out := make([]Result, len(list))
	for i, v := range list {
		out[i] = Result{value: v}
	}
	return out, nil
}

func (r Result) expectEqual(want clarity.Value) error {
	if !clarity.Equal(r.value, want) {
		return r.mismatch(want.String())
	}
	return nil
}
