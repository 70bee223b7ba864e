package clarity

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/holiman/uint256"
	"golang.org/x/text/unicode/norm"
)

// Errors reported by Validate and arithmetic.
var (
	ErrDivisionByZero = errors.New("clarity: division by zero")
	ErrUintOverflow   = errors.New("clarity: uint exceeds 128 bits")
	ErrInvalidASCII   = errors.New("clarity: string-ascii contains non-printable characters")
	ErrInvalidAddress = errors.New("clarity: malformed principal")
	ErrInvalidUTF8    = errors.New("clarity: string-utf8 is not valid UTF-8")
	ErrNotNormalized  = errors.New("clarity: string-utf8 is not NFC normalized")
	ErrNilValue       = errors.New("clarity: nil value")
)

// principalPattern accepts standard principals (c32 alphabet) with an
// optional contract name suffix.
var principalPattern = regexp.MustCompile(`^S[0-9A-HJKMNP-TV-Z]{28,41}(\.[a-zA-Z][a-zA-Z0-9_-]{0,127})?$`)

// Ascii wraps s as a string-ascii value.
func Ascii(s string) ASCIIValue {
	return ASCIIValue(s)
}

// UTF8 wraps s as a string-utf8 value, NFC normalized.
func UTF8(s string) UTF8Value {
	return UTF8Value(norm.NFC.String(s))
}

// Uint wraps n as a uint value.
func Uint(n uint64) UintValue {
	var v UintValue
	v.n.SetUint64(n)
	return v
}

// UintFromInt wraps a 256-bit integer. Values above 128 bits are kept so
// that Validate can report them.
func UintFromInt(n *uint256.Int) UintValue {
	var v UintValue
	v.n.Set(n)
	return v
}

// UintFromDecimal parses a base-10 uint.
func UintFromDecimal(s string) (UintValue, error) {
	n, err := uint256.FromDecimal(s)
	if err != nil {
		return UintValue{}, fmt.Errorf("parse uint %q: %w", s, err)
	}
	if n.BitLen() > 128 {
		return UintValue{}, fmt.Errorf("parse uint %q: %w", s, ErrUintOverflow)
	}
	return UintFromInt(n), nil
}

// Bool wraps b as a bool value.
func Bool(b bool) BoolValue {
	return BoolValue(b)
}

// Principal wraps an address as a principal value.
func Principal(addr string) PrincipalValue {
	return PrincipalValue(addr)
}

// Some wraps v as (some v).
func Some(v Value) OptionalValue {
	return OptionalValue{inner: v}
}

// None returns the none optional.
func None() OptionalValue {
	return OptionalValue{}
}

// List builds a list from values.
func List(vals ...Value) ListValue {
	return ListValue(vals)
}

// Tuple builds a tuple from a field map. The map is copied.
func Tuple(fields map[string]Value) TupleValue {
	t := make(TupleValue, len(fields))
	for k, v := range fields {
		t[k] = v
	}
	return t
}

// Ok wraps v as (ok v).
func Ok(v Value) ResponseValue {
	return ResponseValue{ok: true, inner: v}
}

// Err wraps v as (err v).
func Err(v Value) ResponseValue {
	return ResponseValue{ok: false, inner: v}
}

// Validate reports values a chain must reject as arguments.
func Validate(v Value) error {
	switch val := v.(type) {
	case nil:
		return ErrNilValue
	case ASCIIValue:
		for i := 0; i < len(val); i++ {
			c := val[i]
			if (c < 0x20 || c > 0x7e) && c != '\n' && c != '\t' && c != '\r' {
				return fmt.Errorf("%w: byte 0x%02x at offset %d", ErrInvalidASCII, c, i)
			}
		}
	case UTF8Value:
		if !utf8.ValidString(string(val)) {
			return ErrInvalidUTF8
		}
		// UTF8() normalizes; a conversion like UTF8Value(s) does not.
		if !norm.NFC.IsNormalString(string(val)) {
			return fmt.Errorf("%w: %q", ErrNotNormalized, string(val))
		}
	case UintValue:
		if val.n.BitLen() > 128 {
			return ErrUintOverflow
		}
	case PrincipalValue:
		if !principalPattern.MatchString(string(val)) {
			return fmt.Errorf("%w: %q", ErrInvalidAddress, string(val))
		}
	case OptionalValue:
		if val.inner != nil {
			return Validate(val.inner)
		}
	case ListValue:
		for i, elem := range val {
			if err := Validate(elem); err != nil {
				return fmt.Errorf("list[%d]: %w", i, err)
			}
		}
	case TupleValue:
		for _, k := range val.SortedKeys() {
			if err := Validate(val[k]); err != nil {
				return fmt.Errorf("tuple[%q]: %w", k, err)
			}
		}
	case ResponseValue:
		return Validate(val.inner)
	}
	return nil
}
