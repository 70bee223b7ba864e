package clarity

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf16"

	"github.com/holiman/uint256"
)

// Kind names the type tag of a Value.
type Kind string

// Value kinds.
const (
	KindASCII     Kind = "ascii"
	KindUTF8      Kind = "utf8"
	KindUint      Kind = "uint"
	KindBool      Kind = "bool"
	KindPrincipal Kind = "principal"
	KindOptional  Kind = "optional"
	KindList      Kind = "list"
	KindTuple     Kind = "tuple"
	KindResponse  Kind = "response"
)

// Value is a sealed interface over the typed values a contract accepts
// and returns. String renders the value the way a Clarity REPL prints it.
type Value interface {
	Kind() Kind
	String() string
	sealed()
}

// ASCIIValue is a (string-ascii n) value.
type ASCIIValue string

func (ASCIIValue) Kind() Kind { return KindASCII }
func (ASCIIValue) sealed()    {}

func (v ASCIIValue) String() string { return `"` + escaper.Replace(string(v)) + `"` }

// UTF8Value is a (string-utf8 n) value.
type UTF8Value string

func (UTF8Value) Kind() Kind { return KindUTF8 }
func (UTF8Value) sealed()    {}

func (v UTF8Value) String() string { return `u"` + escaper.Replace(string(v)) + `"` }

// UintValue is an unsigned 128-bit integer.
type UintValue struct {
	n uint256.Int
}

func (UintValue) Kind() Kind { return KindUint }
func (UintValue) sealed()    {}

func (v UintValue) String() string { return "u" + v.n.Dec() }

// Dec returns the decimal digits without the u prefix.
func (v UintValue) Dec() string { return v.n.Dec() }

// Int returns a copy of the underlying 256-bit integer.
func (v UintValue) Int() *uint256.Int {
	n := v.n
	return &n
}

// Uint64 returns the value as uint64 and whether it fits.
func (v UintValue) Uint64() (uint64, bool) {
	return v.n.Uint64(), v.n.IsUint64()
}

// IsZero reports whether the value is u0.
func (v UintValue) IsZero() bool { return v.n.IsZero() }

// Cmp compares v and o, returning -1, 0 or +1.
func (v UintValue) Cmp(o UintValue) int { return v.n.Cmp(&o.n) }

// Div returns v / d truncated toward zero.
func (v UintValue) Div(d UintValue) (UintValue, error) {
	if d.n.IsZero() {
		return UintValue{}, ErrDivisionByZero
	}
	var q UintValue
	q.n.Div(&v.n, &d.n)
	return q, nil
}

// BoolValue is a bool value.
type BoolValue bool

func (BoolValue) Kind() Kind { return KindBool }
func (BoolValue) sealed()    {}

func (v BoolValue) String() string {
	if v {
		return "true"
	}
	return "false"
}

// PrincipalValue is a standard or contract principal.
type PrincipalValue string

func (PrincipalValue) Kind() Kind { return KindPrincipal }
func (PrincipalValue) sealed()    {}

func (v PrincipalValue) String() string { return "'" + string(v) }

// OptionalValue is (some v) or none. The zero value is none.
type OptionalValue struct {
	inner Value
}

func (OptionalValue) Kind() Kind { return KindOptional }
func (OptionalValue) sealed()    {}

func (v OptionalValue) String() string {
	if v.inner == nil {
		return "none"
	}
	return "(some " + valueString(v.inner) + ")"
}

// IsSome reports whether the optional holds a value.
func (v OptionalValue) IsSome() bool { return v.inner != nil }

// Unwrap returns the wrapped value, if any.
func (v OptionalValue) Unwrap() (Value, bool) { return v.inner, v.inner != nil }

// ListValue is an ordered list of values.
type ListValue []Value

func (ListValue) Kind() Kind { return KindList }
func (ListValue) sealed()    {}

func (v ListValue) String() string {
	if len(v) == 0 {
		return "(list)"
	}
	parts := make([]string, len(v))
	for i, elem := range v {
		parts[i] = valueString(elem)
	}
	return "(list " + strings.Join(parts, " ") + ")"
}

// TupleValue is an unordered mapping from field name to value.
// Use SortedKeys for deterministic iteration.
type TupleValue map[string]Value

func (TupleValue) Kind() Kind { return KindTuple }
func (TupleValue) sealed()    {}

func (v TupleValue) String() string {
	keys := v.SortedKeys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + valueString(v[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Get returns the named field.
func (v TupleValue) Get(name string) (Value, bool) {
	val, ok := v[name]
	return val, ok
}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
func (v TupleValue) SortedKeys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// ResponseValue is (ok v) or (err v).
type ResponseValue struct {
	ok    bool
	inner Value
}

func (ResponseValue) Kind() Kind { return KindResponse }
func (ResponseValue) sealed()    {}

func (v ResponseValue) String() string {
	if v.ok {
		return "(ok " + valueString(v.inner) + ")"
	}
	return "(err " + valueString(v.inner) + ")"
}

// valueString renders v, tolerating the nil payloads Validate rejects.
func valueString(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}

// IsOk reports whether the response is the ok variant.
func (v ResponseValue) IsOk() bool { return v.ok }

// Inner returns the payload of either variant.
func (v ResponseValue) Inner() Value { return v.inner }

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

// compareKeysRFC8785 compares strings by UTF-16 code units.
// Go's default string comparison uses UTF-8 which orders differently
// outside the BMP.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}

// Equal reports whether a and b are structurally equal.
// Tuples compare as unordered field sets.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case ASCIIValue, UTF8Value, BoolValue, PrincipalValue:
		return a == b
	case UintValue:
		bv := b.(UintValue)
		return av.n.Eq(&bv.n)
	case OptionalValue:
		bv := b.(OptionalValue)
		if av.inner == nil || bv.inner == nil {
			return av.inner == nil && bv.inner == nil
		}
		return Equal(av.inner, bv.inner)
	case ListValue:
		bv := b.(ListValue)
		return slices.EqualFunc(av, bv, Equal)
	case TupleValue:
		bv := b.(TupleValue)
		if len(av) != len(bv) {
			return false
		}
		for k, x := range av {
			y, ok := bv[k]
			if !ok || !Equal(x, y) {
				return false
			}
		}
		return true
	case ResponseValue:
		bv := b.(ResponseValue)
		return av.ok == bv.ok && Equal(av.inner, bv.inner)
	default:
		panic(fmt.Sprintf("clarity: unknown value type %T", a))
	}
}
