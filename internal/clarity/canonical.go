package clarity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON.
// This is the ONLY serialization used for content-addressed IDs, the
// chain log and golden traces.
//
// Values encode as tagged objects: {"type":"uint","value":"100"}.
// Besides Value it accepts string, bool, int, int64, uint64, []string,
// []any, []Value and map[string]any so callers can wrap values in records.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping
//  3. uint encodes as a decimal string (u128 does not fit a JSON number)
//  4. nil is rejected
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case Value:
		return writeValue(buf, val)
	case string:
		return writeString(buf, val)
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(val, 10))
	case []string:
		buf.WriteByte('[')
		for i, s := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, s); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case []Value:
		return writeCanonical(buf, ListValue(val).elems())
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareKeysRFC8785)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, k); err != nil {
				return fmt.Errorf("object key: %w", err)
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("object[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
	case float32, float64:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

func (l ListValue) elems() []any {
	out := make([]any, len(l))
	for i, v := range l {
		out[i] = v
	}
	return out
}

// writeValue encodes v as {"type":...,"value":...}. The type tag names the
// variant for optionals and responses (some/none/ok/err).
func writeValue(buf *bytes.Buffer, v Value) error {
	var (
		tag     string
		payload any
	)

	switch val := v.(type) {
	case ASCIIValue:
		tag, payload = "ascii", string(val)
	case UTF8Value:
		tag, payload = "utf8", string(val)
	case UintValue:
		tag, payload = "uint", val.Dec()
	case BoolValue:
		tag, payload = "bool", bool(val)
	case PrincipalValue:
		tag, payload = "principal", string(val)
	case OptionalValue:
		if val.inner == nil {
			buf.WriteString(`{"type":"none"}`)
			return nil
		}
		tag, payload = "some", val.inner
	case ListValue:
		tag, payload = "list", val.elems()
	case TupleValue:
		fields := make(map[string]any, len(val))
		for k, f := range val {
			fields[k] = f
		}
		tag, payload = "tuple", fields
	case ResponseValue:
		tag, payload = "err", val.inner
		if val.ok {
			tag = "ok"
		}
	default:
		return fmt.Errorf("unknown value type: %T", v)
	}

	buf.WriteString(`{"type":"`)
	buf.WriteString(tag)
	buf.WriteString(`","value":`)
	if err := writeCanonical(buf, payload); err != nil {
		return fmt.Errorf("%s: %w", tag, err)
	}
	buf.WriteByte('}')
	return nil
}

// writeString writes s NFC normalized, escaping only what RFC 8785
// requires: quote, backslash and control characters. <, >, &, U+2028 and
// U+2029 stay literal. Invalid UTF-8 is rejected rather than replaced.
func writeString(buf *bytes.Buffer, s string) error {
	const hex = "0123456789abcdef"

	if !utf8.ValidString(s) {
		return fmt.Errorf("invalid UTF-8 in string %q", s)
	}
	s = norm.NFC.String(s)

	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			buf.WriteString(`\"`)
		case c == '\\':
			buf.WriteString(`\\`)
		case c == '\b':
			buf.WriteString(`\b`)
		case c == '\f':
			buf.WriteString(`\f`)
		case c == '\n':
			buf.WriteString(`\n`)
		case c == '\r':
			buf.WriteString(`\r`)
		case c == '\t':
			buf.WriteString(`\t`)
		case c < 0x20:
			buf.WriteString(`\u00`)
			buf.WriteByte(hex[c>>4])
			buf.WriteByte(hex[c&0xf])
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte('"')
	return nil
}

// taggedValue is the decoding shape of a canonical value.
type taggedValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// UnmarshalValue decodes a canonical tagged value.
func UnmarshalValue(data []byte) (Value, error) {
	var tv taggedValue
	if err := json.Unmarshal(data, &tv); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}

	switch tv.Type {
	case "ascii", "utf8", "principal", "uint":
		var s string
		if err := json.Unmarshal(tv.Value, &s); err != nil {
			return nil, fmt.Errorf("decode %s: %w", tv.Type, err)
		}
		switch tv.Type {
		case "ascii":
			return Ascii(s), nil
		case "utf8":
			return UTF8(s), nil
		case "principal":
			return Principal(s), nil
		default:
			n, err := UintFromDecimal(s)
			if err != nil {
				return nil, err
			}
			return n, nil
		}
	case "bool":
		var b bool
		if err := json.Unmarshal(tv.Value, &b); err != nil {
			return nil, fmt.Errorf("decode bool: %w", err)
		}
		return Bool(b), nil
	case "none":
		return None(), nil
	case "some", "ok", "err":
		inner, err := UnmarshalValue(tv.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tv.Type, err)
		}
		switch tv.Type {
		case "some":
			return Some(inner), nil
		case "ok":
			return Ok(inner), nil
		default:
			return Err(inner), nil
		}
	case "list":
		var raw []json.RawMessage
		if err := json.Unmarshal(tv.Value, &raw); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		list := make(ListValue, len(raw))
		for i, elem := range raw {
			v, err := UnmarshalValue(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			list[i] = v
		}
		return list, nil
	case "tuple":
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(tv.Value, &raw); err != nil {
			return nil, fmt.Errorf("decode tuple: %w", err)
		}
		tuple := make(TupleValue, len(raw))
		for k, elem := range raw {
			v, err := UnmarshalValue(elem)
			if err != nil {
				return nil, fmt.Errorf("tuple[%q]: %w", k, err)
			}
			tuple[k] = v
		}
		return tuple, nil
	default:
		return nil, fmt.Errorf("decode value: unknown type tag %q", tv.Type)
	}
}

// UnmarshalValues decodes a canonical array of tagged values.
func UnmarshalValues(data []byte) ([]Value, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode values: %w", err)
	}
	vals := make([]Value, len(raw))
	for i, elem := range raw {
		v, err := UnmarshalValue(elem)
		if err != nil {
			return nil, fmt.Errorf("values[%d]: %w", i, err)
		}
		vals[i] = v
	}
	return vals, nil
}
