package harness

import (
	"fmt"

	"github.com/roach88/clartest/internal/clarinet"
	"github.com/roach88/clartest/internal/clarity"
)

// valueConverter turns YAML typed values into Clarity values, resolving
// account roles against accounts.
type valueConverter struct {
	accounts clarinet.AccountMap
}

func (c valueConverter) values(raw []any) ([]clarity.Value, error) {
	out := make([]clarity.Value, 0, len(raw))
	for i, r := range raw {
		v, err := c.value(r)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (c valueConverter) value(raw any) (clarity.Value, error) {
	if s, ok := raw.(string); ok && s == "none" {
		return clarity.None(), nil
	}

	m, ok := raw.(map[string]any)
	if !ok || len(m) != 1 {
		return nil, fmt.Errorf("expected a single-key typed value, got %v", raw)
	}

	var kind string
	for k := range m {
		kind = k
	}
	return c.typed(kind, m[kind])
}

func (c valueConverter) typed(kind string, inner any) (clarity.Value, error) {
	switch kind {
	case "ascii":
		s, err := asString(kind, inner)
		if err != nil {
			return nil, err
		}
		return clarity.Ascii(s), nil

	case "utf8":
		s, err := asString(kind, inner)
		if err != nil {
			return nil, err
		}
		return clarity.UTF8(s), nil

	case "uint":
		return asUint(inner)

	case "bool":
		b, ok := inner.(bool)
		if !ok {
			return nil, fmt.Errorf("bool: expected true or false, got %v", inner)
		}
		return clarity.Bool(b), nil

	case "principal":
		s, err := asString(kind, inner)
		if err != nil {
			return nil, err
		}
		return clarity.Principal(s), nil

	case "account":
		role, err := asString(kind, inner)
		if err != nil {
			return nil, err
		}
		acct, err := c.accounts.Require(role)
		if err != nil {
			return nil, err
		}
		return clarity.Principal(acct.Address), nil

	case "some":
		v, err := c.value(inner)
		if err != nil {
			return nil, fmt.Errorf("some: %w", err)
		}
		return clarity.Some(v), nil

	case "none":
		if inner != nil {
			return nil, fmt.Errorf("none: takes no value, got %v", inner)
		}
		return clarity.None(), nil

	case "ok", "err":
		v, err := c.value(inner)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		if kind == "ok" {
			return clarity.Ok(v), nil
		}
		return clarity.Err(v), nil

	case "list":
		elems, ok := inner.([]any)
		if !ok && inner != nil {
			return nil, fmt.Errorf("list: expected a sequence, got %v", inner)
		}
		vals, err := c.values(elems)
		if err != nil {
			return nil, fmt.Errorf("list%w", err)
		}
		return clarity.List(vals...), nil

	case "tuple":
		fields, ok := inner.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("tuple: expected a mapping, got %v", inner)
		}
		tuple := make(map[string]clarity.Value, len(fields))
		for name, f := range fields {
			v, err := c.value(f)
			if err != nil {
				return nil, fmt.Errorf("tuple.%s: %w", name, err)
			}
			tuple[name] = v
		}
		return clarity.Tuple(tuple), nil
	}
	return nil, fmt.Errorf("unknown value type %q", kind)
}

func asString(kind string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected a string, got %v", kind, v)
	}
	return s, nil
}

// asUint accepts YAML integers and decimal strings. Strings carry values
// beyond 64 bits.
func asUint(v any) (clarity.Value, error) {
	switch n := v.(type) {
	case int:
		if n < 0 {
			return nil, fmt.Errorf("uint: negative value %d", n)
		}
		return clarity.Uint(uint64(n)), nil
	case uint64:
		return clarity.Uint(n), nil
	case string:
		u, err := clarity.UintFromDecimal(n)
		if err != nil {
			return nil, fmt.Errorf("uint: %w", err)
		}
		return u, nil
	}
	return nil, fmt.Errorf("uint: expected an integer or decimal string, got %v", v)
}

// callName formats a contract call the way scenarios spell it.
func callName(contract, function string) string {
	return contract + "." + function
}
