package simnet

import (
	"fmt"
	"maps"

	"github.com/roach88/clartest/internal/clarity"
)

// State is the storage of every deployed contract.
type State struct {
	contracts map[string]*ContractState
}

func newState() *State {
	return &State{contracts: make(map[string]*ContractState)}
}

// contract returns the state of the named contract, creating it if needed.
func (s *State) contract(name string) *ContractState {
	cs, ok := s.contracts[name]
	if !ok {
		cs = newContractState()
		s.contracts[name] = cs
	}
	return cs
}

func (s *State) clone() *State {
	out := &State{contracts: make(map[string]*ContractState, len(s.contracts))}
	for name, cs := range s.contracts {
		out.contracts[name] = cs.clone()
	}
	return out
}

// ContractState holds one contract's data maps and data vars. Map keys are
// compared by canonical encoding, so structurally equal keys collide.
type ContractState struct {
	maps map[string]map[string]mapEntry
	vars map[string]clarity.Value
}

type mapEntry struct {
	key   clarity.Value
	value clarity.Value
}

func newContractState() *ContractState {
	return &ContractState{
		maps: make(map[string]map[string]mapEntry),
		vars: make(map[string]clarity.Value),
	}
}

// Values are immutable, so copying the containers is enough.
func (s *ContractState) clone() *ContractState {
	out := &ContractState{
		maps: make(map[string]map[string]mapEntry, len(s.maps)),
		vars: maps.Clone(s.vars),
	}
	for name, m := range s.maps {
		out.maps[name] = maps.Clone(m)
	}
	return out
}

func encodeKey(key clarity.Value) (string, error) {
	if key == nil {
		return "", fmt.Errorf("%w: nil map key", ErrInvalidArgument)
	}
	data, err := clarity.MarshalCanonical(key)
	if err != nil {
		return "", fmt.Errorf("encode map key: %w", err)
	}
	return string(data), nil
}

// MapGet returns the value stored under key in map name.
func (s *ContractState) MapGet(name string, key clarity.Value) (clarity.Value, bool, error) {
	k, err := encodeKey(key)
	if err != nil {
		return nil, false, err
	}
	e, ok := s.maps[name][k]
	return e.value, ok, nil
}

// MapSet stores value under key, replacing any existing entry.
func (s *ContractState) MapSet(name string, key, value clarity.Value) error {
	k, err := encodeKey(key)
	if err != nil {
		return err
	}
	m, ok := s.maps[name]
	if !ok {
		m = make(map[string]mapEntry)
		s.maps[name] = m
	}
	m[k] = mapEntry{key: key, value: value}
	return nil
}

// MapInsert stores value under key only if key is absent. It reports
// whether the entry was inserted.
func (s *ContractState) MapInsert(name string, key, value clarity.Value) (bool, error) {
	_, exists, err := s.MapGet(name, key)
	if err != nil || exists {
		return false, err
	}
	return true, s.MapSet(name, key, value)
}

// mapDelete removes key and reports whether it was present.
func (s *ContractState) mapDelete(name string, key clarity.Value) (bool, error) {
	k, err := encodeKey(key)
	if err != nil {
		return false, err
	}
	if _, ok := s.maps[name][k]; !ok {
		return false, nil
	}
	delete(s.maps[name], k)
	return true, nil
}

// mapLen returns the number of entries in map name.
func (s *ContractState) mapLen(name string) int {
	return len(s.maps[name])
}

// VarGet returns data var name.
func (s *ContractState) VarGet(name string) (clarity.Value, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// VarSet sets data var name.
func (s *ContractState) VarSet(name string, v clarity.Value) {
	s.vars[name] = v
}
