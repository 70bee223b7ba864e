package simnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/clartest/internal/clarity"
)

func TestContractStateMaps(t *testing.T) {
	s := newContractState()
	key := clarity.Tuple(map[string]clarity.Value{"id": clarity.Ascii("a"), "n": clarity.Uint(1)})

	inserted, err := s.MapInsert("m", key, clarity.Bool(true))
	require.NoError(t, err)
	assert.True(t, inserted)

	// Structurally equal key, built in a different order.
	same := clarity.Tuple(map[string]clarity.Value{"n": clarity.Uint(1), "id": clarity.Ascii("a")})
	inserted, err = s.MapInsert("m", same, clarity.Bool(false))
	require.NoError(t, err)
	assert.False(t, inserted)

	v, ok, err := s.MapGet("m", same)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, clarity.Equal(clarity.Bool(true), v))

	require.NoError(t, s.MapSet("m", key, clarity.Bool(false)))
	v, _, _ = s.MapGet("m", key)
	assert.True(t, clarity.Equal(clarity.Bool(false), v))
	assert.Equal(t, 1, s.mapLen("m"))

	deleted, err := s.mapDelete("m", key)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = s.mapDelete("m", key)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, ok, err = s.MapGet("missing", key)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = s.MapGet("m", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestStateCloneIsolated(t *testing.T) {
	s := newState()
	s.contract("c").VarSet("v", clarity.Uint(1))
	require.NoError(t, s.contract("c").MapSet("m", clarity.Uint(1), clarity.Uint(1)))

	cp := s.clone()
	cp.contract("c").VarSet("v", clarity.Uint(2))
	require.NoError(t, cp.contract("c").MapSet("m", clarity.Uint(2), clarity.Uint(2)))
	cp.contract("other").VarSet("x", clarity.Bool(true))

	v, _ := s.contract("c").VarGet("v")
	assert.True(t, clarity.Equal(clarity.Uint(1), v))
	assert.Equal(t, 1, s.contract("c").mapLen("m"))
	_, ok := s.contracts["other"]
	assert.False(t, ok)
}

func TestArgHelpers(t *testing.T) {
	args := []clarity.Value{clarity.Ascii("abc"), clarity.Uint(5), clarity.Principal("ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM")}

	require.NoError(t, CheckArity(args, 3))
	assert.ErrorIs(t, CheckArity(args, 2), ErrInvalidArgument)

	s, err := ArgASCII(args, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, clarity.Ascii("abc"), s)
	_, err = ArgASCII(args, 0, 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = ArgASCII(args, 1, 10)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	n, err := ArgUint(args, 1)
	require.NoError(t, err)
	assert.Equal(t, "u5", n.String())
	_, err = ArgUint(args, 0)
	assert.EqualError(t, err, "invalid argument: argument 0: expected uint, got ascii")

	p, err := argPrincipal(args, 2)
	require.NoError(t, err)
	assert.Equal(t, clarity.PrincipalValue("ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"), p)
	_, err = argPrincipal(args, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
