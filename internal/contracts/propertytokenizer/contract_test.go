package propertytokenizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/clartest/internal/clarinet"
	"github.com/roach88/clartest/internal/clarity"
	"github.com/roach88/clartest/internal/simnet"
	"github.com/roach88/clartest/internal/testutil"
)

func newChain(t *testing.T) *simnet.Chain {
	t.Helper()
	c, err := simnet.New(context.Background(),
		[]simnet.Deployment{{Contract: Name, Deployer: testutil.DeployerAddress}},
		simnet.WithIDGenerator(testutil.NewSequentialIDGenerator("")))
	require.NoError(t, err)
	return c
}

func create(sender, id string, value, tokens uint64) clarinet.Tx {
	return clarinet.ContractCall(Name, FnCreateTokenizedProperty, []clarity.Value{
		clarity.Ascii(id),
		clarity.Ascii("123 Main St, New York, NY"),
		clarity.Uint(value),
		clarity.Uint(tokens),
	}, sender)
}

func mineOne(t *testing.T, c *simnet.Chain, tx clarinet.Tx) clarinet.Result {
	t.Helper()
	block, err := c.MineBlock(context.Background(), []clarinet.Tx{tx})
	require.NoError(t, err)
	require.Len(t, block.Receipts, 1)
	return block.Receipts[0].Result
}

func info(t *testing.T, c *simnet.Chain, id string) clarinet.Result {
	t.Helper()
	res, err := c.CallReadOnlyFn(context.Background(), Name, FnGetPropertyInfo,
		[]clarity.Value{clarity.Ascii(id)}, testutil.DeployerAddress)
	require.NoError(t, err)
	return res.Result
}

func TestCreateAndRead(t *testing.T) {
	c := newChain(t)

	id, err := mineOne(t, c, create(testutil.DeployerAddress, "PROP_NYC_001", 100000000, 100)).ExpectOk()
	require.NoError(t, err)
	require.NoError(t, id.ExpectAscii("PROP_NYC_001"))

	some, err := info(t, c, "PROP_NYC_001").ExpectSome()
	require.NoError(t, err)
	tuple, err := some.ExpectTuple()
	require.NoError(t, err)

	expected := clarity.Tuple(map[string]clarity.Value{
		FieldPropertyAddress: clarity.Ascii("123 Main St, New York, NY"),
		FieldTotalValue:      clarity.Uint(100000000),
		FieldTotalTokens:     clarity.Uint(100),
		FieldPricePerToken:   clarity.Uint(1000000),
		FieldOwner:           clarity.Principal(testutil.DeployerAddress),
	})
	assert.True(t, clarity.Equal(expected, tuple), "got %s", tuple)
}

func TestPriceTruncates(t *testing.T) {
	c := newChain(t)

	_, err := mineOne(t, c, create(testutil.DeployerAddress, "P1", 1000, 3)).ExpectOk()
	require.NoError(t, err)

	some, err := info(t, c, "P1").ExpectSome()
	require.NoError(t, err)
	tuple, err := some.ExpectTuple()
	require.NoError(t, err)
	assert.True(t, clarity.Equal(clarity.Uint(333), tuple[FieldPricePerToken]))
}

func TestCreateErrors(t *testing.T) {
	tests := []struct {
		name string
		tx   clarinet.Tx
		code uint64
	}{
		{"not owner", create(testutil.Wallet1Address, "P1", 100, 1), ErrOwnerOnly},
		{"zero value", create(testutil.DeployerAddress, "P1", 0, 1), ErrInvalidAmount},
		{"zero tokens", create(testutil.DeployerAddress, "P1", 100, 0), ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newChain(t)

			_, err := mineOne(t, c, tt.tx).ExpectErr(clarity.Uint(tt.code))
			require.NoError(t, err)

			// Nothing stored.
			assert.NoError(t, info(t, c, "P1").ExpectNone())
		})
	}
}

func TestDuplicateID(t *testing.T) {
	c := newChain(t)

	_, err := mineOne(t, c, create(testutil.DeployerAddress, "P1", 100, 1)).ExpectOk()
	require.NoError(t, err)

	code, err := mineOne(t, c, create(testutil.DeployerAddress, "P1", 500, 5)).ExpectErr()
	require.NoError(t, err)
	assert.NoError(t, code.ExpectUint(ErrPropertyExists))

	// The original record survives.
	some, err := info(t, c, "P1").ExpectSome()
	require.NoError(t, err)
	tuple, err := some.ExpectTuple()
	require.NoError(t, err)
	assert.True(t, clarity.Equal(clarity.Uint(100), tuple[FieldTotalValue]))
}

func TestPropertyCount(t *testing.T) {
	c := newChain(t)
	ctx := context.Background()

	count := func() clarinet.Result {
		res, err := c.CallReadOnlyFn(ctx, Name, FnGetPropertyCount, nil, testutil.DeployerAddress)
		require.NoError(t, err)
		return res.Result
	}
	require.NoError(t, count().ExpectUint(0))

	_, err := c.MineBlock(ctx, []clarinet.Tx{
		create(testutil.DeployerAddress, "P1", 100, 1),
		create(testutil.DeployerAddress, "P2", 100, 1),
		create(testutil.DeployerAddress, "P1", 100, 1),
	})
	require.NoError(t, err)
	assert.NoError(t, count().ExpectUint(2))
}

func TestInvalidArguments(t *testing.T) {
	c := newChain(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args []clarity.Value
	}{
		{"arity", []clarity.Value{clarity.Ascii("P1")}},
		{"id type", []clarity.Value{clarity.Uint(1), clarity.Ascii("a"), clarity.Uint(1), clarity.Uint(1)}},
		{"value type", []clarity.Value{clarity.Ascii("P1"), clarity.Ascii("a"), clarity.Ascii("1"), clarity.Uint(1)}},
		{"id too long", []clarity.Value{clarity.Ascii("0123456789012345678901234567890123456"), clarity.Ascii("a"), clarity.Uint(1), clarity.Uint(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.MineBlock(ctx, []clarinet.Tx{
				clarinet.ContractCall(Name, FnCreateTokenizedProperty, tt.args, testutil.DeployerAddress),
			})
			assert.ErrorIs(t, err, simnet.ErrInvalidArgument)
		})
	}

	assert.Equal(t, int64(1), c.Height())
}
