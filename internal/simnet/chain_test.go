package simnet

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/clartest/internal/clarinet"
	"github.com/roach88/clartest/internal/clarity"
	"github.com/roach88/clartest/internal/store"
	"github.com/roach88/clartest/internal/testutil"
)

const counterName = "test-counter"

var errBoom = errors.New("boom")

func init() {
	RegisterContract(counterName, func() Contract { return counter{} })
}

// counter keeps a single data var.
type counter struct{}

func (counter) Public(name string) (PublicFunc, bool) {
	switch name {
	case "increment":
		return func(cc *CallContext, args []clarity.Value) (clarity.ResponseValue, error) {
			n := current(cc)
			cc.State.VarSet("count", clarity.Uint(n+1))
			return clarity.Ok(clarity.Uint(n + 1)), nil
		}, true
	case "increment-then-fail":
		return func(cc *CallContext, args []clarity.Value) (clarity.ResponseValue, error) {
			cc.State.VarSet("count", clarity.Uint(current(cc)+100))
			return clarity.Err(clarity.Uint(1)), nil
		}, true
	case "boom":
		return func(*CallContext, []clarity.Value) (clarity.ResponseValue, error) {
			return clarity.ResponseValue{}, errBoom
		}, true
	case "ok-nil":
		return func(*CallContext, []clarity.Value) (clarity.ResponseValue, error) {
			return clarity.Ok(nil), nil
		}, true
	case "zero-response":
		return func(*CallContext, []clarity.Value) (clarity.ResponseValue, error) {
			return clarity.ResponseValue{}, nil
		}, true
	case "whoami":
		return func(cc *CallContext, args []clarity.Value) (clarity.ResponseValue, error) {
			return clarity.Ok(clarity.Tuple(map[string]clarity.Value{
				"sender":   clarity.Principal(cc.Sender),
				"deployer": clarity.Principal(cc.Deployer),
				"height":   clarity.Uint(uint64(cc.Height)),
			})), nil
		}, true
	}
	return nil, false
}

func (counter) ReadOnly(name string) (ReadOnlyFunc, bool) {
	switch name {
	case "get-count":
		return func(cc *CallContext, args []clarity.Value) (clarity.Value, error) {
			return clarity.Uint(current(cc)), nil
		}, true
	case "nil-value":
		return func(*CallContext, []clarity.Value) (clarity.Value, error) {
			return nil, nil
		}, true
	case "denormalized":
		return func(*CallContext, []clarity.Value) (clarity.Value, error) {
			return clarity.Some(clarity.UTF8Value("cafe\u0301")), nil
		}, true
	case "sneaky-write":
		return func(cc *CallContext, args []clarity.Value) (clarity.Value, error) {
			cc.State.VarSet("count", clarity.Uint(999))
			return clarity.Bool(true), nil
		}, true
	}
	return nil, false
}

func current(cc *CallContext) uint64 {
	v, ok := cc.State.VarGet("count")
	if !ok {
		return 0
	}
	n, _ := v.(clarity.UintValue).Uint64()
	return n
}

func newTestChain(t *testing.T, opts ...Option) *Chain {
	t.Helper()
	opts = append([]Option{WithIDGenerator(testutil.NewSequentialIDGenerator(""))}, opts...)
	c, err := New(context.Background(), []Deployment{
		{Contract: counterName, Deployer: testutil.DeployerAddress},
	}, opts...)
	require.NoError(t, err)
	return c
}

func call(function string, sender string) clarinet.Tx {
	return clarinet.ContractCall(counterName, function, nil, sender)
}

func readCount(t *testing.T, c *Chain) clarinet.Result {
	t.Helper()
	res, err := c.CallReadOnlyFn(context.Background(), counterName, "get-count", nil, testutil.DeployerAddress)
	require.NoError(t, err)
	return res.Result
}

func TestNewStartsAtGenesis(t *testing.T) {
	c := newTestChain(t)

	assert.Equal(t, int64(1), c.Height())
	assert.NotEmpty(t, c.Tip())
	assert.Equal(t, "test-session-0001", c.SessionID())
}

func TestFirstMineIsHeightTwo(t *testing.T) {
	c := newTestChain(t)
	ctx := context.Background()

	block, err := c.MineBlock(ctx, []clarinet.Tx{call("increment", testutil.DeployerAddress)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), block.Height)
	require.Len(t, block.Receipts, 1)

	v, err := block.Receipts[0].Result.ExpectOk()
	require.NoError(t, err)
	assert.NoError(t, v.ExpectUint(1))

	block, err = c.MineBlock(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), block.Height)
	assert.Empty(t, block.Receipts)
}

func TestReceiptsInOrder(t *testing.T) {
	c := newTestChain(t)

	block, err := c.MineBlock(context.Background(), []clarinet.Tx{
		call("increment", testutil.DeployerAddress),
		call("increment", testutil.Wallet1Address),
		call("increment", testutil.DeployerAddress),
	})
	require.NoError(t, err)
	require.Len(t, block.Receipts, 3)

	for i, r := range block.Receipts {
		v, err := r.Result.ExpectOk()
		require.NoError(t, err)
		assert.NoError(t, v.ExpectUint(uint64(i+1)))
	}

	// Same sender and call, different nonce.
	assert.NotEqual(t, block.Receipts[0].TxID, block.Receipts[2].TxID)
}

func TestErrResponseRollsBack(t *testing.T) {
	c := newTestChain(t)

	block, err := c.MineBlock(context.Background(), []clarinet.Tx{
		call("increment", testutil.DeployerAddress),
		call("increment-then-fail", testutil.DeployerAddress),
	})
	require.NoError(t, err)

	_, err = block.Receipts[1].Result.ExpectErr()
	require.NoError(t, err)
	assert.NoError(t, readCount(t, c).ExpectUint(1))
}

func TestMineBlockAtomicOnError(t *testing.T) {
	c := newTestChain(t)
	ctx := context.Background()
	tip := c.Tip()

	tests := []struct {
		name    string
		tx      clarinet.Tx
		wantErr error
	}{
		{"unknown contract", clarinet.ContractCall("nope", "increment", nil, testutil.DeployerAddress), ErrUnknownContract},
		{"unknown function", call("decrement", testutil.DeployerAddress), ErrUnknownFunction},
		{"read-only via mine", call("get-count", testutil.DeployerAddress), ErrUnknownFunction},
		{"bad sender", call("increment", "not-an-address"), ErrInvalidArgument},
		{"bad argument", clarinet.ContractCall(counterName, "increment", []clarity.Value{clarity.Ascii("café")}, testutil.DeployerAddress), ErrInvalidArgument},
		{"nil argument", clarinet.ContractCall(counterName, "increment", []clarity.Value{nil}, testutil.DeployerAddress), ErrInvalidArgument},
		{"go error", call("boom", testutil.DeployerAddress), errBoom},
		{"ok with nil payload", call("ok-nil", testutil.DeployerAddress), ErrInvalidResult},
		{"zero response", call("zero-response", testutil.DeployerAddress), clarity.ErrNilValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.MineBlock(ctx, []clarinet.Tx{
				call("increment", testutil.DeployerAddress),
				tt.tx,
			})
			require.ErrorIs(t, err, tt.wantErr)

			assert.Equal(t, int64(1), c.Height())
			assert.Equal(t, tip, c.Tip())
			assert.NoError(t, readCount(t, c).ExpectUint(0))
		})
	}
}

func TestCallContext(t *testing.T) {
	c := newTestChain(t)

	block, err := c.MineBlock(context.Background(), []clarinet.Tx{call("whoami", testutil.Wallet1Address)})
	require.NoError(t, err)

	v, err := block.Receipts[0].Result.ExpectOk()
	require.NoError(t, err)
	tuple, err := v.ExpectTuple()
	require.NoError(t, err)

	assert.True(t, clarity.Equal(tuple["sender"], clarity.Principal(testutil.Wallet1Address)))
	assert.True(t, clarity.Equal(tuple["deployer"], clarity.Principal(testutil.DeployerAddress)))
	assert.True(t, clarity.Equal(tuple["height"], clarity.Uint(2)))
}

func TestReadOnlyNeverChangesState(t *testing.T) {
	c := newTestChain(t)
	ctx := context.Background()

	res, err := c.CallReadOnlyFn(ctx, counterName, "sneaky-write", nil, testutil.DeployerAddress)
	require.NoError(t, err)
	assert.NoError(t, res.Result.ExpectBool(true))

	assert.NoError(t, readCount(t, c).ExpectUint(0))
	assert.Equal(t, int64(1), c.Height())
}

func TestReadOnlyErrors(t *testing.T) {
	c := newTestChain(t)
	ctx := context.Background()

	_, err := c.CallReadOnlyFn(ctx, "nope", "get-count", nil, testutil.DeployerAddress)
	assert.ErrorIs(t, err, ErrUnknownContract)

	_, err = c.CallReadOnlyFn(ctx, counterName, "increment", nil, testutil.DeployerAddress)
	assert.ErrorIs(t, err, ErrUnknownFunction)

	_, err = c.CallReadOnlyFn(ctx, counterName, "get-count", nil, "bogus")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestReadOnlyRejectsInvalidResults(t *testing.T) {
	c := newTestChain(t)
	ctx := context.Background()

	tests := []struct {
		function string
		wantErr  error
	}{
		{"nil-value", clarity.ErrNilValue},
		{"denormalized", clarity.ErrNotNormalized},
	}
	for _, tt := range tests {
		t.Run(tt.function, func(t *testing.T) {
			_, err := c.CallReadOnlyFn(ctx, counterName, tt.function, nil, testutil.DeployerAddress)
			require.ErrorIs(t, err, ErrInvalidResult)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// The chain stays usable after a rejected result.
	block, err := c.MineBlock(ctx, []clarinet.Tx{call("increment", testutil.DeployerAddress)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), block.Height)
}

func TestCancelledContext(t *testing.T) {
	c := newTestChain(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.MineBlock(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = c.CallReadOnlyFn(ctx, counterName, "get-count", nil, testutil.DeployerAddress)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRejectsBadDeployments(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, []Deployment{{Contract: "unregistered", Deployer: testutil.DeployerAddress}})
	assert.ErrorIs(t, err, ErrUnknownContract)

	_, err = New(ctx, []Deployment{
		{Contract: counterName, Deployer: testutil.DeployerAddress},
		{Contract: counterName, Deployer: testutil.DeployerAddress},
	})
	assert.ErrorIs(t, err, ErrDuplicateDeployment)

	_, err = New(ctx, []Deployment{{Contract: counterName, Deployer: "x"}})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDeterministicAcrossChains(t *testing.T) {
	run := func() *clarinet.Block {
		c := newTestChain(t)
		block, err := c.MineBlock(context.Background(), []clarinet.Tx{
			call("increment", testutil.DeployerAddress),
			call("increment-then-fail", testutil.Wallet2Address),
		})
		require.NoError(t, err)
		return block
	}

	a, b := run(), run()
	assert.Equal(t, a.Hash, b.Hash)
	assert.Equal(t, a.Receipts[0].TxID, b.Receipts[0].TxID)
	assert.Equal(t, a.Receipts[1].TxID, b.Receipts[1].TxID)
}

func TestWithStorePersistsBlocks(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "chain.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	c := newTestChain(t, WithStore(s), WithName("persist"))

	block, err := c.MineBlock(ctx, []clarinet.Tx{
		call("increment", testutil.DeployerAddress),
		call("increment-then-fail", testutil.DeployerAddress),
	})
	require.NoError(t, err)

	sessions, err := s.ReadSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, c.SessionID(), sessions[0].ID)
	assert.Equal(t, "persist", sessions[0].Name)

	blocks, err := s.ReadBlocks(ctx, c.SessionID())
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	genesis := blocks[0]
	assert.Equal(t, int64(1), genesis.Height)
	assert.Equal(t, "", genesis.ParentHash)
	require.Len(t, genesis.Transactions, 1)
	assert.Equal(t, DeployFunction, genesis.Transactions[0].Function)
	assert.Equal(t, uint64(0), genesis.Transactions[0].Nonce)

	mined := blocks[1]
	assert.Equal(t, block.Hash, mined.Hash)
	assert.Equal(t, genesis.Hash, mined.ParentHash)
	require.Len(t, mined.Transactions, 2)
	assert.Equal(t, block.Receipts[0].TxID, mined.Transactions[0].ID)
	assert.Equal(t, uint64(1), mined.Transactions[0].Nonce)
	assert.True(t, mined.Transactions[0].Committed)
	assert.False(t, mined.Transactions[1].Committed)
	assert.True(t, clarity.Equal(clarity.Err(clarity.Uint(1)), mined.Transactions[1].Result))
}

func TestSessionFactoryFreshChains(t *testing.T) {
	factory := NewSessionFactory(testutil.DevnetAccounts(), []Deployment{
		{Contract: counterName, Deployer: testutil.DeployerAddress},
	}, WithIDGenerator(testutil.NewSequentialIDGenerator("f")))

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		session, err := factory(ctx, "test")
		require.NoError(t, err)

		block, err := session.Chain.MineBlock(ctx, []clarinet.Tx{call("increment", testutil.DeployerAddress)})
		require.NoError(t, err)
		assert.Equal(t, int64(2), block.Height)

		v, err := block.Receipts[0].Result.ExpectOk()
		require.NoError(t, err)
		assert.NoError(t, v.ExpectUint(1))
	}
}

func TestContractsListed(t *testing.T) {
	assert.Contains(t, Contracts(), counterName)
	assert.Panics(t, func() { RegisterContract(counterName, func() Contract { return counter{} }) })
	assert.Panics(t, func() { RegisterContract("nil-factory", nil) })
}
