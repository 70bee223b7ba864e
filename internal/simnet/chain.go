package simnet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/roach88/clartest/internal/clarinet"
	"github.com/roach88/clartest/internal/clarity"
	"github.com/roach88/clartest/internal/store"
)

// DeployFunction is the function name recorded for genesis deployments.
const DeployFunction = "deploy"

// Deployment names a registered contract and the address deploying it.
type Deployment struct {
	Contract string
	Deployer string
}

type deployed struct {
	impl     Contract
	deployer string
}

// Chain is a simulated ledger. It is safe for concurrent use; calls are
// serialized.
type Chain struct {
	mu        sync.Mutex
	contracts map[string]deployed
	state     *State
	nonces    map[string]uint64
	height    int64
	tip       string

	name      string
	sessionID string
	store     *store.Store
	ids       IDGenerator
	logger    *slog.Logger
}

// Option configures a Chain.
type Option func(*Chain)

// WithStore appends every block to s.
func WithStore(s *store.Store) Option {
	return func(c *Chain) { c.store = s }
}

// WithLogger sets the chain's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Chain) { c.logger = l }
}

// WithIDGenerator sets the session ID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *Chain) { c.ids = g }
}

// WithName labels the session, typically with the test name.
func WithName(name string) Option {
	return func(c *Chain) { c.name = name }
}

var _ clarinet.Chain = (*Chain)(nil)

// New creates a chain and mines the genesis block deploying deployments in
// order. The returned chain is at height 1.
func New(ctx context.Context, deployments []Deployment, opts ...Option) (*Chain, error) {
	c := &Chain{
		contracts: make(map[string]deployed),
		state:     newState(),
		nonces:    make(map[string]uint64),
		ids:       UUIDv7Generator{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.sessionID = c.ids.Generate()

	if c.store != nil {
		if err := c.store.WriteSession(ctx, c.sessionID, c.name); err != nil {
			return nil, err
		}
	}

	if err := c.genesis(ctx, deployments); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}

	c.logger.Debug("chain created",
		"session", c.sessionID,
		"name", c.name,
		"contracts", len(c.contracts),
		"tip", c.tip)
	return c, nil
}

func (c *Chain) genesis(ctx context.Context, deployments []Deployment) error {
	const height = 1

	var (
		txIDs   []string
		records []store.Transaction
	)
	for _, d := range deployments {
		if _, dup := c.contracts[d.Contract]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateDeployment, d.Contract)
		}
		factory, err := lookupFactory(d.Contract)
		if err != nil {
			return err
		}
		if err := validateCall(d.Deployer, nil); err != nil {
			return fmt.Errorf("deploy %s: %w", d.Contract, err)
		}

		nonce := c.nonces[d.Deployer]
		c.nonces[d.Deployer] = nonce + 1
		id, err := clarity.TxID(d.Deployer, nonce, d.Contract, DeployFunction, nil)
		if err != nil {
			return err
		}

		c.contracts[d.Contract] = deployed{impl: factory(), deployer: d.Deployer}
		txIDs = append(txIDs, id)
		records = append(records, store.Transaction{
			ID:        id,
			Sender:    d.Deployer,
			Nonce:     nonce,
			Contract:  d.Contract,
			Function:  DeployFunction,
			Result:    clarity.Ok(clarity.Bool(true)),
			Committed: true,
		})
	}

	hash, err := clarity.BlockHash(height, "", txIDs)
	if err != nil {
		return err
	}
	if err := c.persist(ctx, height, hash, "", records); err != nil {
		return err
	}
	c.height, c.tip = height, hash
	return nil
}

// SessionID returns the chain's session ID.
func (c *Chain) SessionID() string { return c.sessionID }

// Height returns the height of the latest block.
func (c *Chain) Height() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

// Tip returns the hash of the latest block.
func (c *Chain) Tip() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tip
}

// MineBlock executes txs in order in a new block. On error the chain is
// left unchanged and no block is produced.
func (c *Chain) MineBlock(ctx context.Context, txs []clarinet.Tx) (*clarinet.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	height := c.height + 1
	working := c.state.clone()
	nonces := maps.Clone(c.nonces)

	receipts := make([]clarinet.Receipt, 0, len(txs))
	records := make([]store.Transaction, 0, len(txs))
	txIDs := make([]string, 0, len(txs))

	for i, tx := range txs {
		contract, function, sender := tx.Contract(), tx.Function(), tx.Sender()

		d, err := c.lookup(contract)
		if err != nil {
			return nil, fmt.Errorf("tx %d: %w", i, err)
		}
		fn, ok := d.impl.Public(function)
		if !ok {
			return nil, fmt.Errorf("tx %d: %w: %s.%s is not a public function", i, ErrUnknownFunction, contract, function)
		}
		args := tx.Args()
		if err := validateCall(sender, args); err != nil {
			return nil, fmt.Errorf("tx %d: %s.%s: %w", i, contract, function, err)
		}

		nonce := nonces[sender]
		nonces[sender] = nonce + 1
		id, err := clarity.TxID(sender, nonce, contract, function, args)
		if err != nil {
			return nil, fmt.Errorf("tx %d: %w", i, err)
		}

		txState := working.clone()
		result, err := fn(&CallContext{
			Sender:   sender,
			Deployer: d.deployer,
			Height:   height,
			State:    txState.contract(contract),
		}, args)
		if err != nil {
			return nil, fmt.Errorf("tx %d: %s.%s: %w", i, contract, function, err)
		}
		if err := clarity.Validate(result); err != nil {
			return nil, fmt.Errorf("tx %d: %s.%s: %w: %w", i, contract, function, ErrInvalidResult, err)
		}
		if result.IsOk() {
			working = txState
		}

		c.logger.Debug("tx executed",
			"session", c.sessionID,
			"height", height,
			"tx", id,
			"call", contract+"."+function,
			"result", result.String())

		txIDs = append(txIDs, id)
		receipts = append(receipts, clarinet.Receipt{TxID: id, Result: clarinet.NewResult(result)})
		records = append(records, store.Transaction{
			ID:        id,
			Sender:    sender,
			Nonce:     nonce,
			Contract:  contract,
			Function:  function,
			Args:      args,
			Result:    result,
			Committed: result.IsOk(),
		})
	}

	hash, err := clarity.BlockHash(height, c.tip, txIDs)
	if err != nil {
		return nil, err
	}
	if err := c.persist(ctx, height, hash, c.tip, records); err != nil {
		return nil, err
	}

	c.state, c.nonces, c.height, c.tip = working, nonces, height, hash
	c.logger.Info("block mined",
		"session", c.sessionID,
		"height", height,
		"txs", len(receipts))

	return &clarinet.Block{Height: height, Hash: hash, Receipts: receipts}, nil
}

// CallReadOnlyFn evaluates a read-only function against a copy of the
// current state.
func (c *Chain) CallReadOnlyFn(ctx context.Context, contract, function string, args []clarity.Value, sender string) (*clarinet.ReadOnlyResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d, err := c.lookup(contract)
	if err != nil {
		return nil, err
	}
	fn, ok := d.impl.ReadOnly(function)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s is not a read-only function", ErrUnknownFunction, contract, function)
	}
	args = slices.Clone(args)
	if err := validateCall(sender, args); err != nil {
		return nil, fmt.Errorf("%s.%s: %w", contract, function, err)
	}

	result, err := fn(&CallContext{
		Sender:   sender,
		Deployer: d.deployer,
		Height:   c.height,
		State:    c.state.clone().contract(contract),
	}, args)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", contract, function, err)
	}
	if err := clarity.Validate(result); err != nil {
		return nil, fmt.Errorf("%s.%s: %w: %w", contract, function, ErrInvalidResult, err)
	}

	c.logger.Debug("read-only call",
		"session", c.sessionID,
		"call", contract+"."+function,
		"result", result.String())
	return &clarinet.ReadOnlyResult{Result: clarinet.NewResult(result)}, nil
}

func (c *Chain) lookup(contract string) (deployed, error) {
	d, ok := c.contracts[contract]
	if !ok {
		return deployed{}, fmt.Errorf("%w: %q is not deployed", ErrUnknownContract, contract)
	}
	return d, nil
}

func (c *Chain) persist(ctx context.Context, height int64, hash, parent string, txs []store.Transaction) error {
	if c.store == nil {
		return nil
	}
	err := c.store.WriteBlock(ctx, store.Block{
		SessionID:    c.sessionID,
		Height:       height,
		Hash:         hash,
		ParentHash:   parent,
		Transactions: txs,
	})
	if err != nil {
		return fmt.Errorf("persist block %d: %w", height, err)
	}
	return nil
}

// NewSessionFactory returns a factory creating a fresh chain per test,
// each deploying deployments and exposing accounts.
func NewSessionFactory(accounts clarinet.AccountMap, deployments []Deployment, opts ...Option) clarinet.SessionFactory {
	return func(ctx context.Context, testName string) (*clarinet.Session, error) {
		chainOpts := append(slices.Clone(opts), WithName(testName))
		chain, err := New(ctx, deployments, chainOpts...)
		if err != nil {
			return nil, err
		}
		return &clarinet.Session{Chain: chain, Accounts: accounts}, nil
	}
}
