package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/clartest/internal/clarinet"
	"github.com/roach88/clartest/internal/clarity"
	"github.com/roach88/clartest/internal/manifest"
	"github.com/roach88/clartest/internal/simnet"
	"github.com/roach88/clartest/internal/store"
	"github.com/roach88/clartest/internal/testutil"
)

// Harness runs scenarios against fresh simulated chains built from a
// manifest.
type Harness struct {
	manifest *manifest.Manifest
	store    *store.Store
	logger   *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithStore records every scenario chain in s.
func WithStore(s *store.Store) Option {
	return func(h *Harness) { h.store = s }
}

// WithLogger sets the logger passed to each chain.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// New creates a harness for the manifest's accounts and contracts.
func New(m *manifest.Manifest, opts ...Option) *Harness {
	h := &Harness{
		manifest: m,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario against the default devnet manifest.
func Run(scenario *Scenario) (*Result, error) {
	m, err := manifest.Default()
	if err != nil {
		return nil, err
	}
	return New(m).Run(context.Background(), scenario)
}

// Run executes a scenario on a fresh chain.
//
// Steps run in order; the first unmet expectation is recorded in the
// result and the remaining steps are skipped. Trace assertions run only if
// every step passed.
//
// Returns an error if the chain cannot be created, an argument or sender
// cannot be resolved, or the context is cancelled. Expectation failures are
// reported in Result.Errors, not as errors.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	accounts := h.manifest.AccountMap()

	opts := []simnet.Option{
		simnet.WithLogger(h.logger),
		simnet.WithIDGenerator(testutil.NewSequentialIDGenerator(slugify(scenario.Name))),
		simnet.WithName(scenario.Name),
	}
	if h.store != nil {
		opts = append(opts, simnet.WithStore(h.store))
	}

	chain, err := simnet.New(ctx, h.manifest.Deployments(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create chain: %w", err)
	}

	r := &runner{
		chain:    chain,
		accounts: accounts,
		conv:     valueConverter{accounts: accounts},
		result:   &Result{Pass: true},
	}

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.index = i
		ok, err := r.step(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		if !ok {
			h.logger.Debug("scenario step failed",
				"scenario", scenario.Name,
				"step", i)
			break
		}
	}
	r.result.FinalHeight = chain.Height()

	if r.result.Pass {
		for _, msg := range EvaluateAssertions(r.result, scenario.Assertions, accounts) {
			r.result.AddError("%s", msg)
		}
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"pass", r.result.Pass,
		"height", r.result.FinalHeight,
		"tip", chain.Tip())
	return r.result, nil
}

type runner struct {
	chain    *simnet.Chain
	accounts clarinet.AccountMap
	conv     valueConverter
	result   *Result
	index    int
}

// fail records a failure of the current step.
func (r *runner) fail(format string, args ...any) (bool, error) {
	r.result.AddError("steps[%d]: %s", r.index, fmt.Sprintf(format, args...))
	return false, nil
}

// step runs one step. It returns false after recording a failure.
func (r *runner) step(ctx context.Context, step Step) (bool, error) {
	if step.ReadOnly != nil {
		return r.readOnly(ctx, *step.ReadOnly, step.Expect)
	}
	return r.mine(ctx, step.Mine, step.Expect)
}

func (r *runner) mine(ctx context.Context, calls []Call, expect *Expect) (bool, error) {
	txs := make([]clarinet.Tx, 0, len(calls))
	for i, call := range calls {
		contract, function, args, sender, err := r.resolve(call)
		if err != nil {
			return false, fmt.Errorf("mine[%d]: %w", i, err)
		}
		txs = append(txs, clarinet.ContractCall(contract, function, args, sender))
	}

	block, err := r.chain.MineBlock(ctx, txs)
	if err != nil {
		return r.chainError(err, expect)
	}
	if expect != nil && expect.Error != "" {
		return r.fail("expected block to be rejected with %q, got height %d", expect.Error, block.Height)
	}

	r.result.Trace = append(r.result.Trace, TraceEvent{Type: EventBlock, Height: block.Height})
	for i, receipt := range block.Receipts {
		tx := txs[i]
		r.result.Trace = append(r.result.Trace, TraceEvent{
			Type:   EventTx,
			Height: block.Height,
			Call:   callName(tx.Contract(), tx.Function()),
			Sender: calls[i].Sender,
			Args:   tx.Args(),
			Result: receipt.Result.Value(),
		})
	}

	if expect == nil {
		return true, nil
	}
	if expect.Height != nil && block.Height != *expect.Height {
		return r.fail("block height: expected %d, got %d", *expect.Height, block.Height)
	}

	wantReceipts := len(expect.Results)
	if expect.Receipts != nil {
		wantReceipts = *expect.Receipts
	}
	if (expect.Receipts != nil || expect.Results != nil) && len(block.Receipts) != wantReceipts {
		return r.fail("receipt count: expected %d, got %d", wantReceipts, len(block.Receipts))
	}

	for i, raw := range expect.Results {
		want, err := r.conv.value(raw)
		if err != nil {
			return false, fmt.Errorf("expect.results[%d]: %w", i, err)
		}
		got := block.Receipts[i].Result.Value()
		if !clarity.Equal(want, got) {
			return r.fail("receipt %d: expected %s, got %s", i, want, got)
		}
	}
	return true, nil
}

func (r *runner) readOnly(ctx context.Context, call Call, expect *Expect) (bool, error) {
	contract, function, args, sender, err := r.resolve(call)
	if err != nil {
		return false, fmt.Errorf("read_only: %w", err)
	}

	res, err := r.chain.CallReadOnlyFn(ctx, contract, function, args, sender)
	if err != nil {
		return r.chainError(err, expect)
	}
	if expect != nil && expect.Error != "" {
		return r.fail("expected call to be rejected with %q, got %s", expect.Error, res.Result)
	}

	got := res.Result.Value()
	r.result.Trace = append(r.result.Trace, TraceEvent{
		Type:   EventReadOnly,
		Height: r.chain.Height(),
		Call:   call.Call,
		Sender: call.Sender,
		Args:   args,
		Result: got,
	})

	if expect == nil {
		return true, nil
	}
	if expect.Result != nil {
		want, err := r.conv.value(expect.Result)
		if err != nil {
			return false, fmt.Errorf("expect.result: %w", err)
		}
		if !clarity.Equal(want, got) {
			return r.fail("%s: expected %s, got %s", call.Call, want, got)
		}
	}
	if expect.Fields != nil {
		return r.fields(call.Call, got, expect.Fields)
	}
	return true, nil
}

// fields checks a subset of the tuple inside v, unwrapping (ok ...) and
// (some ...) first.
func (r *runner) fields(call string, v clarity.Value, want map[string]any) (bool, error) {
	inner := unwrap(v)
	tuple, ok := inner.(clarity.TupleValue)
	if !ok {
		return r.fail("%s: expected a tuple, got %s", call, v)
	}

	for _, name := range slices.Sorted(maps.Keys(want)) {
		expected, err := r.conv.value(want[name])
		if err != nil {
			return false, fmt.Errorf("expect.fields.%s: %w", name, err)
		}
		actual, ok := tuple.Get(name)
		if !ok {
			return r.fail("%s: missing field %q", call, name)
		}
		if !clarity.Equal(expected, actual) {
			return r.fail("%s: field %q: expected %s, got %s", call, name, expected, actual)
		}
	}
	return true, nil
}

// chainError handles a step the chain rejected.
func (r *runner) chainError(err error, expect *Expect) (bool, error) {
	if expect == nil || expect.Error == "" {
		return r.fail("chain rejected step: %v", err)
	}
	if !strings.Contains(err.Error(), expect.Error) {
		return r.fail("expected error containing %q, got %q", expect.Error, err.Error())
	}
	return true, nil
}

func (r *runner) resolve(call Call) (contract, function string, args []clarity.Value, sender string, err error) {
	contract, function, err = call.Split()
	if err != nil {
		return "", "", nil, "", err
	}
	acct, err := r.accounts.Require(call.Sender)
	if err != nil {
		return "", "", nil, "", fmt.Errorf("sender: %w", err)
	}
	args, err = r.conv.values(call.Args)
	if err != nil {
		return "", "", nil, "", fmt.Errorf("args%w", err)
	}
	return contract, function, args, acct.Address, nil
}

func unwrap(v clarity.Value) clarity.Value {
	for {
		switch val := v.(type) {
		case clarity.ResponseValue:
			if !val.IsOk() {
				return v
			}
			v = val.Inner()
		case clarity.OptionalValue:
			inner, ok := val.Unwrap()
			if !ok {
				return v
			}
			v = inner
		default:
			return v
		}
	}
}

// slugify turns a scenario name into a session ID prefix.
func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
