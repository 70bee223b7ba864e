package clarinet

import (
	"context"

	"github.com/roach88/clartest/internal/clarity"
)

// Chain is a handle to a simulated ledger.
//
// Implementations serialize calls; a test drives one chain from a single
// goroutine.
type Chain interface {
	// MineBlock executes txs in order in a new block and returns it.
	MineBlock(ctx context.Context, txs []Tx) (*Block, error)

	// CallReadOnlyFn evaluates a read-only function against current
	// state. It never produces a block or changes state.
	CallReadOnlyFn(ctx context.Context, contract, function string, args []clarity.Value, sender string) (*ReadOnlyResult, error)
}

// Block is the outcome of mining a set of transactions.
type Block struct {
	Height   int64     `json:"height"`
	Hash     string    `json:"hash"`
	Receipts []Receipt `json:"receipts"`
}

// Receipt is the outcome of one transaction in a block.
type Receipt struct {
	TxID   string `json:"tx_id"`
	Result Result `json:"result"`
}

// ReadOnlyResult is the outcome of a read-only call.
type ReadOnlyResult struct {
	Result Result `json:"result"`
}
