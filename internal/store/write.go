package store

import (
	"context"
	"fmt"

	"github.com/roach88/clartest/internal/clarity"
)

// WriteSession records a session. Sessions get the next seq in insertion
// order. Writing the same ID twice is a no-op.
func (s *Store) WriteSession(ctx context.Context, id, name string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, name, seq)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM sessions))
		ON CONFLICT(id) DO NOTHING
	`, id, name)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteBlock records a block with its transactions and receipts in a single
// database transaction. Rewriting an existing block is a no-op.
//
// The session must already exist (foreign key constraint).
func (s *Store) WriteBlock(ctx context.Context, b Block) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write block: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO blocks (session_id, height, hash, parent_hash)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, b.SessionID, b.Height, b.Hash, b.ParentHash)
	if err != nil {
		return fmt.Errorf("write block %d: %w", b.Height, err)
	}

	for i, t := range b.Transactions {
		argsJSON, err := marshalValues(t.Args)
		if err != nil {
			return fmt.Errorf("write block %d: tx %d: %w", b.Height, i, err)
		}
		resultJSON, err := clarity.MarshalCanonical(t.Result)
		if err != nil {
			return fmt.Errorf("write block %d: tx %d: marshal result: %w", b.Height, i, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO transactions
			(session_id, id, height, idx, sender, nonce, contract, function, args)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, b.SessionID, t.ID, b.Height, i, t.Sender, int64(t.Nonce), t.Contract, t.Function, argsJSON)
		if err != nil {
			return fmt.Errorf("write block %d: tx %d: %w", b.Height, i, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO receipts (session_id, tx_id, result, committed)
			VALUES (?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, b.SessionID, t.ID, string(resultJSON), t.Committed)
		if err != nil {
			return fmt.Errorf("write block %d: receipt %d: %w", b.Height, i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("write block %d: commit: %w", b.Height, err)
	}
	return nil
}

// marshalValues encodes args as a canonical JSON array.
func marshalValues(vals []clarity.Value) (string, error) {
	if vals == nil {
		vals = []clarity.Value{}
	}
	data, err := clarity.MarshalCanonical(vals)
	if err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	return string(data), nil
}
