package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/clartest/internal/clarity"
)

// ReadSessions returns all sessions ordered by seq.
//
// Returns an empty slice (not nil) if the log is empty.
func (s *Store) ReadSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, seq
		FROM sessions
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.Seq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadBlocks returns every block of a session ordered by height, with
// transactions in execution order.
func (s *Store) ReadBlocks(ctx context.Context, sessionID string) ([]Block, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT height, hash, parent_hash
		FROM blocks
		WHERE session_id = ?
		ORDER BY height ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}

	blocks := []Block{}
	for rows.Next() {
		b := Block{SessionID: sessionID}
		if err := rows.Scan(&b.Height, &b.Hash, &b.ParentHash); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan block: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate blocks: %w", err)
	}
	// Close before issuing nested queries; the pool has one connection.
	rows.Close()

	for i := range blocks {
		txs, err := s.readTransactions(ctx, sessionID, blocks[i].Height)
		if err != nil {
			return nil, err
		}
		blocks[i].Transactions = txs
	}
	return blocks, nil
}

func (s *Store) readTransactions(ctx context.Context, sessionID string, height int64) ([]Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.sender, t.nonce, t.contract, t.function, t.args, r.result, r.committed
		FROM transactions t
		JOIN receipts r ON r.session_id = t.session_id AND r.tx_id = t.id
		WHERE t.session_id = ? AND t.height = ?
		ORDER BY t.idx ASC
	`, sessionID, height)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txs := []Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

func scanTransaction(rows *sql.Rows) (Transaction, error) {
	var (
		t          Transaction
		nonce      int64
		argsJSON   string
		resultJSON string
	)
	if err := rows.Scan(&t.ID, &t.Sender, &nonce, &t.Contract, &t.Function, &argsJSON, &resultJSON, &t.Committed); err != nil {
		return Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Nonce = uint64(nonce)

	args, err := clarity.UnmarshalValues([]byte(argsJSON))
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	t.Args = args

	result, err := clarity.UnmarshalValue([]byte(resultJSON))
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	t.Result = result
	return t, nil
}
