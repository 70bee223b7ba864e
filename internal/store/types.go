package store

import "github.com/roach88/clartest/internal/clarity"

// Session is one simulated chain.
type Session struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Seq  int64  `json:"seq"`
}

// Block is a mined block and its transactions in execution order.
type Block struct {
	SessionID    string        `json:"session_id"`
	Height       int64         `json:"height"`
	Hash         string        `json:"hash"`
	ParentHash   string        `json:"parent_hash"`
	Transactions []Transaction `json:"transactions"`
}

// Transaction is a contract call and its receipt.
type Transaction struct {
	ID        string          `json:"id"`
	Sender    string          `json:"sender"`
	Nonce     uint64          `json:"nonce"`
	Contract  string          `json:"contract"`
	Function  string          `json:"function"`
	Args      []clarity.Value `json:"-"`
	Result    clarity.Value   `json:"-"`
	Committed bool            `json:"committed"`
}
