package clarity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainTx    = "clartest/tx/v1"
	DomainBlock = "clartest/block/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TxID computes the content-addressed ID of a contract call.
// The sender nonce makes repeated identical calls distinct.
func TxID(sender string, nonce uint64, contract, function string, args []Value) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"sender":   sender,
		"nonce":    nonce,
		"contract": contract,
		"function": function,
		"args":     args,
	})
	if err != nil {
		return "", fmt.Errorf("TxID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTx, canonical), nil
}

// BlockHash computes the hash of a block from its height, its parent hash
// and the IDs of the transactions it contains, in order.
func BlockHash(height int64, parent string, txIDs []string) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"height": height,
		"parent": parent,
		"txs":    txIDs,
	})
	if err != nil {
		return "", fmt.Errorf("BlockHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainBlock, canonical), nil
}
