package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"assetmarket.mini/dam/internal/types"
)

// blockPayload is the canonical hash input: every Block field except the
// hash itself, in fixed declaration order. encoding/json emits struct
// fields in declaration order with a stable text encoding, so the same
// logical content always serializes to the same bytes.
type blockPayload struct {
	Index     int                 `json:"index"`
	Timestamp string              `json:"timestamp"`
	Txs       []types.Transaction `json:"txs"`
	PrevHash  string              `json:"prevHash"`
}

// BlockHash computes the SHA-256 digest of a block's canonical
// serialization, hex encoded. The stored Hash field is ignored.
func BlockHash(b types.Block) string {
	payload := blockPayload{
		Index:     b.Index,
		Timestamp: b.Timestamp,
		Txs:       b.Txs,
		PrevHash:  b.PrevHash,
	}
	// Marshal of a fully JSON-safe struct cannot fail.
	data, _ := json.Marshal(payload)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
