package models

import "time"

// Batch records one anchoring run: a Merkle root committed over a group of
// events. Batches are immutable once written.
type Batch struct {
	BatchID     string    `json:"batch_id"`
	MerkleRoot  string    `json:"merkle_root"`
	AnchoredAt  time.Time `json:"anchored_at"`
	EventCount  int       `json:"event_count"`
	EventHashes []string  `json:"event_hashes"`
}
