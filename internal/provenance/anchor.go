package provenance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"provl/internal/anchors"
	"provl/internal/merkle"
	"provl/internal/models"
	"provl/internal/store"
)

// AnchorResult reports the outcome of one anchoring run. Anchored is false
// when no unanchored events existed; that is a normal outcome, not an error.
type AnchorResult struct {
	Anchored bool          `json:"anchored"`
	Batch    *models.Batch `json:"batch,omitempty"`
}

// EventProof is an inclusion proof together with the batch it belongs to.
type EventProof struct {
	EventHash  string             `json:"event_hash"`
	BatchID    string             `json:"batch_id"`
	MerkleRoot string             `json:"merkle_root"`
	Proof      []merkle.ProofStep `json:"proof"`
}

// Anchor batches every currently unanchored event under a fresh Merkle root.
// Runs are mutually exclusive; appends arriving during a run simply wait for
// the next one. The batch is recorded in the database and appended to the
// external anchors ledger.
func (s *Service) Anchor(ctx context.Context) (*AnchorResult, error) {
	s.anchorMu.Lock()
	defer s.anchorMu.Unlock()

	events, err := s.store.ListUnanchoredEvents(ctx)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		s.log.Info("anchor run found nothing to anchor")
		return &AnchorResult{Anchored: false}, nil
	}

	leaves := make([]string, len(events))
	for i, ev := range events {
		leaves[i] = ev.EventHash
	}

	tree, err := merkle.New(leaves)
	if err != nil {
		return nil, err
	}

	batch := &models.Batch{
		BatchID:     uuid.NewString(),
		MerkleRoot:  tree.Root(),
		AnchoredAt:  time.Now().UTC(),
		EventCount:  len(leaves),
		EventHashes: leaves,
	}

	proofs := make([]store.Proof, len(leaves))
	for i := range leaves {
		path, err := tree.Prove(i)
		if err != nil {
			return nil, err
		}
		proofs[i] = store.Proof{EventHash: leaves[i], Path: path}
	}

	if err := s.store.CreateBatch(ctx, batch, proofs); err != nil {
		return nil, err
	}

	if err := s.ledger.Append(anchors.Entry{
		BatchID:     batch.BatchID,
		MerkleRoot:  batch.MerkleRoot,
		AnchoredAt:  batch.AnchoredAt,
		EventCount:  batch.EventCount,
		EventHashes: batch.EventHashes,
	}); err != nil {
		// The batch is committed; a ledger write failure must be loud but
		// cannot unanchor the events.
		s.log.Error("anchor ledger append failed", "batch_id", batch.BatchID, "error", err)
		return nil, fmt.Errorf("batch %s committed but ledger append failed: %w", batch.BatchID, err)
	}

	s.log.Info("anchored batch",
		"batch_id", batch.BatchID,
		"merkle_root", batch.MerkleRoot,
		"event_count", batch.EventCount)

	return &AnchorResult{Anchored: true, Batch: batch}, nil
}

// ListBatches returns all anchor batches newest first.
func (s *Service) ListBatches(ctx context.Context) ([]models.Batch, error) {
	return s.store.ListBatches(ctx)
}

// GetBatch returns one anchor batch, or nil when unknown.
func (s *Service) GetBatch(ctx context.Context, batchID string) (*models.Batch, error) {
	return s.store.GetBatch(ctx, batchID)
}

// GetProof returns the stored inclusion proof for an anchored event, or nil
// when the event has not been anchored.
func (s *Service) GetProof(ctx context.Context, eventHash string) (*EventProof, error) {
	proof, err := s.store.GetProof(ctx, eventHash)
	if err != nil {
		return nil, err
	}
	if proof == nil {
		return nil, nil
	}
	return &EventProof{
		EventHash:  proof.EventHash,
		BatchID:    proof.BatchID,
		MerkleRoot: proof.MerkleRoot,
		Proof:      proof.Path,
	}, nil
}
