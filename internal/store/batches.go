package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"provl/internal/merkle"
	"provl/internal/models"
)

// Proof is a stored inclusion proof for one anchored event.
type Proof struct {
	EventHash  string             `json:"event_hash"`
	BatchID    string             `json:"batch_id"`
	MerkleRoot string             `json:"merkle_root"`
	Path       []merkle.ProofStep `json:"proof"`
	AnchoredAt string             `json:"anchored_at"`
}

// CreateBatch persists a batch together with the inclusion proofs for its
// events and marks those events anchored, all in one transaction. A crash
// can therefore never leave an event pointing at a batch that was not
// recorded.
func (s *Store) CreateBatch(ctx context.Context, batch *models.Batch, proofs []Proof) error {
	if batch == nil {
		return errors.New("batch is required")
	}
	if len(proofs) != len(batch.EventHashes) {
		return fmt.Errorf("batch %s: %d proofs for %d events", batch.BatchID, len(proofs), len(batch.EventHashes))
	}

	hashes, err := json.Marshal(batch.EventHashes)
	if err != nil {
		return fmt.Errorf("encode event hashes: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batches (batch_id, merkle_root, anchored_at, event_count, event_hashes)
		VALUES (?, ?, ?, ?, ?)
	`,
		batch.BatchID,
		batch.MerkleRoot,
		formatTime(batch.AnchoredAt),
		batch.EventCount,
		string(hashes),
	)
	if err != nil {
		return err
	}

	for _, proof := range proofs {
		var path []byte
		path, err = json.Marshal(proof.Path)
		if err != nil {
			return fmt.Errorf("encode proof for %s: %w", proof.EventHash, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO anchor_proofs (event_hash, batch_id, merkle_root, proof, anchored_at)
			VALUES (?, ?, ?, ?, ?)
		`,
			proof.EventHash,
			batch.BatchID,
			batch.MerkleRoot,
			string(path),
			formatTime(batch.AnchoredAt),
		)
		if err != nil {
			return err
		}

		var res sql.Result
		res, err = tx.ExecContext(ctx, `
			UPDATE events SET anchored = 1, batch_id = ?
			WHERE event_hash = ? AND anchored = 0
		`, batch.BatchID, proof.EventHash)
		if err != nil {
			return err
		}
		var n int64
		n, err = res.RowsAffected()
		if err != nil {
			return err
		}
		if n != 1 {
			err = fmt.Errorf("%w: event %s missing or already anchored", ErrInvalidState, proof.EventHash)
			return err
		}
	}

	return tx.Commit()
}

// GetBatch returns a batch by id, or nil when absent.
func (s *Store) GetBatch(ctx context.Context, batchID string) (*models.Batch, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT batch_id, merkle_root, anchored_at, event_count, event_hashes
		FROM batches WHERE batch_id = ?
	`, batchID)

	batch, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return batch, err
}

// ListBatches returns all batches newest first.
func (s *Store) ListBatches(ctx context.Context) ([]models.Batch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT batch_id, merkle_root, anchored_at, event_count, event_hashes
		FROM batches ORDER BY anchored_at DESC, batch_id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	batches := []models.Batch{}
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, *batch)
	}
	return batches, rows.Err()
}

// GetProof returns the stored inclusion proof for an event, or nil when the
// event has not been anchored.
func (s *Store) GetProof(ctx context.Context, eventHash string) (*Proof, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT event_hash, batch_id, merkle_root, proof, anchored_at
		FROM anchor_proofs WHERE event_hash = ?
	`, eventHash)

	var proof Proof
	var path string
	err := row.Scan(&proof.EventHash, &proof.BatchID, &proof.MerkleRoot, &path, &proof.AnchoredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(path), &proof.Path); err != nil {
		return nil, fmt.Errorf("decode proof for %s: %w", eventHash, err)
	}
	return &proof, nil
}

func scanBatch(scanner interface {
	Scan(dest ...any) error
}) (*models.Batch, error) {
	var batch models.Batch
	var anchoredAt, hashes string
	if err := scanner.Scan(&batch.BatchID, &batch.MerkleRoot, &anchoredAt, &batch.EventCount, &hashes); err != nil {
		return nil, err
	}

	ts, err := parseTime(anchoredAt)
	if err != nil {
		return nil, err
	}
	batch.AnchoredAt = ts

	if err := json.Unmarshal([]byte(hashes), &batch.EventHashes); err != nil {
		return nil, fmt.Errorf("decode event hashes for %s: %w", batch.BatchID, err)
	}
	return &batch, nil
}
