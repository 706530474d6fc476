package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"provl/internal/models"
)

// ChainHead returns the hash of the newest event for an object, or empty if
// the object has no events yet.
func (s *Store) ChainHead(ctx context.Context, objectID string) (string, error) {
	var head string
	err := s.db.QueryRowContext(ctx, `
		SELECT event_hash FROM events
		WHERE object_id = ?
		ORDER BY rowid DESC LIMIT 1
	`, objectID).Scan(&head)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return head, nil
}

// InsertEvent appends one event, re-checking the chain head inside the
// transaction. If the head moved since the caller computed the event, the
// insert is abandoned with ErrChainConflict so the caller can rebuild and
// retry; the check-then-act race in "read head, compute successor" is closed
// here.
func (s *Store) InsertEvent(ctx context.Context, event *models.Event) error {
	if event == nil {
		return errors.New("event is required")
	}

	payload, err := json.Marshal(payloadOrEmpty(event.Payload))
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
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

	var head sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT event_hash FROM events
		WHERE object_id = ?
		ORDER BY rowid DESC LIMIT 1
	`, event.ObjectID).Scan(&head)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	err = nil

	if head.String != event.PrevEventHash {
		err = ErrChainConflict
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO events (
			event_hash, object_id, event_type, payload, actor_id, timestamp,
			prev_event_hash, signature, anchored, batch_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, NULL)
	`,
		event.EventHash,
		event.ObjectID,
		string(event.EventType),
		string(payload),
		event.ActorID,
		formatTime(event.Timestamp),
		nullIfEmpty(event.PrevEventHash),
		event.Signature,
	)
	if err != nil {
		if isUniqueConstraint(err, "events.object_id") {
			err = ErrChainConflict
		}
		return err
	}

	return tx.Commit()
}

// GetChain returns the events for an object oldest-first, in arrival order.
// Returns ErrUnknownObject when the object is not registered.
func (s *Store) GetChain(ctx context.Context, objectID string) ([]models.Event, error) {
	if _, err := s.GetObject(ctx, objectID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT event_hash, object_id, event_type, payload, actor_id, timestamp,
		       prev_event_hash, signature, anchored, batch_id
		FROM events
		WHERE object_id = ?
		ORDER BY rowid ASC
	`, objectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

// GetEvent returns a single event by hash, or nil when absent.
func (s *Store) GetEvent(ctx context.Context, eventHash string) (*models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_hash, object_id, event_type, payload, actor_id, timestamp,
		       prev_event_hash, signature, anchored, batch_id
		FROM events
		WHERE event_hash = ?
	`, eventHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

// ListUnanchoredEvents returns every unanchored event ordered by event_hash
// ascending, the content-derived order that makes batches deterministic.
func (s *Store) ListUnanchoredEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_hash, object_id, event_type, payload, actor_id, timestamp,
		       prev_event_hash, signature, anchored, batch_id
		FROM events
		WHERE anchored = 0
		ORDER BY event_hash ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

// MarkAnchored flips anchored and sets batch_id on the named events, in one
// transaction. Idempotent for events already in the same batch; an event
// anchored under a different batch is ErrInvalidState.
func (s *Store) MarkAnchored(ctx context.Context, eventHashes []string, batchID string) error {
	if len(eventHashes) == 0 {
		return nil
	}
	if strings.TrimSpace(batchID) == "" {
		return errors.New("batch id is required")
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

	for _, hash := range eventHashes {
		var anchored bool
		var existing sql.NullString
		err = tx.QueryRowContext(ctx, `
			SELECT anchored, batch_id FROM events WHERE event_hash = ?
		`, hash).Scan(&anchored, &existing)
		if errors.Is(err, sql.ErrNoRows) {
			err = fmt.Errorf("mark anchored: event %s not found", hash)
			return err
		}
		if err != nil {
			return err
		}

		if anchored {
			if existing.String != batchID {
				err = fmt.Errorf("%w: event %s already anchored in batch %s", ErrInvalidState, hash, existing.String)
				return err
			}
			continue
		}

		if _, err = tx.ExecContext(ctx, `
			UPDATE events SET anchored = 1, batch_id = ? WHERE event_hash = ?
		`, batchID, hash); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func collectEvents(rows *sql.Rows) ([]models.Event, error) {
	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		var eventType, payload, timestamp string
		var prev, batchID sql.NullString
		if err := rows.Scan(
			&event.EventHash,
			&event.ObjectID,
			&eventType,
			&payload,
			&event.ActorID,
			&timestamp,
			&prev,
			&event.Signature,
			&event.Anchored,
			&batchID,
		); err != nil {
			return nil, err
		}

		event.EventType = models.EventType(eventType)
		event.PrevEventHash = prev.String
		event.BatchID = batchID.String

		ts, err := parseTime(timestamp)
		if err != nil {
			return nil, err
		}
		event.Timestamp = ts

		if err := json.Unmarshal([]byte(payload), &event.Payload); err != nil {
			return nil, fmt.Errorf("decode payload for %s: %w", event.EventHash, err)
		}

		events = append(events, event)
	}
	return events, rows.Err()
}

func payloadOrEmpty(payload map[string]any) map[string]any {
	if payload == nil {
		return map[string]any{}
	}
	return payload
}
