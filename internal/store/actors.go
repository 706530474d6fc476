package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"provl/internal/models"
)

// CreateActor registers an actor. Returns ErrDuplicateActor when the id is
// already taken.
func (s *Store) CreateActor(ctx context.Context, actor *models.Actor) error {
	if actor == nil {
		return errors.New("actor is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO actors (actor_id, name, public_key, created_at)
		VALUES (?, ?, ?, ?)
	`,
		actor.ActorID,
		actor.Name,
		actor.PublicKey,
		formatTime(actor.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraint(err, "actors.actor_id") {
			return ErrDuplicateActor
		}
		return err
	}
	return nil
}

// GetActor returns an actor by id, or ErrUnknownActor.
func (s *Store) GetActor(ctx context.Context, actorID string) (*models.Actor, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT actor_id, name, public_key, created_at
		FROM actors WHERE actor_id = ?
	`, actorID)

	var actor models.Actor
	var createdAt string
	if err := row.Scan(&actor.ActorID, &actor.Name, &actor.PublicKey, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnknownActor
		}
		return nil, err
	}

	ts, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	actor.CreatedAt = ts
	return &actor, nil
}

// GetPublicKey returns the registered public key for an actor, or
// ErrUnknownActor.
func (s *Store) GetPublicKey(ctx context.Context, actorID string) (string, error) {
	actor, err := s.GetActor(ctx, actorID)
	if err != nil {
		return "", err
	}
	return actor.PublicKey, nil
}

// ListActors returns all actors sorted by id.
func (s *Store) ListActors(ctx context.Context) ([]models.Actor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT actor_id, name, public_key, created_at
		FROM actors ORDER BY actor_id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	actors := []models.Actor{}
	for rows.Next() {
		var actor models.Actor
		var createdAt string
		if err := rows.Scan(&actor.ActorID, &actor.Name, &actor.PublicKey, &createdAt); err != nil {
			return nil, err
		}
		ts, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		actor.CreatedAt = ts
		actors = append(actors, actor)
	}
	return actors, rows.Err()
}

func isUniqueConstraint(err error, column string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}
