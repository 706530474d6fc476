package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SetOperatorPassword stores the bcrypt hash of the operator credential,
// replacing any previous one.
func (s *Store) SetOperatorPassword(ctx context.Context, passwordHash string) error {
	if passwordHash == "" {
		return errors.New("password hash is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO operator (id, password_hash, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET password_hash = excluded.password_hash, updated_at = excluded.updated_at
	`, passwordHash, formatTime(time.Now()))
	return err
}

// GetOperatorPasswordHash returns the stored operator hash, or empty when no
// credential has been set.
func (s *Store) GetOperatorPasswordHash(ctx context.Context) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM operator WHERE id = 1`).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}
