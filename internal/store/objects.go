package store

import (
	"context"
	"database/sql"
	"errors"

	"provl/internal/models"
)

// CreateObject registers a new object at ingestion.
func (s *Store) CreateObject(ctx context.Context, obj *models.Object) error {
	if obj == nil {
		return errors.New("object is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO objects (object_id, cid, created_at)
		VALUES (?, ?, ?)
	`,
		obj.ObjectID,
		obj.CID,
		formatTime(obj.CreatedAt),
	)
	return err
}

// GetObject returns an object by id, or ErrUnknownObject.
func (s *Store) GetObject(ctx context.Context, objectID string) (*models.Object, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT object_id, cid, created_at
		FROM objects WHERE object_id = ?
	`, objectID)
	return scanObject(row)
}

// FindObjectsByCID returns every object registered with a CID, oldest first.
// More than one result means the CID is ambiguous; the caller decides how to
// report that.
func (s *Store) FindObjectsByCID(ctx context.Context, cid string) ([]models.Object, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT object_id, cid, created_at
		FROM objects WHERE cid = ? ORDER BY created_at ASC, object_id ASC
	`, cid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	objects := []models.Object{}
	for rows.Next() {
		var obj models.Object
		var createdAt string
		if err := rows.Scan(&obj.ObjectID, &obj.CID, &createdAt); err != nil {
			return nil, err
		}
		ts, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		obj.CreatedAt = ts
		objects = append(objects, obj)
	}
	return objects, rows.Err()
}

func scanObject(scanner interface {
	Scan(dest ...any) error
}) (*models.Object, error) {
	var obj models.Object
	var createdAt string
	if err := scanner.Scan(&obj.ObjectID, &obj.CID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnknownObject
		}
		return nil, err
	}
	ts, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	obj.CreatedAt = ts
	return &obj, nil
}
