package store

import "context"

// Info summarizes the ledger's contents.
type Info struct {
	SchemaVersion int
	ActorCount    int
	ObjectCount   int
	EventCount    int
	BatchCount    int
}

// StoreInfo returns schema version and row counts.
func (s *Store) StoreInfo(ctx context.Context) (*Info, error) {
	info := &Info{}

	version, err := currentVersion(s.db)
	if err != nil {
		return nil, err
	}
	info.SchemaVersion = version

	counts := []struct {
		query string
		dst   *int
	}{
		{"SELECT COUNT(*) FROM actors", &info.ActorCount},
		{"SELECT COUNT(*) FROM objects", &info.ObjectCount},
		{"SELECT COUNT(*) FROM events", &info.EventCount},
		{"SELECT COUNT(*) FROM batches", &info.BatchCount},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, err
		}
	}

	return info, nil
}
