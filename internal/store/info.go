package store

import (
	"context"
	"fmt"
)

// Info summarizes the database for the info endpoint.
type Info struct {
	SchemaVersion int            `json:"schema_version"`
	Counts        map[string]int `json:"counts"`
}

var infoTables = []string{"users", "roles", "posts", "profiles", "packages", "artifacts"}

// StoreInfo returns the schema version and row counts per table.
func (s *Store) StoreInfo(ctx context.Context) (Info, error) {
	version, err := currentVersion(s.db)
	if err != nil {
		return Info{}, err
	}
	info := Info{SchemaVersion: version, Counts: make(map[string]int, len(infoTables))}
	for _, table := range infoTables {
		var count int
		if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			return Info{}, fmt.Errorf("count %s: %w", table, err)
		}
		info.Counts[table] = count
	}
	return info, nil
}
