package sqlite

import (
	"context"
	"database/sql"

	"github.com/fwojciec/kaveri"
)

// MetadataService stores small key/value facts about the local index, such
// as when the last crawl finished and what it ingested. This is
// observability state, not part of the location data model.
type MetadataService struct {
	db *DB
}

// NewMetadataService creates a new MetadataService.
func NewMetadataService(db *DB) *MetadataService {
	return &MetadataService{db: db}
}

// Set creates or replaces the value for key.
func (s *MetadataService) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)
	`, key, value)
	return err
}

// Get returns the value for key. Returns ENOTFOUND if the key is not set.
func (s *MetadataService) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", kaveri.Errorf(kaveri.ENOTFOUND, "metadata key %q not set", key)
	}
	if err != nil {
		return "", err
	}
	return value, nil
}
