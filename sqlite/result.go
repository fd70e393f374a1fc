package sqlite

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/kaveri"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ kaveri.ResultService = (*ResultService)(nil)

// ResultService implements kaveri.ResultService using SQLite. The results
// table is append-only: rows are inserted during a batch run and never
// updated or deleted here.
type ResultService struct {
	db *DB
}

// NewResultService creates a new ResultService.
func NewResultService(db *DB) *ResultService {
	return &ResultService{db: db}
}

// hashFields computes xxHash of the encoded field list and returns a hex string.
func hashFields(encoded []byte) string {
	h := xxhash.Sum64(encoded)
	b := make([]byte, 8)
	b[0] = byte(h >> 56)
	b[1] = byte(h >> 48)
	b[2] = byte(h >> 40)
	b[3] = byte(h >> 32)
	b[4] = byte(h >> 24)
	b[5] = byte(h >> 16)
	b[6] = byte(h >> 8)
	b[7] = byte(h)
	return hex.EncodeToString(b)
}

// AppendResults durably appends rows in order. IDs, hashes, and timestamps
// are assigned here so callers only supply the row content.
func (s *ResultService) AppendResults(ctx context.Context, results []*kaveri.SearchResult) error {
	for _, r := range results {
		if err := r.Validate(); err != nil {
			return err
		}

		encoded, err := json.Marshal(r.Fields)
		if err != nil {
			return fmt.Errorf("failed to encode fields: %w", err)
		}

		r.ID = uuid.New().String()
		r.FieldsHash = hashFields(encoded)
		r.CreatedAt = time.Now().UTC()

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO results (id, run_id, village_code, village_name, party_name, from_date, to_date, fields, position, fields_hash, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, r.ID, r.RunID, r.VillageCode, r.VillageName, r.PartyName, r.FromDate, r.ToDate,
			string(encoded), r.Position, r.FieldsHash, r.CreatedAt.Format(time.RFC3339))
		if err != nil {
			return err
		}
	}

	return nil
}

// FindResults retrieves results matching the filter, in append order.
func (s *ResultService) FindResults(ctx context.Context, filter kaveri.ResultFilter) ([]*kaveri.SearchResult, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, run_id, village_code, village_name, party_name, from_date, to_date, fields, position, fields_hash, created_at FROM results WHERE 1=1")

	if filter.RunID != nil {
		query.WriteString(" AND run_id = ?")
		args = append(args, *filter.RunID)
	}
	if filter.VillageCode != nil {
		query.WriteString(" AND village_code = ?")
		args = append(args, *filter.VillageCode)
	}

	query.WriteString(" ORDER BY rowid ASC")

	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*kaveri.SearchResult
	for rows.Next() {
		var r kaveri.SearchResult
		var fields, createdAt string

		if err := rows.Scan(&r.ID, &r.RunID, &r.VillageCode, &r.VillageName, &r.PartyName,
			&r.FromDate, &r.ToDate, &fields, &r.Position, &r.FieldsHash, &createdAt); err != nil {
			return nil, err
		}

		if err := json.Unmarshal([]byte(fields), &r.Fields); err != nil {
			return nil, fmt.Errorf("failed to decode fields: %w", err)
		}

		r.CreatedAt, err = parseRFC3339(createdAt, "created_at")
		if err != nil {
			return nil, err
		}

		results = append(results, &r)
	}

	return results, rows.Err()
}
