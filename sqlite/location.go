package sqlite

import (
	"context"

	"github.com/fwojciec/kaveri"
)

// Compile-time interface verification.
var _ kaveri.LocationService = (*LocationService)(nil)

// LocationService implements kaveri.LocationService using SQLite.
type LocationService struct {
	db *DB
}

// NewLocationService creates a new LocationService.
func NewLocationService(db *DB) *LocationService {
	return &LocationService{db: db}
}

// parentExists reports whether a row with the given code exists in table.
// The table and column names are compile-time constants at every call site.
func (s *LocationService) parentExists(ctx context.Context, table, column string, code int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM "+table+" WHERE "+column+" = ?)", code,
	).Scan(&exists)
	return exists, err
}

// UpsertDistrict creates or replaces a district row.
func (s *LocationService) UpsertDistrict(ctx context.Context, d *kaveri.District) error {
	if err := d.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO districts (district_code, name_en, name_kn)
		VALUES (?, ?, ?)
	`, d.Code, d.Name, d.LocalName)

	return err
}

// UpsertTaluka creates or replaces a taluka row. The parent district must
// already be stored.
func (s *LocationService) UpsertTaluka(ctx context.Context, t *kaveri.Taluka) error {
	if err := t.Validate(); err != nil {
		return err
	}

	ok, err := s.parentExists(ctx, "districts", "district_code", t.DistrictCode)
	if err != nil {
		return err
	}
	if !ok {
		return kaveri.Errorf(kaveri.ECONFLICT, "taluka %d references missing district %d", t.Code, t.DistrictCode)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO talukas (taluk_code, name_en, name_kn, district_code)
		VALUES (?, ?, ?, ?)
	`, t.Code, t.Name, t.LocalName, t.DistrictCode)

	return err
}

// UpsertHobli creates or replaces a hobli row. The parent taluka must
// already be stored.
func (s *LocationService) UpsertHobli(ctx context.Context, h *kaveri.Hobli) error {
	if err := h.Validate(); err != nil {
		return err
	}

	ok, err := s.parentExists(ctx, "talukas", "taluk_code", h.TalukCode)
	if err != nil {
		return err
	}
	if !ok {
		return kaveri.Errorf(kaveri.ECONFLICT, "hobli %d references missing taluka %d", h.Code, h.TalukCode)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO hoblis (hobli_code, name_en, name_kn, taluk_code)
		VALUES (?, ?, ?, ?)
	`, h.Code, h.Name, h.LocalName, h.TalukCode)

	return err
}

// UpsertVillage creates or replaces a village row, keyed by the
// (village_code, hobli_code) pair. The parent hobli must already be stored.
func (s *LocationService) UpsertVillage(ctx context.Context, v *kaveri.Village) error {
	if err := v.Validate(); err != nil {
		return err
	}

	ok, err := s.parentExists(ctx, "hoblis", "hobli_code", v.HobliCode)
	if err != nil {
		return err
	}
	if !ok {
		return kaveri.Errorf(kaveri.ECONFLICT, "village %d references missing hobli %d", v.Code, v.HobliCode)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO villages (village_code, name_en, name_kn, hobli_code, is_urban)
		VALUES (?, ?, ?, ?, ?)
	`, v.Code, v.Name, v.LocalName, v.HobliCode, boolToInt(v.IsUrban))

	return err
}

// Districts returns every district ordered by display name.
func (s *LocationService) Districts(ctx context.Context) ([]*kaveri.District, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT district_code, name_en, name_kn
		FROM districts
		ORDER BY name_en ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var districts []*kaveri.District
	for rows.Next() {
		var d kaveri.District
		if err := rows.Scan(&d.Code, &d.Name, &d.LocalName); err != nil {
			return nil, err
		}
		districts = append(districts, &d)
	}

	return districts, rows.Err()
}

// Talukas returns talukas ordered by display name. A districtCode of zero
// returns every taluka.
func (s *LocationService) Talukas(ctx context.Context, districtCode int) ([]*kaveri.Taluka, error) {
	query := `
		SELECT taluk_code, name_en, name_kn, district_code
		FROM talukas
	`
	var args []any
	if districtCode > 0 {
		query += " WHERE district_code = ?"
		args = append(args, districtCode)
	}
	query += " ORDER BY name_en ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var talukas []*kaveri.Taluka
	for rows.Next() {
		var t kaveri.Taluka
		if err := rows.Scan(&t.Code, &t.Name, &t.LocalName, &t.DistrictCode); err != nil {
			return nil, err
		}
		talukas = append(talukas, &t)
	}

	return talukas, rows.Err()
}

// Hoblis returns hoblis ordered by display name. A talukCode of zero
// returns every hobli.
func (s *LocationService) Hoblis(ctx context.Context, talukCode int) ([]*kaveri.Hobli, error) {
	query := `
		SELECT hobli_code, name_en, name_kn, taluk_code
		FROM hoblis
	`
	var args []any
	if talukCode > 0 {
		query += " WHERE taluk_code = ?"
		args = append(args, talukCode)
	}
	query += " ORDER BY name_en ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hoblis []*kaveri.Hobli
	for rows.Next() {
		var h kaveri.Hobli
		if err := rows.Scan(&h.Code, &h.Name, &h.LocalName, &h.TalukCode); err != nil {
			return nil, err
		}
		hoblis = append(hoblis, &h)
	}

	return hoblis, rows.Err()
}

// Villages returns villages ordered by display name. A hobliCode of zero
// returns every village.
func (s *LocationService) Villages(ctx context.Context, hobliCode int) ([]*kaveri.Village, error) {
	query := `
		SELECT village_code, name_en, name_kn, hobli_code, is_urban
		FROM villages
	`
	var args []any
	if hobliCode > 0 {
		query += " WHERE hobli_code = ?"
		args = append(args, hobliCode)
	}
	query += " ORDER BY name_en ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var villages []*kaveri.Village
	for rows.Next() {
		var v kaveri.Village
		var urban int
		if err := rows.Scan(&v.Code, &v.Name, &v.LocalName, &v.HobliCode, &urban); err != nil {
			return nil, err
		}
		v.IsUrban = urban != 0
		villages = append(villages, &v)
	}

	return villages, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
