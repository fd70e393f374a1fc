package kaveri

import "context"

// District is the root of the administrative location hierarchy.
type District struct {
	Code      int    `json:"code"`
	Name      string `json:"name"`
	LocalName string `json:"localName"`
}

// Validate returns an error if the district contains invalid fields.
func (d *District) Validate() error {
	if d.Code <= 0 {
		return Errorf(EINVALID, "district code required")
	}
	if d.Name == "" {
		return Errorf(EINVALID, "district name required")
	}
	return nil
}

// Taluka is an administrative subdivision of a district.
type Taluka struct {
	Code         int    `json:"code"`
	Name         string `json:"name"`
	LocalName    string `json:"localName"`
	DistrictCode int    `json:"districtCode"`
}

// Validate returns an error if the taluka contains invalid fields.
func (t *Taluka) Validate() error {
	if t.Code <= 0 {
		return Errorf(EINVALID, "taluka code required")
	}
	if t.Name == "" {
		return Errorf(EINVALID, "taluka name required")
	}
	if t.DistrictCode <= 0 {
		return Errorf(EINVALID, "taluka district code required")
	}
	return nil
}

// Hobli is an administrative subdivision of a taluka.
type Hobli struct {
	Code      int    `json:"code"`
	Name      string `json:"name"`
	LocalName string `json:"localName"`
	TalukCode int    `json:"talukCode"`
}

// Validate returns an error if the hobli contains invalid fields.
func (h *Hobli) Validate() error {
	if h.Code <= 0 {
		return Errorf(EINVALID, "hobli code required")
	}
	if h.Name == "" {
		return Errorf(EINVALID, "hobli name required")
	}
	if h.TalukCode <= 0 {
		return Errorf(EINVALID, "hobli taluk code required")
	}
	return nil
}

// Village is the leaf of the hierarchy and the unit of EC search.
// Village codes repeat across administrative branches, so a village is
// identified by the (Code, HobliCode) pair, never by Code alone.
type Village struct {
	Code      int    `json:"code"`
	Name      string `json:"name"`
	LocalName string `json:"localName"`
	HobliCode int    `json:"hobliCode"`
	IsUrban   bool   `json:"isUrban"`
}

// Validate returns an error if the village contains invalid fields.
func (v *Village) Validate() error {
	if v.Code <= 0 {
		return Errorf(EINVALID, "village code required")
	}
	if v.Name == "" {
		return Errorf(EINVALID, "village name required")
	}
	if v.HobliCode <= 0 {
		return Errorf(EINVALID, "village hobli code required")
	}
	return nil
}

// LocationService represents the local store for the location hierarchy.
//
// Upserts are idempotent: re-running with the same code replaces the row.
// Every child upsert requires its parent to already be stored and returns
// ECONFLICT otherwise; the crawler's write ordering guarantees this never
// fires during a normal crawl.
//
// List methods return rows ordered by display name. A parent code of zero
// means unfiltered.
type LocationService interface {
	UpsertDistrict(ctx context.Context, d *District) error
	UpsertTaluka(ctx context.Context, t *Taluka) error
	UpsertHobli(ctx context.Context, h *Hobli) error
	UpsertVillage(ctx context.Context, v *Village) error

	Districts(ctx context.Context) ([]*District, error)
	Talukas(ctx context.Context, districtCode int) ([]*Taluka, error)
	Hoblis(ctx context.Context, talukCode int) ([]*Hobli, error)
	Villages(ctx context.Context, hobliCode int) ([]*Village, error)
}

// HierarchyClient fetches the location hierarchy from the remote portal.
// Each call is a single network request returning the children of one node.
// Implementations return the rows as-is; retry and pacing policy belong to
// the crawler.
type HierarchyClient interface {
	FetchDistricts(ctx context.Context) ([]*District, error)
	FetchTalukas(ctx context.Context, districtCode int) ([]*Taluka, error)
	FetchHoblis(ctx context.Context, talukCode int) ([]*Hobli, error)
	FetchVillages(ctx context.Context, hobliCode int) ([]*Village, error)
}
