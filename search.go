package kaveri

import (
	"context"
	"time"
)

// LocationFilter selects the slice of the hierarchy a batch run covers.
// DistrictCode is required: unconstrained expansion across every district
// is disallowed as a safety bound. At the lower levels a set code narrows
// the expansion within each resolved parent, an All flag (or a zero code)
// expands every child.
type LocationFilter struct {
	DistrictCode int `json:"districtCode"`

	TalukCode int  `json:"talukCode"`
	AllTaluks bool `json:"allTaluks"`

	HobliCode int  `json:"hobliCode"`
	AllHoblis bool `json:"allHoblis"`

	VillageCode int  `json:"villageCode"`
	AllVillages bool `json:"allVillages"`
}

// Validate returns an error if the filter contains invalid fields.
func (f *LocationFilter) Validate() error {
	if f.DistrictCode <= 0 {
		return Errorf(EINVALID, "district code required")
	}
	return nil
}

// SearchTarget is a fully-specified leaf of the hierarchy, the unit the
// search API operates on. Targets are ephemeral: produced by expansion,
// consumed by a run, never persisted.
type SearchTarget struct {
	DistrictCode int `json:"districtCode"`
	TalukCode    int `json:"talukCode"`
	HobliCode    int `json:"hobliCode"`
	VillageCode  int `json:"villageCode"`

	DistrictName string `json:"districtName"`
	TalukName    string `json:"talukName"`
	HobliName    string `json:"hobliName"`
	VillageName  string `json:"villageName"`
}

// SearchParams holds the fixed parameters of a batch run.
type SearchParams struct {
	PartyName string `json:"partyName"`
	FromDate  string `json:"fromDate"` // YYYY-MM-DD
	ToDate    string `json:"toDate"`   // YYYY-MM-DD
}

// Validate returns an error if the params contain invalid fields.
func (p *SearchParams) Validate() error {
	if p.PartyName == "" {
		return Errorf(EINVALID, "party name required")
	}
	if p.FromDate == "" || p.ToDate == "" {
		return Errorf(EINVALID, "date range required")
	}
	return nil
}

// SearchStatus classifies the remote search response.
type SearchStatus int

const (
	// SearchOK means the call succeeded, possibly with zero rows.
	SearchOK SearchStatus = iota
	// SearchUnauthorized means the session was rejected; the run must halt.
	SearchUnauthorized
	// SearchInvalidCaptcha means the captcha solution was rejected; a fresh
	// solve may succeed.
	SearchInvalidCaptcha
	// SearchError covers every other remote failure.
	SearchError
)

// Field is a single key/value pair of a result row. Rows are kept as
// ordered field lists because the remote form defines the column order and
// a map would lose it.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SearchRequest is one authenticated search call against the portal.
type SearchRequest struct {
	Session     *Session
	VillageCode int
	Params      SearchParams
	CaptchaID   string
	CaptchaText string
}

// SearchResponse is the classified outcome of a search call.
type SearchResponse struct {
	Status  SearchStatus
	Message string
	Rows    [][]Field
}

// SearchClient issues authenticated EC search calls against the portal.
type SearchClient interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchResult is one persisted result row, tagged with the target and
// batch metadata it came from. Rows are append-only.
type SearchResult struct {
	ID          string    `json:"id"`
	RunID       string    `json:"runId"`
	VillageCode int       `json:"villageCode"`
	VillageName string    `json:"villageName"`
	PartyName   string    `json:"partyName"`
	FromDate    string    `json:"fromDate"`
	ToDate      string    `json:"toDate"`
	Fields      []Field   `json:"fields"`
	Position    int       `json:"position"`
	FieldsHash  string    `json:"fieldsHash"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate returns an error if the result contains invalid fields.
func (r *SearchResult) Validate() error {
	if r.RunID == "" {
		return Errorf(EINVALID, "result run ID required")
	}
	if r.VillageCode <= 0 {
		return Errorf(EINVALID, "result village code required")
	}
	return nil
}

// ResultFilter represents a filter for FindResults.
type ResultFilter struct {
	RunID       *string `json:"runId"`
	VillageCode *int    `json:"villageCode"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ResultService represents the append-only store for search results.
// Results are appended during a run and never mutated or deleted by the
// core; export and cleanup are external concerns.
type ResultService interface {
	// AppendResults durably appends rows in order.
	AppendResults(ctx context.Context, results []*SearchResult) error

	// FindResults retrieves results matching the filter, in append order.
	FindResults(ctx context.Context, filter ResultFilter) ([]*SearchResult, error)
}
