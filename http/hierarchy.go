package http

import (
	"context"
	"strconv"

	"github.com/fwojciec/kaveri"
)

// Ensure Client implements kaveri.HierarchyClient at compile time.
var _ kaveri.HierarchyClient = (*Client)(nil)

// The portal's dropdown endpoints return rows with these field names. Codes
// are sent as strings in request payloads but come back as numbers.
type districtRow struct {
	DistrictCode int    `json:"districtCode"`
	NameEN       string `json:"districtNamee"`
	NameKN       string `json:"districtNamek"`
}

type talukaRow struct {
	TalukCode int    `json:"talukCode"`
	NameEN    string `json:"talukNamee"`
	NameKN    string `json:"talukNamek"`
}

type hobliRow struct {
	HobliCode int    `json:"hoblicode"`
	NameEN    string `json:"hoblinamee"`
	NameKN    string `json:"hoblinamek"`
}

type villageRow struct {
	VillageCode int    `json:"villagecode"`
	NameEN      string `json:"villagenamee"`
	NameKN      string `json:"villagenamek"`
	IsUrban     bool   `json:"isurban"`
}

// FetchDistricts returns every district the portal knows about.
func (c *Client) FetchDistricts(ctx context.Context) ([]*kaveri.District, error) {
	var rows []districtRow
	if err := c.postJSON(ctx, "/api/GetDistrictAsync", struct{}{}, &rows); err != nil {
		return nil, err
	}

	districts := make([]*kaveri.District, 0, len(rows))
	for _, r := range rows {
		// The portal pads the list with a code-zero placeholder row.
		if r.DistrictCode == 0 {
			continue
		}
		districts = append(districts, &kaveri.District{
			Code:      r.DistrictCode,
			Name:      r.NameEN,
			LocalName: r.NameKN,
		})
	}
	return districts, nil
}

// FetchTalukas returns the talukas of one district.
func (c *Client) FetchTalukas(ctx context.Context, districtCode int) ([]*kaveri.Taluka, error) {
	payload := map[string]string{"districtCode": strconv.Itoa(districtCode)}
	var rows []talukaRow
	if err := c.postJSON(ctx, "/api/GetTalukaAsync", payload, &rows); err != nil {
		return nil, err
	}

	talukas := make([]*kaveri.Taluka, 0, len(rows))
	for _, r := range rows {
		talukas = append(talukas, &kaveri.Taluka{
			Code:         r.TalukCode,
			Name:         r.NameEN,
			LocalName:    r.NameKN,
			DistrictCode: districtCode,
		})
	}
	return talukas, nil
}

// FetchHoblis returns the hoblis of one taluka.
func (c *Client) FetchHoblis(ctx context.Context, talukCode int) ([]*kaveri.Hobli, error) {
	payload := map[string]string{"talukaCode": strconv.Itoa(talukCode)}
	var rows []hobliRow
	if err := c.postJSON(ctx, "/api/GetHobliAsync", payload, &rows); err != nil {
		return nil, err
	}

	hoblis := make([]*kaveri.Hobli, 0, len(rows))
	for _, r := range rows {
		hoblis = append(hoblis, &kaveri.Hobli{
			Code:      r.HobliCode,
			Name:      r.NameEN,
			LocalName: r.NameKN,
			TalukCode: talukCode,
		})
	}
	return hoblis, nil
}

// FetchVillages returns the villages of one hobli.
func (c *Client) FetchVillages(ctx context.Context, hobliCode int) ([]*kaveri.Village, error) {
	payload := map[string]string{"hobliCode": strconv.Itoa(hobliCode)}
	var rows []villageRow
	if err := c.postJSON(ctx, "/api/GetVillageAsync", payload, &rows); err != nil {
		return nil, err
	}

	villages := make([]*kaveri.Village, 0, len(rows))
	for _, r := range rows {
		villages = append(villages, &kaveri.Village{
			Code:      r.VillageCode,
			Name:      r.NameEN,
			LocalName: r.NameKN,
			HobliCode: hobliCode,
			IsUrban:   r.IsUrban,
		})
	}
	return villages, nil
}
