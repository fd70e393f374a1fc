// Package search provides the batch EC search workflow: expanding a
// location filter into leaf targets, managing the externally acquired
// session, and orchestrating the captcha-gated run.
package search

import (
	"context"

	"github.com/fwojciec/kaveri"
)

// Expander turns a location filter into the deduplicated list of leaf
// targets a batch run will cover. It only reads the location store; given
// an unchanged store, the same filter always yields the same ordered list.
type Expander struct {
	Locations kaveri.LocationService
}

// Expansion is the outcome of expanding one filter.
type Expansion struct {
	Targets []kaveri.SearchTarget

	// Duplicates is how many candidates were removed because their 4-code
	// tuple had already been produced. The store's tree shape should make
	// this zero; the dedup is defensive.
	Duplicates int
}

// Expand resolves the filter level by level: the district set (exactly one,
// required), then each district's talukas, hoblis, and villages. At each
// lower level a set code keeps only that child within each resolved parent;
// otherwise every child is taken. Candidates are deduplicated by the
// 4-code tuple preserving first-seen order.
func (e *Expander) Expand(ctx context.Context, filter kaveri.LocationFilter) (*Expansion, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	districts, err := e.Locations.Districts(ctx)
	if err != nil {
		return nil, err
	}
	var district *kaveri.District
	for _, d := range districts {
		if d.Code == filter.DistrictCode {
			district = d
			break
		}
	}
	if district == nil {
		return nil, kaveri.Errorf(kaveri.ENOTFOUND, "district %d not in the local index", filter.DistrictCode)
	}

	var candidates []kaveri.SearchTarget

	talukas, err := e.Locations.Talukas(ctx, district.Code)
	if err != nil {
		return nil, err
	}
	for _, taluka := range talukas {
		if !filter.AllTaluks && filter.TalukCode > 0 && taluka.Code != filter.TalukCode {
			continue
		}

		hoblis, err := e.Locations.Hoblis(ctx, taluka.Code)
		if err != nil {
			return nil, err
		}
		for _, hobli := range hoblis {
			if !filter.AllHoblis && filter.HobliCode > 0 && hobli.Code != filter.HobliCode {
				continue
			}

			villages, err := e.Locations.Villages(ctx, hobli.Code)
			if err != nil {
				return nil, err
			}
			for _, village := range villages {
				if !filter.AllVillages && filter.VillageCode > 0 && village.Code != filter.VillageCode {
					continue
				}

				candidates = append(candidates, kaveri.SearchTarget{
					DistrictCode: district.Code,
					TalukCode:    taluka.Code,
					HobliCode:    hobli.Code,
					VillageCode:  village.Code,
					DistrictName: district.Name,
					TalukName:    taluka.Name,
					HobliName:    hobli.Name,
					VillageName:  village.Name,
				})
			}
		}
	}

	seen := make(map[[4]int]struct{}, len(candidates))
	targets := make([]kaveri.SearchTarget, 0, len(candidates))
	for _, c := range candidates {
		key := [4]int{c.DistrictCode, c.TalukCode, c.HobliCode, c.VillageCode}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		targets = append(targets, c)
	}

	return &Expansion{
		Targets:    targets,
		Duplicates: len(candidates) - len(targets),
	}, nil
}
