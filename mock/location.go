// Package mock provides hand-written mock implementations of the kaveri
// service interfaces for use in tests.
package mock

import (
	"context"

	"github.com/fwojciec/kaveri"
)

var _ kaveri.LocationService = (*LocationService)(nil)

// LocationService is a mock implementation of kaveri.LocationService.
type LocationService struct {
	UpsertDistrictFn func(ctx context.Context, d *kaveri.District) error
	UpsertTalukaFn   func(ctx context.Context, t *kaveri.Taluka) error
	UpsertHobliFn    func(ctx context.Context, h *kaveri.Hobli) error
	UpsertVillageFn  func(ctx context.Context, v *kaveri.Village) error

	DistrictsFn func(ctx context.Context) ([]*kaveri.District, error)
	TalukasFn   func(ctx context.Context, districtCode int) ([]*kaveri.Taluka, error)
	HoblisFn    func(ctx context.Context, talukCode int) ([]*kaveri.Hobli, error)
	VillagesFn  func(ctx context.Context, hobliCode int) ([]*kaveri.Village, error)
}

func (s *LocationService) UpsertDistrict(ctx context.Context, d *kaveri.District) error {
	return s.UpsertDistrictFn(ctx, d)
}

func (s *LocationService) UpsertTaluka(ctx context.Context, t *kaveri.Taluka) error {
	return s.UpsertTalukaFn(ctx, t)
}

func (s *LocationService) UpsertHobli(ctx context.Context, h *kaveri.Hobli) error {
	return s.UpsertHobliFn(ctx, h)
}

func (s *LocationService) UpsertVillage(ctx context.Context, v *kaveri.Village) error {
	return s.UpsertVillageFn(ctx, v)
}

func (s *LocationService) Districts(ctx context.Context) ([]*kaveri.District, error) {
	return s.DistrictsFn(ctx)
}

func (s *LocationService) Talukas(ctx context.Context, districtCode int) ([]*kaveri.Taluka, error) {
	return s.TalukasFn(ctx, districtCode)
}

func (s *LocationService) Hoblis(ctx context.Context, talukCode int) ([]*kaveri.Hobli, error) {
	return s.HoblisFn(ctx, talukCode)
}

func (s *LocationService) Villages(ctx context.Context, hobliCode int) ([]*kaveri.Village, error) {
	return s.VillagesFn(ctx, hobliCode)
}

var _ kaveri.HierarchyClient = (*HierarchyClient)(nil)

// HierarchyClient is a mock implementation of kaveri.HierarchyClient.
type HierarchyClient struct {
	FetchDistrictsFn func(ctx context.Context) ([]*kaveri.District, error)
	FetchTalukasFn   func(ctx context.Context, districtCode int) ([]*kaveri.Taluka, error)
	FetchHoblisFn    func(ctx context.Context, talukCode int) ([]*kaveri.Hobli, error)
	FetchVillagesFn  func(ctx context.Context, hobliCode int) ([]*kaveri.Village, error)
}

func (c *HierarchyClient) FetchDistricts(ctx context.Context) ([]*kaveri.District, error) {
	return c.FetchDistrictsFn(ctx)
}

func (c *HierarchyClient) FetchTalukas(ctx context.Context, districtCode int) ([]*kaveri.Taluka, error) {
	return c.FetchTalukasFn(ctx, districtCode)
}

func (c *HierarchyClient) FetchHoblis(ctx context.Context, talukCode int) ([]*kaveri.Hobli, error) {
	return c.FetchHoblisFn(ctx, talukCode)
}

func (c *HierarchyClient) FetchVillages(ctx context.Context, hobliCode int) ([]*kaveri.Village, error) {
	return c.FetchVillagesFn(ctx, hobliCode)
}
