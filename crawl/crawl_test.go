package crawl_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/kaveri"
	"github.com/fwojciec/kaveri/crawl"
	"github.com/fwojciec/kaveri/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastBackoff keeps retry semantics without real delays.
var fastBackoff = kaveri.Backoff{MaxRetries: 2, BaseDelay: time.Nanosecond, Multiplier: 2}

// fakeStore is a thread-safe in-memory LocationService that enforces the
// same referential rule as the sqlite implementation, so tests can verify
// the crawler's parent-before-child write ordering.
type fakeStore struct {
	mu        sync.Mutex
	districts map[int]*kaveri.District
	talukas   map[int]*kaveri.Taluka
	hoblis    map[int]*kaveri.Hobli
	villages  map[[2]int]*kaveri.Village
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		districts: make(map[int]*kaveri.District),
		talukas:   make(map[int]*kaveri.Taluka),
		hoblis:    make(map[int]*kaveri.Hobli),
		villages:  make(map[[2]int]*kaveri.Village),
	}
}

func (s *fakeStore) UpsertDistrict(_ context.Context, d *kaveri.District) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.districts[d.Code] = d
	return nil
}

func (s *fakeStore) UpsertTaluka(_ context.Context, t *kaveri.Taluka) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.districts[t.DistrictCode]; !ok {
		return kaveri.Errorf(kaveri.ECONFLICT, "taluka %d references missing district %d", t.Code, t.DistrictCode)
	}
	s.talukas[t.Code] = t
	return nil
}

func (s *fakeStore) UpsertHobli(_ context.Context, h *kaveri.Hobli) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.talukas[h.TalukCode]; !ok {
		return kaveri.Errorf(kaveri.ECONFLICT, "hobli %d references missing taluka %d", h.Code, h.TalukCode)
	}
	s.hoblis[h.Code] = h
	return nil
}

func (s *fakeStore) UpsertVillage(_ context.Context, v *kaveri.Village) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hoblis[v.HobliCode]; !ok {
		return kaveri.Errorf(kaveri.ECONFLICT, "village %d references missing hobli %d", v.Code, v.HobliCode)
	}
	s.villages[[2]int{v.Code, v.HobliCode}] = v
	return nil
}

func (s *fakeStore) Districts(context.Context) ([]*kaveri.District, error) { return nil, nil }
func (s *fakeStore) Talukas(context.Context, int) ([]*kaveri.Taluka, error) {
	return nil, nil
}
func (s *fakeStore) Hoblis(context.Context, int) ([]*kaveri.Hobli, error)     { return nil, nil }
func (s *fakeStore) Villages(context.Context, int) ([]*kaveri.Village, error) { return nil, nil }

// testHierarchy serves district 10 > talukas 20, 21 > hobli 30 (under 20)
// and hobli 31 (under 21) > villages 40, 41 (under 30) and 42 (under 31).
func testHierarchy() *mock.HierarchyClient {
	return &mock.HierarchyClient{
		FetchDistrictsFn: func(context.Context) ([]*kaveri.District, error) {
			return []*kaveri.District{{Code: 10, Name: "Bagalkot"}}, nil
		},
		FetchTalukasFn: func(_ context.Context, districtCode int) ([]*kaveri.Taluka, error) {
			return []*kaveri.Taluka{
				{Code: 20, Name: "Badami"},
				{Code: 21, Name: "Hungund"},
			}, nil
		},
		FetchHoblisFn: func(_ context.Context, talukCode int) ([]*kaveri.Hobli, error) {
			if talukCode == 20 {
				return []*kaveri.Hobli{{Code: 30, Name: "Kerur"}}, nil
			}
			return []*kaveri.Hobli{{Code: 31, Name: "Ilkal"}}, nil
		},
		FetchVillagesFn: func(_ context.Context, hobliCode int) ([]*kaveri.Village, error) {
			if hobliCode == 30 {
				return []*kaveri.Village{
					{Code: 40, Name: "Belur"},
					{Code: 41, Name: "Hosur"},
				}, nil
			}
			return []*kaveri.Village{{Code: 42, Name: "Amingad"}}, nil
		},
	}
}

func TestCrawler_Run(t *testing.T) {
	t.Parallel()

	t.Run("ingests the full hierarchy with parents before children", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		c := &crawl.Crawler{
			Hierarchy:   testHierarchy(),
			Locations:   store,
			Backoff:     fastBackoff,
			Concurrency: 1,
		}

		summary, err := c.Run(context.Background(), 0)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Districts)
		assert.Equal(t, 2, summary.Talukas)
		assert.Equal(t, 2, summary.Hoblis)
		assert.Equal(t, 3, summary.Villages)
		assert.Zero(t, summary.SkippedTalukas)
		assert.Zero(t, summary.SkippedHoblis)
		assert.Zero(t, summary.SkippedVillages)

		// The fake store rejects orphan writes, so a populated store proves
		// every parent was written before its children.
		assert.Len(t, store.villages, 3)
	})

	t.Run("district fetch failure is fatal", func(t *testing.T) {
		t.Parallel()

		c := &crawl.Crawler{
			Hierarchy: &mock.HierarchyClient{
				FetchDistrictsFn: func(context.Context) ([]*kaveri.District, error) {
					return nil, errors.New("connection refused")
				},
			},
			Locations: newFakeStore(),
			Backoff:   fastBackoff,
		}

		_, err := c.Run(context.Background(), 0)
		assert.Equal(t, kaveri.EUNAVAILABLE, kaveri.ErrorCode(err))
	})

	t.Run("empty response is retried as a fetch failure", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		h := testHierarchy()
		h.FetchVillagesFn = func(_ context.Context, hobliCode int) ([]*kaveri.Village, error) {
			attempts++
			if attempts < 3 {
				return []*kaveri.Village{}, nil
			}
			return []*kaveri.Village{{Code: 40, Name: "Belur"}}, nil
		}
		h.FetchTalukasFn = func(context.Context, int) ([]*kaveri.Taluka, error) {
			return []*kaveri.Taluka{{Code: 20, Name: "Badami"}}, nil
		}
		h.FetchHoblisFn = func(context.Context, int) ([]*kaveri.Hobli, error) {
			return []*kaveri.Hobli{{Code: 30, Name: "Kerur"}}, nil
		}

		c := &crawl.Crawler{
			Hierarchy:   h,
			Locations:   newFakeStore(),
			Backoff:     fastBackoff,
			Concurrency: 1,
		}

		summary, err := c.Run(context.Background(), 0)

		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
		assert.Equal(t, 1, summary.Villages)
		assert.Zero(t, summary.SkippedVillages)
	})

	t.Run("failed subtree is skipped and counted, crawl continues", func(t *testing.T) {
		t.Parallel()

		h := testHierarchy()
		h.FetchHoblisFn = func(_ context.Context, talukCode int) ([]*kaveri.Hobli, error) {
			if talukCode == 20 {
				return nil, errors.New("HTTP 502")
			}
			return []*kaveri.Hobli{{Code: 31, Name: "Ilkal"}}, nil
		}

		var skipped []crawl.ProgressEvent
		var mu sync.Mutex
		c := &crawl.Crawler{
			Hierarchy:   h,
			Locations:   newFakeStore(),
			Backoff:     fastBackoff,
			Concurrency: 1,
			Progress: func(event crawl.ProgressEvent) {
				if event.Type == crawl.ProgressSkipped {
					mu.Lock()
					skipped = append(skipped, event)
					mu.Unlock()
				}
			},
		}

		summary, err := c.Run(context.Background(), 0)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.SkippedHoblis)
		assert.Equal(t, 1, summary.Hoblis)
		assert.Equal(t, 1, summary.Villages) // village 42 under the surviving subtree
		require.Len(t, skipped, 1)
		assert.Equal(t, "hobli", skipped[0].Level)
		assert.Equal(t, 20, skipped[0].Code)
	})

	t.Run("restricts descent to one district", func(t *testing.T) {
		t.Parallel()

		h := testHierarchy()
		h.FetchDistrictsFn = func(context.Context) ([]*kaveri.District, error) {
			return []*kaveri.District{
				{Code: 10, Name: "Bagalkot"},
				{Code: 11, Name: "Mysuru"},
			}, nil
		}
		var talukaCalls []int
		var mu sync.Mutex
		inner := h.FetchTalukasFn
		h.FetchTalukasFn = func(ctx context.Context, districtCode int) ([]*kaveri.Taluka, error) {
			mu.Lock()
			talukaCalls = append(talukaCalls, districtCode)
			mu.Unlock()
			return inner(ctx, districtCode)
		}

		c := &crawl.Crawler{
			Hierarchy:   h,
			Locations:   newFakeStore(),
			Backoff:     fastBackoff,
			Concurrency: 1,
		}

		summary, err := c.Run(context.Background(), 11)

		require.NoError(t, err)
		assert.Equal(t, 2, summary.Districts) // all districts are still ingested
		assert.Equal(t, []int{11}, talukaCalls)
	})

	t.Run("unknown district restriction fails with ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		c := &crawl.Crawler{
			Hierarchy:   testHierarchy(),
			Locations:   newFakeStore(),
			Backoff:     fastBackoff,
			Concurrency: 1,
		}

		_, err := c.Run(context.Background(), 99)
		assert.Equal(t, kaveri.ENOTFOUND, kaveri.ErrorCode(err))
	})

	t.Run("paces sibling village fetches", func(t *testing.T) {
		t.Parallel()

		waits := 0
		c := &crawl.Crawler{
			Hierarchy:   testHierarchy(),
			Locations:   newFakeStore(),
			Backoff:     fastBackoff,
			Concurrency: 1,
			Limiter:     pacerFunc(func(context.Context) error { waits++; return nil }),
		}

		_, err := c.Run(context.Background(), 0)

		require.NoError(t, err)
		assert.Equal(t, 2, waits) // one wait per hobli's village fetch
	})
}

type pacerFunc func(ctx context.Context) error

func (f pacerFunc) Wait(ctx context.Context) error { return f(ctx) }

func TestRateLimiter_Wait(t *testing.T) {
	t.Parallel()

	t.Run("spaces consecutive requests", func(t *testing.T) {
		t.Parallel()

		l := crawl.NewRateLimiter(100) // 10ms spacing
		ctx := context.Background()

		begin := time.Now()
		require.NoError(t, l.Wait(ctx))
		require.NoError(t, l.Wait(ctx))
		require.NoError(t, l.Wait(ctx))

		assert.GreaterOrEqual(t, time.Since(begin), 20*time.Millisecond)
	})

	t.Run("returns when context is canceled", func(t *testing.T) {
		t.Parallel()

		l := crawl.NewRateLimiter(0.001)
		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, l.Wait(ctx)) // burst token

		cancel()
		assert.Error(t, l.Wait(ctx))
	})
}
