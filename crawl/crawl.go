// Package crawl provides location hierarchy ingestion. It walks the
// portal's four hierarchy endpoints top-down and populates the local
// location store, writing every parent before its children.
package crawl

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fwojciec/kaveri"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the bounded worker limit for sibling taluka
// subtrees within one district.
const DefaultConcurrency = 3

// Crawler ingests the district > taluka > hobli > village hierarchy into
// the location store.
type Crawler struct {
	Hierarchy kaveri.HierarchyClient
	Locations kaveri.LocationService

	// Backoff is the per-node fetch retry policy. The zero value selects
	// kaveri.DefaultBackoff (3 retries: 1s, 2s, 4s).
	Backoff kaveri.Backoff

	// Limiter paces sibling village fetches. Nil disables pacing.
	Limiter Pacer

	// Concurrency bounds how many taluka subtrees of one district are
	// processed at once. Values below one select DefaultConcurrency.
	Concurrency int

	// Progress, if set, receives events as the crawl proceeds.
	Progress ProgressFunc
}

// Summary reports what a crawl ingested and which subtrees it had to skip
// after exhausting retries.
type Summary struct {
	Districts int `json:"districts"`
	Talukas   int `json:"talukas"`
	Hoblis    int `json:"hoblis"`
	Villages  int `json:"villages"`

	// Skipped* count parents whose child list could not be fetched: a
	// SkippedTalukas entry is one district whose talukas were lost, and so on.
	SkippedTalukas  int `json:"skippedTalukas"`
	SkippedHoblis   int `json:"skippedHoblis"`
	SkippedVillages int `json:"skippedVillages"`

	Duration time.Duration `json:"duration"`
}

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type  ProgressType
	Level string // "district", "taluka", "hobli", "village"
	Code  int    // code of the parent node the event refers to
	Name  string
	Count int // rows ingested, for ProgressFetched
	Error error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressFetched
	ProgressSkipped
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// counters accumulate across concurrent subtree workers.
type counters struct {
	talukas  atomic.Int64
	hoblis   atomic.Int64
	villages atomic.Int64

	skippedTalukas  atomic.Int64
	skippedHoblis   atomic.Int64
	skippedVillages atomic.Int64
}

// Run performs a full crawl pass. A districtCode above zero restricts the
// descent to that district; districts themselves are always ingested in
// full. Failure to fetch the district list is fatal; any deeper failure
// skips that subtree and the crawl keeps going.
func (c *Crawler) Run(ctx context.Context, districtCode int) (*Summary, error) {
	begin := time.Now()

	c.emit(ProgressEvent{Type: ProgressStarted, Level: "district"})

	districts, err := fetchList(ctx, c.backoff(), func(ctx context.Context) ([]*kaveri.District, error) {
		return c.Hierarchy.FetchDistricts(ctx)
	})
	if err != nil {
		return nil, kaveri.Errorf(kaveri.EUNAVAILABLE, "district fetch failed: %s", err)
	}

	for _, d := range districts {
		if err := c.Locations.UpsertDistrict(ctx, d); err != nil {
			return nil, err
		}
	}
	c.emit(ProgressEvent{Type: ProgressFetched, Level: "district", Count: len(districts)})

	descend := districts
	if districtCode > 0 {
		descend = nil
		for _, d := range districts {
			if d.Code == districtCode {
				descend = []*kaveri.District{d}
				break
			}
		}
		if descend == nil {
			return nil, kaveri.Errorf(kaveri.ENOTFOUND, "district %d not found", districtCode)
		}
	}

	var n counters
	for _, d := range descend {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err := c.crawlDistrict(ctx, d, &n); err != nil {
			return nil, err
		}
	}

	summary := &Summary{
		Districts:       len(districts),
		Talukas:         int(n.talukas.Load()),
		Hoblis:          int(n.hoblis.Load()),
		Villages:        int(n.villages.Load()),
		SkippedTalukas:  int(n.skippedTalukas.Load()),
		SkippedHoblis:   int(n.skippedHoblis.Load()),
		SkippedVillages: int(n.skippedVillages.Load()),
		Duration:        time.Since(begin),
	}

	c.emit(ProgressEvent{Type: ProgressFinished, Count: summary.Villages})

	return summary, nil
}

// crawlDistrict ingests one district's talukas, then fans the taluka
// subtrees out to a bounded worker group. The taluka rows are written
// before any worker starts so every hobli write finds its parent.
func (c *Crawler) crawlDistrict(ctx context.Context, d *kaveri.District, n *counters) error {
	talukas, err := fetchList(ctx, c.backoff(), func(ctx context.Context) ([]*kaveri.Taluka, error) {
		return c.Hierarchy.FetchTalukas(ctx, d.Code)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n.skippedTalukas.Add(1)
		c.emit(ProgressEvent{Type: ProgressSkipped, Level: "taluka", Code: d.Code, Name: d.Name, Error: err})
		return nil
	}

	for _, taluka := range talukas {
		taluka.DistrictCode = d.Code
		if err := c.Locations.UpsertTaluka(ctx, taluka); err != nil {
			return err
		}
	}
	n.talukas.Add(int64(len(talukas)))
	c.emit(ProgressEvent{Type: ProgressFetched, Level: "taluka", Code: d.Code, Name: d.Name, Count: len(talukas)})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency())

	for _, taluka := range talukas {
		g.Go(func() error {
			return c.crawlTaluka(gctx, taluka, n)
		})
	}

	return g.Wait()
}

// crawlTaluka ingests one taluka's hoblis and their villages.
func (c *Crawler) crawlTaluka(ctx context.Context, taluka *kaveri.Taluka, n *counters) error {
	hoblis, err := fetchList(ctx, c.backoff(), func(ctx context.Context) ([]*kaveri.Hobli, error) {
		return c.Hierarchy.FetchHoblis(ctx, taluka.Code)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n.skippedHoblis.Add(1)
		c.emit(ProgressEvent{Type: ProgressSkipped, Level: "hobli", Code: taluka.Code, Name: taluka.Name, Error: err})
		return nil
	}

	for _, hobli := range hoblis {
		hobli.TalukCode = taluka.Code
		if err := c.Locations.UpsertHobli(ctx, hobli); err != nil {
			return err
		}
	}
	n.hoblis.Add(int64(len(hoblis)))
	c.emit(ProgressEvent{Type: ProgressFetched, Level: "hobli", Code: taluka.Code, Name: taluka.Name, Count: len(hoblis)})

	for _, hobli := range hoblis {
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return err
			}
		}

		villages, err := fetchList(ctx, c.backoff(), func(ctx context.Context) ([]*kaveri.Village, error) {
			return c.Hierarchy.FetchVillages(ctx, hobli.Code)
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			n.skippedVillages.Add(1)
			c.emit(ProgressEvent{Type: ProgressSkipped, Level: "village", Code: hobli.Code, Name: hobli.Name, Error: err})
			continue
		}

		for _, village := range villages {
			village.HobliCode = hobli.Code
			if err := c.Locations.UpsertVillage(ctx, village); err != nil {
				return err
			}
		}
		n.villages.Add(int64(len(villages)))
		c.emit(ProgressEvent{Type: ProgressFetched, Level: "village", Code: hobli.Code, Name: hobli.Name, Count: len(villages)})
	}

	return nil
}

func (c *Crawler) backoff() kaveri.Backoff {
	if c.Backoff.MaxRetries == 0 && c.Backoff.BaseDelay == 0 {
		return kaveri.DefaultBackoff()
	}
	return c.Backoff
}

func (c *Crawler) concurrency() int {
	if c.Concurrency < 1 {
		return DefaultConcurrency
	}
	return c.Concurrency
}

func (c *Crawler) emit(event ProgressEvent) {
	if c.Progress != nil {
		c.Progress(event)
	}
}

// fetchList runs fetch under the retry policy. An error response and an
// empty list are both fetch failures: the portal never reports a node with
// zero children, so an empty body means the call silently failed.
func fetchList[T any](ctx context.Context, b kaveri.Backoff, fetch func(ctx context.Context) ([]T, error)) ([]T, error) {
	var rows []T
	err := b.Retry(ctx, func(ctx context.Context) error {
		var err error
		rows, err = fetch(ctx)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("empty response")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
