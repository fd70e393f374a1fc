package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/kaveri/crawl"
)

// IndexCmd crawls the location hierarchy into the local store.
type IndexCmd struct {
	District    int     `arg:"" optional:"" help:"Restrict the crawl to one district code."`
	Concurrency int     `short:"c" default:"3" help:"Concurrent taluka subtrees per district."`
	RPS         float64 `default:"5" help:"Village fetch rate limit, requests per second."`
}

// Run executes the index command.
func (cmd *IndexCmd) Run(deps *Dependencies) error {
	crawler := &crawl.Crawler{
		Hierarchy:   deps.Hierarchy,
		Locations:   deps.Locations,
		Limiter:     crawl.NewRateLimiter(cmd.RPS),
		Concurrency: cmd.Concurrency,
		Progress: func(event crawl.ProgressEvent) {
			if event.Type == crawl.ProgressSkipped {
				fmt.Fprintf(deps.Stderr, "skipped %ss of %s (%d): %s\n", event.Level, event.Name, event.Code, event.Error)
			}
		},
	}

	summary, err := crawler.Run(deps.Ctx, cmd.District)
	if err != nil {
		return err
	}

	// Persist the crawl outcome so stats can report store freshness.
	encoded, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	if err := deps.Metadata.Set(deps.Ctx, "last_crawl", string(encoded)); err != nil {
		return err
	}
	if err := deps.Metadata.Set(deps.Ctx, "last_crawl_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Indexed %d districts, %d talukas, %d hoblis, %d villages in %s\n",
		summary.Districts, summary.Talukas, summary.Hoblis, summary.Villages, summary.Duration.Round(time.Second))

	skipped := summary.SkippedTalukas + summary.SkippedHoblis + summary.SkippedVillages
	if skipped > 0 {
		fmt.Fprintf(deps.Stdout, "Skipped %d subtrees after exhausting retries; re-run index to fill the gaps\n", skipped)
	}
	return nil
}
