package main

import (
	"fmt"

	"github.com/fwojciec/kaveri"
)

// StatsCmd prints what the local store currently holds.
type StatsCmd struct{}

// Run executes the stats command.
func (cmd *StatsCmd) Run(deps *Dependencies) error {
	districts, err := deps.Locations.Districts(deps.Ctx)
	if err != nil {
		return err
	}
	talukas, err := deps.Locations.Talukas(deps.Ctx, 0)
	if err != nil {
		return err
	}
	hoblis, err := deps.Locations.Hoblis(deps.Ctx, 0)
	if err != nil {
		return err
	}
	villages, err := deps.Locations.Villages(deps.Ctx, 0)
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Districts: %d\n", len(districts))
	fmt.Fprintf(deps.Stdout, "Talukas:   %d\n", len(talukas))
	fmt.Fprintf(deps.Stdout, "Hoblis:    %d\n", len(hoblis))
	fmt.Fprintf(deps.Stdout, "Villages:  %d\n", len(villages))

	lastCrawlAt, err := deps.Metadata.Get(deps.Ctx, "last_crawl_at")
	switch kaveri.ErrorCode(err) {
	case "":
		fmt.Fprintf(deps.Stdout, "Last indexed: %s\n", lastCrawlAt)
	case kaveri.ENOTFOUND:
		fmt.Fprintln(deps.Stdout, "Last indexed: never")
	default:
		return err
	}
	return nil
}
