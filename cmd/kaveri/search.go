package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/kaveri"
	"github.com/fwojciec/kaveri/prompt"
	"github.com/fwojciec/kaveri/search"
	"github.com/fwojciec/kaveri/twocaptcha"
)

// SearchCmd runs a batch EC search across the expanded location selection.
type SearchCmd struct {
	Party    string `required:"" help:"Party name to search."`
	FromDate string `default:"2003-01-01" help:"Start date (YYYY-MM-DD)."`
	ToDate   string `help:"End date (YYYY-MM-DD). Defaults to today."`

	District    int  `required:"" help:"District code to search."`
	Taluk       int  `help:"Restrict to one taluka code."`
	AllTaluks   bool `help:"Expand every taluka of the district."`
	Hobli       int  `help:"Restrict to one hobli code."`
	AllHoblis   bool `help:"Expand every hobli."`
	Village     int  `help:"Restrict to one village code."`
	AllVillages bool `help:"Expand every village."`

	Delay        time.Duration `default:"2s" help:"Pause between villages."`
	Manual       bool          `help:"Solve captchas by hand instead of through 2Captcha."`
	CaptchaKey   string        `env:"CAPTCHA_API_KEY" help:"2Captcha API key."`
	ReuseCaptcha bool          `help:"Reuse one solved captcha across villages, re-solving when rejected."`
}

// Run executes the search command.
func (cmd *SearchCmd) Run(deps *Dependencies) error {
	toDate := cmd.ToDate
	if toDate == "" {
		toDate = time.Now().Format("2006-01-02")
	}
	params := kaveri.SearchParams{
		PartyName: cmd.Party,
		FromDate:  cmd.FromDate,
		ToDate:    toDate,
	}
	if err := params.Validate(); err != nil {
		return err
	}

	expander := &search.Expander{Locations: deps.Locations}
	expansion, err := expander.Expand(deps.Ctx, kaveri.LocationFilter{
		DistrictCode: cmd.District,
		TalukCode:    cmd.Taluk,
		AllTaluks:    cmd.AllTaluks,
		HobliCode:    cmd.Hobli,
		AllHoblis:    cmd.AllHoblis,
		VillageCode:  cmd.Village,
		AllVillages:  cmd.AllVillages,
	})
	if err != nil {
		return err
	}
	if len(expansion.Targets) == 0 {
		return kaveri.Errorf(kaveri.ENOTFOUND, "no villages match the selection; run 'kaveri index %d' first", cmd.District)
	}

	session, err := loadSessionFile(deps.SessionFile)
	if err != nil {
		return err
	}
	manager := search.NewSessionManager(deps.Portal)
	if err := manager.Set(session); err != nil {
		return err
	}

	resolver, err := cmd.resolver()
	if err != nil {
		return err
	}

	orchestrator := &search.Orchestrator{
		Session:      manager,
		Challenges:   deps.Portal,
		Resolver:     resolver,
		Searches:     deps.Searches,
		Results:      deps.Results,
		Delay:        cmd.Delay,
		ReuseCaptcha: cmd.ReuseCaptcha,
		Progress: func(event search.RunEvent) {
			switch event.Type {
			case search.TargetCompleted:
				fmt.Fprintf(deps.Stdout, "[%d/%d] %s (%d): %d rows\n",
					event.Completed, event.Total, event.Target.VillageName, event.Target.VillageCode, event.Rows)
			case search.TargetFailed:
				fmt.Fprintf(deps.Stderr, "[%d/%d] %s (%d): %s\n",
					event.Completed, event.Total, event.Target.VillageName, event.Target.VillageCode, event.Error)
			}
		},
	}

	result, err := orchestrator.Run(deps.Ctx, expansion.Targets, params)
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Run %s: %d/%d villages searched, %d rows, %d errors\n",
		result.RunID, result.Attempted, result.Total, result.RowsFound, len(result.Errors))

	switch {
	case result.ExpiredEarly:
		return kaveri.Errorf(kaveri.EUNAUTHORIZED, "session expired mid-run; log in again, re-import the session, and re-run")
	case result.Canceled:
		fmt.Fprintln(deps.Stdout, "Run interrupted; completed villages were saved")
	}
	return nil
}

// resolver picks the captcha backend: a human prompt, or 2Captcha when a
// key is configured.
func (cmd *SearchCmd) resolver() (kaveri.CaptchaResolver, error) {
	if cmd.Manual {
		return prompt.NewResolver(), nil
	}
	if cmd.CaptchaKey == "" {
		return nil, kaveri.Errorf(kaveri.EINVALID, "no captcha API key; set CAPTCHA_API_KEY or pass --manual")
	}
	return twocaptcha.NewClient(cmd.CaptchaKey), nil
}
