package search

import (
	"context"
	"time"

	"github.com/fwojciec/kaveri"
	"github.com/google/uuid"
)

// DefaultTargetDelay is the pause between consecutive targets, respecting
// the portal's implicit rate limit on the search endpoint.
const DefaultTargetDelay = 2 * time.Second

// Orchestrator drives one batch run: for each leaf target it obtains a
// captcha solution, issues the authenticated search, classifies the
// response, and appends any rows to the result store immediately. Targets
// are processed strictly sequentially; the portal allows one
// captcha/session context in flight at a time.
type Orchestrator struct {
	Session    *SessionManager
	Challenges kaveri.ChallengeClient
	Resolver   kaveri.CaptchaResolver
	Searches   kaveri.SearchClient
	Results    kaveri.ResultService

	// Delay is the inter-target pause. Zero selects DefaultTargetDelay;
	// a negative value disables the pause.
	Delay time.Duration

	// ReuseCaptcha resubmits one solved text across targets, falling back
	// to a fresh solve when the portal rejects it. Best-effort: the portal
	// validates the text per submission but does not bind it to a target.
	ReuseCaptcha bool

	// Progress, if set, receives events as the run proceeds.
	Progress RunProgressFunc
}

// TargetError records a non-fatal failure for one target.
type TargetError struct {
	Target kaveri.SearchTarget
	Err    error
}

// RunResult summarizes a batch run.
type RunResult struct {
	RunID     string
	Total     int
	Attempted int
	RowsFound int
	Errors    []TargetError

	// ExpiredEarly is set when the run halted because the session expired;
	// targets after the halting one were never attempted.
	ExpiredEarly bool

	// Canceled is set when the run stopped on operator interruption. The
	// in-flight target was completed and its results persisted first.
	Canceled bool
}

// RunEvent reports progress during a batch run.
type RunEvent struct {
	Type      RunEventType
	Target    kaveri.SearchTarget
	Completed int
	Total     int
	Rows      int
	Error     error
}

// RunEventType indicates the type of run event.
type RunEventType int

const (
	RunStarted RunEventType = iota
	TargetCompleted
	TargetFailed
	RunFinished
)

// RunProgressFunc is a callback for reporting run progress.
type RunProgressFunc func(event RunEvent)

// Run executes the batch over targets in list order. Per-target captcha
// and remote failures are recorded and the run continues; an expired
// session halts the run. The returned summary is valid even on early
// termination, and every appended row was durable before the next target
// started.
func (o *Orchestrator) Run(ctx context.Context, targets []kaveri.SearchTarget, params kaveri.SearchParams) (*RunResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	result := &RunResult{
		RunID: uuid.New().String(),
		Total: len(targets),
	}

	o.emit(RunEvent{Type: RunStarted, Total: result.Total})

	var reused string
	for i, target := range targets {
		if ctx.Err() != nil {
			result.Canceled = true
			break
		}

		if o.Session.State() != kaveri.SessionActive {
			result.ExpiredEarly = true
			break
		}

		result.Attempted++

		rows, err := o.searchTarget(ctx, target, params, result, &reused)
		if err != nil {
			result.Errors = append(result.Errors, TargetError{Target: target, Err: err})
			o.emit(RunEvent{Type: TargetFailed, Target: target, Completed: i + 1, Total: result.Total, Error: err})
			if kaveri.ErrorCode(err) == kaveri.EUNAUTHORIZED {
				result.ExpiredEarly = true
				break
			}
		} else {
			result.RowsFound += rows
			o.emit(RunEvent{Type: TargetCompleted, Target: target, Completed: i + 1, Total: result.Total, Rows: rows})
		}

		if i < len(targets)-1 {
			if err := o.pause(ctx); err != nil {
				result.Canceled = true
				break
			}
		}
	}

	o.emit(RunEvent{Type: RunFinished, Completed: result.Attempted, Total: result.Total, Rows: result.RowsFound})

	return result, nil
}

// searchTarget runs one target end to end and returns the number of rows
// persisted. An EUNAUTHORIZED return means the session died mid-run.
func (o *Orchestrator) searchTarget(ctx context.Context, target kaveri.SearchTarget, params kaveri.SearchParams, result *RunResult, reused *string) (int, error) {
	solution, err := o.obtainSolution(ctx, reused)
	if err != nil {
		return 0, err
	}

	resp, err := o.search(ctx, target, params, solution)
	if err != nil {
		return 0, err
	}

	if resp.Status == kaveri.SearchInvalidCaptcha && o.ReuseCaptcha {
		// The reused text aged out on the remote side. Solve fresh once and
		// continue reusing the new solution from here.
		*reused = ""
		solution, err = o.obtainSolution(ctx, reused)
		if err != nil {
			return 0, err
		}
		resp, err = o.search(ctx, target, params, solution)
		if err != nil {
			return 0, err
		}
	}

	switch resp.Status {
	case kaveri.SearchUnauthorized:
		o.Session.MarkExpired()
		return 0, kaveri.Errorf(kaveri.EUNAUTHORIZED, "portal rejected the session")
	case kaveri.SearchInvalidCaptcha:
		return 0, kaveri.Errorf(kaveri.EINTERNAL, "captcha rejected: %s", resp.Message)
	case kaveri.SearchError:
		return 0, kaveri.Errorf(kaveri.EINTERNAL, "search failed: %s", resp.Message)
	}

	if len(resp.Rows) == 0 {
		return 0, nil
	}

	results := make([]*kaveri.SearchResult, len(resp.Rows))
	for i, fields := range resp.Rows {
		results[i] = &kaveri.SearchResult{
			RunID:       result.RunID,
			VillageCode: target.VillageCode,
			VillageName: target.VillageName,
			PartyName:   params.PartyName,
			FromDate:    params.FromDate,
			ToDate:      params.ToDate,
			Fields:      fields,
			Position:    i,
		}
	}

	if err := o.Results.AppendResults(ctx, results); err != nil {
		return 0, err
	}

	return len(results), nil
}

// obtainSolution returns the captcha solution for the next search call.
// In reuse mode a cached text is paired with a fresh challenge ID, since
// challenge IDs are single-use on the remote side.
func (o *Orchestrator) obtainSolution(ctx context.Context, reused *string) (*kaveri.CaptchaSolution, error) {
	if o.ReuseCaptcha && *reused != "" {
		challenge, err := o.Challenges.NewChallenge(ctx)
		if err != nil {
			return nil, err
		}
		return &kaveri.CaptchaSolution{ChallengeID: challenge.ID, Text: *reused}, nil
	}

	challenge, err := o.Challenges.NewChallenge(ctx)
	if err != nil {
		return nil, err
	}
	solution, err := o.Resolver.Solve(ctx, challenge)
	if err != nil {
		return nil, err
	}
	if o.ReuseCaptcha {
		*reused = solution.Text
	}
	return solution, nil
}

func (o *Orchestrator) search(ctx context.Context, target kaveri.SearchTarget, params kaveri.SearchParams, solution *kaveri.CaptchaSolution) (*kaveri.SearchResponse, error) {
	session, err := o.Session.Session()
	if err != nil {
		return nil, err
	}

	return o.Searches.Search(ctx, kaveri.SearchRequest{
		Session:     session,
		VillageCode: target.VillageCode,
		Params:      params,
		CaptchaID:   solution.ChallengeID,
		CaptchaText: solution.Text,
	})
}

func (o *Orchestrator) pause(ctx context.Context) error {
	delay := o.Delay
	if delay == 0 {
		delay = DefaultTargetDelay
	}
	if delay < 0 {
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func (o *Orchestrator) emit(event RunEvent) {
	if o.Progress != nil {
		o.Progress(event)
	}
}
