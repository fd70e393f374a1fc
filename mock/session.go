package mock

import (
	"context"

	"github.com/fwojciec/kaveri"
)

var _ kaveri.SessionProber = (*SessionProber)(nil)

// SessionProber is a mock implementation of kaveri.SessionProber.
type SessionProber struct {
	ProbeFn func(ctx context.Context, session *kaveri.Session) error
}

func (p *SessionProber) Probe(ctx context.Context, session *kaveri.Session) error {
	return p.ProbeFn(ctx, session)
}
