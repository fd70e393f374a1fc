package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/kaveri"
)

// SessionManager owns the single session artifact of a run. It tracks the
// EMPTY > ACTIVE > EXPIRED lifecycle; once expired, every dependent call
// fails fast with EUNAUTHORIZED because re-authentication is always an
// external, human-assisted action.
type SessionManager struct {
	prober kaveri.SessionProber

	mu      sync.Mutex
	session *kaveri.Session
	expired bool

	// now is injectable for TTL tests.
	now func() time.Time
}

// Option configures a SessionManager.
type Option func(*SessionManager)

// WithClock replaces the wall clock. Used by tests to drive TTL expiry.
func WithClock(now func() time.Time) Option {
	return func(m *SessionManager) {
		m.now = now
	}
}

// NewSessionManager creates a SessionManager in the EMPTY state.
func NewSessionManager(prober kaveri.SessionProber, opts ...Option) *SessionManager {
	m := &SessionManager{
		prober: prober,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Set installs the externally acquired artifact and moves to ACTIVE.
// An artifact with neither a token nor cookies is rejected with EINVALID.
func (m *SessionManager) Set(session *kaveri.Session) error {
	if session == nil {
		return kaveri.Errorf(kaveri.EINVALID, "session required")
	}
	if err := session.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s := *session
	if s.AcquiredAt.IsZero() {
		s.AcquiredAt = m.now()
	}
	if s.TTL <= 0 {
		s.TTL = kaveri.DefaultSessionTTL
	}

	m.session = &s
	m.expired = false
	return nil
}

// State reports the current lifecycle state, accounting for TTL age.
func (m *SessionManager) State() kaveri.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state()
}

func (m *SessionManager) state() kaveri.SessionState {
	if m.session == nil {
		return kaveri.SessionEmpty
	}
	if m.expired || m.now().After(m.session.ExpiresAt()) {
		return kaveri.SessionExpired
	}
	return kaveri.SessionActive
}

// Session returns the held artifact for use on an authenticated call.
// Returns EUNAUTHORIZED unless the state is ACTIVE.
func (m *SessionManager) Session() (*kaveri.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state() {
	case kaveri.SessionActive:
		return m.session, nil
	case kaveri.SessionExpired:
		return nil, kaveri.Errorf(kaveri.EUNAUTHORIZED, "session expired; log in to the portal again and re-import the session")
	default:
		return nil, kaveri.Errorf(kaveri.EUNAUTHORIZED, "no session; log in to the portal and import the session first")
	}
}

// MarkExpired transitions to EXPIRED. Called when any authenticated call
// reports the artifact was rejected.
func (m *SessionManager) MarkExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expired = true
}

// Validate performs a lightweight authenticated probe against the portal.
// It reports whether the session is usable plus a diagnostic message. A
// rejected probe transitions to EXPIRED; a successful one changes nothing.
func (m *SessionManager) Validate(ctx context.Context) (bool, string) {
	session, err := m.Session()
	if err != nil {
		return false, kaveri.ErrorMessage(err)
	}

	if err := m.prober.Probe(ctx, session); err != nil {
		if kaveri.ErrorCode(err) == kaveri.EUNAUTHORIZED {
			m.MarkExpired()
			return false, "portal rejected the session; log in again"
		}
		return false, fmt.Sprintf("probe failed: %s", err)
	}

	return true, fmt.Sprintf("session active, expires at %s", m.expiresAt().Format(time.RFC3339))
}

func (m *SessionManager) expiresAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return time.Time{}
	}
	return m.session.ExpiresAt()
}
