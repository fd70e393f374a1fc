package kaveri

import (
	"context"
	"time"
)

// DefaultSessionTTL is how long a session artifact is trusted after
// acquisition before it is treated as expired without asking the portal.
const DefaultSessionTTL = time.Hour

// SessionState describes the lifecycle of a session artifact.
type SessionState int

const (
	// SessionEmpty means no artifact has been supplied yet.
	SessionEmpty SessionState = iota
	// SessionActive means an artifact is held and within its TTL.
	SessionActive
	// SessionExpired means the artifact aged out or the portal rejected it.
	// Recovery is always an external re-login; nothing in the core retries.
	SessionExpired
)

// String returns a short operator-facing label for the state.
func (s SessionState) String() string {
	switch s {
	case SessionActive:
		return "active"
	case SessionExpired:
		return "expired"
	default:
		return "empty"
	}
}

// Cookie is one cookie of the externally acquired session.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
}

// Session is the artifact produced by the external, human-assisted login
// flow: an opaque token and/or a cookie set, plus when it was acquired.
// The core only consumes it; it never attempts to automate the login.
type Session struct {
	Token      string        `json:"token"`
	Cookies    []Cookie      `json:"cookies"`
	AcquiredAt time.Time     `json:"acquiredAt"`
	TTL        time.Duration `json:"ttl"`
}

// Validate returns an error if the session carries no usable credential.
func (s *Session) Validate() error {
	if s.Token == "" && len(s.Cookies) == 0 {
		return Errorf(EINVALID, "session requires a token or a cookie set")
	}
	return nil
}

// ExpiresAt returns the wall-clock instant the session ages out.
func (s *Session) ExpiresAt() time.Time {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return s.AcquiredAt.Add(ttl)
}

// SessionProber performs a lightweight authenticated call against the
// portal to check whether a session is still accepted. Implementations
// return EUNAUTHORIZED when the portal rejects the artifact and
// EUNAVAILABLE when the check itself could not be completed.
type SessionProber interface {
	Probe(ctx context.Context, session *Session) error
}
