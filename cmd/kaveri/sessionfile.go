package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/fwojciec/kaveri"
)

// sessionFile is the on-disk shape of the saved session artifact.
type sessionFile struct {
	AppendToken string          `json:"append_token"`
	Cookies     []kaveri.Cookie `json:"cookies"`
	SavedAt     time.Time       `json:"saved_at"`
}

// loadSessionFile reads the saved artifact. Returns ENOTFOUND when no
// session has been imported yet.
func loadSessionFile(path string) (*kaveri.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, kaveri.Errorf(kaveri.ENOTFOUND, "no saved session at %s; run 'kaveri session import' first", path)
		}
		return nil, err
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, kaveri.Errorf(kaveri.EINVALID, "session file %s is not valid JSON: %s", path, err)
	}

	session := &kaveri.Session{
		Token:      f.AppendToken,
		Cookies:    f.Cookies,
		AcquiredAt: f.SavedAt,
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}
	return session, nil
}

// saveSessionFile writes the artifact with owner-only permissions; the
// token is a live credential.
func saveSessionFile(path string, session *kaveri.Session) error {
	f := sessionFile{
		AppendToken: session.Token,
		Cookies:     session.Cookies,
		SavedAt:     time.Now().UTC(),
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
