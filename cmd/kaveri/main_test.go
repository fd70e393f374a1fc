package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/fwojciec/kaveri"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	m := NewMain()
	err = m.Run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("no arguments shows help and errors", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := runCLI(t)
		require.Error(t, err)
		assert.Contains(t, stdout, "kaveri")
	})

	t.Run("unknown command errors", func(t *testing.T) {
		t.Parallel()

		_, _, err := runCLI(t, "--db", filepath.Join(t.TempDir(), "kaveri.db"), "bogus")
		assert.Error(t, err)
	})

	t.Run("stats on a fresh store reports zero everywhere", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := runCLI(t, "--db", filepath.Join(t.TempDir(), "kaveri.db"), "stats")

		require.NoError(t, err)
		assert.Contains(t, stdout, "Districts: 0")
		assert.Contains(t, stdout, "Villages:  0")
		assert.Contains(t, stdout, "Last indexed: never")
	})
}

func TestSessionCommands(t *testing.T) {
	t.Parallel()

	t.Run("import then check against an accepting portal", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "tok-123", r.Header.Get("_append"))
			fmt.Fprint(w, `[]`)
		}))
		defer srv.Close()

		dir := t.TempDir()
		dbPath := filepath.Join(dir, "kaveri.db")
		sessionPath := filepath.Join(dir, "session.json")

		stdout, _, err := runCLI(t,
			"--db", dbPath, "--session-file", sessionPath,
			"session", "import", "--token", "tok-123", "--cookies", "ASP.NET_SessionId=abc",
		)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Session saved")

		session, err := loadSessionFile(sessionPath)
		require.NoError(t, err)
		assert.Equal(t, "tok-123", session.Token)
		require.Len(t, session.Cookies, 1)
		assert.Equal(t, "ASP.NET_SessionId", session.Cookies[0].Name)
		assert.False(t, session.AcquiredAt.IsZero())

		stdout, _, err = runCLI(t,
			"--db", dbPath, "--session-file", sessionPath, "--base-url", srv.URL,
			"session", "check",
		)
		require.NoError(t, err)
		assert.Contains(t, stdout, "session active")
	})

	t.Run("check against a rejecting portal fails", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		dir := t.TempDir()
		dbPath := filepath.Join(dir, "kaveri.db")
		sessionPath := filepath.Join(dir, "session.json")

		_, _, err := runCLI(t,
			"--db", dbPath, "--session-file", sessionPath,
			"session", "import", "--token", "stale-token",
		)
		require.NoError(t, err)

		stdout, _, err := runCLI(t,
			"--db", dbPath, "--session-file", sessionPath, "--base-url", srv.URL,
			"session", "check",
		)
		require.Error(t, err)
		assert.Equal(t, kaveri.EUNAUTHORIZED, kaveri.ErrorCode(err))
		assert.Contains(t, stdout, "log in again")
	})

	t.Run("check without an imported session is ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, _, err := runCLI(t,
			"--db", filepath.Join(dir, "kaveri.db"),
			"--session-file", filepath.Join(dir, "missing.json"),
			"session", "check",
		)
		assert.Equal(t, kaveri.ENOTFOUND, kaveri.ErrorCode(err))
	})

	t.Run("import rejects a malformed cookie", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, _, err := runCLI(t,
			"--db", filepath.Join(dir, "kaveri.db"),
			"--session-file", filepath.Join(dir, "session.json"),
			"session", "import", "--token", "tok", "--cookies", "not-a-pair",
		)
		assert.Equal(t, kaveri.EINVALID, kaveri.ErrorCode(err))
	})
}
