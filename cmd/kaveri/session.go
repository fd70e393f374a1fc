package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/kaveri"
	"github.com/fwojciec/kaveri/search"
)

// SessionCmd groups the session subcommands.
type SessionCmd struct {
	Import SessionImportCmd `cmd:"" help:"Save a session artifact extracted from a logged-in browser."`
	Check  SessionCheckCmd  `cmd:"" help:"Probe the portal with the saved session."`
}

// SessionImportCmd saves the token and cookies the operator copied out of
// the browser after logging in.
type SessionImportCmd struct {
	Token   string   `required:"" help:"Value of the _append request header from a logged-in browser."`
	Cookies []string `help:"Session cookies as name=value pairs." sep:"none"`
}

// Run executes the session import command.
func (cmd *SessionImportCmd) Run(deps *Dependencies) error {
	session := &kaveri.Session{Token: cmd.Token}
	for _, raw := range cmd.Cookies {
		name, value, ok := strings.Cut(raw, "=")
		if !ok || name == "" {
			return kaveri.Errorf(kaveri.EINVALID, "cookie %q is not a name=value pair", raw)
		}
		session.Cookies = append(session.Cookies, kaveri.Cookie{Name: name, Value: value})
	}
	if err := session.Validate(); err != nil {
		return err
	}

	if err := saveSessionFile(deps.SessionFile, session); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Session saved to %s\n", deps.SessionFile)
	return nil
}

// SessionCheckCmd probes the portal with the saved artifact.
type SessionCheckCmd struct{}

// Run executes the session check command.
func (cmd *SessionCheckCmd) Run(deps *Dependencies) error {
	session, err := loadSessionFile(deps.SessionFile)
	if err != nil {
		return err
	}

	manager := search.NewSessionManager(deps.Portal)
	if err := manager.Set(session); err != nil {
		return err
	}

	ok, msg := manager.Validate(deps.Ctx)
	fmt.Fprintln(deps.Stdout, msg)
	if !ok {
		return kaveri.Errorf(kaveri.EUNAUTHORIZED, "session is not usable")
	}
	return nil
}
