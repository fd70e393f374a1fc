package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePortal serves a minimal one-branch hierarchy.
func fakePortal(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/GetDistrictAsync":
			fmt.Fprint(w, `[{"districtCode": 11, "districtNamee": "Bagalkot", "districtNamek": ""}]`)
		case "/api/GetTalukaAsync":
			fmt.Fprint(w, `[{"talukCode": 183, "talukNamee": "Badami", "talukNamek": ""}]`)
		case "/api/GetHobliAsync":
			fmt.Fprint(w, `[{"hoblicode": 406, "hoblinamee": "Kerur", "hoblinamek": ""}]`)
		case "/api/GetVillageAsync":
			fmt.Fprint(w, `[
				{"villagecode": 15305, "villagenamee": "Belur", "villagenamek": "", "isurban": false},
				{"villagecode": 15342, "villagenamee": "Kerur Town", "villagenamek": "", "isurban": true}
			]`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
}

func TestIndexCommand(t *testing.T) {
	t.Parallel()

	srv := fakePortal(t)
	defer srv.Close()

	dbPath := filepath.Join(t.TempDir(), "kaveri.db")

	stdout, _, err := runCLI(t,
		"--db", dbPath, "--base-url", srv.URL,
		"index", "--rps", "1000",
	)

	require.NoError(t, err)
	assert.Contains(t, stdout, "Indexed 1 districts, 1 talukas, 1 hoblis, 2 villages")

	// The ingested hierarchy is queryable afterwards.
	stdout, _, err = runCLI(t, "--db", dbPath, "stats")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Districts: 1")
	assert.Contains(t, stdout, "Villages:  2")
	assert.NotContains(t, stdout, "Last indexed: never")
}
