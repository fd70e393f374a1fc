package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/kaveri"
	kaverihttp "github.com/fwojciec/kaveri/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FetchDistricts(t *testing.T) {
	t.Parallel()

	t.Run("maps rows and skips the placeholder", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			assert.Equal(t, nethttp.MethodPost, r.Method)
			assert.Equal(t, "/api/GetDistrictAsync", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			fmt.Fprint(w, `[
				{"districtCode": 0, "districtNamee": "Select District", "districtNamek": ""},
				{"districtCode": 11, "districtNamee": "Bagalkot", "districtNamek": "ಬಾಗಲಕೋಟೆ"}
			]`)
		}))
		defer srv.Close()

		c := kaverihttp.NewClient(kaverihttp.WithBaseURL(srv.URL))
		districts, err := c.FetchDistricts(context.Background())

		require.NoError(t, err)
		require.Len(t, districts, 1)
		assert.Equal(t, 11, districts[0].Code)
		assert.Equal(t, "Bagalkot", districts[0].Name)
		assert.Equal(t, "ಬಾಗಲಕೋಟೆ", districts[0].LocalName)
	})

	t.Run("server failure is EUNAVAILABLE", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			w.WriteHeader(nethttp.StatusBadGateway)
		}))
		defer srv.Close()

		c := kaverihttp.NewClient(kaverihttp.WithBaseURL(srv.URL))
		_, err := c.FetchDistricts(context.Background())
		assert.Equal(t, kaveri.EUNAVAILABLE, kaveri.ErrorCode(err))
	})
}

func TestClient_FetchTalukas(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "/api/GetTalukaAsync", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "11", payload["districtCode"]) // codes go over the wire as strings

		fmt.Fprint(w, `[{"talukCode": 183, "talukNamee": "Badami", "talukNamek": "ಬಾದಾಮಿ"}]`)
	}))
	defer srv.Close()

	c := kaverihttp.NewClient(kaverihttp.WithBaseURL(srv.URL))
	talukas, err := c.FetchTalukas(context.Background(), 11)

	require.NoError(t, err)
	require.Len(t, talukas, 1)
	assert.Equal(t, 183, talukas[0].Code)
	assert.Equal(t, "Badami", talukas[0].Name)
	assert.Equal(t, 11, talukas[0].DistrictCode)
}

func TestClient_FetchHoblis(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "/api/GetHobliAsync", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "183", payload["talukaCode"])

		fmt.Fprint(w, `[{"hoblicode": 406, "hoblinamee": "Kerur", "hoblinamek": "ಕೆರೂರು"}]`)
	}))
	defer srv.Close()

	c := kaverihttp.NewClient(kaverihttp.WithBaseURL(srv.URL))
	hoblis, err := c.FetchHoblis(context.Background(), 183)

	require.NoError(t, err)
	require.Len(t, hoblis, 1)
	assert.Equal(t, 406, hoblis[0].Code)
	assert.Equal(t, 183, hoblis[0].TalukCode)
}

func TestClient_FetchVillages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "/api/GetVillageAsync", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "406", payload["hobliCode"])

		fmt.Fprint(w, `[
			{"villagecode": 15305, "villagenamee": "Belur", "villagenamek": "ಬೇಲೂರು", "isurban": false},
			{"villagecode": 15342, "villagenamee": "Kerur Town", "villagenamek": "", "isurban": true}
		]`)
	}))
	defer srv.Close()

	c := kaverihttp.NewClient(kaverihttp.WithBaseURL(srv.URL))
	villages, err := c.FetchVillages(context.Background(), 406)

	require.NoError(t, err)
	require.Len(t, villages, 2)
	assert.Equal(t, 15305, villages[0].Code)
	assert.Equal(t, 406, villages[0].HobliCode)
	assert.False(t, villages[0].IsUrban)
	assert.True(t, villages[1].IsUrban)
}
