package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorscout/deals-cli/internal/model"
	"github.com/motorscout/deals-cli/internal/store"
)

func newAPIStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func seedScored(t *testing.T, st store.Store) string {
	t.Helper()
	ctx := context.Background()

	run, err := st.CreateRun(ctx)
	require.NoError(t, err)

	scored := []model.ScoredListing{
		{
			Listing: model.Listing{
				ID: "l-1", Source: "autobazar", Title: "Škoda Octavia 2.0 TDI",
				Make: "Škoda", Model: "Octavia", Year: 2019, Price: 9000,
			},
			Fingerprint: "VIN:TMB000000000000001",
			Class:       model.DealGolden,
			Discount:    25,
			Score:       95,
			ScoredAt:    time.Now().UTC(),
		},
		{
			Listing: model.Listing{
				ID: "l-2", Source: "autovia", Title: "VW Golf 1.5 TSI",
				Make: "Volkswagen", Model: "Golf", Year: 2020, Price: 14000,
			},
			Fingerprint: "VIN:WVW000000000000002",
			Class:       model.DealFair,
			Discount:    4,
			Score:       50,
			ScoredAt:    time.Now().UTC(),
		},
	}
	require.NoError(t, st.SaveScored(ctx, run.ID, scored))
	return run.ID
}

func TestAPIHealth(t *testing.T) {
	srv := httptest.NewServer(apiRouter(newAPIStore(t)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestAPIDealsListAndFilter(t *testing.T) {
	st := newAPIStore(t)
	seedScored(t, st)

	srv := httptest.NewServer(apiRouter(st))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/deals")
	require.NoError(t, err)
	defer resp.Body.Close()

	var all []model.ScoredListing
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
	require.Len(t, all, 2)
	assert.Equal(t, model.DealGolden, all[0].Class)

	resp, err = http.Get(srv.URL + "/api/deals?class=golden")
	require.NoError(t, err)
	defer resp.Body.Close()

	var golden []model.ScoredListing
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&golden))
	require.Len(t, golden, 1)
	assert.Equal(t, "l-1", golden[0].Listing.ID)

	// Brand aliases match the canonical stored make.
	resp, err = http.Get(srv.URL + "/api/deals?make=skoda")
	require.NoError(t, err)
	defer resp.Body.Close()

	var skoda []model.ScoredListing
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&skoda))
	require.Len(t, skoda, 1)
	assert.Equal(t, "Škoda", skoda[0].Listing.Make)
}

func TestAPIDealByID(t *testing.T) {
	st := newAPIStore(t)
	seedScored(t, st)

	srv := httptest.NewServer(apiRouter(st))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/deals/l-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var scored model.ScoredListing
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&scored))
	assert.Equal(t, "Škoda Octavia 2.0 TDI", scored.Listing.Title)

	resp, err = http.Get(srv.URL + "/api/deals/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIRunsList(t *testing.T) {
	st := newAPIStore(t)
	runID := seedScored(t, st)

	srv := httptest.NewServer(apiRouter(st))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/runs")
	require.NoError(t, err)
	defer resp.Body.Close()

	var runs []model.Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
}
