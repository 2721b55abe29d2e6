package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorscout/deals-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleScored(id string, class model.DealClass, discount float64) model.ScoredListing {
	return model.ScoredListing{
		Listing: model.Listing{
			ID: id, Source: "autobazar", Title: "Škoda Octavia",
			Make: "Škoda", Model: "Octavia", Year: 2018, Mileage: 160000, Price: 9000,
			CapturedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		},
		Fingerprint: "fuzzy:Škoda|Octavia|2018|9000|160000|poprad",
		Tier:        model.TierMid,
		Class:       class,
		Discount:    discount,
		Score:       95,
		Risk:        model.RiskEstimate{Score: 25, Band: model.RiskLow},
		ScoredAt:    time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestSQLite_ListingsRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	listings := []model.Listing{
		{ID: "a", Source: "autobazar", Title: "Škoda Octavia", Price: 9000, CapturedAt: time.Now().UTC()},
		{ID: "b", Source: "autovia", Title: "VW Golf", Price: 7000, CapturedAt: time.Now().UTC()},
	}
	n, err := s.UpsertListings(ctx, listings)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Upsert again with a changed price; no duplicate rows.
	listings[0].Price = 8800
	_, err = s.UpsertListings(ctx, listings[:1])
	require.NoError(t, err)

	got, err := s.ListListings(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	byID := map[string]model.Listing{}
	for _, l := range got {
		byID[l.ID] = l
	}
	assert.Equal(t, 8800.0, byID["a"].Price)
	assert.Equal(t, "VW Golf", byID["b"].Title)
}

func TestSQLite_ScoredRoundtripAndFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx)
	require.NoError(t, err)

	scored := []model.ScoredListing{
		sampleScored("golden-1", model.DealGolden, 25),
		sampleScored("fair-1", model.DealFair, 2),
	}
	require.NoError(t, s.SaveScored(ctx, run.ID, scored))

	golden, err := s.ListScored(ctx, ScoredFilter{RunID: run.ID, Class: model.DealGolden})
	require.NoError(t, err)
	require.Len(t, golden, 1)
	assert.Equal(t, "golden-1", golden[0].Listing.ID)
	assert.Equal(t, 25.0, golden[0].Discount)

	deep, err := s.ListScored(ctx, ScoredFilter{MinDiscount: 10})
	require.NoError(t, err)
	require.Len(t, deep, 1)

	one, err := s.GetScored(ctx, "fair-1")
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, model.DealFair, one.Class)

	missing, err := s.GetScored(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLite_SetAIVerdict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx)
	require.NoError(t, err)
	require.NoError(t, s.SaveScored(ctx, run.ID, []model.ScoredListing{sampleScored("x", model.DealGolden, 25)}))

	require.NoError(t, s.SetAIVerdict(ctx, "x", "looks clean"))

	got, err := s.GetScored(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "looks clean", got.AIVerdict)

	assert.Error(t, s.SetAIVerdict(ctx, "nope", "x"))
}

func TestSQLite_RunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusScoring))

	summary := &model.RunSummary{ListingsIn: 100, Scored: 95, Golden: 3}
	require.NoError(t, s.CompleteRun(ctx, run.ID, summary))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Summary)
	assert.Equal(t, 3, got.Summary.Golden)

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	assert.Error(t, s.UpdateRunStatus(ctx, "missing", model.RunStatusFailed))
}

func TestSQLite_PriceHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	points := []model.PricePoint{
		{Make: "Škoda", Model: "Octavia", Year: 2018, Median: 11500, ObservedAt: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)},
		{Make: "Škoda", Model: "Octavia", Year: 2018, Median: 12000, ObservedAt: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, s.AppendPricePoints(ctx, points))

	got, err := s.ListPricePoints(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 11500.0, got[0].Median)
	assert.Equal(t, 12000.0, got[1].Median)
}

func TestSQLite_NotifiedFingerprints(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fp := "vin:TMBJG7NE0J0123456"

	seen, err := s.WasNotified(ctx, fp)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.MarkNotified(ctx, fp))
	require.NoError(t, s.MarkNotified(ctx, fp)) // idempotent

	seen, err = s.WasNotified(ctx, fp)
	require.NoError(t, err)
	assert.True(t, seen)
}
