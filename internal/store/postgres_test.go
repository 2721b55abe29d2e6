package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorscout/deals-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_GetScored_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT data FROM scored_listings WHERE id = \$1`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	result, err := s.GetScored(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveScored_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO scored_listings`).
		WithArgs("l1", "run-1", "vin:TMBJG7NE0J0123456", "Škoda",
			"golden", 25.0, 95.0, "low", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	scored := []model.ScoredListing{{
		Listing:     model.Listing{ID: "l1", Make: "Škoda"},
		Fingerprint: "vin:TMBJG7NE0J0123456",
		Class:       model.DealGolden,
		Discount:    25,
		Score:       95,
		Risk:        model.RiskEstimate{Band: model.RiskLow},
	}}
	err := s.SaveScored(context.Background(), "run-1", scored)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_WasNotified(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT 1 FROM notified_fingerprints`).
		WithArgs("vin:X").
		WillReturnError(pgx.ErrNoRows)

	seen, err := s.WasNotified(context.Background(), "vin:X")
	require.NoError(t, err)
	assert.False(t, seen)

	mock.ExpectQuery(`SELECT 1 FROM notified_fingerprints`).
		WithArgs("vin:Y").
		WillReturnRows(pgxmock.NewRows([]string{"1"}).AddRow(1))

	seen, err = s.WasNotified(context.Background(), "vin:Y")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRunStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs("failed", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateRunStatus(context.Background(), "missing", model.RunStatusFailed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MarkNotified(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO notified_fingerprints`).
		WithArgs("vin:Z", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.MarkNotified(context.Background(), "vin:Z"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
