package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/motorscout/deals-cli/internal/model"
)

// Pool abstracts the pgx pool surface the store uses, so tests can substitute
// a mock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS listings (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	data        JSONB NOT NULL,
	captured_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS scored_listings (
	id          TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	make        TEXT,
	class       TEXT NOT NULL,
	discount    DOUBLE PRECISION NOT NULL,
	score       DOUBLE PRECISION NOT NULL,
	risk_band   TEXT NOT NULL,
	ai_verdict  TEXT,
	data        JSONB NOT NULL,
	scored_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL DEFAULT 'queued',
	summary    JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS price_history (
	make        TEXT NOT NULL,
	model       TEXT NOT NULL,
	year        INT NOT NULL,
	median      DOUBLE PRECISION NOT NULL,
	observed_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS notified_fingerprints (
	fingerprint TEXT PRIMARY KEY,
	notified_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_scored_run_id ON scored_listings(run_id);
CREATE INDEX IF NOT EXISTS idx_scored_class ON scored_listings(class);
CREATE INDEX IF NOT EXISTS idx_scored_make ON scored_listings(make);
CREATE INDEX IF NOT EXISTS idx_price_history_key ON price_history(make, model, year);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) UpsertListings(ctx context.Context, listings []model.Listing) (int, error) {
	for i := range listings {
		data, err := json.Marshal(&listings[i])
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal listing %s", listings[i].ID)
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO listings (id, source, data, captured_at) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE SET source = excluded.source, data = excluded.data, captured_at = excluded.captured_at`,
			listings[i].ID, listings[i].Source, data, listings[i].CapturedAt,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: upsert listing %s", listings[i].ID)
		}
	}
	return len(listings), nil
}

func (s *PostgresStore) ListListings(ctx context.Context, limit, offset int) ([]model.Listing, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM listings ORDER BY captured_at DESC, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list listings")
	}
	defer rows.Close()

	var out []model.Listing
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan listing")
		}
		var l model.Listing
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal listing")
		}
		out = append(out, l)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list listings iterate")
}

func (s *PostgresStore) SaveScored(ctx context.Context, runID string, scored []model.ScoredListing) error {
	for i := range scored {
		sc := &scored[i]
		data, err := json.Marshal(sc)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal scored %s", sc.Listing.ID)
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO scored_listings (id, run_id, fingerprint, make, class, discount, score, risk_band, data, scored_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 ON CONFLICT (id) DO UPDATE SET run_id = excluded.run_id, fingerprint = excluded.fingerprint,
			 class = excluded.class, discount = excluded.discount, score = excluded.score,
			 risk_band = excluded.risk_band, data = excluded.data, scored_at = excluded.scored_at`,
			sc.Listing.ID, runID, sc.Fingerprint, sc.Listing.Make,
			string(sc.Class), sc.Discount, sc.Score, string(sc.Risk.Band),
			data, sc.ScoredAt,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: save scored %s", sc.Listing.ID)
		}
	}
	return nil
}

func (s *PostgresStore) ListScored(ctx context.Context, filter ScoredFilter) ([]model.ScoredListing, error) {
	query := `SELECT data FROM scored_listings WHERE 1=1`
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if filter.RunID != "" {
		query += ` AND run_id = ` + arg(filter.RunID)
	}
	if filter.Class != "" {
		query += ` AND class = ` + arg(string(filter.Class))
	}
	if filter.Make != "" {
		query += ` AND make = ` + arg(filter.Make)
	}
	if filter.MinDiscount > 0 {
		query += ` AND discount >= ` + arg(filter.MinDiscount)
	}
	query += ` ORDER BY score DESC, discount DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ` + arg(limit)
	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list scored")
	}
	defer rows.Close()

	var out []model.ScoredListing
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan scored")
		}
		var sc model.ScoredListing
		if err := json.Unmarshal(data, &sc); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal scored")
		}
		out = append(out, sc)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list scored iterate")
}

func (s *PostgresStore) GetScored(ctx context.Context, id string) (*model.ScoredListing, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM scored_listings WHERE id = $1`, id,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get scored %s", id)
	}
	var sc model.ScoredListing
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal scored")
	}
	return &sc, nil
}

func (s *PostgresStore) SetAIVerdict(ctx context.Context, id, verdict string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE scored_listings SET ai_verdict = $1,
		 data = jsonb_set(data, '{ai_verdict}', to_jsonb($1::text)) WHERE id = $2`,
		verdict, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set ai verdict %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("scored listing not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, status, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		id, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return &model.Run{ID: id, Status: model.RunStatusQueued, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, summary *model.RunSummary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal summary")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET summary = $1, status = $2, updated_at = $3 WHERE id = $4`,
		summaryJSON, string(model.RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, status, summary, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	)
	r, err := scanRun(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, status, summary, created_at, updated_at FROM runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) AppendPricePoints(ctx context.Context, points []model.PricePoint) error {
	for _, p := range points {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO price_history (make, model, year, median, observed_at) VALUES ($1, $2, $3, $4, $5)`,
			p.Make, p.Model, p.Year, p.Median, p.ObservedAt,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: append price point")
		}
	}
	return nil
}

func (s *PostgresStore) ListPricePoints(ctx context.Context) ([]model.PricePoint, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT make, model, year, median, observed_at FROM price_history ORDER BY observed_at`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list price points")
	}
	defer rows.Close()

	var points []model.PricePoint
	for rows.Next() {
		var p model.PricePoint
		if err := rows.Scan(&p.Make, &p.Model, &p.Year, &p.Median, &p.ObservedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan price point")
		}
		points = append(points, p)
	}
	return points, eris.Wrap(rows.Err(), "postgres: list price points iterate")
}

func (s *PostgresStore) WasNotified(ctx context.Context, fingerprint string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM notified_fingerprints WHERE fingerprint = $1`, fingerprint,
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "postgres: was notified")
	}
	return true, nil
}

func (s *PostgresStore) MarkNotified(ctx context.Context, fingerprint string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO notified_fingerprints (fingerprint, notified_at) VALUES ($1, $2)
		 ON CONFLICT (fingerprint) DO NOTHING`,
		fingerprint, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: mark notified")
}

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
