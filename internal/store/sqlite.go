package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/motorscout/deals-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS listings (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	data        TEXT NOT NULL,
	captured_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS scored_listings (
	id          TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	make        TEXT,
	class       TEXT NOT NULL,
	discount    REAL NOT NULL,
	score       REAL NOT NULL,
	risk_band   TEXT NOT NULL,
	ai_verdict  TEXT,
	data        TEXT NOT NULL,
	scored_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL DEFAULT 'queued',
	summary    TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS price_history (
	make        TEXT NOT NULL,
	model       TEXT NOT NULL,
	year        INTEGER NOT NULL,
	median      REAL NOT NULL,
	observed_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS notified_fingerprints (
	fingerprint TEXT PRIMARY KEY,
	notified_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_scored_run_id ON scored_listings(run_id);
CREATE INDEX IF NOT EXISTS idx_scored_class ON scored_listings(class);
CREATE INDEX IF NOT EXISTS idx_scored_make ON scored_listings(make);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_price_history_key ON price_history(make, model, year);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertListings(ctx context.Context, listings []model.Listing) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO listings (id, source, data, captured_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET source = excluded.source, data = excluded.data, captured_at = excluded.captured_at`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close()

	for i := range listings {
		data, err := json.Marshal(&listings[i])
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: marshal listing %s", listings[i].ID)
		}
		if _, err := stmt.ExecContext(ctx, listings[i].ID, listings[i].Source, string(data), listings[i].CapturedAt); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert listing %s", listings[i].ID)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert")
	}
	return len(listings), nil
}

func (s *SQLiteStore) ListListings(ctx context.Context, limit, offset int) ([]model.Listing, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM listings ORDER BY captured_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list listings")
	}
	defer rows.Close()

	var out []model.Listing
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan listing")
		}
		var l model.Listing
		if err := json.Unmarshal([]byte(data), &l); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal listing")
		}
		out = append(out, l)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list listings iterate")
}

func (s *SQLiteStore) SaveScored(ctx context.Context, runID string, scored []model.ScoredListing) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save scored")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO scored_listings (id, run_id, fingerprint, make, class, discount, score, risk_band, data, scored_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET run_id = excluded.run_id, fingerprint = excluded.fingerprint,
		 class = excluded.class, discount = excluded.discount, score = excluded.score,
		 risk_band = excluded.risk_band, data = excluded.data, scored_at = excluded.scored_at`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare save scored")
	}
	defer stmt.Close()

	for i := range scored {
		sc := &scored[i]
		data, err := json.Marshal(sc)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal scored %s", sc.Listing.ID)
		}
		_, err = stmt.ExecContext(ctx,
			sc.Listing.ID, runID, sc.Fingerprint, sc.Listing.Make,
			string(sc.Class), sc.Discount, sc.Score, string(sc.Risk.Band),
			string(data), sc.ScoredAt,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: save scored %s", sc.Listing.ID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit save scored")
}

func (s *SQLiteStore) ListScored(ctx context.Context, filter ScoredFilter) ([]model.ScoredListing, error) {
	query := `SELECT data FROM scored_listings WHERE 1=1`
	var args []any

	if filter.RunID != "" {
		query += ` AND run_id = ?`
		args = append(args, filter.RunID)
	}
	if filter.Class != "" {
		query += ` AND class = ?`
		args = append(args, string(filter.Class))
	}
	if filter.Make != "" {
		query += ` AND make = ?`
		args = append(args, filter.Make)
	}
	if filter.MinDiscount > 0 {
		query += ` AND discount >= ?`
		args = append(args, filter.MinDiscount)
	}
	query += ` ORDER BY score DESC, discount DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list scored")
	}
	defer rows.Close()

	var out []model.ScoredListing
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan scored")
		}
		var sc model.ScoredListing
		if err := json.Unmarshal([]byte(data), &sc); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal scored")
		}
		out = append(out, sc)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list scored iterate")
}

func (s *SQLiteStore) GetScored(ctx context.Context, id string) (*model.ScoredListing, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM scored_listings WHERE id = ?`, id,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get scored %s", id)
	}
	var sc model.ScoredListing
	if err := json.Unmarshal([]byte(data), &sc); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal scored")
	}
	return &sc, nil
}

func (s *SQLiteStore) SetAIVerdict(ctx context.Context, id, verdict string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scored_listings SET ai_verdict = ?,
		 data = json_set(data, '$.ai_verdict', ?) WHERE id = ?`,
		verdict, verdict, id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set ai verdict %s", id)
	}
	return checkRowsAffected(res, "scored listing", id)
}

func (s *SQLiteStore) CreateRun(ctx context.Context) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, status, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return &model.Run{ID: id, Status: model.RunStatusQueued, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, summary *model.RunSummary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal summary")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET summary = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(summaryJSON), string(model.RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, summary, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, summary, created_at, updated_at FROM runs ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) AppendPricePoints(ctx context.Context, points []model.PricePoint) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin append history")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO price_history (make, model, year, median, observed_at) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare append history")
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, p.Make, p.Model, p.Year, p.Median, p.ObservedAt); err != nil {
			return eris.Wrap(err, "sqlite: append price point")
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit append history")
}

func (s *SQLiteStore) ListPricePoints(ctx context.Context) ([]model.PricePoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT make, model, year, median, observed_at FROM price_history ORDER BY observed_at`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list price points")
	}
	defer rows.Close()

	var points []model.PricePoint
	for rows.Next() {
		var p model.PricePoint
		if err := rows.Scan(&p.Make, &p.Model, &p.Year, &p.Median, &p.ObservedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan price point")
		}
		points = append(points, p)
	}
	return points, eris.Wrap(rows.Err(), "sqlite: list price points iterate")
}

func (s *SQLiteStore) WasNotified(ctx context.Context, fingerprint string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM notified_fingerprints WHERE fingerprint = ?`, fingerprint,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "sqlite: was notified")
	}
	return true, nil
}

func (s *SQLiteStore) MarkNotified(ctx context.Context, fingerprint string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notified_fingerprints (fingerprint, notified_at) VALUES (?, ?)
		 ON CONFLICT(fingerprint) DO NOTHING`,
		fingerprint, time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: mark notified")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var summaryJSON sql.NullString

	err := row.Scan(&r.ID, &r.Status, &summaryJSON, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan run")
	}

	if summaryJSON.Valid {
		r.Summary = &model.RunSummary{}
		if err := json.Unmarshal([]byte(summaryJSON.String), r.Summary); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal summary")
		}
	}
	return &r, nil
}
