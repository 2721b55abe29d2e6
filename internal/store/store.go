// Package store persists listings, scoring results and run metadata behind a
// backend-neutral interface with SQLite and Postgres implementations.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/motorscout/deals-cli/internal/config"
	"github.com/motorscout/deals-cli/internal/model"
)

// ScoredFilter specifies criteria for listing scoring results.
type ScoredFilter struct {
	RunID       string          `json:"run_id,omitempty"`
	Class       model.DealClass `json:"class,omitempty"`
	Make        string          `json:"make,omitempty"`
	MinDiscount float64         `json:"min_discount,omitempty"`
	Limit       int             `json:"limit,omitempty"`
	Offset      int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the scoring engine.
type Store interface {
	// Raw listings
	UpsertListings(ctx context.Context, listings []model.Listing) (int, error)
	ListListings(ctx context.Context, limit, offset int) ([]model.Listing, error)

	// Scored results
	SaveScored(ctx context.Context, runID string, scored []model.ScoredListing) error
	ListScored(ctx context.Context, filter ScoredFilter) ([]model.ScoredListing, error)
	GetScored(ctx context.Context, id string) (*model.ScoredListing, error)
	SetAIVerdict(ctx context.Context, id, verdict string) error

	// Runs
	CreateRun(ctx context.Context) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, summary *model.RunSummary) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	// Median-price history
	AppendPricePoints(ctx context.Context, points []model.PricePoint) error
	ListPricePoints(ctx context.Context) ([]model.PricePoint, error)

	// Alert bookkeeping
	WasNotified(ctx context.Context, fingerprint string) (bool, error)
	MarkNotified(ctx context.Context, fingerprint string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open constructs the configured backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.SQLitePath)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
