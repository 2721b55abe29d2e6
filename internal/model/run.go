package model

import "time"

// RunStatus tracks the lifecycle of a scoring run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusScoring  RunStatus = "scoring"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one batch scoring invocation.
type Run struct {
	ID        string      `json:"id"`
	Status    RunStatus   `json:"status"`
	Summary   *RunSummary `json:"summary,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// RunSummary aggregates the outcome of a run.
type RunSummary struct {
	ListingsIn   int   `json:"listings_in"`
	Deduplicated int   `json:"deduplicated"`
	Scored       int   `json:"scored"`
	Skipped      int   `json:"skipped"`
	Golden       int   `json:"golden"`
	Good         int   `json:"good"`
	Disqualified int   `json:"disqualified"`
	Segments     int   `json:"segments"`
	DurationMs   int64 `json:"duration_ms"`
}

// PricePoint is one observation in a model/year median time series.
type PricePoint struct {
	Make       string    `json:"make"`
	Model      string    `json:"model"`
	Year       int       `json:"year"`
	Median     float64   `json:"median"`
	ObservedAt time.Time `json:"observed_at"`
}
