package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/motorscout/deals-cli/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	var buf bytes.Buffer
	formatRunsList(&buf, []model.Run{
		{
			ID:        "run-1",
			Status:    model.RunStatusComplete,
			Summary:   &model.RunSummary{Scored: 42, Golden: 3},
			CreatedAt: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:     "run-2",
			Status: model.RunStatusFailed,
		},
	})

	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "-")
}
