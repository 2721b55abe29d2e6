package inspector

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorscout/deals-cli/internal/model"
)

type fakeClient struct {
	lastReq MessageRequest
	text    string
	err     error
}

func (f *fakeClient) CreateMessage(_ context.Context, req MessageRequest) (*MessageResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &MessageResponse{Text: f.text}, nil
}

func sampleScored() *model.ScoredListing {
	return &model.ScoredListing{
		Listing: model.Listing{
			ID:          "l-1",
			Title:       "Škoda Octavia 2.0 TDI",
			Description: "po veľkom servise, dovoz z Nemecka",
			Price:       9000,
			Year:        2019,
			Mileage:     155000,
		},
	}
}

func TestInspectParsesCleanJSON(t *testing.T) {
	client := &fakeClient{
		text: `{"verdict": "Dovoz bez histórie, inak v poriadku", "trust_score": 6, "hidden_risks": ["dovoz"]}`,
	}
	insp, err := New(client, "claude-haiku-4-5-20251001", 5).Inspect(context.Background(), sampleScored())
	require.NoError(t, err)

	assert.Equal(t, "Dovoz bez histórie, inak v poriadku", insp.Verdict)
	assert.Equal(t, 6, insp.TrustScore)
	assert.Equal(t, []string{"dovoz"}, insp.HiddenRisks)
}

func TestInspectStripsMarkdownFences(t *testing.T) {
	client := &fakeClient{
		text: "```json\n{\"verdict\": \"OK\", \"trust_score\": 8, \"hidden_risks\": []}\n```",
	}
	insp, err := New(client, "claude-haiku-4-5-20251001", 5).Inspect(context.Background(), sampleScored())
	require.NoError(t, err)

	assert.Equal(t, "OK", insp.Verdict)
	assert.Equal(t, 8, insp.TrustScore)
}

func TestInspectFallsBackOnGarbage(t *testing.T) {
	client := &fakeClient{text: "forty-two"}
	insp, err := New(client, "claude-haiku-4-5-20251001", 5).Inspect(context.Background(), sampleScored())
	require.NoError(t, err)

	assert.Equal(t, "Chyba formátu AI odpovede", insp.Verdict)
	assert.Equal(t, 5, insp.TrustScore)
	assert.Empty(t, insp.HiddenRisks)
}

func TestInspectRejectsOutOfRangeTrustScore(t *testing.T) {
	client := &fakeClient{text: `{"verdict": "x", "trust_score": 42}`}
	insp, err := New(client, "claude-haiku-4-5-20251001", 5).Inspect(context.Background(), sampleScored())
	require.NoError(t, err)

	assert.Equal(t, 5, insp.TrustScore)
}

func TestInspectPropagatesAPIError(t *testing.T) {
	client := &fakeClient{err: eris.New("overloaded")}
	_, err := New(client, "claude-haiku-4-5-20251001", 5).Inspect(context.Background(), sampleScored())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inspect listing")
}

func TestPromptCarriesListingFields(t *testing.T) {
	client := &fakeClient{text: `{"verdict": "x", "trust_score": 5}`}
	_, err := New(client, "claude-haiku-4-5-20251001", 5).Inspect(context.Background(), sampleScored())
	require.NoError(t, err)

	assert.Contains(t, client.lastReq.Prompt, "Škoda Octavia 2.0 TDI")
	assert.Contains(t, client.lastReq.Prompt, "9000 EUR")
	assert.Contains(t, client.lastReq.Prompt, "KM: 155000")
	assert.Equal(t, "claude-haiku-4-5-20251001", client.lastReq.Model)
}

func TestMaxDealsDefault(t *testing.T) {
	assert.Equal(t, 5, New(&fakeClient{}, "m", 0).MaxDeals())
	assert.Equal(t, 3, New(&fakeClient{}, "m", 3).MaxDeals())
}
