// Package inspector adds an LLM second opinion on promising deals. It asks
// the model to read the ad the way a suspicious buyer would and to answer
// with a short Slovak verdict plus a trust score.
package inspector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/motorscout/deals-cli/internal/model"
)

// Client defines the Anthropic API operations the inspector needs.
type Client interface {
	CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error)
}

// MessageRequest is our own request type for CreateMessage.
type MessageRequest struct {
	Model     string
	MaxTokens int64
	System    string
	Prompt    string
}

// MessageResponse is our own response type from CreateMessage.
type MessageResponse struct {
	Text  string
	Usage TokenUsage
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
}

// Inspection is the structured result of one listing inspection.
type Inspection struct {
	Verdict     string   `json:"verdict"`
	TrustScore  int      `json:"trust_score"`
	HiddenRisks []string `json:"hidden_risks,omitempty"`
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client sdk.Client
}

// NewClient creates a new Anthropic client backed by the SDK.
func NewClient(apiKey string) Client {
	return &sdkClient{
		client: sdk.NewClient(
			option.WithAPIKey(apiKey),
		),
	}
}

func (c *sdkClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	}

	if req.System != "" {
		params.System = []sdk.TextBlockParam{
			{Text: req.System},
		}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "inspector: create message")
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &MessageResponse{
		Text: text.String(),
		Usage: TokenUsage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}, nil
}

const systemPrompt = `Si skúsený technik v autobazáre. Hodnotíš inzeráty na ojazdené autá a hľadáš v texte to, čo predajca nechce zdôrazniť. Odpovedáš výlučne čistým JSON objektom.`

// Inspector runs listing inspections through a Client.
type Inspector struct {
	client   Client
	model    string
	maxDeals int
}

// New creates an Inspector using the given client and model ID. maxDeals
// bounds how many listings a single run will send to the API.
func New(client Client, modelID string, maxDeals int) *Inspector {
	if maxDeals <= 0 {
		maxDeals = 5
	}
	return &Inspector{client: client, model: modelID, maxDeals: maxDeals}
}

// MaxDeals returns the per-run inspection limit.
func (i *Inspector) MaxDeals() int {
	return i.maxDeals
}

// Inspect analyses a single scored listing. The model is asked for hidden
// defect markers, the likely reason for sale and a 1-10 trust score.
func (i *Inspector) Inspect(ctx context.Context, s *model.ScoredListing) (*Inspection, error) {
	resp, err := i.client.CreateMessage(ctx, MessageRequest{
		Model:     i.model,
		MaxTokens: 512,
		System:    systemPrompt,
		Prompt:    buildPrompt(&s.Listing),
	})
	if err != nil {
		return nil, eris.Wrap(err, "inspector: inspect listing")
	}

	insp, err := parseInspection(resp.Text)
	if err != nil {
		zap.L().Warn("inspector: unparseable model output",
			zap.String("listing_id", s.Listing.ID),
			zap.Error(err),
		)
		// The model produced something, just not valid JSON. Keep the run
		// going with a neutral verdict instead of failing the batch.
		return &Inspection{Verdict: "Chyba formátu AI odpovede", TrustScore: 5}, nil
	}

	zap.L().Info("inspector: listing inspected",
		zap.String("listing_id", s.Listing.ID),
		zap.Int("trust_score", insp.TrustScore),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
	)
	return insp, nil
}

func buildPrompt(l *model.Listing) string {
	var b strings.Builder
	b.WriteString("Analyzuj tento inzerát na auto.\n")
	fmt.Fprintf(&b, "Titulok: %s\n", l.Title)
	fmt.Fprintf(&b, "Popis: %s\n", l.Description)
	fmt.Fprintf(&b, "Cena: %.0f EUR\n", l.Price)
	fmt.Fprintf(&b, "Ročník: %d\n", l.Year)
	fmt.Fprintf(&b, "KM: %d\n", l.Mileage)
	b.WriteString(`
Tvoja úloha:
1. Hľadaj skryté vady a náznaky problémov (napr. "po repase", "klepe", "dymí", "bez záruky", "dovoz", "búrané").
2. Odhadni dôvod predaja a mieru naliehavosti (napr. sťahovanie, finančná tieseň, nové auto).

Výstup vráť striktne ako čistý JSON objekt (bez markdown formátovania, bez ` + "```" + `json):
{
    "verdict": "Krátky verdikt max 15 slov po slovensky",
    "trust_score": (číslo 1-10, kde 10 je absolútne dôveryhodné),
    "hidden_risks": ["zoznam", "rizík"]
}
`)
	return b.String()
}

// parseInspection decodes the model output, tolerating markdown fences the
// model occasionally adds despite instructions.
func parseInspection(text string) (*Inspection, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var insp Inspection
	if err := json.Unmarshal([]byte(cleaned), &insp); err != nil {
		return nil, eris.Wrap(err, "inspector: decode response")
	}
	if insp.TrustScore < 1 || insp.TrustScore > 10 {
		return nil, eris.Errorf("inspector: trust score %d out of range", insp.TrustScore)
	}
	return &insp, nil
}
