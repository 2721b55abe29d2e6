// Package telegram wraps the Telegram Bot API for outbound deal alerts.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Telegram operations used by the alerter.
type Client interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// ClientOption configures the Telegram client.
type ClientOption func(*botClient)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(url string) ClientOption {
	return func(c *botClient) {
		c.baseURL = url
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *botClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default send throttle (1 msg/s per chat).
func WithRateLimit(rps float64) ClientOption {
	return func(c *botClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

// botClient implements Client over the Bot HTTP API.
type botClient struct {
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Telegram bot client. Sends are throttled to 1 msg/s,
// the per-chat limit Telegram enforces.
func NewClient(token string, opts ...ClientOption) Client {
	c := &botClient{
		token:   token,
		baseURL: "https://api.telegram.org",
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(1, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

func (c *botClient) SendMessage(ctx context.Context, chatID, text string) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "telegram: rate limit")
		}
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text, ParseMode: "Markdown"})
	if err != nil {
		return eris.Wrap(err, "telegram: marshal request")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "telegram: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "telegram: send message")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return eris.Wrap(err, "telegram: read response")
	}

	var api apiResponse
	if err := json.Unmarshal(raw, &api); err != nil {
		return eris.Wrapf(err, "telegram: decode response (status %d)", resp.StatusCode)
	}
	if !api.OK {
		return eris.Errorf("telegram: api error (status %d): %s", resp.StatusCode, api.Description)
	}
	return nil
}
