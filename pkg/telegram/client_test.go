package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(apiResponse{OK: true})
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL), WithRateLimit(0))
	err := c.SendMessage(context.Background(), "chat-1", "🌟 golden deal")
	require.NoError(t, err)

	assert.Equal(t, "chat-1", got.ChatID)
	assert.Equal(t, "🌟 golden deal", got.Text)
}

func TestSendMessage_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(apiResponse{OK: false, Description: "chat not found"})
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL), WithRateLimit(0))
	err := c.SendMessage(context.Background(), "bad", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}
