package chatcompletions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"quran-irc-bot/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderChatSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "mistral-small-latest", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "patience", body.Messages[1].Content)
		assert.InDelta(t, 0.2, body.Temperature, 1e-9)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"Language: en:LTR; 2:153"}}]}`))
	}))
	defer server.Close()

	p := NewProvider("test-key", server.URL, "mistral-small-latest", nil)
	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: "system", Content: "instructions"},
		{Role: "user", Content: "patience"},
	}, llm.WithTemperature(0.2))

	require.NoError(t, err)
	assert.Equal(t, "Language: en:LTR; 2:153", out)
}

func TestProviderChatStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("busy"))
	}))
	defer server.Close()

	p := NewProvider("k", server.URL, "m", nil)
	_, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "x"}})

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, "busy", statusErr.Body)
}

func TestProviderChatMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	p := NewProvider("k", server.URL, "m", nil)
	_, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "x"}})

	assert.Error(t, err)
}

func TestProviderOmitsUnsetTemperature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.NotContains(t, raw, "temperature")
		assert.Equal(t, "m", raw["model"])
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	p := NewProvider("", server.URL, "m", nil)
	out, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "x"}})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}
