package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionBody(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
}

// TestCompleteReturnsFirstChoice checks the happy path against a stub
// server, including the request the client actually sends.
func TestCompleteReturnsFirstChoice(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody), "request body should be JSON")
		assert.Equal(t, "/chat/completions", r.URL.Path, "the chat completions path should be used")
		_ = json.NewEncoder(w).Encode(completionBody("  Net profit grew 21.6%.  "))
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	got, err := client.Complete(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err, "Complete should succeed")

	assert.Equal(t, "Net profit grew 21.6%.", got, "the content should be trimmed")
	assert.Equal(t, "Bearer test-key", gotAuth, "the key should ride the Authorization header")
	assert.Equal(t, "gpt-3.5-turbo", gotBody["model"], "the default model should be sent")
	messages := gotBody["messages"].([]any)
	require.Len(t, messages, 2, "system and user messages should be sent")
	assert.Equal(t, "system", messages[0].(map[string]any)["role"], "the system message comes first")
}

// TestCompleteWithoutKey checks the not-configured sentinel.
func TestCompleteWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	client := NewClient(Config{BaseURL: "http://unused"}, nil)

	assert.False(t, client.Available(), "no key means not available")
	_, err := client.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrNotConfigured, "Complete without a key should return the sentinel")
}

// TestCompleteRetriesServerErrors checks that a transient 500 is retried.
func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(completionBody("recovered"))
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, MaxRetries: 2}, nil)
	got, err := client.Complete(context.Background(), "s", "u")
	require.NoError(t, err, "a transient failure should be retried away")

	assert.Equal(t, "recovered", got, "the retried response should be returned")
	assert.Equal(t, int32(2), calls.Load(), "exactly one retry should have happened")
}

// TestCompleteAuthErrorIsPermanent checks that a 401 fails fast instead of
// retrying a hopeless request.
func TestCompleteAuthErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "bad-key", BaseURL: srv.URL, MaxRetries: 3}, nil)
	_, err := client.Complete(context.Background(), "s", "u")

	assert.Error(t, err, "an auth failure should surface")
	assert.Equal(t, int32(1), calls.Load(), "auth failures should not be retried")
}

// TestCompleteNoChoices checks the empty-response guard.
func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	_, err := client.Complete(context.Background(), "s", "u")
	assert.ErrorContains(t, err, "no choices", "an empty choice list should error")
}
