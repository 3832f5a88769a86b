package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathsight/grader/internal/common"
	"github.com/mathsight/grader/internal/llm"
)

func chatBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(b)
}

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		APIKey:       "test-key",
		BaseURL:      baseURL,
		Timeout:      2 * time.Second,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}, nil)
}

func TestClientComplete(t *testing.T) {
	req := llm.ChatRequest{
		Model:    "gpt-4o",
		Messages: []llm.ChatMessage{llm.TextMessage(llm.RoleUser, "grade this")},
	}

	t.Run("Should return the first choice content", func(t *testing.T) {
		var auth atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth.Store(r.Header.Get("Authorization"))
			assert.Equal(t, "/chat/completions", r.URL.Path)
			_, _ = w.Write([]byte(chatBody(`{"score": 90}`)))
		}))
		defer srv.Close()

		got, err := newTestClient(srv.URL).Complete(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, `{"score": 90}`, got)
		assert.Equal(t, "Bearer test-key", auth.Load())
	})

	t.Run("Should retry transient failures then succeed", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(chatBody("ok")))
		}))
		defer srv.Close()

		got, err := newTestClient(srv.URL).Complete(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("Should fail as ServiceUnavailable after exhausting retries", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).Complete(context.Background(), req)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrServiceUnavailable)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("Should not retry a malformed success body", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			_, _ = w.Write([]byte(`this is not the chat schema`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).Complete(context.Background(), req)
		require.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrServiceUnavailable)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Should not retry a 400", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).Complete(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Should surface cancellation as the context error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Drain the body so the server's background read can observe the
			// client disconnect and cancel r.Context(); otherwise Close hangs.
			_, _ = io.Copy(io.Discard, r.Body)
			<-r.Context().Done()
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()
		_, err := newTestClient(srv.URL).Complete(ctx, req)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Should fail on an empty choice list", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices": []}`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).Complete(context.Background(), req)
		require.Error(t, err)
	})
}
