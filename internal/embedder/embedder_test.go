package embedder

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

func TestCache(t *testing.T) {
	t.Run("get returns a copy", func(t *testing.T) {
		cache := NewCache(10)
		cache.Set("h", []float32{1, 2, 3})

		vec, ok := cache.Get("h")
		require.True(t, ok)
		vec[0] = 99

		again, ok := cache.Get("h")
		require.True(t, ok)
		assert.Equal(t, float32(1), again[0], "caller mutation must not pollute the cache")
	})

	t.Run("miss", func(t *testing.T) {
		cache := NewCache(10)
		_, ok := cache.Get("missing")
		assert.False(t, ok)
	})

	t.Run("LRU eviction", func(t *testing.T) {
		cache := NewCache(2)
		cache.Set("a", []float32{1})
		cache.Set("b", []float32{2})
		cache.Set("c", []float32{3})

		assert.Equal(t, 2, cache.Size())
		_, ok := cache.Get("a")
		assert.False(t, ok, "oldest entry should be evicted")
	})

	t.Run("non-positive size falls back to default", func(t *testing.T) {
		cache := NewCache(0)
		cache.Set("a", []float32{1})
		_, ok := cache.Get("a")
		assert.True(t, ok)
	})
}

func TestComputeHash(t *testing.T) {
	assert.Equal(t, ComputeHash("spawn entity"), ComputeHash("spawn entity"))
	assert.NotEqual(t, ComputeHash("spawn entity"), ComputeHash("despawn entity"))
	assert.Len(t, ComputeHash(""), 64)
}

// embeddingsResponse mirrors the OpenAI-compatible embeddings payload.
type embeddingsResponse struct {
	Object string `json:"object"`
	Data   []struct {
		Object    string    `json:"object"`
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
}

func newEmbeddingsServer(t *testing.T, vector []float32, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		resp := embeddingsResponse{Object: "list", Model: "test-model"}
		resp.Data = append(resp.Data, struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}{Object: "embedding", Embedding: vector})

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIProvider_Embed(t *testing.T) {
	expected := []float32{0.1, 0.2, 0.3, 0.4}
	var calls atomic.Int32
	server := newEmbeddingsServer(t, expected, &calls)
	defer server.Close()

	p := NewOpenAIProvider(Config{
		BaseURL: server.URL,
		APIKey:  "lm-studio",
		Model:   "test-model",
	})

	vec, err := p.Embed(context.Background(), "spawn entity")
	require.NoError(t, err)
	assert.Equal(t, expected, vec)
	assert.Equal(t, "test-model", p.Model())
}

func TestOpenAIProvider_EmbedCachesByContent(t *testing.T) {
	var calls atomic.Int32
	server := newEmbeddingsServer(t, []float32{1, 2}, &calls)
	defer server.Close()

	p := NewOpenAIProvider(Config{BaseURL: server.URL, APIKey: "k", Model: "m"})

	_, err := p.Embed(context.Background(), "same text")
	require.NoError(t, err)
	_, err = p.Embed(context.Background(), "same text")
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load(), "second identical call must hit the cache")
}

func TestOpenAIProvider_EmptyText(t *testing.T) {
	p := NewOpenAIProvider(Config{APIKey: "k", Model: "m"})
	_, err := p.Embed(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestOpenAIProvider_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[],"model":"m"}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider(Config{BaseURL: server.URL, APIKey: "k", Model: "m"})
	_, err := p.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, ErrProviderFailed)
}

func TestOpenAIProvider_RetriesOnFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "temporarily overloaded", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","embedding":[0.5],"index":0}],"model":"m"}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider(Config{BaseURL: server.URL, APIKey: "k", Model: "m"})

	vec, err := p.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5}, vec)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRetryWithBackoff(t *testing.T) {
	t.Run("gives up after max retries", func(t *testing.T) {
		cfg := RetryConfig{MaxRetries: 3, BaseDelay: 1, MaxDelay: 10, Multiplier: 2}
		attempts := 0
		_, err := retryWithBackoff(context.Background(), cfg, func() (int, error) {
			attempts++
			return 0, assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, 3, attempts)
	})

	t.Run("context cancellation stops retries", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		cfg := DefaultRetryConfig()
		_, err := retryWithBackoff(ctx, cfg, func() (int, error) {
			return 0, assert.AnError
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
