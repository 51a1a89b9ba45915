package openaiEmbedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/niexiaoning/deep-searcher/internal/rag/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embeddingsRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions"`
}

func fakeServer(t *testing.T, dim int, got *embeddingsRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))

		data := make([]map[string]any, 0, len(got.Input))
		// reversed on purpose, the client must reorder by index
		for i := len(got.Input) - 1; i >= 0; i-- {
			vec := make([]float64, dim)
			vec[0] = float64(i) + 0.5
			data = append(data, map[string]any{"object": "embedding", "index": i, "embedding": vec})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  got.Model,
			"data":   data,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbedReturnsFloat64InInputOrder(t *testing.T) {
	var got embeddingsRequest
	srv := fakeServer(t, 1536, &got)

	c, err := New("text-embedding-3-small", embedding.Options{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, 1536, c.Dimension())

	out, err := c.Embed(context.Background(), []string{"a", "b", "c"}, embedding.PurposeDocument)
	require.NoError(t, err)
	require.NotNil(t, out.Float64)
	require.Equal(t, 3, out.Len())
	assert.Equal(t, 0.5, out.Float64[0][0])
	assert.Equal(t, 2.5, out.Float64[2][0])
	assert.Equal(t, "text-embedding-3-small", got.Model)
	assert.Zero(t, got.Dimensions)
}

func TestEmbedSendsExplicitDimension(t *testing.T) {
	var got embeddingsRequest
	srv := fakeServer(t, 256, &got)

	c, err := New("text-embedding-3-large", embedding.Options{APIKey: "sk-test", BaseURL: srv.URL, Dimension: 256})
	require.NoError(t, err)
	assert.Equal(t, 256, c.Dimension())

	_, err = c.Embed(context.Background(), []string{"a"}, embedding.PurposeQuery)
	require.NoError(t, err)
	assert.Equal(t, 256, got.Dimensions)
}

func TestNewConfiguration(t *testing.T) {
	_, err := New("text-embedding-3-small", embedding.Options{})
	assert.ErrorIs(t, err, embedding.ErrConfiguration)

	_, err = New("text-embedding-4-preview", embedding.Options{APIKey: "sk-test"})
	assert.ErrorIs(t, err, embedding.ErrConfiguration)
}

func TestEmbedBackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := New("text-embedding-3-small", embedding.Options{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.Embed(context.Background(), []string{"a"}, embedding.PurposeDocument)
	assert.Error(t, err)
}
