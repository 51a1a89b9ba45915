package embeddingAdapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/niexiaoning/deep-searcher/internal/domain/commonModels"
	"github.com/niexiaoning/deep-searcher/internal/rag/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	dim      int
	float64s bool
	calls    [][]string
	purposes []embedding.Purpose
	err      error
	short    bool
}

func (f *fakeBackend) Dimension() int { return f.dim }

func (f *fakeBackend) Embed(_ context.Context, texts []string, purpose embedding.Purpose) (embedding.Embeddings, error) {
	f.calls = append(f.calls, texts)
	f.purposes = append(f.purposes, purpose)
	if f.err != nil {
		return embedding.Embeddings{}, f.err
	}
	n := len(texts)
	if f.short {
		n--
	}
	if f.float64s {
		out := make([][]float64, n)
		for i := range out {
			out[i] = make([]float64, f.dim)
			out[i][0] = float64(len(texts[i]))
		}
		return embedding.Embeddings{Float64: out}, nil
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = make([]float32, f.dim)
		out[i][0] = float32(len(texts[i]))
	}
	return embedding.Embeddings{Float32: out}, nil
}

type fakeMulti struct {
	fakeBackend
}

func (f *fakeMulti) Encode(_ context.Context, texts []string, _ embedding.Purpose) ([]embedding.Representation, error) {
	out := make([]embedding.Representation, len(texts))
	for i := range texts {
		out[i] = embedding.Representation{
			Dense:   make([]float32, f.dim),
			Sparse:  map[uint32]float32{7: 0.5},
			ColBERT: [][]float32{{1}},
		}
	}
	return out, nil
}

func TestEmbedDocumentsNormalizesFloat64(t *testing.T) {
	for _, f64 := range []bool{false, true} {
		b := &fakeBackend{dim: 4, float64s: f64}
		a, err := newAdapter(embedding.KindSentenceTransformer, "BAAI/test", b, 0)
		require.NoError(t, err)

		out, err := a.EmbedDocuments(context.Background(), []string{"a", "bb", "ccc"})
		require.NoError(t, err)
		require.Len(t, out, 3)
		for i, v := range out {
			assert.Len(t, v, a.Dimension())
			assert.Equal(t, float32(i+1), v[0])
		}
		assert.Equal(t, embedding.PurposeDocument, b.purposes[0])
	}
}

func TestEmbedDocumentsEmptyInput(t *testing.T) {
	b := &fakeBackend{dim: 4}
	a, err := newAdapter(embedding.KindJina, "jina-test", b, 0)
	require.NoError(t, err)

	out, err := a.EmbedDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Empty(t, b.calls)
}

func TestEmbedQuery(t *testing.T) {
	b := &fakeBackend{dim: 8}
	a, err := newAdapter(embedding.KindOpenAI, "text-embedding-test", b, 0)
	require.NoError(t, err)

	v, err := a.EmbedQuery(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, v, 8)
	assert.Equal(t, embedding.PurposeQuery, b.purposes[0])
}

func TestBackendFailurePropagates(t *testing.T) {
	boom := errors.New("backend down")
	a, err := newAdapter(embedding.KindDefault, "default", &fakeBackend{dim: 4, err: boom}, 0)
	require.NoError(t, err)

	_, err = a.EmbedDocuments(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, boom)

	a, err = newAdapter(embedding.KindDefault, "default", &fakeBackend{dim: 4, short: true}, 0)
	require.NoError(t, err)
	_, err = a.EmbedDocuments(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, embedding.ErrUnexpectedResponseLength)
}

func TestEmbedChunksBatches(t *testing.T) {
	b := &fakeBackend{dim: 2}
	a, err := newAdapter(embedding.KindJina, "jina-test", b, 2)
	require.NoError(t, err)

	chunks := []commonModels.DocChunk{{Chunk: "a"}, {Chunk: "bb"}, {Chunk: "ccc"}}
	out, err := a.EmbedChunks(context.Background(), chunks)
	require.NoError(t, err)
	assert.Len(t, b.calls, 2)
	for i, c := range out {
		assert.Equal(t, float32(i+1), c.Embedding[0])
	}
}

func TestEncodeNonMultiFillsDenseOnly(t *testing.T) {
	a, err := newAdapter(embedding.KindOpenAI, "text-embedding-test", &fakeBackend{dim: 3}, 0)
	require.NoError(t, err)
	assert.False(t, a.IsMultiRepresentation())

	reps, err := a.EncodeDocuments(context.Background(), []string{"x", "y"})
	require.NoError(t, err)
	require.Len(t, reps, 2)
	assert.Len(t, reps[0].Dense, 3)
	assert.Nil(t, reps[0].Sparse)
	assert.Nil(t, reps[0].ColBERT)
}

func TestMultiRepresentationIsReachable(t *testing.T) {
	m := &fakeMulti{fakeBackend{dim: 1024}}
	a, err := newAdapter(embedding.KindBGEM3, embedding.BGEM3RegistryName, m, 0)
	require.NoError(t, err)
	assert.True(t, a.IsMultiRepresentation())

	rep, err := a.EncodeQuery(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, map[uint32]float32{7: 0.5}, rep.Sparse)
	assert.NotEmpty(t, rep.ColBERT)

	// the flat operations still give the dense vector
	v, err := a.EmbedQuery(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, v, 1024)
}

func TestNewUnsupportedModel(t *testing.T) {
	_, err := New(context.Background(), "foo-model")
	require.Error(t, err)
	assert.ErrorIs(t, err, embedding.ErrUnsupportedModel)
	assert.Contains(t, err.Error(), "foo-model")
}

func TestNewMissingKeys(t *testing.T) {
	for _, model := range []string{"", "default", "jina-embeddings-v3", "text-embedding-3-small", "gemini-embedding-001"} {
		_, err := New(context.Background(), model)
		assert.ErrorIs(t, err, embedding.ErrConfiguration, model)
	}
}

func TestNewSentenceTransformerEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{"index": i, "embedding": make([]float32, 768)}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	defer srv.Close()

	a, err := New(context.Background(), "default",
		embedding.WithModelName("BAAI/bge-base-en-v1.5"),
		embedding.WithBaseURL(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, embedding.KindSentenceTransformer, a.Kind())
	assert.Equal(t, 768, a.Dimension())

	out, err := a.EmbedDocuments(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Len(t, out[0], a.Dimension())
}

func TestNewBGEM3EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Texts []string `json:"texts"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		res := map[string]any{}
		dense := make([][]float64, len(req.Texts))
		sparse := make([]map[string]float64, len(req.Texts))
		colbert := make([][][]float64, len(req.Texts))
		for i := range req.Texts {
			dense[i] = make([]float64, 1024)
			sparse[i] = map[string]float64{"5": 1}
			colbert[i] = [][]float64{{0.1}}
		}
		res["dense_vecs"] = dense
		res["lexical_weights"] = sparse
		res["colbert_vecs"] = colbert
		_ = json.NewEncoder(w).Encode(res)
	}))
	defer srv.Close()

	a, err := New(context.Background(), "bge-m3", embedding.WithBaseURL(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, embedding.KindBGEM3, a.Kind())
	assert.Equal(t, 1024, a.Dimension())
	assert.True(t, a.IsMultiRepresentation())

	reps, err := a.EncodeDocuments(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, float32(1), reps[0].Sparse[5])

	vecs, err := a.EmbedDocuments(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
}

func TestEverySupportedModelReportsItsDimension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("construction must not call the backend, got %s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()

	for name, want := range embedding.SupportedModels() {
		t.Run(name, func(t *testing.T) {
			a, err := New(context.Background(), name,
				embedding.WithAPIKey("test-key"),
				embedding.WithBaseURL(srv.URL))
			require.NoError(t, err)
			assert.Positive(t, a.Dimension())
			assert.Equal(t, want, a.Dimension())
			if known, ok := embedding.KnownDimension(name); ok {
				assert.Equal(t, known, a.Dimension())
			}
		})
	}
}

func TestDefaultAliasDimension(t *testing.T) {
	for _, name := range []string{"", embedding.ModelDefault, embedding.ModelDefaultAlias} {
		a, err := New(context.Background(), name, embedding.WithAPIKey("test-key"))
		require.NoError(t, err, name)
		assert.Equal(t, 768, a.Dimension(), name)
	}
}
