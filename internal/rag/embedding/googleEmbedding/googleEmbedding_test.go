package googleEmbedding

import (
	"context"
	"errors"
	"testing"

	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/rag/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type mockModels struct {
	calls     [][]*genai.Content
	taskTypes []string
	dims      []int32
	err       error
	drop      bool
}

func (m *mockModels) EmbedContent(_ context.Context, _ string, contents []*genai.Content, cfg *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	m.calls = append(m.calls, contents)
	m.taskTypes = append(m.taskTypes, cfg.TaskType)
	m.dims = append(m.dims, *cfg.OutputDimensionality)
	if m.err != nil {
		return nil, m.err
	}
	res := &genai.EmbedContentResponse{}
	n := len(contents)
	if m.drop {
		n--
	}
	for i := 0; i < n; i++ {
		res.Embeddings = append(res.Embeddings, &genai.ContentEmbedding{Values: make([]float32, *cfg.OutputDimensionality)})
	}
	return res, nil
}

func TestEmbedBatchesAndTaskType(t *testing.T) {
	m := &mockModels{}
	c := newWithModels(m, config.GoogleEmbeddingModel, 768, 2)

	texts := []string{"a", "b", "c", "d", "e"}
	out, err := c.Embed(context.Background(), texts, embedding.PurposeDocument)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Len())
	assert.Len(t, out.Float32[0], 768)
	assert.Len(t, m.calls, 3)
	assert.Equal(t, config.GoogleTaskTypeRetrievalDoc, m.taskTypes[0])
	assert.Equal(t, int32(768), m.dims[0])

	_, err = c.Embed(context.Background(), []string{"q"}, embedding.PurposeQuery)
	require.NoError(t, err)
	assert.Equal(t, config.GoogleTaskTypeRetrievalQuery, m.taskTypes[len(m.taskTypes)-1])
}

func TestEmbedErrors(t *testing.T) {
	boom := errors.New("quota")
	c := newWithModels(&mockModels{err: boom}, config.GoogleEmbeddingModel, 768, 0)
	_, err := c.Embed(context.Background(), []string{"a"}, embedding.PurposeDocument)
	assert.ErrorIs(t, err, boom)

	c = newWithModels(&mockModels{drop: true}, config.GoogleEmbeddingModel, 768, 0)
	_, err = c.Embed(context.Background(), []string{"a", "b"}, embedding.PurposeDocument)
	assert.ErrorIs(t, err, embedding.ErrUnexpectedResponseLength)
}

func TestModelAndDimension(t *testing.T) {
	model, dim, err := modelAndDimension(embedding.ModelDefault, embedding.Options{})
	require.NoError(t, err)
	assert.Equal(t, config.GoogleEmbeddingModel, model)
	assert.Equal(t, int32(config.DefaultEmbeddingDimension), dim)

	model, dim, err = modelAndDimension("gemini-embedding-001", embedding.Options{Dimension: 1536})
	require.NoError(t, err)
	assert.Equal(t, "gemini-embedding-001", model)
	assert.Equal(t, int32(1536), dim)

	_, _, err = modelAndDimension("gemini-embedding-exp", embedding.Options{})
	assert.ErrorIs(t, err, embedding.ErrConfiguration)
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), embedding.ModelDefault, embedding.Options{})
	assert.ErrorIs(t, err, embedding.ErrConfiguration)
}
