package googleEmbedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/rag/embedding"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
	"google.golang.org/genai"
)

// contentEmbedder is the part of *genai.Models this backend calls.
type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type Client struct {
	models    contentEmbedder
	model     string
	dimension int32
	batchSize int
	logger    *logger_i.Logger
}

// New builds the genai backend. The default model alias is served by
// gemini-embedding-001 truncated to 768 dimensions.
func New(ctx context.Context, model string, opts embedding.Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, embedding.NewConfigurationError(model, "GOOGLE_API_KEY is required")
	}

	apiModel, dim, err := modelAndDimension(model, opts)
	if err != nil {
		return nil, err
	}

	cc := &genai.ClientConfig{APIKey: opts.APIKey, Backend: genai.BackendGeminiAPI, HTTPClient: opts.HTTPClient}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return newWithModels(c.Models, apiModel, dim, opts.BatchSize), nil
}

func newWithModels(models contentEmbedder, apiModel string, dim int32, batchSize int) *Client {
	if batchSize <= 0 || batchSize > config.GoogleEmbeddingBatchLimit {
		batchSize = config.GoogleEmbeddingBatchLimit
	}
	logger := logger_i.NewLogger("google_embedding")
	logger.Debug("Google Embedding model name: " + apiModel)
	return &Client{models: models, model: apiModel, dimension: dim, batchSize: batchSize, logger: logger}
}

func modelAndDimension(model string, opts embedding.Options) (string, int32, error) {
	if model == embedding.ModelDefault || model == embedding.ModelDefaultAlias || model == "" {
		dim := opts.Dimension
		if dim <= 0 {
			dim = config.DefaultEmbeddingDimension
		}
		return config.GoogleEmbeddingModel, int32(dim), nil
	}
	dim, err := embedding.ResolveDimension(model, opts.Dimension)
	if err != nil {
		return "", 0, err
	}
	return model, int32(dim), nil
}

func (c *Client) Dimension() int {
	return int(c.dimension)
}

func (c *Client) Embed(ctx context.Context, texts []string, purpose embedding.Purpose) (embedding.Embeddings, error) {
	log := c.logger.With(config.TRACE_ID_KEY, ctx.Value(config.TRACE_ID_KEY))
	taskType := config.GoogleTaskTypeRetrievalDoc
	if purpose == embedding.PurposeQuery {
		taskType = config.GoogleTaskTypeRetrievalQuery
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := min(start+c.batchSize, len(texts))
		res, err := c.doCall(ctx, getContent(texts[start:end]), taskType)
		if err != nil {
			logAPIError(log, err)
			return embedding.Embeddings{}, fmt.Errorf("google embedding %s: %w", c.model, err)
		}
		if res == nil {
			return embedding.Embeddings{}, fmt.Errorf("google embedding %s: %w", c.model, embedding.ErrEmptyResponse)
		}
		if err := embedding.CheckLength(c.model, end-start, len(res.Embeddings)); err != nil {
			return embedding.Embeddings{}, err
		}
		for _, r := range res.Embeddings {
			out = append(out, r.Values)
		}
	}
	return embedding.Embeddings{Float32: out}, nil
}

func (c *Client) doCall(ctx context.Context, content []*genai.Content, taskType string) (*genai.EmbedContentResponse, error) {
	return c.models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{OutputDimensionality: &c.dimension, TaskType: taskType})
}

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))

	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}

func logAPIError(log *logger_i.Logger, err error) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		log.Error("Error getting Embeddings from Google", "code", apiErr.Code, "status", apiErr.Status, "error", apiErr.Message)
		return
	}
	log.Error("Error getting Embeddings from Google", "error", err)
}
