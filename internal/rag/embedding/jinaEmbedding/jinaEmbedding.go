package jinaEmbedding

import (
	"context"
	"fmt"

	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/customHttpClient"
	"github.com/niexiaoning/deep-searcher/internal/rag/embedding"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Client talks to the Jina embeddings API, which is OpenAI compatible, through
// the langchaingo embedder.
type Client struct {
	embedder  *embeddings.EmbedderImpl
	model     string
	dimension int
	logger    *logger_i.Logger
}

func New(model string, opts embedding.Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, embedding.NewConfigurationError(model, "JINAAI_API_KEY is required")
	}
	dim, err := embedding.ResolveDimension(model, opts.Dimension)
	if err != nil {
		return nil, err
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = config.JinaBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = customHttpClient.NewPooledClient(config.EmbeddingConnectionTimeout)
	}

	llmOpts := []openai.Option{
		openai.WithToken(opts.APIKey),
		openai.WithBaseURL(baseURL),
		openai.WithEmbeddingModel(model),
		openai.WithHTTPClient(httpClient),
	}
	if opts.Dimension > 0 {
		llmOpts = append(llmOpts, openai.WithEmbeddingDimensions(opts.Dimension))
	}
	llm, err := openai.New(llmOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating jina client: %w", err)
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = config.EmbeddingBatchSize
	}
	embedder, err := embeddings.NewEmbedder(llm, embeddings.WithBatchSize(batchSize), embeddings.WithStripNewLines(false))
	if err != nil {
		return nil, fmt.Errorf("creating jina embedder: %w", err)
	}

	return &Client{embedder: embedder, model: model, dimension: dim, logger: logger_i.NewLogger("jina_embedding")}, nil
}

func (c *Client) Dimension() int {
	return c.dimension
}

func (c *Client) Embed(ctx context.Context, texts []string, purpose embedding.Purpose) (embedding.Embeddings, error) {
	var (
		vectors [][]float32
		err     error
	)
	if purpose == embedding.PurposeQuery && len(texts) == 1 {
		var v []float32
		v, err = c.embedder.EmbedQuery(ctx, texts[0])
		vectors = [][]float32{v}
	} else {
		vectors, err = c.embedder.EmbedDocuments(ctx, texts)
	}
	if err != nil {
		c.logger.Error("Error getting Embeddings from Jina", "model", c.model, "error", err)
		return embedding.Embeddings{}, fmt.Errorf("jina embedding %s: %w", c.model, err)
	}
	if err := embedding.CheckLength(c.model, len(texts), len(vectors)); err != nil {
		return embedding.Embeddings{}, err
	}
	return embedding.Embeddings{Float32: vectors}, nil
}
