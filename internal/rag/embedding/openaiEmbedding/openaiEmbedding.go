package openaiEmbedding

import (
	"context"
	"fmt"

	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/customHttpClient"
	"github.com/niexiaoning/deep-searcher/internal/rag/embedding"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Client embeds with the OpenAI text-embedding family. The API returns float64
// vectors which the adapter converts.
type Client struct {
	client    openai.Client
	model     string
	dimension int
	explicit  bool
	logger    *logger_i.Logger
}

func New(model string, opts embedding.Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, embedding.NewConfigurationError(model, "OPENAI_API_KEY is required")
	}
	dim, err := embedding.ResolveDimension(model, opts.Dimension)
	if err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = customHttpClient.NewPooledClient(config.EmbeddingConnectionTimeout)
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = config.OpenAIBaseURL
	}

	return &Client{
		client: openai.NewClient(
			option.WithAPIKey(opts.APIKey),
			option.WithBaseURL(baseURL),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(0),
		),
		model:     model,
		dimension: dim,
		explicit:  opts.Dimension > 0,
		logger:    logger_i.NewLogger("openai_embedding"),
	}, nil
}

func (c *Client) Dimension() int {
	return c.dimension
}

func (c *Client) Embed(ctx context.Context, texts []string, _ embedding.Purpose) (embedding.Embeddings, error) {
	params := openai.EmbeddingNewParams{
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:          openai.EmbeddingModel(c.model),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}
	if c.explicit {
		params.Dimensions = openai.Int(int64(c.dimension))
	}

	res, err := c.client.Embeddings.New(ctx, params)
	if err != nil {
		c.logger.Error("Error getting Embeddings from OpenAI", "model", c.model, "error", err)
		return embedding.Embeddings{}, fmt.Errorf("openai embedding %s: %w", c.model, err)
	}
	if err := embedding.CheckLength(c.model, len(texts), len(res.Data)); err != nil {
		return embedding.Embeddings{}, err
	}

	out := make([][]float64, len(texts))
	for i, d := range res.Data {
		idx := int(d.Index)
		if idx < 0 || idx >= len(out) {
			idx = i
		}
		out[idx] = d.Embedding
	}
	return embedding.Embeddings{Float64: out}, nil
}
