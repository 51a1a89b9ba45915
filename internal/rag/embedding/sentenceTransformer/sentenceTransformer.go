package sentenceTransformer

import (
	"context"
	"fmt"

	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/customHttpClient"
	"github.com/niexiaoning/deep-searcher/internal/rag/embedding"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
	"github.com/sashabaranov/go-openai"
)

// Client runs BAAI/* sentence-transformer models hosted behind an OpenAI
// compatible inference server such as text-embeddings-inference.
type Client struct {
	client              *openai.Client
	model               string
	dimension           int
	queryInstruction    string
	documentInstruction string
	logger              *logger_i.Logger
}

func New(model string, opts embedding.Options) (*Client, error) {
	dim, err := embedding.ResolveDimension(model, opts.Dimension)
	if err != nil {
		return nil, err
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.BaseURL = opts.BaseURL
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.SentenceTransformerBaseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	} else {
		cfg.HTTPClient = customHttpClient.NewPooledClient(config.EmbeddingConnectionTimeout)
	}

	return &Client{
		client:              openai.NewClientWithConfig(cfg),
		model:               model,
		dimension:           dim,
		queryInstruction:    opts.QueryInstruction,
		documentInstruction: opts.DocumentInstruction,
		logger:              logger_i.NewLogger("sentence_transformer"),
	}, nil
}

func (c *Client) Dimension() int {
	return c.dimension
}

func (c *Client) Embed(ctx context.Context, texts []string, purpose embedding.Purpose) (embedding.Embeddings, error) {
	prefix := c.documentInstruction
	if purpose == embedding.PurposeQuery {
		prefix = c.queryInstruction
	}
	input := texts
	if prefix != "" {
		input = make([]string, len(texts))
		for i, t := range texts {
			input[i] = prefix + t
		}
	}

	res, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:          input,
		Model:          openai.EmbeddingModel(c.model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		c.logger.Error("Error getting Embeddings from inference server", "model", c.model, "error", err)
		return embedding.Embeddings{}, fmt.Errorf("sentence transformer %s: %w", c.model, err)
	}
	if err := embedding.CheckLength(c.model, len(texts), len(res.Data)); err != nil {
		return embedding.Embeddings{}, err
	}

	out := make([][]float32, len(texts))
	for i, d := range res.Data {
		idx := d.Index
		if idx < 0 || idx >= len(out) {
			idx = i
		}
		out[idx] = d.Embedding
	}
	return embedding.Embeddings{Float32: out}, nil
}
