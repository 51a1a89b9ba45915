package embeddingAdapter

import (
	"context"
	"fmt"

	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/domain/commonModels"
	"github.com/niexiaoning/deep-searcher/internal/rag/embedding"
	"github.com/niexiaoning/deep-searcher/internal/rag/embedding/bgeM3"
	"github.com/niexiaoning/deep-searcher/internal/rag/embedding/googleEmbedding"
	"github.com/niexiaoning/deep-searcher/internal/rag/embedding/jinaEmbedding"
	"github.com/niexiaoning/deep-searcher/internal/rag/embedding/openaiEmbedding"
	"github.com/niexiaoning/deep-searcher/internal/rag/embedding/sentenceTransformer"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
)

// Adapter wraps exactly one embedding backend chosen by model name. The kind
// is fixed at construction and every call dispatches on it.
type Adapter struct {
	kind      embedding.Kind
	model     string
	backend   embedding.Backend
	multi     embedding.MultiRepresentationBackend //only for KindBGEM3
	batchSize int
	logger    *logger_i.Logger
}

var _ embedding.Embedder = (*Adapter)(nil)

// New resolves model to a backend and constructs it. Unknown identifiers fail
// with an UnsupportedModelError, missing keywords with a ConfigurationError.
func New(ctx context.Context, model string, opts ...embedding.Option) (*Adapter, error) {
	o := embedding.BuildOptions(opts...)
	kind, name, err := embedding.Resolve(model, o.ModelName)
	if err != nil {
		return nil, err
	}

	backend, err := newBackend(ctx, kind, name, o)
	if err != nil {
		return nil, err
	}
	return newAdapter(kind, name, backend, o.BatchSize)
}

func newAdapter(kind embedding.Kind, name string, backend embedding.Backend, batchSize int) (*Adapter, error) {
	if backend.Dimension() <= 0 {
		return nil, embedding.NewConfigurationError(name, "backend reported no dimension")
	}
	if batchSize <= 0 {
		batchSize = config.EmbeddingBatchSize
	}

	a := &Adapter{
		kind:      kind,
		model:     name,
		backend:   backend,
		batchSize: batchSize,
		logger:    logger_i.NewLogger("embedding_adapter").With("model", name, "kind", kind.String()),
	}
	if kind == embedding.KindBGEM3 {
		multi, ok := backend.(embedding.MultiRepresentationBackend)
		if !ok {
			return nil, embedding.NewConfigurationError(name, "backend has no multi-representation output")
		}
		a.multi = multi
	}
	a.logger.Info("Embedding adapter ready", "dimension", backend.Dimension())
	return a, nil
}

func newBackend(ctx context.Context, kind embedding.Kind, name string, o embedding.Options) (embedding.Backend, error) {
	switch kind {
	case embedding.KindDefault, embedding.KindGemini:
		c, err := googleEmbedding.New(ctx, name, o)
		if err != nil {
			return nil, err
		}
		return c, nil
	case embedding.KindOpenAI:
		c, err := openaiEmbedding.New(name, o)
		if err != nil {
			return nil, err
		}
		return c, nil
	case embedding.KindJina:
		c, err := jinaEmbedding.New(name, o)
		if err != nil {
			return nil, err
		}
		return c, nil
	case embedding.KindSentenceTransformer:
		c, err := sentenceTransformer.New(name, o)
		if err != nil {
			return nil, err
		}
		return c, nil
	case embedding.KindBGEM3:
		return bgeM3.New(o.BaseURL, o.HTTPClient), nil
	}
	return nil, &embedding.UnsupportedModelError{Model: name}
}

func (a *Adapter) Kind() embedding.Kind {
	return a.kind
}

func (a *Adapter) Model() string {
	return a.model
}

func (a *Adapter) Dimension() int {
	return a.backend.Dimension()
}

func (a *Adapter) IsMultiRepresentation() bool {
	return a.multi != nil
}

// EmbedQuery embeds one query text. For bge-m3 this is the dense component.
func (a *Adapter) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := a.embed(ctx, []string{text}, embedding.PurposeQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedDocuments returns one vector per text in input order.
func (a *Adapter) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	return a.embed(ctx, texts, embedding.PurposeDocument)
}

func (a *Adapter) embed(ctx context.Context, texts []string, purpose embedding.Purpose) ([][]float32, error) {
	res, err := a.backend.Embed(ctx, texts, purpose)
	if err != nil {
		return nil, err
	}
	if err := embedding.CheckLength(a.model, len(texts), res.Len()); err != nil {
		return nil, err
	}
	return res.Normalize(), nil
}

// EncodeQuery is EmbedQuery with the structured output of multi-representation
// models. Other models fill only Dense.
func (a *Adapter) EncodeQuery(ctx context.Context, text string) (embedding.Representation, error) {
	reps, err := a.encode(ctx, []string{text}, embedding.PurposeQuery)
	if err != nil {
		return embedding.Representation{}, err
	}
	return reps[0], nil
}

func (a *Adapter) EncodeDocuments(ctx context.Context, texts []string) ([]embedding.Representation, error) {
	if len(texts) == 0 {
		return []embedding.Representation{}, nil
	}
	return a.encode(ctx, texts, embedding.PurposeDocument)
}

func (a *Adapter) encode(ctx context.Context, texts []string, purpose embedding.Purpose) ([]embedding.Representation, error) {
	if a.multi != nil {
		reps, err := a.multi.Encode(ctx, texts, purpose)
		if err != nil {
			return nil, err
		}
		if err := embedding.CheckLength(a.model, len(texts), len(reps)); err != nil {
			return nil, err
		}
		return reps, nil
	}

	vectors, err := a.embed(ctx, texts, purpose)
	if err != nil {
		return nil, err
	}
	reps := make([]embedding.Representation, len(vectors))
	for i, v := range vectors {
		reps[i].Dense = v
	}
	return reps, nil
}

// EmbedChunks embeds chunk texts in batches and stores each vector on its chunk.
func (a *Adapter) EmbedChunks(ctx context.Context, chunks []commonModels.DocChunk) ([]commonModels.DocChunk, error) {
	for start := 0; start < len(chunks); start += a.batchSize {
		end := min(start+a.batchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Chunk)
		}

		vectors, err := a.EmbedDocuments(ctx, texts)
		if err != nil {
			a.logger.Error("Embedding batch failed", "batchStart", start, "batchSize", len(texts), "error", err)
			return nil, fmt.Errorf("embedding chunks %d-%d: %w", start, end-1, err)
		}
		for i, v := range vectors {
			chunks[start+i].Embedding = v
		}
		a.logger.Debug("Embedded batch", "batchStart", start, "batchSize", len(texts))
	}
	return chunks, nil
}
