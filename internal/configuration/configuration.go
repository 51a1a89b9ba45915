// Package configuration builds the long-lived services once from Settings and
// hands them out explicitly. Nothing here is a package-level singleton.
package configuration

import (
	"context"
	"errors"
	"fmt"

	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/customHttpClient"
	"github.com/niexiaoning/deep-searcher/internal/data/redisStore"
	"github.com/niexiaoning/deep-searcher/internal/data/store"
	"github.com/niexiaoning/deep-searcher/internal/domain/jobModel"
	"github.com/niexiaoning/deep-searcher/internal/rag/embedding"
	"github.com/niexiaoning/deep-searcher/internal/rag/embedding/embeddingAdapter"
	"github.com/niexiaoning/deep-searcher/internal/rag/ingest"
	"github.com/niexiaoning/deep-searcher/internal/rag/loader"
	"github.com/niexiaoning/deep-searcher/internal/rag/splitter"
	"github.com/niexiaoning/deep-searcher/internal/rag/vectorDB"
	"github.com/niexiaoning/deep-searcher/internal/rag/vectorDB/badgerDB"
	"github.com/niexiaoning/deep-searcher/internal/rag/vectorDB/qdrantDB"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
)

type Services struct {
	Settings   config.Settings
	Embedder   *embeddingAdapter.Adapter
	Store      vectorDB.VectorStore
	StoreKind  string
	FileLoader *loader.LocalFileLoader
	WebLoader  *loader.WebPageLoader
	Splitter   *splitter.RecursiveSplitter
	Pipeline   *ingest.Pipeline
}

// Build wires the ingestion pipeline. Clients holding connections close
// themselves when ctx is cancelled; Close releases the rest.
func Build(ctx context.Context, s config.Settings) (*Services, error) {
	logger := logger_i.NewLogger("configuration")

	embedder, err := NewEmbedder(ctx, s)
	if err != nil {
		return nil, err
	}

	vectorStore, kind, err := NewVectorStore(ctx, s)
	if err != nil {
		return nil, err
	}

	fileLoader, err := loader.NewLocalFileLoader(config.LoaderPoolSize)
	if err != nil {
		return nil, err
	}
	webLoader := loader.NewWebPageLoader(nil)
	sp := splitter.NewDefault()

	logger.Info("Services ready", "embeddingModel", embedder.Model(), "kind", embedder.Kind().String(), "dimension", embedder.Dimension(), "vectorStore", kind)
	return &Services{
		Settings:   s,
		Embedder:   embedder,
		Store:      vectorStore,
		StoreKind:  kind,
		FileLoader: fileLoader,
		WebLoader:  webLoader,
		Splitter:   sp,
		Pipeline:   ingest.NewPipeline(embedder, vectorStore, fileLoader, webLoader, sp),
	}, nil
}

func (s *Services) Close() {
	s.FileLoader.Close()
	if c, ok := s.Store.(*badgerDB.Store); ok {
		_ = c.Close()
	}
	customHttpClient.CloseIdle()
}

func NewEmbedder(ctx context.Context, s config.Settings) (*embeddingAdapter.Adapter, error) {
	opts, err := EmbeddingOptions(s)
	if err != nil {
		return nil, err
	}
	return embeddingAdapter.New(ctx, s.EmbeddingModel, opts...)
}

// EmbeddingOptions picks the credentials and endpoint for the backend the
// configured model resolves to.
func EmbeddingOptions(s config.Settings) ([]embedding.Option, error) {
	kind, _, err := embedding.Resolve(s.EmbeddingModel, s.EmbeddingModelName)
	if err != nil {
		return nil, err
	}

	opts := []embedding.Option{
		embedding.WithModelName(s.EmbeddingModelName),
		embedding.WithHTTPClient(customHttpClient.NewPooledClient(config.EmbeddingConnectionTimeout)),
	}
	if s.EmbeddingDimension > 0 {
		opts = append(opts, embedding.WithDimension(s.EmbeddingDimension))
	}

	baseURL := ""
	switch kind {
	case embedding.KindDefault, embedding.KindGemini:
		opts = append(opts, embedding.WithAPIKey(s.GoogleAPIKey))
	case embedding.KindOpenAI:
		opts = append(opts, embedding.WithAPIKey(s.OpenAIAPIKey))
	case embedding.KindJina:
		opts = append(opts, embedding.WithAPIKey(s.JinaAPIKey))
	case embedding.KindSentenceTransformer:
		opts = append(opts, embedding.WithAPIKey(s.SentenceTransformerKey))
		baseURL = s.SentenceTransformerURL
	case embedding.KindBGEM3:
		baseURL = s.BGEM3URL
	}
	if s.EmbeddingBaseURL != "" {
		baseURL = s.EmbeddingBaseURL
	}
	if baseURL != "" {
		opts = append(opts, embedding.WithBaseURL(baseURL))
	}
	return opts, nil
}

// NewVectorStore returns Qdrant, or the embedded badger store when
// VECTOR_DB=local or Qdrant is unreachable and the fallback is enabled.
func NewVectorStore(ctx context.Context, s config.Settings) (vectorDB.VectorStore, string, error) {
	logger := logger_i.NewLogger("configuration")
	if s.VectorDB == config.VectorDBLocal {
		st, err := badgerDB.Open(ctx, s.LocalStorePath)
		return st, config.VectorDBLocal, err
	}

	q, err := qdrantDB.NewClient(ctx, qdrantDB.Settings{Host: s.QdrantHost, Port: s.QdrantPort, APIKey: s.QdrantAPIKey})
	if err == nil {
		return q, config.VectorDBQdrant, nil
	}
	if !config.FallbackQdrantToLocalStore {
		return nil, "", err
	}
	logger.Warn("Qdrant unavailable, falling back to local store", "error", err, "path", s.LocalStorePath)
	st, openErr := badgerDB.Open(ctx, s.LocalStorePath)
	if openErr != nil {
		return nil, "", errors.Join(err, openErr)
	}
	return st, config.VectorDBLocal, nil
}

// NewJobStore returns the Redis job store, or the in-memory one when Redis is
// offline and config.FALLBACK_REDIS_TO_INTERNALSTORE is set.
func NewJobStore(ctx context.Context, s config.Settings) (jobModel.JobStore, error) {
	rs, err := redisStore.New(ctx, redisStore.Options{Addr: s.RedisAddr, Password: s.RedisPassword, DB: config.RedisJobStore})
	if err == nil {
		return store.NewRedisJobStore(rs), nil
	}
	if !config.FALLBACK_REDIS_TO_INTERNALSTORE {
		return nil, fmt.Errorf("job store: %w", err)
	}
	logger_i.NewLogger("configuration").Warn("Redis stores are offline, using in-memory job store", "error", err)
	return store.NewInMemoryJobStore(), nil
}
