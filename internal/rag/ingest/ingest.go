package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/domain/commonModels"
	"github.com/niexiaoning/deep-searcher/internal/metrics"
	"github.com/niexiaoning/deep-searcher/internal/rag/embedding"
	"github.com/niexiaoning/deep-searcher/internal/rag/loader"
	"github.com/niexiaoning/deep-searcher/internal/rag/splitter"
	"github.com/niexiaoning/deep-searcher/internal/rag/vectorDB"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
)

var (
	ErrNoPaths         = errors.New("no paths or urls given")
	ErrVectorDimension = errors.New("embedding returned vectors of the wrong dimension")
)

// Result summarises one ingestion call.
type Result struct {
	Collection string `json:"collection"`
	Documents  int    `json:"documents"`
	Chunks     int    `json:"chunks"`
}

// Pipeline loads, splits, embeds and stores documents into one collection.
// All collaborators are injected; a Pipeline holds no other state and is safe
// to share between workers as long as they are.
type Pipeline struct {
	embedder   embedding.Embedder
	store      vectorDB.VectorStore
	fileLoader loader.FileLoader
	webLoader  loader.WebLoader
	splitter   splitter.Splitter
	logger     *logger_i.Logger
}

func NewPipeline(embedder embedding.Embedder, store vectorDB.VectorStore, fileLoader loader.FileLoader, webLoader loader.WebLoader, sp splitter.Splitter) *Pipeline {
	return &Pipeline{
		embedder:   embedder,
		store:      store,
		fileLoader: fileLoader,
		webLoader:  webLoader,
		splitter:   sp,
		logger:     logger_i.NewLogger("ingest"),
	}
}

// LoadFromLocalPath is LoadFromLocalFiles for a single file or directory.
func (p *Pipeline) LoadFromLocalPath(ctx context.Context, path, collectionName, collectionDescription string) (Result, error) {
	return p.LoadFromLocalFiles(ctx, []string{path}, collectionName, collectionDescription)
}

// LoadFromLocalFiles recreates the collection, then loads every path in order.
// A directory is read recursively, anything else is loaded as a single file.
func (p *Pipeline) LoadFromLocalFiles(ctx context.Context, paths []string, collectionName, collectionDescription string) (Result, error) {
	if len(paths) == 0 {
		return Result{}, ErrNoPaths
	}
	return p.run(ctx, collectionName, collectionDescription, func(ctx context.Context) ([]commonModels.Document, error) {
		var docs []commonModels.Document
		for _, path := range paths {
			loaded, err := p.loadPath(ctx, path)
			if err != nil {
				return nil, err
			}
			docs = append(docs, loaded...)
		}
		return docs, nil
	})
}

// LoadFromWebsite is the same flow with pages fetched over HTTP.
func (p *Pipeline) LoadFromWebsite(ctx context.Context, urls []string, collectionName, collectionDescription string) (Result, error) {
	if len(urls) == 0 {
		return Result{}, ErrNoPaths
	}
	if p.webLoader == nil {
		return Result{}, errors.New("no web loader configured")
	}
	return p.run(ctx, collectionName, collectionDescription, func(ctx context.Context) ([]commonModels.Document, error) {
		var docs []commonModels.Document
		for _, url := range urls {
			loaded, err := p.webLoader.LoadURL(ctx, url)
			if err != nil {
				return nil, fmt.Errorf("loading %s: %w", url, err)
			}
			docs = append(docs, loaded...)
		}
		return docs, nil
	})
}

func (p *Pipeline) loadPath(ctx context.Context, path string) ([]commonModels.Document, error) {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		docs, err := p.fileLoader.LoadDirectory(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("loading directory %s: %w", path, err)
		}
		return docs, nil
	}
	docs, err := p.fileLoader.LoadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading file %s: %w", path, err)
	}
	return docs, nil
}

func (p *Pipeline) run(ctx context.Context, collectionName, collectionDescription string, load func(context.Context) ([]commonModels.Document, error)) (Result, error) {
	if collectionName == "" {
		collectionName = config.DefaultCollectionName
	}
	if collectionDescription == "" {
		collectionDescription = config.DefaultCollectionDescription
	}
	log := p.logger.With("collection", collectionName)
	if traceId, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		log = log.With("traceId", traceId)
	}
	result := Result{Collection: collectionName}
	dim := p.embedder.Dimension()

	err := timed("collection_init", func() error {
		return p.store.InitCollection(ctx, dim, collectionName, collectionDescription, true)
	})
	if err != nil {
		log.Error("Error creating collection", "error", err)
		return result, fmt.Errorf("initialising collection %s: %w", collectionName, err)
	}

	var docs []commonModels.Document
	err = timed("load", func() error {
		var err error
		docs, err = load(ctx)
		return err
	})
	if err != nil {
		log.Error("Error loading documents", "error", err)
		return result, err
	}
	result.Documents = len(docs)
	log.Debug("Loaded documents", "count", len(docs))

	var chunks []commonModels.DocChunk
	err = timed("split", func() error {
		var err error
		chunks, err = p.splitter.Split(docs)
		return err
	})
	if err != nil {
		log.Error("Error splitting documents", "error", err)
		return result, fmt.Errorf("splitting documents: %w", err)
	}
	log.Debug("Split documents", "chunks", len(chunks))

	err = timed("embedding", func() error {
		var err error
		chunks, err = p.embedder.EmbedChunks(ctx, chunks)
		return err
	})
	if err != nil {
		log.Error("Error embedding chunks", "error", err)
		return result, fmt.Errorf("embedding chunks: %w", err)
	}
	if err := vectorDB.CheckVectors(chunks, dim); err != nil {
		return result, fmt.Errorf("%w: %w", ErrVectorDimension, err)
	}

	err = timed("vector_insert", func() error {
		return p.store.InsertData(ctx, collectionName, chunks)
	})
	if err != nil {
		log.Error("Error inserting chunks", "error", err)
		return result, fmt.Errorf("inserting into %s: %w", collectionName, err)
	}
	result.Chunks = len(chunks)
	metrics.AddIngestedChunks(collectionName, len(chunks))

	log.Info("Ingestion complete", "documents", result.Documents, "chunks", result.Chunks)
	return result, nil
}

func timed(step string, fn func() error) error {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics(step, time.Since(start)) }()
	return fn()
}
