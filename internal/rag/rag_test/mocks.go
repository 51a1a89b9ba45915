package rag_test

import (
	"context"

	"github.com/niexiaoning/deep-searcher/internal/rag/ingest"
)

// MockIngester implements rag.Ingester
type MockIngester struct {
	OnLoadFromLocalFiles func(ctx context.Context, paths []string, name, desc string) (ingest.Result, error)
	OnLoadFromWebsite    func(ctx context.Context, urls []string, name, desc string) (ingest.Result, error)
}

func (m *MockIngester) LoadFromLocalFiles(ctx context.Context, paths []string, name, desc string) (ingest.Result, error) {
	if m.OnLoadFromLocalFiles != nil {
		return m.OnLoadFromLocalFiles(ctx, paths, name, desc)
	}
	return ingest.Result{Collection: name, Documents: len(paths), Chunks: len(paths)}, nil
}

func (m *MockIngester) LoadFromWebsite(ctx context.Context, urls []string, name, desc string) (ingest.Result, error) {
	if m.OnLoadFromWebsite != nil {
		return m.OnLoadFromWebsite(ctx, urls, name, desc)
	}
	return ingest.Result{Collection: name, Documents: len(urls), Chunks: len(urls)}, nil
}
