package mcpServer

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/niexiaoning/deep-searcher/internal/rag"
	"github.com/niexiaoning/deep-searcher/internal/rag/ingest"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
)

const (
	ServerName    = "deep-searcher-loader"
	ServerVersion = "v1.0.0"
)

// EmbeddingInfo describes the active embedding model.
type EmbeddingInfo struct {
	Model               string `json:"model"`
	Kind                string `json:"kind"`
	Dimension           int    `json:"dimension"`
	MultiRepresentation bool   `json:"multi_representation"`
}

type LocalFilesInput struct {
	Paths                 []string `json:"paths" jsonschema:"files or directories to load, directories are read recursively"`
	CollectionName        string   `json:"collection_name,omitempty" jsonschema:"target collection, recreated before loading"`
	CollectionDescription string   `json:"collection_description,omitempty" jsonschema:"description stored with the collection"`
}

type WebsiteInput struct {
	URLs                  []string `json:"urls" jsonschema:"pages to fetch and load"`
	CollectionName        string   `json:"collection_name,omitempty" jsonschema:"target collection, recreated before loading"`
	CollectionDescription string   `json:"collection_description,omitempty" jsonschema:"description stored with the collection"`
}

type tools struct {
	ingester rag.Ingester
	info     EmbeddingInfo
	logger   *logger_i.Logger
}

// New registers the loading tools on a fresh MCP server.
func New(ingester rag.Ingester, info EmbeddingInfo) *mcp.Server {
	t := &tools{ingester: ingester, info: info, logger: logger_i.NewLogger("mcp")}
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: ServerVersion}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "load_from_local_files",
		Description: "Load local files or directories into a vector collection. The collection is dropped and recreated first.",
	}, t.loadFromLocalFiles)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "load_from_website",
		Description: "Fetch web pages and load their text into a vector collection. The collection is dropped and recreated first.",
	}, t.loadFromWebsite)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "embedding_info",
		Description: "Report the embedding model used for loading and its vector dimension.",
	}, t.embeddingInfo)
	return server
}

// Run serves over stdin/stdout until ctx is cancelled or the client leaves.
func Run(ctx context.Context, server *mcp.Server) error {
	err := server.Run(ctx, &mcp.StdioTransport{})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (t *tools) loadFromLocalFiles(ctx context.Context, req *mcp.CallToolRequest, in LocalFilesInput) (*mcp.CallToolResult, ingest.Result, error) {
	t.logger.Info("load_from_local_files", "paths", len(in.Paths), "collection", in.CollectionName)
	res, err := t.ingester.LoadFromLocalFiles(ctx, in.Paths, in.CollectionName, in.CollectionDescription)
	if err != nil {
		t.logger.Error("load_from_local_files failed", "error", err)
		return nil, ingest.Result{}, fmt.Errorf("load_from_local_files: %w", err)
	}
	return nil, res, nil
}

func (t *tools) loadFromWebsite(ctx context.Context, req *mcp.CallToolRequest, in WebsiteInput) (*mcp.CallToolResult, ingest.Result, error) {
	t.logger.Info("load_from_website", "urls", len(in.URLs), "collection", in.CollectionName)
	res, err := t.ingester.LoadFromWebsite(ctx, in.URLs, in.CollectionName, in.CollectionDescription)
	if err != nil {
		t.logger.Error("load_from_website failed", "error", err)
		return nil, ingest.Result{}, fmt.Errorf("load_from_website: %w", err)
	}
	return nil, res, nil
}

func (t *tools) embeddingInfo(ctx context.Context, req *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, EmbeddingInfo, error) {
	return nil, t.info, nil
}
