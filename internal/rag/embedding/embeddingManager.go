package embedding

import (
	"context"

	"github.com/niexiaoning/deep-searcher/internal/domain/commonModels"
)

// Embedder is what the ingestion pipeline needs from an embedding model.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedChunks(ctx context.Context, chunks []commonModels.DocChunk) ([]commonModels.DocChunk, error)
	Dimension() int
}

// Purpose tells a backend whether it embeds a search query or stored documents.
// Some providers use different task types or instructions for each.
type Purpose int

const (
	PurposeDocument Purpose = iota
	PurposeQuery
)

// Backend is implemented by every embedding provider client.
type Backend interface {
	Embed(ctx context.Context, texts []string, purpose Purpose) (Embeddings, error)
	Dimension() int
}

// MultiRepresentationBackend also returns sparse and multi-vector output.
type MultiRepresentationBackend interface {
	Backend
	Encode(ctx context.Context, texts []string, purpose Purpose) ([]Representation, error)
}

// Embeddings is the raw output of a backend. Exactly one of the two fields is
// set, depending on the numeric type the provider returns.
type Embeddings struct {
	Float32 [][]float32
	Float64 [][]float64
}

func (e Embeddings) Len() int {
	if e.Float64 != nil {
		return len(e.Float64)
	}
	return len(e.Float32)
}

// Normalize returns plain float32 vectors. float32 output is returned as is.
func (e Embeddings) Normalize() [][]float32 {
	if e.Float64 == nil {
		return e.Float32
	}
	out := make([][]float32, len(e.Float64))
	for i, v := range e.Float64 {
		out[i] = ToFloat32(v)
	}
	return out
}

func ToFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

// Representation is the structured output of a multi-representation model.
// Only Dense is set for single-vector models.
type Representation struct {
	Dense   []float32          `json:"dense"`
	Sparse  map[uint32]float32 `json:"sparse,omitempty"`
	ColBERT [][]float32        `json:"colbert,omitempty"`
}
