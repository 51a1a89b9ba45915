package vectorDB

import (
	"context"
	"errors"
	"fmt"

	"github.com/niexiaoning/deep-searcher/internal/domain/commonModels"
)

var (
	ErrInvalidDimension   = errors.New("collection dimension must be positive")
	ErrDimensionMismatch  = errors.New("collection dimension does not match embedding dimension")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrEmptyCollection    = errors.New("empty collection name")
)

// VectorStore is the persistence side of ingestion.
type VectorStore interface {
	// InitCollection prepares collection for vectors of length dim. With
	// forceNew an existing collection and its data are dropped first.
	InitCollection(ctx context.Context, dim int, collection, description string, forceNew bool) error
	// InsertData stores chunks with their Embedding set.
	InsertData(ctx context.Context, collection string, chunks []commonModels.DocChunk) error
}

// ValidateInit holds the checks every store runs before touching storage.
func ValidateInit(dim int, collection string) error {
	if collection == "" {
		return ErrEmptyCollection
	}
	if dim <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDimension, dim)
	}
	return nil
}

// CheckDimension rejects reusing a collection created for another model.
func CheckDimension(collection string, existing, want int) error {
	if existing == want {
		return nil
	}
	return fmt.Errorf("%w: collection %q has %d, embedding has %d", ErrDimensionMismatch, collection, existing, want)
}

// CheckVectors verifies every chunk carries a vector of length dim.
func CheckVectors(chunks []commonModels.DocChunk, dim int) error {
	for i, c := range chunks {
		if len(c.Embedding) != dim {
			return fmt.Errorf("%w: chunk %d has a vector of length %d, collection expects %d", ErrDimensionMismatch, i, len(c.Embedding), dim)
		}
	}
	return nil
}
