package badgerDB

import (
	"context"
	"fmt"
	"testing"

	"github.com/niexiaoning/deep-searcher/internal/domain/commonModels"
	"github.com/niexiaoning/deep-searcher/internal/rag/vectorDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	s, err := Open(ctx, "")
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		_ = s.Close()
	})
	return s
}

func makeChunks(n, dim int, prefix string) []commonModels.DocChunk {
	out := make([]commonModels.DocChunk, n)
	for i := range out {
		out[i] = commonModels.DocChunk{
			ChunkId:   fmt.Sprintf("%s-%d", prefix, i),
			Chunk:     fmt.Sprintf("%s text %d", prefix, i),
			Reference: prefix + ".md",
			Embedding: make([]float32, dim),
			Metadata:  map[string]string{commonModels.MetadataWiderText: "around"},
		}
	}
	return out
}

func TestInitAndInsertKeepsOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InitCollection(ctx, 4, "docs", "test docs", true))
	require.NoError(t, s.InsertData(ctx, "docs", makeChunks(3, 4, "a")))
	require.NoError(t, s.InsertData(ctx, "docs", makeChunks(2, 4, "b")))

	desc, err := s.GetCollection("docs")
	require.NoError(t, err)
	assert.Equal(t, commonModels.CollectionDescriptor{Name: "docs", Description: "test docs", Dimension: 4, Count: 5}, desc)

	chunks, err := s.ListChunks("docs")
	require.NoError(t, err)
	require.Len(t, chunks, 5)
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ChunkId
	}
	assert.Equal(t, []string{"a-0", "a-1", "a-2", "b-0", "b-1"}, ids)
	assert.Equal(t, "around", chunks[0].Metadata[commonModels.MetadataWiderText])
	assert.Len(t, chunks[0].Embedding, 4)
}

func TestForceNewDropsOldChunks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InitCollection(ctx, 4, "docs", "", true))
	require.NoError(t, s.InsertData(ctx, "docs", makeChunks(3, 4, "old")))
	require.NoError(t, s.InitCollection(ctx, 8, "docs", "", true))

	chunks, err := s.ListChunks("docs")
	require.NoError(t, err)
	assert.Empty(t, chunks)

	desc, err := s.GetCollection("docs")
	require.NoError(t, err)
	assert.Equal(t, 8, desc.Dimension)
}

func TestNestedCollectionNamesStayIsolated(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InitCollection(ctx, 4, "team/docs", "", true))
	require.NoError(t, s.InsertData(ctx, "team/docs", makeChunks(3, 4, "nested")))
	require.NoError(t, s.InitCollection(ctx, 4, "team", "", true))
	require.NoError(t, s.InsertData(ctx, "team", makeChunks(1, 4, "outer")))

	outer, err := s.ListChunks("team")
	require.NoError(t, err)
	require.Len(t, outer, 1)
	assert.Equal(t, "outer-0", outer[0].ChunkId)

	// recreating the shorter name leaves the nested collection alone
	require.NoError(t, s.InitCollection(ctx, 4, "team", "", true))
	nested, err := s.ListChunks("team/docs")
	require.NoError(t, err)
	assert.Len(t, nested, 3)
	desc, err := s.GetCollection("team/docs")
	require.NoError(t, err)
	assert.Equal(t, 3, desc.Count)

	outer, err = s.ListChunks("team")
	require.NoError(t, err)
	assert.Empty(t, outer)
}

func TestDimensionChecks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.InitCollection(ctx, 0, "docs", "", true), vectorDB.ErrInvalidDimension)

	require.NoError(t, s.InitCollection(ctx, 4, "docs", "", true))
	assert.NoError(t, s.InitCollection(ctx, 4, "docs", "", false))
	assert.ErrorIs(t, s.InitCollection(ctx, 8, "docs", "", false), vectorDB.ErrDimensionMismatch)
	assert.ErrorIs(t, s.InsertData(ctx, "docs", makeChunks(1, 3, "x")), vectorDB.ErrDimensionMismatch)
}

func TestInsertUnknownCollection(t *testing.T) {
	s := openTestStore(t)
	err := s.InsertData(context.Background(), "nope", makeChunks(1, 4, "x"))
	assert.ErrorIs(t, err, vectorDB.ErrCollectionNotFound)
}

func TestPersistentStore(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(ctx, dir)
	require.NoError(t, err)
	require.NoError(t, s.InitCollection(ctx, 2, "docs", "", true))
	require.NoError(t, s.InsertData(ctx, "docs", makeChunks(2, 2, "p")))
	require.NoError(t, s.Close())

	s, err = Open(ctx, dir)
	require.NoError(t, err)
	defer s.Close()
	chunks, err := s.ListChunks("docs")
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}
