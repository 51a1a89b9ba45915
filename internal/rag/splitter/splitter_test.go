package splitter

import (
	"strings"
	"testing"

	"github.com/niexiaoning/deep-searcher/internal/domain/commonModels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSmallDocument(t *testing.T) {
	s := NewDefault()
	chunks, err := s.Split([]commonModels.Document{{Id: "d1", Source: "a.txt", Content: "short text", PageNum: 2}})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0].Chunk)
	assert.Equal(t, "a.txt", chunks[0].Reference)
	assert.Equal(t, 2, chunks[0].PageNum)
	assert.Equal(t, "short text", chunks[0].Metadata[commonModels.MetadataWiderText])
	assert.NotEmpty(t, chunks[0].ChunkId)
}

func TestSplitRespectsChunkSizeAndOrder(t *testing.T) {
	var paragraphs []string
	for i := 0; i < 20; i++ {
		paragraphs = append(paragraphs, strings.Repeat("word ", 20)+string(rune('a'+i)))
	}
	content := strings.Join(paragraphs, "\n\n")

	s := NewRecursiveSplitter(200, 20, 50)
	chunks, err := s.Split([]commonModels.Document{
		{Id: "first", Source: "1.txt", Content: content},
		{Id: "second", Source: "2.txt", Content: "tail"},
	})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)

	for i, c := range chunks[:len(chunks)-1] {
		assert.LessOrEqual(t, len([]rune(c.Chunk)), 200)
		assert.Equal(t, "first", c.Doc.Id)
		assert.Equal(t, i, c.ChunkPageOrder)
		wider := c.Metadata[commonModels.MetadataWiderText]
		assert.Contains(t, wider, c.Chunk)
		assert.LessOrEqual(t, len(wider), len(c.Chunk)+100)
	}
	last := chunks[len(chunks)-1]
	assert.Equal(t, "second", last.Doc.Id)
	assert.Equal(t, 0, last.ChunkPageOrder)
}

func TestSplitSkipsEmptyDocuments(t *testing.T) {
	chunks, err := NewDefault().Split([]commonModels.Document{{Content: "  \n "}, {Content: ""}})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestWindowRuneBoundaries(t *testing.T) {
	text := "héllo wörld"
	start := strings.Index(text, "wörld")
	got := window(text, start, len(text), 2)
	assert.True(t, strings.HasSuffix(got, "wörld"))
	assert.True(t, len(got) >= len("wörld")+2)
	for _, r := range got {
		assert.NotEqual(t, '�', r)
	}
}
