package splitter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/domain/commonModels"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
	"github.com/tmc/langchaingo/textsplitter"
)

type Splitter interface {
	Split(docs []commonModels.Document) ([]commonModels.DocChunk, error)
}

// RecursiveSplitter cuts documents on paragraph, line and word boundaries and
// attaches a wider window of surrounding text to every chunk.
type RecursiveSplitter struct {
	splitter textsplitter.TextSplitter
	padding  int
	logger   *logger_i.Logger
}

var _ Splitter = (*RecursiveSplitter)(nil)

func NewRecursiveSplitter(chunkSize, chunkOverlap, padding int) *RecursiveSplitter {
	if chunkSize <= 0 {
		chunkSize = config.ChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = min(config.ChunkOverlap, chunkSize/2)
	}
	if padding < 0 {
		padding = config.WiderTextPadding
	}
	return &RecursiveSplitter{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
		padding: padding,
		logger:  logger_i.NewLogger("splitter"),
	}
}

func NewDefault() *RecursiveSplitter {
	return NewRecursiveSplitter(config.ChunkSize, config.ChunkOverlap, config.WiderTextPadding)
}

// Split keeps document order and, within a document, text order.
func (s *RecursiveSplitter) Split(docs []commonModels.Document) ([]commonModels.DocChunk, error) {
	var allChunks []commonModels.DocChunk

	for _, doc := range docs {
		if strings.TrimSpace(doc.Content) == "" {
			continue
		}
		texts, err := s.splitter.SplitText(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("splitting %s: %w", doc.Source, err)
		}

		cursor := 0
		for i, text := range texts {
			start := strings.Index(doc.Content[cursor:], text)
			wider := text
			if start >= 0 {
				start += cursor
				wider = window(doc.Content, start, start+len(text), s.padding)
				cursor = start + 1
			}

			allChunks = append(allChunks, commonModels.DocChunk{
				Doc:            doc,
				ChunkId:        uuid.NewString(),
				Chunk:          text,
				Reference:      doc.Source,
				PageNum:        doc.PageNum,
				ChunkPageOrder: i,
				Metadata:       map[string]string{commonModels.MetadataWiderText: wider},
			})
		}
	}
	s.logger.Debug("Split documents", "documents", len(docs), "chunks", len(allChunks))
	return allChunks, nil
}

// window returns text[start:end] padded by up to padding bytes on each side,
// widened to rune boundaries.
func window(text string, start, end, padding int) string {
	from := max(0, start-padding)
	for from > 0 && !utf8.RuneStart(text[from]) {
		from--
	}
	to := min(len(text), end+padding)
	for to < len(text) && !utf8.RuneStart(text[to]) {
		to++
	}
	return text[from:to]
}
