package loader

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/niexiaoning/deep-searcher/internal/domain/commonModels"
)

var ErrUnsupportedFileType = errors.New("unsupported file type")

// FileLoader turns files on disk into documents.
type FileLoader interface {
	LoadFile(ctx context.Context, path string) ([]commonModels.Document, error)
	LoadDirectory(ctx context.Context, dir string) ([]commonModels.Document, error)
}

// WebLoader turns a URL into documents.
type WebLoader interface {
	LoadURL(ctx context.Context, url string) ([]commonModels.Document, error)
}

func GetDocType(docPath string) commonModels.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".odt", ".rtf":
		return commonModels.DOCX
	case ".txt":
		return commonModels.TXT
	case ".md", ".markdown":
		return commonModels.MD
	default:
		return commonModels.ERR
	}
}

// SupportedExtensions is used by the upload handler to reject files early.
func SupportedExtensions() []string {
	return []string{".pdf", ".docx", ".odt", ".rtf", ".txt", ".md", ".markdown"}
}
