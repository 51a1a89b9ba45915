package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dslipak/pdf"
	"github.com/google/uuid"
	"github.com/lu4p/cat"
	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/domain/commonModels"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
	"github.com/panjf2000/ants/v2"
)

type rawPage struct {
	Number  int
	Content string
}

// LocalFileLoader reads pdf, docx/odt/rtf and plain text files. Directory
// loads extract files on a bounded pool and keep lexical path order.
type LocalFileLoader struct {
	pool   *ants.Pool
	logger *logger_i.Logger
}

var _ FileLoader = (*LocalFileLoader)(nil)

func NewLocalFileLoader(poolSize int) (*LocalFileLoader, error) {
	if poolSize <= 0 {
		poolSize = config.LoaderPoolSize
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("creating loader pool: %w", err)
	}
	return &LocalFileLoader{pool: pool, logger: logger_i.NewLogger("file_loader")}, nil
}

func (l *LocalFileLoader) Close() {
	l.pool.Release()
}

func (l *LocalFileLoader) LoadFile(ctx context.Context, path string) ([]commonModels.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docType := GetDocType(path)
	if docType == commonModels.ERR {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, path)
	}

	pages, err := l.extractText(path, docType)
	if err != nil {
		return nil, err
	}

	docId := uuid.NewString()
	now := time.Now()
	docs := make([]commonModels.Document, 0, len(pages))
	for _, p := range pages {
		docs = append(docs, commonModels.Document{
			Id:                  docId,
			Name:                filepath.Base(path),
			Source:              path,
			Content:             p.Content,
			PageNum:             p.Number,
			LastIngestTimestamp: now,
			ContentType:         docType,
		})
	}
	l.logger.Debug("Loaded file", "path", path, "type", docType, "pages", len(docs))
	return docs, nil
}

func (l *LocalFileLoader) LoadDirectory(ctx context.Context, dir string) ([]commonModels.Document, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if GetDocType(path) == commonModels.ERR {
			l.logger.Debug("Skipping unsupported file", "path", path)
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}

	results := make([][]commonModels.Document, len(files))
	errs := make([]error, len(files))
	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		if err := l.pool.Submit(func() {
			defer wg.Done()
			results[i], errs[i] = l.LoadFile(ctx, f)
		}); err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("scheduling %s: %w", f, err)
			break
		}
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	var docs []commonModels.Document
	for _, r := range results {
		docs = append(docs, r...)
	}
	l.logger.Info("Loaded directory", "dir", dir, "files", len(files), "documents", len(docs))
	return docs, nil
}

func (l *LocalFileLoader) extractText(path string, contentType commonModels.DocType) ([]rawPage, error) {
	switch contentType {
	case commonModels.PDF:
		return l.extractPDF(path)
	case commonModels.DOCX:
		return l.extractDocxOdtRtf(path)
	case commonModels.TXT, commonModels.MD:
		return extractPlainText(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
	}
}

func (l *LocalFileLoader) extractPDF(path string) ([]rawPage, error) {
	f, err := pdf.Open(path)
	if err != nil {
		l.logger.Error("failed opening of pdf file", "path", path, "error", err)
		return nil, fmt.Errorf("failed to open pdf %s: %w", path, err)
	}

	var pages []rawPage
	numPages := f.NumPage()
	l.logger.Debug("extractPDF", "path", path, "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := l.protectExtract(page)
		if err != nil {
			// one bad page should not lose the whole document
			l.logger.Warn("Error parsing page content", "path", path, "page", i, "error", err)
			continue
		}
		if content == "" {
			continue
		}

		pages = append(pages, rawPage{
			Number:  i,
			Content: content,
		})
	}
	return pages, nil
}

func (l *LocalFileLoader) extractDocxOdtRtf(path string) ([]rawPage, error) {
	text, err := cat.File(path)
	if err != nil {
		l.logger.Error("Error extracting content from doc", "path", path, "error", err)
		return nil, fmt.Errorf("failed to extract %s: %w", path, err)
	}

	// these formats carry no page boundaries
	return []rawPage{{Number: 1, Content: text}}, nil
}

func extractPlainText(path string) ([]rawPage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return []rawPage{{Number: 1, Content: string(data)}}, nil
}

func (l *LocalFileLoader) protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(config.PDFPageExtractTimeout):
		return "", errors.New("page extraction timed out")
	}
}
