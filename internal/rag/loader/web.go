package loader

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/customHttpClient"
	"github.com/niexiaoning/deep-searcher/internal/domain/commonModels"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
)

const maxPageBytes = 10 << 20

// WebPageLoader fetches a single page and extracts its visible text.
type WebPageLoader struct {
	client *http.Client
	logger *logger_i.Logger
}

var _ WebLoader = (*WebPageLoader)(nil)

func NewWebPageLoader(client *http.Client) *WebPageLoader {
	if client == nil {
		client = customHttpClient.NewPooledClient(config.WebFetchTimeout)
	}
	return &WebPageLoader{client: client, logger: logger_i.NewLogger("web_loader")}
}

func (w *WebPageLoader) LoadURL(ctx context.Context, url string) ([]commonModels.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", config.WebUserAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Error("fetch failed", "url", url, "error", err)
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, maxPageBytes)
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))

	var name, text string
	docType := commonModels.HTML
	switch {
	case mediaType == "" || mediaType == "text/html" || mediaType == "application/xhtml+xml":
		name, text, err = extractHTML(body)
	case strings.HasPrefix(mediaType, "text/"):
		docType = commonModels.TXT
		var data []byte
		data, err = io.ReadAll(body)
		text = string(data)
	default:
		return nil, fmt.Errorf("%w: %s serves %s", ErrUnsupportedFileType, url, mediaType)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if name == "" {
		name = url
	}

	w.logger.Debug("Loaded page", "url", url, "bytes", len(text))
	return []commonModels.Document{{
		Id:                  uuid.NewString(),
		Name:                name,
		Source:              url,
		Content:             text,
		PageNum:             1,
		LastIngestTimestamp: time.Now(),
		ContentType:         docType,
	}}, nil
}

func extractHTML(r io.Reader) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", "", err
	}
	doc.Find("script, style, noscript, template").Remove()
	title := strings.TrimSpace(doc.Find("title").First().Text())

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	return title, collapseBlankLines(root.Text()), nil
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
