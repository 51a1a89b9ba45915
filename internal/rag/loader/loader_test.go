package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/niexiaoning/deep-searcher/internal/domain/commonModels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestLoader(t *testing.T) *LocalFileLoader {
	t.Helper()
	l, err := NewLocalFileLoader(2)
	require.NoError(t, err)
	t.Cleanup(l.Close)
	return l
}

func TestGetDocType(t *testing.T) {
	tests := map[string]commonModels.DocType{
		"a.pdf":        commonModels.PDF,
		"b.DOCX":       commonModels.DOCX,
		"c.rtf":        commonModels.DOCX,
		"d.txt":        commonModels.TXT,
		"e.md":         commonModels.MD,
		"f.png":        commonModels.ERR,
		"no_extension": commonModels.ERR,
	}
	for path, want := range tests {
		assert.Equal(t, want, GetDocType(path), path)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	writeFile(t, path, "# Title\n\nSome notes.")

	docs, err := newTestLoader(t).LoadFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "notes.md", docs[0].Name)
	assert.Equal(t, path, docs[0].Source)
	assert.Equal(t, "# Title\n\nSome notes.", docs[0].Content)
	assert.Equal(t, commonModels.MD, docs[0].ContentType)
	assert.NotEmpty(t, docs[0].Id)
}

func TestLoadFileErrors(t *testing.T) {
	l := newTestLoader(t)
	dir := t.TempDir()

	img := filepath.Join(dir, "image.png")
	writeFile(t, img, "png")
	_, err := l.LoadFile(context.Background(), img)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	_, err = l.LoadFile(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadDirectoryOrderAndSkip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "bee")
	writeFile(t, filepath.Join(dir, "a.txt"), "ay")
	writeFile(t, filepath.Join(dir, "sub", "c.md"), "see")
	writeFile(t, filepath.Join(dir, "skip.bin"), "nope")

	docs, err := newTestLoader(t).LoadDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "ay", docs[0].Content)
	assert.Equal(t, "bee", docs[1].Content)
	assert.Equal(t, "see", docs[2].Content)
}

func TestLoadDirectoryMissing(t *testing.T) {
	_, err := newTestLoader(t).LoadDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadURLHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title> Deep Search </title><style>p{}</style></head>
<body><script>var x = 1;</script><h1>Hello</h1>
<p>First   paragraph.</p>

<p>Second paragraph.</p></body></html>`))
	}))
	defer srv.Close()

	docs, err := NewWebPageLoader(nil).LoadURL(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Deep Search", docs[0].Name)
	assert.Equal(t, srv.URL, docs[0].Source)
	assert.Equal(t, commonModels.HTML, docs[0].ContentType)
	assert.Contains(t, docs[0].Content, "First paragraph.")
	assert.Contains(t, docs[0].Content, "Second paragraph.")
	assert.NotContains(t, docs[0].Content, "var x")
}

func TestLoadURLPlainAndErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/plain", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("just text"))
	})
	mux.HandleFunc("/image", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	l := NewWebPageLoader(srv.Client())
	docs, err := l.LoadURL(context.Background(), srv.URL+"/plain")
	require.NoError(t, err)
	assert.Equal(t, "just text", docs[0].Content)
	assert.Equal(t, commonModels.TXT, docs[0].ContentType)

	_, err = l.LoadURL(context.Background(), srv.URL+"/image")
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	_, err = l.LoadURL(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}
