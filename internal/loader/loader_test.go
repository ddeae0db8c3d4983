package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-schemaform/pkg/schema"
)

const document = `{"fields":[{"controlType":"input","dataIndex":"title"}]}`

func TestLoaderReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "form.json")
	if err := os.WriteFile(path, []byte(document), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	doc, err := New(schema.NewLoaderOptions()).Load(context.Background(), schema.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != document {
		t.Fatalf("unexpected payload %q", doc.Raw())
	}
	if doc.Location() != path {
		t.Fatalf("expected location %q, got %q", path, doc.Location())
	}
}

func TestLoaderReadsFS(t *testing.T) {
	files := fstest.MapFS{"forms/post.json": {Data: []byte(document)}}
	l := New(schema.NewLoaderOptions(schema.WithFileSystem(files)))

	doc, err := l.Load(context.Background(), schema.SourceFromFS("/forms/post.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != document {
		t.Fatalf("unexpected payload %q", doc.Raw())
	}

	if _, err := New(schema.NewLoaderOptions()).Load(context.Background(), schema.SourceFromFS("forms/post.json")); err == nil {
		t.Fatalf("expected error without filesystem")
	}
}

func TestLoaderHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(document))
	}))
	defer server.Close()

	src, err := schema.SourceFromURL(server.URL + "/form.json")
	if err != nil {
		t.Fatalf("source: %v", err)
	}

	if _, err := New(schema.NewLoaderOptions()).Load(context.Background(), src); !errors.Is(err, ErrHTTPDisabled) {
		t.Fatalf("expected ErrHTTPDisabled, got %v", err)
	}

	l := New(schema.NewLoaderOptions(schema.WithHTTPClient(server.Client())))
	doc, err := l.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != document {
		t.Fatalf("unexpected payload %q", doc.Raw())
	}

	missing, _ := schema.SourceFromURL(server.URL + "/missing")
	if _, err := l.Load(context.Background(), missing); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestLoaderEnforcesMaxBytes(t *testing.T) {
	files := fstest.MapFS{"form.json": {Data: []byte(document)}}
	l := New(schema.NewLoaderOptions(schema.WithFileSystem(files), schema.WithMaxBytes(8)))

	if _, err := l.Load(context.Background(), schema.SourceFromFS("form.json")); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestLoaderHonoursCancelledContext(t *testing.T) {
	files := fstest.MapFS{"form.json": {Data: []byte(document)}}
	l := New(schema.NewLoaderOptions(schema.WithFileSystem(files)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Load(ctx, schema.SourceFromFS("form.json")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
