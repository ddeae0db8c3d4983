package schema

import (
	"context"
	"errors"
	"testing"
)

func TestNativeAdapter(t *testing.T) {
	raw := []byte(`{
  "title": "Post",
  "fields": [
    {"controlType": "input", "dataIndex": "title", "visibleWhen": " published == true "}
  ]
}`)
	doc := MustNewDocument(SourceFromFS("post.json"), raw)
	adapter := NativeAdapter{}

	if !adapter.Detect(doc.Source(), raw) {
		t.Fatalf("expected native document to be detected")
	}
	if adapter.Detect(nil, []byte(`openapi: 3.0.0`)) {
		t.Fatalf("OpenAPI documents must not be detected as native")
	}

	refs, err := adapter.Forms(context.Background(), doc)
	if err != nil {
		t.Fatalf("forms: %v", err)
	}
	if len(refs) != 1 || refs[0].ID != DefaultFormID || refs[0].Title != "Post" {
		t.Fatalf("unexpected refs %+v", refs)
	}

	nodes, err := adapter.Nodes(context.Background(), doc, "")
	if err != nil {
		t.Fatalf("nodes: %v", err)
	}
	if len(nodes) != 1 || nodes[0].VisibleWhen != "published == true" {
		t.Fatalf("unexpected nodes %+v", nodes)
	}

	if _, err := adapter.Nodes(context.Background(), doc, "other"); !errors.Is(err, ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
}

func TestNativeAdapterYAMLTitle(t *testing.T) {
	raw := []byte("title: Contact\nfields:\n  - controlType: input\n    dataIndex: email\n")
	doc := MustNewDocument(SourceFromFS("contact.yaml"), raw)

	if !(NativeAdapter{}).Detect(doc.Source(), raw) {
		t.Fatalf("expected YAML document to be detected")
	}
	refs, err := NativeAdapter{}.Forms(context.Background(), doc)
	if err != nil {
		t.Fatalf("forms: %v", err)
	}
	if refs[0].Title != "Contact" {
		t.Fatalf("expected YAML title, got %+v", refs[0])
	}
}

func TestParseSource(t *testing.T) {
	src, err := ParseSource("https://example.com/form.json")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if src.Kind() != SourceKindURL {
		t.Fatalf("expected url source, got %s", src.Kind())
	}

	src, err = ParseSource("./forms/../forms/post.yaml")
	if err != nil {
		t.Fatalf("parse file: %v", err)
	}
	if src.Kind() != SourceKindFile || src.Location() != "forms/post.yaml" {
		t.Fatalf("unexpected file source %s %q", src.Kind(), src.Location())
	}

	if _, err := ParseSource("  "); err == nil {
		t.Fatalf("expected error for empty reference")
	}
	if _, err := SourceFromURL("ftp://example.com/x"); err == nil {
		t.Fatalf("expected error for non-http scheme")
	}
}

func TestNewDocumentCopiesPayload(t *testing.T) {
	raw := []byte(`[]`)
	doc, err := NewDocument(SourceFromFS("x.json"), raw)
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	raw[0] = '{'
	if string(doc.Raw()) != "[]" {
		t.Fatalf("document must not alias the input slice")
	}
	if _, err := NewDocument(nil, raw); err == nil {
		t.Fatalf("expected error without source")
	}
	if _, err := NewDocument(SourceFromFS("x.json"), nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}
