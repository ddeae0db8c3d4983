package schema

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrFormNotFound is returned when an adapter does not know the requested
// form id.
var ErrFormNotFound = errors.New("schema: form not found")

// FormRef describes one form a document can produce.
type FormRef struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Method      string `json:"method,omitempty"`
	Endpoint    string `json:"endpoint,omitempty"`
}

// FormatAdapter turns a document in some source format into schema nodes.
type FormatAdapter interface {
	Name() string
	// Detect reports whether raw looks like this adapter's format.
	Detect(src Source, raw []byte) bool
	Forms(ctx context.Context, doc Document) ([]FormRef, error)
	// Nodes decodes the form identified by formID. An empty id selects the
	// document's only form and fails when there is more than one.
	Nodes(ctx context.Context, doc Document, formID string) ([]Node, error)
}

const (
	NativeAdapterName = "schemaform"
	DefaultFormID     = "default"
)

// NativeAdapter reads the JSON/YAML node format accepted by Parse. A native
// document always describes exactly one form.
type NativeAdapter struct{}

var _ FormatAdapter = NativeAdapter{}

func (NativeAdapter) Name() string {
	return NativeAdapterName
}

func (NativeAdapter) Detect(_ Source, raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	lower := strings.ToLower(string(trimmed))
	if strings.Contains(lower, "openapi") || strings.Contains(lower, "swagger") {
		return false
	}
	if trimmed[0] == '[' {
		return true
	}
	return strings.Contains(lower, `"fields"`) || strings.HasPrefix(lower, "fields:") || strings.Contains(lower, "\nfields:")
}

func (NativeAdapter) Forms(ctx context.Context, doc Document) ([]FormRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	meta, err := parseDocumentMeta(doc.Raw())
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", doc.Location(), err)
	}
	return []FormRef{{ID: DefaultFormID, Title: meta.Title, Description: meta.Description}}, nil
}

func (NativeAdapter) Nodes(ctx context.Context, doc Document, formID string) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id := strings.TrimSpace(formID); id != "" && id != DefaultFormID {
		return nil, fmt.Errorf("%w: %q", ErrFormNotFound, formID)
	}
	location := doc.Location()
	if location == "" {
		location = "<input>"
	}
	return parse(doc.Raw(), location)
}
