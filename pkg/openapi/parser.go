package openapi

import (
	"context"

	"github.com/goliatone/go-schemaform/pkg/schema"
)

// Parser extracts operations from a raw OpenAPI document. The kin-openapi
// implementation lives in internal/openapi/parser.
type Parser interface {
	Operations(ctx context.Context, doc schema.Document) (map[string]Operation, error)
}

// ParserOptions tunes document loading.
type ParserOptions struct {
	// ResolveReferences validates the document and follows external refs.
	ResolveReferences bool

	// AllowEmptyDocuments accepts documents without operations.
	AllowEmptyDocuments bool
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

func WithReferenceResolution(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.ResolveReferences = enabled
	}
}

func WithEmptyDocuments(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.AllowEmptyDocuments = enabled
	}
}

// NewParserOptions applies options over the defaults.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{ResolveReferences: true}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
