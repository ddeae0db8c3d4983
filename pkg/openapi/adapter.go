package openapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-schemaform/pkg/schema"
)

const DefaultAdapterName = "openapi"

// Adapter exposes OpenAPI documents through schema.FormatAdapter. Every
// operation with a request body is a form keyed by its operationId.
type Adapter struct {
	parser  Parser
	builder *Builder
}

var _ schema.FormatAdapter = (*Adapter)(nil)

// NewAdapter constructs an adapter around parser. A nil builder uses
// NewBuilder().
func NewAdapter(parser Parser, builder *Builder) *Adapter {
	if builder == nil {
		builder = NewBuilder()
	}
	return &Adapter{parser: parser, builder: builder}
}

func (a *Adapter) Name() string {
	return DefaultAdapterName
}

func (a *Adapter) Detect(_ schema.Source, raw []byte) bool {
	return detectOpenAPI(raw)
}

// Forms lists operations that accept a request body, sorted by id.
func (a *Adapter) Forms(ctx context.Context, doc schema.Document) ([]schema.FormRef, error) {
	operations, err := a.operations(ctx, doc)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(operations))
	for id, op := range operations {
		if op.HasBody() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	refs := make([]schema.FormRef, 0, len(ids))
	for _, id := range ids {
		op := operations[id]
		refs = append(refs, schema.FormRef{
			ID:          id,
			Title:       strings.TrimSpace(op.Summary),
			Description: op.Description,
			Method:      op.Method,
			Endpoint:    op.Path,
		})
	}
	return refs, nil
}

// Nodes builds the node tree for the operation named formID. An empty id is
// accepted when the document has exactly one form.
func (a *Adapter) Nodes(ctx context.Context, doc schema.Document, formID string) ([]schema.Node, error) {
	operations, err := a.operations(ctx, doc)
	if err != nil {
		return nil, err
	}
	op, err := pickOperation(operations, strings.TrimSpace(formID))
	if err != nil {
		return nil, err
	}
	return a.builder.Build(op)
}

// Defaults returns the request body defaults of the selected operation, for
// seeding a fresh model.
func (a *Adapter) Defaults(ctx context.Context, doc schema.Document, formID string) (map[string]any, error) {
	operations, err := a.operations(ctx, doc)
	if err != nil {
		return nil, err
	}
	op, err := pickOperation(operations, strings.TrimSpace(formID))
	if err != nil {
		return nil, err
	}
	return a.builder.Defaults(op), nil
}

func (a *Adapter) operations(ctx context.Context, doc schema.Document) (map[string]Operation, error) {
	if a == nil || a.parser == nil {
		return nil, errors.New("openapi adapter: parser is nil")
	}
	return a.parser.Operations(ctx, doc)
}

func pickOperation(operations map[string]Operation, id string) (Operation, error) {
	if id != "" {
		op, ok := operations[id]
		if !ok || !op.HasBody() {
			return Operation{}, fmt.Errorf("%w: %q", schema.ErrFormNotFound, id)
		}
		return op, nil
	}
	var (
		found Operation
		count int
	)
	for _, op := range operations {
		if op.HasBody() {
			found = op
			count++
		}
	}
	switch count {
	case 0:
		return Operation{}, fmt.Errorf("%w: document has no operation with a request body", schema.ErrFormNotFound)
	case 1:
		return found, nil
	default:
		return Operation{}, fmt.Errorf("openapi adapter: %d forms available, an operation id is required", count)
	}
}

func detectOpenAPI(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] == '{' {
		var payload map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			_, openapi := payload["openapi"]
			_, swagger := payload["swagger"]
			return openapi || swagger
		}
	}
	for _, line := range strings.Split(string(trimmed), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "openapi:") || strings.HasPrefix(line, "swagger:") {
			return true
		}
	}
	return false
}
