package jsonschema

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	pkgopenapi "github.com/goliatone/go-schemaform/pkg/openapi"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

// AdapterName is the registry name of the adapter.
const AdapterName = "jsonschema"

const (
	draft202012   = "https://json-schema.org/draft/2020-12/schema"
	defaultMethod = "POST"
	defaultPath   = "/"
)

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithLoader resolves refs into other documents through loader. Without one
// only refs inside the document are followed.
func WithLoader(loader schema.Loader) AdapterOption {
	return func(a *Adapter) {
		a.loader = loader
	}
}

// WithResolveOptions sets the ref resolution guardrails.
func WithResolveOptions(options ResolveOptions) AdapterOption {
	return func(a *Adapter) {
		a.resolve = options
	}
}

// WithBuilder replaces the property to node mapping.
func WithBuilder(builder *pkgopenapi.Builder) AdapterOption {
	return func(a *Adapter) {
		a.builder = builder
	}
}

// Adapter implements schema.FormatAdapter for JSON Schema documents.
type Adapter struct {
	loader  schema.Loader
	resolve ResolveOptions
	builder *pkgopenapi.Builder
}

var _ schema.FormatAdapter = (*Adapter)(nil)

// NewAdapter constructs a JSON Schema adapter.
func NewAdapter(options ...AdapterOption) *Adapter {
	a := &Adapter{}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}
	if a.builder == nil {
		a.builder = pkgopenapi.NewBuilder()
	}
	a.resolve = a.resolve.withDefaults()
	return a
}

func (a *Adapter) Name() string {
	return AdapterName
}

// Detect accepts documents declaring a $schema, and bare object schemas that
// carry properties. OpenAPI documents and native "fields" documents are left
// to their own adapters.
func (a *Adapter) Detect(_ schema.Source, raw []byte) bool {
	payload, err := decode(raw)
	if err != nil {
		return false
	}
	for _, key := range []string{"openapi", "swagger", "fields"} {
		if _, ok := payload[key]; ok {
			return false
		}
	}
	if _, ok := payload["$schema"]; ok {
		return true
	}
	_, hasProperties := payload["properties"].(map[string]any)
	return hasProperties && stringOf(payload["type"]) == "object"
}

// Forms lists the forms of doc. Without declared forms the root schema is
// the only form, named after $id when present.
func (a *Adapter) Forms(ctx context.Context, doc schema.Document) ([]schema.FormRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payload, err := parseDocument(doc)
	if err != nil {
		return nil, err
	}
	forms, err := declaredForms(payload)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: %s: %w", doc.Location(), err)
	}
	refs := make([]schema.FormRef, 0, len(forms))
	for _, form := range forms {
		refs = append(refs, form.FormRef)
	}
	return refs, nil
}

// Nodes resolves the selected form's schema and maps its properties.
func (a *Adapter) Nodes(ctx context.Context, doc schema.Document, formID string) ([]schema.Node, error) {
	op, err := a.operation(ctx, doc, formID)
	if err != nil {
		return nil, err
	}
	return a.builder.Build(op)
}

// Defaults returns the top-level property defaults of the selected form.
func (a *Adapter) Defaults(ctx context.Context, doc schema.Document, formID string) (map[string]any, error) {
	op, err := a.operation(ctx, doc, formID)
	if err != nil {
		return nil, err
	}
	return a.builder.Defaults(op), nil
}

func (a *Adapter) operation(ctx context.Context, doc schema.Document, formID string) (pkgopenapi.Operation, error) {
	form, resolved, err := a.resolveForm(ctx, doc, formID)
	if err != nil {
		return pkgopenapi.Operation{}, err
	}
	body := convert(resolved)
	if !body.IsObject() {
		return pkgopenapi.Operation{}, fmt.Errorf("jsonschema: form %s: schema must be an object with properties", form.ID)
	}

	op, err := pkgopenapi.NewOperation(form.ID, form.Method, form.Endpoint, body)
	if err != nil {
		return pkgopenapi.Operation{}, err
	}
	op.Summary = form.Title
	op.Description = form.Description
	return op, nil
}

// resolveForm picks the form and returns its schema with every ref inlined.
func (a *Adapter) resolveForm(ctx context.Context, doc schema.Document, formID string) (formEntry, map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return formEntry{}, nil, err
	}
	payload, err := parseDocument(doc)
	if err != nil {
		return formEntry{}, nil, err
	}
	forms, err := declaredForms(payload)
	if err != nil {
		return formEntry{}, nil, fmt.Errorf("jsonschema: %s: %w", doc.Location(), err)
	}
	form, err := pickForm(forms, formID)
	if err != nil {
		return formEntry{}, nil, err
	}

	resolver := newResolver(a.loader, a.resolve)
	resolved, err := resolver.resolve(ctx, doc, payload, form.ref)
	if err != nil {
		return formEntry{}, nil, fmt.Errorf("jsonschema: form %s: %w", form.ID, err)
	}
	return form, resolved, nil
}

type formEntry struct {
	schema.FormRef
	ref string
}

func declaredForms(payload map[string]any) ([]formEntry, error) {
	if dialect := strings.TrimSuffix(stringOf(payload["$schema"]), "#"); dialect != "" && !isDraft202012(dialect) {
		return nil, fmt.Errorf("unsupported $schema %q", dialect)
	}

	meta, _ := payload[pkgopenapi.ExtensionKey].(map[string]any)
	list, ok := meta["forms"]
	if !ok {
		id := stringOf(payload["$id"])
		if id == "" {
			id = schema.DefaultFormID
		}
		return []formEntry{{
			FormRef: schema.FormRef{
				ID:          id,
				Title:       stringOf(payload["title"]),
				Description: stringOf(payload["description"]),
				Method:      defaultMethod,
				Endpoint:    defaultPath,
			},
			ref: "#",
		}}, nil
	}

	entries, ok := list.([]any)
	if !ok || len(entries) == 0 {
		return nil, fmt.Errorf("%s.forms must be a non-empty array", pkgopenapi.ExtensionKey)
	}
	forms := make([]formEntry, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for idx, item := range entries {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s.forms[%d] must be an object", pkgopenapi.ExtensionKey, idx)
		}
		id := stringOf(entry["id"])
		if id == "" {
			return nil, fmt.Errorf("%s.forms[%d].id is required", pkgopenapi.ExtensionKey, idx)
		}
		if seen[id] {
			return nil, fmt.Errorf("%s.forms: duplicate id %q", pkgopenapi.ExtensionKey, id)
		}
		seen[id] = true
		form := formEntry{
			FormRef: schema.FormRef{
				ID:          id,
				Title:       stringOf(entry["title"]),
				Description: stringOf(entry["description"]),
				Method:      strings.ToUpper(firstNonEmpty(stringOf(entry["method"]), defaultMethod)),
				Endpoint:    firstNonEmpty(stringOf(entry["endpoint"]), defaultPath),
			},
			ref: firstNonEmpty(stringOf(entry["ref"]), "#"),
		}
		forms = append(forms, form)
	}
	return forms, nil
}

func pickForm(forms []formEntry, id string) (formEntry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		if len(forms) == 1 {
			return forms[0], nil
		}
		return formEntry{}, fmt.Errorf("jsonschema: %d forms available, a form id is required", len(forms))
	}
	for _, form := range forms {
		if form.ID == id {
			return form, nil
		}
	}
	// A single undeclared root form also answers to the default id.
	if len(forms) == 1 && id == schema.DefaultFormID {
		return forms[0], nil
	}
	return formEntry{}, fmt.Errorf("%w: %q", schema.ErrFormNotFound, id)
}

func parseDocument(doc schema.Document) (map[string]any, error) {
	payload, err := decode(doc.Raw())
	if err != nil {
		return nil, fmt.Errorf("jsonschema: %s: %w", doc.Location(), err)
	}
	return payload, nil
}

// decode reads a JSON or YAML object.
func decode(raw []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("empty document")
	}
	var payload map[string]any
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	} else if err := yaml.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if payload == nil {
		return nil, errors.New("document is not an object")
	}
	return payload, nil
}

func isDraft202012(value string) bool {
	value = strings.TrimSuffix(strings.TrimSpace(value), "#")
	return value == draft202012 || value == strings.Replace(draft202012, "https://", "http://", 1)
}

func stringOf(value any) string {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
