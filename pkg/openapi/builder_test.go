package openapi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemaform/internal/openapi/parser"
	"github.com/goliatone/go-schemaform/pkg/openapi"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

func ptr[T any](v T) *T { return &v }

func TestBuilderMapsPropertyTypes(t *testing.T) {
	body := openapi.Schema{
		Type:     "object",
		Required: []string{"title"},
		Properties: map[string]openapi.Schema{
			"title":     {Type: "string", MaxLength: ptr(80), Description: "Shown in listings"},
			"body":      {Type: "string", MaxLength: ptr(4000)},
			"status":    {Type: "string", Enum: []any{"draft", "published"}},
			"published": {Type: "boolean"},
			"rating":    {Type: "integer", Minimum: ptr(1.0), Maximum: ptr(5.0)},
			"secret":    {Type: "string", Format: "password"},
			"meta":      {Type: "object", Properties: map[string]openapi.Schema{"a": {Type: "string"}}},
			"id":        {Type: "string", ReadOnly: true},
			"tags":      {Type: "array", Items: &openapi.Schema{Type: "string", Enum: []any{"go", "web"}}},
		},
	}
	nodes, err := openapi.NewBuilder().Build(openapi.MustNewOperation("createPost", "post", "/posts", body))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	got := make(map[string]string, len(nodes))
	order := make([]string, 0, len(nodes))
	for _, node := range nodes {
		got[node.DataIndex] = node.ControlType
		order = append(order, node.DataIndex)
	}
	want := map[string]string{
		"title":     schema.ControlInput,
		"body":      schema.ControlTextArea,
		"status":    schema.ControlSelect,
		"published": schema.ControlSwitch,
		"rating":    schema.ControlInputNumber,
		"secret":    schema.ControlInputPassword,
		"meta":      schema.ControlJSON,
		"tags":      schema.ControlCheckboxGroup,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("control types mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"body", "meta", "published", "rating", "secret", "status", "tags", "title"}, order); diff != "" {
		t.Fatalf("expected alphabetical order (-want +got):\n%s", diff)
	}

	title := nodes[len(nodes)-1]
	if title.Label != "Title" || title.ControlProps["required"] != true {
		t.Fatalf("unexpected title node %+v", title)
	}
	if title.FormItemProps["extra"] != "Shown in listings" {
		t.Fatalf("expected description as help text, got %v", title.FormItemProps)
	}
	rating := nodes[3]
	if rating.ControlProps["min"] != 1.0 || rating.ControlProps["max"] != 5.0 || rating.ControlProps["step"] != 1 {
		t.Fatalf("unexpected rating props %v", rating.ControlProps)
	}
}

func TestBuilderBuildsListsAndAppliesExtensions(t *testing.T) {
	body := openapi.Schema{
		Type:       "object",
		Extensions: map[string]any{"order": []any{"authors", "name"}},
		Properties: map[string]openapi.Schema{
			"name": {Type: "string", Extensions: map[string]any{"label": "Display name", "placeholder": "Jane"}},
			"authors": {
				Type: "array",
				Items: &openapi.Schema{
					Type: "object",
					Properties: map[string]openapi.Schema{
						"firstName": {Type: "string"},
						"bio":       {Type: "string", Extensions: map[string]any{"controlType": "textarea", "visibleWhen": "firstName != ''"}},
					},
				},
			},
		},
	}

	nodes, err := openapi.NewBuilder().Build(openapi.MustNewOperation("createBook", "post", "/books", body))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(nodes) != 2 || nodes[0].DataIndex != "authors" || nodes[1].DataIndex != "name" {
		t.Fatalf("expected ordered nodes, got %+v", nodes)
	}

	authors := nodes[0]
	if authors.Kind() != schema.KindList || len(authors.Children) != 2 {
		t.Fatalf("expected list with two children, got %+v", authors)
	}
	bio, first := authors.Children[0], authors.Children[1]
	if bio.ControlType != "textarea" || bio.VisibleWhen != "firstName != ''" {
		t.Fatalf("expected extension overrides on bio, got %+v", bio)
	}
	if first.Label != "First name" {
		t.Fatalf("expected humanised label, got %q", first.Label)
	}
	if nodes[1].Label != "Display name" || nodes[1].ControlProps["placeholder"] != "Jane" {
		t.Fatalf("unexpected name node %+v", nodes[1])
	}
}

func TestBuilderRejectsNonObjectBodies(t *testing.T) {
	op := openapi.MustNewOperation("upload", "post", "/files", openapi.Schema{Type: "string", Format: "binary"})
	if _, err := openapi.NewBuilder().Build(op); err == nil {
		t.Fatalf("expected error for scalar request body")
	}
}

func TestBuilderDefaults(t *testing.T) {
	body := openapi.Schema{
		Type: "object",
		Properties: map[string]openapi.Schema{
			"status": {Type: "string", Default: "draft"},
			"id":     {Type: "string", Default: "x", ReadOnly: true},
			"title":  {Type: "string"},
		},
	}
	got := openapi.NewBuilder().Defaults(openapi.MustNewOperation("op", "post", "/", body))
	if diff := cmp.Diff(map[string]any{"status": "draft"}, got); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"first_name": "First name",
		"firstName":  "First name",
		"zip-code":   "Zip code",
		"address2":   "Address 2",
		"":           "",
	}
	for input, want := range cases {
		if got := openapi.DefaultLabeler(input); got != want {
			t.Fatalf("DefaultLabeler(%q) = %q, want %q", input, got, want)
		}
	}
}

const petstore = `
openapi: 3.0.3
info: {title: Pets, version: "1.0"}
paths:
  /pets:
    post:
      operationId: createPet
      summary: Add a pet
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [name]
              properties:
                name: {type: string}
                vaccinated: {type: boolean}
      responses:
        "201": {description: created}
    get:
      operationId: listPets
      responses:
        "200": {description: ok}
  /pets/{id}:
    put:
      operationId: updatePet
      parameters:
        - {name: id, in: path, required: true, schema: {type: string}}
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                name: {type: string}
      responses:
        "200": {description: ok}
`

func newAdapter() *openapi.Adapter {
	return openapi.NewAdapter(parser.New(openapi.NewParserOptions()), nil)
}

func TestAdapterListsForms(t *testing.T) {
	adapter := newAdapter()
	doc := schema.MustNewDocument(schema.SourceFromFS("pets.yaml"), []byte(petstore))
	if !adapter.Detect(doc.Source(), doc.Raw()) {
		t.Fatalf("expected document to be detected as OpenAPI")
	}

	refs, err := adapter.Forms(context.Background(), doc)
	if err != nil {
		t.Fatalf("forms: %v", err)
	}
	want := []schema.FormRef{
		{ID: "createPet", Title: "Add a pet", Method: "POST", Endpoint: "/pets"},
		{ID: "updatePet", Method: "PUT", Endpoint: "/pets/{id}"},
	}
	if diff := cmp.Diff(want, refs); diff != "" {
		t.Fatalf("forms mismatch (-want +got):\n%s", diff)
	}
}

func TestAdapterNodes(t *testing.T) {
	adapter := newAdapter()
	doc := schema.MustNewDocument(schema.SourceFromFS("pets.yaml"), []byte(petstore))

	nodes, err := adapter.Nodes(context.Background(), doc, "createPet")
	if err != nil {
		t.Fatalf("nodes: %v", err)
	}
	if len(nodes) != 2 || nodes[0].DataIndex != "name" || nodes[1].ControlType != schema.ControlSwitch {
		t.Fatalf("unexpected nodes %+v", nodes)
	}

	if _, err := adapter.Nodes(context.Background(), doc, "listPets"); !errors.Is(err, schema.ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound for body-less operation, got %v", err)
	}
	if _, err := adapter.Nodes(context.Background(), doc, ""); err == nil {
		t.Fatalf("expected ambiguity error without an operation id")
	}
}

func TestAdapterDetect(t *testing.T) {
	adapter := newAdapter()
	if adapter.Detect(nil, []byte(`{"fields":[]}`)) {
		t.Fatalf("native documents must not be detected as OpenAPI")
	}
	if !adapter.Detect(nil, []byte(`{"openapi":"3.1.0"}`)) {
		t.Fatalf("expected JSON OpenAPI document to be detected")
	}
}
