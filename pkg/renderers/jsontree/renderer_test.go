package jsontree_test

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/render"
	"github.com/goliatone/go-schemaform/pkg/renderers/jsontree"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

func TestRendererEncodesTree(t *testing.T) {
	f, err := form.New([]schema.Node{{
		ControlType: "list",
		DataIndex:   "items",
		Children:    []schema.Node{{ControlType: "text", DataIndex: "title"}},
	}}, map[string]any{"items": []any{map[string]any{"title": "a"}}})
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	tree, err := f.Render()
	if err != nil {
		t.Fatalf("render tree: %v", err)
	}

	renderer := jsontree.New(jsontree.WithIndent("  "))
	out, err := renderer.Render(context.Background(), tree, render.RenderOptions{
		Method: "patch",
		Errors: map[string][]string{"items[0].title": {"required"}},
		Hidden: map[string]string{"_csrf": "tok", "_action": "x"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var doc struct {
		Method      string              `json:"method"`
		ActionField string              `json:"actionField"`
		Errors      map[string][]string `json:"errors"`
		Hidden      map[string]string   `json:"hidden"`
		Nodes       []struct {
			Kind     string `json:"kind"`
			Name     string `json:"name"`
			Children []struct {
				Kind   string `json:"kind"`
				Name   string `json:"name"`
				Action *struct {
					ID string `json:"id"`
				} `json:"action"`
				Children []struct {
					Kind   string `json:"kind"`
					Name   string `json:"name"`
					Value  any    `json:"value"`
					Action *struct {
						ID string `json:"id"`
					} `json:"action"`
				} `json:"children"`
			} `json:"children"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}

	if doc.Method != "PATCH" || doc.ActionField != render.ActionField {
		t.Fatalf("unexpected envelope %+v", doc)
	}
	if diff := cmp.Diff(map[string]string{"_csrf": "tok"}, doc.Hidden); diff != "" {
		t.Fatalf("hidden mismatch (-want +got):\n%s", diff)
	}
	if len(doc.Nodes) != 1 || doc.Nodes[0].Kind != "list" || doc.Nodes[0].Name != "items" {
		t.Fatalf("unexpected nodes %+v", doc.Nodes)
	}
	children := doc.Nodes[0].Children
	if len(children) != 2 || children[0].Kind != "row" || children[1].Action == nil || children[1].Action.ID != "add:items" {
		t.Fatalf("unexpected list children %+v", children)
	}
	cells := children[0].Children
	if len(cells) != 2 || cells[0].Name != "items[0].title" || cells[0].Value != "a" {
		t.Fatalf("unexpected row cells %+v", cells)
	}
	if cells[1].Action == nil || cells[1].Action.ID != "remove:items[0]" {
		t.Fatalf("expected remove action last, got %+v", cells[1])
	}
}

func TestRendererEmptyTree(t *testing.T) {
	out, err := jsontree.New().Render(context.Background(), nil, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `{"method":"POST","actionField":"_action","nodes":[]}`
	if string(out) != want {
		t.Fatalf("unexpected output %s", out)
	}
}
