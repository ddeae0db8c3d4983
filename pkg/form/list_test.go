package form

import (
	"errors"
	"testing"

	"github.com/goliatone/go-schemaform/internal/logging"
	"github.com/goliatone/go-schemaform/pkg/binding"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

func newItemsController(root map[string]any) *ListController {
	return NewListController(root, binding.Root(), itemsSchema()[0], nil, logging.Discard())
}

func TestListControllerAddCreatesArray(t *testing.T) {
	root := map[string]any{"sibling": "kept"}
	ctrl := newItemsController(root)

	if ctrl.Len() != 0 {
		t.Fatalf("expected no rows before add")
	}
	if _, ok := root["items"]; ok {
		t.Fatalf("reading rows must not create the array")
	}

	for want := range 3 {
		index, err := ctrl.Add()
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if index != want {
			t.Fatalf("add returned index %d, want %d", index, want)
		}
	}
	if got := len(root["items"].([]any)); got != 3 {
		t.Fatalf("expected 3 rows in model, got %d", got)
	}
	if root["sibling"] != "kept" {
		t.Fatalf("sibling field touched: %#v", root)
	}
}

func TestListControllerNormalisesTypedRows(t *testing.T) {
	root := map[string]any{"items": []map[string]any{{"title": "a"}, {"title": "b"}}}
	ctrl := newItemsController(root)

	if err := ctrl.RemoveDefault(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	rows, ok := root["items"].([]any)
	if !ok || len(rows) != 1 || rows[0].(map[string]any)["title"] != "b" {
		t.Fatalf("unexpected rows after remove: %#v", root["items"])
	}
}

func TestListControllerRemoveOutOfRange(t *testing.T) {
	ctrl := newItemsController(map[string]any{"items": []any{}})
	if err := ctrl.Remove(0); !errors.Is(err, binding.ErrRowNotFound) {
		t.Fatalf("expected row not found, got %v", err)
	}
	if err := ctrl.Remove(-1); !errors.Is(err, binding.ErrRowNotFound) {
		t.Fatalf("expected row not found for negative index, got %v", err)
	}
}

func TestListControllerNestedAddNeedsParentRow(t *testing.T) {
	root := map[string]any{}
	inner := nestedSchema()[0].Children[1]
	ctrl := NewListController(root, binding.Root().Descend("outer", 0), inner, nil, logging.Discard())

	if _, err := ctrl.Add(); !errors.Is(err, binding.ErrRowNotFound) {
		t.Fatalf("adding under a missing outer row should fail, got %v", err)
	}
	if len(root) != 0 {
		t.Fatalf("failed add mutated model: %#v", root)
	}
}

func TestListControllerPaths(t *testing.T) {
	ctrl := NewListController(map[string]any{}, binding.Root().Descend("outer", 1), schema.Node{ControlType: "list", DataIndex: "inner"}, nil, logging.Discard())
	if ctrl.Path() != "outer[1].inner" || ctrl.RowPath(2) != "outer[1].inner[2]" {
		t.Fatalf("unexpected paths %q %q", ctrl.Path(), ctrl.RowPath(2))
	}
	if got := ctrl.RowContext(2).Path("leaf"); got != "outer[1].inner[2].leaf" {
		t.Fatalf("unexpected row context path %q", got)
	}
}

func TestRowKey(t *testing.T) {
	a := map[string]any{}
	b := map[string]any{}
	if RowKey(a, 0) == RowKey(b, 0) {
		t.Fatalf("distinct rows must have distinct keys")
	}
	if RowKey(a, 0) != RowKey(a, 5) {
		t.Fatalf("row key must not depend on index")
	}
	if RowKey(nil, 3) != "idx-3" || RowKey("scalar", 1) != "idx-1" {
		t.Fatalf("non-object rows fall back to index keys")
	}
}
