package binding

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLookupRootLevel(t *testing.T) {
	model := map[string]any{"name": "Ada"}

	loc, ok, err := Lookup(model, Root(), "name")
	if err != nil || !ok {
		t.Fatalf("lookup: ok=%v err=%v", ok, err)
	}
	if got, _ := loc.Get(); got != "Ada" {
		t.Fatalf("expected Ada, got %v", got)
	}
}

func TestLookupNestedListsUsesEveryAncestorIndex(t *testing.T) {
	model := map[string]any{
		"outer": []any{
			map[string]any{"inner": []any{map[string]any{"leaf": "a0"}}},
			map[string]any{"inner": []any{map[string]any{"leaf": "a1-b0"}, map[string]any{"leaf": "a1-b1"}}},
		},
	}

	ctx := Root().Descend("outer", 1).Descend("inner", 1)
	loc, ok, err := Lookup(model, ctx, "leaf")
	if err != nil || !ok {
		t.Fatalf("lookup: ok=%v err=%v", ok, err)
	}
	if got, _ := loc.Get(); got != "a1-b1" {
		t.Fatalf("expected a1-b1, got %v", got)
	}
}

func TestLookupDoesNotMutate(t *testing.T) {
	model := map[string]any{"outer": []any{map[string]any{}}}
	before := cloneForCompare(model)

	ctx := Root().Descend("outer", 0).Descend("inner", 0)
	_, ok, err := Lookup(model, ctx, "leaf")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if ok {
		t.Fatalf("expected missing inner list to be reported as unresolved")
	}
	if diff := cmp.Diff(before, model); diff != "" {
		t.Fatalf("lookup mutated model (-want +got):\n%s", diff)
	}
}

func TestLookupRowOutOfRange(t *testing.T) {
	model := map[string]any{"items": []any{map[string]any{}}}
	_, _, err := Lookup(model, Root().Descend("items", 3), "title")
	if !errors.Is(err, ErrRowNotFound) {
		t.Fatalf("expected ErrRowNotFound, got %v", err)
	}
}

func TestEnsureCreatesNilRowOnly(t *testing.T) {
	model := map[string]any{
		"items": []any{nil, map[string]any{"title": "keep"}},
		"other": "untouched",
	}

	loc, err := Ensure(model, Root().Descend("items", 0), "title")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	loc.Set("new")

	want := map[string]any{
		"items": []any{map[string]any{"title": "new"}, map[string]any{"title": "keep"}},
		"other": "untouched",
	}
	if diff := cmp.Diff(want, model); diff != "" {
		t.Fatalf("model mismatch (-want +got):\n%s", diff)
	}
}

func TestEnsureRowsCreatesMissingListAndKeepsSiblings(t *testing.T) {
	model := map[string]any{
		"outer": []any{
			map[string]any{"name": "first"},
			map[string]any{"name": "second"},
		},
	}

	ctx := Root().Descend("outer", 1)
	loc, rows, err := EnsureRows(model, ctx, "inner")
	if err != nil {
		t.Fatalf("ensure rows: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty rows, got %v", rows)
	}
	loc.Set(append(rows, map[string]any{}))

	want := map[string]any{
		"outer": []any{
			map[string]any{"name": "first"},
			map[string]any{"name": "second", "inner": []any{map[string]any{}}},
		},
	}
	if diff := cmp.Diff(want, model); diff != "" {
		t.Fatalf("model mismatch (-want +got):\n%s", diff)
	}
}

func TestEnsureRowsNormalisesTypedSlices(t *testing.T) {
	row := map[string]any{"title": "x"}
	model := map[string]any{"items": []map[string]any{row}}

	_, rows, err := EnsureRows(model, Root(), "items")
	if err != nil {
		t.Fatalf("ensure rows: %v", err)
	}
	if _, ok := model["items"].([]any); !ok {
		t.Fatalf("expected items to be rewritten as []any, got %T", model["items"])
	}
	rows[0].(map[string]any)["title"] = "y"
	if row["title"] != "y" {
		t.Fatalf("expected row identity to be preserved")
	}
}

func TestEnsureMissingListIsCallerError(t *testing.T) {
	model := map[string]any{}
	_, err := Ensure(model, Root().Descend("items", 0), "title")
	if !errors.Is(err, ErrRowNotFound) {
		t.Fatalf("expected ErrRowNotFound, got %v", err)
	}
	if len(model) != 0 {
		t.Fatalf("expected model untouched, got %v", model)
	}
}

func TestEnsureRejectsScalarOnPath(t *testing.T) {
	model := map[string]any{"items": "oops"}
	_, err := Ensure(model, Root().Descend("items", 0), "title")
	if !errors.Is(err, ErrNotContainer) {
		t.Fatalf("expected ErrNotContainer, got %v", err)
	}
}

func TestRowsReturnsSnapshot(t *testing.T) {
	model := map[string]any{"items": []any{map[string]any{"n": 1}}}
	rows, err := Rows(model, Root(), "items")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	rows[0] = "replaced"
	if _, ok := model["items"].([]any)[0].(map[string]any); !ok {
		t.Fatalf("snapshot write leaked into model")
	}
}

func cloneForCompare(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = cloneForCompare(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = cloneForCompare(v)
		}
		return out
	default:
		return typed
	}
}
