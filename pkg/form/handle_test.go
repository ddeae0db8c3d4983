package form

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestModelHandleFieldAccess(t *testing.T) {
	model := map[string]any{"items": []any{map[string]any{"title": "a"}}}
	h := NewModelHandle(model)

	if got, ok := h.FieldValue("items[0].title"); !ok || got != "a" {
		t.Fatalf("FieldValue = %v, %v", got, ok)
	}
	if got, ok := h.FieldValue("/items/0/title"); !ok || got != "a" {
		t.Fatalf("json pointer FieldValue = %v, %v", got, ok)
	}
	if _, ok := h.FieldValue("items[4].title"); ok {
		t.Fatalf("expected missing row to read as absent")
	}

	if err := h.SetFieldValue("items[0].when[1]", "2024-02-01"); err != nil {
		t.Fatalf("set indexed: %v", err)
	}
	if err := h.SetFieldValue("items[0].when[0]", "2024-01-01"); err != nil {
		t.Fatalf("set indexed: %v", err)
	}
	want := []any{"2024-01-01", "2024-02-01"}
	if diff := cmp.Diff(want, model["items"].([]any)[0].(map[string]any)["when"]); diff != "" {
		t.Fatalf("range value mismatch (-want +got):\n%s", diff)
	}
	if got, ok := h.FieldValue("items[0].when[1]"); !ok || got != "2024-02-01" {
		t.Fatalf("indexed FieldValue = %v, %v", got, ok)
	}

	if err := h.SetFieldValue("items[9].title", "x"); err == nil {
		t.Fatalf("expected error writing into a missing row")
	}
}

func TestModelHandleResetRestoresInPlace(t *testing.T) {
	model := map[string]any{"name": "Ada", "tags": []any{"a"}}
	h := NewModelHandle(model)

	model["name"] = "Bob"
	model["tags"].([]any)[0] = "mutated"
	model["extra"] = true

	if err := h.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"name": "Ada", "tags": []any{"a"}}, model); diff != "" {
		t.Fatalf("reset mismatch (-want +got):\n%s", diff)
	}
}

func TestModelHandleSubmitValidatesFirst(t *testing.T) {
	model := map[string]any{"name": ""}
	errRequired := errors.New("name is required")

	var submitted map[string]any
	h := NewModelHandle(model,
		WithValidateFunc(func(_ context.Context, m map[string]any) error {
			if m["name"] == "" {
				return errRequired
			}
			return nil
		}),
		WithSubmitFunc(func(_ context.Context, m map[string]any) error {
			submitted = m
			return nil
		}),
	)

	if err := h.Submit(context.Background()); !errors.Is(err, errRequired) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if submitted != nil {
		t.Fatalf("submit hook ran despite validation failure")
	}

	model["name"] = "Ada"
	if err := h.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	submitted["name"] = "changed"
	if model["name"] != "Ada" {
		t.Fatalf("submit hook must receive a copy")
	}
}

type recordingHandle struct {
	ModelHandle
	calls []string
}

func (r *recordingHandle) Validate(ctx context.Context) error {
	r.calls = append(r.calls, "validate")
	return nil
}

func TestFormForwardsToCustomHandle(t *testing.T) {
	model := map[string]any{}
	handle := &recordingHandle{ModelHandle: *NewModelHandle(model)}
	f := mustNew(t, itemsSchema(), model, WithHandle(handle))

	if err := f.Validate(context.Background()); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if f.Handle() != Handle(handle) {
		t.Fatalf("form should expose the supplied handle")
	}
	if diff := cmp.Diff([]string{"validate"}, handle.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}
