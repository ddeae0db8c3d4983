package render_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemaform/pkg/render"
	"github.com/goliatone/go-schemaform/pkg/view"
)

type stubRenderer struct {
	name string
	err  error
}

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/plain" }

func (s stubRenderer) Render(_ context.Context, tree []view.Node, _ render.RenderOptions) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.name), nil
}

func TestRegistry(t *testing.T) {
	reg, err := render.NewRegistry(stubRenderer{name: "HTML"}, stubRenderer{name: "json"})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if err := reg.Register(stubRenderer{name: "html"}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := reg.Register(stubRenderer{name: " "}); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if diff := cmp.Diff([]string{"html", "json"}, reg.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	out, contentType, err := reg.Render(context.Background(), "Html", nil, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "HTML" || contentType != "text/plain" {
		t.Fatalf("unexpected output %q (%s)", out, contentType)
	}
	if _, _, err := reg.Render(context.Background(), "pdf", nil, render.RenderOptions{}); err == nil {
		t.Fatalf("expected error for unknown renderer")
	}
}

func TestRegistryWrapsRendererErrors(t *testing.T) {
	boom := errors.New("boom")
	reg, err := render.NewRegistry(stubRenderer{name: "broken", err: boom})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if _, _, err := reg.Render(context.Background(), "broken", nil, render.RenderOptions{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
