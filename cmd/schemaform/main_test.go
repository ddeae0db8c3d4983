package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

const contactYAML = `fields:
  - controlType: input
    dataIndex: name
    label: Name
  - controlType: list
    dataIndex: phones
    label: Phones
    children:
      - controlType: input
        dataIndex: number
        label: Number
`

const petsYAML = `openapi: 3.0.3
info:
  title: Pets
  version: "1.0"
paths:
  /pets:
    post:
      operationId: createPet
      summary: Create a pet
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                name:
                  type: string
      responses:
        "201":
          description: created
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := rootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	schemaPath := writeFile(t, "contact.yaml", contactYAML)
	modelPath := writeFile(t, "model.json", `{"name": "Ada", "phones": [{"number": "555"}]}`)

	out, err := execute(t, "render", schemaPath, "--model", modelPath, "--title", "Contact")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"<form", "Contact", `value="Ada"`, `name="phones[0].number"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	out, err = execute(t, "render", schemaPath, "--renderer", "json")
	if err != nil {
		t.Fatalf("render json: %v", err)
	}
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, `"nodes"`) {
		t.Fatalf("expected json tree, got %s", out)
	}
}

func TestRenderCommand_WritesOutputFile(t *testing.T) {
	schemaPath := writeFile(t, "contact.yaml", contactYAML)
	preset := writeFile(t, "preset.yaml", "fields:\n  name:\n    label: Full name\n")
	target := filepath.Join(t.TempDir(), "form.html")

	if _, err := execute(t, "render", schemaPath, "--preset", preset, "-o", target); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "Full name") {
		t.Fatalf("expected preset label in output:\n%s", data)
	}
}

func TestFormsCommand(t *testing.T) {
	schemaPath := writeFile(t, "pets.yaml", petsYAML)

	out, err := execute(t, "forms", schemaPath)
	if err != nil {
		t.Fatalf("forms: %v", err)
	}
	if !strings.Contains(out, "createPet") || !strings.Contains(out, "/pets") {
		t.Fatalf("expected createPet row, got:\n%s", out)
	}
}

func TestCommandErrors(t *testing.T) {
	schemaPath := writeFile(t, "contact.yaml", contactYAML)

	if _, err := execute(t, "render"); err == nil {
		t.Fatalf("expected missing argument error")
	}
	if _, err := execute(t, "render", schemaPath, "--renderer", "pdf"); err == nil {
		t.Fatalf("expected unknown renderer error")
	}
	if _, err := execute(t, "render", schemaPath, "--log-level", "loud"); err == nil {
		t.Fatalf("expected log level error")
	}
	if _, err := execute(t, "render", schemaPath, "--model", filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Fatalf("expected missing model error")
	}
}

func TestRouterServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "probe_total", Help: "probe"})
	reg.MustRegister(counter)
	counter.Inc()

	form := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("form"))
	})
	h := router(form, reg)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "probe_total 1") {
		t.Fatalf("expected metrics output, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Body.String() != "form" {
		t.Fatalf("expected form handler at root, got %q", rec.Body.String())
	}
}

func TestLintCommand(t *testing.T) {
	good := writeFile(t, "contact.yaml", contactYAML)
	out, err := execute(t, "lint", good)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if !strings.Contains(out, "ok: 1 form(s)") {
		t.Fatalf("unexpected lint output:\n%s", out)
	}

	bad := writeFile(t, "bad.yaml", "fields:\n  - controlType: sparkline\n    dataIndex: trend\n")
	out, err = execute(t, "lint", bad, "--json")
	if err == nil {
		t.Fatalf("expected lint failure")
	}
	if !strings.Contains(out, `"valid": false`) || !strings.Contains(out, `"field": "trend"`) {
		t.Fatalf("unexpected lint output:\n%s", out)
	}
}
