package widgets

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func noopRenderer(buf *bytes.Buffer, field Field, data Data) error { return nil }

func TestRegistryLookupNormalisesControlType(t *testing.T) {
	reg := New()
	reg.MustRegister("InputNumber", Widget{Renderer: noopRenderer, Family: FamilyNumber})

	for _, spelling := range []string{"input-number", "inputNumber", "INPUT_NUMBER"} {
		widget, ok := reg.Lookup(spelling)
		if !ok {
			t.Fatalf("lookup %q: widget not found", spelling)
		}
		if widget.Name != "inputnumber" || widget.Family != FamilyNumber {
			t.Fatalf("unexpected widget for %q: %+v", spelling, widget)
		}
	}
	if reg.Has("select") {
		t.Fatalf("select should not be registered")
	}
}

func TestRegistryRegisterValidates(t *testing.T) {
	reg := New()
	if err := reg.Register("  ", Widget{Renderer: noopRenderer}); err == nil {
		t.Fatalf("expected error for empty control type")
	}
	if err := reg.Register("input", Widget{}); err == nil {
		t.Fatalf("expected error for nil renderer")
	}
}

func TestRegistryLookupReturnsCopy(t *testing.T) {
	reg := New()
	reg.MustRegister("test", Widget{Renderer: noopRenderer, Stylesheets: []string{"/a.css"}})

	widget, _ := reg.Lookup("test")
	widget.Stylesheets = append(widget.Stylesheets, "/mutated.css")

	original, _ := reg.Lookup("test")
	if diff := cmp.Diff([]string{"/a.css"}, original.Stylesheets); diff != "" {
		t.Fatalf("registry widget mutated (-want +got):\n%s", diff)
	}
}

func TestRegistryCloneIsIsolated(t *testing.T) {
	reg := New()
	reg.MustRegister("input", Widget{Renderer: noopRenderer})

	cloned := reg.Clone()
	cloned.MustRegister("rate", Widget{Renderer: noopRenderer})

	if reg.Has("rate") {
		t.Fatalf("clone registration leaked into source registry")
	}
	if diff := cmp.Diff([]string{"input", "rate"}, cloned.Names()); diff != "" {
		t.Fatalf("clone names mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryAssetsDeduplicates(t *testing.T) {
	reg := New()
	reg.MustRegister("input", Widget{
		Renderer:    noopRenderer,
		Stylesheets: []string{"/shared.css", "/input.css"},
		Scripts:     []Script{{Src: "/shared.js"}},
	})
	reg.MustRegister("select", Widget{
		Renderer:    noopRenderer,
		Stylesheets: []string{"/shared.css", "/select.css"},
		Scripts:     []Script{{Src: "/shared.js"}, {Src: "/select.js"}},
	})

	styles, scripts := reg.Assets([]string{"input", "select", "unknown"})
	if diff := cmp.Diff([]string{"/shared.css", "/input.css", "/select.css"}, styles); diff != "" {
		t.Fatalf("stylesheets mismatch (-want +got):\n%s", diff)
	}
	if len(scripts) != 2 {
		t.Fatalf("expected 2 unique scripts, got %d: %v", len(scripts), scripts)
	}
}

func TestDefaultRegistryCoversControlTypes(t *testing.T) {
	reg := NewDefaultRegistry()
	controls := []string{
		"text", "input", "InputNumber", "InputPassword", "InputSearch", "TextArea",
		"AutoComplete", "Radio", "RadioGroup", "Checkbox", "CheckboxGroup", "Select",
		"Cascader", "DatePicker", "RangePicker", "Mentions", "Rate", "Slider", "Switch",
		"TimePicker", "TimeRangePicker", "Transfer", "TreeSelect", "Upload", "json",
	}
	for _, control := range controls {
		if !reg.Has(control) {
			t.Fatalf("default registry missing %q", control)
		}
	}
	if reg.Has("group") || reg.Has("list") {
		t.Fatalf("structural control types must not resolve to widgets")
	}
}

type stubTemplate struct {
	name string
	data any
}

func (s *stubTemplate) RenderTemplate(name string, data any, _ ...io.Writer) (string, error) {
	s.name = name
	s.data = data
	return "<rendered>", nil
}

func (s *stubTemplate) RenderString(string, any, ...io.Writer) (string, error) { return "", nil }

func (s *stubTemplate) RegisterFilter(string, func(any, any) (any, error)) error { return nil }

func (s *stubTemplate) GlobalContext(any) error { return nil }

func TestTemplateRendererHonoursPartials(t *testing.T) {
	stub := &stubTemplate{}
	renderer := TemplateRenderer("forms.input", "widgets/input.tmpl")

	var buf bytes.Buffer
	data := Data{Template: stub, Partials: map[string]string{"forms.input": "theme/input.tmpl"}}
	if err := renderer(&buf, Field{Name: "title"}, data); err != nil {
		t.Fatalf("render: %v", err)
	}
	if stub.name != "theme/input.tmpl" {
		t.Fatalf("expected theme partial, got %q", stub.name)
	}
	if buf.String() != "<rendered>" {
		t.Fatalf("unexpected output %q", buf.String())
	}

	if err := renderer(&buf, Field{}, Data{}); err == nil {
		t.Fatalf("expected error without template engine")
	}
}

func TestJSONWidgetEncodesValue(t *testing.T) {
	widget, ok := NewDefaultRegistry().Lookup("json")
	if !ok {
		t.Fatalf("json widget missing")
	}
	field := NewField("meta", "Meta", "json", map[string]any{"a": "b"}, Props{})

	var buf bytes.Buffer
	if err := widget.Render(&buf, field, Data{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<textarea data-widget="json" id="sf-meta" name="meta" rows="6">{&#34;a&#34;:&#34;b&#34;}</textarea>`
	if buf.String() != want {
		t.Fatalf("unexpected markup:\n got %s\nwant %s", buf.String(), want)
	}
}
