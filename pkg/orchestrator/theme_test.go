package orchestrator

import (
	"context"
	"errors"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-schemaform/pkg/render"
	"github.com/goliatone/go-schemaform/pkg/schema"
	"github.com/goliatone/go-schemaform/pkg/view"
)

var themedNodes = []schema.Node{{ControlType: "input", DataIndex: "title", Label: "Title"}}

func TestOrchestrator_PassesThemeConfigToRenderer(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand": "#123456",
		},
	}
	selection := &theme.Selection{
		Theme:    "acme",
		Variant:  "custom-variant",
		Manifest: manifest,
	}
	selector := &stubThemeSelector{selection: selection}
	renderer, registry := themeRegistry(t)

	orch := New(
		WithRegistry(registry),
		WithDefaultRenderer(renderer.Name()),
		WithThemeSelector(selector),
	)

	_, err := orch.Generate(context.Background(), Request{
		Nodes:        themedNodes,
		ThemeName:    "custom-theme",
		ThemeVariant: "custom-variant",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(selector.calls) != 1 {
		t.Fatalf("expected selector called once, got %d", len(selector.calls))
	}
	if selector.calls[0].name != "custom-theme" || selector.calls[0].variant != "custom-variant" {
		t.Fatalf("unexpected selector args: %+v", selector.calls[0])
	}

	cfg := renderer.options.Theme
	if cfg == nil {
		t.Fatalf("expected theme config passed to renderer")
	}
	if cfg.Theme != selection.Theme || cfg.Variant != selection.Variant {
		t.Fatalf("selection mismatch: got %s/%s", cfg.Theme, cfg.Variant)
	}
	if cfg.AssetURL == nil {
		t.Fatalf("expected AssetURL resolver present")
	}
	if got := cfg.Partials["forms.input"]; got != defaultThemeFallbacks()["forms.input"] {
		t.Fatalf("partials not merged with fallbacks: want %s, got %s", defaultThemeFallbacks()["forms.input"], got)
	}
	if cfg.Tokens["brand"] != "#123456" {
		t.Fatalf("tokens not propagated")
	}
	if cfg.CSSVars["--brand"] != "#123456" {
		t.Fatalf("css vars not derived from tokens")
	}
}

func TestOrchestrator_WithThemeManifestsUsesDefaults(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand": "#123456",
		},
		Templates: map[string]string{
			"forms.input": "themes/acme/input.tmpl",
		},
		Assets: theme.Assets{
			Prefix: "/assets/themes/acme",
			Files: map[string]string{
				"schemaform.stylesheet": "theme.css",
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"brand": "#654321",
				},
				Templates: map[string]string{
					"forms.checkbox": "themes/acme/dark/checkbox.tmpl",
				},
				Assets: theme.Assets{
					Files: map[string]string{
						"schemaform.script": "form.dark.js",
					},
				},
			},
		},
	}
	renderer, registry := themeRegistry(t)

	orch := New(
		WithRegistry(registry),
		WithDefaultRenderer(renderer.Name()),
		WithThemeManifests("acme", "dark", manifest),
	)

	if _, err := orch.Generate(context.Background(), Request{Nodes: themedNodes}); err != nil {
		t.Fatalf("generate: %v", err)
	}

	cfg := renderer.options.Theme
	if cfg == nil {
		t.Fatalf("expected theme config passed to renderer")
	}
	if cfg.Theme != "acme" || cfg.Variant != "dark" {
		t.Fatalf("selection mismatch: got %s/%s", cfg.Theme, cfg.Variant)
	}
	if cfg.Partials["forms.input"] != "themes/acme/input.tmpl" {
		t.Fatalf("expected base template override, got %s", cfg.Partials["forms.input"])
	}
	if cfg.Partials["forms.checkbox"] != "themes/acme/dark/checkbox.tmpl" {
		t.Fatalf("expected variant template override, got %s", cfg.Partials["forms.checkbox"])
	}
	if cfg.Partials["forms.textarea"] != defaultThemeFallbacks()["forms.textarea"] {
		t.Fatalf("fallback partial not applied for textarea")
	}
	if cfg.Partials["forms.layout.form"] != "layout/form.tmpl" {
		t.Fatalf("layout fallback missing, got %q", cfg.Partials["forms.layout.form"])
	}
	if cfg.Tokens["brand"] != "#654321" {
		t.Fatalf("tokens not merged with variant override, got %s", cfg.Tokens["brand"])
	}
	if cfg.CSSVars["--brand"] != "#654321" {
		t.Fatalf("css vars not derived from variant tokens, got %s", cfg.CSSVars["--brand"])
	}
	if got := cfg.AssetURL("schemaform.script"); got != "/assets/themes/acme/form.dark.js" {
		t.Fatalf("unexpected script asset url: %s", got)
	}
	if got := cfg.AssetURL("schemaform.stylesheet"); got != "/assets/themes/acme/theme.css" {
		t.Fatalf("unexpected stylesheet asset url: %s", got)
	}
	if got := cfg.AssetURL("https://cdn.example.com/x.js"); got != "https://cdn.example.com/x.js" {
		t.Fatalf("absolute urls should pass through, got %s", got)
	}
}

func TestOrchestrator_RequestThemeWins(t *testing.T) {
	selector := &stubThemeSelector{selection: &theme.Selection{Theme: "acme"}}
	renderer, registry := themeRegistry(t)
	orch := New(WithRegistry(registry), WithThemeSelector(selector))

	explicit := &theme.RendererConfig{Theme: "inline"}
	_, err := orch.Generate(context.Background(), Request{
		Nodes:         themedNodes,
		RenderOptions: render.RenderOptions{Theme: explicit},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(selector.calls) != 0 {
		t.Fatalf("selector should not run when the request carries a theme")
	}
	if renderer.options.Theme != explicit {
		t.Fatalf("expected request theme to reach the renderer")
	}
}

func TestOrchestrator_ThemeSelectionErrors(t *testing.T) {
	selector := &stubThemeSelector{err: errors.New("boom")}
	_, registry := themeRegistry(t)
	orch := New(WithRegistry(registry), WithThemeSelector(selector))

	if _, err := orch.Generate(context.Background(), Request{Nodes: themedNodes}); err == nil {
		t.Fatalf("expected selector error to surface")
	}
}

func TestManifestSelector(t *testing.T) {
	selector := NewManifestSelector(
		&theme.Manifest{Name: "acme", Variants: map[string]theme.Variant{"dark": {}}},
	)

	selection, err := selector.Select("", "")
	if err != nil {
		t.Fatalf("select only theme: %v", err)
	}
	if selection.Theme != "acme" || selection.Manifest == nil {
		t.Fatalf("unexpected selection %+v", selection)
	}
	if _, err := selector.Select("ACME", "dark"); err != nil {
		t.Fatalf("select case-insensitive: %v", err)
	}
	if _, err := selector.Select("acme", "sepia"); err == nil {
		t.Fatalf("expected unknown variant error")
	}
	if _, err := selector.Select("other", ""); err == nil {
		t.Fatalf("expected unknown theme error")
	}

	selector.Add(&theme.Manifest{Name: "beta"})
	if _, err := selector.Select("", ""); err == nil {
		t.Fatalf("expected ambiguous selection error")
	}
}

type selectorCall struct {
	name    string
	variant string
}

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     []selectorCall
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, selectorCall{name: name, variant: variant})
	return s.selection, s.err
}

type themeCapture struct {
	options render.RenderOptions
}

func (r *themeCapture) Name() string        { return "capture" }
func (r *themeCapture) ContentType() string { return "text/plain" }

func (r *themeCapture) Render(_ context.Context, _ []view.Node, opts render.RenderOptions) ([]byte, error) {
	r.options = opts
	return []byte("ok"), nil
}

func themeRegistry(t *testing.T) (*themeCapture, *render.Registry) {
	t.Helper()

	renderer := &themeCapture{}
	registry, err := render.NewRegistry(renderer)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return renderer, registry
}
