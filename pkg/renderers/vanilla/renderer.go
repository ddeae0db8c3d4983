// Package vanilla renders a view tree as a plain HTML form. Structural
// actions post back as submit buttons named render.ActionField, so the page
// works without JavaScript.
package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-schemaform/pkg/render"
	rendertemplate "github.com/goliatone/go-schemaform/pkg/render/template"
	gotemplate "github.com/goliatone/go-schemaform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-schemaform/pkg/view"
	"github.com/goliatone/go-schemaform/pkg/widgets"
)

// Name is the registry name of the renderer.
const Name = "vanilla"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *widgets.Registry
	theme            *theme.RendererConfig
	policy           *bluemonday.Policy
	inlineStyles     bool
}

// WithTemplatesFS supplies templates that shadow the built-in layout and
// widget templates of the same name.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads overriding templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithRegistry resolves widgets for field nodes that arrive without one, such
// as fields produced by slots.
func WithRegistry(registry *widgets.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithTheme applies a theme: partials replace layout and widget templates,
// CSS variables are emitted ahead of the form and asset keys resolve through
// the theme.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}

// WithSanitizer replaces the policy applied to slot and custom markup.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// WithInlineStyles embeds the default stylesheet in the output.
func WithInlineStyles(enabled bool) Option {
	return func(cfg *config) {
		cfg.inlineStyles = enabled
	}
}

type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	registry     *widgets.Registry
	theme        *theme.RendererConfig
	policy       *bluemonday.Policy
	inlineStyles bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engineOpts := make([]gotemplate.Option, 0, 3)
		if cfg.templateFS != nil {
			engineOpts = append(engineOpts, gotemplate.WithFS(cfg.templateFS))
		}
		engineOpts = append(engineOpts,
			gotemplate.WithFS(TemplatesFS()),
			gotemplate.WithFS(widgets.TemplatesFS()),
		)
		engine, err := gotemplate.New(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	registry := cfg.registry
	if registry == nil {
		registry = widgets.NewDefaultRegistry()
	}

	return &Renderer{
		templates:    renderer,
		registry:     registry,
		theme:        cfg.theme,
		policy:       cfg.policy,
		inlineStyles: cfg.inlineStyles,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the form markup for tree.
func (r *Renderer) Render(ctx context.Context, tree []view.Node, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	active := r.theme
	if options.Theme != nil {
		active = options.Theme
	}
	var partials map[string]string
	if active != nil {
		partials = cloneStringMap(active.Partials)
	}

	pass := &treeRenderer{
		templates: r.templates,
		registry:  r.registry,
		partials:  partials,
		policy:    r.policy,
		options:   options,
		used:      make(map[string]struct{}),
	}
	body, err := pass.nodes(tree)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}

	stylesheets, scripts := pass.assets()
	method, override := options.HTTPMethod()
	submitText := strings.TrimSpace(options.SubmitText)
	if submitText == "" {
		submitText = "Submit"
	}

	data := map[string]any{
		"classes":         string(ClassForm),
		"method":          strings.ToLower(method),
		"method_override": override,
		"action":          options.Action,
		"title":           options.Title,
		"form_errors":     options.FormErrors,
		"hidden_fields":   hiddenFields(options.Hidden),
		"action_field":    render.ActionField,
		"submit_text":     submitText,
		"reset_text":      strings.TrimSpace(options.ResetText),
		"body":            body,
		"stylesheets":     resolveAssets(active, stylesheets),
		"scripts":         scriptData(active, scripts),
	}
	if r.inlineStyles {
		data["inline_css"] = defaultStylesheet()
	}
	if active != nil {
		data["theme"] = active.Theme
		data["variant"] = active.Variant
		data["css_vars"] = cssVarsStyle(active.CSSVars)
	}

	out, err := pass.layout("form", data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}
	return []byte(out), nil
}

func resolveAssets(cfg *theme.RendererConfig, keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, assetURL(cfg, key))
	}
	return out
}

func assetURL(cfg *theme.RendererConfig, key string) string {
	if cfg == nil || cfg.AssetURL == nil {
		return key
	}
	if resolved := cfg.AssetURL(key); resolved != "" {
		return resolved
	}
	return key
}

func scriptData(cfg *theme.RendererConfig, scripts []widgets.Script) []map[string]any {
	if len(scripts) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(scripts))
	for _, script := range scripts {
		kind := script.Type
		if script.Module {
			kind = "module"
		}
		src := script.Src
		if src != "" {
			src = assetURL(cfg, src)
		}
		out = append(out, map[string]any{
			"src":    src,
			"type":   kind,
			"inline": script.Inline,
			"async":  script.Async,
			"defer":  script.Defer,
		})
	}
	return out
}

func hiddenFields(fields map[string]string) []map[string]string {
	sorted := render.SortedHiddenFields(fields)
	if len(sorted) == 0 {
		return nil
	}
	out := make([]map[string]string, 0, len(sorted))
	for _, field := range sorted {
		out = append(out, map[string]string{"name": field.Name, "value": field.Value})
	}
	return out
}

// assets returns the stylesheets and scripts of the widgets used during the
// pass, in control type order.
func (t *treeRenderer) assets() ([]string, []widgets.Script) {
	if t.registry == nil || len(t.used) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(t.used))
	for name := range t.used {
		names = append(names, name)
	}
	slices.Sort(names)
	return t.registry.Assets(names)
}
