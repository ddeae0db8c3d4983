package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	charmlog "github.com/charmbracelet/log"
	theme "github.com/goliatone/go-theme"
	"github.com/mohae/deepcopy"

	internalloader "github.com/goliatone/go-schemaform/internal/loader"
	"github.com/goliatone/go-schemaform/internal/logging"
	internalparser "github.com/goliatone/go-schemaform/internal/openapi/parser"
	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/jsonschema"
	pkgopenapi "github.com/goliatone/go-schemaform/pkg/openapi"
	"github.com/goliatone/go-schemaform/pkg/render"
	"github.com/goliatone/go-schemaform/pkg/renderers/jsontree"
	"github.com/goliatone/go-schemaform/pkg/renderers/vanilla"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

const defaultRendererName = vanilla.Name

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom document loader.
func WithLoader(loader schema.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithLoaderOptions configures the built-in loader. Ignored when WithLoader
// supplies one.
func WithLoaderOptions(options schema.LoaderOptions) Option {
	return func(o *Orchestrator) {
		o.loaderOptions = &options
	}
}

// WithAdapterRegistry replaces the format adapter registry.
func WithAdapterRegistry(registry *AdapterRegistry) Option {
	return func(o *Orchestrator) {
		o.adapters = registry
	}
}

// WithAdapter registers an additional format adapter. Registration errors
// surface from the first Build call.
func WithAdapter(adapter schema.FormatAdapter) Option {
	return func(o *Orchestrator) {
		o.extraAdapters = append(o.extraAdapters, adapter)
	}
}

// WithDefaultAdapter names the adapter used when detection finds no match.
func WithDefaultAdapter(name string) Option {
	return func(o *Orchestrator) {
		o.defaultAdapter = name
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithSchemaTransformer registers a Transformer that can rewrite the schema
// after the adapter decodes it and before the form is bound. Transformers run
// in registration order.
func WithSchemaTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.transformers = append(o.transformers, t)
		}
	}
}

// WithFormOptions appends options applied to every form the orchestrator
// builds, for example shared slots or a custom widget registry.
func WithFormOptions(options ...form.Option) Option {
	return func(o *Orchestrator) {
		o.formOptions = append(o.formOptions, options...)
	}
}

// WithLogger routes pipeline diagnostics to logger.
func WithLogger(logger *charmlog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithThemeSelector resolves theme/variant choices through selector before
// rendering.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithThemeManifests builds a selector over manifests and uses defaultTheme
// and defaultVariant when a request names none.
func WithThemeManifests(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) Option {
	return func(o *Orchestrator) {
		o.themeSelector = NewManifestSelector(manifests...)
		o.defaultTheme = defaultTheme
		o.defaultVariant = defaultVariant
	}
}

// WithThemeDefaults sets the theme and variant used when a request names none.
func WithThemeDefaults(name, variant string) Option {
	return func(o *Orchestrator) {
		o.defaultTheme = name
		o.defaultVariant = variant
	}
}

// WithThemeFallbacks overrides the partials merged beneath every theme
// selection.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(o *Orchestrator) {
		o.themeFallbacks = cloneStrings(fallbacks)
	}
}

// Orchestrator coordinates the full pipeline from schema source to rendered
// output. Missing dependencies are filled with the built-in implementations.
type Orchestrator struct {
	loader          schema.Loader
	loaderOptions   *schema.LoaderOptions
	adapters        *AdapterRegistry
	extraAdapters   []schema.FormatAdapter
	defaultAdapter  string
	registry        *render.Registry
	defaultRenderer string
	transformers    []Transformer
	formOptions     []form.Option
	themeSelector   theme.ThemeSelector
	defaultTheme    string
	defaultVariant  string
	themeFallbacks  map[string]string
	logger          *charmlog.Logger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt != nil {
			opt(o)
		}
	}
	o.applyDefaults()
	return o
}

// Request describes the inputs of one pipeline run.
type Request struct {
	// Source identifies where the schema document lives. Optional when
	// Document or Nodes is supplied.
	Source schema.Source

	// Document bypasses the loader when the caller already holds the payload.
	Document *schema.Document

	// Nodes bypasses loading and decoding entirely.
	Nodes []schema.Node

	// Format names the adapter to decode with. Empty runs detection.
	Format string

	// FormID selects one form out of a multi-form document such as an
	// OpenAPI operation id. Empty selects the only form.
	FormID string

	// Model is bound to the form and mutated in place. Nil starts from an
	// empty model. Adapter defaults fill keys the model does not set.
	Model map[string]any

	// Renderer names the renderer to use. Empty falls back to the default.
	Renderer string

	// RenderOptions carries per-request renderer data such as errors, hidden
	// fields or the form action.
	RenderOptions render.RenderOptions

	// ThemeName and ThemeVariant override the configured defaults.
	ThemeName    string
	ThemeVariant string

	// FormOptions are applied after the orchestrator-wide form options.
	FormOptions []form.Option
}

// Build loads, decodes and transforms the schema and binds it to the request
// model.
func (o *Orchestrator) Build(ctx context.Context, req Request) (*form.Form, error) {
	if err := o.ready(ctx); err != nil {
		return nil, err
	}

	def, err := o.definition(ctx, req)
	if err != nil {
		return nil, err
	}

	for _, transformer := range o.transformers {
		if err := transformer.Transform(ctx, def); err != nil {
			return nil, fmt.Errorf("orchestrator: transform schema: %w", err)
		}
	}

	model := req.Model
	if model == nil {
		model = make(map[string]any)
	}
	seedDefaults(model, def.Defaults)

	options := make([]form.Option, 0, len(o.formOptions)+len(req.FormOptions)+2)
	options = append(options, form.WithLogger(o.logger))
	if def.Validate != nil {
		options = append(options, form.WithHandleOptions(form.WithValidateFunc(def.Validate)))
	}
	options = append(options, o.formOptions...)
	options = append(options, req.FormOptions...)

	f, err := form.New(def.Nodes, model, options...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build form: %w", err)
	}
	o.logger.Debug("form built", "form", def.FormID, "format", def.Format, "nodes", len(def.Nodes))
	return f, nil
}

// Generate builds the form and renders it in one call.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	f, err := o.Build(ctx, req)
	if err != nil {
		return nil, err
	}
	output, _, err := o.Render(ctx, f, req)
	return output, err
}

// Render walks f and hands the view tree to the renderer named by req,
// resolving the request theme first. It returns the output and its content
// type.
func (o *Orchestrator) Render(ctx context.Context, f *form.Form, req Request) ([]byte, string, error) {
	if err := o.ready(ctx); err != nil {
		return nil, "", err
	}
	if f == nil {
		return nil, "", errors.New("orchestrator: form is nil")
	}

	name, err := o.rendererName(req.Renderer)
	if err != nil {
		return nil, "", err
	}

	options := req.RenderOptions
	if options.Theme == nil {
		cfg, err := o.resolveTheme(req.ThemeName, req.ThemeVariant)
		if err != nil {
			return nil, "", err
		}
		options.Theme = cfg
	}

	tree, err := f.Render()
	if err != nil {
		return nil, "", fmt.Errorf("orchestrator: walk form: %w", err)
	}
	output, contentType, err := o.registry.Render(ctx, name, tree, options)
	if err != nil {
		return nil, "", fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, contentType, nil
}

// Forms lists the forms the request document describes.
func (o *Orchestrator) Forms(ctx context.Context, req Request) ([]schema.FormRef, error) {
	if err := o.ready(ctx); err != nil {
		return nil, err
	}
	doc, err := o.resolveDocument(ctx, req)
	if err != nil {
		return nil, err
	}
	adapter, err := o.resolveAdapter(req.Format, doc)
	if err != nil {
		return nil, err
	}
	refs, err := adapter.Forms(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: list forms: %w", err)
	}
	return refs, nil
}

// Adapters exposes the format adapter registry.
func (o *Orchestrator) Adapters() *AdapterRegistry {
	return o.adapters
}

// Renderers exposes the renderer registry.
func (o *Orchestrator) Renderers() *render.Registry {
	return o.registry
}

func (o *Orchestrator) definition(ctx context.Context, req Request) (*Definition, error) {
	if len(req.Nodes) > 0 {
		return &Definition{FormID: req.FormID, Nodes: req.Nodes}, nil
	}

	doc, err := o.resolveDocument(ctx, req)
	if err != nil {
		return nil, err
	}
	adapter, err := o.resolveAdapter(req.Format, doc)
	if err != nil {
		return nil, err
	}

	nodes, err := adapter.Nodes(ctx, doc, req.FormID)
	if err != nil {
		if errors.Is(err, schema.ErrFormNotFound) {
			refs, _ := adapter.Forms(ctx, doc)
			return nil, fmt.Errorf("orchestrator: form %q not found (available: %s): %w", req.FormID, formatFormRefs(refs), err)
		}
		return nil, fmt.Errorf("orchestrator: decode %s: %w", describeLocation(doc), err)
	}

	def := &Definition{FormID: req.FormID, Format: adapter.Name(), Nodes: nodes}
	if provider, ok := adapter.(DefaultsProvider); ok {
		defaults, err := provider.Defaults(ctx, doc, req.FormID)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: defaults: %w", err)
		}
		def.Defaults = defaults
	}
	if provider, ok := adapter.(ValidatorProvider); ok {
		validate, err := provider.Validator(ctx, doc, req.FormID)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: validator: %w", err)
		}
		def.Validate = validate
	}
	o.logger.Debug("schema decoded", "source", describeLocation(doc), "adapter", adapter.Name())
	return def, nil
}

func (o *Orchestrator) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return o.initialiseErr
}

func (o *Orchestrator) rendererName(name string) (string, error) {
	if o.registry == nil {
		return "", errors.New("orchestrator: renderer registry is nil")
	}

	if target := strings.TrimSpace(name); target != "" {
		if !o.registry.Has(target) {
			return "", fmt.Errorf("orchestrator: renderer %q not registered", target)
		}
		return target, nil
	}
	if o.defaultRenderer != "" && o.registry.Has(o.defaultRenderer) {
		return o.defaultRenderer, nil
	}

	names := o.registry.List()
	if len(names) == 0 {
		return "", errors.New("orchestrator: no renderers registered")
	}
	return names[0], nil
}

func (o *Orchestrator) applyDefaults() {
	o.logger = logging.OrDiscard(o.logger)

	if o.loader == nil {
		options := schema.NewLoaderOptions()
		if o.loaderOptions != nil {
			options = *o.loaderOptions
		}
		o.loader = internalloader.New(options)
	}

	if o.adapters == nil {
		o.adapters = NewAdapterRegistry()
		o.adapters.MustRegister(schema.NativeAdapter{})
		parser := internalparser.New(pkgopenapi.NewParserOptions())
		o.adapters.MustRegister(pkgopenapi.NewAdapter(parser, pkgopenapi.NewBuilder()))
		o.adapters.MustRegister(jsonschema.NewAdapter(jsonschema.WithLoader(o.loader)))
	}
	for _, adapter := range o.extraAdapters {
		if err := o.adapters.Register(adapter); err != nil && o.initialiseErr == nil {
			o.initialiseErr = err
		}
	}
	if o.defaultAdapter == "" {
		o.defaultAdapter = schema.NativeAdapterName
	}

	if o.registry == nil {
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
			return
		}
		registry, err := render.NewRegistry(renderer, jsontree.New())
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: renderer registry: %w", err)
			return
		}
		o.registry = registry
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
	if o.themeFallbacks == nil {
		o.themeFallbacks = defaultThemeFallbacks()
	}
}

// seedDefaults deep copies default values into model for keys it does not
// set.
func seedDefaults(model, defaults map[string]any) {
	for key, value := range defaults {
		if _, exists := model[key]; exists {
			continue
		}
		model[key] = deepcopy.Copy(value)
	}
}

func cloneStrings(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
