package orchestrator

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-schemaform/pkg/widgets"
)

var layoutPartials = []string{"action", "column", "field", "form", "group", "list", "row", "slot"}

// defaultThemeFallbacks maps every partial key the built-in renderers look up
// to its embedded template.
func defaultThemeFallbacks() map[string]string {
	out := make(map[string]string)
	registry := widgets.NewDefaultRegistry()
	for _, name := range registry.Names() {
		widget, ok := registry.Lookup(name)
		if !ok || widget.PartialKey == "" || widget.Template == "" {
			continue
		}
		out[widget.PartialKey] = widget.Template
	}
	for _, name := range layoutPartials {
		out["forms.layout."+name] = "layout/" + name + ".tmpl"
	}
	return out
}

func (o *Orchestrator) resolveTheme(name, variant string) (*theme.RendererConfig, error) {
	if o.themeSelector == nil {
		return nil, nil
	}
	if strings.TrimSpace(name) == "" {
		name = o.defaultTheme
	}
	if strings.TrimSpace(variant) == "" {
		variant = o.defaultVariant
	}

	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme %q: %w", name, err)
	}
	if selection == nil {
		return nil, nil
	}
	o.logger.Debug("theme selected", "theme", selection.Theme, "variant", selection.Variant)
	return rendererConfig(selection, o.themeFallbacks), nil
}

// rendererConfig flattens a selection into the data renderers consume:
// fallback partials overlaid by manifest templates and then variant
// templates, variant tokens over base tokens, and an asset resolver honouring
// variant files first.
func rendererConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	partials := cloneStrings(fallbacks)
	if partials == nil {
		partials = make(map[string]string)
	}
	tokens := make(map[string]string)
	files := make(map[string]string)
	prefix := ""

	if manifest := selection.Manifest; manifest != nil {
		overlay(partials, manifest.Templates)
		overlay(tokens, manifest.Tokens)
		overlay(files, manifest.Assets.Files)
		prefix = manifest.Assets.Prefix

		if v, ok := manifest.Variants[selection.Variant]; ok {
			overlay(partials, v.Templates)
			overlay(tokens, v.Tokens)
			overlay(files, v.Assets.Files)
			if v.Assets.Prefix != "" {
				prefix = v.Assets.Prefix
			}
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: assetResolver(prefix, files),
	}
}

func assetResolver(prefix string, files map[string]string) func(string) string {
	prefix = strings.TrimRight(prefix, "/")
	return func(key string) string {
		file, ok := files[key]
		if !ok {
			file = key
		}
		if file == "" || prefix == "" || strings.Contains(file, "://") || strings.HasPrefix(file, "/") {
			return file
		}
		return prefix + "/" + file
	}
}

func overlay(dst, src map[string]string) {
	for key, value := range src {
		if strings.TrimSpace(value) != "" {
			dst[key] = value
		}
	}
}

// ManifestSelector resolves selections from registered manifests. An empty
// theme name picks the only registered manifest; an unknown variant is an
// error.
type ManifestSelector struct {
	mu        sync.RWMutex
	manifests map[string]*theme.Manifest
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector registers manifests, skipping nil entries.
func NewManifestSelector(manifests ...*theme.Manifest) *ManifestSelector {
	s := &ManifestSelector{manifests: make(map[string]*theme.Manifest)}
	for _, manifest := range manifests {
		if manifest != nil {
			s.Add(manifest)
		}
	}
	return s
}

// Add registers manifest under its name, replacing an earlier registration.
func (s *ManifestSelector) Add(manifest *theme.Manifest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifests[strings.ToLower(strings.TrimSpace(manifest.Name))] = manifest
}

// Select implements theme.ThemeSelector.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		if len(s.manifests) != 1 {
			return nil, fmt.Errorf("theme name is required (registered: %s)", strings.Join(s.names(), ", "))
		}
		for only := range s.manifests {
			key = only
		}
	}
	manifest, ok := s.manifests[key]
	if !ok {
		return nil, fmt.Errorf("theme %q not registered", name)
	}
	variant = strings.TrimSpace(variant)
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("theme %q has no variant %q", manifest.Name, variant)
		}
	}
	return &theme.Selection{Theme: manifest.Name, Variant: variant, Manifest: manifest}, nil
}

func (s *ManifestSelector) names() []string {
	names := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
