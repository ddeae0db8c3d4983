// Package widgets maps control types to the widgets that render them. The
// registry is the single source of truth for which control types a form may
// use; render passes reject anything it cannot resolve.
package widgets

import (
	"bytes"
	"fmt"
	"slices"

	rendertemplate "github.com/goliatone/go-schemaform/pkg/render/template"
)

// Family groups widgets by the kind of value they edit. Hosts that do not
// render markup (the terminal session, for one) pick their prompt by family.
type Family string

const (
	FamilyText        Family = "text"
	FamilyPassword    Family = "password"
	FamilyNumber      Family = "number"
	FamilyTextArea    Family = "textarea"
	FamilyChoice      Family = "choice"
	FamilyMultiChoice Family = "multi-choice"
	FamilyToggle      Family = "toggle"
	FamilyRange       Family = "range"
	FamilyFile        Family = "file"
	FamilyJSON        Family = "json"
)

// Renderer writes a widget's markup into buf.
type Renderer func(buf *bytes.Buffer, field Field, data Data) error

// Data carries helpers and configuration for widget renderers.
type Data struct {
	Template rendertemplate.TemplateRenderer
	// Partials maps a widget's partial key to a replacement template.
	Partials map[string]string
	Config   map[string]any
}

// Script describes a JavaScript dependency a widget needs emitted once per
// page.
type Script struct {
	Src    string
	Type   string
	Inline string
	Async  bool
	Defer  bool
	Module bool
	Attrs  map[string]string
}

// Widget bundles a renderer with its metadata and asset dependencies.
type Widget struct {
	Name        string
	Family      Family
	InputType   string
	PartialKey  string
	Template    string
	Renderer    Renderer
	Stylesheets []string
	Scripts     []Script
}

// Render runs the widget renderer.
func (w Widget) Render(buf *bytes.Buffer, field Field, data Data) error {
	if w.Renderer == nil {
		return fmt.Errorf("widgets: renderer for %q is nil", w.Name)
	}
	if field.InputType == "" {
		field.InputType = w.InputType
	}
	if w.Family == FamilyMultiChoice {
		field.Multiple = true
	}
	return w.Renderer(buf, field, data)
}

func cloneWidget(src Widget) Widget {
	clone := src
	clone.Stylesheets = slices.Clone(src.Stylesheets)
	clone.Scripts = make([]Script, len(src.Scripts))
	for idx, script := range src.Scripts {
		script.Attrs = cloneStringMap(script.Attrs)
		clone.Scripts[idx] = script
	}
	return clone
}

func cloneStringMap(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}
