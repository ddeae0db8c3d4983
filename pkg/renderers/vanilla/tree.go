package vanilla

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-schemaform/pkg/render"
	rendertemplate "github.com/goliatone/go-schemaform/pkg/render/template"
	"github.com/goliatone/go-schemaform/pkg/view"
	"github.com/goliatone/go-schemaform/pkg/widgets"
)

// treeRenderer holds the state of one render pass.
type treeRenderer struct {
	templates rendertemplate.TemplateRenderer
	registry  *widgets.Registry
	partials  map[string]string
	policy    *bluemonday.Policy
	options   render.RenderOptions
	used      map[string]struct{}
}

func (t *treeRenderer) nodes(nodes []view.Node) (string, error) {
	parts := make([]string, 0, len(nodes))
	for _, node := range nodes {
		rendered, err := t.node(node)
		if err != nil {
			return "", err
		}
		if rendered = strings.TrimSpace(rendered); rendered != "" {
			parts = append(parts, rendered)
		}
	}
	return strings.Join(parts, "\n"), nil
}

func (t *treeRenderer) node(node view.Node) (string, error) {
	switch node.Kind {
	case view.KindField:
		return t.field(node)
	case view.KindGroup:
		return t.container("group", ClassGroup, node, nil)
	case view.KindColumn:
		return t.container("column", ClassColumn, node, nil)
	case view.KindList:
		return t.container("list", ClassList, node, map[string]any{
			"errors": t.options.FieldErrors(node.Name),
		})
	case view.KindRow:
		return t.container("row", ClassRow, node, nil)
	case view.KindAction:
		return t.action(node)
	case view.KindSlot, view.KindCustom:
		return t.slot(node)
	default:
		return "", fmt.Errorf("unsupported node kind %q at %q", node.Kind, node.Key)
	}
}

func (t *treeRenderer) container(name string, base ChromeClass, node view.Node, extra map[string]any) (string, error) {
	body, err := t.nodes(node.Children)
	if err != nil {
		return "", err
	}
	data := map[string]any{
		"key":     node.Key,
		"name":    node.Name,
		"label":   node.Label,
		"classes": classes(base, propClass(node.Props)),
		"attrs":   propAttributes(node.Props),
		"body":    body,
	}
	for key, value := range extra {
		data[key] = value
	}
	return t.layout(name, data)
}

func (t *treeRenderer) field(node view.Node) (string, error) {
	if node.Field == nil {
		return "", fmt.Errorf("field node %q has no field payload", node.Key)
	}
	widget := node.Widget
	if widget == nil {
		resolved, ok := t.registry.Lookup(node.Control)
		if !ok {
			return "", fmt.Errorf("no widget registered for control %q at %q", node.Control, node.Name)
		}
		widget = &resolved
	}

	var control bytes.Buffer
	err := widget.Render(&control, *node.Field, widgets.Data{
		Template: t.templates,
		Partials: t.partials,
		Config:   node.Props,
	})
	if err != nil {
		return "", fmt.Errorf("render widget %q for %q: %w", widget.Name, node.Name, err)
	}
	t.used[widget.Name] = struct{}{}

	base := ClassField
	toggle := widget.Family == widgets.FamilyToggle
	if toggle {
		base = modifier(ClassField, "toggle")
	}
	extra := []string{propClass(node.ItemProps)}
	errors := t.options.FieldErrors(node.Name)
	if len(errors) > 0 {
		extra = append(extra, "has-error")
	}

	return t.layout("field", map[string]any{
		"id":       node.Field.ID,
		"name":     node.Name,
		"label":    node.Label,
		"control":  control.String(),
		"errors":   errors,
		"toggle":   toggle,
		"required": node.Field.Props.Required,
		"classes":  classes(base, extra...),
		"attrs":    propAttributes(node.ItemProps),
	})
}

func (t *treeRenderer) action(node view.Node) (string, error) {
	if node.Action == nil {
		return "", fmt.Errorf("action node %q has no action", node.Key)
	}
	text := node.Text
	if text == "" {
		text = string(node.Action.Type)
	}
	return t.layout("action", map[string]any{
		"id":           node.Action.ID,
		"type":         string(node.Action.Type),
		"text":         text,
		"action_field": render.ActionField,
		"classes":      classes(modifier(ClassAction, string(node.Action.Type)), propClass(node.Props)),
		"attrs":        propAttributes(node.Props),
	})
}

func (t *treeRenderer) slot(node view.Node) (string, error) {
	body, err := t.nodes(node.Children)
	if err != nil {
		return "", err
	}
	return t.layout("slot", map[string]any{
		"key":     node.Key,
		"slot":    node.Slot,
		"text":    node.Text,
		"markup":  sanitizeMarkup(t.policy, node.HTML),
		"body":    body,
		"classes": classes(ClassSlot, propClass(node.Props)),
	})
}

// layout renders a layout template, honouring a theme partial registered as
// "forms.layout.<name>".
func (t *treeRenderer) layout(name string, data map[string]any) (string, error) {
	templateName := "layout/" + name + ".tmpl"
	if candidate := strings.TrimSpace(t.partials["forms.layout."+name]); candidate != "" {
		templateName = candidate
	}
	out, err := t.templates.RenderTemplate(templateName, data)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return out, nil
}
