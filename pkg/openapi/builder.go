package openapi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-schemaform/pkg/schema"
)

// ExtensionKey is the vendor extension read from request body schemas to
// override the inferred node.
const ExtensionKey = "x-schemaform"

// Builder converts request body schemas into schema nodes.
type Builder struct {
	labeler Labeler
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLabeler replaces DefaultLabeler for properties without a title.
func WithLabeler(labeler Labeler) BuilderOption {
	return func(b *Builder) {
		if labeler != nil {
			b.labeler = labeler
		}
	}
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{labeler: DefaultLabeler}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Build maps the operation's request body to nodes. Properties are emitted
// in x-schemaform "order" first, then alphabetically. Read-only properties
// are skipped.
func (b *Builder) Build(op Operation) ([]schema.Node, error) {
	body := op.RequestBody
	if !body.IsObject() {
		return nil, fmt.Errorf("openapi builder: %s: request body must be an object with properties", op.ID)
	}
	nodes, err := b.properties(body)
	if err != nil {
		return nil, fmt.Errorf("openapi builder: %s: %w", op.ID, err)
	}
	if err := schema.Validate(nodes); err != nil {
		return nil, fmt.Errorf("openapi builder: %s: %w", op.ID, err)
	}
	return nodes, nil
}

// Defaults collects top-level property defaults into an initial model.
func (b *Builder) Defaults(op Operation) map[string]any {
	out := make(map[string]any)
	for name, prop := range op.RequestBody.Properties {
		if prop.Default != nil && !prop.ReadOnly {
			out[name] = prop.Default
		}
	}
	return out
}

func (b *Builder) properties(s Schema) ([]schema.Node, error) {
	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}

	var nodes []schema.Node
	for _, name := range orderedNames(s) {
		prop := s.Properties[name]
		if prop.ReadOnly {
			continue
		}
		node, err := b.property(name, prop, required[name])
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (b *Builder) property(name string, s Schema, required bool) (schema.Node, error) {
	ext := readExtension(s.Extensions)
	node := schema.Node{
		DataIndex:   name,
		Label:       firstNonEmpty(ext.Label, s.Title, b.labeler(name)),
		Hidden:      ext.Hidden,
		VisibleWhen: ext.VisibleWhen,
		Slot:        ext.Slot,
	}
	props := make(map[string]any)
	if required {
		props["required"] = true
	}
	if ext.Placeholder != "" {
		props["placeholder"] = ext.Placeholder
	}

	switch {
	case s.Type == "array" && s.Items != nil && s.Items.IsObject():
		children, err := b.properties(*s.Items)
		if err != nil {
			return schema.Node{}, fmt.Errorf("%s: %w", name, err)
		}
		node.ControlType = schema.ControlList
		node.Children = children
	case s.Type == "array" && s.Items != nil && len(s.Items.Enum) > 0:
		node.ControlType = schema.ControlCheckboxGroup
		props["options"] = enumOptions(s.Items.Enum)
	case len(s.Enum) > 0:
		node.ControlType = schema.ControlSelect
		props["options"] = enumOptions(s.Enum)
	case s.Type == "boolean":
		node.ControlType = schema.ControlSwitch
	case s.Type == "integer" || s.Type == "number":
		node.ControlType = schema.ControlInputNumber
		if s.Minimum != nil {
			props["min"] = *s.Minimum
		}
		if s.Maximum != nil {
			props["max"] = *s.Maximum
		}
		if s.Type == "integer" {
			props["step"] = 1
		}
	case s.Type == "string":
		node.ControlType = stringControl(s)
		if attrs := stringAttrs(s); len(attrs) > 0 {
			props["attrs"] = attrs
		}
	default:
		node.ControlType = schema.ControlJSON
	}

	if ext.ControlType != "" {
		node.ControlType = ext.ControlType
	}
	for key, value := range ext.ControlProps {
		props[key] = value
	}
	if len(props) > 0 {
		node.ControlProps = props
	}

	itemProps := make(map[string]any)
	if s.Description != "" {
		itemProps["extra"] = s.Description
	}
	for key, value := range ext.FormItemProps {
		itemProps[key] = value
	}
	if len(itemProps) > 0 {
		node.FormItemProps = itemProps
	}
	return node, nil
}

func stringControl(s Schema) string {
	switch strings.ToLower(strings.TrimSpace(s.Format)) {
	case "password":
		return schema.ControlInputPassword
	case "date":
		return schema.ControlDatePicker
	case "time":
		return schema.ControlTimePicker
	case "binary", "byte":
		return schema.ControlUpload
	case "textarea", "markdown", "html":
		return schema.ControlTextArea
	}
	if s.MaxLength != nil && *s.MaxLength > 255 {
		return schema.ControlTextArea
	}
	return schema.ControlInput
}

func stringAttrs(s Schema) map[string]string {
	attrs := make(map[string]string)
	if s.MinLength != nil && *s.MinLength > 0 {
		attrs["minlength"] = fmt.Sprint(*s.MinLength)
	}
	if s.MaxLength != nil {
		attrs["maxlength"] = fmt.Sprint(*s.MaxLength)
	}
	if s.Pattern != "" {
		attrs["pattern"] = s.Pattern
	}
	switch strings.ToLower(s.Format) {
	case "email":
		attrs["inputmode"] = "email"
	case "uri", "url", "iri":
		attrs["inputmode"] = "url"
	case "tel", "phone":
		attrs["inputmode"] = "tel"
	}
	return attrs
}

func enumOptions(values []any) []any {
	out := make([]any, 0, len(values))
	for _, value := range values {
		if value == nil {
			continue
		}
		out = append(out, map[string]any{"label": fmt.Sprint(value), "value": value})
	}
	return out
}

func orderedNames(s Schema) []string {
	ext := readExtension(s.Extensions)
	seen := make(map[string]bool, len(s.Properties))
	names := make([]string, 0, len(s.Properties))
	for _, name := range ext.Order {
		if _, ok := s.Properties[name]; ok && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	rest := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

type extension struct {
	ControlType   string
	Label         string
	Placeholder   string
	Slot          string
	VisibleWhen   string
	Hidden        bool
	Order         []string
	ControlProps  map[string]any
	FormItemProps map[string]any
}

func readExtension(raw map[string]any) extension {
	var ext extension
	if len(raw) == 0 {
		return ext
	}
	ext.ControlType = stringValue(raw["controlType"])
	ext.Label = stringValue(raw["label"])
	ext.Placeholder = stringValue(raw["placeholder"])
	ext.Slot = stringValue(raw["slot"])
	ext.VisibleWhen = stringValue(raw["visibleWhen"])
	if hidden, ok := raw["hidden"].(bool); ok {
		ext.Hidden = hidden
	}
	if order, ok := raw["order"].([]any); ok {
		for _, item := range order {
			if name := stringValue(item); name != "" {
				ext.Order = append(ext.Order, name)
			}
		}
	}
	ext.ControlProps, _ = raw["controlProps"].(map[string]any)
	ext.FormItemProps, _ = raw["formItemProps"].(map[string]any)
	return ext
}

func stringValue(value any) string {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
