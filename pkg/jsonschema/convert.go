package jsonschema

import (
	pkgopenapi "github.com/goliatone/go-schemaform/pkg/openapi"
)

// convert maps a resolved JSON Schema object onto the schema shape the
// node builder understands. allOf members are folded in, and the first
// non-null branch of anyOf/oneOf stands in for the union.
func convert(raw map[string]any) pkgopenapi.Schema {
	if raw == nil {
		return pkgopenapi.Schema{}
	}
	out := pkgopenapi.Schema{
		Ref:         stringOf(raw["$ref"]),
		Type:        schemaType(raw["type"]),
		Format:      stringOf(raw["format"]),
		Title:       stringOf(raw["title"]),
		Description: stringOf(raw["description"]),
		Default:     raw["default"],
		Pattern:     stringOf(raw["pattern"]),
		ReadOnly:    boolOf(raw["readOnly"]),
		WriteOnly:   boolOf(raw["writeOnly"]),
		Minimum:     floatPtr(raw["minimum"]),
		Maximum:     floatPtr(raw["maximum"]),
		MinLength:   intPtr(raw["minLength"]),
		MaxLength:   intPtr(raw["maxLength"]),
	}
	if ext, ok := raw[pkgopenapi.ExtensionKey].(map[string]any); ok && len(ext) > 0 {
		out.Extensions = make(map[string]any, len(ext))
		for key, value := range ext {
			if key != "forms" {
				out.Extensions[key] = value
			}
		}
	}
	if values, ok := raw["enum"].([]any); ok {
		out.Enum = append([]any(nil), values...)
	} else if value, ok := raw["const"]; ok {
		out.Enum = []any{value}
	}
	if names, ok := raw["required"].([]any); ok {
		for _, name := range names {
			if s := stringOf(name); s != "" {
				out.Required = append(out.Required, s)
			}
		}
	}
	if props, ok := raw["properties"].(map[string]any); ok && len(props) > 0 {
		out.Properties = make(map[string]pkgopenapi.Schema, len(props))
		for name, prop := range props {
			child, _ := prop.(map[string]any)
			out.Properties[name] = convert(child)
		}
	}
	if items, ok := raw["items"].(map[string]any); ok {
		converted := convert(items)
		out.Items = &converted
	}
	for _, part := range list(raw["allOf"]) {
		merge(&out, convert(part))
	}
	for _, key := range []string{"anyOf", "oneOf"} {
		for _, branch := range list(raw[key]) {
			converted := convert(branch)
			if converted.Type == "null" {
				continue
			}
			merge(&out, converted)
			break
		}
	}
	if out.Type == "" && len(out.Properties) > 0 {
		out.Type = "object"
	}
	return out
}

// merge fills gaps in target from part. Properties and required names
// accumulate.
func merge(target *pkgopenapi.Schema, part pkgopenapi.Schema) {
	if target.Type == "" {
		target.Type = part.Type
	}
	if target.Format == "" {
		target.Format = part.Format
	}
	if target.Title == "" {
		target.Title = part.Title
	}
	if target.Description == "" {
		target.Description = part.Description
	}
	if target.Default == nil {
		target.Default = part.Default
	}
	if len(target.Enum) == 0 {
		target.Enum = part.Enum
	}
	if target.Items == nil {
		target.Items = part.Items
	}
	if target.Minimum == nil {
		target.Minimum = part.Minimum
	}
	if target.Maximum == nil {
		target.Maximum = part.Maximum
	}
	target.Required = append(target.Required, part.Required...)
	if len(part.Properties) > 0 && target.Properties == nil {
		target.Properties = make(map[string]pkgopenapi.Schema, len(part.Properties))
	}
	for name, prop := range part.Properties {
		if _, exists := target.Properties[name]; !exists {
			target.Properties[name] = prop
		}
	}
	if len(part.Extensions) > 0 && target.Extensions == nil {
		target.Extensions = make(map[string]any, len(part.Extensions))
	}
	for key, value := range part.Extensions {
		if _, exists := target.Extensions[key]; !exists {
			target.Extensions[key] = value
		}
	}
}

// schemaType picks the first non-null entry of a type union.
func schemaType(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case []any:
		for _, item := range typed {
			if name := stringOf(item); name != "" && name != "null" {
				return name
			}
		}
	}
	return ""
}

func list(value any) []map[string]any {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if object, ok := item.(map[string]any); ok {
			out = append(out, object)
		}
	}
	return out
}

func boolOf(value any) bool {
	b, _ := value.(bool)
	return b
}

func floatPtr(value any) *float64 {
	var f float64
	switch typed := value.(type) {
	case float64:
		f = typed
	case float32:
		f = float64(typed)
	case int:
		f = float64(typed)
	case int64:
		f = float64(typed)
	case uint64:
		f = float64(typed)
	default:
		return nil
	}
	return &f
}

func intPtr(value any) *int {
	f := floatPtr(value)
	if f == nil || *f < 0 {
		return nil
	}
	n := int(*f)
	return &n
}
