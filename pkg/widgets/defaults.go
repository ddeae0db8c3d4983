package widgets

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"io/fs"
	"strings"
)

//go:embed templates/widgets/*.tmpl
var embeddedTemplates embed.FS

const templatePrefix = "widgets/"

// TemplatesFS exposes the built-in widget templates, rooted so template names
// read "widgets/input.tmpl".
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// NewDefaultRegistry constructs a registry covering every built-in control
// type.
func NewDefaultRegistry() *Registry {
	registry := New()

	input := func(inputType string, family Family) Widget {
		return Widget{
			Family:     family,
			InputType:  inputType,
			PartialKey: "forms.input",
			Template:   templatePrefix + "input.tmpl",
			Renderer:   TemplateRenderer("forms.input", templatePrefix+"input.tmpl"),
		}
	}
	choice := func(partialKey, name string, family Family) Widget {
		return Widget{
			Family:     family,
			PartialKey: partialKey,
			Template:   templatePrefix + name,
			Renderer:   TemplateRenderer(partialKey, templatePrefix+name),
		}
	}

	registry.MustRegister("text", input("text", FamilyText))
	registry.MustRegister("input", input("text", FamilyText))
	registry.MustRegister("input-search", input("search", FamilyText))
	registry.MustRegister("auto-complete", input("text", FamilyText))
	registry.MustRegister("mentions", input("text", FamilyText))
	registry.MustRegister("input-password", input("password", FamilyPassword))
	registry.MustRegister("input-number", input("number", FamilyNumber))
	registry.MustRegister("rate", input("number", FamilyNumber))
	registry.MustRegister("slider", input("range", FamilyNumber))
	registry.MustRegister("date-picker", input("date", FamilyText))
	registry.MustRegister("time-picker", input("time", FamilyText))
	registry.MustRegister("upload", input("file", FamilyFile))

	registry.MustRegister("textarea", choice("forms.textarea", "textarea.tmpl", FamilyTextArea))
	registry.MustRegister("select", choice("forms.select", "select.tmpl", FamilyChoice))
	registry.MustRegister("cascader", choice("forms.select", "select.tmpl", FamilyChoice))
	registry.MustRegister("tree-select", choice("forms.select", "select.tmpl", FamilyChoice))
	registry.MustRegister("transfer", choice("forms.select", "select.tmpl", FamilyMultiChoice))
	registry.MustRegister("radio", choice("forms.radio", "radio.tmpl", FamilyChoice))
	registry.MustRegister("radio-group", choice("forms.radio", "radio.tmpl", FamilyChoice))
	registry.MustRegister("checkbox-group", choice("forms.checkbox-group", "checkbox_group.tmpl", FamilyMultiChoice))
	registry.MustRegister("checkbox", choice("forms.checkbox", "checkbox.tmpl", FamilyToggle))
	registry.MustRegister("switch", choice("forms.checkbox", "checkbox.tmpl", FamilyToggle))
	registry.MustRegister("range-picker", rangeWidget("date"))
	registry.MustRegister("time-range-picker", rangeWidget("time"))

	registry.MustRegister("json", Widget{
		Family:   FamilyJSON,
		Renderer: jsonRenderer,
	})

	return registry
}

func rangeWidget(inputType string) Widget {
	return Widget{
		Family:     FamilyRange,
		InputType:  inputType,
		PartialKey: "forms.range",
		Template:   templatePrefix + "range.tmpl",
		Renderer:   TemplateRenderer("forms.range", templatePrefix+"range.tmpl"),
	}
}

// TemplateRenderer renders templateName through the configured template
// engine. A theme partial registered under partialKey takes precedence.
func TemplateRenderer(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, field Field, data Data) error {
		if data.Template == nil {
			return fmt.Errorf("widgets: template renderer not configured for %q", templateName)
		}

		resolved := templateName
		if data.Partials != nil {
			if candidate := strings.TrimSpace(data.Partials[partialKey]); candidate != "" {
				resolved = candidate
			}
		}

		payload := map[string]any{
			"field":  field,
			"config": data.Config,
		}
		rendered, err := data.Template.RenderTemplate(resolved, payload)
		if err != nil {
			return fmt.Errorf("widgets: render template %q: %w", resolved, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

func jsonRenderer(buf *bytes.Buffer, field Field, _ Data) error {
	rows := field.Props.Rows
	if rows <= 0 {
		rows = 6
	}
	buf.WriteString(`<textarea data-widget="json" id="`)
	buf.WriteString(html.EscapeString(field.ID))
	buf.WriteString(`" name="`)
	buf.WriteString(html.EscapeString(field.Name))
	buf.WriteString(`" rows="`)
	fmt.Fprintf(buf, "%d", rows)
	buf.WriteString(`"`)
	if class := field.Props.Class; class != "" {
		buf.WriteString(` class="`)
		buf.WriteString(html.EscapeString(class))
		buf.WriteString(`"`)
	}
	if field.Props.Disabled {
		buf.WriteString(` disabled`)
	}
	if field.Props.ReadOnly {
		buf.WriteString(` readonly`)
	}
	buf.WriteString(`>`)
	buf.WriteString(html.EscapeString(field.Display))
	buf.WriteString(`</textarea>`)
	return nil
}
