// Package validation checks that a schema document builds into renderable
// forms, reporting every problem instead of stopping at the first one.
package validation

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/orchestrator"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

// Issue is one problem found in a form.
type Issue struct {
	Form    string `json:"form,omitempty"`
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result is the outcome of Lint.
type Result struct {
	Valid  bool     `json:"valid"`
	Forms  []string `json:"forms,omitempty"`
	Issues []Issue  `json:"issues,omitempty"`
}

// FieldErrors groups issue messages by field path, using "_form" for issues
// that do not point at a field.
func (r Result) FieldErrors() map[string][]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, issue := range r.Issues {
		key := issue.Field
		if key == "" {
			key = "_form"
		}
		out[key] = append(out[key], issue.Message)
	}
	return out
}

// Builder is the part of the orchestrator Lint drives.
type Builder interface {
	Forms(ctx context.Context, req orchestrator.Request) ([]schema.FormRef, error)
	Build(ctx context.Context, req orchestrator.Request) (*form.Form, error)
}

var _ Builder = (*orchestrator.Orchestrator)(nil)

// Lint lists the forms of req's document, then builds and renders each one
// against an empty model. Failures become issues tagged with the form id.
func Lint(ctx context.Context, builder Builder, req orchestrator.Request) Result {
	result := Result{Valid: true}
	if builder == nil {
		return result.fail(Issue{Message: "validation: builder is nil"})
	}

	ids := []string{strings.TrimSpace(req.FormID)}
	if ids[0] == "" {
		refs, err := builder.Forms(ctx, req)
		if err != nil {
			return result.fail(issueFromError("", err))
		}
		ids = ids[:0]
		for _, ref := range refs {
			ids = append(ids, ref.ID)
		}
	}

	for _, id := range ids {
		result.Forms = append(result.Forms, id)
		formReq := req
		formReq.FormID = id
		formReq.Model = nil
		f, err := builder.Build(ctx, formReq)
		if err != nil {
			result = result.fail(issueFromError(id, err))
			continue
		}
		if f == nil {
			continue
		}
		if _, err := f.Render(); err != nil {
			result = result.fail(issueFromError(id, err))
		}
	}
	return result
}

func (r Result) fail(issue Issue) Result {
	r.Valid = false
	r.Issues = append(r.Issues, issue)
	return r
}

func issueFromError(formID string, err error) Issue {
	var config *schema.ConfigError
	if errors.As(err, &config) {
		return Issue{
			Form:    formID,
			Path:    config.Path,
			Field:   strings.ReplaceAll(config.Path, "[]", ""),
			Message: config.Reason,
		}
	}

	msg := strings.TrimSpace(err.Error())
	pointer := extractPointer(msg)
	for _, prefix := range []string{"orchestrator: ", "jsonschema: ", "openapi adapter: ", "schema: "} {
		msg = strings.TrimPrefix(msg, prefix)
	}
	return Issue{
		Form:    formID,
		Path:    pointer,
		Field:   fieldFromPointer(pointer),
		Message: msg,
	}
}

// extractPointer finds a quoted JSON pointer such as "/$defs/a/properties/b"
// in an error message.
func extractPointer(message string) string {
	start := strings.Index(message, `"/`)
	if start < 0 {
		start = strings.Index(message, `"#/`)
	}
	if start < 0 {
		return ""
	}
	rest := message[start+1:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return ""
	}
	return strings.TrimPrefix(rest[:end], "#")
}

// fieldFromPointer turns a schema pointer into the dotted data path it
// describes: "/properties/items/items/properties/qty" is "items.qty".
func fieldFromPointer(pointer string) string {
	pointer = strings.TrimPrefix(strings.TrimPrefix(pointer, "#"), "/")
	if pointer == "" {
		return ""
	}
	parts := strings.Split(pointer, "/")
	var out []string
	for i := 0; i < len(parts); i++ {
		segment := strings.ReplaceAll(strings.ReplaceAll(parts[i], "~1", "/"), "~0", "~")
		switch segment {
		case "properties":
			if i+1 < len(parts) {
				i++
				out = append(out, strings.ReplaceAll(strings.ReplaceAll(parts[i], "~1", "/"), "~0", "~"))
			}
		case "$defs", "definitions":
			i++
		case "items", "":
		case "allOf", "anyOf", "oneOf":
			i++
		default:
			out = append(out, segment)
		}
	}
	return strings.Join(out, ".")
}
