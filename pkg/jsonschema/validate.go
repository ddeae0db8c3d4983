package jsonschema

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	kjsonschema "github.com/kaptinlin/jsonschema"

	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

// ValidationError reports every keyword failure of a submitted model, keyed
// by JSON pointer into the model. Failures on the root object use "".
type ValidationError struct {
	Form     string
	Problems map[string][]string
}

func (e *ValidationError) Error() string {
	pointers := make([]string, 0, len(e.Problems))
	for pointer := range e.Problems {
		pointers = append(pointers, pointer)
	}
	sort.Strings(pointers)

	parts := make([]string, 0, len(pointers))
	for _, pointer := range pointers {
		label := pointer
		if label == "" {
			label = "/"
		}
		parts = append(parts, label+": "+strings.Join(e.Problems[pointer], "; "))
	}
	return fmt.Sprintf("jsonschema: form %s is invalid: %s", e.Form, strings.Join(parts, ", "))
}

// FieldErrors exposes the problems for hosts that map errors onto fields.
func (e *ValidationError) FieldErrors() map[string][]string {
	return e.Problems
}

// Validator compiles the selected form's schema and returns a validate func
// that checks the whole model against it.
func (a *Adapter) Validator(ctx context.Context, doc schema.Document, formID string) (form.ValidateFunc, error) {
	entry, resolved, err := a.resolveForm(ctx, doc, formID)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(stripRefs(resolved))
	if err != nil {
		return nil, fmt.Errorf("jsonschema: form %s: encode schema: %w", entry.ID, err)
	}
	compiled, err := kjsonschema.NewCompiler().Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: form %s: compile: %w", entry.ID, err)
	}

	id := entry.ID
	return func(ctx context.Context, model map[string]any) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		result := compiled.Validate(model)
		if result.Valid {
			return nil
		}
		problems := map[string][]string{}
		collectProblems(result.ToList(), problems)
		if len(problems) == 0 {
			problems[""] = []string{"value does not match the schema"}
		}
		return &ValidationError{Form: id, Problems: problems}
	}, nil
}

func collectProblems(list *kjsonschema.List, out map[string][]string) {
	if list == nil {
		return
	}
	keywords := make([]string, 0, len(list.Errors))
	for keyword := range list.Errors {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)
	for _, keyword := range keywords {
		out[list.InstanceLocation] = append(out[list.InstanceLocation], list.Errors[keyword])
	}
	for i := range list.Details {
		collectProblems(&list.Details[i], out)
	}
}

// stripRefs drops the refs the resolver left in place to break cycles. The
// recursive part then accepts any value, matching the json control it maps
// to.
func stripRefs(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			if key == "$ref" || key == "$id" {
				continue
			}
			out[key] = stripRefs(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = stripRefs(item)
		}
		return out
	default:
		return v
	}
}
