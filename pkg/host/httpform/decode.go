package httpform

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-schemaform/pkg/view"
	"github.com/goliatone/go-schemaform/pkg/widgets"
)

// assignment is one decoded submitted value.
type assignment struct {
	path  string
	value any
}

// decodeForm converts posted form values into typed model values using the
// fields of the tree the browser was shown. Fields missing from the post are
// left alone, except multi-choice fields, which browsers omit when nothing is
// checked.
func decodeForm(tree []view.Node, values url.Values) ([]assignment, map[string][]string) {
	var (
		out      []assignment
		problems = make(map[string][]string)
	)
	view.Walk(tree, func(node view.Node) bool {
		if node.Kind != view.KindField || node.Field == nil || node.Widget == nil {
			return true
		}
		field := *node.Field
		if field.Props.Disabled || field.Props.ReadOnly {
			return true
		}
		value, present, err := decodeField(node.Widget.Family, field, values)
		if err != nil {
			problems[field.Name] = append(problems[field.Name], err.Error())
			return true
		}
		if present {
			out = append(out, assignment{path: field.Name, value: value})
		}
		return true
	})
	if len(problems) == 0 {
		problems = nil
	}
	return out, problems
}

func decodeField(family widgets.Family, field widgets.Field, values url.Values) (any, bool, error) {
	name := field.Name
	if family == widgets.FamilyRange {
		from, okFrom := values[name+"[0]"]
		to, okTo := values[name+"[1]"]
		if !okFrom && !okTo {
			return nil, false, nil
		}
		return []any{last(from), last(to)}, true, nil
	}

	submitted, ok := values[name]
	if family == widgets.FamilyMultiChoice || field.Multiple {
		selected := make([]any, 0, len(submitted))
		for _, key := range submitted {
			selected = append(selected, optionValue(field, key))
		}
		return selected, true, nil
	}
	if !ok {
		return nil, false, nil
	}
	raw := last(submitted)

	switch family {
	case widgets.FamilyToggle:
		parsed, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return raw == "on", true, nil
		}
		return parsed, true, nil
	case widgets.FamilyNumber:
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return nil, true, nil
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, false, fmt.Errorf("must be a number")
		}
		return parsed, true, nil
	case widgets.FamilyChoice:
		return optionValue(field, raw), true, nil
	case widgets.FamilyJSON:
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return nil, true, nil
		}
		var decoded any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
			return nil, false, fmt.Errorf("must be valid JSON")
		}
		return decoded, true, nil
	case widgets.FamilyFile:
		return nil, false, nil
	default:
		return raw, true, nil
	}
}

// optionValue maps a submitted option key back to the option's typed value.
func optionValue(field widgets.Field, key string) any {
	for _, option := range field.Options {
		if option.Key == key {
			return option.Value
		}
	}
	return key
}

func last(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}
