package render

import (
	"strings"

	"github.com/goliatone/go-schemaform/pkg/binding"
	"github.com/goliatone/go-schemaform/pkg/view"
)

// ErrorMapping splits an error payload into field-level messages keyed by
// binding path and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises form-level error slices,
// trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload maps server error keys (JSON pointers, dotted or bracketed
// paths, optionally wrapped in "body"/"data"/... prefixes) onto the binding
// paths present in tree. A key addressing something below a rendered node is
// attached to the deepest rendered ancestor. Keys that match nothing are kept
// as form-level errors so messages are not lost.
func MapErrorPayload(tree []view.Node, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	known := make(map[string]struct{})
	view.Walk(tree, func(node view.Node) bool {
		switch node.Kind {
		case view.KindField, view.KindSlot, view.KindList, view.KindRow:
			if node.Name != "" {
				known[node.Name] = struct{}{}
			}
		}
		return true
	})

	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		mapped, ok := mapErrorPath(rawPath, known)
		if !ok {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[mapped] = append(mapping.Fields[mapped], normalized...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func mapErrorPath(raw string, known map[string]struct{}) (string, bool) {
	if isFormLevelKey(raw) {
		return "", false
	}
	segments, err := binding.ParsePath(strings.TrimPrefix(strings.TrimSpace(raw), "$."))
	if err != nil {
		return "", false
	}

	best := ""
	for _, variant := range [][]binding.Segment{segments, dropWrapperSegments(segments)} {
		if path := longestKnownPrefix(variant, known); len(path) > len(best) {
			best = path
		}
	}
	return best, best != ""
}

// longestKnownPrefix returns the longest prefix of segments naming a known
// path. A trailing index is tried both with and without the index so
// "items[0]" can fall back to "items".
func longestKnownPrefix(segments []binding.Segment, known map[string]struct{}) string {
	for end := len(segments); end > 0; end-- {
		prefix := segments[:end]
		if path := binding.FormatPath(prefix); isKnown(path, known) {
			return path
		}
		last := prefix[len(prefix)-1]
		if last.Index >= 0 {
			trimmed := append(append([]binding.Segment(nil), prefix[:end-1]...), binding.Segment{Field: last.Field, Index: -1})
			if path := binding.FormatPath(trimmed); isKnown(path, known) {
				return path
			}
		}
	}
	return ""
}

func isKnown(path string, known map[string]struct{}) bool {
	_, ok := known[path]
	return ok
}

func dropWrapperSegments(segments []binding.Segment) []binding.Segment {
	out := segments
	for len(out) > 0 && out[0].Index < 0 {
		switch strings.ToLower(out[0].Field) {
		case "body", "request", "payload", "data", "attributes":
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
