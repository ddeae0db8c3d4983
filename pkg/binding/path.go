package binding

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPath is returned for paths that cannot address a model slot.
var ErrInvalidPath = errors.New("binding: invalid path")

// Segment is one step of a parsed path. Index is -1 for unindexed segments.
type Segment struct {
	Field string
	Index int
}

// ParsePath parses dotted paths ("items[0].title", "items.0.title") and JSON
// pointers ("/items/0/title", "#/items/0/title").
func ParsePath(path string) ([]Segment, error) {
	tokens := pathTokens(path)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: %q is empty", ErrInvalidPath, path)
	}
	out := make([]Segment, 0, len(tokens))
	for _, token := range tokens {
		if idx, err := strconv.Atoi(token); err == nil {
			if len(out) == 0 || out[len(out)-1].Index >= 0 {
				return nil, fmt.Errorf("%w: %q has a dangling index %d", ErrInvalidPath, path, idx)
			}
			if idx < 0 {
				return nil, fmt.Errorf("%w: %q has a negative index", ErrInvalidPath, path)
			}
			out[len(out)-1].Index = idx
			continue
		}
		out = append(out, Segment{Field: token, Index: -1})
	}
	return out, nil
}

// ParseLocation splits a path into the context of its innermost row and the
// key inside that row. When the last segment is indexed (a row path such as
// "items[2]") the key names the list and index is the row; otherwise index
// is -1.
func ParseLocation(path string) (Context, string, int, error) {
	segments, err := ParsePath(path)
	if err != nil {
		return Context{}, "", -1, err
	}
	frames := make([]Frame, 0, len(segments)-1)
	for _, segment := range segments[:len(segments)-1] {
		if segment.Index < 0 {
			return Context{}, "", -1, fmt.Errorf("%w: %q segment %q is not a list row", ErrInvalidPath, path, segment.Field)
		}
		frames = append(frames, Frame{Field: segment.Field, Index: segment.Index})
	}
	last := segments[len(segments)-1]
	return Context{frames: frames}, last.Field, last.Index, nil
}

func pathTokens(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimPrefix(clean, "#")
	clean = strings.TrimPrefix(clean, "$")
	replacer := strings.NewReplacer("[", ".", "]", "")
	clean = replacer.Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}
	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		out = append(out, part)
	}
	return out
}

// FormatPath renders segments in the form Context.Path produces, for example
// "outer[1].inner[0].title".
func FormatPath(segments []Segment) string {
	var b strings.Builder
	for i, segment := range segments {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(segment.Field)
		if segment.Index >= 0 {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(segment.Index))
			b.WriteByte(']')
		}
	}
	return b.String()
}
