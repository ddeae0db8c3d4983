package binding

import (
	"strconv"
	"strings"
)

// Frame records one enclosing list: the list field name inside its parent
// storage object and the row index being visited.
type Frame struct {
	Field string
	Index int
}

// Context is the binding context threaded through a render pass. It is an
// immutable value; Descend returns a copy so sibling rows never observe each
// other's extensions.
type Context struct {
	frames []Frame
}

// Root returns the empty context used at the top of a render pass.
func Root() Context {
	return Context{}
}

// NewContext builds a context from explicit frames. The slice is copied.
func NewContext(frames ...Frame) Context {
	if len(frames) == 0 {
		return Context{}
	}
	return Context{frames: append([]Frame(nil), frames...)}
}

// Descend returns a new context nested one list deeper.
func (c Context) Descend(field string, index int) Context {
	frames := make([]Frame, len(c.frames), len(c.frames)+1)
	copy(frames, c.frames)
	frames = append(frames, Frame{Field: field, Index: index})
	return Context{frames: frames}
}

// Frames returns a copy of the context frames, outermost first.
func (c Context) Frames() []Frame {
	if len(c.frames) == 0 {
		return nil
	}
	return append([]Frame(nil), c.frames...)
}

// Depth reports how many lists enclose the context.
func (c Context) Depth() int {
	return len(c.frames)
}

// IsRoot reports whether the context has no list ancestry.
func (c Context) IsRoot() bool {
	return len(c.frames) == 0
}

// ParentFieldPath lists the enclosing list field names, outermost first.
func (c Context) ParentFieldPath() []string {
	if len(c.frames) == 0 {
		return nil
	}
	out := make([]string, len(c.frames))
	for i, frame := range c.frames {
		out[i] = frame.Field
	}
	return out
}

// ListIndex returns the row index of the innermost enclosing list.
func (c Context) ListIndex() (int, bool) {
	if len(c.frames) == 0 {
		return 0, false
	}
	return c.frames[len(c.frames)-1].Index, true
}

// Path renders the dotted path of key under the context, for example
// "outer[1].inner[0].title". An empty key renders the path of the innermost
// row.
func (c Context) Path(key string) string {
	var b strings.Builder
	for i, frame := range c.frames {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(frame.Field)
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(frame.Index))
		b.WriteByte(']')
	}
	if key != "" {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(key)
	}
	return b.String()
}

// RowPath renders the path of row index inside list field under the context,
// for example "items[2]".
func (c Context) RowPath(field string, index int) string {
	return c.Descend(field, index).Path("")
}

func (c Context) String() string {
	return c.Path("")
}
