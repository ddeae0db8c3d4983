package form

import (
	"strings"

	"github.com/goliatone/go-schemaform/pkg/binding"
	"github.com/goliatone/go-schemaform/pkg/schema"
	"github.com/goliatone/go-schemaform/pkg/view"
)

// SlotProps is passed to a slot replacing a node or a list affordance.
//
// Leaf slots get Value and Binding. Remove slots get Row, Index and Remove,
// which performs the default removal; a slot that never calls it overrides
// removal entirely. Add slots get Add, the default add path.
type SlotProps struct {
	Name    string
	Node    schema.Node
	Path    string
	Value   any
	Binding *binding.Binding
	Row     map[string]any
	Index   int
	Add     func() (int, error)
	Remove  func() error
}

// SlotFunc renders a slot.
type SlotFunc func(props SlotProps) (view.Node, error)

// Slots maps slot names to their renderers.
type Slots map[string]SlotFunc

// Lookup returns the slot registered under name. A missing slot is not an
// error; callers fall back to default rendering.
func (s Slots) Lookup(name string) (SlotFunc, bool) {
	name = strings.TrimSpace(name)
	if name == "" || s == nil {
		return nil, false
	}
	fn, ok := s[name]
	if !ok || fn == nil {
		return nil, false
	}
	return fn, true
}

func slotNode(rendered view.Node, name, key string) view.Node {
	if rendered.Kind == "" {
		rendered.Kind = view.KindSlot
	}
	if rendered.Slot == "" {
		rendered.Slot = name
	}
	if rendered.Key == "" {
		rendered.Key = key
	}
	return rendered
}
