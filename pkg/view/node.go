// Package view defines the UI tree produced by a render pass. Output
// renderers (HTML, JSON, terminal) consume it; they never read the schema or
// the data model directly.
package view

import (
	"github.com/goliatone/go-schemaform/pkg/binding"
	"github.com/goliatone/go-schemaform/pkg/widgets"
)

// Kind identifies the node variant.
type Kind string

const (
	KindField  Kind = "field"
	KindSlot   Kind = "slot"
	KindCustom Kind = "custom"
	KindGroup  Kind = "group"
	KindColumn Kind = "column"
	KindList   Kind = "list"
	KindRow    Kind = "row"
	KindAction Kind = "action"
)

// ActionType identifies a structural list mutation.
type ActionType string

const (
	ActionAdd    ActionType = "add"
	ActionRemove ActionType = "remove"
)

// Action is an add/remove affordance. ID is the transport form of the action
// ("add:items", "remove:items[0]") that hosts post back; Do applies it
// directly against the model the tree was rendered from.
type Action struct {
	Type   ActionType   `json:"type"`
	ID     string       `json:"id"`
	Target string       `json:"target"`
	Index  int          `json:"index"`
	Do     func() error `json:"-"`
}

// Node is one element of the rendered UI tree.
type Node struct {
	Kind      Kind             `json:"kind"`
	Key       string           `json:"key,omitempty"`
	Name      string           `json:"name,omitempty"`
	Label     string           `json:"label,omitempty"`
	Control   string           `json:"control,omitempty"`
	Slot      string           `json:"slot,omitempty"`
	Text      string           `json:"text,omitempty"`
	HTML      string           `json:"html,omitempty"`
	Value     any              `json:"value,omitempty"`
	Props     map[string]any   `json:"props,omitempty"`
	ItemProps map[string]any   `json:"itemProps,omitempty"`
	Field     *widgets.Field   `json:"field,omitempty"`
	Widget    *widgets.Widget  `json:"-"`
	Binding   *binding.Binding `json:"-"`
	Action    *Action          `json:"action,omitempty"`
	Children  []Node           `json:"children,omitempty"`
}

// Walk visits nodes depth first. Returning false from fn skips the node's
// children.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, node := range nodes {
		if !fn(node) {
			continue
		}
		Walk(node.Children, fn)
	}
}

// Find returns the first node, depth first, matching pred.
func Find(nodes []Node, pred func(Node) bool) (Node, bool) {
	var (
		found Node
		ok    bool
	)
	Walk(nodes, func(node Node) bool {
		if ok {
			return false
		}
		if pred(node) {
			found, ok = node, true
			return false
		}
		return true
	})
	return found, ok
}

// FindByName returns the first node of kind bound to name.
func FindByName(nodes []Node, kind Kind, name string) (Node, bool) {
	return Find(nodes, func(node Node) bool {
		return node.Kind == kind && node.Name == name
	})
}

// Fields collects every field node in render order.
func Fields(nodes []Node) []Node {
	var out []Node
	Walk(nodes, func(node Node) bool {
		if node.Kind == KindField {
			out = append(out, node)
		}
		return true
	})
	return out
}
