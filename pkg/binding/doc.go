// Package binding resolves where a schema node's value lives inside a caller
// owned data model and exposes read/write bindings against that location.
//
// The data model is a tree of map[string]any objects and []any row arrays
// (the shape encoding/json produces). A Context records, for every enclosing
// list, the list field name and the row index currently being rendered, so a
// leaf nested two lists deep resolves to root[outer][a][inner][b][leaf].
//
// Lookup never mutates the model. Ensure creates the missing row objects and
// list arrays on the resolved path, writing each new container back into its
// parent so later lookups observe it. Locations are never cached: every
// Binding call re-resolves against the current model.
package binding
