// Package visibility decides whether a node with a visibleWhen rule is
// rendered.
package visibility

// Evaluator reports whether rule holds for ctx. An empty rule is always
// visible.
type Evaluator interface {
	Eval(rule string, ctx Context) (bool, error)
}

// Context is the data a rule can read. Bare identifiers resolve against
// Scope first and fall back to Root; "$root." forces the model root and
// "extras." reads Extras.
type Context struct {
	// Path is the bound path of the node being evaluated.
	Path   string
	Root   map[string]any
	Scope  map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(rule string, ctx Context) (bool, error)

func (fn EvaluatorFunc) Eval(rule string, ctx Context) (bool, error) {
	return fn(rule, ctx)
}

// Always is an Evaluator that shows every node.
var Always Evaluator = EvaluatorFunc(func(string, Context) (bool, error) { return true, nil })
