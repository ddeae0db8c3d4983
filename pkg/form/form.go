// Package form binds a schema tree to a caller-owned model. A Form renders the
// schema into a view tree, applies list actions, and forwards value access,
// validation and submission to its Handle.
//
// A Form is not safe for concurrent use. Hosts serving several clients must
// serialise access, which also keeps two actions on the same list in arrival
// order.
package form

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-schemaform/internal/logging"
	"github.com/goliatone/go-schemaform/pkg/binding"
	"github.com/goliatone/go-schemaform/pkg/schema"
	"github.com/goliatone/go-schemaform/pkg/view"
	"github.com/goliatone/go-schemaform/pkg/visibility"
	"github.com/goliatone/go-schemaform/pkg/visibility/expr"
	"github.com/goliatone/go-schemaform/pkg/widgets"
)

var (
	// ErrUnknownAction is returned by Dispatch for ids it cannot parse.
	ErrUnknownAction = errors.New("form: unknown action")
	// ErrListNotFound is returned when a path does not name a visible list.
	ErrListNotFound = errors.New("form: list not found")
)

// Form is the top-level container: it owns the model reference, the control
// registry and the slot set.
type Form struct {
	nodes      []schema.Node
	model      map[string]any
	registry   *widgets.Registry
	slots      Slots
	handle     Handle
	handleOpts []HandleOption
	logger     *log.Logger
	observers  []binding.Observer
	visibility visibility.Evaluator
	extras     map[string]any
}

// New validates nodes and binds them to model. The model is used in place and
// its root reference is never replaced.
func New(nodes []schema.Node, model map[string]any, opts ...Option) (*Form, error) {
	if model == nil {
		return nil, fmt.Errorf("form: %w", binding.ErrNilModel)
	}
	if err := schema.Validate(nodes); err != nil {
		return nil, err
	}

	f := &Form{
		nodes:      nodes,
		model:      model,
		registry:   widgets.NewDefaultRegistry(),
		slots:      make(Slots),
		logger:     logging.Discard(),
		visibility: expr.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if err := compileRules(f.visibility, nodes, ""); err != nil {
		return nil, err
	}
	if f.handle == nil {
		f.handle = NewModelHandle(model, f.handleOpts...)
	}
	return f, nil
}

// Schema returns the form's schema nodes.
func (f *Form) Schema() []schema.Node {
	return f.nodes
}

// Model returns the live model.
func (f *Form) Model() map[string]any {
	return f.model
}

// Snapshot returns a deep copy of the model for read-only use.
func (f *Form) Snapshot() map[string]any {
	return copyModel(f.model)
}

// Registry returns the control registry.
func (f *Form) Registry() *widgets.Registry {
	return f.registry
}

// Handle returns the handle the form forwards to.
func (f *Form) Handle() Handle {
	return f.handle
}

// OnChange subscribes observer to changes. Observers run synchronously after
// each change has been applied.
func (f *Form) OnChange(observer binding.Observer) {
	if observer != nil {
		f.observers = append(f.observers, observer)
	}
}

func (f *Form) notify(change binding.Change) {
	for _, observer := range slices.Clone(f.observers) {
		observer(change)
	}
}

// Render walks the schema from an empty binding context. Rendering never
// mutates the model; a configuration error aborts the whole pass.
func (f *Form) Render() ([]view.Node, error) {
	w := &walker{
		root:     f.model,
		registry: f.registry,
		slots:    f.slots,
		observer: f.notify,
		logger:   f.logger,
		visible:  f.visibility,
		extras:   f.extras,
	}
	nodes, err := w.walk(f.nodes, binding.Root(), false)
	if err != nil {
		f.logger.Error("render failed", "err", err)
		return nil, err
	}
	return nodes, nil
}

// Bind returns the binding of the leaf at path, for example
// "items[0].title".
func (f *Form) Bind(path string) (*binding.Binding, error) {
	ctx, key, index, err := binding.ParseLocation(path)
	if err != nil {
		return nil, err
	}
	if index >= 0 {
		return nil, fmt.Errorf("form: bind %s: %w", path, binding.ErrInvalidPath)
	}
	node, ok := schema.Find(f.nodes, ctx.ParentFieldPath(), key)
	if !ok || node.Kind() != schema.KindLeaf {
		return nil, fmt.Errorf("form: bind %s: no visible field", path)
	}
	return binding.New(f.model, ctx, key, f.notify), nil
}

// List returns the controller of the list at listPath, for example
// "outer[1].inner".
func (f *Form) List(listPath string) (*ListController, error) {
	ctx, key, index, err := binding.ParseLocation(listPath)
	if err != nil {
		return nil, err
	}
	if index >= 0 {
		return nil, fmt.Errorf("%w: %s is a row path", ErrListNotFound, listPath)
	}
	node, ok := schema.Find(f.nodes, ctx.ParentFieldPath(), key)
	if !ok || node.Kind() != schema.KindList {
		return nil, fmt.Errorf("%w: %s", ErrListNotFound, listPath)
	}
	return NewListController(f.model, ctx, node, f.notify, f.logger), nil
}

// AddRow appends a row to the list at listPath and returns its index.
func (f *Form) AddRow(listPath string) (int, error) {
	ctrl, err := f.List(listPath)
	if err != nil {
		return -1, err
	}
	return ctrl.Add()
}

// RemoveRow removes the row at rowPath, for example "items[2]".
func (f *Form) RemoveRow(rowPath string) error {
	ctx, key, index, err := binding.ParseLocation(rowPath)
	if err != nil {
		return err
	}
	if index < 0 {
		return fmt.Errorf("%w: %s is not a row path", binding.ErrInvalidPath, rowPath)
	}
	ctrl, err := f.List(ctx.Path(key))
	if err != nil {
		return err
	}
	return ctrl.Remove(index)
}

// Dispatch applies an action by id ("add:items", "remove:items[0]", "submit",
// "reset"). Targets are resolved against the current model, never against
// the tree an earlier render produced.
func (f *Form) Dispatch(ctx context.Context, id string) error {
	kind, target, ok := view.ParseActionID(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, id)
	}
	f.logger.Debug("dispatch", "action", kind, "target", target)

	switch kind {
	case view.ActionAdd:
		_, err := f.AddRow(target)
		return err
	case view.ActionRemove:
		return f.RemoveRow(target)
	case view.ActionReset:
		return f.Reset()
	case view.ActionSubmit:
		return f.Submit(ctx)
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, id)
}

// FieldValue forwards to the handle.
func (f *Form) FieldValue(path string) (any, bool) {
	return f.handle.FieldValue(path)
}

// SetFieldValue forwards to the handle and reports the change.
func (f *Form) SetFieldValue(path string, value any) error {
	if err := f.handle.SetFieldValue(path, value); err != nil {
		return err
	}
	f.notify(binding.Change{Kind: binding.ChangeValue, Path: path, Index: -1, Value: value})
	return nil
}

// Validate forwards to the handle.
func (f *Form) Validate(ctx context.Context) error {
	return f.handle.Validate(ctx)
}

// Reset forwards to the handle and reports the change.
func (f *Form) Reset() error {
	if err := f.handle.Reset(); err != nil {
		return err
	}
	f.logger.Debug("form reset")
	f.notify(binding.Change{Kind: binding.ChangeReset, Index: -1})
	return nil
}

// Submit forwards to the handle.
func (f *Form) Submit(ctx context.Context) error {
	if err := f.handle.Submit(ctx); err != nil {
		f.logger.Warn("submit rejected", "err", err)
		return err
	}
	f.logger.Info("form submitted")
	return nil
}

type ruleCompiler interface {
	Compile(rule string) error
}

// compileRules reports malformed visibleWhen rules as configuration errors
// when the evaluator can check syntax up front.
func compileRules(evaluator visibility.Evaluator, nodes []schema.Node, prefix string) error {
	compiler, ok := evaluator.(ruleCompiler)
	if !ok {
		return nil
	}
	for position, node := range nodes {
		path := schema.NodePath(prefix, node, position)
		if node.VisibleWhen != "" {
			if err := compiler.Compile(node.VisibleWhen); err != nil {
				return schema.NewConfigError(path, node, err.Error())
			}
		}
		childPrefix := prefix
		if node.Kind() == schema.KindList {
			childPrefix = path + "[]"
		}
		if err := compileRules(evaluator, node.Children, childPrefix); err != nil {
			return err
		}
	}
	return nil
}
