package form

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-schemaform/pkg/binding"
	"github.com/goliatone/go-schemaform/pkg/schema"
	"github.com/goliatone/go-schemaform/pkg/view"
	"github.com/goliatone/go-schemaform/pkg/visibility"
	"github.com/goliatone/go-schemaform/pkg/widgets"
)

// walker turns schema nodes into view nodes. It only reads the model; every
// mutation happens later, through the bindings and actions it hands out.
type walker struct {
	root     map[string]any
	registry *widgets.Registry
	slots    Slots
	observer binding.Observer
	logger   *log.Logger
	visible  visibility.Evaluator
	extras   map[string]any
}

// walk renders nodes under ctx. When columns is set (the nodes are the
// immediate children of a group) each rendered node is wrapped in a column.
func (w *walker) walk(nodes []schema.Node, ctx binding.Context, columns bool) ([]view.Node, error) {
	out := make([]view.Node, 0, len(nodes))
	for position, node := range nodes {
		show, err := w.shown(node, ctx)
		if err != nil {
			return nil, err
		}
		if !show {
			continue
		}
		rendered, err := w.node(node, ctx, position)
		if err != nil {
			return nil, err
		}
		if columns {
			rendered = view.Node{
				Kind:     view.KindColumn,
				Key:      "col-" + rendered.Key,
				Props:    node.ColProps,
				Children: []view.Node{rendered},
			}
		}
		out = append(out, rendered)
	}
	return out, nil
}

// shown applies Hidden and the node's visibleWhen rule. Rules see the row
// the node sits in as their scope.
func (w *walker) shown(node schema.Node, ctx binding.Context) (bool, error) {
	if node.Hidden {
		return false, nil
	}
	if node.VisibleWhen == "" || w.visible == nil {
		return true, nil
	}
	vctx := visibility.Context{
		Path:   ctx.Path(node.DataIndex),
		Root:   w.root,
		Extras: w.extras,
	}
	if !ctx.IsRoot() {
		if loc, ok, err := binding.Lookup(w.root, ctx, ""); err == nil && ok {
			vctx.Scope = loc.Container
		}
	}
	show, err := w.visible.Eval(node.VisibleWhen, vctx)
	if err != nil {
		return false, fmt.Errorf("form: visibility of %s: %w", vctx.Path, err)
	}
	return show, nil
}

func (w *walker) node(node schema.Node, ctx binding.Context, position int) (view.Node, error) {
	if node.Render != nil {
		rendered, err := node.Render()
		if err != nil {
			return view.Node{}, fmt.Errorf("form: custom render %s: %w", schema.NodePath(ctx.Path(""), node, position), err)
		}
		if rendered.Kind == "" {
			rendered.Kind = view.KindCustom
		}
		if rendered.Key == "" {
			rendered.Key = schema.NodePath(ctx.Path(""), node, position)
		}
		return rendered, nil
	}

	switch node.Kind() {
	case schema.KindGroup:
		return w.group(node, ctx, position)
	case schema.KindList:
		return w.list(node, ctx)
	default:
		return w.leaf(node, ctx)
	}
}

func (w *walker) leaf(node schema.Node, ctx binding.Context) (view.Node, error) {
	path := ctx.Path(node.DataIndex)
	bound := binding.New(w.root, ctx, node.DataIndex, w.observer)
	value := bound.Value()

	if slot, ok := w.slots.Lookup(node.Slot); ok {
		rendered, err := slot(SlotProps{
			Name:    node.Slot,
			Node:    node,
			Path:    path,
			Value:   value,
			Binding: bound,
			Index:   -1,
		})
		if err != nil {
			return view.Node{}, fmt.Errorf("form: slot %q at %s: %w", node.Slot, path, err)
		}
		rendered = slotNode(rendered, node.Slot, path)
		if rendered.Binding == nil {
			rendered.Binding = bound
		}
		return rendered, nil
	}

	widget, ok := w.registry.Lookup(node.ControlType)
	if !ok {
		return view.Node{}, schema.NewConfigError(path, node, "unregistered control type")
	}
	props, err := widgets.DecodeProps(node.ControlProps)
	if err != nil {
		return view.Node{}, schema.NewConfigError(path, node, err.Error())
	}

	field := widgets.NewField(path, node.Label, node.ControlType, value, props)
	field.ItemProps = node.FormItemProps
	return view.Node{
		Kind:      view.KindField,
		Key:       path,
		Name:      path,
		Label:     node.Label,
		Control:   widget.Name,
		Value:     value,
		Props:     node.ControlProps,
		ItemProps: node.FormItemProps,
		Field:     &field,
		Widget:    &widget,
		Binding:   bound,
	}, nil
}

func (w *walker) group(node schema.Node, ctx binding.Context, position int) (view.Node, error) {
	children, err := w.walk(node.Children, ctx, true)
	if err != nil {
		return view.Node{}, err
	}
	return view.Node{
		Kind:     view.KindGroup,
		Key:      schema.NodePath(ctx.Path(""), node, position),
		Label:    node.Label,
		Props:    node.RowProps,
		Children: children,
	}, nil
}

func (w *walker) list(node schema.Node, ctx binding.Context) (view.Node, error) {
	ctrl := NewListController(w.root, ctx, node, w.observer, w.logger)
	rows, err := ctrl.Rows()
	if err != nil {
		return view.Node{}, err
	}
	cfg := node.ListConfig()

	children := make([]view.Node, 0, len(rows)+1)
	for index, row := range rows {
		rowCtx := ctrl.RowContext(index)
		cells, err := w.walk(node.Children, rowCtx, false)
		if err != nil {
			return view.Node{}, err
		}
		remove, err := w.removeAffordance(ctrl, row, index)
		if err != nil {
			return view.Node{}, err
		}
		children = append(children, view.Node{
			Kind:     view.KindRow,
			Key:      RowKey(row, index),
			Name:     rowCtx.Path(""),
			Props:    cfg.RowProps,
			Children: append(cells, remove),
		})
	}

	add, err := w.addAffordance(ctrl)
	if err != nil {
		return view.Node{}, err
	}
	children = append(children, add)

	path := ctrl.Path()
	return view.Node{
		Kind:      view.KindList,
		Key:       path,
		Name:      path,
		Label:     node.Label,
		Props:     node.ControlProps,
		ItemProps: node.FormItemProps,
		Children:  children,
	}, nil
}

func (w *walker) removeAffordance(ctrl *ListController, row any, index int) (view.Node, error) {
	cfg := ctrl.Node().ListConfig()
	rowPath := ctrl.RowPath(index)
	id := view.RemoveActionID(rowPath)

	if slot, ok := w.slots.Lookup(cfg.RemoveButton.Slot); ok {
		rowData, _ := row.(map[string]any)
		rendered, err := slot(SlotProps{
			Name:   cfg.RemoveButton.Slot,
			Node:   ctrl.Node(),
			Path:   rowPath,
			Row:    rowData,
			Index:  index,
			Remove: func() error { return ctrl.RemoveDefault(index) },
		})
		if err != nil {
			return view.Node{}, fmt.Errorf("form: slot %q at %s: %w", cfg.RemoveButton.Slot, rowPath, err)
		}
		return slotNode(rendered, cfg.RemoveButton.Slot, id), nil
	}

	return view.Node{
		Kind:  view.KindAction,
		Key:   id,
		Name:  rowPath,
		Text:  cfg.RemoveText(),
		Props: cfg.RemoveButton.Props,
		Action: &view.Action{
			Type:   view.ActionRemove,
			ID:     id,
			Target: rowPath,
			Index:  index,
			Do:     func() error { return ctrl.Remove(index) },
		},
	}, nil
}

func (w *walker) addAffordance(ctrl *ListController) (view.Node, error) {
	cfg := ctrl.Node().ListConfig()
	listPath := ctrl.Path()
	id := view.AddActionID(listPath)

	if slot, ok := w.slots.Lookup(cfg.AddButton.Slot); ok {
		rendered, err := slot(SlotProps{
			Name:  cfg.AddButton.Slot,
			Node:  ctrl.Node(),
			Path:  listPath,
			Index: -1,
			Add:   ctrl.Add,
		})
		if err != nil {
			return view.Node{}, fmt.Errorf("form: slot %q at %s: %w", cfg.AddButton.Slot, listPath, err)
		}
		return slotNode(rendered, cfg.AddButton.Slot, id), nil
	}

	return view.Node{
		Kind:  view.KindAction,
		Key:   id,
		Name:  listPath,
		Text:  cfg.AddText(),
		Props: cfg.AddButton.Props,
		Action: &view.Action{
			Type:   view.ActionAdd,
			ID:     id,
			Target: listPath,
			Index:  -1,
			Do: func() error {
				_, err := ctrl.Add()
				return err
			},
		},
	}, nil
}
