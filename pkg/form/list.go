package form

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-schemaform/pkg/binding"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

// ListController owns add and remove for one list instance: one list node at
// one position in the model. It resolves its array on every call and never
// caches it.
type ListController struct {
	root     map[string]any
	ctx      binding.Context
	node     schema.Node
	observer binding.Observer
	logger   *log.Logger
}

// NewListController builds a controller for the list node under ctx.
func NewListController(root map[string]any, ctx binding.Context, node schema.Node, observer binding.Observer, logger *log.Logger) *ListController {
	return &ListController{
		root:     root,
		ctx:      ctx,
		node:     node,
		observer: observer,
		logger:   logger,
	}
}

// Node returns the list's schema node.
func (c *ListController) Node() schema.Node {
	return c.node
}

// Path returns the path of the list array, for example "outer[1].inner".
func (c *ListController) Path() string {
	return c.ctx.Path(c.node.DataIndex)
}

// RowPath returns the path of row index.
func (c *ListController) RowPath(index int) string {
	return c.ctx.RowPath(c.node.DataIndex, index)
}

// RowContext returns the binding context children of row index resolve in.
func (c *ListController) RowContext(index int) binding.Context {
	return c.ctx.Descend(c.node.DataIndex, index)
}

// Rows returns a snapshot of the current rows. A list whose array has not
// been created yet has no rows; reading never creates it.
func (c *ListController) Rows() ([]any, error) {
	rows, err := binding.Rows(c.root, c.ctx, c.node.DataIndex)
	if err != nil {
		return nil, fmt.Errorf("form: rows of %s: %w", c.Path(), err)
	}
	return rows, nil
}

// Len returns the current row count.
func (c *ListController) Len() int {
	rows, err := c.Rows()
	if err != nil {
		return 0
	}
	return len(rows)
}

// Add appends an empty row and returns its index. A missing array is created
// and written back into its parent row first, so the new row is reachable
// from the root. Existing rows keep their positions.
func (c *ListController) Add() (int, error) {
	loc, rows, err := binding.EnsureRows(c.root, c.ctx, c.node.DataIndex)
	if err != nil {
		return -1, fmt.Errorf("form: add row to %s: %w", c.Path(), err)
	}
	rows = append(rows, make(map[string]any))
	loc.Set(rows)

	index := len(rows) - 1
	c.logger.Debug("row added", "list", c.Path(), "index", index)
	c.notify(binding.Change{Kind: binding.ChangeAdd, Path: c.Path(), Index: index})
	return index, nil
}

// Remove removes row index. When the list configures OnRemove, the hook
// receives the row and index and replaces the default removal.
func (c *ListController) Remove(index int) error {
	cfg := c.node.ListConfig()
	if cfg.OnRemove == nil {
		return c.RemoveDefault(index)
	}

	rows, err := c.Rows()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(rows) {
		return fmt.Errorf("form: remove %s: %w", c.RowPath(index), binding.ErrRowNotFound)
	}
	row, _ := rows[index].(map[string]any)
	if err := cfg.OnRemove(row, index); err != nil {
		return fmt.Errorf("form: remove %s: %w", c.RowPath(index), err)
	}
	c.logger.Debug("row remove delegated", "list", c.Path(), "index", index)
	return nil
}

// RemoveDefault splices row index out of the array. Rows after index shift
// down by one; bindings for them are re-derived by the next render.
func (c *ListController) RemoveDefault(index int) error {
	rows, err := c.Rows()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(rows) {
		return fmt.Errorf("form: remove %s: %w", c.RowPath(index), binding.ErrRowNotFound)
	}

	loc, current, err := binding.EnsureRows(c.root, c.ctx, c.node.DataIndex)
	if err != nil {
		return fmt.Errorf("form: remove %s: %w", c.RowPath(index), err)
	}
	removed := current[index]
	loc.Set(slices.Delete(current, index, index+1))

	c.logger.Debug("row removed", "list", c.Path(), "index", index)
	c.notify(binding.Change{Kind: binding.ChangeRemove, Path: c.Path(), Index: index, Value: removed})
	return nil
}

func (c *ListController) notify(change binding.Change) {
	if c.observer != nil {
		c.observer(change)
	}
}

// RowKey returns the display identity of a row. Row objects are keyed by
// their own identity so a row keeps its key when rows above it are removed;
// only rows that are not objects fall back to their index.
func RowKey(row any, index int) string {
	if m, ok := row.(map[string]any); ok && m != nil {
		return "row-" + strconv.FormatUint(uint64(reflect.ValueOf(m).Pointer()), 16)
	}
	return "idx-" + strconv.Itoa(index)
}
