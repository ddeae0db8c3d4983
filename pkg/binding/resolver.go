package binding

import (
	"errors"
	"fmt"
)

var (
	// ErrNilModel is returned when a resolution is attempted against a nil root.
	ErrNilModel = errors.New("binding: model is nil")
	// ErrRowNotFound signals a context frame pointing at a row that is not in
	// the current row array, typically because it was removed without a render
	// in between.
	ErrRowNotFound = errors.New("binding: row not found")
	// ErrNotContainer signals a value on the path that is neither a row object
	// nor a row array.
	ErrNotContainer = errors.New("binding: value is not a container")
)

// Location is the resolved storage slot of a node: the object holding the
// value and the key inside it.
type Location struct {
	Container map[string]any
	Key       string
}

// Get reads the value stored at the location.
func (l Location) Get() (any, bool) {
	if l.Container == nil {
		return nil, false
	}
	value, ok := l.Container[l.Key]
	return value, ok
}

// Set writes value at the location.
func (l Location) Set(value any) {
	if l.Container == nil {
		return
	}
	l.Container[l.Key] = value
}

// Lookup resolves key under ctx without mutating the model. The boolean is
// false when a container on the path has not been created yet.
func Lookup(root map[string]any, ctx Context, key string) (Location, bool, error) {
	if root == nil {
		return Location{}, false, ErrNilModel
	}
	current := root
	for depth, frame := range ctx.frames {
		raw, ok := current[frame.Field]
		if !ok || raw == nil {
			return Location{}, false, nil
		}
		rows, ok := asRows(raw)
		if !ok {
			return Location{}, false, fmt.Errorf("%w: %s", ErrNotContainer, prefixPath(ctx, depth, frame.Field))
		}
		if frame.Index < 0 || frame.Index >= len(rows) {
			return Location{}, false, fmt.Errorf("%w: %s", ErrRowNotFound, prefixPath(ctx, depth+1, ""))
		}
		row := rows[frame.Index]
		if row == nil {
			return Location{}, false, nil
		}
		obj, ok := row.(map[string]any)
		if !ok {
			return Location{}, false, fmt.Errorf("%w: %s", ErrNotContainer, prefixPath(ctx, depth+1, ""))
		}
		current = obj
	}
	return Location{Container: current, Key: key}, true, nil
}

// Ensure resolves key under ctx, creating any missing row object on the path.
// Row arrays themselves are never invented here: a frame whose list does not
// exist, or whose index is past the end, is a caller error.
func Ensure(root map[string]any, ctx Context, key string) (Location, error) {
	if root == nil {
		return Location{}, ErrNilModel
	}
	current := root
	for depth, frame := range ctx.frames {
		raw, ok := current[frame.Field]
		if !ok || raw == nil {
			return Location{}, fmt.Errorf("%w: %s", ErrRowNotFound, prefixPath(ctx, depth+1, ""))
		}
		next, err := ensureRow(raw, frame.Index)
		if err != nil {
			return Location{}, fmt.Errorf("%w: %s", err, prefixPath(ctx, depth+1, ""))
		}
		current = next
	}
	return Location{Container: current, Key: key}, nil
}

// Rows returns a snapshot of the row array stored at key under ctx. The
// returned slice is a copy; the row objects inside it are shared with the
// model.
func Rows(root map[string]any, ctx Context, key string) ([]any, error) {
	loc, ok, err := Lookup(root, ctx, key)
	if err != nil || !ok {
		return nil, err
	}
	raw, ok := loc.Get()
	if !ok || raw == nil {
		return nil, nil
	}
	rows, ok := asRows(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotContainer, ctx.Path(key))
	}
	return append([]any(nil), rows...), nil
}

// EnsureRows returns the row array stored at key under ctx, creating an empty
// array and writing it back into its parent when absent. Typed row slices
// ([]map[string]any) are normalised to []any and written back so that later
// appends stay visible from the root.
func EnsureRows(root map[string]any, ctx Context, key string) (Location, []any, error) {
	loc, err := Ensure(root, ctx, key)
	if err != nil {
		return Location{}, nil, err
	}
	raw, ok := loc.Get()
	if !ok || raw == nil {
		rows := []any{}
		loc.Set(rows)
		return loc, rows, nil
	}
	switch typed := raw.(type) {
	case []any:
		return loc, typed, nil
	case []map[string]any:
		rows := make([]any, len(typed))
		for i, row := range typed {
			rows[i] = row
		}
		loc.Set(rows)
		return loc, rows, nil
	default:
		return Location{}, nil, fmt.Errorf("%w: %s", ErrNotContainer, ctx.Path(key))
	}
}

func ensureRow(raw any, index int) (map[string]any, error) {
	switch rows := raw.(type) {
	case []any:
		if index < 0 || index >= len(rows) {
			return nil, ErrRowNotFound
		}
		switch row := rows[index].(type) {
		case map[string]any:
			if row == nil {
				row = make(map[string]any)
				rows[index] = row
			}
			return row, nil
		case nil:
			created := make(map[string]any)
			rows[index] = created
			return created, nil
		default:
			return nil, ErrNotContainer
		}
	case []map[string]any:
		if index < 0 || index >= len(rows) {
			return nil, ErrRowNotFound
		}
		if rows[index] == nil {
			rows[index] = make(map[string]any)
		}
		return rows[index], nil
	default:
		return nil, ErrNotContainer
	}
}

func asRows(raw any) ([]any, bool) {
	switch rows := raw.(type) {
	case []any:
		return rows, true
	case []map[string]any:
		out := make([]any, len(rows))
		for i, row := range rows {
			if row == nil {
				continue
			}
			out[i] = row
		}
		return out, true
	default:
		return nil, false
	}
}

func prefixPath(ctx Context, depth int, key string) string {
	return NewContext(ctx.frames[:depth]...).Path(key)
}
