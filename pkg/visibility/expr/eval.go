package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-schemaform/pkg/binding"
	"github.com/goliatone/go-schemaform/pkg/visibility"
)

type node interface {
	eval(ctx visibility.Context) (any, error)
}

type literal struct{ value any }

func (n literal) eval(visibility.Context) (any, error) { return n.value, nil }

type pathNode struct{ path string }

func (n pathNode) eval(ctx visibility.Context) (any, error) {
	value, _ := lookup(ctx, n.path)
	return value, nil
}

type notNode struct{ operand node }

func (n notNode) eval(ctx visibility.Context) (any, error) {
	value, err := n.operand.eval(ctx)
	if err != nil {
		return nil, err
	}
	return !truthy(value), nil
}

type andNode struct{ left, right node }

func (n andNode) eval(ctx visibility.Context) (any, error) {
	left, err := n.left.eval(ctx)
	if err != nil || !truthy(left) {
		return false, err
	}
	right, err := n.right.eval(ctx)
	if err != nil {
		return false, err
	}
	return truthy(right), nil
}

type orNode struct{ left, right node }

func (n orNode) eval(ctx visibility.Context) (any, error) {
	left, err := n.left.eval(ctx)
	if err != nil {
		return false, err
	}
	if truthy(left) {
		return true, nil
	}
	right, err := n.right.eval(ctx)
	if err != nil {
		return false, err
	}
	return truthy(right), nil
}

type compareNode struct {
	op          string
	left, right node
}

func (n compareNode) eval(ctx visibility.Context) (any, error) {
	left, err := n.left.eval(ctx)
	if err != nil {
		return nil, err
	}
	right, err := n.right.eval(ctx)
	if err != nil {
		return nil, err
	}
	switch n.op {
	case "==":
		return equal(left, right), nil
	case "!=":
		return !equal(left, right), nil
	}

	l, lok := number(left)
	r, rok := number(right)
	if !lok || !rok {
		if left == nil || right == nil {
			return false, nil
		}
		return nil, fmt.Errorf("operator %s needs numbers, got %T and %T", n.op, left, right)
	}
	switch n.op {
	case "<":
		return l < r, nil
	case "<=":
		return l <= r, nil
	case ">":
		return l > r, nil
	default:
		return l >= r, nil
	}
}

// equal compares loosely: booleans and numbers compare by value even when
// one side is a string, so form-submitted "true" and "3" behave.
func equal(left, right any) bool {
	if left == nil || right == nil {
		return left == nil && right == nil || isEmpty(left) && isEmpty(right)
	}
	if lb, ok := left.(bool); ok {
		rb, ok := boolean(right)
		return ok && lb == rb
	}
	if rb, ok := right.(bool); ok {
		lb, ok := boolean(left)
		return ok && lb == rb
	}
	if l, ok := number(left); ok {
		if r, ok := number(right); ok {
			return l == r
		}
	}
	return fmt.Sprint(left) == fmt.Sprint(right)
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

func lookup(ctx visibility.Context, path string) (any, bool) {
	switch {
	case strings.HasPrefix(path, "extras."):
		return walk(ctx.Extras, strings.TrimPrefix(path, "extras."))
	case strings.HasPrefix(path, "$root."):
		return walk(ctx.Root, strings.TrimPrefix(path, "$root."))
	}
	if ctx.Scope != nil {
		if value, ok := walk(ctx.Scope, path); ok {
			return value, true
		}
	}
	return walk(ctx.Root, path)
}

func walk(values map[string]any, path string) (any, bool) {
	if values == nil {
		return nil, false
	}
	segments, err := binding.ParsePath(path)
	if err != nil {
		return nil, false
	}
	var current any = values
	for _, segment := range segments {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[segment.Field]
		if !ok {
			return nil, false
		}
		if segment.Index >= 0 {
			rows, ok := current.([]any)
			if !ok || segment.Index >= len(rows) {
				return nil, false
			}
			current = rows[segment.Index]
		}
	}
	return current, true
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	}
	if n, ok := number(value); ok {
		return n != 0
	}
	return true
}

func boolean(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	}
	return false, false
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}
