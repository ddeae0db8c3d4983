package gotemplate

import (
	"fmt"
	"reflect"

	"github.com/flosch/pongo2/v6"
	"github.com/goccy/go-json"
)

// toContext turns render data into a pongo2 context. Structs are flattened
// through their JSON encoding so templates address fields by JSON key, which
// is how widget fields expose name, id and display.
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	plain, err := toPlain(data)
	if err != nil {
		return nil, err
	}
	values, ok := plain.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("template data must be an object, got %T", data)
	}
	return pongo2.Context(values), nil
}

func toPlain(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, float64, int, int64:
		return v, nil
	case pongo2.Context:
		return plainMap(v)
	case map[string]any:
		return plainMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			converted, err := toPlain(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	}
	if reflect.ValueOf(value).Kind() == reflect.Func {
		return value, nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

func plainMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, value := range in {
		if key == "" {
			continue
		}
		converted, err := toPlain(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}
