package gotemplate

import (
	"html"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

var builtinFilters sync.Once

func registerBuiltinFilters() {
	builtinFilters.Do(func() {
		if !pongo2.FilterExists("attrs") {
			_ = pongo2.RegisterFilter("attrs", filterAttrs)
		}
	})
}

// filterAttrs renders a string map as escaped HTML attributes in key order,
// each preceded by a space. Keys named by the parameter (comma separated) are
// skipped.
func filterAttrs(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	attrs, ok := in.Interface().(map[string]any)
	if !ok || len(attrs) == 0 {
		return pongo2.AsSafeValue(""), nil
	}

	skip := map[string]bool{}
	if param != nil && param.IsString() {
		for _, key := range strings.Split(param.String(), ",") {
			skip[strings.TrimSpace(key)] = true
		}
	}

	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		if !skip[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteByte(' ')
		b.WriteString(html.EscapeString(key))
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(pongo2.AsValue(attrs[key]).String()))
		b.WriteByte('"')
	}
	return pongo2.AsSafeValue(b.String()), nil
}
