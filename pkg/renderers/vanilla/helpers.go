package vanilla

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	slotPolicyOnce sync.Once
	slotPolicy     *bluemonday.Policy
)

// sanitizeMarkup cleans slot and custom-render HTML before it is embedded in
// the form.
func sanitizeMarkup(policy *bluemonday.Policy, raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if policy == nil {
		policy = slotSanitizer()
	}
	return strings.TrimSpace(policy.Sanitize(trimmed))
}

// slotSanitizer extends the UGC policy with the form controls slots commonly
// render in place of a widget or list button.
func slotSanitizer() *bluemonday.Policy {
	slotPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowElements(
			"button", "input", "label", "select", "option", "optgroup",
			"textarea", "fieldset", "legend", "output", "progress", "meter",
		)
		policy.AllowAttrs(
			"type", "name", "value", "placeholder", "checked", "selected",
			"disabled", "readonly", "required", "multiple", "min", "max",
			"step", "rows", "cols", "for", "formnovalidate",
		).OnElements("button", "input", "label", "select", "option", "textarea", "output", "progress", "meter")
		policy.AllowAttrs("id", "class", "role", "aria-label", "aria-hidden", "aria-describedby").Globally()
		policy.AllowDataAttributes()
		slotPolicy = policy
	})
	return slotPolicy
}

func sanitizeClassList(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	tokens := strings.Fields(value)
	keep := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if strings.HasPrefix(token, "sf-") {
			continue
		}
		keep = append(keep, token)
	}
	return strings.Join(keep, " ")
}

// propClass extracts the class list carried by layout props ("class" or
// "className").
func propClass(props map[string]any) string {
	var parts []string
	for _, key := range []string{"class", "className"} {
		if value, ok := props[key].(string); ok && strings.TrimSpace(value) != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, " ")
}

// propAttributes turns scalar layout props into HTML attributes. "style" and
// "id" pass through; everything else becomes a data attribute so unknown
// layout hints (span, gutter, align) stay inspectable without producing
// invalid markup. Class props are handled by propClass.
func propAttributes(props map[string]any) map[string]string {
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]string, len(props))
	for key, raw := range props {
		name := attributeName(key)
		if name == "" || name == "class" || name == "classname" {
			continue
		}
		value, ok := scalarString(raw)
		if !ok {
			continue
		}
		switch name {
		case "style", "id", "title":
			out[name] = value
		default:
			out["data-"+name] = value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func attributeName(key string) string {
	var b strings.Builder
	for idx, r := range strings.TrimSpace(key) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			if idx > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r + ('a' - 'A'))
		case r == '_':
			b.WriteByte('-')
		default:
			return ""
		}
	}
	return strings.Trim(b.String(), "-")
}

func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

func cloneStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
