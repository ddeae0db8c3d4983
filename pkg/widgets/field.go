package widgets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Field is the payload a widget renders: one bound value plus its
// presentation.
type Field struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Label     string    `json:"label,omitempty"`
	Control   string    `json:"control"`
	InputType string    `json:"type,omitempty"`
	Value     any       `json:"value,omitempty"`
	Display   string    `json:"display"`
	Checked   bool      `json:"checked,omitempty"`
	Multiple  bool      `json:"multiple,omitempty"`
	Range     [2]string `json:"range"`
	Props     Props     `json:"props"`
	Options   []Option  `json:"options,omitempty"`
	// Attributes are extra HTML attributes derived from Props, already
	// formatted as strings.
	Attributes map[string]string `json:"attributes,omitempty"`
	ItemProps  map[string]any    `json:"itemProps,omitempty"`
}

// NewField builds a Field for the value bound at name, deriving display text,
// checked state and option selection from value.
func NewField(name, label, control string, value any, props Props) Field {
	field := Field{
		ID:         ControlID(name),
		Name:       name,
		Label:      label,
		Control:    control,
		Value:      value,
		Display:    DisplayValue(value),
		Checked:    truthy(value),
		Multiple:   props.Multiple,
		Props:      props,
		Attributes: attributes(props),
	}
	if items, ok := value.([]any); ok && len(items) == 2 {
		field.Range = [2]string{DisplayValue(items[0]), DisplayValue(items[1])}
	}
	if len(props.Options) > 0 {
		field.Options = make([]Option, len(props.Options))
		for idx, opt := range props.Options {
			opt.Key = DisplayValue(opt.Value)
			opt.Selected = selected(value, opt.Value)
			field.Options[idx] = opt
		}
	}
	return field
}

// ControlID derives a DOM id from a bound path.
func ControlID(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	replacer := strings.NewReplacer("[", "-", "]", "", ".", "-")
	return "sf-" + replacer.Replace(trimmed)
}

// DisplayValue formats a bound value for a text input. Maps and slices are
// encoded as JSON.
func DisplayValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}

func attributes(props Props) map[string]string {
	out := make(map[string]string, len(props.Attrs)+8)
	for key, value := range props.Attrs {
		if key = strings.TrimSpace(key); key != "" {
			out[key] = value
		}
	}
	if props.Placeholder != "" {
		out["placeholder"] = props.Placeholder
	}
	if props.Class != "" {
		out["class"] = props.Class
	}
	if props.Min != nil {
		out["min"] = formatNumber(*props.Min)
	}
	if props.Max != nil {
		out["max"] = formatNumber(*props.Max)
	}
	if props.Step != nil {
		out["step"] = formatNumber(*props.Step)
	}
	if props.Rows > 0 {
		out["rows"] = strconv.Itoa(props.Rows)
	}
	if props.Disabled {
		out["disabled"] = "disabled"
	}
	if props.ReadOnly {
		out["readonly"] = "readonly"
	}
	if props.Required {
		out["required"] = "required"
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "on", "1", "yes":
			return true
		}
	}
	return false
}

func selected(value, candidate any) bool {
	want := fmt.Sprint(candidate)
	switch v := value.(type) {
	case nil:
		return false
	case []any:
		for _, item := range v {
			if fmt.Sprint(item) == want {
				return true
			}
		}
		return false
	case []string:
		for _, item := range v {
			if item == want {
				return true
			}
		}
		return false
	default:
		return fmt.Sprint(v) == want
	}
}
