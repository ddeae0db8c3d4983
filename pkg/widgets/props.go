package widgets

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Option is one selectable value of a choice widget.
type Option struct {
	Label    string `json:"label" mapstructure:"label"`
	Value    any    `json:"value" mapstructure:"value"`
	Disabled bool   `json:"disabled,omitempty" mapstructure:"disabled"`
	Key      string `json:"key,omitempty" mapstructure:"-"`
	Selected bool   `json:"selected,omitempty" mapstructure:"-"`
}

// Props is the typed view of a node's opaque control props. Unknown keys are
// kept in Extra.
type Props struct {
	Placeholder string            `json:"placeholder,omitempty" mapstructure:"placeholder"`
	Options     []Option          `json:"options,omitempty" mapstructure:"options"`
	Min         *float64          `json:"min,omitempty" mapstructure:"min"`
	Max         *float64          `json:"max,omitempty" mapstructure:"max"`
	Step        *float64          `json:"step,omitempty" mapstructure:"step"`
	Rows        int               `json:"rows,omitempty" mapstructure:"rows"`
	Multiple    bool              `json:"multiple,omitempty" mapstructure:"multiple"`
	Disabled    bool              `json:"disabled,omitempty" mapstructure:"disabled"`
	ReadOnly    bool              `json:"readOnly,omitempty" mapstructure:"readOnly"`
	Required    bool              `json:"required,omitempty" mapstructure:"required"`
	Class       string            `json:"class,omitempty" mapstructure:"class"`
	Attrs       map[string]string `json:"attrs,omitempty" mapstructure:"attrs"`
	Extra       map[string]any    `json:"extra,omitempty" mapstructure:",remain"`
}

// DecodeProps converts raw control props into Props. Input is weakly typed:
// "3" decodes into a number and a bare string option becomes an option whose
// label and value are that string.
func DecodeProps(raw map[string]any) (Props, error) {
	var props Props
	if len(raw) == 0 {
		return props, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       optionHook,
		WeaklyTypedInput: true,
		Result:           &props,
	})
	if err != nil {
		return Props{}, fmt.Errorf("widgets: build props decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return Props{}, fmt.Errorf("widgets: decode props: %w", err)
	}
	props.Class = strings.TrimSpace(props.Class)
	return props, nil
}

var optionType = reflect.TypeOf(Option{})

func optionHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != optionType {
		return data, nil
	}
	switch from.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Option{Label: fmt.Sprint(data), Value: data}, nil
	}
	return data, nil
}
