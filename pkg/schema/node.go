// Package schema describes form layouts as trees of nodes. A node is either a
// leaf bound to a single value, a group that lays its children out in
// columns, or a list of repeatable rows.
package schema

import (
	"strings"

	"github.com/goliatone/go-schemaform/pkg/view"
	"github.com/goliatone/go-schemaform/pkg/widgets"
)

// Control types understood by the default widget registry. Lookups are
// insensitive to case and separators, so "InputNumber", "input-number" and
// "input_number" all resolve to the same control.
const (
	ControlGroup           = "group"
	ControlList            = "list"
	ControlFormList        = "formList"
	ControlText            = "text"
	ControlJSON            = "json"
	ControlInput           = "input"
	ControlInputNumber     = "input-number"
	ControlInputPassword   = "input-password"
	ControlInputSearch     = "input-search"
	ControlTextArea        = "textarea"
	ControlAutoComplete    = "auto-complete"
	ControlRadio           = "radio"
	ControlRadioGroup      = "radio-group"
	ControlCheckbox        = "checkbox"
	ControlCheckboxGroup   = "checkbox-group"
	ControlSelect          = "select"
	ControlCascader        = "cascader"
	ControlDatePicker      = "date-picker"
	ControlRangePicker     = "range-picker"
	ControlMentions        = "mentions"
	ControlRate            = "rate"
	ControlSlider          = "slider"
	ControlSwitch          = "switch"
	ControlTimePicker      = "time-picker"
	ControlTimeRangePicker = "time-range-picker"
	ControlTransfer        = "transfer"
	ControlTreeSelect      = "tree-select"
	ControlUpload          = "upload"
)

// Kind is the structural variant of a node.
type Kind int

const (
	KindLeaf Kind = iota
	KindGroup
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindList:
		return "list"
	default:
		return "leaf"
	}
}

// RenderFunc replaces the default rendering of a node. The returned view node
// is emitted as is; no binding or label is applied.
type RenderFunc func() (view.Node, error)

// ButtonConfig customises a list's add or remove affordance.
type ButtonConfig struct {
	Text  string         `json:"text,omitempty" yaml:"text,omitempty"`
	Props map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
	Slot  string         `json:"slot,omitempty" yaml:"slot,omitempty"`
}

// ListConfig holds list-only configuration.
type ListConfig struct {
	AddButton    ButtonConfig   `json:"addButton,omitempty" yaml:"addButton,omitempty"`
	RemoveButton ButtonConfig   `json:"removeButton,omitempty" yaml:"removeButton,omitempty"`
	RowProps     map[string]any `json:"rowProps,omitempty" yaml:"rowProps,omitempty"`

	// OnRemove replaces the default row removal. It receives the row object
	// and its index in the current array.
	OnRemove func(row map[string]any, index int) error `json:"-" yaml:"-"`
}

const (
	DefaultAddText    = "Add"
	DefaultRemoveText = "Remove"
)

// AddText returns the add button label, falling back to DefaultAddText.
func (c *ListConfig) AddText() string {
	if c == nil || strings.TrimSpace(c.AddButton.Text) == "" {
		return DefaultAddText
	}
	return c.AddButton.Text
}

// RemoveText returns the remove button label, falling back to
// DefaultRemoveText.
func (c *ListConfig) RemoveText() string {
	if c == nil || strings.TrimSpace(c.RemoveButton.Text) == "" {
		return DefaultRemoveText
	}
	return c.RemoveButton.Text
}

// Node is a single schema entry.
type Node struct {
	ControlType string `json:"controlType" yaml:"controlType"`
	DataIndex   string `json:"dataIndex,omitempty" yaml:"dataIndex,omitempty"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	Hidden      bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	// VisibleWhen is a boolean expression evaluated against the model for
	// every render. A false result behaves like Hidden.
	VisibleWhen   string         `json:"visibleWhen,omitempty" yaml:"visibleWhen,omitempty"`
	Slot          string         `json:"slot,omitempty" yaml:"slot,omitempty"`
	ControlProps  map[string]any `json:"controlProps,omitempty" yaml:"controlProps,omitempty"`
	FormItemProps map[string]any `json:"formItemProps,omitempty" yaml:"formItemProps,omitempty"`
	RowProps      map[string]any `json:"rowProps,omitempty" yaml:"rowProps,omitempty"`
	ColProps      map[string]any `json:"colProps,omitempty" yaml:"colProps,omitempty"`
	Children      []Node         `json:"children,omitempty" yaml:"children,omitempty"`
	List          *ListConfig    `json:"list,omitempty" yaml:"list,omitempty"`
	Render        RenderFunc     `json:"-" yaml:"-"`
}

// Kind derives the node variant from its control type.
func (n Node) Kind() Kind {
	switch NormalizeControlType(n.ControlType) {
	case ControlGroup:
		return KindGroup
	case ControlList, "formlist":
		return KindList
	default:
		return KindLeaf
	}
}

// ListConfig returns the node's list configuration, never nil.
func (n Node) ListConfig() *ListConfig {
	if n.List == nil {
		return &ListConfig{}
	}
	return n.List
}

// NormalizeControlType folds case and drops separators so registry keys match
// regardless of how a schema spells a control type.
func NormalizeControlType(controlType string) string {
	return widgets.Normalize(controlType)
}
