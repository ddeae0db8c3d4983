package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

// Definition is the decoded schema a Transformer may rewrite before the form
// is bound.
type Definition struct {
	FormID   string
	Format   string
	Nodes    []schema.Node
	Defaults map[string]any

	// Validate checks submitted models. Adapters that implement
	// ValidatorProvider fill it; transformers may replace or clear it.
	Validate form.ValidateFunc
}

// Transformer rewrites a Definition. Implementations can relabel fields,
// change control types or inject visibility rules.
type Transformer interface {
	Transform(ctx context.Context, def *Definition) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, def *Definition) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, def *Definition) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, def)
}

// PresetTransformer applies declarative overrides loaded from a JSON or YAML
// document. Field keys are dotted paths through lists; groups are transparent
// and "[]" markers are ignored:
//
//	{
//	  "defaults": {"currency": "EUR"},
//	  "fields": {
//	    "items.title": {"label": "Line title", "visibleWhen": "qty > 0"}
//	  }
//	}
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Defaults map[string]any        `json:"defaults" yaml:"defaults"`
	Fields   map[string]fieldPatch `json:"fields" yaml:"fields"`
}

type fieldPatch struct {
	Label         string         `json:"label" yaml:"label"`
	Placeholder   string         `json:"placeholder" yaml:"placeholder"`
	ControlType   string         `json:"controlType" yaml:"controlType"`
	Slot          string         `json:"slot" yaml:"slot"`
	VisibleWhen   string         `json:"visibleWhen" yaml:"visibleWhen"`
	Hidden        *bool          `json:"hidden" yaml:"hidden"`
	ControlProps  map[string]any `json:"controlProps" yaml:"controlProps"`
	FormItemProps map[string]any `json:"formItemProps" yaml:"formItemProps"`
}

// NewPresetTransformer parses data as JSON when it starts with "{" and as
// YAML otherwise.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &document); err != nil {
			return nil, fmt.Errorf("preset transformer: parse json: %w", err)
		}
	} else if err := yaml.Unmarshal(trimmed, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse yaml: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from fsys.
func NewPresetTransformerFromFS(fsys fs.FS, name string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path.Clean(strings.TrimPrefix(name, "/")))
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", name, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the declared patches. A patch naming an unknown field is
// an error.
func (t *PresetTransformer) Transform(ctx context.Context, def *Definition) error {
	if def == nil {
		return errors.New("preset transformer: definition is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(t.document.Defaults) > 0 {
		if def.Defaults == nil {
			def.Defaults = make(map[string]any, len(t.document.Defaults))
		}
		for key, value := range t.document.Defaults {
			def.Defaults[key] = value
		}
	}

	keys := make([]string, 0, len(t.document.Fields))
	for key := range t.document.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		node := findNodeByPath(def.Nodes, key)
		if node == nil {
			return fmt.Errorf("preset transformer: field %q not found", key)
		}
		applyFieldPatch(node, t.document.Fields[key])
	}
	return nil
}

// ScriptRunner executes user-supplied code against a Definition. Embedders
// plug in an interpreter or an external process.
type ScriptRunner interface {
	Run(ctx context.Context, def *Definition) error
}

// ScriptTransformer bridges Transformer with a ScriptRunner.
type ScriptTransformer struct {
	runner ScriptRunner
}

// NewScriptTransformer wraps runner.
func NewScriptTransformer(runner ScriptRunner) *ScriptTransformer {
	return &ScriptTransformer{runner: runner}
}

// Transform delegates to the configured runner.
func (t *ScriptTransformer) Transform(ctx context.Context, def *Definition) error {
	if t == nil || t.runner == nil {
		return errors.New("script transformer: runner is nil")
	}
	if def == nil {
		return errors.New("script transformer: definition is nil")
	}
	return t.runner.Run(ctx, def)
}

func applyFieldPatch(node *schema.Node, patch fieldPatch) {
	if patch.Label != "" {
		node.Label = patch.Label
	}
	if patch.ControlType != "" {
		node.ControlType = patch.ControlType
	}
	if patch.Slot != "" {
		node.Slot = patch.Slot
	}
	if patch.VisibleWhen != "" {
		node.VisibleWhen = patch.VisibleWhen
	}
	if patch.Hidden != nil {
		node.Hidden = *patch.Hidden
	}
	if patch.Placeholder != "" {
		node.ControlProps = mergeAny(node.ControlProps, map[string]any{"placeholder": patch.Placeholder})
	}
	node.ControlProps = mergeAny(node.ControlProps, patch.ControlProps)
	node.FormItemProps = mergeAny(node.FormItemProps, patch.FormItemProps)
}

func findNodeByPath(nodes []schema.Node, key string) *schema.Node {
	clean := strings.NewReplacer("[]", "", "[", ".", "]", "").Replace(strings.TrimSpace(key))
	segments := strings.FieldsFunc(clean, func(r rune) bool { return r == '.' })
	if len(segments) == 0 {
		return nil
	}
	return walkNodesByPath(nodes, segments)
}

func walkNodesByPath(nodes []schema.Node, segments []string) *schema.Node {
	node := findBoundNode(nodes, segments[0])
	if node == nil || len(segments) == 1 {
		return node
	}
	if node.Kind() != schema.KindList {
		return nil
	}
	return walkNodesByPath(node.Children, segments[1:])
}

func findBoundNode(nodes []schema.Node, key string) *schema.Node {
	for idx := range nodes {
		node := &nodes[idx]
		if node.Kind() == schema.KindGroup {
			if found := findBoundNode(node.Children, key); found != nil {
				return found
			}
			continue
		}
		if node.DataIndex == key {
			return node
		}
	}
	return nil
}

func mergeAny(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	out := make(map[string]any, len(dst)+len(src))
	for key, value := range dst {
		out[key] = value
	}
	for key, value := range src {
		out[key] = value
	}
	return out
}
