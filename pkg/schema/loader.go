package schema

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// LoadFS reads and parses a schema document from fsys.
func LoadFS(fsys fs.FS, name string) ([]Node, error) {
	if fsys == nil {
		return nil, fmt.Errorf("schema: nil filesystem")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", name, err)
	}
	return parse(data, name)
}

// Parse decodes a JSON or YAML schema document. The document is either a bare
// list of nodes or an object with a "fields" list. The parsed tree is
// validated before it is returned.
func Parse(data []byte) ([]Node, error) {
	return parse(data, "<input>")
}

type documentFile struct {
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Fields      []nodeFile `json:"fields" yaml:"fields"`
}

type nodeFile struct {
	ControlType       string             `json:"controlType" yaml:"controlType"`
	DataIndex         string             `json:"dataIndex" yaml:"dataIndex"`
	Label             string             `json:"label" yaml:"label"`
	Hidden            bool               `json:"hidden" yaml:"hidden"`
	HideInForm        bool               `json:"hideInForm" yaml:"hideInForm"`
	VisibleWhen       string             `json:"visibleWhen" yaml:"visibleWhen"`
	Slot              string             `json:"slot" yaml:"slot"`
	ControlProps      map[string]any     `json:"controlProps" yaml:"controlProps"`
	ControlRenderPops map[string]any     `json:"controlRenderPops" yaml:"controlRenderPops"`
	FormItemProps     map[string]any     `json:"formItemProps" yaml:"formItemProps"`
	RowProps          map[string]any     `json:"rowProps" yaml:"rowProps"`
	RowPorps          map[string]any     `json:"rowPorps" yaml:"rowPorps"`
	ColProps          map[string]any     `json:"colProps" yaml:"colProps"`
	Children          []nodeFile         `json:"children" yaml:"children"`
	Columns           []nodeFile         `json:"columns" yaml:"columns"`
	List              *listFile          `json:"list" yaml:"list"`
	FormListProps     *formListPropsFile `json:"formListProps" yaml:"formListProps"`
}

type listFile struct {
	AddButton    ButtonConfig   `json:"addButton" yaml:"addButton"`
	RemoveButton ButtonConfig   `json:"removeButton" yaml:"removeButton"`
	RowProps     map[string]any `json:"rowProps" yaml:"rowProps"`
}

type formListPropsFile struct {
	SpaceProps     map[string]any `json:"spaceProps" yaml:"spaceProps"`
	AddButtonProps map[string]any `json:"addButtonProps" yaml:"addButtonProps"`
	DelButtonProps map[string]any `json:"delButtonProps" yaml:"delButtonProps"`
	AddButtonSlot  string         `json:"addButtonSlot" yaml:"addButtonSlot"`
	DelButtonSlot  string         `json:"delButtonSlot" yaml:"delButtonSlot"`
}

func parse(data []byte, source string) ([]Node, error) {
	raw, err := parseDocument(data, source)
	if err != nil {
		return nil, err
	}
	nodes := normaliseNodes(raw)
	if err := Validate(nodes); err != nil {
		return nil, fmt.Errorf("schema: %s: %w", source, err)
	}
	return nodes, nil
}

func parseDocument(data []byte, source string) ([]nodeFile, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("schema: file %s is empty", source)
	}

	if strings.HasPrefix(trimmed, "[") {
		var nodes []nodeFile
		if err := json.Unmarshal(data, &nodes); err == nil {
			return nodes, nil
		}
	} else {
		var doc documentFile
		if err := json.Unmarshal(data, &doc); err == nil {
			return doc.Fields, nil
		}
	}

	var doc documentFile
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc.Fields, nil
	}
	var nodes []nodeFile
	if err := yaml.Unmarshal(data, &nodes); err == nil {
		return nodes, nil
	}

	return nil, fmt.Errorf("schema: parse %s: invalid JSON or YAML", source)
}

// parseDocumentMeta returns the optional title block of a document. Bare node
// lists have none.
func parseDocumentMeta(data []byte) (documentFile, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return documentFile{}, fmt.Errorf("document is empty")
	}
	if strings.HasPrefix(trimmed, "[") {
		return documentFile{}, nil
	}
	var doc documentFile
	if err := json.Unmarshal(data, &doc); err == nil {
		return documentFile{Title: doc.Title, Description: doc.Description}, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("invalid JSON or YAML")
	}
	return documentFile{Title: doc.Title, Description: doc.Description}, nil
}

func normaliseNodes(raw []nodeFile) []Node {
	if len(raw) == 0 {
		return nil
	}
	out := make([]Node, 0, len(raw))
	for _, entry := range raw {
		out = append(out, normaliseNode(entry))
	}
	return out
}

func normaliseNode(raw nodeFile) Node {
	node := Node{
		ControlType:   strings.TrimSpace(raw.ControlType),
		DataIndex:     strings.TrimSpace(raw.DataIndex),
		Label:         raw.Label,
		Hidden:        raw.Hidden || raw.HideInForm,
		VisibleWhen:   strings.TrimSpace(raw.VisibleWhen),
		Slot:          strings.TrimSpace(raw.Slot),
		ControlProps:  firstMap(raw.ControlProps, raw.ControlRenderPops),
		FormItemProps: raw.FormItemProps,
		RowProps:      firstMap(raw.RowProps, raw.RowPorps),
		ColProps:      raw.ColProps,
	}

	children := raw.Children
	if len(children) == 0 {
		children = raw.Columns
	}
	node.Children = normaliseNodes(children)

	switch {
	case raw.List != nil:
		node.List = &ListConfig{
			AddButton:    raw.List.AddButton,
			RemoveButton: raw.List.RemoveButton,
			RowProps:     raw.List.RowProps,
		}
	case raw.FormListProps != nil:
		node.List = listFromFormListProps(raw.FormListProps)
	}
	return node
}

func listFromFormListProps(raw *formListPropsFile) *ListConfig {
	cfg := &ListConfig{RowProps: raw.SpaceProps}
	cfg.AddButton = buttonFromProps(raw.AddButtonProps, raw.AddButtonSlot)
	cfg.RemoveButton = buttonFromProps(raw.DelButtonProps, raw.DelButtonSlot)
	return cfg
}

func buttonFromProps(props map[string]any, slot string) ButtonConfig {
	btn := ButtonConfig{Slot: strings.TrimSpace(slot)}
	if len(props) == 0 {
		return btn
	}
	rest := make(map[string]any, len(props))
	for key, value := range props {
		if key == "text" {
			if text, ok := value.(string); ok {
				btn.Text = text
				continue
			}
		}
		rest[key] = value
	}
	if len(rest) > 0 {
		btn.Props = rest
	}
	return btn
}

func firstMap(primary, alias map[string]any) map[string]any {
	if len(primary) > 0 {
		return primary
	}
	if len(alias) > 0 {
		return alias
	}
	return nil
}
