// Package jsontree renders a view tree as JSON for clients that build their
// own UI from the tree, such as a browser app posting actions back over XHR.
package jsontree

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-schemaform/pkg/render"
	"github.com/goliatone/go-schemaform/pkg/view"
)

// Name is the registry name of the renderer.
const Name = "json"

// Option customises the renderer.
type Option func(*Renderer)

// WithIndent pretty prints the output using indent for each level.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// Renderer encodes the tree and the per-request options as a Document.
type Renderer struct {
	indent string
}

var _ render.Renderer = (*Renderer)(nil)

// Document is the JSON payload written by the renderer.
type Document struct {
	Title       string              `json:"title,omitempty"`
	Action      string              `json:"action,omitempty"`
	Method      string              `json:"method"`
	ActionField string              `json:"actionField"`
	Nodes       []view.Node         `json:"nodes"`
	Errors      map[string][]string `json:"errors,omitempty"`
	FormErrors  []string            `json:"formErrors,omitempty"`
	Hidden      map[string]string   `json:"hidden,omitempty"`
	SubmitText  string              `json:"submitText,omitempty"`
	ResetText   string              `json:"resetText,omitempty"`
}

// New constructs a JSON renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "application/json; charset=utf-8"
}

// Render encodes tree. Bindings, widgets and action callbacks are not part of
// the payload; clients act through action ids.
func (r *Renderer) Render(ctx context.Context, tree []view.Node, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// JSON clients are not limited to GET/POST, so the requested verb is
	// reported as is.
	method := strings.ToUpper(strings.TrimSpace(options.Method))
	if method == "" {
		method = "POST"
	}
	nodes := tree
	if nodes == nil {
		nodes = []view.Node{}
	}
	doc := Document{
		Title:       options.Title,
		Action:      options.Action,
		Method:      method,
		ActionField: render.ActionField,
		Nodes:       nodes,
		Errors:      options.Errors,
		FormErrors:  options.FormErrors,
		Hidden:      render.MergeHiddenFields(options.Hidden),
		SubmitText:  options.SubmitText,
		ResetText:   options.ResetText,
	}

	var (
		out []byte
		err error
	)
	if r.indent != "" {
		out, err = json.MarshalIndent(doc, "", r.indent)
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("jsontree renderer: encode: %w", err)
	}
	return out, nil
}
