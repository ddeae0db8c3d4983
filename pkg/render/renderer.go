// Package render defines the output renderer contract for rendered view trees
// along with helpers shared by renderers: hidden fields, error mapping and a
// renderer registry.
package render

import (
	"context"

	"github.com/goliatone/go-schemaform/pkg/view"
)

// Renderer converts a view tree into a byte representation (HTML, JSON, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, tree []view.Node, options RenderOptions) ([]byte, error)
}
