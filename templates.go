package schemaform

import (
	"io/fs"

	"github.com/goliatone/go-schemaform/pkg/renderers/vanilla"
)

// EmbeddedTemplates exposes the built-in vanilla renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the default stylesheet so Go applications can serve it
// without a frontend build step.
//
// Typical mount:
//
//	mux.Handle("/schemaform/",
//	  http.StripPrefix("/schemaform/",
//	    http.FileServerFS(schemaform.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
