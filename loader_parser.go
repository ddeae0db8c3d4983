package schemaform

import (
	internalloader "github.com/goliatone/go-schemaform/internal/loader"
	internalparser "github.com/goliatone/go-schemaform/internal/openapi/parser"
	pkgopenapi "github.com/goliatone/go-schemaform/pkg/openapi"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	return internalloader.New(schema.NewLoaderOptions(options...))
}

// NewParser constructs an OpenAPI parser backed by the internal
// implementation.
func NewParser(options ...pkgopenapi.ParserOption) pkgopenapi.Parser {
	return internalparser.New(pkgopenapi.NewParserOptions(options...))
}

// NewOpenAPIAdapter builds the OpenAPI format adapter over the internal
// parser.
func NewOpenAPIAdapter(options ...pkgopenapi.BuilderOption) *pkgopenapi.Adapter {
	return pkgopenapi.NewAdapter(NewParser(), pkgopenapi.NewBuilder(options...))
}
