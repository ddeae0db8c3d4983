// Package openapi imports OpenAPI 3 request bodies as schema nodes. Each
// operation with a request body is one form; its properties become leaves,
// arrays of objects become lists.
package openapi
