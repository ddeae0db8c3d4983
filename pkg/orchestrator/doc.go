// Package orchestrator wires the source → format adapter → form → renderer
// pipeline behind a single entry point. Every stage can be replaced through
// an Option; the defaults read native schema documents and OpenAPI request
// bodies and render through the vanilla and JSON renderers.
package orchestrator
