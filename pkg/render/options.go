package render

import (
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ActionField is the submitted field carrying the id of the action that
// triggered a submission ("add:items", "remove:items[0]", "submit", "reset").
const ActionField = "_action"

// RenderOptions describe per-request data renderers use to customise their
// output without touching the form.
type RenderOptions struct {
	// Action is the URL the form posts to. Empty posts back to the current
	// URL.
	Action string
	// Method overrides the default POST. Verbs browsers cannot submit
	// (PATCH/PUT/DELETE) are sent as POST with a hidden _method input.
	Method string
	// Title is rendered above the form when set.
	Title string
	// Errors carries field errors keyed by binding path
	// ("items[0].title"). Use MapErrorPayload to build it from a server
	// payload.
	Errors map[string][]string
	// FormErrors are shown above the form.
	FormErrors []string
	// Hidden fields are emitted verbatim in sorted order.
	Hidden map[string]string
	// SubmitText and ResetText label the form buttons. An empty ResetText
	// omits the reset button.
	SubmitText string
	ResetText  string
	// Theme, when set, takes precedence over a theme the renderer was
	// constructed with.
	Theme *theme.RendererConfig
}

// HTTPMethod returns the verb the browser submits with and, when it differs
// from the requested one, the override to send as _method.
func (o RenderOptions) HTTPMethod() (method, override string) {
	requested := strings.ToUpper(strings.TrimSpace(o.Method))
	switch requested {
	case "", "POST":
		return "POST", ""
	case "GET":
		return "GET", ""
	default:
		return "POST", requested
	}
}

// FieldErrors returns the errors recorded for path.
func (o RenderOptions) FieldErrors(path string) []string {
	if len(o.Errors) == 0 {
		return nil
	}
	return o.Errors[path]
}
