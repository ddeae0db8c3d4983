// Package httpform serves a single form over HTTP. GET renders it, POST
// applies submitted values and the triggering action, and GET /model
// returns the bound model as JSON. Browsers post back with the hidden
// "_action" field; JSON clients post {"values": {...}, "action": "..."}.
package httpform

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/goliatone/go-schemaform/internal/logging"
	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/render"
	"github.com/goliatone/go-schemaform/pkg/renderers/jsontree"
	"github.com/goliatone/go-schemaform/pkg/renderers/vanilla"
	"github.com/goliatone/go-schemaform/pkg/view"
)

const maxBodyBytes = 1 << 20

// FieldErrorer is implemented by validation and submit errors that carry
// per-field messages. Keys may be JSON pointers or dotted paths.
type FieldErrorer interface {
	FieldErrors() map[string][]string
}

// Option configures a Handler.
type Option func(*Handler)

// WithRegistry replaces the renderer registry. The default holds the vanilla
// and JSON renderers.
func WithRegistry(registry *render.Registry) Option {
	return func(h *Handler) {
		h.registry = registry
	}
}

// WithRenderer names the renderer used for browser responses.
func WithRenderer(name string) Option {
	return func(h *Handler) {
		h.renderer = name
	}
}

// WithRenderOptions sets the options every render starts from.
func WithRenderOptions(options render.RenderOptions) Option {
	return func(h *Handler) {
		h.options = options
	}
}

// WithLogger routes request diagnostics to logger.
func WithLogger(logger *charmlog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithMetrics records actions and render timings.
func WithMetrics(metrics *Metrics) Option {
	return func(h *Handler) {
		h.metrics = metrics
	}
}

// WithAssets mounts the default stylesheet under /assets/.
func WithAssets() Option {
	return func(h *Handler) {
		h.assets = true
	}
}

// Handler serialises every request against one form. A Form is not safe for
// concurrent use, so the handler holds a mutex for the whole request.
type Handler struct {
	mu       sync.Mutex
	form     *form.Form
	registry *render.Registry
	renderer string
	options  render.RenderOptions
	logger   *charmlog.Logger
	metrics  *Metrics
	assets   bool
	router   chi.Router
}

var _ http.Handler = (*Handler)(nil)

// New builds a handler for f.
func New(f *form.Form, opts ...Option) (*Handler, error) {
	if f == nil {
		return nil, errors.New("httpform: form is required")
	}
	h := &Handler{
		form:     f,
		renderer: vanilla.Name,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	h.logger = logging.OrDiscard(h.logger)
	if h.registry == nil {
		html, err := vanilla.New()
		if err != nil {
			return nil, fmt.Errorf("httpform: vanilla renderer: %w", err)
		}
		registry, err := render.NewRegistry(html, jsontree.New())
		if err != nil {
			return nil, fmt.Errorf("httpform: renderer registry: %w", err)
		}
		h.registry = registry
	}
	if !h.registry.Has(h.renderer) {
		return nil, fmt.Errorf("httpform: renderer %q not registered", h.renderer)
	}

	r := chi.NewRouter()
	r.Get("/", h.show)
	r.Post("/", h.submit)
	r.Get("/model", h.model)
	if h.assets {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServerFS(vanilla.AssetsFS())))
	}
	h.router = r
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.respond(w, r, http.StatusOK, h.options)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if isJSON(r.Header.Get("Content-Type")) {
		h.submitJSON(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		h.logger.Warn("parse form", "err", err)
		return
	}

	tree, err := h.form.Render()
	if err != nil {
		h.fail(w, err)
		return
	}
	assignments, problems := decodeForm(tree, r.PostForm)
	options := h.options
	if err := h.apply(assignments); err != nil {
		options.FormErrors = render.MergeFormErrors(options.FormErrors, err.Error())
		h.respond(w, r, http.StatusUnprocessableEntity, options)
		return
	}
	if len(problems) > 0 {
		options.Errors = problems
		h.respond(w, r, http.StatusUnprocessableEntity, options)
		return
	}

	action := strings.TrimSpace(r.PostForm.Get(render.ActionField))
	if action == "" {
		action = string(view.ActionSubmit)
	}
	if err := h.dispatch(r, action); err != nil {
		h.respond(w, r, statusFor(err), h.withError(tree, options, err))
		return
	}

	http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
}

type jsonSubmission struct {
	Values map[string]any `json:"values"`
	Action string         `json:"action"`
}

func (h *Handler) submitJSON(w http.ResponseWriter, r *http.Request) {
	var body jsonSubmission
	data, err := io.ReadAll(r.Body)
	if err == nil {
		err = json.Unmarshal(data, &body)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		h.logger.Warn("decode json submission", "err", err)
		return
	}

	assignments := make([]assignment, 0, len(body.Values))
	for path, value := range body.Values {
		assignments = append(assignments, assignment{path: path, value: value})
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].path < assignments[j].path })
	if err := h.apply(assignments); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": err.Error()})
		return
	}

	options := h.options
	if action := strings.TrimSpace(body.Action); action != "" {
		if err := h.dispatch(r, action); err != nil {
			tree, renderErr := h.form.Render()
			if renderErr != nil {
				h.fail(w, renderErr)
				return
			}
			h.respondJSON(w, r, statusFor(err), h.withError(tree, options, err))
			return
		}
	}
	h.respondJSON(w, r, http.StatusOK, options)
}

// respondJSON renders through the JSON renderer, or writes the model
// snapshot when the registry has none.
func (h *Handler) respondJSON(w http.ResponseWriter, r *http.Request, status int, options render.RenderOptions) {
	if !h.registry.Has(jsontree.Name) {
		writeJSON(w, status, map[string]any{
			"model":      h.form.Snapshot(),
			"errors":     options.Errors,
			"formErrors": options.FormErrors,
		})
		return
	}
	h.renderWith(w, r, jsontree.Name, status, options)
}

func (h *Handler) model(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	writeJSON(w, http.StatusOK, h.form.Snapshot())
}

func (h *Handler) apply(assignments []assignment) error {
	for _, a := range assignments {
		if err := h.form.SetFieldValue(a.path, a.value); err != nil {
			return fmt.Errorf("set %s: %w", a.path, err)
		}
	}
	return nil
}

func (h *Handler) dispatch(r *http.Request, action string) error {
	err := h.form.Dispatch(r.Context(), action)
	kind, _, _ := view.ParseActionID(action)
	label := string(kind)
	if label == "" {
		label = "unknown"
	}
	h.metrics.observeAction(label, err)
	if err != nil {
		h.logger.Info("action rejected", "action", action, "err", err)
		return err
	}
	h.logger.Debug("action applied", "action", action)
	return nil
}

func (h *Handler) withError(tree []view.Node, options render.RenderOptions, err error) render.RenderOptions {
	var fielded FieldErrorer
	if errors.As(err, &fielded) {
		mapping := render.MapErrorPayload(tree, fielded.FieldErrors())
		options.Errors = mapping.Fields
		options.FormErrors = render.MergeFormErrors(options.FormErrors, mapping.Form...)
		return options
	}
	options.FormErrors = render.MergeFormErrors(options.FormErrors, err.Error())
	return options
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, options render.RenderOptions) {
	name := h.renderer
	if wantsJSON(r) && h.registry.Has(jsontree.Name) {
		name = jsontree.Name
	}
	h.renderWith(w, r, name, status, options)
}

func (h *Handler) renderWith(w http.ResponseWriter, r *http.Request, name string, status int, options render.RenderOptions) {
	started := time.Now()
	tree, err := h.form.Render()
	if err != nil {
		h.fail(w, err)
		return
	}
	out, contentType, err := h.registry.Render(r.Context(), name, tree, options)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.metrics.observeRender(name, started)

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(out); err != nil {
		h.logger.Debug("write response", "err", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	h.logger.Error("render form", "err", err)
	http.Error(w, "form could not be rendered", http.StatusInternalServerError)
}

func statusFor(err error) int {
	if errors.Is(err, form.ErrUnknownAction) {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

func wantsJSON(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		if isJSON(part) {
			return true
		}
	}
	return false
}

func isJSON(header string) bool {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(header))
	return err == nil && mediaType == "application/json"
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
