package form

import (
	"context"
	"fmt"

	"github.com/mohae/deepcopy"

	"github.com/goliatone/go-schemaform/pkg/binding"
)

// Handle is the validation and submission object a form forwards to. The form
// does not reimplement any of it.
type Handle interface {
	FieldValue(path string) (any, bool)
	SetFieldValue(path string, value any) error
	Validate(ctx context.Context) error
	Reset() error
	Submit(ctx context.Context) error
}

// ValidateFunc checks a model.
type ValidateFunc func(ctx context.Context, model map[string]any) error

// SubmitFunc receives a copy of a model that passed validation.
type SubmitFunc func(ctx context.Context, model map[string]any) error

// HandleOption configures a ModelHandle.
type HandleOption func(*ModelHandle)

// WithValidateFunc sets the validation hook.
func WithValidateFunc(fn ValidateFunc) HandleOption {
	return func(h *ModelHandle) {
		h.validate = fn
	}
}

// WithSubmitFunc sets the submission hook.
func WithSubmitFunc(fn SubmitFunc) HandleOption {
	return func(h *ModelHandle) {
		h.submit = fn
	}
}

// ModelHandle is the default Handle. It addresses values by path directly in
// the model and restores the model captured at construction on Reset.
type ModelHandle struct {
	model    map[string]any
	initial  map[string]any
	validate ValidateFunc
	submit   SubmitFunc
}

var _ Handle = (*ModelHandle)(nil)

// NewModelHandle wraps model, capturing a copy of its current state for Reset.
func NewModelHandle(model map[string]any, opts ...HandleOption) *ModelHandle {
	h := &ModelHandle{
		model:   model,
		initial: copyModel(model),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// FieldValue reads the value at path. A trailing index ("range[1]") reads an
// element of the array stored at the key.
func (h *ModelHandle) FieldValue(path string) (any, bool) {
	ctx, key, index, err := binding.ParseLocation(path)
	if err != nil {
		return nil, false
	}
	loc, ok, err := binding.Lookup(h.model, ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	value, ok := loc.Get()
	if !ok || index < 0 {
		return value, ok
	}
	items, isSlice := value.([]any)
	if !isSlice || index >= len(items) {
		return nil, false
	}
	return items[index], true
}

// SetFieldValue writes value at path, creating the row object on the path
// when it is missing. A trailing index writes an element of the array stored
// at the key, growing it as needed.
func (h *ModelHandle) SetFieldValue(path string, value any) error {
	ctx, key, index, err := binding.ParseLocation(path)
	if err != nil {
		return fmt.Errorf("form: set %s: %w", path, err)
	}
	loc, err := binding.Ensure(h.model, ctx, key)
	if err != nil {
		return fmt.Errorf("form: set %s: %w", path, err)
	}
	if index < 0 {
		loc.Set(value)
		return nil
	}

	current, _ := loc.Get()
	items, ok := current.([]any)
	if current != nil && !ok {
		return fmt.Errorf("form: set %s: %w", path, binding.ErrNotContainer)
	}
	for len(items) <= index {
		items = append(items, nil)
	}
	items[index] = value
	loc.Set(items)
	return nil
}

// Validate runs the validation hook, if any.
func (h *ModelHandle) Validate(ctx context.Context) error {
	if h.validate == nil {
		return nil
	}
	return h.validate(ctx, h.model)
}

// Reset restores the captured state in place. The model map itself is kept so
// callers holding it observe the reset.
func (h *ModelHandle) Reset() error {
	for key := range h.model {
		delete(h.model, key)
	}
	for key, value := range copyModel(h.initial) {
		h.model[key] = value
	}
	return nil
}

// Submit validates and hands a copy of the model to the submission hook.
func (h *ModelHandle) Submit(ctx context.Context) error {
	if err := h.Validate(ctx); err != nil {
		return err
	}
	if h.submit == nil {
		return nil
	}
	return h.submit(ctx, copyModel(h.model))
}

func copyModel(model map[string]any) map[string]any {
	if model == nil {
		return nil
	}
	copied, ok := deepcopy.Copy(model).(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return copied
}
