package form

import (
	"github.com/charmbracelet/log"

	"github.com/goliatone/go-schemaform/pkg/binding"
	"github.com/goliatone/go-schemaform/pkg/visibility"
	"github.com/goliatone/go-schemaform/pkg/widgets"
)

// Option configures a Form.
type Option func(*Form)

// WithRegistry sets the control registry. The default registry covers the
// built-in control types.
func WithRegistry(registry *widgets.Registry) Option {
	return func(f *Form) {
		if registry != nil {
			f.registry = registry
		}
	}
}

// WithSlots merges slots into the form's slot set.
func WithSlots(slots Slots) Option {
	return func(f *Form) {
		for name, fn := range slots {
			f.slots[name] = fn
		}
	}
}

// WithSlot registers a single slot.
func WithSlot(name string, fn SlotFunc) Option {
	return func(f *Form) {
		f.slots[name] = fn
	}
}

// WithHandle replaces the default model handle.
func WithHandle(handle Handle) Option {
	return func(f *Form) {
		if handle != nil {
			f.handle = handle
		}
	}
}

// WithHandleOptions configures the default model handle. Ignored when
// WithHandle supplies a handle.
func WithHandleOptions(opts ...HandleOption) Option {
	return func(f *Form) {
		f.handleOpts = append(f.handleOpts, opts...)
	}
}

// WithLogger sets the logger used for structural mutations and dispatch.
func WithLogger(logger *log.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithObserver subscribes observer to model changes from construction on.
func WithObserver(observer binding.Observer) Option {
	return func(f *Form) {
		if observer != nil {
			f.observers = append(f.observers, observer)
		}
	}
}

// WithVisibility replaces the visibleWhen evaluator and sets the extras
// rules can read under "extras.". A nil evaluator keeps the default.
func WithVisibility(evaluator visibility.Evaluator, extras map[string]any) Option {
	return func(f *Form) {
		if evaluator != nil {
			f.visibility = evaluator
		}
		f.extras = extras
	}
}
