package widgets

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry tracks widgets keyed by normalised control type. Callers can
// register new widgets or override defaults.
type Registry struct {
	mu      sync.RWMutex
	widgets map[string]Widget
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		widgets: make(map[string]Widget),
	}
}

// Clone returns a deep copy of the registry to allow isolated mutations.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := New()
	for name, widget := range r.widgets {
		cloned.widgets[name] = cloneWidget(widget)
	}
	return cloned
}

// Register associates a widget with the provided control type. Existing
// entries are replaced.
func (r *Registry) Register(controlType string, widget Widget) error {
	name := Normalize(controlType)
	if name == "" {
		return fmt.Errorf("widgets: control type is required")
	}
	if widget.Renderer == nil {
		return fmt.Errorf("widgets: renderer for %q is nil", controlType)
	}
	if widget.Family == "" {
		widget.Family = FamilyText
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	widget.Name = name
	r.widgets[name] = cloneWidget(widget)
	return nil
}

// MustRegister mirrors Register but panics on error, simplifying default
// registry setup.
func (r *Registry) MustRegister(controlType string, widget Widget) {
	if err := r.Register(controlType, widget); err != nil {
		panic(err)
	}
}

// Lookup fetches the widget registered for controlType.
func (r *Registry) Lookup(controlType string) (Widget, bool) {
	if r == nil {
		return Widget{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	widget, ok := r.widgets[Normalize(controlType)]
	if !ok {
		return Widget{}, false
	}
	return cloneWidget(widget), true
}

// Has reports whether controlType resolves to a widget.
func (r *Registry) Has(controlType string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.widgets[Normalize(controlType)]
	return ok
}

// Names returns a sorted slice of registered control types.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.widgets))
	for name := range r.widgets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Assets resolves the deduplicated stylesheets and scripts for the provided
// control types, in first-seen order.
func (r *Registry) Assets(controlTypes []string) (stylesheets []string, scripts []Script) {
	if len(controlTypes) == 0 {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seenStyles := make(map[string]struct{})
	seenScripts := make(map[string]struct{})

	for _, controlType := range controlTypes {
		widget, ok := r.widgets[Normalize(controlType)]
		if !ok {
			continue
		}
		for _, href := range widget.Stylesheets {
			if href == "" {
				continue
			}
			if _, exists := seenStyles[href]; exists {
				continue
			}
			seenStyles[href] = struct{}{}
			stylesheets = append(stylesheets, href)
		}
		for _, script := range widget.Scripts {
			key := scriptKey(script)
			if _, exists := seenScripts[key]; exists {
				continue
			}
			seenScripts[key] = struct{}{}
			scripts = append(scripts, script)
		}
	}
	return stylesheets, scripts
}

func scriptKey(script Script) string {
	if script.Src != "" {
		return "src:" + script.Src
	}
	return "inline:" + script.Inline
}

// Normalize folds case and drops '-', '_' and spaces, so "InputNumber" and
// "input-number" name the same control.
func Normalize(controlType string) string {
	controlType = strings.TrimSpace(controlType)
	if controlType == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(controlType))
	for _, r := range controlType {
		switch r {
		case '-', '_', ' ':
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
