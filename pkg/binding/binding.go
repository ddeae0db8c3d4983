package binding

// ChangeKind classifies a model mutation.
type ChangeKind string

const (
	ChangeValue  ChangeKind = "value"
	ChangeAdd    ChangeKind = "add"
	ChangeRemove ChangeKind = "remove"
	ChangeReset  ChangeKind = "reset"
)

// Change describes a mutation that has been fully applied to the model.
// Path is the value path for value changes and the list path for row
// changes; Index is the affected row for add/remove.
type Change struct {
	Kind  ChangeKind
	Path  string
	Index int
	Value any
}

// Observer receives changes after they are applied.
type Observer func(Change)

// Binding is a two-way bind of one leaf to its storage slot. It holds the
// context and key, never a resolved location, so every call observes the
// current model.
type Binding struct {
	root     map[string]any
	ctx      Context
	key      string
	observer Observer
}

// New constructs a binding for key under ctx. observer may be nil.
func New(root map[string]any, ctx Context, key string, observer Observer) *Binding {
	return &Binding{
		root:     root,
		ctx:      ctx,
		key:      key,
		observer: observer,
	}
}

// Context returns the binding context.
func (b *Binding) Context() Context {
	return b.ctx
}

// Key returns the field key inside the innermost storage object.
func (b *Binding) Key() string {
	return b.key
}

// Path returns the dotted path of the bound value.
func (b *Binding) Path() string {
	return b.ctx.Path(b.key)
}

// Get reads the current value. Unresolvable paths read as absent.
func (b *Binding) Get() (any, bool) {
	if b == nil {
		return nil, false
	}
	loc, ok, err := Lookup(b.root, b.ctx, b.key)
	if err != nil || !ok {
		return nil, false
	}
	return loc.Get()
}

// Value is Get without the presence flag.
func (b *Binding) Value() any {
	value, _ := b.Get()
	return value
}

// Set commits value to the model immediately and notifies the observer.
func (b *Binding) Set(value any) error {
	loc, err := Ensure(b.root, b.ctx, b.key)
	if err != nil {
		return err
	}
	loc.Set(value)
	if b.observer != nil {
		b.observer(Change{Kind: ChangeValue, Path: b.Path(), Index: -1, Value: value})
	}
	return nil
}
