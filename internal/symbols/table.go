package symbols

import (
	"fmt"

	"fortio.org/safecast"
)

// Bindings stores all value bindings of one module in a compact slice arena.
type Bindings struct {
	data []Binding
}

// NewBindings creates an arena with optional capacity hint.
func NewBindings(capacity uint32) *Bindings {
	if capacity == 0 {
		capacity = 64
	}
	return &Bindings{
		data: make([]Binding, 1, capacity+1), // index 0 reserved for NoBindingID
	}
}

// New allocates a binding in the arena and returns its ID.
func (b *Bindings) New(binding *Binding) BindingID {
	if binding == nil {
		panic("symbols.Bindings.New: nil binding")
	}
	value, err := safecast.Conv[uint32](len(b.data))
	if err != nil {
		panic(fmt.Errorf("bindings arena overflow: %w", err))
	}
	id := BindingID(value)
	b.data = append(b.data, *binding)
	return id
}

// Get returns a binding pointer or nil for invalid ID.
func (b *Bindings) Get(id BindingID) *Binding {
	if !id.IsValid() || int(id) >= len(b.data) {
		return nil
	}
	return &b.data[id]
}

// Len reports number of stored bindings excluding the sentinel.
func (b *Bindings) Len() int { return len(b.data) - 1 }

// Data exposes the arena storage without the sentinel.
func (b *Bindings) Data() []Binding {
	if len(b.data) <= 1 {
		return nil
	}
	return b.data[1:]
}

// Funcs stores declared function signatures in a compact arena.
type Funcs struct {
	data []Func
}

// NewFuncs creates a function arena with optional capacity hint.
func NewFuncs(capacity uint32) *Funcs {
	if capacity == 0 {
		capacity = 32
	}
	return &Funcs{
		data: make([]Func, 1, capacity+1), // index 0 reserved for NoFuncID
	}
}

// New allocates a function record and returns its ID.
func (f *Funcs) New(fn *Func) FuncID {
	if fn == nil {
		panic("symbols.Funcs.New: nil func")
	}
	value, err := safecast.Conv[uint32](len(f.data))
	if err != nil {
		panic(fmt.Errorf("funcs arena overflow: %w", err))
	}
	id := FuncID(value)
	f.data = append(f.data, *fn)
	return id
}

// Get returns a function pointer or nil for invalid ID.
func (f *Funcs) Get(id FuncID) *Func {
	if !id.IsValid() || int(id) >= len(f.data) {
		return nil
	}
	return &f.data[id]
}

// Len reports number of stored functions excluding the sentinel.
func (f *Funcs) Len() int { return len(f.data) - 1 }

// Data exposes the arena storage without the sentinel.
func (f *Funcs) Data() []Func {
	if len(f.data) <= 1 {
		return nil
	}
	return f.data[1:]
}
