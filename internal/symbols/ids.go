package symbols

// BindingID identifies a value binding inside the binding table.
type BindingID uint32

const (
	// NoBindingID marks the absence of a binding reference.
	NoBindingID BindingID = 0
)

// IsValid reports whether the binding ID refers to an allocated binding.
func (id BindingID) IsValid() bool { return id != NoBindingID }

// FuncID identifies a function inside the function table.
type FuncID uint32

const (
	// NoFuncID marks the absence of a function reference.
	NoFuncID FuncID = 0
)

// IsValid reports whether the function ID refers to an allocated function.
func (id FuncID) IsValid() bool { return id != NoFuncID }
