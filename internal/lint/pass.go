package lint

import "surgelint/internal/diag"

// Lint describes one finding category a pass can produce.
type Lint struct {
	// Name is the snake_case identifier used by @allow attributes and config.
	Name string
	Code diag.Code
	// Default is the severity used when config does not override it.
	Default diag.Severity
	Doc     string
}

// Info is the static metadata of a pass.
type Info struct {
	// Name identifies the pass itself, e.g. "deref".
	Name  string
	Doc   string
	Lints []Lint
}

// Pass is one analysis over a module. Run visits the module through ctx and
// reports findings; it returns an error only for internal failures, never for
// findings.
type Pass interface {
	Info() Info
	Run(ctx *Context) error
}
