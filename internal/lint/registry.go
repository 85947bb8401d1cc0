package lint

import (
	"errors"
	"fmt"
	"sort"
)

// Registry holds the known passes in registration order.
type Registry struct {
	passes []Pass
	byName map[string]Pass
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Pass)}
}

// Register adds a pass. Pass and lint names must be unique.
func (r *Registry) Register(p Pass) error {
	info := p.Info()
	if info.Name == "" {
		return errors.New("lint: pass has no name")
	}
	if _, dup := r.byName[info.Name]; dup {
		return fmt.Errorf("lint: pass %q registered twice", info.Name)
	}
	r.byName[info.Name] = p
	r.passes = append(r.passes, p)
	return nil
}

// MustRegister is Register for static pass sets.
func (r *Registry) MustRegister(p Pass) {
	if err := r.Register(p); err != nil {
		panic(err)
	}
}

// Passes returns the passes in registration order.
func (r *Registry) Passes() []Pass {
	return r.passes
}

// Lookup finds a pass by name.
func (r *Registry) Lookup(name string) (Pass, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Lints returns every lint of every pass, ordered by code.
func (r *Registry) Lints() []Lint {
	var all []Lint
	for _, p := range r.passes {
		all = append(all, p.Info().Lints...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return all
}

// Run executes every registered pass against the context. A panicking pass
// is contained and surfaces as an error; remaining passes still run.
func (r *Registry) Run(ctx *Context) error {
	var errs []error
	for _, p := range r.passes {
		if err := runPass(p, ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func runPass(p Pass, ctx *Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lint: pass %s panicked: %v", p.Info().Name, rec)
		}
	}()
	if err := p.Run(ctx); err != nil {
		return fmt.Errorf("lint: pass %s: %w", p.Info().Name, err)
	}
	return nil
}
