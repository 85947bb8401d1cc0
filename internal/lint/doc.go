// Package lint is the pass framework: the contract between the driver and
// the individual analyses.
//
// A Pass is one named analysis over a typed-IR module. The driver builds one
// Context per module, hands it to every enabled pass in registration order
// and collects findings through the context's Reporter. Passes never touch
// the file system or the terminal; everything they need (IR tables, source
// files for snippets, suppression info, per-lint severity overrides) comes
// through the Context.
//
// Lints inside a pass are addressed by snake_case name ("needless_borrow").
// The name is what `@allow(...)` attributes, config severity overrides and
// the `lints` subcommand speak; the diag.Code is the stable numeric identity
// used in output and baselines.
package lint
