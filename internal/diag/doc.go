// Package diag defines the diagnostic model shared by every layer of the
// linter.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture
//     findings produced by lint passes and by the loading pipeline.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//   - Model fix suggestions as structured edits that the driver or CLI can
//     materialise and optionally apply.
//
// # Scope
//
// Package diag does not perform any formatting, IO, CLI integration, or
// interactive behaviour. Rendering responsibilities live in internal/diagfmt,
// whereas selection and application of fixes lives in internal/fix and the
// driver layer.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//   - Fixes – optional Fix records describing how to address the problem.
//
// Notes should be used sparingly: each note must add new context (e.g. “the
// binding is declared here”) rather than repeating the diagnostic message.
//
// # Fix suggestions
//
// Fix represents a possible automated correction. Each fix carries:
//
//   - Title – short label used in UI listings.
//   - Kind – coarse classification (quick fix, refactor, rewrite).
//   - Applicability – confidence level: AlwaysSafe, SafeWithHeuristics,
//     ManualReview.
//   - IsPreferred – optionally mark the most relevant fix when several exist.
//   - Edits – concrete text edits (Span + new/old text) to apply.
//   - Thunk – optional lazy builder used when edits are expensive to construct.
//
// Fixes are intentionally data-only. Producers can attach thunks to defer
// heavy computation; formatters and the fix engine call Resolve or
// MaterializeFixes to expand them deterministically.
//
// TextEdit spans are byte offsets in source coordinates; OldText acts as an
// optional guard that the fix engine uses to validate the on-disk content
// before applying edits.
//
// # Emitting diagnostics
//
// Passes emit through a diag.Reporter to decouple emission from storage. The
// usual shape is a ReportBuilder obtained from ReportWarning or its siblings,
// chained with WithNote / WithFixSuggestion, then finished with Emit. When no
// extra metadata is needed, Reporter.Report can be called directly.
//
// BagReporter aggregates diagnostics into a Bag, which supports sorting,
// deduplication and merging. DedupReporter filters repeats at the emission
// boundary; MultiReporter fans a stream out to several sinks.
//
// # Consumers
//
//   - internal/diagfmt: renders Diagnostics into pretty/json output.
//   - internal/fix: materialises Fix records and applies edits to files.
//   - internal/driver: coordinates bag collection per bundle and transports
//     diagnostic data to CLI commands.
//
// Keep the data model deterministic: any new field must serialise stably so
// findings can be cached and compared across runs.
package diag
