// Package trace provides a tracing subsystem for the lint pipeline.
//
// The trace package enables tracking of driver phases, per-bundle processing,
// and other operations to help diagnose performance issues and hangs.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	surgelint check --trace=- --trace-level=phase ./build
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - NopTracer: Zero-overhead no-op tracer when disabled
//   - StreamTracer: Immediate write to output (file/stderr)
//   - RingTracer: Circular buffer for crash dumps
//   - MultiTracer: Combines multiple tracers
//
// # Levels
//
// Tracing verbosity is controlled by levels:
//
//   - LevelOff: No tracing
//   - LevelError: Only crash dumps
//   - LevelPhase: Driver and pass boundaries
//   - LevelDetail: Module-level events
//   - LevelDebug: Everything including IR nodes
//
// # Scopes
//
// Events are categorized by scope:
//
//   - ScopeDriver: Top-level CLI operations
//   - ScopePass: Lint pass boundaries
//   - ScopeModule: Per-bundle processing
//   - ScopeNode: IR node level (future)
//
// # Context Propagation
//
// Tracers are propagated through the lint pipeline via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "deref", parentID)
//	defer span.End("")
package trace
