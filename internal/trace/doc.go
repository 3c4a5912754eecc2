// Package trace records what the irforge driver is doing while it builds
// and writes fixtures.
//
// Enable tracing from the command line:
//
//	irforge generate --trace=- --trace-level=detail
//
// # Tracers
//
//   - Nop: no-op tracer used when tracing is off
//   - StreamTracer: writes each event as it happens
//   - RingTracer: keeps the last events in memory, dumped when a run fails
//   - MultiTracer: fans out to several tracers
//
// # Scopes
//
// Events are grouped by scope, coarsest first: ScopeDriver for a command,
// ScopeSuite for one fixture suite, ScopeCase for building a single file
// and ScopeWrite for printing and writing it. The level decides the finest
// scope that is emitted.
//
// # Context
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeSuite, "suite:phi")
//	defer span.End("")
package trace
