// Package trace records what the region checker is doing while it runs.
//
// Tracing is enabled from the command line:
//
//	regionck check --trace=- --trace-level=detail cases/
//
// Implementations:
//
//   - Nop: disabled tracing, zero overhead
//   - StreamTracer: immediate write to a file or stderr
//   - RingTracer: last N events kept in memory, dumped after a fatal diagnostic
//   - MultiTracer: stream and ring together
//
// Levels select scopes: phase shows driver and file boundaries, detail adds
// one span per function context, debug adds every instantiate and regionOf
// call.
//
// The tracer and the current span travel in a context.Context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span, ctx := trace.Start(ctx, trace.ScopeFile, "file:"+path)
//	defer span.End("")
package trace
