// Package trace records what the bundler is doing as nested spans.
//
// A Tracer travels on the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "build_graph", 0)
//	defer span.End("")
//
// Scopes from coarse to fine: ScopeDriver (one CLI command), ScopePass
// (graph construction, emission, output), ScopeModule (one descriptor),
// ScopeNode (per import edge). The Level decides which scopes are kept:
// phase keeps driver and pass spans, detail adds modules, debug keeps all.
//
// StreamTracer writes each event as it happens, RingTracer keeps the last N
// events for a dump on failure, MultiTracer fans out to both.
package trace
