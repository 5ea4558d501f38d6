// Package testdoubles provides test doubles (spies) for observability interfaces.
//
// This package contains spy implementations for the observability interfaces
// used by the lifecycle engine and the Postgres ledger:
//   - MetricsCollectorSpy: captures metrics recording calls for verification
//   - TracingCollectorSpy: captures distributed tracing spans
//   - ContextualLoggerSpy: captures structured logging with context
//   - LogHandlerSpy: captures slog handler calls and attributes
//
// These test doubles enable testing observability instrumentation without
// requiring actual telemetry backends.
package testdoubles
