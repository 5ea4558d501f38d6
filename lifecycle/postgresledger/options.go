package postgresledger

import (
	"context"
	"time"
)

// Logger interface for SQL query logging, operational messages, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsCollector interface for collecting ledger performance and operational metrics.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// ContextualMetricsCollector extends MetricsCollector with context-aware methods
// for better tracing integration. This interface is optional - the ledger uses
// context-aware methods when available, falling back to the base MetricsCollector
// interface otherwise.
type ContextualMetricsCollector interface {
	MetricsCollector
	RecordDurationContext(ctx context.Context, metric string, duration time.Duration, labels map[string]string)
	IncrementCounterContext(ctx context.Context, metric string, labels map[string]string)
	RecordValueContext(ctx context.Context, metric string, value float64, labels map[string]string)
}

// SpanContext represents an active tracing span that can be finished and updated with attributes.
type SpanContext interface {
	SetStatus(status string)
	AddAttribute(key, value string)
}

// TracingCollector interface for collecting distributed tracing information from ledger operations.
// This interface follows the same dependency-free pattern as MetricsCollector, allowing users to
// integrate with any tracing backend (OpenTelemetry, Jaeger, Zipkin, etc.) by implementing this interface.
type TracingCollector interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext)
	FinishSpan(spanCtx SpanContext, status string, attrs map[string]string)
}

// ContextualLogger interface for context-aware logging with automatic trace correlation.
// This interface follows the same dependency-free pattern as MetricsCollector and TracingCollector,
// allowing users to integrate with any logging backend that supports context-based correlation
// and automatic trace/span ID inclusion.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// Option defines a functional option for configuring CheckoutLedger.
type Option func(*CheckoutLedger) error

// WithCheckoutsTableName sets the checkouts table name for the CheckoutLedger.
func WithCheckoutsTableName(tableName string) Option {
	return func(l *CheckoutLedger) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		l.checkoutsTableName = tableName

		return nil
	}
}

// WithExemplariesTableName sets the exemplaries table name used by the predicate search.
func WithExemplariesTableName(tableName string) Option {
	return func(l *CheckoutLedger) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		l.exemplariesTableName = tableName

		return nil
	}
}

// WithSnapshotsTableName sets the evaluation snapshots table name for the CheckoutLedger.
func WithSnapshotsTableName(tableName string) Option {
	return func(l *CheckoutLedger) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		l.snapshotsTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the CheckoutLedger.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Record counts, durations, write conflicts (production-safe)
// Warn level: Non-critical issues like cleanup failures and ledger inconsistencies
// Error level: Critical failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(l *CheckoutLedger) error {
		l.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the CheckoutLedger.
// The collector will receive performance and operational metrics including
// read/write durations, record counts, write conflicts, and database errors.
func WithMetrics(collector MetricsCollector) Option {
	return func(l *CheckoutLedger) error {
		l.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the CheckoutLedger.
// The tracing collector will receive distributed tracing information including
// span creation for read/write operations, context propagation, and error tracking.
func WithTracing(collector TracingCollector) Option {
	return func(l *CheckoutLedger) error {
		l.tracingCollector = collector
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the CheckoutLedger.
// The contextual logger will receive log messages with context information including
// automatic trace/span correlation when tracing is enabled, enabling unified observability.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(l *CheckoutLedger) error {
		l.contextualLogger = logger
		return nil
	}
}
