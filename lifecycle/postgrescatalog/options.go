package postgrescatalog

import (
	"context"
	"math"
	"time"
)

// Logger interface for SQL query logging and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger interface for context-aware logging with automatic trace correlation.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// Option defines a functional option for configuring a Catalog.
type Option func(*Catalog) error

// WithExemplariesTableName sets the exemplaries table name for the Catalog.
func WithExemplariesTableName(tableName string) Option {
	return func(c *Catalog) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		c.exemplariesTableName = tableName

		return nil
	}
}

// WithShelvesTableName sets the shelves table name for the Catalog.
func WithShelvesTableName(tableName string) Option {
	return func(c *Catalog) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		c.shelvesTableName = tableName

		return nil
	}
}

// WithBooksTableName sets the books table name for the Catalog.
func WithBooksTableName(tableName string) Option {
	return func(c *Catalog) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		c.booksTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the Catalog.
// Debug level carries SQL with execution timing, error level carries failures.
func WithLogger(logger Logger) Option {
	return func(c *Catalog) error {
		c.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Catalog.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(c *Catalog) error {
		c.contextualLogger = logger
		return nil
	}
}

// logQueryDual logs SQL queries with execution time at debug level,
// preferring the contextual logger when configured.
func (c Catalog) logQueryDual(ctx context.Context, operation string, sqlQuery string, duration time.Duration) {
	if c.contextualLogger != nil {
		c.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+operation,
			logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
		return
	}

	if c.logger != nil {
		c.logger.Debug(logMsgSQLExecuted+operation,
			logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logWarnDual logs warnings, preferring the contextual logger when configured.
func (c Catalog) logWarnDual(ctx context.Context, msg string, args ...any) {
	if c.contextualLogger != nil {
		c.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

// logErrorDual logs error information, preferring the contextual logger when configured.
func (c Catalog) logErrorDual(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if c.contextualLogger != nil {
		c.contextualLogger.ErrorContext(ctx, message, allArgs...)
		return
	}

	if c.logger != nil {
		c.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
