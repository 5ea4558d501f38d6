package postgresledger

import (
	"context"
	"fmt"
	"math"
	"time"
)

const (
	metricLedgerQueryDuration = "ledger_query_duration_seconds"
	metricLedgerWriteDuration = "ledger_write_duration_seconds"
	metricLedgerErrors        = "ledger_database_errors"
	metricWriteConflicts      = "ledger_write_conflicts"
	metricRecordsRead         = "ledger_records_read"

	spanNamePrefix       = "checkout_ledger."
	spanAttrOperation    = "operation"
	spanAttrErrorType    = "error_type"
	spanAttrRecordCount  = "record_count"
	spanAttrRowsAffected = "rows_affected"
	spanAttrConflictType = "conflict_type"
	spanAttrStatus       = "status"

	statusSuccess = "success"
	statusError   = "error"

	conflictTypeBorrow = "borrow"
	conflictTypeReturn = "return"

	errorTypeBuildQuery = "build_query"
	errorTypeQuery      = "query"
	errorTypeScan       = "scan"
	errorTypeExec       = "exec"
)

// ledgerObservation bundles the span, timing, and metrics bookkeeping of one
// ledger operation, so the operation methods stay focused on SQL and results.
type ledgerObservation struct {
	ledger        CheckoutLedger
	ctx           context.Context
	operation     string
	span          SpanContext
	readDuration  time.Duration
	writeDuration time.Duration
}

// beginOperation starts a tracing span for the operation if a tracing
// collector is configured and returns the (possibly span-enriched) context.
func (l CheckoutLedger) beginOperation(ctx context.Context, operation string) (*ledgerObservation, context.Context) {
	observation := &ledgerObservation{
		ledger:    l,
		operation: operation,
	}

	if l.tracingCollector != nil {
		spanAttrs := map[string]string{spanAttrOperation: operation}
		ctx, observation.span = l.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, spanAttrs)
	}

	observation.ctx = ctx

	return observation, ctx
}

// failBuild reports a query building failure.
func (o *ledgerObservation) failBuild(err error) {
	o.ledger.logErrorDual(o.ctx, logMsgBuildQueryFailed, err)
	o.ledger.recordErrorMetrics(o.ctx, o.operation, errorTypeBuildQuery)
	o.finishSpanError(errorTypeBuildQuery)
}

// failQuery reports a read query failure. Error logging happens at the call
// site where the SQL text is at hand.
func (o *ledgerObservation) failQuery(duration time.Duration) {
	o.ledger.recordDurationMetrics(o.ctx, metricLedgerQueryDuration, duration, o.operation, statusError)
	o.ledger.recordErrorMetrics(o.ctx, o.operation, errorTypeQuery)
	o.finishSpanError(errorTypeQuery)
}

// failScan reports a row scanning or record building failure.
func (o *ledgerObservation) failScan(duration time.Duration) {
	o.ledger.recordDurationMetrics(o.ctx, metricLedgerQueryDuration, duration, o.operation, statusError)
	o.ledger.recordErrorMetrics(o.ctx, o.operation, errorTypeScan)
	o.finishSpanError(errorTypeScan)
}

// failExec reports a write statement failure.
func (o *ledgerObservation) failExec(duration time.Duration) {
	o.ledger.recordDurationMetrics(o.ctx, metricLedgerWriteDuration, duration, o.operation, statusError)
	o.ledger.recordErrorMetrics(o.ctx, o.operation, errorTypeExec)
	o.finishSpanError(errorTypeExec)
}

// failConflict reports a write rejected by an exclusivity guard. Conflicts are
// counted separately from database errors since they are expected behavior.
func (o *ledgerObservation) failConflict(conflictType string) {
	o.ledger.incrementCounterMetrics(o.ctx, metricWriteConflicts, map[string]string{
		spanAttrOperation:    o.operation,
		spanAttrConflictType: conflictType,
	})

	o.ledger.finishSpan(o.span, statusError, map[string]string{spanAttrConflictType: conflictType})
}

// succeedRead completes a read operation: summary log, duration and record
// count metrics, and the span.
func (o *ledgerObservation) succeedRead(recordCount int) {
	o.ledger.logOperationDual(o.ctx, o.operation,
		logAttrRecordCount, recordCount,
		logAttrDurationMS, toMilliseconds(o.readDuration))

	o.ledger.recordDurationMetrics(o.ctx, metricLedgerQueryDuration, o.readDuration, o.operation, statusSuccess)
	o.ledger.recordValueMetrics(o.ctx, metricRecordsRead, float64(recordCount), o.operation, statusSuccess)

	o.ledger.finishSpan(o.span, statusSuccess, map[string]string{
		spanAttrRecordCount: fmt.Sprintf("%d", recordCount),
	})
}

// succeedWrite completes a write operation: summary log, duration metrics, and the span.
func (o *ledgerObservation) succeedWrite(rowsAffected int64) {
	o.ledger.logOperationDual(o.ctx, o.operation,
		logAttrRowsAffected, rowsAffected,
		logAttrDurationMS, toMilliseconds(o.writeDuration))

	o.ledger.recordDurationMetrics(o.ctx, metricLedgerWriteDuration, o.writeDuration, o.operation, statusSuccess)

	o.ledger.finishSpan(o.span, statusSuccess, map[string]string{
		spanAttrRowsAffected: fmt.Sprintf("%d", rowsAffected),
	})
}

func (o *ledgerObservation) finishSpanError(errorType string) {
	o.ledger.finishSpan(o.span, statusError, map[string]string{spanAttrErrorType: errorType})
}

// finishSpan finishes a tracing span if the tracing collector is configured.
func (l CheckoutLedger) finishSpan(span SpanContext, status string, attrs map[string]string) {
	if l.tracingCollector != nil && span != nil {
		l.tracingCollector.FinishSpan(span, status, attrs)
	}
}

// logQueryWithDurationDual logs SQL queries with execution time at debug level,
// preferring the contextual logger when configured.
func (l CheckoutLedger) logQueryWithDurationDual(
	ctx context.Context,
	sqlQuery string,
	action string,
	duration time.Duration,
) {
	if l.contextualLogger != nil {
		l.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action,
			logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
		return
	}

	if l.logger != nil {
		l.logger.Debug(logMsgSQLExecuted+action,
			logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperationDual logs operational information at info level,
// preferring the contextual logger when configured.
func (l CheckoutLedger) logOperationDual(ctx context.Context, action string, args ...any) {
	if l.contextualLogger != nil {
		l.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
		return
	}

	if l.logger != nil {
		l.logger.Info(logMsgOperation+action, args...)
	}
}

// logWarnDual logs warnings, preferring the contextual logger when configured.
func (l CheckoutLedger) logWarnDual(ctx context.Context, msg string, args ...any) {
	if l.contextualLogger != nil {
		l.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if l.logger != nil {
		l.logger.Warn(msg, args...)
	}
}

// logErrorDual logs error information, preferring the contextual logger when configured.
func (l CheckoutLedger) logErrorDual(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if l.contextualLogger != nil {
		l.contextualLogger.ErrorContext(ctx, message, allArgs...)
		return
	}

	if l.logger != nil {
		l.logger.Error(message, allArgs...)
	}
}

// logError logs error information at the error level if the logger is configured.
func (l CheckoutLedger) logError(message string, err error, args ...any) {
	if l.logger != nil {
		allArgs := []any{logAttrError, err.Error()}
		allArgs = append(allArgs, args...)
		l.logger.Error(message, allArgs...)
	}
}

// recordErrorMetrics records error metrics if the metrics collector is configured.
func (l CheckoutLedger) recordErrorMetrics(ctx context.Context, operation, errorType string) {
	if l.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		spanAttrStatus:    statusError,
		spanAttrErrorType: errorType,
	}

	l.incrementCounterMetrics(ctx, metricLedgerErrors, labels)
}

// recordDurationMetrics records duration metrics, using the context-aware
// collector method when available.
func (l CheckoutLedger) recordDurationMetrics(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	operation, status string,
) {
	if l.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		spanAttrStatus:    status,
	}

	if contextualCollector, ok := l.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricName, duration, labels)
	} else {
		l.metricsCollector.RecordDuration(metricName, duration, labels)
	}
}

// recordValueMetrics records value metrics, using the context-aware collector
// method when available.
func (l CheckoutLedger) recordValueMetrics(
	ctx context.Context,
	metricName string,
	value float64,
	operation, status string,
) {
	if l.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		spanAttrStatus:    status,
	}

	if contextualCollector, ok := l.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metricName, value, labels)
	} else {
		l.metricsCollector.RecordValue(metricName, value, labels)
	}
}

// incrementCounterMetrics increments a counter, using the context-aware
// collector method when available.
func (l CheckoutLedger) incrementCounterMetrics(ctx context.Context, metricName string, labels map[string]string) {
	if l.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := l.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricName, labels)
	} else {
		l.metricsCollector.IncrementCounter(metricName, labels)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
