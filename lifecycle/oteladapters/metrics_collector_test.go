package oteladapters_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle/oteladapters"
)

func newTestMeter() (*sdkmetric.ManualReader, metric.Meter) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return reader, provider.Meter("test")
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	reader, meter := newTestMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	labels := map[string]string{
		"command_type": "BorrowExemplaries",
		"status":       "success",
	}

	collector.RecordDuration("commandhandler_duration_seconds", 150*time.Millisecond, labels)

	var resourceMetrics metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &resourceMetrics)
	require.NoError(t, err)

	histogram := findHistogramMetric(t, resourceMetrics, "commandhandler_duration_seconds")
	require.Len(t, histogram.DataPoints, 1)

	dataPoint := histogram.DataPoints[0]
	assert.Equal(t, uint64(1), dataPoint.Count)
	assert.InDelta(t, 0.15, dataPoint.Sum, 0.001, "durations are recorded in seconds")

	expectedAttrs := attribute.NewSet(
		attribute.String("command_type", "BorrowExemplaries"),
		attribute.String("status", "success"),
	)
	assert.True(t, dataPoint.Attributes.Equals(&expectedAttrs))
}

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	reader, meter := newTestMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	labels := map[string]string{
		"query_type": "ExemplaryStatuses",
		"status":     "success",
	}

	collector.IncrementCounter("queryhandler_calls_total", labels)
	collector.IncrementCounter("queryhandler_calls_total", labels)
	collector.IncrementCounter("queryhandler_calls_total", labels)

	var resourceMetrics metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &resourceMetrics)
	require.NoError(t, err)

	counter := findCounterMetric(t, resourceMetrics, "queryhandler_calls_total")
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(3), counter.DataPoints[0].Value)
}

func Test_MetricsCollector_RecordValue(t *testing.T) {
	reader, meter := newTestMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	collector.RecordValue("evaluation_batch_size", 42.5, map[string]string{"status": "success"})

	var resourceMetrics metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &resourceMetrics)
	require.NoError(t, err)

	gauge := findGaugeMetric(t, resourceMetrics, "evaluation_batch_size")
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, 42.5, gauge.DataPoints[0].Value)
}

func Test_MetricsCollector_ContextualMethods(t *testing.T) {
	reader, meter := newTestMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	ctx := context.Background()
	labels := map[string]string{"test": "contextual"}

	collector.RecordDurationContext(ctx, "test_duration", 100*time.Millisecond, labels)
	collector.IncrementCounterContext(ctx, "test_counter", labels)
	collector.RecordValueContext(ctx, "test_gauge", 123.45, labels)

	var resourceMetrics metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &resourceMetrics)
	require.NoError(t, err)

	metricNames := collectMetricNames(resourceMetrics)
	assert.True(t, metricNames["test_duration"])
	assert.True(t, metricNames["test_counter"])
	assert.True(t, metricNames["test_gauge"])
}

func Test_MetricsCollector_NilAndEmptyLabels(t *testing.T) {
	reader, meter := newTestMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	collector.RecordDuration("empty_labels_metric", 50*time.Millisecond, map[string]string{})
	collector.RecordDuration("nil_labels_metric", 50*time.Millisecond, nil)

	var resourceMetrics metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &resourceMetrics)
	require.NoError(t, err)

	metricNames := collectMetricNames(resourceMetrics)
	assert.True(t, metricNames["empty_labels_metric"])
	assert.True(t, metricNames["nil_labels_metric"])
}

func Test_MetricsCollector_InstrumentReuse(t *testing.T) {
	reader, meter := newTestMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	collector.RecordDuration("reused_histogram", 100*time.Millisecond, nil)
	collector.RecordDuration("reused_histogram", 200*time.Millisecond, nil)

	collector.IncrementCounter("reused_counter", nil)
	collector.IncrementCounter("reused_counter", nil)
	collector.IncrementCounter("reused_counter", nil)

	// last value wins for gauges
	collector.RecordValue("reused_gauge", 10.0, nil)
	collector.RecordValue("reused_gauge", 20.0, nil)

	var resourceMetrics metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &resourceMetrics)
	require.NoError(t, err)

	histogram := findHistogramMetric(t, resourceMetrics, "reused_histogram")
	assert.Equal(t, uint64(2), histogram.DataPoints[0].Count)

	counter := findCounterMetric(t, resourceMetrics, "reused_counter")
	assert.Equal(t, int64(3), counter.DataPoints[0].Value)

	gauge := findGaugeMetric(t, resourceMetrics, "reused_gauge")
	assert.Equal(t, 20.0, gauge.DataPoints[0].Value)
}

func Test_MetricsCollector_InstrumentCreationErrors(t *testing.T) {
	_, baseMeter := newTestMeter()
	errorMeter := &errorInjectingMeter{Meter: baseMeter}
	collector := oteladapters.NewMetricsCollector(errorMeter)

	ctx := context.Background()

	assert.NotPanics(t, func() {
		collector.RecordDuration("error_histogram", 100*time.Millisecond, nil)
		collector.IncrementCounter("error_counter", nil)
		collector.RecordValue("error_gauge", 42.0, nil)
		collector.RecordDurationContext(ctx, "error_histogram", 100*time.Millisecond, nil)
		collector.IncrementCounterContext(ctx, "error_counter", nil)
		collector.RecordValueContext(ctx, "error_gauge", 42.0, nil)
	}, "failed instrument creation should drop the measurement, not panic")
}

// errorInjectingMeter wraps a real meter but fails creation for "error_" instruments.
type errorInjectingMeter struct {
	metric.Meter
}

func (m *errorInjectingMeter) Float64Histogram(
	name string, options ...metric.Float64HistogramOption) (metric.Float64Histogram, error) {

	if name == "error_histogram" {
		return nil, errors.New("histogram creation failed")
	}

	return m.Meter.Float64Histogram(name, options...)
}

func (m *errorInjectingMeter) Int64Counter(
	name string, options ...metric.Int64CounterOption) (metric.Int64Counter, error) {

	if name == "error_counter" {
		return nil, errors.New("counter creation failed")
	}

	return m.Meter.Int64Counter(name, options...)
}

func (m *errorInjectingMeter) Float64Gauge(
	name string, options ...metric.Float64GaugeOption) (metric.Float64Gauge, error) {

	if name == "error_gauge" {
		return nil, errors.New("gauge creation failed")
	}

	return m.Meter.Float64Gauge(name, options...)
}

func collectMetricNames(resourceMetrics metricdata.ResourceMetrics) map[string]bool {
	names := make(map[string]bool)
	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			names[m.Name] = true
		}
	}

	return names
}

func findHistogramMetric(
	t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) *metricdata.Histogram[float64] {

	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				if h, ok := m.Data.(metricdata.Histogram[float64]); ok {
					return &h
				}
			}
		}
	}

	t.Fatalf("histogram metric %s not found", name)

	return nil
}

func findCounterMetric(
	t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) *metricdata.Sum[int64] {

	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				if c, ok := m.Data.(metricdata.Sum[int64]); ok {
					return &c
				}
			}
		}
	}

	t.Fatalf("counter metric %s not found", name)

	return nil
}

func findGaugeMetric(
	t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) *metricdata.Gauge[float64] {

	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				if g, ok := m.Data.(metricdata.Gauge[float64]); ok {
					return &g
				}
			}
		}
	}

	t.Fatalf("gauge metric %s not found", name)

	return nil
}
