package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/jsonflow/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Debug("meter initialized", logger.Fields(
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the jsonflow metric instruments.
type Metrics struct {
	recordsTotal         metric.Int64Counter
	recordDuration       metric.Float64Histogram
	modelRequestsTotal   metric.Int64Counter
	modelRequestDuration metric.Float64Histogram
	modelRetriesTotal    metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	recordsTotal, err := meter.Int64Counter("jsonflow.records.total",
		metric.WithDescription("Records processed, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jsonflow.records.total counter: %w", err)
	}

	recordDuration, err := meter.Float64Histogram("jsonflow.record.duration",
		metric.WithDescription("Time to run one record through the pipeline"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jsonflow.record.duration histogram: %w", err)
	}

	modelRequestsTotal, err := meter.Int64Counter("jsonflow.model.requests.total",
		metric.WithDescription("Model endpoint requests, one per attempt"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jsonflow.model.requests.total counter: %w", err)
	}

	modelRequestDuration, err := meter.Float64Histogram("jsonflow.model.request.duration",
		metric.WithDescription("Duration of one model endpoint request"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jsonflow.model.request.duration histogram: %w", err)
	}

	modelRetriesTotal, err := meter.Int64Counter("jsonflow.model.retries.total",
		metric.WithDescription("Model request retries scheduled"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jsonflow.model.retries.total counter: %w", err)
	}

	return &Metrics{
		recordsTotal:         recordsTotal,
		recordDuration:       recordDuration,
		modelRequestsTotal:   modelRequestsTotal,
		modelRequestDuration: modelRequestDuration,
		modelRetriesTotal:    modelRetriesTotal,
	}, nil
}

// DefaultMetrics creates instruments on the global meter provider.
func DefaultMetrics() *Metrics {
	m, err := NewMetrics(Meter(defaultTracerName))
	if err != nil {
		logger.Warn("metrics disabled", logger.Fields(logger.FieldError, err.Error()))
		return nil
	}
	return m
}

// RecordOutcome records one finished record. kind is empty on success.
// A nil receiver is a no-op.
func (m *Metrics) RecordOutcome(ctx context.Context, kind string, duration time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if kind != "" {
		status = "failure"
	}
	m.recordsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
		attribute.String("error_kind", kind),
	))
	m.recordDuration.Record(ctx, duration.Seconds())
}

// RecordModelRequest records one model request attempt. cause is empty on success.
func (m *Metrics) RecordModelRequest(ctx context.Context, provider, cause string, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if cause != "" {
		status = "error"
	}
	m.modelRequestsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
		attribute.String("cause", cause),
	))
	m.modelRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("provider", provider),
	))
}

// RecordRetry records a scheduled retry.
func (m *Metrics) RecordRetry(ctx context.Context, provider, cause string) {
	if m == nil {
		return
	}
	m.modelRetriesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("cause", cause),
	))
}
