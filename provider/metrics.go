package provider

import (
	"context"
	"time"

	"github.com/kbukum/jsonflow/observability"
)

// WithMetrics returns a Middleware that records one model request per
// Execute call. classify maps a failure to its cause label; nil records
// every failure as "error".
func WithMetrics[I, O any](metrics *observability.Metrics, classify func(error) string) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &metricsRR[I, O]{inner: inner, metrics: metrics, classify: classify}
	}
}

type metricsRR[I, O any] struct {
	inner    RequestResponse[I, O]
	metrics  *observability.Metrics
	classify func(error) string
}

func (m *metricsRR[I, O]) Name() string                         { return m.inner.Name() }
func (m *metricsRR[I, O]) IsAvailable(ctx context.Context) bool { return m.inner.IsAvailable(ctx) }

func (m *metricsRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	start := time.Now()
	output, err := m.inner.Execute(ctx, input)

	cause := ""
	if err != nil {
		cause = "error"
		if m.classify != nil {
			cause = m.classify(err)
		}
	}
	m.metrics.RecordModelRequest(ctx, m.inner.Name(), cause, time.Since(start))

	return output, err
}
