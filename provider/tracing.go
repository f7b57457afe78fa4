package provider

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/jsonflow/logger"
	"github.com/kbukum/jsonflow/observability"
)

// WithTracing returns a Middleware that wraps each Execute call in a
// "model.invoke" span tagged with the provider name and record id.
func WithTracing[I, O any]() Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &tracingRR[I, O]{inner: inner}
	}
}

type tracingRR[I, O any] struct {
	inner RequestResponse[I, O]
}

func (t *tracingRR[I, O]) Name() string                         { return t.inner.Name() }
func (t *tracingRR[I, O]) IsAvailable(ctx context.Context) bool { return t.inner.IsAvailable(ctx) }

func (t *tracingRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanModelInvoke,
		attribute.String(observability.AttrModel, t.inner.Name()),
		attribute.String(observability.AttrRecordID, logger.RecordIDFromContext(ctx)),
	)
	output, err := t.inner.Execute(ctx, input)
	observability.EndSpan(span, err)
	return output, err
}
