package flow

import (
	"context"
	"time"
)

type deadlineKey struct{}

// WithDeadline attaches the run deadline to ctx. Unlike context.WithDeadline
// it cancels nothing.
func WithDeadline(ctx context.Context, t time.Time) context.Context {
	if t.IsZero() {
		return ctx
	}
	return context.WithValue(ctx, deadlineKey{}, t)
}

// Deadline returns the run deadline, if one is set.
func Deadline(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(deadlineKey{}).(time.Time)
	return t, ok
}

// Expired reports whether the run deadline has passed.
func Expired(ctx context.Context) bool {
	t, ok := Deadline(ctx)
	return ok && !time.Now().Before(t)
}
