package provider

import "context"

// RequestResponse represents a provider that takes one input and returns one output.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}

// Func adapts a plain function to RequestResponse. It is always available.
type Func[I, O any] struct {
	ProviderName string
	Fn           func(ctx context.Context, input I) (O, error)
}

// Name returns ProviderName, or "func" when unset.
func (f Func[I, O]) Name() string {
	if f.ProviderName == "" {
		return "func"
	}
	return f.ProviderName
}

// IsAvailable always reports true.
func (f Func[I, O]) IsAvailable(context.Context) bool { return true }

// Execute calls Fn.
func (f Func[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return f.Fn(ctx, input)
}
