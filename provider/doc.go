// Package provider defines the request/response abstraction jsonflow uses
// for model endpoints, plus composable middleware around it.
//
// A RequestResponse[I, O] takes one input and returns one output. The llm
// adapters implement it for completion requests; tests substitute Func.
//
// Middleware wraps a provider with cross-cutting behavior:
//
//	p := provider.Chain(
//	    provider.WithTracing[llm.CompletionRequest, llm.CompletionResponse](),
//	    provider.WithLogging[llm.CompletionRequest, llm.CompletionResponse](log),
//	    provider.WithMetrics[llm.CompletionRequest, llm.CompletionResponse](metrics, classify),
//	)(adapter)
//
// Chain(a, b, c)(p) is a(b(c(p))): the first middleware is outermost.
package provider
