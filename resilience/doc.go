// Package resilience provides the fault-tolerance primitives used around
// remote model calls.
//
// This package includes:
//   - Retry: retries failed operations with exponential backoff and jitter,
//     honoring server wait hints and an absolute deadline
//   - Bulkhead: caps concurrent in-flight requests
//   - RateLimiter: paces request starts with a token bucket
//
// The invoker combines them per record:
//
//	resp, err := resilience.Retry(ctx, retryCfg, func() (Response, error) {
//	    if err := rl.Wait(ctx); err != nil {
//	        return Response{}, err
//	    }
//	    return resilience.ExecuteWithResult(bh, ctx, call)
//	})
package resilience
