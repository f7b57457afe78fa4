// Package httpclient is the single-attempt HTTP transport used for model
// endpoint calls.
//
// A Client sends one request per Do call and classifies the outcome into a
// typed *Error: timeout, connection, auth, rate limit, validation, server or
// decode. Retrying is left to the caller, which decides per error class using
// Error.Retryable and the Retry-After hint carried in Error.RetryAfter.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.openai.com/v1",
//	    Timeout: 30 * time.Second,
//	    Auth:    httpclient.BearerAuth(apiKey),
//	})
//
//	resp, err := httpclient.Post[json.RawMessage](ctx, client, "/chat/completions", body)
package httpclient
