package httpclient

import (
	"context"
	"net/http"

	"github.com/bytedance/sonic"
)

// PostJSON performs a POST request with a JSON body and returns the response
// body, which must be a valid JSON document. A 2xx response with an empty or
// invalid body yields an ErrCodeDecode error.
func PostJSON(ctx context.Context, c *Client, path string, body any) ([]byte, error) {
	resp, err := c.Do(ctx, Request{
		Method:  http.MethodPost,
		Path:    path,
		Body:    body,
		Headers: map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Body) == 0 {
		return nil, NewDecodeError(resp.StatusCode, nil, errEmptyBody)
	}
	if !sonic.Valid(resp.Body) {
		return nil, NewDecodeError(resp.StatusCode, resp.Body, errInvalidJSON)
	}
	return resp.Body, nil
}

// Get performs a GET request and reports only transport and status errors.
func Get(ctx context.Context, c *Client, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path})
}
