package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kapu/messenger-api-go/pkg/errors"
	"github.com/kapu/messenger-api-go/pkg/naming"
)

// Empty is the body type of endpoints that answer without a payload.
type Empty struct{}

// Response is a decoded 2xx answer.
type Response[T any] struct {
	StatusCode int
	Header     http.Header
	Body       T
}

// Call is a prepared request that has not been sent. It can be executed any
// number of times.
type Call[T any] struct {
	client *Client
	method string
	path   string
	query  url.Values
	body   any
	err    error
}

func newCall[T any](c *Client, method, path string, query url.Values, body any) *Call[T] {
	return &Call[T]{
		client: c,
		method: method,
		path:   path,
		query:  query,
		body:   body,
	}
}

// failedCall carries an error found while building the request; executing it
// returns that error without touching the network.
func failedCall[T any](c *Client, err error) *Call[T] {
	return &Call[T]{client: c, err: err}
}

// URL is the absolute request URL, or "" for a call that failed to build.
func (call *Call[T]) URL() string {
	if call.err != nil {
		return ""
	}
	return call.client.resolve(call.path, call.query)
}

// Execute sends the request on the calling goroutine.
func (call *Call[T]) Execute(ctx context.Context) (*Response[T], error) {
	if call.err != nil {
		return nil, call.err
	}

	raw, err := call.client.doRequest(ctx, call.method, call.path, call.query, call.body)
	if err != nil {
		return nil, err
	}

	resp := &Response[T]{
		StatusCode: raw.statusCode,
		Header:     raw.header,
	}

	if _, empty := any(resp.Body).(Empty); empty || len(raw.body) == 0 {
		return resp, nil
	}

	if err := naming.JSON().Unmarshal(raw.body, &resp.Body); err != nil {
		return nil, errors.NewAPIError("failed to decode response", errors.KindDecode, raw.statusCode, map[string]any{
			"url": call.URL(),
		}).WithCause(err)
	}

	return resp, nil
}

// Enqueue sends the request on its own goroutine and hands the outcome to
// callback from that goroutine.
func (call *Call[T]) Enqueue(ctx context.Context, callback func(*Response[T], error)) {
	go func() {
		callback(call.Execute(ctx))
	}()
}

// Await is the synchronous adapter: it blocks until the call completes and
// unwraps the response to its body. Failures come back as *errors.APIError
// with the underlying cause attached.
func Await[T any](ctx context.Context, call *Call[T]) (T, error) {
	resp, err := call.Execute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return resp.Body, nil
}
