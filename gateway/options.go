package gateway

import (
	"context"
	"net/http"
	"time"
)

// Options describes one API call.
type Options struct {
	Method  string      // defaults to GET
	Headers http.Header // caller headers win over gateway defaults
	Body    any         // JSON-encoded unless it is already []byte
	Timeout time.Duration
}

// Requester is the surface services depend on; *Gateway implements it.
type Requester interface {
	Do(ctx context.Context, path string, opts Options, out any) error
}

// Request issues a call and decodes the JSON response into a T.
func Request[T any](ctx context.Context, r Requester, path string, opts Options) (T, error) {
	var out T
	err := r.Do(ctx, path, opts, &out)
	return out, err
}

// JSON returns Options for a method with a JSON body.
func JSON(method string, body any) Options {
	return Options{Method: method, Body: body}
}
