package gatewayfake

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/jrsteele09/go-events-client/gateway"
	clienterrors "github.com/jrsteele09/go-events-client/internal/errors"
)

var _ gateway.Requester = (*FakeRequester)(nil)

// HandlerFunc answers one call. The returned value is round-tripped through
// JSON into the caller's out parameter, as the real gateway would.
type HandlerFunc func(ctx context.Context, call Call) (any, error)

// Call is a recorded request.
type Call struct {
	Method string
	Path   string
	Body   json.RawMessage
}

// FakeRequester routes calls by "METHOD path" to scripted handlers.
// Unrouted calls fail with a 404 APIError.
type FakeRequester struct {
	handlers map[string]HandlerFunc
	calls    []Call
	lock     sync.Mutex
}

func NewFakeRequester() *FakeRequester {
	return &FakeRequester{handlers: make(map[string]HandlerFunc)}
}

// Handle registers h for method and path (path includes any query string).
func (f *FakeRequester) Handle(method, path string, h HandlerFunc) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.handlers[method+" "+path] = h
}

// Respond registers a handler that always returns v.
func (f *FakeRequester) Respond(method, path string, v any) {
	f.Handle(method, path, func(context.Context, Call) (any, error) { return v, nil })
}

// Fail registers a handler that always returns err.
func (f *FakeRequester) Fail(method, path string, err error) {
	f.Handle(method, path, func(context.Context, Call) (any, error) { return nil, err })
}

func (f *FakeRequester) Do(ctx context.Context, path string, opts gateway.Options, out any) error {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	call := Call{Method: method, Path: path}
	if opts.Body != nil {
		raw, err := json.Marshal(opts.Body)
		if err != nil {
			return err
		}
		call.Body = raw
	}

	f.lock.Lock()
	f.calls = append(f.calls, call)
	h, ok := f.handlers[method+" "+path]
	f.lock.Unlock()

	if !ok {
		return &clienterrors.APIError{Status: http.StatusNotFound, Message: fmt.Sprintf("no route for %s %s", method, path)}
	}

	v, err := h(ctx, call)
	if err != nil {
		return err
	}
	if out == nil || v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// Calls returns the recorded calls in order.
func (f *FakeRequester) Calls() []Call {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount returns how many calls matched method and path.
func (f *FakeRequester) CallCount(method, path string) int {
	f.lock.Lock()
	defer f.lock.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}
