package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Task is the completion token for one request. It resolves exactly once,
// either with a *Response or with an error; success and failure are mutually
// exclusive.
type Task struct {
	handle Handle

	once sync.Once
	done chan struct{}
	resp *Response
	err  error
}

// Send starts the request described by opts and returns its Task immediately.
// The network operation runs in the background; Send never blocks on I/O and
// never panics on bad input. Synchronous setup failures (invalid options, a
// body that cannot be encoded, a transport that refuses to open) resolve the
// returned Task with the error.
func Send(opts Options) *Task {
	return SendWith(defaultTransport, opts)
}

// SendWith is Send over an explicit transport, for tests and custom stacks.
func SendWith(transport Transport, opts Options) *Task {
	opts = opts.withDefaults()
	task := &Task{done: make(chan struct{})}
	task.handle = transport.NewHandle()

	if err := opts.validate(); err != nil {
		return task.reject(err)
	}
	if err := task.handle.Open(opts.Method, opts.URL); err != nil {
		return task.reject(err)
	}

	task.handle.SetTimeout(opts.Timeout)
	task.handle.SetWithCredentials(opts.WithCredentials)
	if opts.Kind != KindJSON {
		// Non-default kinds are decoded by the transport itself.
		task.handle.SetKind(opts.Kind)
	}
	for name, value := range opts.Headers {
		task.handle.SetHeader(name, value)
	}

	body, err := encodeBody(opts)
	if err != nil {
		return task.reject(err)
	}
	events, err := task.handle.Send(body)
	if err != nil {
		return task.reject(err)
	}

	go task.consume(events, opts)
	return task
}

// Done is closed once the task has resolved.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Result returns the outcome. It must only be called after Done is closed.
func (t *Task) Result() (*Response, error) {
	return t.resp, t.err
}

// Wait blocks until the task resolves or ctx is cancelled. Cancelling ctx
// stops the wait, not the exchange; use Abort for that.
func (t *Task) Wait(ctx context.Context) (*Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
		return t.resp, t.err
	}
}

// Handle exposes the raw transport handle, e.g. to abort the exchange from
// another goroutine.
func (t *Task) Handle() Handle {
	return t.handle
}

// Abort cancels the in-flight exchange. The task resolves with ErrAborted.
func (t *Task) Abort() {
	t.handle.Abort()
}

func (t *Task) resolve(resp *Response) {
	t.once.Do(func() {
		t.resp = resp
		close(t.done)
	})
}

func (t *Task) reject(err error) *Task {
	t.once.Do(func() {
		t.err = err
		close(t.done)
	})
	return t
}

// consume drains the event stream, forwarding streaming notifications to the
// caller's callbacks and turning the terminal event into the task's outcome.
func (t *Task) consume(events <-chan Event, opts Options) {
	var seen int
	for ev := range events {
		switch ev := ev.(type) {
		case ChunkEvent:
			increment := ""
			if len(ev.Text) > seen {
				increment = ev.Text[seen:]
				seen = len(ev.Text)
			}
			if opts.OnChunk != nil {
				notifyChunk(opts.OnChunk, increment)
			}
		case ProgressEvent:
			if opts.OnProgress != nil {
				opts.OnProgress(ev.Loaded, ev.Total)
			}
		case DoneEvent:
			t.finish(ev, opts.Kind)
		case FailedEvent:
			t.reject(ev.Err)
		}
	}
}

// finish routes a completed exchange: 2xx resolves with a Response, anything
// else rejects with a StatusError.
func (t *Task) finish(ev DoneEvent, kind Kind) {
	headers := ParseRawHeaders(ev.RawHeaders)
	if ev.Status < 200 || ev.Status >= 300 {
		t.reject(&StatusError{
			StatusCode: ev.Status,
			Status:     ev.StatusText,
			RawBody:    ev.RawText,
			Headers:    headers,
		})
		return
	}
	t.resolve(&Response{
		StatusCode: ev.Status,
		Headers:    headers,
		Body:       decodeBody(kind, ev.Body),
		RawBody:    ev.RawText,
		Handle:     t.handle,
	})
}

// notifyChunk shields the request from a panicking chunk callback. The panic
// is contained here and only here; nothing else swallows caller errors.
func notifyChunk(fn func(string), chunk string) {
	defer func() {
		_ = recover()
	}()
	fn(chunk)
}

// encodeBody prepares the request body. A structured value is JSON-encoded
// only when a content-type header declares a JSON media type; otherwise it is
// sent in its string form. Strings, byte slices and readers pass through
// untouched, and nil means no body at all.
func encodeBody(opts Options) (io.Reader, error) {
	switch body := opts.Body.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.NewReader(body), nil
	case []byte:
		return bytes.NewReader(body), nil
	case io.Reader:
		return body, nil
	default:
		if !declaresJSON(opts.Headers) {
			return strings.NewReader(fmt.Sprint(body)), nil
		}
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("fetch: encoding request body: %w", err)
		}
		return bytes.NewReader(encoded), nil
	}
}

// declaresJSON reports whether a content-type header, matched
// case-insensitively on the key, names a JSON media type.
func declaresJSON(headers map[string]string) bool {
	for name, value := range headers {
		if strings.EqualFold(name, "Content-Type") {
			return strings.Contains(strings.ToLower(value), "json")
		}
	}
	return false
}
