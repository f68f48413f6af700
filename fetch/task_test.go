package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHandle is a scripted transport handle: Send replays the configured
// events and records everything the task configured on it.
type fakeHandle struct {
	method  string
	url     string
	timeout time.Duration
	creds   bool
	kind    Kind
	kindSet bool
	headers []headerField
	body    string
	aborted bool

	openErr error
	sendErr error
	script  []Event
}

func (h *fakeHandle) Open(method, url string) error {
	if h.openErr != nil {
		return h.openErr
	}
	h.method = method
	h.url = url
	return nil
}

func (h *fakeHandle) SetTimeout(d time.Duration) { h.timeout = d }
func (h *fakeHandle) SetWithCredentials(on bool) { h.creds = on }

func (h *fakeHandle) SetKind(k Kind) {
	h.kind = k
	h.kindSet = true
}

func (h *fakeHandle) SetHeader(name, value string) {
	h.headers = append(h.headers, headerField{name: name, value: value})
}

func (h *fakeHandle) Send(body io.Reader) (<-chan Event, error) {
	if h.sendErr != nil {
		return nil, h.sendErr
	}
	if body != nil {
		data, _ := io.ReadAll(body)
		h.body = string(data)
	}
	events := make(chan Event, len(h.script))
	for _, ev := range h.script {
		events <- ev
	}
	close(events)
	return events, nil
}

func (h *fakeHandle) Abort() { h.aborted = true }

type fakeTransport struct {
	handle *fakeHandle
}

func (t *fakeTransport) NewHandle() Handle { return t.handle }

// scripted builds a transport whose single handle replays the given events.
func scripted(events ...Event) *fakeTransport {
	return &fakeTransport{handle: &fakeHandle{script: events}}
}

func doneEvent(status int, body string) DoneEvent {
	return DoneEvent{
		Status:     status,
		StatusText: "Whatever",
		RawHeaders: "Content-Type: application/json\r\n",
		Body:       RawPayload(body),
		RawText:    body,
	}
}

func TestSend_JSONResponse(t *testing.T) {
	transport := scripted(doneEvent(200, `{"message":"ok","count":2}`))

	resp, err := SendWith(transport, Options{URL: "http://example.com"}).Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, map[string]any{"message": "ok", "count": float64(2)}, resp.Body)
	assert.Equal(t, "application/json", resp.Header("Content-Type"))
	assert.NotNil(t, resp.Handle)
}

func TestSend_StatusRouting(t *testing.T) {
	for _, status := range []int{200, 201, 204, 299} {
		resp, err := SendWith(scripted(doneEvent(status, "{}")), Options{URL: "http://example.com"}).Wait(context.Background())
		require.NoError(t, err, "status %d", status)
		assert.Equal(t, status, resp.StatusCode)
	}

	for _, status := range []int{199, 301, 404, 500} {
		_, err := SendWith(scripted(doneEvent(status, `{"error":"nope"}`)), Options{URL: "http://example.com"}).Wait(context.Background())
		require.Error(t, err, "status %d", status)

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr, "status %d", status)
		assert.Equal(t, status, statusErr.StatusCode)
		assert.Equal(t, `{"error":"nope"}`, statusErr.RawBody)
		assert.Equal(t, "application/json", statusErr.Headers["content-type"])
	}
}

func TestSend_ChunkIncrements(t *testing.T) {
	transport := scripted(
		ChunkEvent{Text: "he"},
		ChunkEvent{Text: "hell"},
		ChunkEvent{Text: "hello world"},
		DoneEvent{Status: 200, Body: RawPayload("hello world"), RawText: "hello world"},
	)

	var chunks []string
	task := SendWith(transport, Options{
		URL:     "http://example.com",
		Kind:    KindText,
		OnChunk: func(chunk string) { chunks = append(chunks, chunk) },
	})

	resp, err := task.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"he", "ll", "o world"}, chunks)

	// Increments concatenate exactly to the final raw body.
	var rebuilt string
	for _, c := range chunks {
		rebuilt += c
	}
	assert.Equal(t, resp.RawBody, rebuilt)
}

func TestSend_ChunkCallbackPanicIsContained(t *testing.T) {
	transport := scripted(
		ChunkEvent{Text: "data"},
		doneEvent(200, `"done"`),
	)

	task := SendWith(transport, Options{
		URL:     "http://example.com",
		OnChunk: func(string) { panic("callback exploded") },
	})

	resp, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Body)
}

func TestSend_ProgressForwarded(t *testing.T) {
	transport := scripted(
		ProgressEvent{Loaded: 5, Total: 10},
		ProgressEvent{Loaded: 10, Total: 10},
		doneEvent(200, "{}"),
	)

	var loaded, total []int64
	task := SendWith(transport, Options{
		URL: "http://example.com",
		OnProgress: func(l, t int64) {
			loaded = append(loaded, l)
			total = append(total, t)
		},
	})

	_, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 10}, loaded)
	assert.Equal(t, []int64{10, 10}, total)
}

func TestSend_TransportFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"timeout", ErrTimeout},
		{"abort", ErrAborted},
		{"network", &NetworkError{URL: "http://example.com", Err: errors.New("connection refused")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			transport := scripted(FailedEvent{Err: tc.err})

			_, err := SendWith(transport, Options{URL: "http://example.com"}).Wait(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.err)

			// Transport failures never wear the envelope shape.
			var statusErr *StatusError
			assert.False(t, errors.As(err, &statusErr))
		})
	}
}

func TestSend_SetupFailures(t *testing.T) {
	t.Run("missing url", func(t *testing.T) {
		_, err := SendWith(scripted(), Options{}).Wait(context.Background())
		assert.Error(t, err)
	})

	t.Run("negative timeout", func(t *testing.T) {
		_, err := SendWith(scripted(), Options{URL: "http://example.com", Timeout: -time.Second}).Wait(context.Background())
		assert.Error(t, err)
	})

	t.Run("open error", func(t *testing.T) {
		transport := &fakeTransport{handle: &fakeHandle{openErr: errors.New("bad handle")}}
		_, err := SendWith(transport, Options{URL: "http://example.com"}).Wait(context.Background())
		assert.EqualError(t, err, "bad handle")
	})

	t.Run("send error", func(t *testing.T) {
		transport := &fakeTransport{handle: &fakeHandle{sendErr: errors.New("cannot send")}}
		_, err := SendWith(transport, Options{URL: "http://example.com"}).Wait(context.Background())
		assert.EqualError(t, err, "cannot send")
	})
}

func TestSend_Defaults(t *testing.T) {
	transport := scripted(doneEvent(200, "{}"))

	_, err := SendWith(transport, Options{URL: "http://example.com"}).Wait(context.Background())
	require.NoError(t, err)

	handle := transport.handle
	assert.Equal(t, "GET", handle.method)
	assert.Equal(t, DefaultTimeout, handle.timeout)
	// The default JSON kind leaves decoding to the task; the transport's
	// native mode is never touched.
	assert.False(t, handle.kindSet)
}

func TestSend_NonDefaultKindSetOnTransport(t *testing.T) {
	transport := scripted(DoneEvent{Status: 200, Body: DecodedPayload("plain"), RawText: "plain"})

	resp, err := SendWith(transport, Options{URL: "http://example.com", Kind: KindText}).Wait(context.Background())
	require.NoError(t, err)

	assert.True(t, transport.handle.kindSet)
	assert.Equal(t, KindText, transport.handle.kind)
	assert.Equal(t, "plain", resp.Body)
}

func TestSend_HeadersWrittenVerbatim(t *testing.T) {
	transport := scripted(doneEvent(200, "{}"))

	_, err := SendWith(transport, Options{
		URL:     "http://example.com",
		Headers: map[string]string{"X-CuStOm": "kept"},
	}).Wait(context.Background())
	require.NoError(t, err)

	require.Len(t, transport.handle.headers, 1)
	assert.Equal(t, "X-CuStOm", transport.handle.headers[0].name)
	assert.Equal(t, "kept", transport.handle.headers[0].value)
}

func TestSend_BodyEncoding(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("structured with json content type", func(t *testing.T) {
		transport := scripted(doneEvent(200, "{}"))
		_, err := SendWith(transport, Options{
			Method:  "POST",
			URL:     "http://example.com",
			Headers: map[string]string{"content-TYPE": "application/json"},
			Body:    payload{Name: "a"},
		}).Wait(context.Background())
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"a"}`, transport.handle.body)
	})

	t.Run("structured without json content type", func(t *testing.T) {
		transport := scripted(doneEvent(200, "{}"))
		_, err := SendWith(transport, Options{
			Method: "POST",
			URL:    "http://example.com",
			Body:   payload{Name: "a"},
		}).Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprint(payload{Name: "a"}), transport.handle.body)
	})

	t.Run("string passes through", func(t *testing.T) {
		transport := scripted(doneEvent(200, "{}"))
		_, err := SendWith(transport, Options{
			Method: "POST",
			URL:    "http://example.com",
			Body:   "raw text",
		}).Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "raw text", transport.handle.body)
	})

	t.Run("nil sends no body", func(t *testing.T) {
		transport := scripted(doneEvent(200, "{}"))
		_, err := SendWith(transport, Options{URL: "http://example.com"}).Wait(context.Background())
		require.NoError(t, err)
		assert.Empty(t, transport.handle.body)
	})
}

func TestSend_EmptyJSONBodyDecodesToNil(t *testing.T) {
	transport := scripted(doneEvent(200, ""))

	resp, err := SendWith(transport, Options{URL: "http://example.com"}).Wait(context.Background())
	require.NoError(t, err)
	assert.Nil(t, resp.Body)
}

func TestSend_InvalidJSONFallsBackToRaw(t *testing.T) {
	transport := scripted(doneEvent(200, "not json at all"))

	resp, err := SendWith(transport, Options{URL: "http://example.com"}).Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "not json at all", resp.Body)
}

func TestTask_WaitHonoursContext(t *testing.T) {
	// An event stream that never terminates.
	hang := make(chan Event)
	task := &Task{handle: &fakeHandle{}, done: make(chan struct{})}
	go task.consume(hang, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := task.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(hang)
}

func TestParseKind(t *testing.T) {
	for input, want := range map[string]Kind{"": KindJSON, "json": KindJSON, "TEXT": KindText, "binary": KindBinary} {
		got, err := ParseKind(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseKind("xml")
	assert.Error(t, err)
}
