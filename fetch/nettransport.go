package fetch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// readChunkSize is the buffer size for streaming body reads. Each filled
// buffer produces one chunk and one progress event.
const readChunkSize = 32 * 1024

// NetTransport creates Handles backed by net/http. The zero value is ready to
// use and shares one underlying client (and, for credentialed exchanges, one
// cookie jar) across all handles.
type NetTransport struct {
	// Client is the base client. Nil uses http.DefaultClient. Per-exchange
	// timeouts are applied through the request context, not Client.Timeout.
	Client *http.Client

	mu         sync.Mutex
	credClient *http.Client
}

// defaultTransport backs Send.
var defaultTransport = &NetTransport{}

// NewHandle returns an unopened handle.
func (t *NetTransport) NewHandle() Handle {
	return &netHandle{transport: t, kind: KindJSON}
}

// client returns the shared client for the requested credentials mode. The
// credentialed variant carries a lazily created cookie jar.
func (t *NetTransport) client(credentialed bool) *http.Client {
	base := t.Client
	if base == nil {
		base = http.DefaultClient
	}
	if !credentialed {
		return base
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.credClient == nil {
		jar, _ := cookiejar.New(nil)
		clone := *base
		clone.Jar = jar
		t.credClient = &clone
	}
	return t.credClient
}

// headerField keeps request headers in the order they were set, names verbatim.
type headerField struct {
	name  string
	value string
}

type netHandle struct {
	transport *NetTransport

	method  string
	url     string
	timeout time.Duration
	creds   bool
	kind    Kind
	headers []headerField
	opened  bool

	mu      sync.Mutex
	aborted bool
	cancel  context.CancelFunc
}

func (h *netHandle) Open(method, url string) error {
	if url == "" {
		return errors.New("fetch: open requires a url")
	}
	h.method = method
	h.url = url
	h.opened = true
	return nil
}

func (h *netHandle) SetTimeout(d time.Duration) { h.timeout = d }
func (h *netHandle) SetWithCredentials(on bool) { h.creds = on }
func (h *netHandle) SetKind(k Kind)             { h.kind = k }

func (h *netHandle) SetHeader(name, value string) {
	h.headers = append(h.headers, headerField{name: name, value: value})
}

func (h *netHandle) Send(body io.Reader) (<-chan Event, error) {
	if !h.opened {
		return nil, errors.New("fetch: send before open")
	}

	ctx := context.Background()
	var cancel context.CancelFunc
	if h.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	req, err := http.NewRequestWithContext(ctx, h.method, h.url, body)
	if err != nil {
		cancel()
		return nil, err
	}
	for _, f := range h.headers {
		req.Header.Add(f.name, f.value)
	}

	h.mu.Lock()
	h.cancel = cancel
	aborted := h.aborted
	h.mu.Unlock()
	if aborted {
		// Abort raced ahead of Send; cancel before any I/O happens.
		cancel()
	}

	events := make(chan Event, 4)
	go h.run(req, events)
	return events, nil
}

func (h *netHandle) Abort() {
	h.mu.Lock()
	h.aborted = true
	cancel := h.cancel
	h.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (h *netHandle) isAborted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.aborted
}

// run performs the exchange and feeds the event stream. It always delivers
// exactly one terminal event and then closes the channel.
func (h *netHandle) run(req *http.Request, events chan<- Event) {
	defer close(events)

	resp, err := h.transport.client(h.creds).Do(req)
	if err != nil {
		events <- FailedEvent{Err: h.classify(err)}
		return
	}
	defer resp.Body.Close()

	total := resp.ContentLength
	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)
	for {
		n, err := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			events <- ChunkEvent{Text: buf.String()}
			events <- ProgressEvent{Loaded: int64(buf.Len()), Total: total}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			events <- FailedEvent{Err: h.classify(err)}
			return
		}
	}

	raw := buf.String()
	events <- DoneEvent{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		RawHeaders: rawHeaderBlock(resp.Header),
		Body:       h.nativePayload(raw, buf.Bytes()),
		RawText:    raw,
	}
}

// nativePayload applies the handle's decode mode. JSON decoding is left to
// the caller; text and binary are the transport's own modes.
func (h *netHandle) nativePayload(raw string, data []byte) Payload {
	switch h.kind {
	case KindText:
		return DecodedPayload(raw)
	case KindBinary:
		return DecodedPayload(append([]byte(nil), data...))
	default:
		return RawPayload(raw)
	}
}

// classify maps a transport error onto the three failure shapes: abort wins
// over timeout, timeout over plain network failure.
func (h *netHandle) classify(err error) error {
	if h.isAborted() {
		return ErrAborted
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return &NetworkError{URL: h.url, Err: err}
}

// statusText extracts the reason phrase from a response, falling back to the
// standard phrase for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// rawHeaderBlock flattens response headers into "Name: value" lines, names as
// received. Keys are sorted so the block is deterministic.
func rawHeaderBlock(header http.Header) string {
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		for _, value := range header[name] {
			sb.WriteString(name)
			sb.WriteString(": ")
			sb.WriteString(value)
			sb.WriteString("\r\n")
		}
	}
	return sb.String()
}
