package fetch

import (
	"io"
	"time"
)

// Transport creates handles for in-flight exchanges. NetTransport is the
// net/http-backed implementation used by Send; tests substitute their own.
type Transport interface {
	NewHandle() Handle
}

// Handle is one in-flight HTTP exchange. The lifecycle is: Open, configure
// with the setters, Send, then consume the event stream. Abort may be called
// at any point and terminates the stream with ErrAborted.
type Handle interface {
	// Open prepares the exchange. It must be called before any setter.
	Open(method, url string) error

	// SetTimeout bounds the whole exchange, from Send to the terminal event.
	SetTimeout(d time.Duration)

	// SetWithCredentials selects whether the exchange carries shared cookies.
	SetWithCredentials(on bool)

	// SetKind selects the transport's native decode mode for the response
	// body. Handles default to KindJSON, which leaves decoding to the caller.
	SetKind(k Kind)

	// SetHeader records a request header verbatim; the name is not
	// case-normalized.
	SetHeader(name, value string)

	// Send starts the exchange and returns its event stream. It never blocks
	// on network I/O; a non-nil error reports a synchronous setup failure.
	// The stream delivers zero or more ChunkEvent/ProgressEvent values
	// followed by exactly one terminal DoneEvent or FailedEvent, after which
	// the channel is closed.
	Send(body io.Reader) (<-chan Event, error)

	// Abort cancels the exchange.
	Abort()
}

// Event is one notification from an in-flight exchange.
type Event interface {
	event()
}

// ChunkEvent carries the cumulative response body text received so far. It
// fires while the exchange is still streaming, never after the terminal event.
type ChunkEvent struct {
	Text string
}

// ProgressEvent carries the transport's byte counts. Total is -1 when the
// response length is unknown.
type ProgressEvent struct {
	Loaded int64
	Total  int64
}

// DoneEvent is the terminal event for an exchange that produced a status
// line, whatever the status was.
type DoneEvent struct {
	Status     int
	StatusText string

	// RawHeaders is the raw response header block, one "Name: value" line
	// per header. Parse with ParseRawHeaders.
	RawHeaders string

	// Body is the transport's view of the response body.
	Body Payload

	// RawText is the undecoded body text.
	RawText string
}

// FailedEvent is the terminal event when no HTTP exchange completed. Err is
// ErrTimeout, ErrAborted or a *NetworkError.
type FailedEvent struct {
	Err error
}

func (ChunkEvent) event()    {}
func (ProgressEvent) event() {}
func (DoneEvent) event()     {}
func (FailedEvent) event()   {}

// Payload is the transport's view of a response body: either a value the
// transport decoded natively, or raw text left for the caller to decode.
type Payload struct {
	decoded bool
	value   any
	raw     string
}

// DecodedPayload wraps a value the transport decoded itself.
func DecodedPayload(v any) Payload {
	return Payload{decoded: true, value: v}
}

// RawPayload wraps body text the transport left undecoded.
func RawPayload(text string) Payload {
	return Payload{raw: text}
}

// Decoded returns the natively decoded value, if the transport produced one.
func (p Payload) Decoded() (any, bool) {
	return p.value, p.decoded
}

// Raw returns the undecoded body text. It is empty for decoded payloads.
func (p Payload) Raw() string {
	return p.raw
}
