package fetch

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wesleyorama2/fetchpool/pkg/jsonpath"
)

// Transport-level failures. These are deliberately plain errors, not
// envelopes: they mean no valid HTTP exchange completed, so there is no
// status, header block or body to report.
var (
	// ErrTimeout reports that the timeout expired before the exchange
	// completed.
	ErrTimeout = errors.New("fetch: request timed out")

	// ErrAborted reports that the exchange was cancelled through Abort.
	ErrAborted = errors.New("fetch: request aborted")
)

// NetworkError reports a transport failure that precedes any status line,
// such as a refused connection or a DNS failure.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch: network error for %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Response is the success envelope for one completed exchange.
type Response struct {
	// StatusCode is always in [200, 300). Any other status surfaces as a
	// *StatusError instead of a Response.
	StatusCode int

	// Headers holds the parsed response headers, names lower-cased, last
	// value winning for repeated names.
	Headers map[string]string

	// Body is decoded per the request's Kind: KindJSON yields the
	// unmarshaled value (nil for an empty body, the raw text when the body
	// is not valid JSON), KindText a string, KindBinary a []byte.
	Body any

	// RawBody is the undecoded body text.
	RawBody string

	// Handle is the transport handle the exchange ran on, for callers that
	// need direct access to it.
	Handle Handle
}

// Header returns a header value by name, case-insensitively.
func (r *Response) Header(name string) string {
	return r.Headers[strings.ToLower(name)]
}

// JSON extracts a value from the raw body using a JSONPath expression.
func (r *Response) JSON(path string) (string, error) {
	return jsonpath.Extract(r.RawBody, path)
}

// StatusError is the failure envelope for an exchange that completed with a
// non-2xx status. The server answered; the answer was an error. It carries
// the server's payload so callers can inspect it, which distinguishes it by
// shape from the transport-level failures.
type StatusError struct {
	StatusCode int
	Status     string
	RawBody    string
	Headers    map[string]string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch: server returned %d %s", e.StatusCode, e.Status)
}

// decodeBody produces the envelope body for a 2xx exchange. Decoding never
// fails the request: when the payload was left raw and is not valid JSON, the
// raw text is returned unchanged.
func decodeBody(kind Kind, payload Payload) any {
	if v, ok := payload.Decoded(); ok {
		return v
	}
	raw := payload.Raw()
	if kind != KindJSON {
		return raw
	}
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}
