package fetch

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Defaults applied by Send when the corresponding Options field is unset.
const (
	// DefaultMethod is used when Options.Method is empty.
	DefaultMethod = "GET"

	// DefaultTimeout is used when Options.Timeout is zero.
	DefaultTimeout = 30 * time.Second
)

// Kind selects how a response body is decoded.
type Kind int

const (
	// KindJSON decodes the body as JSON. This is the default. An empty body
	// decodes to nil; a body that is not valid JSON is kept as raw text.
	KindJSON Kind = iota

	// KindText keeps the body as a string.
	KindText

	// KindBinary keeps the body as a []byte.
	KindBinary
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a configuration string to a Kind. An empty string selects
// KindJSON, the default.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return KindJSON, nil
	case "text":
		return KindText, nil
	case "binary":
		return KindBinary, nil
	default:
		return KindJSON, fmt.Errorf("fetch: unknown response kind %q", s)
	}
}

// Options describes a single request. The zero value of every field except
// URL is usable; unset fields fall back to the documented defaults.
type Options struct {
	// Method is the HTTP method. Defaults to DefaultMethod.
	Method string

	// URL is the request target. Required.
	URL string

	// Headers are written to the transport verbatim, keys as given. The one
	// place a key is matched case-insensitively is the content-type check
	// that decides whether a structured Body is JSON-encoded.
	Headers map[string]string

	// Body is the request payload: a string, []byte or io.Reader is sent as
	// given, nil sends no body, and any other value is JSON-encoded when a
	// content-type header declares a JSON media type.
	Body any

	// Timeout bounds the whole exchange. Zero selects DefaultTimeout;
	// negative values are rejected.
	Timeout time.Duration

	// WithCredentials attaches the transport's shared cookie jar to the
	// exchange. Requests without it carry no cookies.
	WithCredentials bool

	// Kind selects the response decode mode. Defaults to KindJSON.
	Kind Kind

	// OnProgress, if set, receives the transport's byte counts as they are
	// reported. Total is -1 when the response length is unknown.
	OnProgress func(loaded, total int64)

	// OnChunk, if set, receives each newly arrived increment of the response
	// body while it is streaming in. Increments never overlap and
	// concatenate to the full raw body. A panic inside the callback is
	// contained and does not fail the request.
	OnChunk func(chunk string)
}

// withDefaults returns a copy with unset fields replaced by the defaults.
func (o Options) withDefaults() Options {
	if o.Method == "" {
		o.Method = DefaultMethod
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// validate checks the option invariants before dispatch.
func (o Options) validate() error {
	if o.URL == "" {
		return errors.New("fetch: url is required")
	}
	if o.Timeout < 0 {
		return fmt.Errorf("fetch: negative timeout %v", o.Timeout)
	}
	return nil
}
