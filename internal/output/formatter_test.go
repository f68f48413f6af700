package output

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wesleyorama2/fetchpool/fetch"
	"github.com/wesleyorama2/fetchpool/internal/metrics"
)

func TestFormatRequest(t *testing.T) {
	f := NewFormatter(false, true)

	out := f.FormatRequest(fetch.Options{Method: "POST", URL: "https://example.com/users"})
	assert.Equal(t, "POST https://example.com/users\n", out)
}

func TestFormatRequest_DefaultsMethod(t *testing.T) {
	f := NewFormatter(false, true)

	out := f.FormatRequest(fetch.Options{URL: "https://example.com"})
	assert.Contains(t, out, "GET https://example.com")
}

func TestFormatRequest_VerboseHeaders(t *testing.T) {
	f := NewFormatter(true, true)

	out := f.FormatRequest(fetch.Options{
		URL:     "https://example.com",
		Headers: map[string]string{"Authorization": "Bearer x", "Accept": "application/json"},
	})
	assert.Contains(t, out, "  Accept: application/json\n")
	assert.Contains(t, out, "  Authorization: Bearer x\n")
}

func TestFormatResponse_JSONBody(t *testing.T) {
	f := NewFormatter(false, true)

	out := f.FormatResponse(&fetch.Response{
		StatusCode: 200,
		Body:       map[string]any{"ok": true},
	})
	assert.Contains(t, out, "200\n")
	assert.Contains(t, out, "\"ok\": true")
}

func TestFormatResponse_TextAndBinaryBodies(t *testing.T) {
	f := NewFormatter(false, true)

	assert.Contains(t, f.FormatResponse(&fetch.Response{StatusCode: 200, Body: "plain"}), "plain\n")
	assert.Contains(t, f.FormatResponse(&fetch.Response{StatusCode: 200, Body: []byte{1, 2, 3}}), "<3 bytes>")
	assert.Equal(t, "204\n", f.FormatResponse(&fetch.Response{StatusCode: 204}))
}

func TestFormatFailure_StatusError(t *testing.T) {
	f := NewFormatter(false, true)

	out := f.FormatFailure(&fetch.StatusError{
		StatusCode: 404,
		Status:     "Not Found",
		RawBody:    `{"error":"missing"}`,
	})
	assert.Contains(t, out, "404 Not Found")
	assert.Contains(t, out, `{"error":"missing"}`)
}

func TestFormatFailure_TransportError(t *testing.T) {
	f := NewFormatter(false, true)

	out := f.FormatFailure(errors.New("connection refused"))
	assert.Equal(t, "connection refused\n", out)
}

func TestFormatSummary(t *testing.T) {
	f := NewFormatter(false, true)

	out := f.FormatSummary(metrics.Summary{
		Total:     4,
		Succeeded: 3,
		Failed:    1,
		Bytes:     1024,
		P50:       10 * time.Millisecond,
		P95:       20 * time.Millisecond,
		P99:       25 * time.Millisecond,
		Max:       30 * time.Millisecond,
	})
	assert.Contains(t, out, "requests:  4")
	assert.Contains(t, out, "bytes:     1024")
	assert.Contains(t, out, "p50=10ms")
}
