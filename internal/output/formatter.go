// Package output renders requests, responses and run summaries for the CLI.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/wesleyorama2/fetchpool/fetch"
	"github.com/wesleyorama2/fetchpool/internal/metrics"
)

// Formatter renders fetch requests and responses as text.
type Formatter struct {
	Verbose bool
	NoColor bool

	scheme *ColorScheme
}

// NewFormatter creates a formatter. Verbose adds headers and raw bodies to
// the output.
func NewFormatter(verbose, noColor bool) *Formatter {
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		scheme:  NewColorScheme(noColor),
	}
}

// FormatRequest renders the request line and, in verbose mode, its headers.
func (f *Formatter) FormatRequest(opts fetch.Options) string {
	var sb strings.Builder

	method := opts.Method
	if method == "" {
		method = fetch.DefaultMethod
	}
	sb.WriteString(fmt.Sprintf("%s %s\n", f.scheme.Method.Sprint(method), f.scheme.URL.Sprint(opts.URL)))

	if f.Verbose {
		for _, name := range sortedKeys(opts.Headers) {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", f.scheme.HeaderKey.Sprint(name), f.scheme.HeaderValue.Sprint(opts.Headers[name])))
		}
	}

	return sb.String()
}

// FormatResponse renders the status line, headers in verbose mode, and the
// body pretty-printed when it is JSON.
func (f *Formatter) FormatResponse(resp *fetch.Response) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s\n", f.scheme.StatusOK.Sprintf("%d", resp.StatusCode)))

	if f.Verbose {
		for _, name := range sortedKeys(resp.Headers) {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", f.scheme.HeaderKey.Sprint(name), f.scheme.HeaderValue.Sprint(resp.Headers[name])))
		}
	}

	sb.WriteString(f.formatBody(resp.Body))
	return sb.String()
}

// FormatFailure renders either error channel: envelope failures with their
// status and server payload, transport failures with their message.
func (f *Formatter) FormatFailure(err error) string {
	var statusErr *fetch.StatusError
	if errors.As(err, &statusErr) {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%s %s\n", f.scheme.StatusError.Sprintf("%d", statusErr.StatusCode), statusErr.Status))
		if f.Verbose {
			for _, name := range sortedKeys(statusErr.Headers) {
				sb.WriteString(fmt.Sprintf("  %s: %s\n", f.scheme.HeaderKey.Sprint(name), f.scheme.HeaderValue.Sprint(statusErr.Headers[name])))
			}
		}
		if statusErr.RawBody != "" {
			sb.WriteString(statusErr.RawBody + "\n")
		}
		return sb.String()
	}
	return f.scheme.Error.Sprint(err.Error()) + "\n"
}

// FormatSummary renders a batch run's latency and outcome aggregate.
func (f *Formatter) FormatSummary(s metrics.Summary) string {
	var sb strings.Builder
	sb.WriteString("\nSummary:\n")
	sb.WriteString(fmt.Sprintf("  requests:  %d (%s %d, %s %d)\n",
		s.Total, SuccessIcon(f.NoColor), s.Succeeded, ErrorIcon(f.NoColor), s.Failed))
	sb.WriteString(fmt.Sprintf("  bytes:     %d\n", s.Bytes))
	if s.Total > 0 {
		sb.WriteString(fmt.Sprintf("  latency:   p50=%v p95=%v p99=%v max=%v\n", s.P50, s.P95, s.P99, s.Max))
	}
	return sb.String()
}

// formatBody pretty-prints decoded JSON values; everything else is printed
// as-is.
func (f *Formatter) formatBody(body any) string {
	switch body := body.(type) {
	case nil:
		return ""
	case string:
		if body == "" {
			return ""
		}
		return body + "\n"
	case []byte:
		return fmt.Sprintf("<%d bytes>\n", len(body))
	default:
		pretty, err := json.MarshalIndent(body, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v\n", body)
		}
		return string(pretty) + "\n"
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
