// Package config parses and validates batch files for the fetchpool CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Batch is the root of a batch file: a set of named requests to run through
// the pool, plus run-wide settings.
type Batch struct {
	// Concurrency is the pool's slot count. Zero uses the pool default.
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`

	// Timeout is the default request timeout, overridable per request.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Requests run concurrently through the pool, admitted in file order.
	Requests []Request `json:"requests" yaml:"requests"`
}

// Request describes one request in a batch.
type Request struct {
	// Name identifies the request in output. Defaults to the URL.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Method defaults to GET.
	Method string `json:"method,omitempty" yaml:"method,omitempty"`

	// URL is required.
	URL string `json:"url" yaml:"url"`

	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Body is sent as given; maps and lists are JSON-encoded when a JSON
	// content-type header is present.
	Body any `json:"body,omitempty" yaml:"body,omitempty"`

	// Timeout overrides the batch default for this request.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Kind is the response decode mode: json (default), text or binary.
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`

	// WithCredentials shares cookies with other credentialed requests.
	WithCredentials bool `json:"withCredentials,omitempty" yaml:"withCredentials,omitempty"`

	// Extract maps variable names to JSONPath expressions evaluated against
	// the response body.
	Extract map[string]string `json:"extract,omitempty" yaml:"extract,omitempty"`

	// Validate is an inline JSON Schema the response body must satisfy.
	Validate map[string]any `json:"validate,omitempty" yaml:"validate,omitempty"`
}

// DisplayName returns the request's name, falling back to its URL.
func (r Request) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.URL
}

// Duration wraps time.Duration with YAML/JSON decoding from strings like
// "30s" or bare integers meaning seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := parseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Bare numbers are seconds.
		s = strings.TrimSpace(string(data))
	}
	parsed, err := parseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// parseDuration accepts Go duration syntax ("30s", "1m30s") and bare
// integers, which are treated as seconds.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	var seconds int
	if _, err := fmt.Sscanf(s, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return 0, fmt.Errorf("invalid duration %q", s)
}

// Load reads and parses a batch file. The format follows the extension:
// .json is JSON, everything else is YAML.
func Load(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}
	return Parse(data, path)
}

// Parse parses batch file data. The path is only consulted for its extension.
func Parse(data []byte, path string) (*Batch, error) {
	var batch Batch
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("parsing JSON batch file: %w", err)
		}
		return &batch, nil
	}
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parsing YAML batch file: %w", err)
	}
	return &batch, nil
}
