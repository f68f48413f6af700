package config

import (
	"fmt"

	"github.com/wesleyorama2/fetchpool/fetch"
)

// Validate checks a batch against the request invariants before anything is
// sent. It returns every problem found, not just the first.
func Validate(batch *Batch) []error {
	var errs []error

	if batch.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must not be negative, got %d", batch.Concurrency))
	}
	if batch.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %v", batch.Timeout.Std()))
	}
	if len(batch.Requests) == 0 {
		errs = append(errs, fmt.Errorf("batch has no requests"))
	}

	for i, req := range batch.Requests {
		label := req.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		if req.URL == "" {
			errs = append(errs, fmt.Errorf("request %s: url is required", label))
		}
		if req.Timeout < 0 {
			errs = append(errs, fmt.Errorf("request %s: timeout must not be negative, got %v", label, req.Timeout.Std()))
		}
		if _, err := fetch.ParseKind(req.Kind); err != nil {
			errs = append(errs, fmt.Errorf("request %s: %w", label, err))
		}
	}

	return errs
}

// Options converts a batch request into fetch options, applying the batch
// default timeout when the request has none. Callbacks are left to the
// caller. Validate must have passed; Options panics on an unknown kind.
func (r Request) Options(defaults Batch) fetch.Options {
	kind, err := fetch.ParseKind(r.Kind)
	if err != nil {
		panic(err)
	}

	timeout := r.Timeout
	if timeout == 0 {
		timeout = defaults.Timeout
	}

	return fetch.Options{
		Method:          r.Method,
		URL:             r.URL,
		Headers:         r.Headers,
		Body:            r.Body,
		Timeout:         timeout.Std(),
		WithCredentials: r.WithCredentials,
		Kind:            kind,
	}
}
