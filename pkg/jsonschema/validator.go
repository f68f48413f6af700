// Package jsonschema validates JSON documents against JSON Schema drafts
// supported by santhosh-tekuri/jsonschema.
package jsonschema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationErrors collects the individual violations of one validation run.
type ValidationErrors []error

// Error implements the error interface.
func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, err := range ve {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks a JSON document against a schema. It returns false with
// the list of violations when the document does not conform, and a non-nil
// ValidationErrors with a single entry when the schema or document cannot be
// parsed at all.
func Validate(document, schema string) (bool, ValidationErrors) {
	compiled, err := compile(schema)
	if err != nil {
		return false, ValidationErrors{err}
	}

	var value any
	if err := json.Unmarshal([]byte(document), &value); err != nil {
		return false, ValidationErrors{fmt.Errorf("invalid JSON: %w", err)}
	}

	if err := compiled.Validate(value); err != nil {
		if vErr, ok := err.(*jsonschema.ValidationError); ok {
			return false, flatten(vErr)
		}
		return false, ValidationErrors{err}
	}
	return true, nil
}

func compile(schema string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return compiled, nil
}

// flatten walks the validation error tree and collects every leaf message
// with its instance location.
func flatten(err *jsonschema.ValidationError) ValidationErrors {
	var errs ValidationErrors
	if err.Message != "" {
		errs = append(errs, fmt.Errorf("validation error at %s: %s", err.InstanceLocation, err.Message))
	}
	for _, cause := range err.Causes {
		errs = append(errs, flatten(cause)...)
	}
	return errs
}
