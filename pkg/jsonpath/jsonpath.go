// Package jsonpath extracts values from JSON documents using a subset of
// JSONPath ("$.users[0].name"), translated onto gjson paths.
package jsonpath

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Extract returns the value at path as a string. Null values come back as
// the string "null"; a path that matches nothing is an error.
func Extract(document, path string) (string, error) {
	if document == "" {
		return "", fmt.Errorf("empty JSON document")
	}
	if path == "" {
		return "", fmt.Errorf("empty JSONPath expression")
	}

	result := gjson.Get(document, toGjsonPath(path))
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// ExtractAll evaluates a set of named expressions against one document. All
// successful extractions are returned; when any expression fails, the error
// lists every failure.
func ExtractAll(document string, paths map[string]string) (map[string]string, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no JSONPath expressions provided")
	}

	results := make(map[string]string)
	var failures []string
	for name, path := range paths {
		value, err := Extract(document, path)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		results[name] = value
	}

	if len(failures) > 0 {
		return results, fmt.Errorf("extraction errors: %s", strings.Join(failures, "; "))
	}
	return results, nil
}

// toGjsonPath rewrites a JSONPath expression into gjson syntax:
// "$.users[0].name" becomes "users.0.name". Bracketed keys with either quote
// style are unwrapped. "$" alone addresses the whole document.
func toGjsonPath(path string) string {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}

	replacer := strings.NewReplacer(
		"['", ".", "']", "",
		`["`, ".", `"]`, "",
		"[", ".", "]", "",
	)
	path = replacer.Replace(path)
	return strings.TrimPrefix(path, ".")
}
