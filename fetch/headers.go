package fetch

import "strings"

// ParseRawHeaders parses a raw response header block into a map. Each line is
// split at the first ": "; everything after it is the value, kept intact even
// when it contains the separator itself. Names are lower-cased, so lookups
// are effectively case-insensitive. When a name repeats, the last value wins.
// An empty block yields an empty, non-nil map.
func ParseRawHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		name, value, found := strings.Cut(line, ": ")
		if !found {
			continue
		}
		headers[strings.ToLower(name)] = value
	}
	return headers
}
