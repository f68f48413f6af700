package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range RootCmd.Commands() {
		names[cmd.Name()] = true
	}

	assert.True(t, names["get"])
	assert.True(t, names["post"])
	assert.True(t, names["batch"])
}

func TestParseHeaderFlags(t *testing.T) {
	headers := parseHeaderFlags([]string{
		"Content-Type: application/json",
		"X-Id:a: b",
		"malformed",
	})

	assert.Equal(t, map[string]string{
		"Content-Type": "application/json",
		"X-Id":         "a: b",
	}, headers)
}
