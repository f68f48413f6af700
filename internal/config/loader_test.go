package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
concurrency: 3
timeout: 10s
requests:
  - name: users
    method: GET
    url: https://api.example.com/users
    headers:
      Authorization: Bearer token
    extract:
      first: $.users[0].name
  - name: create
    method: POST
    url: https://api.example.com/users
    timeout: 5s
    kind: json
    headers:
      Content-Type: application/json
    body:
      name: widget
    validate:
      type: object
`

func TestParse_YAML(t *testing.T) {
	batch, err := Parse([]byte(sampleYAML), "batch.yaml")
	require.NoError(t, err)

	assert.Equal(t, 3, batch.Concurrency)
	assert.Equal(t, 10*time.Second, batch.Timeout.Std())
	require.Len(t, batch.Requests, 2)

	users := batch.Requests[0]
	assert.Equal(t, "users", users.Name)
	assert.Equal(t, "https://api.example.com/users", users.URL)
	assert.Equal(t, "Bearer token", users.Headers["Authorization"])
	assert.Equal(t, "$.users[0].name", users.Extract["first"])

	create := batch.Requests[1]
	assert.Equal(t, 5*time.Second, create.Timeout.Std())
	assert.Equal(t, map[string]any{"type": "object"}, create.Validate)
}

func TestParse_JSON(t *testing.T) {
	data := `{
		"concurrency": 2,
		"timeout": "30s",
		"requests": [{"name": "ping", "url": "https://example.com/ping"}]
	}`

	batch, err := Parse([]byte(data), "batch.json")
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Concurrency)
	assert.Equal(t, 30*time.Second, batch.Timeout.Std())
	require.Len(t, batch.Requests, 1)
	assert.Equal(t, "ping", batch.Requests[0].Name)
}

func TestParse_DurationAsBareSeconds(t *testing.T) {
	batch, err := Parse([]byte("timeout: 15\nrequests:\n  - url: https://example.com\n"), "batch.yaml")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, batch.Timeout.Std())
}

func TestParse_InvalidDuration(t *testing.T) {
	_, err := Parse([]byte("timeout: soon\nrequests: []\n"), "batch.yaml")
	assert.Error(t, err)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("requests: [not: closed"), "batch.yaml")
	assert.Error(t, err)

	_, err = Parse([]byte("{bad json"), "batch.json")
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	batch, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, batch.Requests, 2)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRequest_DisplayName(t *testing.T) {
	assert.Equal(t, "users", Request{Name: "users", URL: "https://x"}.DisplayName())
	assert.Equal(t, "https://x", Request{URL: "https://x"}.DisplayName())
}
