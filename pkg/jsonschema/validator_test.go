package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userSchema = `{
	"type": "object",
	"required": ["name", "id"],
	"properties": {
		"name": {"type": "string"},
		"id": {"type": "integer"}
	}
}`

func TestValidate_Conforming(t *testing.T) {
	ok, errs := Validate(`{"name": "alice", "id": 1}`, userSchema)
	assert.True(t, ok)
	assert.Empty(t, errs)
}

func TestValidate_Violations(t *testing.T) {
	ok, errs := Validate(`{"name": 42}`, userSchema)
	assert.False(t, ok)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs.Error(), "validation error")
}

func TestValidate_InvalidDocument(t *testing.T) {
	ok, errs := Validate(`{not json`, userSchema)
	assert.False(t, ok)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "invalid JSON")
}

func TestValidate_InvalidSchema(t *testing.T) {
	ok, errs := Validate(`{}`, `{"type": 12}`)
	assert.False(t, ok)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "invalid schema")
}
