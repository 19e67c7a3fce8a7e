package audit

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterRecorder(t *testing.T) {
	var buf bytes.Buffer
	rec := NewWriterRecorder(&buf)

	rec.Record(zerolog.InfoLevel, "rls_fix", map[string]any{
		"table":               "orders",
		"placeholder_created": true,
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "rls_fix", entry["event"])
	assert.Equal(t, "orders", entry["table"])
	assert.Equal(t, true, entry["placeholder_created"])
	assert.Equal(t, "info", entry["level"])
	assert.NotEmpty(t, entry["id"])
	assert.NotEmpty(t, entry["time"])
}

func TestFileRecorder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audit")

	rec, err := NewFileRecorder(dir)
	require.NoError(t, err)

	rec.Record(zerolog.WarnLevel, "pitr_fix_failed", map[string]any{"project_ref": "abcd1234"})

	assert.FileExists(t, filepath.Join(dir, "audit.log"))
}

func TestNopRecorder(t *testing.T) {
	rec := NewNopRecorder()
	// must not panic
	rec.Record(zerolog.InfoLevel, "compliance_check", nil)
}
