package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeRedactsSecrets(t *testing.T) {
	out := sanitize([]any{"api_key", "sk-123", "module_id", "dom-basics", "user_id", "u-1"})

	require.Len(t, out, 6)
	assert.Equal(t, "[REDACTED]", out[1])
	assert.Equal(t, "dom-basics", out[3])
	assert.True(t, strings.HasPrefix(out[5].(string), "hash:"))
	assert.NotContains(t, out[5], "u-1")
}

func TestSanitizeOddLength(t *testing.T) {
	out := sanitize([]any{"module_id", "m1", "dangling"})
	assert.Equal(t, []any{"module_id", "m1", "dangling"}, out)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "disha.log")

	l, err := New("production", path)
	require.NoError(t, err)
	l.Info("quiz started", "module_id", "m1", "password", "hunter2")
	l.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "quiz started")
	assert.NotContains(t, string(b), "hunter2")
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := Nop()
	assert.Same(t, l, OrNop(l))
}
