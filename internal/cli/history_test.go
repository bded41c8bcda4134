package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "brick.db")

	out, err := runCommand(t, "history", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No compilations recorded")

	out, err = runCommand(t, "--format", "json", "history", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"data": []`)
}

func TestHistoryRequiresDB(t *testing.T) {
	_, err := runCommand(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}

func TestShortHash(t *testing.T) {
	assert.Equal(t, "0123456789ab", shortHash("0123456789abcdef"))
	assert.Equal(t, "abc", shortHash("abc"))
}
