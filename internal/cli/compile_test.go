package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai4bd/brick/internal/graph"
)

// runCommand executes the root command with args and returns stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompileText(t *testing.T) {
	out, err := runCommand(t, "compile", propsDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Compiled 6 properties (9 edge(s), 2 inverse pair(s))")
	assert.Contains(t, out, "hash: ")
	assert.Contains(t, out, "Advisories:")
	assert.Contains(t, out, "[W301] OneSidedInverse")
	assert.Contains(t, out, `back-filled "isFedBy" inverseOf "feeds"`)
}

func TestCompileJSON(t *testing.T) {
	out, err := runCommand(t, "--format", "json", "compile", propsDir)
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   CompileSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 6, resp.Data.Properties)
	assert.Equal(t, 9, resp.Data.Edges)
	assert.Equal(t, 2, resp.Data.InversePairs)
	assert.Len(t, resp.Data.Hash, 64)
	require.Len(t, resp.Data.Advisories, 1)
	assert.Equal(t, "W301", resp.Data.Advisories[0].Code)
	assert.Nil(t, resp.Data.Compilation)
}

func TestCompileOutputToFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "graph.json")

	out, err := runCommand(t, "compile", propsDir, "--output", outputFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote graph document to "+outputFile)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var doc graph.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	g, err := graph.FromDocument(&doc)
	require.NoError(t, err)
	assert.Equal(t, 6, g.Len())

	inv, err := g.Inverse("isFedBy")
	require.NoError(t, err)
	assert.Equal(t, "feeds", inv.Name)
}

func TestCompileIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")

	_, err := runCommand(t, "compile", propsDir, "-o", a)
	require.NoError(t, err)
	_, err = runCommand(t, "compile", propsDir, "-o", b)
	require.NoError(t, err)

	da, err := os.ReadFile(a)
	require.NoError(t, err)
	db, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, string(da), string(db))
}

func TestCompileRecordsHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "brick.db")

	out, err := runCommand(t, "compile", propsDir, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded compilation")
	assert.Contains(t, out, "(seq 1)")

	_, err = runCommand(t, "compile", propsDir, "--db", dbPath)
	require.NoError(t, err)

	out, err = runCommand(t, "--format", "json", "history", "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   []struct {
			Seq           int64    `json:"seq"`
			ID            string   `json:"id"`
			SnapshotHash  string   `json:"snapshotHash"`
			PropertyCount int      `json:"propertyCount"`
			Source        string   `json:"source"`
			Advisories    []string `json:"advisories"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, int64(1), resp.Data[0].Seq)
	assert.Equal(t, int64(2), resp.Data[1].Seq)
	assert.Equal(t, resp.Data[0].SnapshotHash, resp.Data[1].SnapshotHash)
	assert.NotEqual(t, resp.Data[0].ID, resp.Data[1].ID)
	assert.Equal(t, 6, resp.Data[0].PropertyCount)
	assert.Equal(t, propsDir, resp.Data[0].Source)
	assert.Len(t, resp.Data[0].Advisories, 1)

	out, err = runCommand(t, "history", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "SEQ")
	assert.Contains(t, out, resp.Data[1].ID)
	assert.Contains(t, out, resp.Data[0].SnapshotHash[:12])
}

func TestCompileValidationFailure(t *testing.T) {
	out, err := runCommand(t, "compile", badDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "E205 CycleDetected: sub-property cycle detected: A → B → A")
}

func TestCompileNonExistentDirectory(t *testing.T) {
	out, err := runCommand(t, "compile", "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Contains(t, out, "not found")
}

func TestCompileEmptyDirectory(t *testing.T) {
	out, err := runCommand(t, "compile", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNoFiles)
	assert.Contains(t, out, "no declaration files")
}

func TestCompileWriteFailure(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "missing", "graph.json")

	_, err := runCommand(t, "compile", propsDir, "-o", outputFile)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeWriteFailed)
}
