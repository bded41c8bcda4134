package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowText(t *testing.T) {
	out, err := runCommand(t, "show", propsDir, "feedsHotAir")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "show_feedsHotAir", []byte(out))
}

func TestShowJSON(t *testing.T) {
	out, err := runCommand(t, "--format", "json", "show", propsDir, "feeds")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   PropertyView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "feeds", resp.Data.Name)
	assert.Equal(t, "isFedBy", resp.Data.InverseOf)
	assert.Equal(t, []string{"Asymmetric", "Irreflexive"}, resp.Data.Flags.Names())
	assert.Equal(t, []string{"feedsAir"}, resp.Data.SubProperties)
	assert.Equal(t, []string{"feedsAir", "feedsHotAir"}, resp.Data.AllSubProperties)
	assert.Equal(t, []string{"Equipment"}, resp.Data.ResolvedDomain)
	assert.Empty(t, resp.Data.SuperProperties)
}

func TestShowBackfilledInverse(t *testing.T) {
	out, err := runCommand(t, "show", propsDir, "isFedBy")
	require.NoError(t, err)
	assert.Contains(t, out, "feeds (back-filled)")
}

func TestShowUnknownProperty(t *testing.T) {
	out, err := runCommand(t, "show", propsDir, "feedsWater")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "property not found")
}

func TestShowFromDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "brick.db")

	_, err := runCommand(t, "show", "--db", dbPath, "feeds")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no compilations recorded")

	_, err = runCommand(t, "compile", propsDir, "--db", dbPath)
	require.NoError(t, err)

	out, err := runCommand(t, "show", "--db", dbPath, "feedsAir")
	require.NoError(t, err)
	assert.Contains(t, out, "subPropertyOf:   feeds")
	assert.Contains(t, out, "Passes air")
}

func TestShowArgumentMismatch(t *testing.T) {
	_, err := runCommand(t, "show", "feeds")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
