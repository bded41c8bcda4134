package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai4bd/brick/internal/compiler"
)

func TestValidateValid(t *testing.T) {
	out, err := runCommand(t, "validate", propsDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All 6 properties valid")
	assert.Contains(t, out, "OneSidedInverse")
}

func TestValidateValidJSON(t *testing.T) {
	out, err := runCommand(t, "--format", "json", "validate", propsDir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Empty(t, resp.Data.Errors)
	assert.Len(t, resp.Data.Advisories, 1)
}

func TestValidateAggregatesErrors(t *testing.T) {
	out, err := runCommand(t, "validate", badDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 3 error(s)")

	assert.Contains(t, out, "E205 CycleDetected")
	assert.Contains(t, out, `E202 UnknownReference: inverseOf of "feeds" references unknown property "isFedByy"`)
	assert.Contains(t, out, "E201 DuplicateDeclaration")
	assert.Contains(t, out, "b.yaml:2:3")
}

func TestValidateAggregatesErrorsJSON(t *testing.T) {
	out, err := runCommand(t, "--format", "json", "validate", badDir)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 3)

	// Sorted by primary property: A, feeds, hasPoint.
	kinds := []compiler.ErrorKind{resp.Data.Errors[0].Kind, resp.Data.Errors[1].Kind, resp.Data.Errors[2].Kind}
	assert.Equal(t, []compiler.ErrorKind{
		compiler.KindCycleDetected,
		compiler.KindUnknownReference,
		compiler.KindDuplicateDeclaration,
	}, kinds)
	assert.Equal(t, []string{"hasPoint"}, resp.Data.Errors[2].Properties)

	require.NotNil(t, resp.Error)
	assert.Equal(t, compiler.ErrCycleDetected, resp.Error.Code)
}

func TestValidateMalformed(t *testing.T) {
	out, err := runCommand(t, "validate", malformedDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "✗ Loading failed")
	assert.Contains(t, out, "broken.yaml")
	assert.Contains(t, out, ErrCodeDecodeFailed)
}

func TestValidateTypesFlag(t *testing.T) {
	out, err := runCommand(t, "validate", needTypesDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E207 UnresolvedExpectedType")

	out, err = runCommand(t, "validate", needTypesDir, "--types", typesFile)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All 2 properties valid")
}

func TestValidateMissingTypesFile(t *testing.T) {
	_, err := runCommand(t, "validate", needTypesDir, "--types", "testdata/nope.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
