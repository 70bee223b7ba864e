package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Success(map[string]string{"network": "devnet"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Error(ErrCodeManifest, "invalid manifest", map[string]int{"line": 4})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E008", resp.Error.Code)
	assert.Equal(t, "invalid manifest", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Error(ErrCodeNotFound, "database not found", map[string]string{"path": "x"}))
	assert.Contains(t, buf.String(), "Error [E005]: database not found")
	assert.NotContains(t, buf.String(), "Details:")

	buf.Reset()
	formatter.Verbose = true
	require.NoError(t, formatter.Error(ErrCodeNotFound, "database not found", map[string]string{"path": "x"}))
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_Fail(t *testing.T) {
	cause := NewExitError(ExitCommandError, "manifest not found")

	buf := &bytes.Buffer{}
	text := &OutputFormatter{Format: "text", Writer: buf}
	assert.Same(t, cause, text.Fail(ErrCodeManifest, cause))
	assert.Empty(t, buf.String(), "text mode leaves printing to the caller")

	jsonFormatter := &OutputFormatter{Format: "json", Writer: buf}
	assert.Same(t, cause, jsonFormatter.Fail(ErrCodeManifest, cause))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "manifest not found", resp.Error.Message)
}

func TestOutputFormatter_Report(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Report(map[string]int{"passed": 2}, 0, "test"))
	var ok CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ok))
	assert.Equal(t, "ok", ok.Status)
	assert.Nil(t, ok.Error)

	buf.Reset()
	require.NoError(t, formatter.Report(map[string]int{"failed": 2}, 2, "scenario"))
	var failed CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &failed))
	assert.Equal(t, "error", failed.Status)
	assert.Equal(t, ErrCodeTestFailed, failed.Error.Code)
	assert.Equal(t, "2 scenario(s) failed", failed.Error.Message)
	assert.NotNil(t, failed.Data)

	buf.Reset()
	text := &OutputFormatter{Format: "text", Writer: buf}
	require.NoError(t, text.Report(nil, 1, "test"))
	assert.Empty(t, buf.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			errOut := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: errOut,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Recording chains in %s", "chain.db")

			assert.Empty(t, out.String(), "diagnostics must not corrupt JSON output")
			if tt.wantLog {
				assert.Contains(t, errOut.String(), "Recording chains in chain.db")
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "1 test(s) failed", nil))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
}

func TestExitError(t *testing.T) {
	cause := errors.New("no such file")
	err := WrapExitError(ExitCommandError, "manifest not found", cause)
	assert.Equal(t, "manifest not found: no such file", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "plain", NewExitError(ExitFailure, "plain").Error())
}
