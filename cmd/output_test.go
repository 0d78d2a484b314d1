package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/vendor-intake/internal/intake"
	"github.com/sells-group/vendor-intake/internal/reconcile"
)

func TestWriteOutput(t *testing.T) {
	results := []intake.FileResult{{Path: "a.txt", Error: "boom"}}

	var buf bytes.Buffer
	require.NoError(t, writeOutput(&buf, "json", results))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "a.txt", decoded[0]["path"])
	assert.Equal(t, "boom", decoded[0]["error"])

	buf.Reset()
	require.NoError(t, writeOutput(&buf, "yaml", results))
	var fromYAML []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	assert.Equal(t, "a.txt", fromYAML[0]["path"])

	assert.Error(t, writeOutput(&buf, "xml", results))
}

func newExpectedCmd() (*cobra.Command, *int) {
	n := new(int)
	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().IntVar(n, "expected", 0, "")
	return cmd, n
}

func TestExpectedFlag(t *testing.T) {
	cmd, n := newExpectedCmd()
	got, err := expectedFlag(cmd, *n)
	require.NoError(t, err)
	assert.Nil(t, got)

	cmd, n = newExpectedCmd()
	require.NoError(t, cmd.Flags().Set("expected", "3"))
	got, err = expectedFlag(cmd, *n)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, *got)

	cmd, n = newExpectedCmd()
	require.NoError(t, cmd.Flags().Set("expected", "0"))
	_, err = expectedFlag(cmd, *n)
	assert.ErrorIs(t, err, reconcile.ErrInvalidExpected)
}

func TestFailedFiles(t *testing.T) {
	assert.NoError(t, failedFiles([]intake.FileResult{{Path: "a"}}))

	err := failedFiles([]intake.FileResult{{Path: "a"}, {Path: "b", Err: errors.New("x")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
}
