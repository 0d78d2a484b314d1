package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"parse", "commit", "serve", "migrate"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "vendor-intake", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestParseCommand_Flags(t *testing.T) {
	flag := parseCmd.Flags().Lookup("expected")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)

	flag = parseCmd.Flags().Lookup("format")
	require.NotNil(t, flag)
	assert.Equal(t, "json", flag.DefValue)
}

func TestCommitCommand_Flags(t *testing.T) {
	flag := commitCmd.Flags().Lookup("min-confidence")
	require.NotNil(t, flag)
	assert.Equal(t, "0.5", flag.DefValue)
	require.NotNil(t, commitCmd.Flags().Lookup("expected"))
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestParseCommand_RequiresFiles(t *testing.T) {
	assert.Error(t, parseCmd.Args(parseCmd, nil))
	assert.NoError(t, parseCmd.Args(parseCmd, []string{"vendors.txt"}))
}
