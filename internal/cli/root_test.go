package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "mirror", cmd.Use)
	assert.Contains(t, cmd.Long, "declaration metadata")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"ingest", "validate", "resolve", "lookup", "subclasses", "annotated", "invocations", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestInvocationsCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	invCmd, _, err := cmd.Find([]string{"invocations"})
	require.NoError(t, err)

	for _, name := range []string{"type", "member", "backend", "op", "outcome", "after", "limit"} {
		assert.NotNil(t, invCmd.Flags().Lookup(name), "flag --%s", name)
	}
}

func TestInvalidFormat(t *testing.T) {
	env := newTestEnv(t)
	_, err := run(t, NewRootCommand(), "validate", env.libDir, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestRootRunsSubcommandWithConfig(t *testing.T) {
	env := newTestEnv(t)
	out, err := run(t, NewRootCommand(), "ingest", env.libDir, "--config", env.config, "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "Ingested 1 library")
	assert.FileExists(t, env.dbPath)
}
