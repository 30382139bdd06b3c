package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "fairway", cmd.Use)
	assert.Contains(t, cmd.Long, "offline")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"round", "sync", "invite", "profile"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestRoundSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"create", "score", "status", "finish"} {
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{"round", name})
			require.NoError(t, err)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestInviteSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"send", "decode"} {
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{"invite", name})
			require.NoError(t, err)
			assert.Equal(t, name, subCmd.Name())
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
}

func TestRoundCreateFlags(t *testing.T) {
	cmd := NewRootCommand()
	createCmd, _, err := cmd.Find([]string{"round", "create"})
	require.NoError(t, err)

	for _, name := range []string{"course", "tee", "date", "player"} {
		require.NotNil(t, createCmd.Flags().Lookup(name), "flag %s should exist", name)
	}
}

func TestRoundScoreFlags(t *testing.T) {
	cmd := NewRootCommand()
	scoreCmd, _, err := cmd.Find([]string{"round", "score"})
	require.NoError(t, err)

	for _, name := range []string{"round", "player", "hole", "strokes"} {
		require.NotNil(t, scoreCmd.Flags().Lookup(name), "flag %s should exist", name)
	}

	playerFlag := scoreCmd.Flags().Lookup("player")
	assert.Equal(t, "0", playerFlag.DefValue)
}

func TestSyncCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	syncCmd, _, err := cmd.Find([]string{"sync"})
	require.NoError(t, err)

	roundFlag := syncCmd.Flags().Lookup("round")
	require.NotNil(t, roundFlag)
}

func TestInviteSendFlags(t *testing.T) {
	cmd := NewRootCommand()
	sendCmd, _, err := cmd.Find([]string{"invite", "send"})
	require.NoError(t, err)

	require.NotNil(t, sendCmd.Flags().Lookup("round"))
	require.NotNil(t, sendCmd.Flags().Lookup("to"))
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "profile", "show", "abc"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
