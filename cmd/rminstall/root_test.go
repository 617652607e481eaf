package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmdHasSubcommands(t *testing.T) {
	root := NewRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["install"])
	assert.True(t, names["version"])
}

func TestInstallRequiresArgument(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"install"})

	err := root.Execute()
	require.Error(t, err)
}

func TestInstallFlags(t *testing.T) {
	root := NewRootCmd()
	install, _, err := root.Find([]string{"install"})
	require.NoError(t, err)

	assert.NotNil(t, install.Flags().Lookup("keep-variables"))
	assert.NotNil(t, install.Flags().Lookup("no-backup"))
	assert.NotNil(t, root.PersistentFlags().Lookup("verbose"))
}
