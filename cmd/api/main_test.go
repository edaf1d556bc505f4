package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "migrate", "reindex"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		require.Equal(t, name, cmd.Name())
	}
}
