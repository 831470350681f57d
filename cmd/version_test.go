package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionCmdPrintsVersion(t *testing.T) {
	cmd, buf := newTestRootCmd(newVersionCmd())

	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	require.Contains(t, buf.String(), "varscope ")
	require.Contains(t, buf.String(), "(go ")
}
