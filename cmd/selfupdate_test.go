package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfUpdateRefusesDevelopmentBuilds(t *testing.T) {
	for _, version := range []string{"dev", ""} {
		t.Run("version "+version, func(t *testing.T) {
			originalVersion := rootCmd.Version
			t.Cleanup(func() { rootCmd.Version = originalVersion })
			rootCmd.Version = version

			cmd := newSelfUpdateCmd()
			cmd.SetArgs([]string{})

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "cannot self-update a development version")
		})
	}
}

func TestSelfUpdateCmdProperties(t *testing.T) {
	cmd := newSelfUpdateCmd()

	assert.Equal(t, "self-update", cmd.Use)
	assert.Equal(t, "Update mcp-query to the latest version", cmd.Short)
	assert.Contains(t, cmd.Long, "GitHub")
	assert.Contains(t, cmd.Long, "checksum")
	assert.Error(t, cmd.Args(cmd, []string{"v1.0.0"}), "self-update takes no arguments")
}

func TestReleaseSource(t *testing.T) {
	assert.Equal(t, "giantswarm/mcp-query", githubRepoSlug)
	assert.Equal(t, "checksums.txt", checksumsFile)
}
