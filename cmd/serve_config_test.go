package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServeConfig_Defaults(t *testing.T) {
	cmd := newServeCmd()
	require.NoError(t, cmd.ParseFlags(nil))

	config, err := loadServeConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, transportStdio, config.Transport)
	assert.Equal(t, ":8080", config.HTTPAddr)
	assert.Equal(t, "/mcp", config.HTTPEndpoint)
	assert.Equal(t, time.Minute, config.RequestTimeout)
	assert.Zero(t, config.Output.SearchMaxTokens)
	assert.Zero(t, config.Output.DataMaxTokens)
	assert.Equal(t, "info", config.LogLevel)
	assert.True(t, config.Metrics.Enabled)
	assert.Equal(t, ":9090", config.Metrics.Addr)
	assert.NoError(t, config.Validate())
}

func TestLoadServeConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("MCP_QUERY_TRANSPORT", "streamable-http")
	t.Setenv("MCP_QUERY_SEARCH_MAX_TOKENS", "5000")
	t.Setenv("MCP_QUERY_REQUEST_TIMEOUT", "15s")
	t.Setenv("MCP_QUERY_SPILL_DIR", "/var/tmp/spill")
	t.Setenv("MCP_QUERY_METRICS_ENABLED", "false")

	cmd := newServeCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--data-max-tokens", "7000"}))

	config, err := loadServeConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, transportStreamableHTTP, config.Transport)
	assert.Equal(t, 5000, config.Output.SearchMaxTokens)
	assert.Equal(t, 7000, config.Output.DataMaxTokens)
	assert.Equal(t, 15*time.Second, config.RequestTimeout)
	assert.Equal(t, "/var/tmp/spill", config.Output.SpillDir)
	assert.False(t, config.Metrics.Enabled)
}

func TestLoadServeConfig_FlagWinsOverEnvironment(t *testing.T) {
	t.Setenv("MCP_QUERY_LOG_LEVEL", "debug")

	cmd := newServeCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--log-level", "warn"}))

	config, err := loadServeConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "warn", config.LogLevel)
}

func TestServeConfigValidate(t *testing.T) {
	valid := func() ServeConfig {
		return ServeConfig{
			Transport:      transportStreamableHTTP,
			HTTPAddr:       ":8080",
			RequestTimeout: time.Minute,
			LogLevel:       "info",
			LogFormat:      "json",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *ServeConfig)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *ServeConfig) {},
		},
		{
			name:    "unknown transport",
			mutate:  func(c *ServeConfig) { c.Transport = "websocket" },
			wantErr: "unsupported transport type",
		},
		{
			name:    "empty transport",
			mutate:  func(c *ServeConfig) { c.Transport = "" },
			wantErr: "unsupported transport type",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *ServeConfig) { c.RequestTimeout = 0 },
			wantErr: "request timeout must be positive",
		},
		{
			name:    "negative budget",
			mutate:  func(c *ServeConfig) { c.Output.DataMaxTokens = -1 },
			wantErr: "token budgets must not be negative",
		},
		{
			name:    "missing http address",
			mutate:  func(c *ServeConfig) { c.HTTPAddr = "" },
			wantErr: "--http-addr is required",
		},
		{
			name:   "stdio ignores http address",
			mutate: func(c *ServeConfig) { c.Transport = transportStdio; c.HTTPAddr = "" },
		},
		{
			name:    "invalid origin",
			mutate:  func(c *ServeConfig) { c.AllowedOrigins = "not a url" },
			wantErr: "origin",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *ServeConfig) { c.LogLevel = "loud" },
			wantErr: "invalid log level",
		},
		{
			name:    "invalid log format",
			mutate:  func(c *ServeConfig) { c.LogFormat = "xml" },
			wantErr: "invalid log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(&config)

			err := config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
