package cmd

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-query/internal/environment"
	"github.com/giantswarm/mcp-query/internal/server"
	"github.com/giantswarm/mcp-query/internal/tools/dataservice"
	"github.com/giantswarm/mcp-query/internal/tools/search"
)

func TestServeCmdProperties(t *testing.T) {
	cmd := newServeCmd()

	assert.Equal(t, "serve", cmd.Use)
	assert.Equal(t, "Start the MCP query server", cmd.Short)
	assert.True(t, strings.Contains(cmd.Long, "Model Context Protocol"))
	assert.True(t, strings.Contains(cmd.Long, "stdio"))
	assert.True(t, strings.Contains(cmd.Long, "sse"))
	assert.True(t, strings.Contains(cmd.Long, "streamable-http"))
	assert.True(t, strings.Contains(cmd.Long, "MCP_QUERY_"))
}

func TestServeCmdFlagDefaults(t *testing.T) {
	cmd := newServeCmd()

	tests := []struct {
		flagName string
		expected string
	}{
		{"transport", "stdio"},
		{"http-addr", ":8080"},
		{"sse-endpoint", "/sse"},
		{"message-endpoint", "/message"},
		{"http-endpoint", "/mcp"},
		{"request-timeout", "1m0s"},
		{"search-max-tokens", "0"},
		{"data-max-tokens", "0"},
		{"spill-dir", ""},
		{"environments-file", ""},
		{"env-file", ""},
		{"log-level", "info"},
		{"log-format", "text"},
		{"allowed-origins", ""},
		{"enable-hsts", "false"},
		{"max-request-bytes", "4194304"},
		{"metrics-enabled", "true"},
		{"metrics-addr", ":9090"},
	}

	for _, test := range tests {
		flag := cmd.Flags().Lookup(test.flagName)
		require.NotNil(t, flag, "flag %s should exist", test.flagName)
		assert.Equal(t, test.expected, flag.DefValue,
			"Flag %s should have default value %s", test.flagName, test.expected)
	}
}

func TestServeCmdFlagUsage(t *testing.T) {
	cmd := newServeCmd()

	usage := cmd.UsageString()
	assert.Contains(t, usage, "--transport")
	assert.Contains(t, usage, "stdio, sse, or streamable-http")
	assert.Contains(t, usage, "LAMBDA_MCP_MAX_TOKEN_NUM")
}

func TestServeCmdTransportSpecificFlags(t *testing.T) {
	cmd := newServeCmd()

	httpAddrFlag := cmd.Flags().Lookup("http-addr")
	assert.Contains(t, httpAddrFlag.Usage, "HTTP server address")
	assert.Contains(t, httpAddrFlag.Usage, "sse and streamable-http")

	sseEndpointFlag := cmd.Flags().Lookup("sse-endpoint")
	assert.Contains(t, sseEndpointFlag.Usage, "SSE endpoint path")

	messageEndpointFlag := cmd.Flags().Lookup("message-endpoint")
	assert.Contains(t, messageEndpointFlag.Usage, "Message endpoint path")

	httpEndpointFlag := cmd.Flags().Lookup("http-endpoint")
	assert.Contains(t, httpEndpointFlag.Usage, "streamable-http transport")
}

func TestServeCmdRejectsInvalidConfig(t *testing.T) {
	cmd := newServeCmd()
	cmd.SetArgs([]string{"--transport", "carrier-pigeon"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transport type")
}

func TestCredentialSource(t *testing.T) {
	t.Setenv("DATA_EXPLORER_SECRET", "from-process")

	src, err := credentialSource("")
	require.NoError(t, err)
	v, ok := src.Lookup("DATA_EXPLORER_SECRET")
	require.True(t, ok)
	assert.Equal(t, "from-process", v)

	path := writeFile(t, ".env", "DATA_EXPLORER_SECRET=from-file\nDATA_EXPLORER_MODULE_NAME=from-file-module\n")
	src, err = credentialSource(path)
	require.NoError(t, err)

	v, _ = src.Lookup("DATA_EXPLORER_SECRET")
	assert.Equal(t, "from-process", v, "process environment wins over the env file")
	v, _ = src.Lookup("DATA_EXPLORER_MODULE_NAME")
	assert.Equal(t, "from-file-module", v)

	_, err = credentialSource(path + ".missing")
	assert.Error(t, err)
}

func TestNewMCPServerRegistersAllTools(t *testing.T) {
	sc := newCmdServerContext(t)

	mcpSrv, err := newMCPServer(sc, "v1.2.3")
	require.NoError(t, err)

	registered := mcpSrv.ListTools()
	for _, name := range []string{
		search.ToolQueryViaKibana,
		dataservice.ToolQuery,
		dataservice.ToolListDatabases,
		dataservice.ToolListTables,
		dataservice.ToolShowTableDDL,
		dataservice.ToolListEnvironments,
	} {
		assert.Contains(t, registered, name)
	}
	assert.Len(t, registered, 6)
}

func TestBuildHandler(t *testing.T) {
	sc := newCmdServerContext(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	})

	config := ServeConfig{
		AllowedOrigins:  "https://app.example.com",
		MaxRequestBytes: 16,
	}
	handler, err := buildHandler(mux, config, sc)
	require.NoError(t, err)

	t.Run("cors and security headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/mcp", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	})

	t.Run("oversized body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(strings.Repeat("x", 64)))
		req.ContentLength = 64
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	_, err = buildHandler(mux, ServeConfig{AllowedOrigins: "ftp://nope"}, sc)
	assert.Error(t, err)
}

func newCmdServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(t.Context(),
		server.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		server.WithCredentialSource(environment.MapSource{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}
