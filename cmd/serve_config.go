package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/giantswarm/mcp-query/internal/backend"
	"github.com/giantswarm/mcp-query/internal/logging"
	"github.com/giantswarm/mcp-query/internal/server"
	"github.com/giantswarm/mcp-query/internal/server/middleware"
	"github.com/giantswarm/mcp-query/internal/tools/output"
)

// envPrefix is the prefix of environment variables that override serve flags,
// for example MCP_QUERY_HTTP_ADDR for --http-addr.
const envPrefix = "MCP_QUERY"

// ServeConfig holds all configuration for the serve command.
type ServeConfig struct {
	// Transport settings
	Transport string `mapstructure:"transport"`
	HTTPAddr  string `mapstructure:"http-addr"`

	// Endpoint paths
	SSEEndpoint     string `mapstructure:"sse-endpoint"`
	MessageEndpoint string `mapstructure:"message-endpoint"`
	HTTPEndpoint    string `mapstructure:"http-endpoint"`

	// RequestTimeout bounds every outbound backend call.
	RequestTimeout time.Duration `mapstructure:"request-timeout"`

	// Response governance
	Output output.Config `mapstructure:",squash"`

	// EnvironmentsFile replaces the embedded environment registry.
	EnvironmentsFile string `mapstructure:"environments-file"`

	// EnvFile is an optional dotenv file with data service credentials.
	// Process environment variables take precedence over its entries.
	EnvFile string `mapstructure:"env-file"`

	// Logging
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`

	// HTTP hardening, used by the sse and streamable-http transports
	AllowedOrigins  string `mapstructure:"allowed-origins"`
	EnableHSTS      bool   `mapstructure:"enable-hsts"`
	MaxRequestBytes int64  `mapstructure:"max-request-bytes"`

	Metrics MetricsServeConfig `mapstructure:",squash"`
}

// MetricsServeConfig holds configuration for the dedicated metrics server.
type MetricsServeConfig struct {
	// Enabled starts the metrics server when instrumentation is enabled.
	Enabled bool `mapstructure:"metrics-enabled"`

	// Addr is the listen address of the metrics server.
	Addr string `mapstructure:"metrics-addr"`
}

// addServeFlags registers the serve flags on cmd.
func addServeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	// Transport flags
	flags.String("transport", transportStdio, "Transport type: stdio, sse, or streamable-http")
	flags.String("http-addr", ":8080", "HTTP server address (for sse and streamable-http transports)")
	flags.String("sse-endpoint", "/sse", "SSE endpoint path (for sse transport)")
	flags.String("message-endpoint", "/message", "Message endpoint path (for sse transport)")
	flags.String("http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http transport)")

	// Backend and response flags
	flags.Duration("request-timeout", backend.DefaultTimeout, "Timeout of each outbound backend request")
	flags.Int("search-max-tokens", 0, fmt.Sprintf("Inline token budget for search results (default %d, or %s)", output.DefaultSearchMaxTokens, output.LegacyMaxTokensEnv))
	flags.Int("data-max-tokens", 0, fmt.Sprintf("Inline token budget for data service results (default %d, or %s)", output.DefaultDataMaxTokens, output.LegacyMaxTokensEnv))
	flags.String("spill-dir", "", "Directory oversized results are written to (default: OS temp directory)")
	flags.String("environments-file", "", "YAML file listing data service environments (default: embedded registry)")
	flags.String("env-file", "", "Optional dotenv file with DATA_EXPLORER_* credentials")

	// Logging flags
	flags.String("log-level", "info", "Log level: debug, info, warn, or error")
	flags.String("log-format", logging.FormatText, "Log format: text or json")

	// HTTP hardening flags
	flags.String("allowed-origins", "", "Comma-separated list of origins allowed for CORS (empty disables CORS)")
	flags.Bool("enable-hsts", false, "Send Strict-Transport-Security headers (enable behind TLS)")
	flags.Int64("max-request-bytes", middleware.DefaultMaxRequestBytes, "Maximum request body size for HTTP transports (0 disables the limit)")

	// Metrics flags
	flags.Bool("metrics-enabled", true, "Serve /metrics on a dedicated listener when instrumentation is enabled")
	flags.String("metrics-addr", server.DefaultMetricsAddr, "Metrics server address")
}

// loadServeConfig layers environment variables over the command's flags and
// decodes the result. Explicitly set flags win over the environment.
func loadServeConfig(cmd *cobra.Command) (ServeConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return ServeConfig{}, fmt.Errorf("failed to bind flags: %w", err)
	}

	var config ServeConfig
	err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return ServeConfig{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return config, nil
}

// Validate checks the configuration and returns the first problem found.
func (c ServeConfig) Validate() error {
	switch c.Transport {
	case transportStdio, transportSSE, transportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", c.Transport)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.Output.SearchMaxTokens < 0 || c.Output.DataMaxTokens < 0 {
		return fmt.Errorf("token budgets must not be negative")
	}
	if c.Transport != transportStdio {
		if c.HTTPAddr == "" {
			return fmt.Errorf("--http-addr is required for the %s transport", c.Transport)
		}
		if _, err := middleware.ValidateAllowedOrigins(c.AllowedOrigins); err != nil {
			return err
		}
	}
	if _, err := logging.NewLogger(c.LogLevel, c.LogFormat, nil); err != nil {
		return err
	}
	return nil
}
