package output

import (
	"os"
	"strings"

	"github.com/spf13/cast"
)

// Default token budgets per backend.
const (
	// DefaultSearchMaxTokens is the budget for search proxy results.
	DefaultSearchMaxTokens = 20000

	// DefaultDataMaxTokens is the budget for data service results.
	DefaultDataMaxTokens = 30000

	// AbsoluteMaxTokens caps any configured budget.
	AbsoluteMaxTokens = 1_000_000
)

// LegacyMaxTokensEnv is read as a fallback budget for both backends when no
// backend-specific budget has been configured.
const LegacyMaxTokensEnv = "LAMBDA_MCP_MAX_TOKEN_NUM"

// Config holds the response governance settings.
type Config struct {
	// SearchMaxTokens is the inline budget for search proxy results.
	// Default: 20000
	SearchMaxTokens int `json:"searchMaxTokens" yaml:"searchMaxTokens" mapstructure:"search-max-tokens"`

	// DataMaxTokens is the inline budget for data service results.
	// Default: 30000
	DataMaxTokens int `json:"dataMaxTokens" yaml:"dataMaxTokens" mapstructure:"data-max-tokens"`

	// SpillDir is the directory oversized results are written to.
	// Empty means the OS temp directory.
	SpillDir string `json:"spillDir,omitempty" yaml:"spillDir,omitempty" mapstructure:"spill-dir"`
}

// DefaultConfig returns a Config with the default budgets. The legacy
// LAMBDA_MCP_MAX_TOKEN_NUM variable, when set to a positive integer, replaces
// both defaults.
func DefaultConfig() *Config {
	cfg := &Config{
		SearchMaxTokens: DefaultSearchMaxTokens,
		DataMaxTokens:   DefaultDataMaxTokens,
	}
	if legacy := legacyBudget(); legacy > 0 {
		cfg.SearchMaxTokens = legacy
		cfg.DataMaxTokens = legacy
	}
	return cfg
}

func legacyBudget() int {
	raw := strings.TrimSpace(os.Getenv(LegacyMaxTokensEnv))
	if raw == "" {
		return 0
	}
	n, err := cast.ToIntE(raw)
	if err != nil {
		return 0
	}
	return n
}

// Validate returns a copy with non-positive budgets replaced by defaults and
// oversized budgets capped.
func (c *Config) Validate() *Config {
	validated := *c

	defaults := DefaultConfig()
	if validated.SearchMaxTokens <= 0 {
		validated.SearchMaxTokens = defaults.SearchMaxTokens
	}
	if validated.DataMaxTokens <= 0 {
		validated.DataMaxTokens = defaults.DataMaxTokens
	}

	if validated.SearchMaxTokens > AbsoluteMaxTokens {
		validated.SearchMaxTokens = AbsoluteMaxTokens
	}
	if validated.DataMaxTokens > AbsoluteMaxTokens {
		validated.DataMaxTokens = AbsoluteMaxTokens
	}

	validated.SpillDir = strings.TrimSpace(validated.SpillDir)
	return &validated
}

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
