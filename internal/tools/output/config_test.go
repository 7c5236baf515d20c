package output

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv(LegacyMaxTokensEnv, "")

	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if cfg.SearchMaxTokens != DefaultSearchMaxTokens {
		t.Errorf("SearchMaxTokens = %d, want %d", cfg.SearchMaxTokens, DefaultSearchMaxTokens)
	}
	if cfg.DataMaxTokens != DefaultDataMaxTokens {
		t.Errorf("DataMaxTokens = %d, want %d", cfg.DataMaxTokens, DefaultDataMaxTokens)
	}
	if cfg.SpillDir != "" {
		t.Errorf("SpillDir = %q, want empty", cfg.SpillDir)
	}
}

func TestDefaultConfig_LegacyEnv(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		wantSearch int
		wantData   int
	}{
		{name: "unset", value: "", wantSearch: DefaultSearchMaxTokens, wantData: DefaultDataMaxTokens},
		{name: "positive", value: "5000", wantSearch: 5000, wantData: 5000},
		{name: "whitespace", value: " 7000 ", wantSearch: 7000, wantData: 7000},
		{name: "not a number", value: "lots", wantSearch: DefaultSearchMaxTokens, wantData: DefaultDataMaxTokens},
		{name: "zero", value: "0", wantSearch: DefaultSearchMaxTokens, wantData: DefaultDataMaxTokens},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(LegacyMaxTokensEnv, tt.value)

			cfg := DefaultConfig()
			if cfg.SearchMaxTokens != tt.wantSearch {
				t.Errorf("SearchMaxTokens = %d, want %d", cfg.SearchMaxTokens, tt.wantSearch)
			}
			if cfg.DataMaxTokens != tt.wantData {
				t.Errorf("DataMaxTokens = %d, want %d", cfg.DataMaxTokens, tt.wantData)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Setenv(LegacyMaxTokensEnv, "")

	tests := []struct {
		name       string
		input      Config
		wantSearch int
		wantData   int
		wantDir    string
	}{
		{
			name:       "valid config unchanged",
			input:      Config{SearchMaxTokens: 100, DataMaxTokens: 200, SpillDir: "/tmp/spill"},
			wantSearch: 100,
			wantData:   200,
			wantDir:    "/tmp/spill",
		},
		{
			name:       "zero values get defaults",
			input:      Config{},
			wantSearch: DefaultSearchMaxTokens,
			wantData:   DefaultDataMaxTokens,
		},
		{
			name:       "negative values get defaults",
			input:      Config{SearchMaxTokens: -1, DataMaxTokens: -5},
			wantSearch: DefaultSearchMaxTokens,
			wantData:   DefaultDataMaxTokens,
		},
		{
			name:       "values exceeding absolute max are capped",
			input:      Config{SearchMaxTokens: AbsoluteMaxTokens + 1, DataMaxTokens: AbsoluteMaxTokens * 2},
			wantSearch: AbsoluteMaxTokens,
			wantData:   AbsoluteMaxTokens,
		},
		{
			name:       "spill dir is trimmed",
			input:      Config{SearchMaxTokens: 1, DataMaxTokens: 1, SpillDir: "  /var/spill "},
			wantSearch: 1,
			wantData:   1,
			wantDir:    "/var/spill",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validated := tt.input.Validate()

			if validated.SearchMaxTokens != tt.wantSearch {
				t.Errorf("SearchMaxTokens = %d, want %d", validated.SearchMaxTokens, tt.wantSearch)
			}
			if validated.DataMaxTokens != tt.wantData {
				t.Errorf("DataMaxTokens = %d, want %d", validated.DataMaxTokens, tt.wantData)
			}
			if validated.SpillDir != tt.wantDir {
				t.Errorf("SpillDir = %q, want %q", validated.SpillDir, tt.wantDir)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	original := &Config{SearchMaxTokens: 10, DataMaxTokens: 20, SpillDir: "/a"}

	clone := original.Clone()
	clone.SpillDir = "/b"

	if original.SpillDir != "/a" {
		t.Error("modifying clone should not affect original")
	}
	if clone.SearchMaxTokens != 10 || clone.DataMaxTokens != 20 {
		t.Errorf("clone = %+v, want budgets copied", clone)
	}
}

func TestConfigClone_Nil(t *testing.T) {
	var cfg *Config
	if cfg.Clone() != nil {
		t.Error("Clone of nil should return nil")
	}
}
