package config

import (
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.DBDriver != DefaultDBDriver {
		t.Errorf("expected DBDriver %s, got %s", DefaultDBDriver, cfg.DBDriver)
	}

	if cfg.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("expected MaxAttempts %d, got %d", DefaultMaxAttempts, cfg.MaxAttempts)
	}

	if len(cfg.Models) != len(DefaultModels) {
		t.Errorf("expected %d models, got %d", len(DefaultModels), len(cfg.Models))
	}

	// Defaults must be a copy, not an alias
	cfg.Models[0] = "changed"
	if DefaultModels[0] == "changed" {
		t.Error("New() must copy DefaultModels, not alias it")
	}
}

func TestLoad_FlagNormalization(t *testing.T) {
	tests := []struct {
		name            string
		flags           Flags
		expectedProject string
		expectedPage    int
		expectedLimit   int
	}{
		{
			name:            "empty flags get defaults",
			flags:           Flags{},
			expectedProject: DefaultProject,
			expectedPage:    1,
			expectedLimit:   DefaultPageSize,
		},
		{
			name:            "negative page clamped to 1",
			flags:           Flags{Project: "Demo", Page: -3, Limit: 50},
			expectedProject: "Demo",
			expectedPage:    1,
			expectedLimit:   50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load(tt.flags)
			if cfg.Flags.Project != tt.expectedProject {
				t.Errorf("expected project %s, got %s", tt.expectedProject, cfg.Flags.Project)
			}
			if cfg.Flags.Page != tt.expectedPage {
				t.Errorf("expected page %d, got %d", tt.expectedPage, cfg.Flags.Page)
			}
			if cfg.Flags.Limit != tt.expectedLimit {
				t.Errorf("expected limit %d, got %d", tt.expectedLimit, cfg.Flags.Limit)
			}
		})
	}
}

func TestConfig_GetDBDSN(t *testing.T) {
	t.Run("sqlite path resolved to absolute", func(t *testing.T) {
		cfg := New()
		cfg.DBDSN = "storage/mtp.db"
		got := cfg.GetDBDSN()
		if !filepath.IsAbs(got) {
			t.Errorf("expected absolute path, got %s", got)
		}
	})

	t.Run("memory DSN kept as-is", func(t *testing.T) {
		cfg := New()
		cfg.DBDSN = ":memory:"
		if got := cfg.GetDBDSN(); got != ":memory:" {
			t.Errorf("expected :memory:, got %s", got)
		}
	})

	t.Run("mysql DSN untouched", func(t *testing.T) {
		cfg := New()
		cfg.DBDriver = "mysql"
		cfg.DBDSN = "root:@tcp(127.0.0.1:3306)/mtp"
		if got := cfg.GetDBDSN(); got != cfg.DBDSN {
			t.Errorf("expected DSN untouched, got %s", got)
		}
	})
}

func TestSplitModels(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"single model", "gemini-2.0-flash", 1},
		{"comma list with spaces", "gemini-2.0-flash-exp, gemini-1.5-flash", 2},
		{"trailing comma", "a,b,", 2},
		{"empty entries dropped", ",, a ,", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitModels(tt.input)
			if len(got) != tt.expected {
				t.Errorf("expected %d models, got %d: %v", tt.expected, len(got), got)
			}
		})
	}
}
