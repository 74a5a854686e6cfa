package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Storage settings
	DBDriver string // "sqlite" or "mysql"
	DBDSN    string // driver-specific DSN; for sqlite this is the file path

	// AI settings
	APIKey         string
	Models         []string // priority-ordered fallback chain
	MaxAttempts    int
	BaseDelay      time.Duration
	RequestTimeout time.Duration

	// Ingestion settings
	DefaultModuleName string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	Project string
	Module  string
	Page    int
	Limit   int
	Status  string
	Search  string
	Output  string
	Verbose bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		DBDriver:          DefaultDBDriver,
		DBDSN:             DefaultDBPath,
		MaxAttempts:       DefaultMaxAttempts,
		BaseDelay:         DefaultBaseDelay,
		RequestTimeout:    DefaultRequestTimeout,
		DefaultModuleName: DefaultModuleName,
		Flags:             Flags{Project: DefaultProject, Page: 1, Limit: DefaultPageSize},
	}
	cfg.Models = make([]string, len(DefaultModels))
	copy(cfg.Models, DefaultModels)
	return cfg
}

// Load creates a config, applies .env/environment overrides, then flags.
func Load(flags Flags) *Config {
	cfg := New()

	// .env file might not exist, that's okay - use environment variables
	_ = godotenv.Load()

	if driver := os.Getenv("MTP_DB_DRIVER"); driver != "" {
		cfg.DBDriver = driver
	}
	if dsn := os.Getenv("MTP_DB_DSN"); dsn != "" {
		cfg.DBDSN = dsn
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.APIKey = key
	}
	if models := os.Getenv("MTP_MODELS"); models != "" {
		cfg.Models = splitModels(models)
	}

	cfg.Flags = flags
	if cfg.Flags.Project == "" {
		cfg.Flags.Project = DefaultProject
	}
	if cfg.Flags.Page < 1 {
		cfg.Flags.Page = 1
	}
	if cfg.Flags.Limit <= 0 {
		cfg.Flags.Limit = DefaultPageSize
	}

	return cfg
}

// GetDBDSN returns the DSN to open, resolving sqlite paths to absolute form
// so every command reads the same database regardless of cwd.
func (c *Config) GetDBDSN() string {
	if c.DBDriver != "sqlite" {
		return c.DBDSN
	}
	if c.DBDSN == ":memory:" || strings.HasPrefix(c.DBDSN, "file:") {
		return c.DBDSN
	}
	if abs, err := filepath.Abs(c.DBDSN); err == nil {
		return abs
	}
	return c.DBDSN
}

// splitModels parses a comma-separated model list, dropping empty entries.
func splitModels(s string) []string {
	parts := strings.Split(s, ",")
	models := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			models = append(models, p)
		}
	}
	return models
}
