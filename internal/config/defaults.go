package config

import "time"

const (
	// DefaultDBDriver is the storage driver used when none is configured
	DefaultDBDriver = "sqlite"
	// DefaultDBPath is the default SQLite database file
	DefaultDBPath = "storage/mtp.db"
	// DefaultProject is the project used when none is given
	DefaultProject = "Default"
	// DefaultModuleName is used when the AI returns a bare case list without a module name
	DefaultModuleName = "Generated Module"
	// DefaultPageSize is the default page size for case listings
	DefaultPageSize = 20
	// MaxPageSize is the upper bound for a single listing page
	MaxPageSize = 100
	// DefaultMaxAttempts is the per-model attempt ceiling for AI calls
	DefaultMaxAttempts = 3
	// DefaultBaseDelay is the initial backoff delay between AI attempts
	DefaultBaseDelay = 2 * time.Second
	// DefaultRequestTimeout bounds a single AI attempt
	DefaultRequestTimeout = 90 * time.Second
)

// DefaultModels is the priority-ordered model fallback chain: primary first,
// then successively cheaper/more available models.
var DefaultModels = []string{
	"gemini-2.0-flash-exp",
	"gemini-2.0-flash",
	"gemini-1.5-flash",
}
