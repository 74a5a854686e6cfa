package cli

import "mtp/internal/config"

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

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Project: f.Project,
		Module:  f.Module,
		Page:    f.Page,
		Limit:   f.Limit,
		Status:  f.Status,
		Search:  f.Search,
		Output:  f.Output,
		Verbose: f.Verbose,
	}
}
