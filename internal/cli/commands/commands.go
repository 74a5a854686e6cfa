package commands

import (
	"context"
	"fmt"

	"mtp/internal/ai"
	"mtp/internal/cli"
	"mtp/internal/config"
	"mtp/internal/store"
	"mtp/internal/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Commands holds all CLI commands
type Commands struct {
	Ingest   *IngestCommand
	Run      *RunCommand
	List     *ListCommand
	Stats    *StatsCommand
	Projects *ProjectsCommand
	Retest   *RetestCommand
	Bugs     *BugsCommand
	Export   *ExportCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	formatter := ui.NewFormatter()

	return &Commands{
		Ingest:   NewIngestCommand(cfg, formatter),
		Run:      NewRunCommand(cfg, formatter),
		List:     NewListCommand(cfg, formatter),
		Stats:    NewStatsCommand(cfg, formatter),
		Projects: NewProjectsCommand(cfg, formatter),
		Retest:   NewRetestCommand(cfg),
		Bugs:     NewBugsCommand(cfg),
		Export:   NewExportCommand(cfg),
	}
}

// newLogger builds the command logger. Verbose mode enables debug output;
// otherwise logging is silent and the terminal belongs to the formatter.
func newLogger(cfg *config.Config) *zap.Logger {
	if !cfg.Flags.Verbose {
		return zap.NewNop()
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// openStore opens the configured database.
func openStore(cfg *config.Config, logger *zap.Logger) (*store.SQLStore, error) {
	return store.Open(cfg, logger)
}

// newGateway builds the AI gateway. Requires GEMINI_API_KEY.
func newGateway(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*ai.Gateway, error) {
	client, err := ai.NewGeminiClient(ctx, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("set GEMINI_API_KEY in the environment or .env: %w", err)
	}
	policy := ai.Policy{
		Models:      cfg.Models,
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
	}
	return ai.NewGateway(client, policy, cfg.DefaultModuleName, logger), nil
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	applyFlags := func(cmd *cobra.Command, args []string) error {
		*cfg = *config.Load(flags.ToConfigFlags())
		return nil
	}

	// Ingest command
	ingestCmd := &cobra.Command{
		Use:     "ingest <document>",
		Short:   "Extract test cases from a requirements document",
		Long:    "Read a requirements document (.txt, .docx or HTML .doc), extract checklist test cases with AI and store them as a module",
		Args:    cobra.ExactArgs(1),
		RunE:    c.Ingest.Execute,
		PreRunE: applyFlags,
	}
	ingestCmd.Flags().StringVarP(&flags.Project, "project", "p", "", "Project to ingest into")
	ingestCmd.Flags().StringVarP(&flags.Module, "module", "m", "", "Override the AI-generated module name")
	ingestCmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(ingestCmd)

	// Run command
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Walk a module's test cases interactively",
		Long:    "Present cases one by one, record pass/fail verdicts and attach AI-drafted bug reports to failures",
		RunE:    c.Run.Execute,
		PreRunE: applyFlags,
	}
	runCmd.Flags().StringVarP(&flags.Project, "project", "p", "", "Project to test")
	runCmd.Flags().StringVarP(&flags.Module, "module", "m", "", "Module to walk (omit to list pending modules)")
	runCmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List stored test cases",
		Long:    "Show a project's cases page by page, optionally filtered by status or full-text search",
		RunE:    c.List.Execute,
		PreRunE: applyFlags,
	}
	listCmd.Flags().StringVarP(&flags.Project, "project", "p", "", "Project to list")
	listCmd.Flags().IntVar(&flags.Page, "page", 1, "Page number")
	listCmd.Flags().IntVar(&flags.Limit, "limit", config.DefaultPageSize, "Cases per page")
	listCmd.Flags().StringVarP(&flags.Status, "status", "s", "", "Filter by status (PENDING, PASS, FAILED)")
	listCmd.Flags().StringVar(&flags.Search, "search", "", "Search case content and module names")
	rootCmd.AddCommand(listCmd)

	// Stats command
	statsCmd := &cobra.Command{
		Use:     "stats",
		Short:   "Show project statistics",
		Long:    "Display a project's case counters and per-module breakdown",
		RunE:    c.Stats.Execute,
		PreRunE: applyFlags,
	}
	statsCmd.Flags().StringVarP(&flags.Project, "project", "p", "", "Project to inspect")
	rootCmd.AddCommand(statsCmd)

	// Projects command group
	projectsCmd := &cobra.Command{
		Use:     "projects",
		Short:   "List projects",
		RunE:    c.Projects.Execute,
		PreRunE: applyFlags,
	}
	projectsCmd.AddCommand(&cobra.Command{
		Use:     "create <name>",
		Short:   "Create a project",
		Args:    cobra.ExactArgs(1),
		RunE:    c.Projects.ExecuteCreate,
		PreRunE: applyFlags,
	})
	projectsCmd.AddCommand(&cobra.Command{
		Use:     "delete <name>",
		Short:   "Delete a project and all its modules and cases",
		Args:    cobra.ExactArgs(1),
		RunE:    c.Projects.ExecuteDelete,
		PreRunE: applyFlags,
	})
	rootCmd.AddCommand(projectsCmd)

	// Retest command
	retestCmd := &cobra.Command{
		Use:     "retest",
		Short:   "Reset a module for a fresh test round",
		Long:    "Return every case in a module to PENDING and discard all bug reports",
		RunE:    c.Retest.Execute,
		PreRunE: applyFlags,
	}
	retestCmd.Flags().StringVarP(&flags.Project, "project", "p", "", "Project containing the module")
	retestCmd.Flags().StringVarP(&flags.Module, "module", "m", "", "Module to reset")
	retestCmd.MarkFlagRequired("module")
	rootCmd.AddCommand(retestCmd)

	// Bugs command
	bugsCmd := &cobra.Command{
		Use:     "bugs",
		Short:   "View bug reports interactively",
		Long:    "Browse the project's failed cases and their bug reports in an interactive viewer",
		RunE:    c.Bugs.Execute,
		PreRunE: applyFlags,
	}
	bugsCmd.Flags().StringVarP(&flags.Project, "project", "p", "", "Project to browse")
	bugsCmd.AddCommand(&cobra.Command{
		Use:     "update <case-id> [file]",
		Short:   "Replace a case's bug report with the given file or stdin",
		Args:    cobra.RangeArgs(1, 2),
		RunE:    c.Bugs.ExecuteUpdate,
		PreRunE: applyFlags,
	})
	rootCmd.AddCommand(bugsCmd)

	// Export command
	exportCmd := &cobra.Command{
		Use:     "export",
		Short:   "Export a project's cases to CSV",
		RunE:    c.Export.Execute,
		PreRunE: applyFlags,
	}
	exportCmd.Flags().StringVarP(&flags.Project, "project", "p", "", "Project to export")
	exportCmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Output file (default <project>_cases.csv)")
	rootCmd.AddCommand(exportCmd)
}
