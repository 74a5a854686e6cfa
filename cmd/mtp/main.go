package main

import (
	"fmt"
	"os"

	"mtp/internal/cli"
	"mtp/internal/cli/commands"
	"mtp/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:     "mtp",
		Short:   "Manual test case processor",
		Long:    `A test case lifecycle tool for manual QA. Extract checklist test cases from requirement documents with AI, walk them interactively, and collect AI-drafted bug reports for every failure.`,
		Version: version,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
