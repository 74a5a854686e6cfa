package commands

import (
	"mtp/internal/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RetestCommand handles the retest command
type RetestCommand struct {
	config *config.Config
}

// NewRetestCommand creates a new RetestCommand
func NewRetestCommand(cfg *config.Config) *RetestCommand {
	return &RetestCommand{config: cfg}
}

// Execute runs the command
func (rc *RetestCommand) Execute(cmd *cobra.Command, args []string) error {
	logger := newLogger(rc.config)
	defer logger.Sync()

	st, err := openStore(rc.config, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	project := rc.config.Flags.Project
	module := rc.config.Flags.Module

	if err := st.ResetModule(project, module); err != nil {
		return err
	}

	color.Green("✓ Module %s / %s reset, all cases are pending again.", project, module)
	return nil
}
