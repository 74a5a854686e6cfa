package commands

import (
	"mtp/internal/config"
	"mtp/internal/ui"

	"github.com/spf13/cobra"
)

// StatsCommand handles the stats command
type StatsCommand struct {
	config    *config.Config
	formatter *ui.Formatter
}

// NewStatsCommand creates a new StatsCommand
func NewStatsCommand(cfg *config.Config, formatter *ui.Formatter) *StatsCommand {
	return &StatsCommand{
		config:    cfg,
		formatter: formatter,
	}
}

// Execute runs the command
func (sc *StatsCommand) Execute(cmd *cobra.Command, args []string) error {
	logger := newLogger(sc.config)
	defer logger.Sync()

	st, err := openStore(sc.config, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	project := sc.config.Flags.Project
	stats, err := st.GetStats(project)
	if err != nil {
		return err
	}
	modules, err := st.ModuleStats(project)
	if err != nil {
		return err
	}

	sc.formatter.PrintStats(project, stats, modules)
	return nil
}
