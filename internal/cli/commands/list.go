package commands

import (
	"mtp/internal/config"
	"mtp/internal/ui"

	"github.com/spf13/cobra"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	formatter *ui.Formatter
}

// NewListCommand creates a new ListCommand
func NewListCommand(cfg *config.Config, formatter *ui.Formatter) *ListCommand {
	return &ListCommand{
		config:    cfg,
		formatter: formatter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	logger := newLogger(lc.config)
	defer logger.Sync()

	st, err := openStore(lc.config, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	flags := lc.config.Flags

	if flags.Search != "" {
		cases, err := st.SearchCases(flags.Project, flags.Search, flags.Limit)
		if err != nil {
			return err
		}
		lc.formatter.PrintSearchResults(flags.Search, cases)
		return nil
	}

	cases, total, modules, err := st.ListPaged(flags.Project, flags.Page, flags.Limit, flags.Status)
	if err != nil {
		return err
	}

	pageSize := flags.Limit
	if pageSize > config.MaxPageSize {
		pageSize = config.MaxPageSize
	}
	lc.formatter.PrintCaseList(cases, flags.Page, pageSize, total, modules)
	return nil
}
