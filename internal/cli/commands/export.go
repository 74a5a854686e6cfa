package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"mtp/internal/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ExportCommand handles the export command
type ExportCommand struct {
	config *config.Config
}

// NewExportCommand creates a new ExportCommand
func NewExportCommand(cfg *config.Config) *ExportCommand {
	return &ExportCommand{config: cfg}
}

// Execute runs the command
func (ec *ExportCommand) Execute(cmd *cobra.Command, args []string) error {
	logger := newLogger(ec.config)
	defer logger.Sync()

	st, err := openStore(ec.config, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	project := ec.config.Flags.Project
	output := ec.config.Flags.Output
	if output == "" {
		output = fmt.Sprintf("%s_cases.csv", strings.ReplaceAll(strings.ToLower(project), " ", "_"))
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "module", "case", "status", "bug_report"}); err != nil {
		return err
	}

	exported := 0
	for page := 1; ; page++ {
		cases, total, _, err := st.ListPaged(project, page, config.MaxPageSize, "")
		if err != nil {
			return err
		}
		for _, c := range cases {
			record := []string{
				strconv.FormatInt(c.ID, 10),
				c.Module,
				c.Content,
				string(c.Status),
				c.BugReport,
			}
			if err := w.Write(record); err != nil {
				return err
			}
			exported++
		}
		if exported >= total || len(cases) == 0 {
			break
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	color.Green("✓ Exported %d case(s) to %s", exported, output)
	return nil
}
