package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"mtp/internal/config"
	"mtp/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// BugsCommand handles the bugs command
type BugsCommand struct {
	config *config.Config
}

// NewBugsCommand creates a new BugsCommand
func NewBugsCommand(cfg *config.Config) *BugsCommand {
	return &BugsCommand{config: cfg}
}

// Execute runs the command
func (bc *BugsCommand) Execute(cmd *cobra.Command, args []string) error {
	logger := newLogger(bc.config)
	defer logger.Sync()

	st, err := openStore(bc.config, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	viewer := ui.NewBugViewer(st)
	return viewer.View(bc.config.Flags.Project)
}

// ExecuteUpdate replaces a failed case's bug report with the contents of a
// file, or stdin when no file is given.
func (bc *BugsCommand) ExecuteUpdate(cmd *cobra.Command, args []string) error {
	logger := newLogger(bc.config)
	defer logger.Sync()

	caseID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid case id %q", args[0])
	}

	var data []byte
	if len(args) > 1 {
		if data, err = os.ReadFile(args[1]); err != nil {
			return err
		}
	} else {
		if data, err = io.ReadAll(os.Stdin); err != nil {
			return err
		}
	}
	report := strings.TrimSpace(string(data))
	if report == "" {
		return fmt.Errorf("replacement report is empty")
	}

	st, err := openStore(bc.config, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.UpdateBugReport(caseID, report); err != nil {
		return err
	}
	color.Green("✓ Bug report for case #%d updated.", caseID)
	return nil
}
