package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"mtp/internal/ai"
	"mtp/internal/config"
	"mtp/internal/domain"
	"mtp/internal/session"
	"mtp/internal/store"
	"mtp/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	formatter *ui.Formatter
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(cfg *config.Config, formatter *ui.Formatter) *RunCommand {
	return &RunCommand{
		config:    cfg,
		formatter: formatter,
	}
}

// lazyDrafter defers gateway construction until the first failure, so a
// session where every case passes never needs an API key.
type lazyDrafter struct {
	cfg     *config.Config
	logger  *zap.Logger
	gateway *ai.Gateway
}

func (d *lazyDrafter) DraftBugReport(ctx context.Context, caseText, observation string) (string, error) {
	if d.gateway == nil {
		gateway, err := newGateway(ctx, d.cfg, d.logger)
		if err != nil {
			return "", err
		}
		d.gateway = gateway
	}
	return d.gateway.DraftBugReport(ctx, caseText, observation)
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	logger := newLogger(rc.config)
	defer logger.Sync()

	st, err := openStore(rc.config, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	project := rc.config.Flags.Project
	module := rc.config.Flags.Module

	if module == "" {
		return rc.listPendingModules(st, project)
	}

	drafter := &lazyDrafter{cfg: rc.config, logger: logger}
	orch := session.New(st, drafter, logger)

	total, passed, failed, err := moduleCounts(st, project, module)
	if err != nil {
		return err
	}
	if total == 0 {
		color.Yellow("Module %q has no cases. Run ingest first.", module)
		return nil
	}

	color.Cyan("Testing %s / %s", project, module)
	bar := ui.NewProgressBar(total)
	bar.Update(passed, failed)

	reader := bufio.NewReader(os.Stdin)
	for {
		next, err := orch.NextCase(project, module)
		if err != nil {
			return err
		}
		if next == nil {
			bar.Finish()
			stats, err := orch.Stats(project)
			if err != nil {
				return err
			}
			fmt.Println()
			color.Green("✓ Session complete: %d passed, %d failed in %s.", stats.Passed, stats.Failed, project)
			return nil
		}

		position := passed + failed + 1
		if position > total {
			position = total
		}
		rc.formatter.PrintCase(next.Case, next.Retest, position, total)

		verdict, err := prompt(reader, color.CyanString("[p]ass, [f]ail, [q]uit: "))
		if err == io.EOF {
			color.Yellow("\nSession paused. Run again to pick up where you left off.")
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.ToLower(verdict) {
		case "p", "pass":
			if err := orch.RecordResult(context.Background(), next.ID, domain.OutcomePass, ""); err != nil {
				return err
			}

		case "f", "fail":
			observation, err := prompt(reader, color.CyanString("Describe what you observed: "))
			if err == io.EOF {
				color.Yellow("\nSession paused. Run again to pick up where you left off.")
				return nil
			}
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), rc.config.RequestTimeout)
			err = orch.RecordResult(ctx, next.ID, domain.OutcomeFail, observation)
			cancel()
			if err != nil {
				if domain.IsValidation(err) {
					color.Red("An observation is required to fail a case.")
					continue
				}
				color.Red("Bug report drafting failed: %v", err)
				color.Yellow("The case is still pending, try again or pass it.")
				continue
			}
			color.Green("✓ Bug report attached.")

		case "q", "quit":
			color.Yellow("Session paused. Run again to pick up where you left off.")
			return nil

		default:
			color.Yellow("Unrecognized input %q.", verdict)
			continue
		}

		if total, passed, failed, err = moduleCounts(st, project, module); err != nil {
			return err
		}
		bar.Update(passed, failed)
	}
}

// listPendingModules shows where unfinished work is when no module was given.
func (rc *RunCommand) listPendingModules(st store.Store, project string) error {
	pending, err := st.PendingModules(project)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(pending))
	for name := range pending {
		names = append(names, name)
	}
	sort.Strings(names)

	rc.formatter.PrintPendingModules(pending, names)
	if len(pending) > 0 {
		color.White("\nStart a session with --module.")
	}
	return nil
}

// moduleCounts returns the module's total/passed/failed counters.
func moduleCounts(st store.Store, project, module string) (total, passed, failed int, err error) {
	stats, err := st.ModuleStats(project)
	if err != nil {
		return 0, 0, 0, err
	}
	for _, m := range stats {
		if m.Name == module {
			return m.Total, m.Passed, m.Failed, nil
		}
	}
	return 0, 0, 0, nil
}

// prompt reads one trimmed line from the tester.
func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
