package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"mtp/internal/ai"
	"mtp/internal/config"
	"mtp/internal/extract"
	"mtp/internal/ingest"
	"mtp/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// IngestCommand handles the ingest command
type IngestCommand struct {
	config    *config.Config
	formatter *ui.Formatter
}

// NewIngestCommand creates a new IngestCommand
func NewIngestCommand(cfg *config.Config, formatter *ui.Formatter) *IngestCommand {
	return &IngestCommand{
		config:    cfg,
		formatter: formatter,
	}
}

// Execute runs the command
func (ic *IngestCommand) Execute(cmd *cobra.Command, args []string) error {
	logger := newLogger(ic.config)
	defer logger.Sync()

	path := args[0]
	text, err := extract.FromFile(path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("document %s contains no text", path)
	}

	st, err := openStore(ic.config, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), ic.config.RequestTimeout)
	defer cancel()

	gateway, err := newGateway(ctx, ic.config, logger)
	if err != nil {
		return err
	}

	color.Cyan("Extracting test cases from %s ...", filepath.Base(path))
	module, drafts, err := gateway.ExtractCases(ctx, text)
	if err != nil {
		if ai.IsFormatError(err) {
			return fmt.Errorf("AI returned an unusable response, try again: %w", err)
		}
		return err
	}
	if ic.config.Flags.Module != "" {
		module = ic.config.Flags.Module
	}
	if len(drafts) == 0 {
		color.Yellow("No test cases found in the document.")
		return nil
	}

	ingestor := ingest.New(st, logger)
	result, err := ingestor.Ingest(ic.config.Flags.Project, module, drafts)
	if err != nil {
		return err
	}

	color.Green("✓ Ingested %d case(s) into %s / %s", result.Inserted, result.Project, result.Module)
	return nil
}
