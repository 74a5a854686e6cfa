package commands

import (
	"errors"
	"fmt"

	"mtp/internal/config"
	"mtp/internal/domain"
	"mtp/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ProjectsCommand handles the projects command group
type ProjectsCommand struct {
	config    *config.Config
	formatter *ui.Formatter
}

// NewProjectsCommand creates a new ProjectsCommand
func NewProjectsCommand(cfg *config.Config, formatter *ui.Formatter) *ProjectsCommand {
	return &ProjectsCommand{
		config:    cfg,
		formatter: formatter,
	}
}

// Execute lists all projects
func (pc *ProjectsCommand) Execute(cmd *cobra.Command, args []string) error {
	logger := newLogger(pc.config)
	defer logger.Sync()

	st, err := openStore(pc.config, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	projects, err := st.ListProjects()
	if err != nil {
		return err
	}
	pc.formatter.PrintProjects(projects)
	return nil
}

// ExecuteCreate creates a project
func (pc *ProjectsCommand) ExecuteCreate(cmd *cobra.Command, args []string) error {
	logger := newLogger(pc.config)
	defer logger.Sync()

	st, err := openStore(pc.config, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	project, err := st.CreateProject(args[0])
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return fmt.Errorf("project %q already exists", args[0])
		}
		return err
	}
	color.Green("✓ Created project %s", project.Name)
	return nil
}

// ExecuteDelete deletes a project with everything under it
func (pc *ProjectsCommand) ExecuteDelete(cmd *cobra.Command, args []string) error {
	logger := newLogger(pc.config)
	defer logger.Sync()

	st, err := openStore(pc.config, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteProject(args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("project %q does not exist", args[0])
		}
		return err
	}
	color.Green("✓ Deleted project %s and all its cases", args[0])
	return nil
}
