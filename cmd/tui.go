package main

import (
	"context"
	"fmt"

	"github.com/arredohq/arredo/internal/shared"
	"github.com/arredohq/arredo/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for browsing projects and running
// the section design flows.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.crm == nil {
		return fmt.Errorf("%w: CRM service not initialized", shared.ErrServiceUnavailable)
	}
	if r.tracker == nil {
		return fmt.Errorf("%w: generation tracker not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/arredo-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.crm, r.sess, r.tracker)
	defer model.Close()
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// tuiCommand returns the top-level TUI command for interactive design work.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for project and section design",
		Action:  r.TUI,
	}
}
