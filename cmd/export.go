package main

import (
	"context"
	"fmt"

	"github.com/arredohq/arredo/internal/formatter"
	"github.com/arredohq/arredo/internal/shared"
	"github.com/urfave/cli/v3"
)

// Export writes a project's sections to CSV, markdown or text files, plus a
// metadata JSON sidecar. With --image the latest rendering of a single
// section is downloaded instead.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	projectID := cmd.StringArg("id")
	if projectID == "" {
		return fmt.Errorf("%w: project id is required", shared.ErrMissingArgument)
	}

	if sectionID := cmd.String("image"); sectionID != "" {
		section, err := r.crm.SectionByID(ctx, sectionID)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		path, err := formatter.SaveRendering(section, cmd.String("output"))
		if err != nil {
			return fmt.Errorf("failed to save rendering: %w", err)
		}
		r.writePlain("✓ Rendering saved to %s\n", path)
		return nil
	}

	project, err := r.crm.ProjectByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	base := cmd.String("output")
	if base == "" {
		base = project.Name
	}

	result, err := formatter.WriteExport(project, cmd.String("format"), base)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.writePlain("✓ Sections written to %s\n", result.DataFile)
	r.writePlain("✓ Metadata written to %s\n", result.MetadataFile)
	return nil
}

// exportCommand handles project export operations
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export a project's sections and renderings",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: csv, markdown or txt",
				Value:   "csv",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Base path for output files",
			},
			&cli.StringFlag{
				Name:  "image",
				Usage: "Download the latest rendering of this section instead",
			},
		},
		Action: r.Export,
	}
}
