package main

import (
	"context"
	"fmt"

	"github.com/arredohq/arredo/internal/models"
	"github.com/arredohq/arredo/internal/shared"
	"github.com/urfave/cli/v3"
)

// ProjectsList lists the authenticated user's projects.
func (r *Runner) ProjectsList(ctx context.Context, cmd *cli.Command) error {
	detailed := cmd.Bool("detailed")

	r.logger.Infof("listing projects (detailed=%v)", detailed)

	projects, err := r.crm.Projects(ctx, detailed)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(projects, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Projects (%d)", len(projects)))
	for _, p := range projects {
		r.writePlain("%s  %s", p.ID, p.Name)
		if detailed {
			r.writePlain("  (%d sections)", len(p.Sections))
		}
		r.writePlain("\n")
	}
	return nil
}

// ProjectShow prints one project with its sections.
func (r *Runner) ProjectShow(ctx context.Context, cmd *cli.Command) error {
	projectID := cmd.StringArg("id")
	if projectID == "" {
		return fmt.Errorf("%w: project id is required", shared.ErrMissingArgument)
	}

	project, err := r.crm.ProjectByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(project, cmd.Bool("pretty"))
	}

	r.writePlainHeader(project.Name)
	if project.Details != "" {
		r.writePlain("%s\n", project.Details)
	}
	r.writePlain("Sections: %d\n", len(project.Sections))
	for _, s := range project.Sections {
		status := "no rendering"
		if d := s.LatestDesign(); d != nil {
			status = string(d.Status)
		}
		r.writePlain("  %s  %-24s %s\n", s.ID, s.Title, status)
	}
	return nil
}

// ProjectCreate creates a project.
func (r *Runner) ProjectCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: project name is required", shared.ErrMissingArgument)
	}

	project := &models.Project{
		Name:        name,
		Details:     cmd.String("details"),
		MobilePhone: cmd.String("phone"),
		Address: models.Address{
			Line1: cmd.String("address"),
		},
	}

	created, err := r.crm.CreateProject(ctx, project)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("✓ Project created: %s (%s)\n", created.Name, created.ID)
	return nil
}

// ProjectRename updates a project name.
func (r *Runner) ProjectRename(ctx context.Context, cmd *cli.Command) error {
	projectID := cmd.StringArg("id")
	name := cmd.StringArg("name")
	if projectID == "" || name == "" {
		return fmt.Errorf("%w: project id and new name are required", shared.ErrMissingArgument)
	}

	if err := r.crm.RenameProject(ctx, projectID, name); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("✓ Project renamed to %s\n", name)
	return nil
}

// ProjectRemove deletes a project.
func (r *Runner) ProjectRemove(ctx context.Context, cmd *cli.Command) error {
	projectID := cmd.StringArg("id")
	if projectID == "" {
		return fmt.Errorf("%w: project id is required", shared.ErrMissingArgument)
	}

	if err := r.crm.RemoveProject(ctx, projectID); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("✓ Project %s removed\n", projectID)
	return nil
}

// projectsCommand handles project operations
func projectsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "projects",
		Aliases: []string{"project", "p"},
		Usage:   "Project operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List projects",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "detailed",
						Usage: "Include sections in each project",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.ProjectsList,
			},
			{
				Name:  "show",
				Usage: "Show a project and its sections",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.ProjectShow,
			},
			{
				Name:  "create",
				Usage: "Create a project",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "details", Usage: "Project details"},
					&cli.StringFlag{Name: "phone", Usage: "Contact phone"},
					&cli.StringFlag{Name: "address", Usage: "Delivery address"},
				},
				Action: r.ProjectCreate,
			},
			{
				Name:  "rename",
				Usage: "Rename a project",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "name"},
				},
				Action: r.ProjectRename,
			},
			{
				Name:    "rm",
				Aliases: []string{"remove", "delete"},
				Usage:   "Delete a project",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.ProjectRemove,
			},
		},
	}
}
