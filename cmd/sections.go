package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arredohq/arredo/internal/models"
	"github.com/arredohq/arredo/internal/repositories"
	"github.com/arredohq/arredo/internal/shared"
	"github.com/urfave/cli/v3"
)

// SectionShow prints a section's current state. With --cached the section is
// read from the local snapshot store instead of the CRM.
func (r *Runner) SectionShow(ctx context.Context, cmd *cli.Command) error {
	sectionID := cmd.StringArg("id")
	if sectionID == "" {
		return fmt.Errorf("%w: section id is required", shared.ErrMissingArgument)
	}

	var section *models.Section
	var err error

	if cmd.Bool("cached") {
		db, dbErr := r.cacheDB()
		if dbErr != nil {
			return dbErr
		}
		section, err = repositories.NewSnapshotRepository(db).Section(sectionID)
		if errors.Is(err, shared.ErrSectionNotFound) {
			return fmt.Errorf("%w: no cached snapshot for %s", shared.ErrSectionNotFound, sectionID)
		}
	} else {
		section, err = r.crm.SectionByID(ctx, sectionID)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(section, cmd.Bool("pretty"))
	}

	r.writePlainHeader(section.Title)
	r.writePlain("ID: %s\n", section.ID)
	if section.Type != "" {
		r.writePlain("Room type: %s\n", section.Type)
	}
	r.writePlain("Products: %d\n", len(section.Products))
	for _, p := range section.Products {
		r.writePlain("  %s x%d  %s\n", p.ProductID, p.Quantity, p.Name)
	}
	if d := section.LatestDesign(); d != nil {
		r.writePlain("Rendering: %s\n", d.Status)
		if d.ResultImageURL != "" {
			r.writePlain("Image: %s\n", d.ResultImageURL)
		}
	} else {
		r.writePlain("Rendering: none\n")
	}
	return nil
}

// SectionAdd creates a section under a project, optionally attaching a room
// photo as a multipart upload.
func (r *Runner) SectionAdd(ctx context.Context, cmd *cli.Command) error {
	projectID := cmd.String("project")
	title := cmd.StringArg("title")
	if projectID == "" {
		return fmt.Errorf("%w: --project is required", shared.ErrMissingArgument)
	}
	if title == "" {
		title = "New Section"
	}

	roomType := cmd.String("type")
	if roomType != "" && models.RoomTypeByName(roomType) == nil {
		r.logger.Warnf("unknown room type %q, sending as-is", roomType)
	}

	section := &models.Section{Title: title, Type: roomType}

	created, err := r.crm.AddSection(ctx, projectID, section, cmd.String("image"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("✓ Section created: %s (%s)\n", created.Title, created.ID)
	return nil
}

// SectionRename updates a section title.
func (r *Runner) SectionRename(ctx context.Context, cmd *cli.Command) error {
	sectionID := cmd.StringArg("id")
	title := cmd.StringArg("title")
	if sectionID == "" || title == "" {
		return fmt.Errorf("%w: section id and new title are required", shared.ErrMissingArgument)
	}

	if err := r.crm.RenameSection(ctx, sectionID, title); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("✓ Section renamed to %s\n", title)
	return nil
}

// SectionRemove deletes a section.
func (r *Runner) SectionRemove(ctx context.Context, cmd *cli.Command) error {
	sectionID := cmd.StringArg("id")
	if sectionID == "" {
		return fmt.Errorf("%w: section id is required", shared.ErrMissingArgument)
	}

	if err := r.crm.DeleteSection(ctx, sectionID); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("✓ Section %s removed\n", sectionID)
	return nil
}

// SectionProductAdd places a product into a section.
func (r *Runner) SectionProductAdd(ctx context.Context, cmd *cli.Command) error {
	sectionID := cmd.StringArg("id")
	productID := cmd.String("product")
	if sectionID == "" || productID == "" {
		return fmt.Errorf("%w: section id and --product are required", shared.ErrMissingArgument)
	}

	quantity := int(cmd.Int("quantity"))
	if quantity <= 0 {
		quantity = 1
	}

	selection := models.ProductSelection{ProductID: productID, Quantity: quantity}
	section, err := r.crm.AddProduct(ctx, sectionID, selection)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("✓ Product added, section now has %d products\n", len(section.Products))
	return nil
}

// SectionProductRemove removes a product from a section.
func (r *Runner) SectionProductRemove(ctx context.Context, cmd *cli.Command) error {
	sectionID := cmd.StringArg("id")
	productID := cmd.String("product")
	if sectionID == "" || productID == "" {
		return fmt.Errorf("%w: section id and --product are required", shared.ErrMissingArgument)
	}

	if err := r.crm.RemoveProduct(ctx, sectionID, productID); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("✓ Product %s removed from section\n", productID)
	return nil
}

// SectionOpen opens the section's latest rendering in the default browser.
func (r *Runner) SectionOpen(ctx context.Context, cmd *cli.Command) error {
	sectionID := cmd.StringArg("id")
	if sectionID == "" {
		return fmt.Errorf("%w: section id is required", shared.ErrMissingArgument)
	}

	section, err := r.crm.SectionByID(ctx, sectionID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	d := section.LatestDesign()
	if d == nil || d.ResultImageURL == "" {
		return fmt.Errorf("%w: section has no finished rendering", shared.ErrGenerationPending)
	}

	r.logger.Infof("opening %v", d.ResultImageURL)
	return shared.OpenBrowser(d.ResultImageURL)
}

// SectionGenerate submits a rendering job. With --watch the command stays
// attached and prints status updates until the rendering reaches a terminal
// state.
func (r *Runner) SectionGenerate(ctx context.Context, cmd *cli.Command) error {
	sectionID := cmd.StringArg("id")
	projectID := cmd.String("project")
	prompt := cmd.String("prompt")
	if sectionID == "" || projectID == "" {
		return fmt.Errorf("%w: section id and --project are required", shared.ErrMissingArgument)
	}

	watch := cmd.Bool("watch")

	var done chan models.Section
	var unsubscribe func()
	if watch {
		done = make(chan models.Section, 16)
		unsubscribe = r.tracker.Subscribe(func(section models.Section) {
			if section.ID == sectionID {
				select {
				case done <- section:
				default:
				}
			}
		})
		defer unsubscribe()
	}

	if err := r.tracker.StartGeneration(ctx, projectID, sectionID, prompt); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrGenerationFailed, err)
	}

	r.writePlain("✓ Rendering submitted for section %s\n", sectionID)
	if !watch {
		return nil
	}

	timeout := time.Duration(cmd.Int("timeout")) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w: rendering still in flight after %v", shared.ErrTimeout, timeout)
		case section := <-done:
			d := section.LatestDesign()
			if d == nil {
				continue
			}
			r.writePlain("  status: %s\n", d.Status)
			if !d.Status.Terminal() {
				continue
			}
			if d.Status == models.StatusCompleted {
				r.writePlain("✓ Rendering complete: %s\n", d.ResultImageURL)
				return nil
			}
			return fmt.Errorf("%w: rendering finished with status %s", shared.ErrGenerationFailed, d.Status)
		}
	}
}

// sectionCommand handles section operations
func sectionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "section",
		Aliases: []string{"sections", "s"},
		Usage:   "Section operations",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show a section with its products and rendering state",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "cached",
						Usage: "Read from the local snapshot store",
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
				Action: r.SectionShow,
			},
			{
				Name:  "add",
				Usage: "Create a section under a project",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "title"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "project",
						Aliases:  []string{"P"},
						Usage:    "Project ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Room type name",
					},
					&cli.StringFlag{
						Name:    "image",
						Aliases: []string{"i"},
						Usage:   "Path to a room photo to attach",
					},
				},
				Action: r.SectionAdd,
			},
			{
				Name:  "rename",
				Usage: "Rename a section",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "title"},
				},
				Action: r.SectionRename,
			},
			{
				Name:    "rm",
				Aliases: []string{"remove", "delete"},
				Usage:   "Delete a section",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.SectionRemove,
			},
			{
				Name:  "products",
				Usage: "Manage a section's product selections",
				Commands: []*cli.Command{
					{
						Name:  "add",
						Usage: "Add a product to a section",
						Arguments: []cli.Argument{
							&cli.StringArg{Name: "id"},
						},
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "product",
								Usage:    "Product ID",
								Required: true,
							},
							&cli.IntFlag{
								Name:  "quantity",
								Usage: "Quantity",
								Value: 1,
							},
						},
						Action: r.SectionProductAdd,
					},
					{
						Name:    "rm",
						Aliases: []string{"remove"},
						Usage:   "Remove a product from a section",
						Arguments: []cli.Argument{
							&cli.StringArg{Name: "id"},
						},
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "product",
								Usage:    "Product ID",
								Required: true,
							},
						},
						Action: r.SectionProductRemove,
					},
				},
			},
			{
				Name:  "open",
				Usage: "Open the latest rendering in the browser",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.SectionOpen,
			},
			{
				Name:    "generate",
				Aliases: []string{"gen"},
				Usage:   "Submit a rendering job for a section",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "project",
						Aliases: []string{"P"},
						Usage:   "Project ID",
					},
					&cli.StringFlag{
						Name:  "prompt",
						Usage: "Rendering prompt",
					},
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Stay attached until the rendering finishes",
					},
					&cli.IntFlag{
						Name:  "timeout",
						Usage: "Watch timeout in seconds",
						Value: 600,
					},
				},
				Action: r.SectionGenerate,
			},
		},
	}
}
