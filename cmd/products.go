package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/arredohq/arredo/internal/models"
	"github.com/arredohq/arredo/internal/repositories"
	"github.com/arredohq/arredo/internal/services"
	"github.com/arredohq/arredo/internal/shared"
	"github.com/urfave/cli/v3"
)

// ProductsSearch runs a catalog search and prints one page of results.
// Results are mirrored into the local product cache on a best-effort basis.
func (r *Runner) ProductsSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	page := int(cmd.Int("page"))
	if page <= 0 {
		page = 1
	}

	var selections []services.FilterSelection
	for _, f := range cmd.StringSlice("filter") {
		key, values, ok := strings.Cut(f, "=")
		if !ok {
			return fmt.Errorf("%w: filter must be key=value[,value]", shared.ErrInvalidFlag)
		}
		selections = append(selections, services.FilterSelection{
			Key:    key,
			Values: strings.Split(values, ","),
		})
	}

	criteria := services.NewSearchCriteria(query, page, cmd.String("sort"), selections)

	r.logger.Infof("searching products: %v", criteria.String())

	result, err := r.crm.SearchProducts(ctx, criteria)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if db, dbErr := r.cacheDB(); dbErr != nil {
		r.logger.Warnf("product cache unavailable: %v", dbErr)
	} else {
		adapter := repositories.NewProductCacheAdapter(repositories.NewProductRepository(db))
		if cacheErr := adapter.CachePage(result.Content); cacheErr != nil {
			r.logger.Warnf("failed to cache products: %v", cacheErr)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Products (page %d/%d, %d total)",
		result.Page.Number, result.Page.TotalPages, result.Page.TotalElements))
	for _, p := range result.Content {
		line := fmt.Sprintf("%s  %-32s", p.ID, p.Name)
		if p.Category != "" {
			line += "  " + p.Category
		}
		if p.Price > 0 {
			line += fmt.Sprintf("  %.2f", p.Price)
		}
		r.writePlain("%s\n", line)
	}
	return nil
}

// ProductsVariants lists the variants sharing a product's base name.
func (r *Runner) ProductsVariants(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: product name is required", shared.ErrMissingArgument)
	}

	variants, err := r.crm.ProductVariants(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(variants, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Variants of %q (%d)", name, len(variants)))
	for _, v := range variants {
		r.writePlain("%s  %s  %s\n", v.ID, v.Name, v.Collection)
	}
	return nil
}

// ProductsShow fetches full product records by id.
func (r *Runner) ProductsShow(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.StringSlice("id")
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one --id is required", shared.ErrMissingArgument)
	}

	products, err := r.crm.ProductsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.writeJSON(products, cmd.Bool("pretty"))
}

// RoomsList prints the built-in room type catalog and, with --samples, the
// curated sample room photos.
func (r *Runner) RoomsList(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("samples") {
		rooms, err := r.crm.SampleRooms(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		if cmd.Bool("json") {
			return r.writeJSON(rooms, cmd.Bool("pretty"))
		}
		r.writePlainHeader(fmt.Sprintf("Sample rooms (%d)", len(rooms)))
		for _, room := range rooms {
			r.writePlain("%s  %-24s %s\n", room.ID, room.Name, room.ImageURL)
		}
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(models.RoomTypes, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Room types")
	for _, rt := range models.RoomTypes {
		r.writePlain("%2d  %s\n", rt.ID, rt.Name)
	}
	return nil
}

// productsCommand handles catalog operations
func productsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "products",
		Aliases: []string{"prod"},
		Usage:   "Product catalog operations",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Search the product catalog",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number",
						Value: 1,
					},
					&cli.StringFlag{
						Name:  "sort",
						Usage: "Sort expression, e.g. 'baseName Desc'",
					},
					&cli.StringSliceFlag{
						Name:    "filter",
						Aliases: []string{"f"},
						Usage:   "Filter as key=value[,value] (Category, SubCategory, Rooms, Styles)",
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
				Action: r.ProductsSearch,
			},
			{
				Name:  "variants",
				Usage: "List variants sharing a product's base name",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
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
				Action: r.ProductsVariants,
			},
			{
				Name:  "show",
				Usage: "Fetch products by id",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "id",
						Usage: "Product ID (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.ProductsShow,
			},
		},
	}
}

// roomsCommand lists room types and sample rooms
func roomsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "rooms",
		Usage: "List room types and sample room photos",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "samples",
				Usage: "List curated sample room photos instead of room types",
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
		Action: r.RoomsList,
	}
}
