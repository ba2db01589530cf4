package main

import (
	"context"
	"fmt"

	"github.com/arredohq/arredo/internal/models"
	"github.com/arredohq/arredo/internal/repositories"
	"github.com/arredohq/arredo/internal/services"
	"github.com/arredohq/arredo/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheStatus prints what the local cache currently holds.
func (r *Runner) CacheStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := r.cacheDB()
	if err != nil {
		return err
	}

	version, err := shared.CurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	products, err := repositories.NewProductRepository(db).List(nil)
	if err != nil {
		return fmt.Errorf("failed to list cached products: %w", err)
	}

	snapshots, err := repositories.NewSnapshotRepository(db).Count()
	if err != nil {
		return fmt.Errorf("failed to count snapshots: %w", err)
	}

	r.writePlainHeader("Local cache")
	r.writePlain("Database: %s (schema v%d)\n", r.config.Database.Path, version)
	r.writePlain("Products: %d\n", len(products))
	r.writePlain("Section snapshots: %d\n", snapshots)
	return nil
}

// CacheProducts lists cached products, optionally filtered by category or
// collection.
func (r *Runner) CacheProducts(ctx context.Context, cmd *cli.Command) error {
	db, err := r.cacheDB()
	if err != nil {
		return err
	}

	criteria := map[string]any{}
	if c := cmd.String("category"); c != "" {
		criteria["category"] = c
	}
	if c := cmd.String("collection"); c != "" {
		criteria["collection"] = c
	}

	products, err := repositories.NewProductRepository(db).List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list cached products: %w", err)
	}

	if cmd.Bool("json") {
		records := make([]models.Product, len(products))
		for i, p := range products {
			records[i] = p.Product()
		}
		return r.writeJSON(records, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Cached products (%d)", len(products)))
	for _, p := range products {
		r.writePlain("%s  %s\n", p.ProductID(), p.Product().Name)
	}
	return nil
}

// CacheClear drops cached snapshots and flushes the in-memory search cache.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	sectionID := cmd.String("section")

	if crm, ok := r.crm.(*services.CRMService); ok {
		crm.FlushProductCache()
	}

	db, err := r.cacheDB()
	if err != nil {
		return err
	}

	snapshots := repositories.NewSnapshotRepository(db)
	if sectionID != "" {
		if err := snapshots.Delete(sectionID); err != nil {
			return fmt.Errorf("failed to delete snapshot: %w", err)
		}
		r.writePlain("✓ Snapshot for section %s removed\n", sectionID)
		return nil
	}

	count, err := snapshots.Count()
	if err != nil {
		return fmt.Errorf("failed to count snapshots: %w", err)
	}

	r.writePlain("Cache holds %d snapshots. Use --section to remove one.\n", count)
	return nil
}

// cacheCommand handles the local cache of products and section snapshots
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and manage the local cache",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show cache contents",
				Action: r.CacheStatus,
			},
			{
				Name:  "products",
				Usage: "List cached products",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "category",
						Usage: "Filter by category",
					},
					&cli.StringFlag{
						Name:  "collection",
						Usage: "Filter by collection",
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
				Action: r.CacheProducts,
			},
			{
				Name:  "clear",
				Usage: "Remove cached snapshots and flush the search cache",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "section",
						Usage: "Section ID whose snapshot to remove",
					},
				},
				Action: r.CacheClear,
			},
		},
	}
}
