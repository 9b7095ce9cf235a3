package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/wellness-service/internal/adapters/storage"
	"github.com/jsamuelsen/wellness-service/internal/app"
	"github.com/jsamuelsen/wellness-service/internal/platform/logging"
	"github.com/jsamuelsen/wellness-service/internal/ports"
)

func migrateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}

			dbCfg := cfg.Database
			dbCfg.AutoMigrate = false

			db, err := storage.Open(cmd.Context(), dbCfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", cfg.Database.Driver)

			return nil
		},
	}
}

func retagCmd(g *globals) *cobra.Command {
	var (
		workers  int
		pageSize int
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "retag",
		Short: "Fill in suggested tags on posts that have none",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}

			ctx := logging.WithContext(cmd.Context(), logger)

			db, err := storage.Open(ctx, cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			posts := app.NewPostService(app.PostServiceConfig{Posts: db.Posts(), Comments: db.Comments()})

			scanned, changed, err := retag(ctx, posts, workers, pageSize, dryRun)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "scanned %d posts, retagged %d\n", scanned, changed)

			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "concurrent updates")
	cmd.Flags().IntVar(&pageSize, "page-size", app.MaxPageSize, "posts read per page")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only count posts without tags")

	return cmd
}

// retag walks every post newest-first and retags each page concurrently.
func retag(ctx context.Context, posts *app.PostService, workers, pageSize int, dryRun bool) (scanned, changed int64, err error) {
	var (
		cursor  *ports.PostCursor
		updated atomic.Int64
	)

	logger := logging.FromContext(ctx)

	for {
		page, err := posts.List(ctx, pageSize, cursor)
		if err != nil {
			return scanned, updated.Load(), fmt.Errorf("listing posts: %w", err)
		}

		scanned += int64(len(page.Posts))

		ids := make([]string, 0, len(page.Posts))
		for i := range page.Posts {
			if len(page.Posts[i].Tags) == 0 {
				ids = append(ids, page.Posts[i].ID)
			}
		}

		if dryRun {
			updated.Add(int64(len(ids)))
		} else {
			err = app.FanOut(ctx, workers, ids, func(ctx context.Context, id string) error {
				ok, err := posts.Retag(ctx, id)
				if err != nil {
					return fmt.Errorf("post %s: %w", id, err)
				}

				if ok {
					updated.Add(1)
					logger.DebugContext(ctx, "post retagged", slog.String("post_id", id))
				}

				return nil
			})
			if err != nil {
				return scanned, updated.Load(), err
			}
		}

		if !page.HasMore || len(page.Posts) == 0 {
			return scanned, updated.Load(), nil
		}

		last := page.Posts[len(page.Posts)-1]
		cursor = &ports.PostCursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
}
