package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/templui/downloadzone/internal/app"
	"github.com/templui/downloadzone/internal/repository"
	"github.com/templui/downloadzone/internal/service"
)

func SeedCmd() *cobra.Command {
	var (
		count int
		seed  uint64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty catalog with generated downloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				seeder := a.SeedService
				if cmd.Flags().Changed("seed") {
					seeder = service.NewSeedService(
						repository.NewDownloadRepository(a.DB),
						repository.NewCategoryRepository(a.DB),
						seed,
					)
				}

				result, err := seeder.Seed(ctx, count, time.Now())
				if err != nil {
					return err
				}
				return printJSON(result)
			})
		},
	}

	cmd.Flags().IntVar(&count, "count", service.DefaultSeedCount, "number of downloads to generate")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for a reproducible catalog")
	return cmd
}
