package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/templui/downloadzone/internal/app"
)

func CleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Purge expired captchas, reset tokens and delivered emails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				result, err := a.MaintenanceService.Cleanup(ctx, time.Now())
				if err != nil {
					return err
				}
				return printJSON(result)
			})
		},
	}
}

func ExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of the catalog to object storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				result, err := a.ExportService.Export(ctx, time.Now())
				if err != nil {
					return err
				}
				return printJSON(result)
			})
		},
	}
}
