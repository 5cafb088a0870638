package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/downloadzone/internal/app"
)

func AdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin account commands",
	}

	cmd.AddCommand(adminInitCmd())
	return cmd
}

func adminInitCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set the admin email and password on a fresh install",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.AdminAuthService.Init(ctx, email, password); err != nil {
					return err
				}
				fmt.Println("Admin initialized for", email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
