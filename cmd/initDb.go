/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkevin1491/fyp/internal/bootstrap"
	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/ports"
	"github.com/mkevin1491/fyp/internal/usecase/auth"
)

// initDbCmd represents the initDb command
var initDbCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the switchgear, pending, approval log and user tables",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		logging.Info(ctx, "start init-db")

		if err := app.InitSchema(ctx); err != nil {
			logging.Error(ctx, "initialize schema failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "initialize schema")
		}

		adminEmail, _ := cmd.Flags().GetString("admin-email")
		adminName, _ := cmd.Flags().GetString("admin-name")
		adminPassword, _ := cmd.Flags().GetString("admin-password")
		if strings.TrimSpace(adminEmail) != "" {
			identity, err := app.Auth.Register(ctx, auth.RegisterInput{
				Name:     adminName,
				Email:    adminEmail,
				Password: adminPassword,
			})
			switch {
			case errors.Is(err, ports.ErrEmailTaken):
				logging.Info(ctx, "reviewer account already exists", slog.String("email", adminEmail))
			case err != nil:
				return errs.Wrap(err, "seed reviewer account")
			default:
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "reviewer account created: %s\n", identity.Email); err != nil {
					return errs.Wrap(err, "write init-db output")
				}
			}
		}

		logging.Info(ctx, "init-db finished", slog.String("database_dsn", app.Config.Database.DSN))
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "database schema initialized: %s\n", app.Config.Database.DSN); err != nil {
			return errs.Wrap(err, "write init-db output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(initDbCmd)

	initDbCmd.Flags().String("admin-email", "", "Seed a reviewer account with this email")
	initDbCmd.Flags().String("admin-name", "Administrator", "Name for the seeded reviewer")
	initDbCmd.Flags().String("admin-password", "", "Password for the seeded reviewer")
}
