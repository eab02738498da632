package cmd

import (
	"bufio"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkevin1491/fyp/internal/bootstrap"
	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/usecase/auth"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage reviewer accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a reviewer account",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		passwordStdin, _ := cmd.Flags().GetBool("password-stdin")
		if passwordStdin {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errs.Wrap(err, "read password from stdin")
			}
			password = strings.TrimRight(line, "\r\n")
		}

		identity, err := app.Auth.Register(ctx, auth.RegisterInput{
			Name:     name,
			Email:    email,
			Password: password,
		})
		if err != nil {
			logging.Error(ctx, "register user failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "register user")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "registered user %d: %s <%s>\n", identity.ID, identity.Name, identity.Email); err != nil {
			return errs.Wrap(err, "write user add output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd)

	userAddCmd.Flags().String("name", "", "Display name")
	userAddCmd.Flags().String("email", "", "Login email")
	userAddCmd.Flags().String("password", "", "Password (prefer --password-stdin)")
	userAddCmd.Flags().Bool("password-stdin", false, "Read the password from stdin")
	_ = userAddCmd.MarkFlagRequired("name")
	_ = userAddCmd.MarkFlagRequired("email")
}
