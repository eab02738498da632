package cmd

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mkevin1491/fyp/internal/bootstrap"
	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/usecase/reviewconsole"
)

var consoleReviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Start the pending approval review console",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		approver, _ := cmd.Flags().GetString("approver")
		message, _ := cmd.Flags().GetString("message")
		pageSize, _ := cmd.Flags().GetInt("page-size")
		refreshInterval, _ := cmd.Flags().GetDuration("refresh-interval")
		if refreshInterval <= 0 {
			refreshInterval = 5 * time.Second
		}

		model := reviewconsole.NewReviewModel(ctx, app.Ingestion, app.Analytics, reviewconsole.Options{
			Approver:        approver,
			Message:         message,
			PageSize:        pageSize,
			RefreshInterval: refreshInterval,
		})

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run review console")
		}
		return nil
	}),
}

func init() {
	consoleCmd.AddCommand(consoleReviewCmd)
	consoleReviewCmd.Flags().String("approver", "", "Approver recorded for console decisions, usually an email")
	consoleReviewCmd.Flags().String("message", "", "Audit message attached to console decisions")
	consoleReviewCmd.Flags().Int("page-size", 50, "Pending records loaded per refresh")
	consoleReviewCmd.Flags().Duration("refresh-interval", 5*time.Second, "Auto refresh interval")
	_ = consoleReviewCmd.MarkFlagRequired("approver")
}
