package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mkevin1491/fyp/internal/bootstrap"
	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/ports"
)

var approvalLogCmd = &cobra.Command{
	Use:   "approval-log",
	Short: "List approval decisions, newest first",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		action, _ := cmd.Flags().GetString("action")
		location, _ := cmd.Flags().GetString("location")
		page, _ := cmd.Flags().GetInt("page")
		pageSize, _ := cmd.Flags().GetInt("page-size")

		entries, err := app.Ingestion.ListApprovalLog(ctx, action, location, ports.PageRequest{Page: page, PageSize: pageSize})
		if err != nil {
			logging.Error(ctx, "list approval log failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list approval log")
		}
		return writeApprovalLogTable(cmd.OutOrStdout(), entries)
	}),
}

func init() {
	rootCmd.AddCommand(approvalLogCmd)

	approvalLogCmd.Flags().String("action", "all", "Filter by action (all|approved|rejected)")
	approvalLogCmd.Flags().String("location", "", "Filter by functional location")
	approvalLogCmd.Flags().Int("page", 1, "Page number")
	approvalLogCmd.Flags().Int("page-size", ports.DefaultPageSize, "Page size")
}
