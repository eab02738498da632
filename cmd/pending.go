package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mkevin1491/fyp/internal/bootstrap"
	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/ports"
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Inspect the pending approval queue",
}

var pendingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending records oldest first",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		page, _ := cmd.Flags().GetInt("page")
		pageSize, _ := cmd.Flags().GetInt("page-size")

		items, err := app.Ingestion.ListPending(ctx, ports.PageRequest{Page: page, PageSize: pageSize})
		if err != nil {
			logging.Error(ctx, "list pending records failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list pending records")
		}
		return writePendingTable(cmd.OutOrStdout(), items)
	}),
}

var pendingCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of records awaiting approval",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		count, err := app.Ingestion.CountPending(ctx)
		if err != nil {
			logging.Error(ctx, "count pending records failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "count pending records")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\n", count); err != nil {
			return errs.Wrap(err, "write pending count output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(pendingCmd)
	pendingCmd.AddCommand(pendingListCmd)
	pendingCmd.AddCommand(pendingCountCmd)

	pendingListCmd.Flags().Int("page", 1, "Page number")
	pendingListCmd.Flags().Int("page-size", ports.DefaultPageSize, "Page size")
}
