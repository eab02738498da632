package cmd

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkevin1491/fyp/internal/bootstrap"
	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/usecase/ingestion"
)

var approveCmd = &cobra.Command{
	Use:   "approve <pending-id>",
	Short: "Promote a pending record to the switchgear records",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		return runResolve(cmd, app, inspection.ActionApproved)
	}),
}

var rejectCmd = &cobra.Command{
	Use:   "reject <pending-id>",
	Short: "Discard a pending record",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		return runResolve(cmd, app, inspection.ActionRejected)
	}),
}

func runResolve(cmd *cobra.Command, app *bootstrap.App, action inspection.ApprovalAction) error {
	ctx := logging.WithAttrs(
		cmd.Context(),
		slog.String("command", cmd.CommandPath()),
		slog.String("action", string(action)),
	)

	id, err := parsePendingID(cmd.Flags().Arg(0))
	if err != nil {
		return err
	}
	approver, _ := cmd.Flags().GetString("approver")
	message, _ := cmd.Flags().GetString("message")

	input := ingestion.ResolveInput{
		PendingID: id,
		Message:   message,
		Approver:  approver,
	}

	var result ingestion.ResolveResult
	if action == inspection.ActionApproved {
		result, err = app.Ingestion.Approve(ctx, input)
	} else {
		result, err = app.Ingestion.Reject(ctx, input)
	}
	if err != nil {
		logging.Error(ctx, "resolve pending record failed", slog.Uint64("pending_id", id), slog.Any("err", errs.Loggable(err)))
		return errs.Wrapf(err, "resolve pending record %d", id)
	}

	if _, err := fmt.Fprintf(
		cmd.OutOrStdout(),
		"%s pending record %d (%s); pending remaining: %d\n",
		result.Action,
		result.PendingID,
		result.FunctionalLocation,
		result.PendingCount,
	); err != nil {
		return errs.Wrap(err, "write resolve output")
	}
	return nil
}

func parsePendingID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid pending id %q", raw)
	}
	return id, nil
}

func init() {
	for _, c := range []*cobra.Command{approveCmd, rejectCmd} {
		rootCmd.AddCommand(c)
		c.Flags().String("approver", "", "Approver recorded in the approval log, usually an email")
		c.Flags().String("message", "", "Optional audit message")
		_ = c.MarkFlagRequired("approver")
	}
}
