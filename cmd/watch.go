package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkevin1491/fyp/internal/bootstrap"
	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/errs"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Ingest workbooks dropped into the inbox directory",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logging.WithAttrs(ctx, slog.String("command", cmd.CommandPath()))

		if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
			app.Config.Ingest.WatchDir = dir
		}

		watcher, err := newInboxWatcher(ctx, app)
		if err != nil {
			return err
		}

		logging.Info(ctx, "inbox watcher started", slog.String("watch_dir", app.Config.Ingest.WatchDir))
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return errs.Wrap(err, "run inbox watcher")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("dir", "", "Inbox directory (defaults to ingest.watch_dir)")
}
