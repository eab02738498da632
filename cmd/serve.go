package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkevin1491/fyp/internal/bootstrap"
	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/httpapi"
	"github.com/mkevin1491/fyp/internal/infrastructure/inbox"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, websocket feed and metrics endpoint",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logging.WithAttrs(ctx, slog.String("command", cmd.CommandPath()))

		addr, _ := cmd.Flags().GetString("addr")
		addr = strings.TrimSpace(addr)
		if addr == "" {
			addr = app.Config.HTTP.Addr
		}
		shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")
		if shutdownTimeout <= 0 {
			shutdownTimeout = 10 * time.Second
		}
		watch, _ := cmd.Flags().GetBool("watch")

		if strings.TrimSpace(app.Config.Auth.JWTSecret) == "" {
			logging.Warn(ctx, "auth.jwt_secret is empty; login and approvals over http will fail")
		}

		if pruned, err := app.Cache.PruneExpired(ctx); err != nil {
			logging.Warn(ctx, "prune expired cache entries failed", slog.Any("err", errs.Loggable(err)))
		} else if pruned > 0 {
			logging.Info(ctx, "pruned expired cache entries", slog.Int64("count", pruned))
		}

		if count, err := app.Ingestion.CountPending(ctx); err == nil {
			app.Metrics.ObservePendingCount(count)
			app.Hub.PublishPendingCount(ctx, count)
		}

		deps := httpapi.Dependencies{
			Ingestion: app.Ingestion,
			Auth:      app.Auth,
			Analytics: app.Analytics,
			Metrics:   app.Metrics.Handler(),
		}
		if app.Config.Notify.Websocket {
			deps.Events = app.Hub
		}
		router := httpapi.NewRouter(ctx, deps, httpapi.Options{
			AllowedOrigins: app.Config.HTTP.AllowedOrigins,
			MaxUploadBytes: app.Config.HTTP.MaxUploadBytes,
		})

		server := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		if watch {
			watcher, err := newInboxWatcher(ctx, app)
			if err != nil {
				return err
			}
			go func() {
				if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logging.Error(ctx, "inbox watcher stopped", slog.Any("err", errs.Loggable(err)))
				}
			}()
		}

		serveErr := make(chan error, 1)
		go func() {
			logging.Info(ctx, "http server started", slog.String("addr", addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		select {
		case err, ok := <-serveErr:
			if ok && err != nil {
				logging.Error(ctx, "http server failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "serve http")
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		logging.Info(ctx, "shutting down http server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errs.Wrap(err, "shutdown http server")
		}
		return nil
	}),
}

func newInboxWatcher(ctx context.Context, app *bootstrap.App) (*inbox.Watcher, error) {
	watcher, err := inbox.NewWatcher(app.Ingestion, inbox.Options{
		WatchDir:    app.Config.Ingest.WatchDir,
		ArchiveDir:  app.Config.Ingest.ArchiveDir,
		FailedDir:   app.Config.Ingest.FailedDir,
		SettleDelay: app.Config.Ingest.SettleDelay,
		OnResult: func(result inbox.Result) {
			if result.Err != nil {
				logging.Warn(ctx, "inbox file not ingested",
					slog.String("path", result.Path),
					slog.Any("err", errs.Loggable(result.Err)),
				)
				return
			}
			logging.Info(ctx, "inbox file ingested",
				slog.String("path", result.Path),
				slog.String("moved_to", result.MovedTo),
				slog.String("batch_id", result.Summary.BatchID),
			)
		},
	})
	if err != nil {
		return nil, errs.Wrap(err, "create inbox watcher")
	}
	return watcher, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (defaults to http.addr)")
	serveCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
	serveCmd.Flags().Bool("watch", false, "Also watch ingest.watch_dir for dropped workbooks")
}
