package cmd

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mkevin1491/fyp/internal/bootstrap"
	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/usecase/ingestion"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Ingest inspection workbooks (.xlsx/.xlsm/.csv) into the database",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		verbose, _ := cmd.Flags().GetBool("rows")

		var failed []error
		for _, path := range cmd.Flags().Args() {
			summary, err := ingestPath(cmd, app, path)
			if summary.BatchID != "" {
				if writeErr := writeBatchSummary(cmd.OutOrStdout(), summary, verbose); writeErr != nil {
					return writeErr
				}
			}
			if err != nil {
				logging.Error(ctx, "ingest file failed", slog.String("path", path), slog.Any("err", errs.Loggable(err)))
				failed = append(failed, errs.Wrapf(err, "ingest %s", path))
			}
		}
		return errors.Join(failed...)
	}),
}

func ingestPath(cmd *cobra.Command, app *bootstrap.App, path string) (ingestion.BatchSummary, error) {
	file, err := os.Open(path)
	if err != nil {
		return ingestion.BatchSummary{}, errs.Wrap(err, "open file")
	}
	defer file.Close()

	return app.Ingestion.IngestFile(cmd.Context(), ingestion.IngestFileInput{
		Name:   filepath.Base(path),
		Reader: file,
	})
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().Bool("rows", false, "Print the per-row outcome table")
}
