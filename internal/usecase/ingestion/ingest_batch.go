package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/errs"
)

const (
	batchResultOK          = "ok"
	batchResultPartial     = "partial"
	batchResultParseError  = "parse_error"
	batchResultInterrupted = "interrupted"
)

// IngestBatch reconciles rows strictly in input order. A failing row is
// recorded and the batch continues. The pending-queue depth is published
// exactly once, after the last row, including when the batch is interrupted
// by ctx after some rows already committed.
func (s *Service) IngestBatch(ctx context.Context, input IngestBatchInput) (BatchSummary, error) {
	if ctx == nil {
		return BatchSummary{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return BatchSummary{}, errs.Wrap(err, "check context")
	}
	if s.reader == nil {
		return BatchSummary{}, errReaderRequired
	}
	if s.uow == nil {
		return BatchSummary{}, errUoWRequired
	}
	if s.locker == nil {
		return BatchSummary{}, errLockerRequired
	}

	summary := BatchSummary{
		BatchID: uuid.NewString(),
		Source:  strings.TrimSpace(input.Source),
		Rows:    make([]RowResult, 0, len(input.Rows)),
	}
	logCtx := logging.WithAttrs(
		ctx,
		slog.String("component", "usecase.ingestion"),
		slog.String("batch_id", summary.BatchID),
		slog.String("source", summary.Source),
	)
	logging.Info(logCtx, "batch ingest started", slog.Int("rows", len(input.Rows)))

	var interrupted error
	for index, row := range input.Rows {
		if err := ctx.Err(); err != nil {
			interrupted = err
			break
		}

		result, err := s.reconcileRow(logCtx, index, row)
		if err != nil {
			result.Outcome = inspection.OutcomeRowError
			result.Error = err.Error()
			logging.Warn(logCtx, "row failed", rowErrorAttrs(err)...)
		}
		summary.Tally.Add(result.Outcome)
		summary.Rows = append(summary.Rows, result)
		s.observeRow(result.Outcome)
	}

	countCtx := context.WithoutCancel(logCtx)
	count, countErr := s.reader.CountPending(countCtx)
	if countErr != nil {
		logging.Error(logCtx, "count pending after batch failed", slog.Any("err", errs.Loggable(countErr)))
	} else {
		summary.PendingCount = count
		s.publishPendingCount(countCtx, count)
	}
	summary.Message = summary.Tally.SummaryMessage()

	switch {
	case interrupted != nil:
		s.observeBatch(batchResultInterrupted)
	case summary.RowErrors > 0:
		s.observeBatch(batchResultPartial)
	default:
		s.observeBatch(batchResultOK)
	}

	logging.Info(
		logCtx,
		"batch ingest finished",
		slog.Int("duplicates", summary.Duplicates),
		slog.Int("new_assets", summary.NewAssets),
		slog.Int("needs_approval", summary.NeedsApproval),
		slog.Int("row_errors", summary.RowErrors),
		slog.Int64("pending_count", summary.PendingCount),
	)

	if interrupted != nil {
		return summary, errs.Wrapf(interrupted, "batch interrupted after %d of %d rows", len(summary.Rows), len(input.Rows))
	}
	if countErr != nil {
		return summary, &inspection.StoreError{Op: "count pending", Err: countErr}
	}
	return summary, nil
}

func asRowError(err error) (*inspection.RowError, bool) {
	var rowErr *inspection.RowError
	if errors.As(err, &rowErr) {
		return rowErr, true
	}
	return nil, false
}
