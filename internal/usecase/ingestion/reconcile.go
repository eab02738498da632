package ingestion

import (
	"context"
	"log/slog"

	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/ports"
)

func assetLockKey(functionalLocation string) string {
	return "asset:" + functionalLocation
}

// reconcileRow decides and applies the outcome for one row. The asset key is
// locked across read and insert so concurrent batches for the same functional
// location cannot both observe an empty history. Each row commits on its own.
func (s *Service) reconcileRow(ctx context.Context, index int, row inspection.NormalizedRow) (RowResult, error) {
	location := row.Location()
	result := RowResult{
		Index:              index,
		FunctionalLocation: location,
	}
	if location == "" {
		return result, &inspection.RowError{Index: index, Err: inspection.ErrFunctionalLocationRequired}
	}
	row.FunctionalLocation = location
	row = row.WithFiniteValues()

	unlock, err := s.locker.Lock(ctx, assetLockKey(location))
	if err != nil {
		return result, &inspection.RowError{Index: index, FunctionalLocation: location, Err: err}
	}
	defer unlock()

	err = s.uow.WithTx(ctx, func(txCtx context.Context, store ports.RecordStore) error {
		assets, err := store.FindAssetRecords(txCtx, location)
		if err != nil {
			return err
		}
		pending, err := store.FindPendingRecords(txCtx, location)
		if err != nil {
			return err
		}

		result.Outcome = inspection.Decide(row, assetRows(assets), pendingRows(pending))
		switch result.Outcome {
		case inspection.OutcomeNewAsset:
			created, err := store.InsertAsset(txCtx, row)
			if err != nil {
				return err
			}
			result.RecordID = created.ID
		case inspection.OutcomeNeedsApproval:
			created, err := store.InsertPending(txCtx, row)
			if err != nil {
				return err
			}
			result.RecordID = created.ID
		}
		return nil
	})
	if err != nil {
		result.Outcome = ""
		result.RecordID = 0
		return result, &inspection.RowError{
			Index:              index,
			FunctionalLocation: location,
			Err:                &inspection.StoreError{Op: "reconcile row", Err: err},
		}
	}

	logging.Info(
		ctx,
		"row reconciled",
		slog.Int("row_index", index),
		slog.String("functional_location", location),
		slog.String("outcome", string(result.Outcome)),
		slog.Uint64("record_id", result.RecordID),
	)
	return result, nil
}

func assetRows(records []ports.AssetRecord) []inspection.NormalizedRow {
	rows := make([]inspection.NormalizedRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, record.NormalizedRow)
	}
	return rows
}

func pendingRows(records []ports.PendingRecord) []inspection.NormalizedRow {
	rows := make([]inspection.NormalizedRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, record.NormalizedRow)
	}
	return rows
}

func rowErrorAttrs(err error) []slog.Attr {
	attrs := []slog.Attr{slog.Any("err", errs.Loggable(err))}
	if rowErr, ok := asRowError(err); ok {
		attrs = append(attrs,
			slog.Int("row_index", rowErr.Index),
			slog.String("functional_location", rowErr.FunctionalLocation),
		)
	}
	return attrs
}
