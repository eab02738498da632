package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/ports"
)

// Approve promotes a pending record to an asset record, deletes the pending
// entry and writes an Approved log entry in one transaction.
func (s *Service) Approve(ctx context.Context, input ResolveInput) (ResolveResult, error) {
	return s.resolvePending(ctx, inspection.ActionApproved, input)
}

// Reject logs the pending snapshot as Rejected and deletes the pending entry
// in one transaction. No asset record is created.
func (s *Service) Reject(ctx context.Context, input ResolveInput) (ResolveResult, error) {
	return s.resolvePending(ctx, inspection.ActionRejected, input)
}

func pendingLockKey(id uint64) string {
	return "pending:" + strconv.FormatUint(id, 10)
}

func (s *Service) resolvePending(ctx context.Context, action inspection.ApprovalAction, input ResolveInput) (ResolveResult, error) {
	if ctx == nil {
		return ResolveResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ResolveResult{}, errs.Wrap(err, "check context")
	}
	if s.uow == nil {
		return ResolveResult{}, errUoWRequired
	}
	if s.locker == nil {
		return ResolveResult{}, errLockerRequired
	}
	if input.PendingID == 0 {
		return ResolveResult{}, inspection.ErrInvalidPendingID
	}
	approver := strings.TrimSpace(input.Approver)
	if approver == "" {
		return ResolveResult{}, inspection.ErrApproverRequired
	}

	logCtx := logging.WithAttrs(
		ctx,
		slog.String("component", "usecase.ingestion"),
		slog.String("action", string(action)),
		slog.Uint64("pending_id", input.PendingID),
		slog.String("approver", approver),
	)

	unlock, err := s.locker.Lock(ctx, pendingLockKey(input.PendingID))
	if err != nil {
		return ResolveResult{}, err
	}
	defer unlock()

	result := ResolveResult{
		PendingID: input.PendingID,
		Action:    action,
	}
	err = s.uow.WithTx(ctx, func(txCtx context.Context, store ports.RecordStore) error {
		pending, err := store.GetPendingRecord(txCtx, input.PendingID)
		if err != nil {
			return err
		}
		result.FunctionalLocation = pending.FunctionalLocation

		logEntry := ports.ApprovalLogCreate{
			Action:             action,
			Message:            input.Message,
			FunctionalLocation: pending.FunctionalLocation,
			TEVReading:         pending.TEVReading,
			HotspotDeltaT:      pending.HotspotDeltaT,
			Approver:           approver,
			Timestamp:          time.Now().UTC(),
		}

		switch action {
		case inspection.ActionApproved:
			asset, err := store.InsertAsset(txCtx, pending.NormalizedRow)
			if err != nil {
				return err
			}
			result.AssetID = asset.ID
			if err := deletePendingOnce(txCtx, store, input.PendingID); err != nil {
				return err
			}
			if _, err := store.AppendApprovalLog(txCtx, logEntry); err != nil {
				return err
			}
		case inspection.ActionRejected:
			if _, err := store.AppendApprovalLog(txCtx, logEntry); err != nil {
				return err
			}
			if err := deletePendingOnce(txCtx, store, input.PendingID); err != nil {
				return err
			}
		default:
			return inspection.ErrInvalidAction
		}

		count, err := store.CountPending(txCtx)
		if err != nil {
			return err
		}
		result.PendingCount = count
		return nil
	})
	if err != nil {
		if errors.Is(err, inspection.ErrPendingNotFound) {
			logging.Warn(logCtx, "pending record already resolved or missing")
			return ResolveResult{}, errs.Wrapf(err, "resolve pending record %d", input.PendingID)
		}
		logging.Error(logCtx, "resolve pending record failed", slog.Any("err", errs.Loggable(err)))
		return ResolveResult{}, &inspection.StoreError{Op: "resolve pending", Err: err}
	}

	if s.observer != nil {
		s.observer.ObserveResolution(action)
	}
	s.publishPendingCount(logCtx, result.PendingCount)

	logging.Info(
		logCtx,
		"pending record resolved",
		slog.String("functional_location", result.FunctionalLocation),
		slog.Uint64("asset_id", result.AssetID),
		slog.Int64("pending_count", result.PendingCount),
	)
	return result, nil
}

// deletePendingOnce is the final at-most-once guard: a second resolution
// inside a racing transaction finds nothing to delete and rolls back.
func deletePendingOnce(ctx context.Context, store ports.RecordStore, id uint64) error {
	deleted, err := store.DeletePending(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return inspection.ErrPendingNotFound
	}
	return nil
}
