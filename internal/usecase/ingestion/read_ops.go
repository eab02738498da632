package ingestion

import (
	"context"
	"errors"
	"strings"

	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/ports"
)

// ListPending returns a page of the approval queue, oldest first.
func (s *Service) ListPending(ctx context.Context, page ports.PageRequest) (ports.Page[ports.PendingRecord], error) {
	if ctx == nil {
		return ports.Page[ports.PendingRecord]{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.Page[ports.PendingRecord]{}, errs.Wrap(err, "check context")
	}
	if s.reader == nil {
		return ports.Page[ports.PendingRecord]{}, errReaderRequired
	}
	return s.reader.ListPending(ctx, page)
}

func (s *Service) CountPending(ctx context.Context) (int64, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return 0, errs.Wrap(err, "check context")
	}
	if s.reader == nil {
		return 0, errReaderRequired
	}
	return s.reader.CountPending(ctx)
}

// ListApprovalLog returns audit entries, newest first. action accepts
// "all", "" or an approval action name.
func (s *Service) ListApprovalLog(ctx context.Context, action string, functionalLocation string, page ports.PageRequest) (ports.Page[ports.ApprovalLogEntry], error) {
	if ctx == nil {
		return ports.Page[ports.ApprovalLogEntry]{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.Page[ports.ApprovalLogEntry]{}, errs.Wrap(err, "check context")
	}
	if s.reader == nil {
		return ports.Page[ports.ApprovalLogEntry]{}, errReaderRequired
	}

	filter := ports.ApprovalLogFilter{FunctionalLocation: strings.TrimSpace(functionalLocation)}
	action = strings.TrimSpace(action)
	if action != "" && !strings.EqualFold(action, "all") {
		parsed, err := inspection.ParseApprovalAction(action)
		if err != nil {
			return ports.Page[ports.ApprovalLogEntry]{}, err
		}
		filter.Action = parsed
	}
	return s.reader.ListApprovalLog(ctx, filter, page)
}
