package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/ports"
)

var ErrInvalidStatus = errors.New("invalid status filter")

// Service serves the dashboard read views over approved switchgear records.
type Service struct {
	repo   ports.AnalyticsRepository
	reader ports.RecordReader
}

func NewService(repo ports.AnalyticsRepository, reader ports.RecordReader) *Service {
	return &Service{repo: repo, reader: reader}
}

// AssetQuery holds raw filter values as received from callers. Empty values
// and "all" do not filter.
type AssetQuery struct {
	FunctionalLocation string
	Status             string
	SubstationName     string
	DefectOwner        string
}

func (s *Service) MonthlyLocationCounts(ctx context.Context) ([]ports.MonthlyLocationCount, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	out, err := s.repo.MonthlyLocationCounts(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "monthly location counts")
	}
	return out, nil
}

func (s *Service) MapMarkers(ctx context.Context) ([]ports.MapMarker, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	out, err := s.repo.MapMarkers(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "map markers")
	}
	return out, nil
}

func (s *Service) StatusSummary(ctx context.Context) ([]ports.StatusCount, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	out, err := s.repo.StatusCounts(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "status counts")
	}
	return out, nil
}

func (s *Service) ListAssets(ctx context.Context, query AssetQuery, page ports.PageRequest) (ports.Page[ports.AssetRecord], error) {
	if err := checkContext(ctx); err != nil {
		return ports.Page[ports.AssetRecord]{}, err
	}

	filter := ports.AssetFilter{
		FunctionalLocation: strings.TrimSpace(query.FunctionalLocation),
		SubstationName:     strings.TrimSpace(query.SubstationName),
		DefectOwner:        strings.TrimSpace(query.DefectOwner),
	}
	if raw := strings.TrimSpace(query.Status); raw != "" && !strings.EqualFold(raw, "all") {
		status, ok := inspection.ParseStatus(raw)
		if !ok {
			return ports.Page[ports.AssetRecord]{}, fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
		}
		filter.Status = status
	}

	out, err := s.reader.ListAssets(ctx, filter, page)
	if err != nil {
		return ports.Page[ports.AssetRecord]{}, errs.Wrap(err, "list assets")
	}
	return out, nil
}

func (s *Service) GetAsset(ctx context.Context, id uint64) (ports.AssetRecord, error) {
	if err := checkContext(ctx); err != nil {
		return ports.AssetRecord{}, err
	}
	out, err := s.reader.GetAsset(ctx, id)
	if err != nil {
		return ports.AssetRecord{}, errs.Wrapf(err, "get asset %d", id)
	}
	return out, nil
}

func checkContext(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	return nil
}
