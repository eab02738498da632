package ingestion

import (
	"context"
	"errors"
	"io"

	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/ports"
)

var (
	errReaderRequired = errors.New("record reader is required")
	errUoWRequired    = errors.New("record unit of work is required")
	errLockerRequired = errors.New("record locker is required")
)

// Service runs reconciliation, the approval workflow and the queue views.
type Service struct {
	reader     ports.RecordReader
	uow        ports.UnitOfWork
	locker     ports.Locker
	notifier   ports.Notifier
	normalizer ports.Normalizer
	geocoder   ports.Geocoder
	observer   ports.IngestObserver
}

// NewService wires ingestion usecases. notifier, normalizer, geocoder and
// observer may be nil.
func NewService(
	reader ports.RecordReader,
	uow ports.UnitOfWork,
	locker ports.Locker,
	notifier ports.Notifier,
	normalizer ports.Normalizer,
	geocoder ports.Geocoder,
	observer ports.IngestObserver,
) *Service {
	return &Service{
		reader:     reader,
		uow:        uow,
		locker:     locker,
		notifier:   notifier,
		normalizer: normalizer,
		geocoder:   geocoder,
		observer:   observer,
	}
}

type IngestBatchInput struct {
	Source string
	Rows   []inspection.NormalizedRow
}

type IngestFileInput struct {
	Name   string
	Reader io.Reader
}

// RowResult is the disposition of one input row. Index is the zero-based
// position in the batch.
type RowResult struct {
	Index              int                `json:"index"`
	FunctionalLocation string             `json:"functional_location"`
	Outcome            inspection.Outcome `json:"outcome"`
	RecordID           uint64             `json:"record_id,omitempty"`
	Error              string             `json:"error,omitempty"`
}

type BatchSummary struct {
	BatchID      string      `json:"batch_id"`
	Source       string      `json:"source,omitempty"`
	Rows         []RowResult `json:"rows"`
	PendingCount int64       `json:"pending_count"`
	Message      string      `json:"message"`
	inspection.Tally
}

type ResolveInput struct {
	PendingID uint64
	Message   string
	Approver  string
}

type ResolveResult struct {
	PendingID          uint64                    `json:"pending_id"`
	Action             inspection.ApprovalAction `json:"action"`
	FunctionalLocation string                    `json:"functional_location"`
	AssetID            uint64                    `json:"asset_id,omitempty"`
	PendingCount       int64                     `json:"pending_count"`
}

func (s *Service) publishPendingCount(ctx context.Context, count int64) {
	if s.observer != nil {
		s.observer.ObservePendingCount(count)
	}
	if s.notifier == nil {
		return
	}
	s.notifier.PublishPendingCount(ctx, count)
}

func (s *Service) observeRow(outcome inspection.Outcome) {
	if s.observer != nil {
		s.observer.ObserveRow(outcome)
	}
}

func (s *Service) observeBatch(result string) {
	if s.observer != nil {
		s.observer.ObserveBatch(result)
	}
}
