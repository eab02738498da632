package ports

import (
	"context"
	"errors"
	"time"

	"github.com/mkevin1491/fyp/internal/domain/inspection"
)

var ErrAssetNotFound = errors.New("switchgear record not found")

// AssetRecord is an authoritative switchgear inspection entry.
type AssetRecord struct {
	ID uint64 `json:"id"`
	inspection.NormalizedRow
	Status    inspection.Status `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// PendingRecord has the same shape as AssetRecord and waits for a decision.
type PendingRecord struct {
	ID uint64 `json:"id"`
	inspection.NormalizedRow
	Status    inspection.Status `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// ApprovalLogEntry is an immutable audit record of one resolution.
type ApprovalLogEntry struct {
	ID                 uint64                    `json:"id"`
	Action             inspection.ApprovalAction `json:"action"`
	Message            string                    `json:"message"`
	FunctionalLocation string                    `json:"functional_location"`
	TEVReading         *float64                  `json:"tev_us_in_db,omitempty"`
	HotspotDeltaT      *float64                  `json:"hotspot_delta_t_in_c,omitempty"`
	Approver           string                    `json:"approver"`
	Timestamp          time.Time                 `json:"timestamp"`
}

type ApprovalLogCreate struct {
	Action             inspection.ApprovalAction
	Message            string
	FunctionalLocation string
	TEVReading         *float64
	HotspotDeltaT      *float64
	Approver           string
	Timestamp          time.Time
}

// RecordStore is the reconcile-and-resolve surface over asset records,
// pending records and the approval log. Implementations handed out by a
// UnitOfWork run every call inside that transaction.
type RecordStore interface {
	FindAssetRecords(ctx context.Context, functionalLocation string) ([]AssetRecord, error)
	FindPendingRecords(ctx context.Context, functionalLocation string) ([]PendingRecord, error)
	GetPendingRecord(ctx context.Context, id uint64) (PendingRecord, error)
	InsertAsset(ctx context.Context, row inspection.NormalizedRow) (AssetRecord, error)
	InsertPending(ctx context.Context, row inspection.NormalizedRow) (PendingRecord, error)
	DeletePending(ctx context.Context, id uint64) (bool, error)
	CountPending(ctx context.Context) (int64, error)
	AppendApprovalLog(ctx context.Context, entry ApprovalLogCreate) (ApprovalLogEntry, error)
}

type PageRequest struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 500
)

// Normalize clamps page to >= 1 and page size to [1, MaxPageSize].
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p PageRequest) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

type ApprovalLogFilter struct {
	Action             inspection.ApprovalAction
	FunctionalLocation string
}

type AssetFilter struct {
	FunctionalLocation string
	Status             inspection.Status
	SubstationName     string
	DefectOwner        string
}

// RecordReader serves paged read views; it never writes.
type RecordReader interface {
	CountPending(ctx context.Context) (int64, error)
	ListPending(ctx context.Context, page PageRequest) (Page[PendingRecord], error)
	ListApprovalLog(ctx context.Context, filter ApprovalLogFilter, page PageRequest) (Page[ApprovalLogEntry], error)
	ListAssets(ctx context.Context, filter AssetFilter, page PageRequest) (Page[AssetRecord], error)
	GetAsset(ctx context.Context, id uint64) (AssetRecord, error)
}
