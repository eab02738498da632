package ports

import (
	"context"
	"io"

	"github.com/mkevin1491/fyp/internal/domain/inspection"
)

// Normalizer turns a raw tabular file into normalized rows.
// A failure to read the file as a whole is reported as *inspection.ParseError.
type Normalizer interface {
	Normalize(ctx context.Context, name string, r io.Reader) ([]inspection.NormalizedRow, error)
}

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Geocoder resolves free-text addresses. ok is false for unknown places;
// lookup failures are reported as unknown too.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (coords Coordinates, ok bool)
}

// Notifier broadcasts the current pending-queue depth. Fire and forget.
type Notifier interface {
	PublishPendingCount(ctx context.Context, count int64)
}

// Locker serializes work per key within the process.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// IngestObserver receives ingestion and approval events for metrics.
type IngestObserver interface {
	ObserveRow(outcome inspection.Outcome)
	ObserveBatch(result string)
	ObserveResolution(action inspection.ApprovalAction)
	ObservePendingCount(count int64)
}
