package ports

import (
	"context"

	"github.com/mkevin1491/fyp/internal/domain/inspection"
)

// MonthlyLocationCount is the number of distinct functional locations whose
// records were created in Month (YYYY-MM).
type MonthlyLocationCount struct {
	Month               string `json:"month"`
	FunctionalLocations int64  `json:"functional_locations"`
}

type MapMarker struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Coordinates [2]float64        `json:"coordinates"`
	Status      inspection.Status `json:"status"`
}

type StatusCount struct {
	Status inspection.Status `json:"status"`
	Count  int64             `json:"count"`
}

type AnalyticsRepository interface {
	MonthlyLocationCounts(ctx context.Context) ([]MonthlyLocationCount, error)
	MapMarkers(ctx context.Context) ([]MapMarker, error)
	StatusCounts(ctx context.Context) ([]StatusCount, error)
}
