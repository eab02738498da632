package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/infrastructure/persistence/sqlite/model"
	"github.com/mkevin1491/fyp/internal/ports"
)

type AnalyticsRepository struct {
	db *gorm.DB
}

var _ ports.AnalyticsRepository = (*AnalyticsRepository)(nil)

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) conn(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if r.db == nil {
		return nil, errors.New("analytics database is required")
	}
	return r.db.WithContext(ctx), nil
}

// MonthlyLocationCounts groups switchgear rows by the month of created_at.
// created_at is stored as RFC3339 text, so its first seven bytes are YYYY-MM.
func (r *AnalyticsRepository) MonthlyLocationCounts(ctx context.Context) ([]ports.MonthlyLocationCount, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Month string
		Total int64
	}
	if err := db.Model(&model.Switchgear{}).
		Select("substr(created_at, 1, 7) AS month, count(distinct functional_location) AS total").
		Group("month").
		Order("month asc").
		Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query monthly location counts")
	}

	items := make([]ports.MonthlyLocationCount, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.MonthlyLocationCount{
			Month:               row.Month,
			FunctionalLocations: row.Total,
		})
	}
	return items, nil
}

// MapMarkers returns one marker per switchgear row that has usable coordinates.
func (r *AnalyticsRepository) MapMarkers(ctx context.Context) ([]ports.MapMarker, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Switchgear
	if err := db.
		Select("id", "functional_location", "substation_name", "latitude", "longitude", "status").
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query switchgear coordinates")
	}

	items := make([]ports.MapMarker, 0, len(rows))
	for _, row := range rows {
		lat, lon := *row.Latitude, *row.Longitude
		if !inspection.ValidCoordinates(lat, lon) {
			continue
		}
		items = append(items, ports.MapMarker{
			ID:          row.FunctionalLocation,
			Name:        row.SubstationName,
			Coordinates: [2]float64{lat, lon},
			Status:      inspection.Status(row.Status),
		})
	}
	return items, nil
}

func (r *AnalyticsRepository) StatusCounts(ctx context.Context) ([]ports.StatusCount, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Status string
		Total  int64
	}
	if err := db.Model(&model.Switchgear{}).
		Select("status, count(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query status counts")
	}

	counts := make(map[inspection.Status]int64, len(rows))
	for _, row := range rows {
		counts[inspection.Status(row.Status)] = row.Total
	}

	items := make([]ports.StatusCount, 0, 4)
	for _, status := range inspection.AllStatuses() {
		items = append(items, ports.StatusCount{Status: status, Count: counts[status]})
	}
	return items, nil
}
