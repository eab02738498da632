package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/infrastructure/persistence/sqlite/model"
	"github.com/mkevin1491/fyp/internal/ports"
)

// RecordStore implements ports.RecordStore and ports.RecordReader with gorm.
// A RecordStore built on a transaction handle runs every call inside it.
type RecordStore struct {
	db *gorm.DB
}

var (
	_ ports.RecordStore  = (*RecordStore)(nil)
	_ ports.RecordReader = (*RecordStore)(nil)
)

func NewRecordStore(db *gorm.DB) *RecordStore {
	return &RecordStore{db: db}
}

func (r *RecordStore) conn(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if r.db == nil {
		return nil, errors.New("record store database is required")
	}
	return r.db.WithContext(ctx), nil
}

func (r *RecordStore) FindAssetRecords(ctx context.Context, functionalLocation string) ([]ports.AssetRecord, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Switchgear
	if err := db.
		Where("functional_location = ?", strings.TrimSpace(functionalLocation)).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query switchgear by functional location")
	}

	items := make([]ports.AssetRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapAsset(row))
	}
	return items, nil
}

func (r *RecordStore) FindPendingRecords(ctx context.Context, functionalLocation string) ([]ports.PendingRecord, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.PendingSwitchgear
	if err := db.
		Where("functional_location = ?", strings.TrimSpace(functionalLocation)).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query pending switchgear by functional location")
	}

	items := make([]ports.PendingRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapPending(row))
	}
	return items, nil
}

func (r *RecordStore) GetPendingRecord(ctx context.Context, id uint64) (ports.PendingRecord, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return ports.PendingRecord{}, err
	}

	var row model.PendingSwitchgear
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.PendingRecord{}, inspection.ErrPendingNotFound
		}
		return ports.PendingRecord{}, errs.Wrap(err, "query pending switchgear by id")
	}
	return mapPending(row), nil
}

func (r *RecordStore) InsertAsset(ctx context.Context, row inspection.NormalizedRow) (ports.AssetRecord, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return ports.AssetRecord{}, err
	}
	if row.Location() == "" {
		return ports.AssetRecord{}, inspection.ErrFunctionalLocationRequired
	}

	record := model.Switchgear{InspectionColumns: toColumns(row, nowUTCString())}
	if err := db.Create(&record).Error; err != nil {
		return ports.AssetRecord{}, errs.Wrap(err, "insert switchgear")
	}
	return mapAsset(record), nil
}

func (r *RecordStore) InsertPending(ctx context.Context, row inspection.NormalizedRow) (ports.PendingRecord, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return ports.PendingRecord{}, err
	}
	if row.Location() == "" {
		return ports.PendingRecord{}, inspection.ErrFunctionalLocationRequired
	}

	record := model.PendingSwitchgear{InspectionColumns: toColumns(row, nowUTCString())}
	if err := db.Create(&record).Error; err != nil {
		return ports.PendingRecord{}, errs.Wrap(err, "insert pending switchgear")
	}
	return mapPending(record), nil
}

func (r *RecordStore) DeletePending(ctx context.Context, id uint64) (bool, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return false, err
	}

	result := db.Where("id = ?", id).Delete(&model.PendingSwitchgear{})
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "delete pending switchgear")
	}
	return result.RowsAffected > 0, nil
}

func (r *RecordStore) CountPending(ctx context.Context) (int64, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.PendingSwitchgear{}).Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count pending switchgear")
	}
	return count, nil
}

func (r *RecordStore) AppendApprovalLog(ctx context.Context, entry ports.ApprovalLogCreate) (ports.ApprovalLogEntry, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return ports.ApprovalLogEntry{}, err
	}
	action, err := inspection.ParseApprovalAction(string(entry.Action))
	if err != nil {
		return ports.ApprovalLogEntry{}, err
	}

	row := model.ApprovalLog{
		Action:             string(action),
		Message:            entry.Message,
		FunctionalLocation: entry.FunctionalLocation,
		TEVReading:         entry.TEVReading,
		HotspotDeltaT:      entry.HotspotDeltaT,
		Approver:           entry.Approver,
		Timestamp:          formatTime(entry.Timestamp),
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.ApprovalLogEntry{}, errs.Wrap(err, "insert approval log")
	}
	return mapApprovalLog(row), nil
}
