package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/infrastructure/persistence/sqlite/model"
	"github.com/mkevin1491/fyp/internal/ports"
)

func (r *RecordStore) ListPending(ctx context.Context, page ports.PageRequest) (ports.Page[ports.PendingRecord], error) {
	db, err := r.conn(ctx)
	if err != nil {
		return ports.Page[ports.PendingRecord]{}, err
	}
	page = page.Normalize()

	var total int64
	if err := db.Model(&model.PendingSwitchgear{}).Count(&total).Error; err != nil {
		return ports.Page[ports.PendingRecord]{}, errs.Wrap(err, "count pending switchgear")
	}

	var rows []model.PendingSwitchgear
	if err := db.
		Order("id asc").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return ports.Page[ports.PendingRecord]{}, errs.Wrap(err, "query pending switchgear page")
	}

	items := make([]ports.PendingRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapPending(row))
	}
	return ports.Page[ports.PendingRecord]{
		Items:    items,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

func (r *RecordStore) ListApprovalLog(ctx context.Context, filter ports.ApprovalLogFilter, page ports.PageRequest) (ports.Page[ports.ApprovalLogEntry], error) {
	db, err := r.conn(ctx)
	if err != nil {
		return ports.Page[ports.ApprovalLogEntry]{}, err
	}
	page = page.Normalize()

	query := db.Model(&model.ApprovalLog{})
	if action := strings.TrimSpace(string(filter.Action)); action != "" {
		query = query.Where("action = ?", action)
	}
	if location := strings.TrimSpace(filter.FunctionalLocation); location != "" {
		query = query.Where("functional_location = ?", location)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return ports.Page[ports.ApprovalLogEntry]{}, errs.Wrap(err, "count approval log")
	}

	var rows []model.ApprovalLog
	if err := query.
		Order("id desc").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return ports.Page[ports.ApprovalLogEntry]{}, errs.Wrap(err, "query approval log page")
	}

	items := make([]ports.ApprovalLogEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapApprovalLog(row))
	}
	return ports.Page[ports.ApprovalLogEntry]{
		Items:    items,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

func (r *RecordStore) ListAssets(ctx context.Context, filter ports.AssetFilter, page ports.PageRequest) (ports.Page[ports.AssetRecord], error) {
	db, err := r.conn(ctx)
	if err != nil {
		return ports.Page[ports.AssetRecord]{}, err
	}
	page = page.Normalize()

	query := db.Model(&model.Switchgear{})
	if location := strings.TrimSpace(filter.FunctionalLocation); location != "" {
		query = query.Where("functional_location = ?", location)
	}
	if status := strings.TrimSpace(string(filter.Status)); status != "" {
		query = query.Where("status = ?", status)
	}
	if substation := strings.TrimSpace(filter.SubstationName); substation != "" {
		query = query.Where("substation_name = ?", substation)
	}
	if owner := strings.TrimSpace(filter.DefectOwner); owner != "" {
		query = query.Where("defect_owner = ?", owner)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return ports.Page[ports.AssetRecord]{}, errs.Wrap(err, "count switchgear")
	}

	var rows []model.Switchgear
	if err := query.
		Order("id asc").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return ports.Page[ports.AssetRecord]{}, errs.Wrap(err, "query switchgear page")
	}

	items := make([]ports.AssetRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapAsset(row))
	}
	return ports.Page[ports.AssetRecord]{
		Items:    items,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

func (r *RecordStore) GetAsset(ctx context.Context, id uint64) (ports.AssetRecord, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return ports.AssetRecord{}, err
	}

	var row model.Switchgear
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.AssetRecord{}, ports.ErrAssetNotFound
		}
		return ports.AssetRecord{}, errs.Wrap(err, "query switchgear by id")
	}
	return mapAsset(row), nil
}
