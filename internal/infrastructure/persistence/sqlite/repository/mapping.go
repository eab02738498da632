package repository

import (
	"strings"
	"time"

	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/infrastructure/persistence/sqlite/model"
	"github.com/mkevin1491/fyp/internal/ports"
)

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return nowUTCString()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func toColumns(row inspection.NormalizedRow, stamp string) model.InspectionColumns {
	var reportDate *string
	if row.ReportDate != nil {
		formatted := inspection.FormatDate(row.ReportDate)
		reportDate = &formatted
	}
	return model.InspectionColumns{
		FunctionalLocation: row.Location(),
		ReportDate:         reportDate,
		DefectFrom:         row.DefectFrom,
		TEVReading:         row.TEVReading,
		HotspotDeltaT:      row.HotspotDeltaT,
		SwitchgearType:     row.SwitchgearType,
		SwitchgearBrand:    row.SwitchgearBrand,
		SubstationName:     row.SubstationName,
		DefectDescription1: row.DefectDescription1,
		DefectDescription2: row.DefectDescription2,
		DefectOwner:        row.DefectOwner,
		Latitude:           row.Latitude,
		Longitude:          row.Longitude,
		Status:             string(row.Status()),
		CreatedAt:          stamp,
		UpdatedAt:          stamp,
	}
}

func toRow(cols model.InspectionColumns) inspection.NormalizedRow {
	var reportDate *time.Time
	if cols.ReportDate != nil {
		// Stored dates are always written by toColumns; a bad value reads as null.
		reportDate, _ = inspection.ParseDate(*cols.ReportDate)
	}
	return inspection.NormalizedRow{
		FunctionalLocation: cols.FunctionalLocation,
		ReportDate:         reportDate,
		DefectFrom:         cols.DefectFrom,
		TEVReading:         cols.TEVReading,
		HotspotDeltaT:      cols.HotspotDeltaT,
		SwitchgearType:     cols.SwitchgearType,
		SwitchgearBrand:    cols.SwitchgearBrand,
		SubstationName:     cols.SubstationName,
		DefectDescription1: cols.DefectDescription1,
		DefectDescription2: cols.DefectDescription2,
		DefectOwner:        cols.DefectOwner,
		Latitude:           cols.Latitude,
		Longitude:          cols.Longitude,
	}
}

func mapAsset(row model.Switchgear) ports.AssetRecord {
	return ports.AssetRecord{
		ID:            row.ID,
		NormalizedRow: toRow(row.InspectionColumns),
		Status:        inspection.Status(row.Status),
		CreatedAt:     parseTime(row.CreatedAt),
		UpdatedAt:     parseTime(row.UpdatedAt),
	}
}

func mapPending(row model.PendingSwitchgear) ports.PendingRecord {
	return ports.PendingRecord{
		ID:            row.ID,
		NormalizedRow: toRow(row.InspectionColumns),
		Status:        inspection.Status(row.Status),
		CreatedAt:     parseTime(row.CreatedAt),
		UpdatedAt:     parseTime(row.UpdatedAt),
	}
}

func mapApprovalLog(row model.ApprovalLog) ports.ApprovalLogEntry {
	return ports.ApprovalLogEntry{
		ID:                 row.ID,
		Action:             inspection.ApprovalAction(row.Action),
		Message:            row.Message,
		FunctionalLocation: row.FunctionalLocation,
		TEVReading:         row.TEVReading,
		HotspotDeltaT:      row.HotspotDeltaT,
		Approver:           row.Approver,
		Timestamp:          parseTime(row.Timestamp),
	}
}
