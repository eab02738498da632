package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/infrastructure/persistence/sqlite/model"
	"github.com/mkevin1491/fyp/internal/ports"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "records.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func floatPtr(v float64) *float64 { return &v }

func datePtr(raw string) *time.Time {
	parsed, err := time.Parse(inspection.DateLayout, raw)
	if err != nil {
		panic(err)
	}
	return &parsed
}

func testRow(location string) inspection.NormalizedRow {
	return inspection.NormalizedRow{
		FunctionalLocation: location,
		ReportDate:         datePtr("2024-05-12"),
		DefectFrom:         "Hotspot",
		HotspotDeltaT:      floatPtr(12.5),
		SwitchgearType:     "VCB",
		SwitchgearBrand:    "Schneider",
		SubstationName:     "PPU Seri",
		DefectDescription1: "Loose termination",
		DefectOwner:        "TNB",
		Latitude:           floatPtr(3.14),
		Longitude:          floatPtr(101.69),
	}
}

func TestInsertAssetStampsStatusAndRoundTripsRow(t *testing.T) {
	store := NewRecordStore(setupDB(t))
	ctx := context.Background()

	created, err := store.InsertAsset(ctx, testRow("SG-1"))
	if err != nil {
		t.Fatalf("InsertAsset() error = %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("InsertAsset() id = 0")
	}
	if created.Status != inspection.StatusCritical {
		t.Fatalf("InsertAsset() status = %q, want Critical", created.Status)
	}

	items, err := store.FindAssetRecords(ctx, "SG-1")
	if err != nil {
		t.Fatalf("FindAssetRecords() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("FindAssetRecords() len = %d", len(items))
	}
	if !items[0].SameContent(testRow("SG-1")) {
		t.Fatalf("FindAssetRecords() row = %#v, want same content as inserted", items[0].NormalizedRow)
	}
	if items[0].CreatedAt.IsZero() {
		t.Fatalf("FindAssetRecords() created_at is zero")
	}
}

func TestInsertRejectsEmptyLocation(t *testing.T) {
	store := NewRecordStore(setupDB(t))
	ctx := context.Background()

	if _, err := store.InsertAsset(ctx, testRow("  ")); !errors.Is(err, inspection.ErrFunctionalLocationRequired) {
		t.Fatalf("InsertAsset() error = %v, want ErrFunctionalLocationRequired", err)
	}
	if _, err := store.InsertPending(ctx, testRow("")); !errors.Is(err, inspection.ErrFunctionalLocationRequired) {
		t.Fatalf("InsertPending() error = %v, want ErrFunctionalLocationRequired", err)
	}
}

func TestNullReadingsAndDateSurviveStorage(t *testing.T) {
	store := NewRecordStore(setupDB(t))
	ctx := context.Background()

	row := testRow("SG-2")
	row.ReportDate = nil
	row.HotspotDeltaT = nil
	row.Latitude = nil
	row.Longitude = nil

	created, err := store.InsertPending(ctx, row)
	if err != nil {
		t.Fatalf("InsertPending() error = %v", err)
	}
	if created.Status != inspection.StatusUnknown {
		t.Fatalf("InsertPending() status = %q, want Unknown", created.Status)
	}

	got, err := store.GetPendingRecord(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetPendingRecord() error = %v", err)
	}
	if got.ReportDate != nil || got.TEVReading != nil || got.HotspotDeltaT != nil || got.Latitude != nil {
		t.Fatalf("GetPendingRecord() expected null fields, got %#v", got.NormalizedRow)
	}
}

func TestDeletePendingReportsAbsence(t *testing.T) {
	store := NewRecordStore(setupDB(t))
	ctx := context.Background()

	created, err := store.InsertPending(ctx, testRow("SG-3"))
	if err != nil {
		t.Fatalf("InsertPending() error = %v", err)
	}

	deleted, err := store.DeletePending(ctx, created.ID)
	if err != nil {
		t.Fatalf("DeletePending() error = %v", err)
	}
	if !deleted {
		t.Fatalf("DeletePending() = false, want true")
	}

	deleted, err = store.DeletePending(ctx, created.ID)
	if err != nil {
		t.Fatalf("DeletePending(second) error = %v", err)
	}
	if deleted {
		t.Fatalf("DeletePending(second) = true, want false")
	}

	if _, err := store.GetPendingRecord(ctx, created.ID); !errors.Is(err, inspection.ErrPendingNotFound) {
		t.Fatalf("GetPendingRecord() error = %v, want ErrPendingNotFound", err)
	}
}

func TestCountAndListPendingPages(t *testing.T) {
	store := NewRecordStore(setupDB(t))
	ctx := context.Background()

	for _, loc := range []string{"SG-a", "SG-b", "SG-c"} {
		if _, err := store.InsertPending(ctx, testRow(loc)); err != nil {
			t.Fatalf("InsertPending(%s) error = %v", loc, err)
		}
	}

	count, err := store.CountPending(ctx)
	if err != nil {
		t.Fatalf("CountPending() error = %v", err)
	}
	if count != 3 {
		t.Fatalf("CountPending() = %d, want 3", count)
	}

	page, err := store.ListPending(ctx, ports.PageRequest{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("ListPending() error = %v", err)
	}
	if page.Total != 3 || len(page.Items) != 1 {
		t.Fatalf("ListPending() total=%d len=%d, want 3/1", page.Total, len(page.Items))
	}
	if page.Items[0].FunctionalLocation != "SG-c" {
		t.Fatalf("ListPending() item = %q, want SG-c", page.Items[0].FunctionalLocation)
	}
}

func TestApprovalLogFilterAndOrder(t *testing.T) {
	store := NewRecordStore(setupDB(t))
	ctx := context.Background()

	entries := []ports.ApprovalLogCreate{
		{Action: inspection.ActionApproved, Message: "ok", FunctionalLocation: "SG-1", Approver: "a@example.com"},
		{Action: inspection.ActionRejected, Message: "typo", FunctionalLocation: "SG-2", Approver: "a@example.com"},
		{Action: inspection.ActionApproved, Message: "fine", FunctionalLocation: "SG-2", Approver: "b@example.com", TEVReading: floatPtr(4)},
	}
	for _, entry := range entries {
		if _, err := store.AppendApprovalLog(ctx, entry); err != nil {
			t.Fatalf("AppendApprovalLog() error = %v", err)
		}
	}

	approved, err := store.ListApprovalLog(ctx, ports.ApprovalLogFilter{Action: inspection.ActionApproved}, ports.PageRequest{})
	if err != nil {
		t.Fatalf("ListApprovalLog() error = %v", err)
	}
	if approved.Total != 2 || len(approved.Items) != 2 {
		t.Fatalf("ListApprovalLog(Approved) total=%d len=%d", approved.Total, len(approved.Items))
	}
	if approved.Items[0].Message != "fine" {
		t.Fatalf("ListApprovalLog() first = %q, want newest first", approved.Items[0].Message)
	}
	if approved.Items[0].TEVReading == nil || *approved.Items[0].TEVReading != 4 {
		t.Fatalf("ListApprovalLog() reading snapshot lost")
	}

	byLocation, err := store.ListApprovalLog(ctx, ports.ApprovalLogFilter{FunctionalLocation: "SG-2"}, ports.PageRequest{})
	if err != nil {
		t.Fatalf("ListApprovalLog(location) error = %v", err)
	}
	if byLocation.Total != 2 {
		t.Fatalf("ListApprovalLog(location) total = %d, want 2", byLocation.Total)
	}

	if _, err := store.AppendApprovalLog(ctx, ports.ApprovalLogCreate{Action: "Deleted"}); !errors.Is(err, inspection.ErrInvalidAction) {
		t.Fatalf("AppendApprovalLog() error = %v, want ErrInvalidAction", err)
	}
}

func TestListAssetsFilters(t *testing.T) {
	store := NewRecordStore(setupDB(t))
	ctx := context.Background()

	critical := testRow("SG-1")
	minor := testRow("SG-2")
	minor.HotspotDeltaT = floatPtr(1)
	minor.SubstationName = "PPU Lain"
	for _, row := range []inspection.NormalizedRow{critical, minor} {
		if _, err := store.InsertAsset(ctx, row); err != nil {
			t.Fatalf("InsertAsset() error = %v", err)
		}
	}

	page, err := store.ListAssets(ctx, ports.AssetFilter{Status: inspection.StatusNonCritical}, ports.PageRequest{})
	if err != nil {
		t.Fatalf("ListAssets() error = %v", err)
	}
	if page.Total != 1 || page.Items[0].FunctionalLocation != "SG-2" {
		t.Fatalf("ListAssets(status) = %#v", page)
	}

	page, err = store.ListAssets(ctx, ports.AssetFilter{SubstationName: "PPU Seri"}, ports.PageRequest{})
	if err != nil {
		t.Fatalf("ListAssets(substation) error = %v", err)
	}
	if page.Total != 1 || page.Items[0].FunctionalLocation != "SG-1" {
		t.Fatalf("ListAssets(substation) = %#v", page)
	}

	got, err := store.GetAsset(ctx, page.Items[0].ID)
	if err != nil {
		t.Fatalf("GetAsset() error = %v", err)
	}
	if got.FunctionalLocation != "SG-1" {
		t.Fatalf("GetAsset() location = %q", got.FunctionalLocation)
	}
	if _, err := store.GetAsset(ctx, 9999); !errors.Is(err, ports.ErrAssetNotFound) {
		t.Fatalf("GetAsset() error = %v, want ErrAssetNotFound", err)
	}
}
