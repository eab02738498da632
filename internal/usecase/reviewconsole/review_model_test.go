package reviewconsole

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/ports"
	"github.com/mkevin1491/fyp/internal/usecase/analytics"
	"github.com/mkevin1491/fyp/internal/usecase/ingestion"
)

type stubQueue struct {
	items    []ports.PendingRecord
	resolved []ingestion.ResolveInput
	actions  []inspection.ApprovalAction
	err      error
}

func (s *stubQueue) ListPending(_ context.Context, page ports.PageRequest) (ports.Page[ports.PendingRecord], error) {
	return ports.Page[ports.PendingRecord]{Items: s.items, Total: int64(len(s.items)), Page: page.Page, PageSize: page.PageSize}, nil
}

func (s *stubQueue) Approve(_ context.Context, input ingestion.ResolveInput) (ingestion.ResolveResult, error) {
	return s.resolve(inspection.ActionApproved, input)
}

func (s *stubQueue) Reject(_ context.Context, input ingestion.ResolveInput) (ingestion.ResolveResult, error) {
	return s.resolve(inspection.ActionRejected, input)
}

func (s *stubQueue) resolve(action inspection.ApprovalAction, input ingestion.ResolveInput) (ingestion.ResolveResult, error) {
	s.resolved = append(s.resolved, input)
	s.actions = append(s.actions, action)
	if s.err != nil {
		return ingestion.ResolveResult{}, s.err
	}
	return ingestion.ResolveResult{PendingID: input.PendingID, Action: action, PendingCount: 0}, nil
}

type stubAssets struct {
	query analytics.AssetQuery
	items []ports.AssetRecord
}

func (s *stubAssets) ListAssets(_ context.Context, query analytics.AssetQuery, _ ports.PageRequest) (ports.Page[ports.AssetRecord], error) {
	s.query = query
	return ports.Page[ports.AssetRecord]{Items: s.items, Total: int64(len(s.items))}, nil
}

func day(raw string) *time.Time {
	parsed, err := time.Parse(inspection.DateLayout, raw)
	if err != nil {
		panic(err)
	}
	return &parsed
}

func reading(v float64) *float64 { return &v }

func pendingRow(id uint64, location string) ports.PendingRecord {
	return ports.PendingRecord{
		ID: id,
		NormalizedRow: inspection.NormalizedRow{
			FunctionalLocation: location,
			ReportDate:         day("2024-05-12"),
			DefectFrom:         "Hotspot",
			HotspotDeltaT:      reading(12),
			DefectDescription1: "Loose termination",
			DefectOwner:        "TNB",
		},
		Status:    inspection.StatusCritical,
		CreatedAt: time.Date(2024, 5, 13, 8, 0, 0, 0, time.UTC),
	}
}

func TestCurrentLoadedIgnoresStaleSelection(t *testing.T) {
	model := &reviewModel{
		ctx:           context.Background(),
		pending:       []ports.PendingRecord{pendingRow(1, "SG-1"), pendingRow(2, "SG-2")},
		selectedIndex: 1,
	}

	nextModel, _ := model.Update(currentLoadedMsg{pendingID: 1, items: []ports.AssetRecord{{ID: 9}}})

	updated, ok := nextModel.(*reviewModel)
	if !ok {
		t.Fatalf("type assertion failed: %T", nextModel)
	}
	if updated.hasCurrent {
		t.Fatalf("stale stored records should be ignored")
	}
}

func TestViewHighlightsChangedFields(t *testing.T) {
	pending := pendingRow(3, "SG-3")
	stored := ports.AssetRecord{ID: 7, NormalizedRow: pending.NormalizedRow, Status: inspection.StatusMajor}
	stored.HotspotDeltaT = reading(6)

	model := &reviewModel{
		ctx:        context.Background(),
		approver:   "aina@example.com",
		pending:    []ports.PendingRecord{pending},
		total:      1,
		current:    []ports.AssetRecord{stored},
		hasCurrent: true,
	}

	view := model.View()
	if !strings.Contains(view, "#3 SG-3 date=2024-05-12") {
		t.Fatalf("view missing queue line: %s", view)
	}
	if !strings.Contains(view, "(was 6)") {
		t.Fatalf("view missing changed hotspot reading: %s", view)
	}
	if strings.Contains(view, "Defect Owner         TNB (was") {
		t.Fatalf("unchanged field rendered as changed: %s", view)
	}
}

func TestViewWithoutStoredFinding(t *testing.T) {
	model := &reviewModel{
		ctx:        context.Background(),
		pending:    []ports.PendingRecord{pendingRow(3, "SG-3")},
		hasCurrent: true,
	}

	view := model.View()
	if !strings.Contains(view, "Stored: none for this finding") {
		t.Fatalf("view missing empty stored state: %s", view)
	}
}

func TestApproveKeyResolvesSelectedRecord(t *testing.T) {
	queue := &stubQueue{items: []ports.PendingRecord{pendingRow(4, "SG-4"), pendingRow(5, "SG-5")}}
	assets := &stubAssets{}
	model := NewReviewModel(context.Background(), queue, assets, Options{Approver: "aina@example.com"}).(*reviewModel)

	next, cmd := model.Update(pendingLoadedMsg{page: ports.Page[ports.PendingRecord]{Items: queue.items, Total: 2}})
	if cmd == nil {
		t.Fatal("pending load should request stored records")
	}
	if _, ok := cmd().(currentLoadedMsg); !ok {
		t.Fatal("load command did not return currentLoadedMsg")
	}
	if assets.query.FunctionalLocation != "SG-4" {
		t.Fatalf("asset query location = %q, want SG-4", assets.query.FunctionalLocation)
	}

	model = next.(*reviewModel)
	next, _ = model.Update(keyMsg("j"))
	model = next.(*reviewModel)
	if model.selectedIndex != 1 {
		t.Fatalf("selectedIndex = %d, want 1", model.selectedIndex)
	}

	_, cmd = model.Update(keyMsg("a"))
	if cmd == nil {
		t.Fatal("approve key returned no command")
	}
	done, ok := cmd().(actionDoneMsg)
	if !ok {
		t.Fatal("approve command did not return actionDoneMsg")
	}
	if len(queue.resolved) != 1 || queue.resolved[0].PendingID != 5 || queue.resolved[0].Approver != "aina@example.com" {
		t.Fatalf("resolved = %#v", queue.resolved)
	}
	if queue.actions[0] != inspection.ActionApproved {
		t.Fatalf("action = %q, want Approved", queue.actions[0])
	}

	next, _ = model.Update(done)
	model = next.(*reviewModel)
	if len(model.auditLogs) != 1 || !strings.Contains(model.auditLogs[0], "pending=5") {
		t.Fatalf("audit log = %#v", model.auditLogs)
	}
}

func TestRejectRequiresApprover(t *testing.T) {
	queue := &stubQueue{items: []ports.PendingRecord{pendingRow(4, "SG-4")}}
	model := NewReviewModel(context.Background(), queue, nil, Options{}).(*reviewModel)
	model.pending = queue.items

	_, cmd := model.Update(keyMsg("x"))
	if cmd != nil {
		t.Fatal("reject without approver should not run")
	}
	if model.status != "approver is not set" {
		t.Fatalf("status = %q", model.status)
	}
}

func TestAuditLogMarksAlreadyResolved(t *testing.T) {
	model := &reviewModel{ctx: context.Background(), approver: "a@b.com"}
	for i := 0; i < maxAuditLines+2; i++ {
		model.appendAuditLog(actionDoneMsg{
			action:    inspection.ActionRejected,
			pendingID: uint64(i + 1),
			err:       errors.Join(errors.New("load pending"), inspection.ErrPendingNotFound),
		})
	}
	if len(model.auditLogs) != maxAuditLines {
		t.Fatalf("len(auditLogs) = %d, want %d", len(model.auditLogs), maxAuditLines)
	}
	if !strings.Contains(model.auditLogs[0], "result=already resolved") {
		t.Fatalf("audit line = %q", model.auditLogs[0])
	}
}

func TestEmptyQueueClearsSelection(t *testing.T) {
	model := &reviewModel{
		ctx:           context.Background(),
		pending:       []ports.PendingRecord{pendingRow(1, "SG-1")},
		selectedIndex: 0,
		hasCurrent:    true,
	}

	next, cmd := model.Update(pendingLoadedMsg{})
	if cmd != nil {
		t.Fatal("empty queue should not load stored records")
	}
	updated := next.(*reviewModel)
	if updated.hasCurrent || updated.status != "queue is empty" {
		t.Fatalf("updated = hasCurrent:%v status:%q", updated.hasCurrent, updated.status)
	}
}

func keyMsg(key string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}
