package reviewconsole

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/ports"
	"github.com/mkevin1491/fyp/internal/usecase/analytics"
	"github.com/mkevin1491/fyp/internal/usecase/ingestion"
)

const maxAuditLines = 8
const defaultPageSize = 50

// QueueService is the approval workflow the console drives.
type QueueService interface {
	ListPending(ctx context.Context, page ports.PageRequest) (ports.Page[ports.PendingRecord], error)
	Approve(ctx context.Context, input ingestion.ResolveInput) (ingestion.ResolveResult, error)
	Reject(ctx context.Context, input ingestion.ResolveInput) (ingestion.ResolveResult, error)
}

// AssetLister looks up the stored records a pending record would join.
type AssetLister interface {
	ListAssets(ctx context.Context, query analytics.AssetQuery, page ports.PageRequest) (ports.Page[ports.AssetRecord], error)
}

type Options struct {
	Approver        string
	Message         string
	PageSize        int
	RefreshInterval time.Duration
}

type reviewModel struct {
	ctx             context.Context
	queue           QueueService
	assets          AssetLister
	approver        string
	message         string
	pageSize        int
	refreshInterval time.Duration

	pending       []ports.PendingRecord
	total         int64
	selectedIndex int
	current       []ports.AssetRecord
	hasCurrent    bool
	status        string
	auditLogs     []string
}

type pendingLoadedMsg struct {
	page ports.Page[ports.PendingRecord]
	err  error
}

type currentLoadedMsg struct {
	pendingID uint64
	items     []ports.AssetRecord
	err       error
}

type tickMsg struct{}

type actionDoneMsg struct {
	action    inspection.ApprovalAction
	pendingID uint64
	location  string
	result    ingestion.ResolveResult
	err       error
}

func NewReviewModel(ctx context.Context, queue QueueService, assets AssetLister, options Options) tea.Model {
	pageSize := options.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	interval := options.RefreshInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	message := strings.TrimSpace(options.Message)
	if message == "" {
		message = "reviewed in console"
	}

	return &reviewModel{
		ctx:             ctx,
		queue:           queue,
		assets:          assets,
		approver:        strings.TrimSpace(options.Approver),
		message:         message,
		pageSize:        pageSize,
		refreshInterval: interval,
		status:          "loading",
	}
}

func (m *reviewModel) Init() tea.Cmd {
	return tea.Batch(m.loadPendingCmd(), m.tickCmd())
}

func (m *reviewModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tickMsg:
		return m, tea.Batch(m.loadPendingCmd(), m.tickCmd())
	case pendingLoadedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
			return m, nil
		}
		m.pending = msg.page.Items
		m.total = msg.page.Total
		if len(m.pending) == 0 {
			m.selectedIndex = 0
			m.hasCurrent = false
			m.current = nil
			m.status = "queue is empty"
			return m, nil
		}
		if m.selectedIndex < 0 {
			m.selectedIndex = 0
		}
		if m.selectedIndex >= len(m.pending) {
			m.selectedIndex = len(m.pending) - 1
		}
		m.status = fmt.Sprintf("refreshed, %d pending", m.total)
		return m, m.loadCurrentCmd()
	case currentLoadedMsg:
		if !m.isCurrentSelection(msg.pendingID) {
			return m, nil
		}
		if msg.err != nil {
			m.hasCurrent = false
			m.current = nil
			m.status = "stored records unavailable: " + msg.err.Error()
			return m, nil
		}
		m.current = msg.items
		m.hasCurrent = true
		return m, nil
	case actionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
		} else {
			m.status = fmt.Sprintf("%s #%d, %d pending", msg.action, msg.pendingID, msg.result.PendingCount)
		}
		m.appendAuditLog(msg)
		return m, m.loadPendingCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "g":
			m.status = "refreshing"
			return m, m.loadPendingCmd()
		case "up", "k":
			if m.selectedIndex > 0 {
				m.selectedIndex--
				return m, m.loadCurrentCmd()
			}
			return m, nil
		case "down", "j":
			if m.selectedIndex < len(m.pending)-1 {
				m.selectedIndex++
				return m, m.loadCurrentCmd()
			}
			return m, nil
		case "a":
			return m, m.resolveCmd(inspection.ActionApproved)
		case "x":
			return m, m.resolveCmd(inspection.ActionRejected)
		}
	}
	return m, nil
}

func (m *reviewModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62"))
	changedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("Switchgear Review Console"))
	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(fmt.Sprintf(
		"approver=%s pending=%d refresh=%s",
		firstNonEmpty(m.approver, "-"),
		m.total,
		m.refreshInterval,
	)))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Queue"))
	builder.WriteString("\n")
	if len(m.pending) == 0 {
		builder.WriteString(dimStyle.Render("- no pending records"))
		builder.WriteString("\n\n")
	} else {
		for index, item := range m.pending {
			line := fmt.Sprintf(
				"#%d %s date=%s defect=%s status=%s",
				item.ID,
				item.FunctionalLocation,
				firstNonEmpty(inspection.FormatDate(item.ReportDate), "-"),
				firstNonEmpty(item.DefectDescription1, "-"),
				item.Status,
			)
			if index == m.selectedIndex {
				builder.WriteString(selectedStyle.Render("> " + line))
			} else {
				builder.WriteString("  " + line)
			}
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(sectionStyle.Render("Detail"))
	builder.WriteString("\n")
	selected, ok := m.selectedPending()
	if !ok {
		builder.WriteString(dimStyle.Render("- no selection"))
		builder.WriteString("\n\n")
	} else {
		var stored *inspection.NormalizedRow
		if m.hasCurrent {
			if match, found := latestSameFinding(selected.NormalizedRow, m.current); found {
				stored = &match
			}
		}
		builder.WriteString(fmt.Sprintf("Pending: #%d created=%s\n", selected.ID, selected.CreatedAt.UTC().Format(time.RFC3339)))
		switch {
		case !m.hasCurrent:
			builder.WriteString("Stored: loading\n")
		case stored == nil:
			builder.WriteString("Stored: none for this finding\n")
		default:
			builder.WriteString(fmt.Sprintf("Stored: %d record(s) at this location\n", len(m.current)))
		}
		for _, field := range compareFields(selected.NormalizedRow, stored) {
			line := fmt.Sprintf("%-20s %s", field.label, field.pending)
			if field.changed {
				builder.WriteString(changedStyle.Render(fmt.Sprintf("* %s (was %s)", line, field.stored)))
			} else {
				builder.WriteString("  " + line)
			}
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(sectionStyle.Render("Status"))
	builder.WriteString("\n")
	builder.WriteString("- " + firstNonEmpty(m.status, "ready"))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Audit Log"))
	builder.WriteString("\n")
	if len(m.auditLogs) == 0 {
		builder.WriteString(dimStyle.Render("- no actions"))
		builder.WriteString("\n\n")
	} else {
		for _, line := range m.auditLogs {
			builder.WriteString("- " + line)
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(dimStyle.Render("Keys: ↑/k ↓/j move  g refresh  a approve  x reject  q quit"))
	return builder.String()
}

func (m *reviewModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *reviewModel) loadPendingCmd() tea.Cmd {
	return func() tea.Msg {
		page, err := m.queue.ListPending(m.ctx, ports.PageRequest{Page: 1, PageSize: m.pageSize})
		return pendingLoadedMsg{page: page, err: err}
	}
}

func (m *reviewModel) loadCurrentCmd() tea.Cmd {
	selected, ok := m.selectedPending()
	if !ok || m.assets == nil {
		return nil
	}
	return func() tea.Msg {
		page, err := m.assets.ListAssets(m.ctx, analytics.AssetQuery{
			FunctionalLocation: selected.FunctionalLocation,
		}, ports.PageRequest{Page: 1, PageSize: 100})
		if err != nil {
			return currentLoadedMsg{pendingID: selected.ID, err: err}
		}
		return currentLoadedMsg{pendingID: selected.ID, items: page.Items}
	}
}

func (m *reviewModel) resolveCmd(action inspection.ApprovalAction) tea.Cmd {
	selected, ok := m.selectedPending()
	if !ok {
		m.status = "nothing to review"
		return nil
	}
	if m.approver == "" {
		m.status = "approver is not set"
		return nil
	}
	m.status = fmt.Sprintf("%s #%d in progress", action, selected.ID)

	run := m.queue.Approve
	if action == inspection.ActionRejected {
		run = m.queue.Reject
	}
	return func() tea.Msg {
		result, err := run(m.ctx, ingestion.ResolveInput{
			PendingID: selected.ID,
			Message:   m.message,
			Approver:  m.approver,
		})
		return actionDoneMsg{
			action:    action,
			pendingID: selected.ID,
			location:  selected.FunctionalLocation,
			result:    result,
			err:       err,
		}
	}
}

func (m *reviewModel) selectedPending() (ports.PendingRecord, bool) {
	if len(m.pending) == 0 {
		return ports.PendingRecord{}, false
	}
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.pending) {
		return ports.PendingRecord{}, false
	}
	return m.pending[m.selectedIndex], true
}

func (m *reviewModel) isCurrentSelection(pendingID uint64) bool {
	selected, ok := m.selectedPending()
	return ok && selected.ID == pendingID
}

func (m *reviewModel) appendAuditLog(msg actionDoneMsg) {
	outcome := "ok"
	if msg.err != nil {
		outcome = "error: " + msg.err.Error()
		if errors.Is(msg.err, inspection.ErrPendingNotFound) {
			outcome = "already resolved"
		}
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	line := fmt.Sprintf("%s approver=%s pending=%d location=%s action=%s result=%s", timestamp, m.approver, msg.pendingID, msg.location, msg.action, outcome)
	m.auditLogs = append([]string{line}, m.auditLogs...)
	if len(m.auditLogs) > maxAuditLines {
		m.auditLogs = m.auditLogs[:maxAuditLines]
	}

	logging.Info(m.ctx, "review console action",
		slog.String("approver", m.approver),
		slog.Uint64("pending_id", msg.pendingID),
		slog.String("functional_location", msg.location),
		slog.String("action", string(msg.action)),
		slog.String("result", outcome),
	)
}

// latestSameFinding returns the newest stored record with the same report
// date and primary defect, the record an approval would sit beside.
func latestSameFinding(row inspection.NormalizedRow, stored []ports.AssetRecord) (inspection.NormalizedRow, bool) {
	for i := len(stored) - 1; i >= 0; i-- {
		if stored[i].SameFinding(row) {
			return stored[i].NormalizedRow, true
		}
	}
	return inspection.NormalizedRow{}, false
}

type fieldView struct {
	label   string
	pending string
	stored  string
	changed bool
}

func compareFields(pending inspection.NormalizedRow, stored *inspection.NormalizedRow) []fieldView {
	pendingValues := fieldValues(pending)
	var storedValues [][2]string
	if stored != nil {
		storedValues = fieldValues(*stored)
	}

	out := make([]fieldView, 0, len(pendingValues))
	for i, value := range pendingValues {
		view := fieldView{label: value[0], pending: value[1]}
		if storedValues != nil {
			view.stored = storedValues[i][1]
			view.changed = view.stored != view.pending
		}
		out = append(out, view)
	}
	return out
}

func fieldValues(row inspection.NormalizedRow) [][2]string {
	return [][2]string{
		{"Report Date", firstNonEmpty(inspection.FormatDate(row.ReportDate), "-")},
		{"Defect From", firstNonEmpty(row.DefectFrom, "-")},
		{"TEV (dB)", formatReading(row.TEVReading)},
		{"Hotspot ΔT (C)", formatReading(row.HotspotDeltaT)},
		{"Switchgear Type", firstNonEmpty(row.SwitchgearType, "-")},
		{"Switchgear Brand", firstNonEmpty(row.SwitchgearBrand, "-")},
		{"Substation", firstNonEmpty(row.SubstationName, "-")},
		{"Defect 1", firstNonEmpty(row.DefectDescription1, "-")},
		{"Defect 2", firstNonEmpty(row.DefectDescription2, "-")},
		{"Defect Owner", firstNonEmpty(row.DefectOwner, "-")},
	}
}

func formatReading(value *float64) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *value)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		normalized := strings.TrimSpace(value)
		if normalized != "" {
			return normalized
		}
	}
	return ""
}
