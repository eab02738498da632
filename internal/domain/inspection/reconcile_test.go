package inspection

import (
	"errors"
	"math"
	"testing"
	"time"
)

func day(raw string) *time.Time {
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		panic(err)
	}
	return &parsed
}

func sampleRow() NormalizedRow {
	return NormalizedRow{
		FunctionalLocation: "SG-001",
		ReportDate:         day("2024-03-01"),
		DefectFrom:         "TEV",
		TEVReading:         ptr(7),
		SwitchgearType:     "RMU",
		SwitchgearBrand:    "ABB",
		SubstationName:     "PMU Kota",
		DefectDescription1: "Partial discharge",
		DefectDescription2: "Cable box",
		DefectOwner:        "TNB",
	}
}

func TestDecideNewAssetWhenNothingStored(t *testing.T) {
	if got := Decide(sampleRow(), nil, nil); got != OutcomeNewAsset {
		t.Fatalf("Decide() = %q, want NewAsset", got)
	}
}

func TestDecideDuplicateAgainstAsset(t *testing.T) {
	row := sampleRow()
	stored := sampleRow()
	stored.Latitude = ptr(3.1)
	if got := Decide(row, []NormalizedRow{stored}, nil); got != OutcomeDuplicate {
		t.Fatalf("Decide() = %q, want Duplicate", got)
	}
}

func TestDecideDuplicateAgainstPendingWinsOverApproval(t *testing.T) {
	asset := sampleRow()
	changed := sampleRow()
	changed.SubstationName = "PMU Baru"

	if got := Decide(changed, []NormalizedRow{asset}, []NormalizedRow{changed}); got != OutcomeDuplicate {
		t.Fatalf("Decide() = %q, want Duplicate", got)
	}
}

func TestDecideNeedsApprovalForCorrectedFinding(t *testing.T) {
	asset := sampleRow()
	changed := sampleRow()
	changed.TEVReading = ptr(11)

	if got := Decide(changed, []NormalizedRow{asset}, nil); got != OutcomeNeedsApproval {
		t.Fatalf("Decide() = %q, want NeedsApproval", got)
	}
}

func TestDecidePendingOnlyKeyMatchIsNewAsset(t *testing.T) {
	pending := sampleRow()
	changed := sampleRow()
	changed.DefectOwner = "Contractor"

	if got := Decide(changed, nil, []NormalizedRow{pending}); got != OutcomeNewAsset {
		t.Fatalf("Decide() = %q, want NewAsset", got)
	}
}

func TestDecideNewFindingForKnownAsset(t *testing.T) {
	asset := sampleRow()
	next := sampleRow()
	next.ReportDate = day("2024-09-01")

	if got := Decide(next, []NormalizedRow{asset}, nil); got != OutcomeNewAsset {
		t.Fatalf("Decide() = %q, want NewAsset", got)
	}
}

func TestSameContentTreatsNullReadingsAsEqual(t *testing.T) {
	a := sampleRow()
	a.TEVReading = nil
	b := sampleRow()
	b.TEVReading = nil
	if !a.SameContent(b) {
		t.Fatalf("SameContent() expected true for two null readings")
	}

	b.TEVReading = ptr(0)
	if a.SameContent(b) {
		t.Fatalf("SameContent() expected false for null vs zero")
	}
}

func TestSameContentTreatsNaNReadingAsNull(t *testing.T) {
	a := sampleRow()
	a.TEVReading = ptr(math.NaN())
	b := sampleRow()
	b.TEVReading = ptr(math.NaN())
	if !a.SameContent(b) {
		t.Fatalf("SameContent() expected true for two NaN readings")
	}

	b.TEVReading = nil
	if !a.SameContent(b) {
		t.Fatalf("SameContent() expected true for NaN vs null")
	}
	if got := Decide(a, []NormalizedRow{b}, nil); got != OutcomeDuplicate {
		t.Fatalf("Decide() = %q, want Duplicate", got)
	}
}

func TestWithFiniteValuesDropsNonFinite(t *testing.T) {
	row := sampleRow()
	row.TEVReading = ptr(math.NaN())
	row.HotspotDeltaT = ptr(math.Inf(-1))
	row.Latitude = ptr(3.1)
	row.Longitude = ptr(math.Inf(1))

	got := row.WithFiniteValues()
	if got.TEVReading != nil || got.HotspotDeltaT != nil || got.Longitude != nil {
		t.Fatalf("WithFiniteValues() kept non-finite values: %+v", got)
	}
	if got.Latitude == nil || *got.Latitude != 3.1 {
		t.Fatalf("WithFiniteValues() latitude = %v, want 3.1", got.Latitude)
	}
	if row.TEVReading == nil {
		t.Fatalf("WithFiniteValues() modified the receiver")
	}
}

func TestSameContentComparesCalendarDay(t *testing.T) {
	a := sampleRow()
	b := sampleRow()
	later := a.ReportDate.Add(3 * time.Hour)
	b.ReportDate = &later
	if !a.SameContent(b) {
		t.Fatalf("SameContent() expected same calendar day to match")
	}
}

func TestParseApprovalAction(t *testing.T) {
	if _, err := ParseApprovalAction("Approved"); err != nil {
		t.Fatalf("ParseApprovalAction() error = %v", err)
	}
	_, err := ParseApprovalAction("approved-ish")
	if !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("ParseApprovalAction() error = %v, want ErrInvalidAction", err)
	}
}

func TestTallySummaryMessage(t *testing.T) {
	cases := []struct {
		name  string
		tally Tally
		want  string
	}{
		{name: "empty", tally: Tally{}, want: "No records found in the upload."},
		{name: "all duplicates", tally: Tally{Duplicates: 3}, want: "All records already exist in either pending approvals or switchgear records."},
		{name: "both", tally: Tally{NewAssets: 2, NeedsApproval: 1, Duplicates: 1}, want: "File uploaded. 2 new record(s) added and 1 record(s) sent for approval."},
		{name: "new only", tally: Tally{NewAssets: 1}, want: "File uploaded. 1 new record(s) added; nothing needs approval."},
		{name: "approval only", tally: Tally{NeedsApproval: 4}, want: "File uploaded. 4 record(s) sent for approval; no new records added."},
		{name: "errors only", tally: Tally{Duplicates: 1, RowErrors: 2}, want: "No new records were added. 1 duplicate(s), 2 row error(s)."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.tally.SummaryMessage(); got != tc.want {
				t.Fatalf("SummaryMessage() = %q, want %q", got, tc.want)
			}
		})
	}
}
