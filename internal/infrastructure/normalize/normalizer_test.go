package normalize

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mkevin1491/fyp/internal/domain/inspection"
)

var reportHeader = []any{
	"Functional Location", "Report Date ", "Defect From", "TEV/US In DB", "Hotspot ∆T In ⁰C",
	"Switchgear Type", "Switchgear Brand", "Substation Name", "Defect Description 1",
	"Defect Description 2", "Defect Owner", "latitude", "longitude",
}

func buildWorkbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()

	book := excelize.NewFile()
	defer func() {
		_ = book.Close()
	}()
	sheet := book.GetSheetName(0)

	if err := book.SetSheetRow(sheet, "A1", &[]any{"TNB Switchgear Inspection"}); err != nil {
		t.Fatalf("SetSheetRow(title) error = %v", err)
	}
	if err := book.SetSheetRow(sheet, "A2", &reportHeader); err != nil {
		t.Fatalf("SetSheetRow(header) error = %v", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			t.Fatalf("CoordinatesToCellName() error = %v", err)
		}
		values := row
		if err := book.SetSheetRow(sheet, cell, &values); err != nil {
			t.Fatalf("SetSheetRow(%s) error = %v", cell, err)
		}
	}

	var buf bytes.Buffer
	if err := book.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return &buf
}

func TestNormalizeWorkbookWithTitleRow(t *testing.T) {
	reported := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	buf := buildWorkbook(t,
		[]any{"SG-1", reported, "TEV", 12.5, "", "RMU", "ABB", "PMU Kota", "PD", "Cable box", "TNB", 3.14, 101.7},
		[]any{},
		[]any{"SG-2", "not a date", "Hotspot", "n/a", 6, "VCB", "Schneider", "PPU Seri", "Hot joint", "", "Contractor"},
	)

	rows, err := NewNormalizer(nil, 0).Normalize(context.Background(), "march.xlsx", buf)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Normalize() len = %d, want 2 (blank row skipped)", len(rows))
	}

	first := rows[0]
	if first.FunctionalLocation != "SG-1" || first.SubstationName != "PMU Kota" {
		t.Fatalf("first row = %#v", first)
	}
	if first.ReportDate == nil || first.ReportDate.Format(inspection.DateLayout) != "2024-01-15" {
		t.Fatalf("first report date = %v, want 2024-01-15", first.ReportDate)
	}
	if first.TEVReading == nil || *first.TEVReading != 12.5 {
		t.Fatalf("first tev = %v", first.TEVReading)
	}
	if first.HotspotDeltaT != nil {
		t.Fatalf("first hotspot = %v, want nil", *first.HotspotDeltaT)
	}
	if first.Latitude == nil || *first.Latitude != 3.14 {
		t.Fatalf("first latitude = %v", first.Latitude)
	}

	second := rows[1]
	if second.ReportDate != nil {
		t.Fatalf("second report date = %v, want coerced nil", second.ReportDate)
	}
	if second.TEVReading != nil {
		t.Fatalf("second tev = %v, want coerced nil", *second.TEVReading)
	}
	if second.HotspotDeltaT == nil || *second.HotspotDeltaT != 6 {
		t.Fatalf("second hotspot = %v", second.HotspotDeltaT)
	}
	if second.Latitude != nil || second.Longitude != nil {
		t.Fatalf("second coordinates should be nil")
	}
	if second.Status() != inspection.StatusMajor {
		t.Fatalf("second status = %q, want Major", second.Status())
	}
}

func TestNormalizeCSVFoldsHeaderVariants(t *testing.T) {
	input := "\xef\xbb\xbfFUNCTIONAL   LOCATION,report date,TEV/US In DB,Hotspot ΔT In °C,Substation Name\n" +
		"SG-9,13/02/2024,\"1,200\",,PE Taman\n" +
		"SG-10,2024-03-04,3,,\n"

	rows, err := NewNormalizer(nil, 0).Normalize(context.Background(), "upload.CSV", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Normalize() len = %d", len(rows))
	}
	if got := inspection.FormatDate(rows[0].ReportDate); got != "2024-02-13" {
		t.Fatalf("day-first fallback date = %q, want 2024-02-13", got)
	}
	if rows[0].TEVReading == nil || *rows[0].TEVReading != 1200 {
		t.Fatalf("thousands separator reading = %v", rows[0].TEVReading)
	}
	if got := inspection.FormatDate(rows[1].ReportDate); got != "2024-03-04" {
		t.Fatalf("iso date = %q", got)
	}
}

func TestNormalizeFailuresAreParseErrors(t *testing.T) {
	n := NewNormalizer(nil, 2)
	cases := []struct {
		name  string
		file  string
		input string
	}{
		{name: "unsupported extension", file: "report.pdf", input: "%PDF"},
		{name: "missing header", file: "report.csv", input: "a,b\n1,2\n3,4\n"},
		{name: "header beyond scan window", file: "report.csv", input: "x\ny\nFunctional Location\nSG-1\n"},
		{name: "corrupt workbook", file: "report.xlsx", input: "not a zip"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := n.Normalize(context.Background(), tc.file, strings.NewReader(tc.input))
			var parseErr *inspection.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Normalize() error = %v, want ParseError", err)
			}
			if parseErr.Source != tc.file {
				t.Fatalf("ParseError source = %q", parseErr.Source)
			}
		})
	}
}

func TestLoadColumnMapYAMLAndTOML(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "columns.yaml")
	tomlPath := filepath.Join(dir, "columns.toml")
	if err := os.WriteFile(yamlPath, []byte("columns:\n  functional_location: [\"Asset Tag\"]\n"), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if err := os.WriteFile(tomlPath, []byte("[columns]\nsubstation_name = [\"Site\"]\n"), 0o644); err != nil {
		t.Fatalf("write toml: %v", err)
	}

	fromYAML, err := LoadColumnMap(yamlPath)
	if err != nil {
		t.Fatalf("LoadColumnMap(yaml) error = %v", err)
	}
	rows, err := NewNormalizer(fromYAML, 0).Normalize(context.Background(), "r.csv", strings.NewReader("Asset Tag,Substation\nSG-7,PE Satu\n"))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(rows) != 1 || rows[0].FunctionalLocation != "SG-7" || rows[0].SubstationName != "PE Satu" {
		t.Fatalf("Normalize() rows = %#v", rows)
	}

	fromTOML, err := LoadColumnMap(tomlPath)
	if err != nil {
		t.Fatalf("LoadColumnMap(toml) error = %v", err)
	}
	if fromTOML[FieldSubstationName][0] != "Site" {
		t.Fatalf("toml aliases = %v", fromTOML[FieldSubstationName])
	}

	badPath := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badPath, []byte("columns:\n  colour: [\"x\"]\n"), 0o644); err != nil {
		t.Fatalf("write bad yaml: %v", err)
	}
	if _, err := LoadColumnMap(badPath); err == nil {
		t.Fatalf("LoadColumnMap() expected unknown field error")
	}
}

func TestCoerceDateExcelSerial(t *testing.T) {
	got := coerceDate("45306")
	if got == nil || got.Format(inspection.DateLayout) != "2024-01-15" {
		t.Fatalf("coerceDate(45306) = %v", got)
	}
	if coerceDate("0") != nil {
		t.Fatalf("coerceDate(0) expected nil")
	}
}

func TestCoerceFloat(t *testing.T) {
	cases := []struct {
		raw  string
		want *float64
	}{
		{raw: "12.5", want: floatValue(12.5)},
		{raw: " -3 ", want: floatValue(-3)},
		{raw: "1,200", want: floatValue(1200)},
		{raw: "1,234,567.25", want: floatValue(1234567.25)},
		{raw: "1,5"},
		{raw: "12,34"},
		{raw: "nan"},
		{raw: "NaN"},
		{raw: "inf"},
		{raw: "-Infinity"},
		{raw: "N/A"},
		{raw: ""},
		{raw: "   "},
	}

	for _, tc := range cases {
		got := coerceFloat(tc.raw)
		switch {
		case tc.want == nil && got != nil:
			t.Fatalf("coerceFloat(%q) = %v, want nil", tc.raw, *got)
		case tc.want != nil && (got == nil || *got != *tc.want):
			t.Fatalf("coerceFloat(%q) = %v, want %v", tc.raw, got, *tc.want)
		}
	}
}

func TestCoerceDateRejectsNonFiniteSerial(t *testing.T) {
	for _, raw := range []string{"nan", "inf", "-inf"} {
		if got := coerceDate(raw); got != nil {
			t.Fatalf("coerceDate(%q) = %v, want nil", raw, got)
		}
	}
}

func TestNormalizeCSVNonNumericReadingsAreNull(t *testing.T) {
	input := "Functional Location,Report Date,TEV/US In DB,Hotspot ∆T In ⁰C,Defect Description 1\n" +
		"SG-1,2024-01-15,nan,\"1,5\",Surface tracking\n" +
		"SG-2,2024-01-15,N/A,inf,Surface tracking\n"

	rows, err := NewNormalizer(nil, 0).Normalize(context.Background(), "upload.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Normalize() len = %d, want 2", len(rows))
	}
	for _, row := range rows {
		if row.TEVReading != nil || row.HotspotDeltaT != nil {
			t.Fatalf("row %s readings = %v/%v, want null", row.FunctionalLocation, row.TEVReading, row.HotspotDeltaT)
		}
		if row.Status() != inspection.StatusUnknown {
			t.Fatalf("row %s status = %q, want Unknown", row.FunctionalLocation, row.Status())
		}
	}
}

func floatValue(v float64) *float64 { return &v }
