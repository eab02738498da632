package normalize

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/ports"
)

const defaultHeaderScanRows = 5

var (
	errNoHeader          = errors.New("no header row with a functional location column")
	errUnsupportedFormat = errors.New("unsupported file format")
	errNoWorksheet       = errors.New("workbook has no worksheets")
)

var dateLayouts = []string{
	inspection.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
	"2/1/2006",
	"1-2-2006",
	"2-1-2006",
	"2006/01/02",
	"02.01.2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
}

// Normalizer reads .xlsx and .csv inspection reports into normalized rows.
type Normalizer struct {
	columns        ColumnMap
	headerScanRows int
}

var _ ports.Normalizer = (*Normalizer)(nil)

func NewNormalizer(columns ColumnMap, headerScanRows int) *Normalizer {
	if len(columns) == 0 {
		columns = DefaultColumnMap()
	}
	if headerScanRows <= 0 {
		headerScanRows = defaultHeaderScanRows
	}
	return &Normalizer{columns: columns, headerScanRows: headerScanRows}
}

func (n *Normalizer) Normalize(ctx context.Context, name string, r io.Reader) ([]inspection.NormalizedRow, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if r == nil {
		return nil, &inspection.ParseError{Source: name, Err: errors.New("no content")}
	}

	var (
		records [][]string
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xlsx", ".xlsm":
		records, err = readWorkbook(r)
	case ".csv":
		records, err = readCSV(r)
	default:
		err = fmt.Errorf("%w %q", errUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, &inspection.ParseError{Source: name, Err: err}
	}

	rows, skipped, err := n.rowsFromRecords(records)
	if err != nil {
		return nil, &inspection.ParseError{Source: name, Err: err}
	}

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "infrastructure.normalize")),
		"report normalized",
		slog.String("source", name),
		slog.Int("rows", len(rows)),
		slog.Int("blank_rows_skipped", skipped),
	)
	return rows, nil
}

func readWorkbook(r io.Reader) ([][]string, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = book.Close()
	}()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, errNoWorksheet
	}
	return book.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

func readCSV(r io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

func (n *Normalizer) rowsFromRecords(records [][]string) ([]inspection.NormalizedRow, int, error) {
	headerRow := -1
	var columns map[string]int
	for i := 0; i < len(records) && i < n.headerScanRows; i++ {
		candidate := n.columns.index(records[i])
		if _, ok := candidate[FieldFunctionalLocation]; ok {
			headerRow = i
			columns = candidate
			break
		}
	}
	if headerRow < 0 {
		return nil, 0, errNoHeader
	}

	rows := make([]inspection.NormalizedRow, 0, len(records)-headerRow-1)
	skipped := 0
	for _, record := range records[headerRow+1:] {
		if blankRecord(record) {
			skipped++
			continue
		}
		cell := func(field string) string {
			col, ok := columns[field]
			if !ok || col >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[col])
		}

		rows = append(rows, inspection.NormalizedRow{
			FunctionalLocation: cell(FieldFunctionalLocation),
			ReportDate:         coerceDate(cell(FieldReportDate)),
			DefectFrom:         cell(FieldDefectFrom),
			TEVReading:         coerceFloat(cell(FieldTEVReading)),
			HotspotDeltaT:      coerceFloat(cell(FieldHotspotDeltaT)),
			SwitchgearType:     cell(FieldSwitchgearType),
			SwitchgearBrand:    cell(FieldSwitchgearBrand),
			SubstationName:     cell(FieldSubstationName),
			DefectDescription1: cell(FieldDefectDescription1),
			DefectDescription2: cell(FieldDefectDescription2),
			DefectOwner:        cell(FieldDefectOwner),
			Latitude:           coerceFloat(cell(FieldLatitude)),
			Longitude:          coerceFloat(cell(FieldLongitude)),
		})
	}
	return rows, skipped, nil
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// groupedNumber matches values with comma thousand separators like 1,234.5.
var groupedNumber = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// coerceFloat returns nil for blanks, non-finite values and anything that is
// not a number. A comma is only accepted as a thousand separator, so a
// decimal comma such as "1,5" coerces to nil.
func coerceFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.Contains(raw, ",") {
		if !groupedNumber.MatchString(raw) {
			return nil
		}
		raw = strings.ReplaceAll(raw, ",", "")
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	return &value
}

// coerceDate accepts Excel serial numbers and common textual layouts.
// Ambiguous numeric dates are read month first.
func coerceDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if !(serial > 0) || math.IsInf(serial, 0) {
			return nil
		}
		parsed, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return nil
		}
		day := inspection.DateOf(parsed)
		return &day
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			day := inspection.DateOf(parsed)
			return &day
		}
	}
	return nil
}
