package normalize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/mkevin1491/fyp/internal/errs"
)

// Field names of a normalized row, as used in column map files.
const (
	FieldFunctionalLocation = "functional_location"
	FieldReportDate         = "report_date"
	FieldDefectFrom         = "defect_from"
	FieldTEVReading         = "tev_us_in_db"
	FieldHotspotDeltaT      = "hotspot_delta_t_in_c"
	FieldSwitchgearType     = "switchgear_type"
	FieldSwitchgearBrand    = "switchgear_brand"
	FieldSubstationName     = "substation_name"
	FieldDefectDescription1 = "defect_description_1"
	FieldDefectDescription2 = "defect_description_2"
	FieldDefectOwner        = "defect_owner"
	FieldLatitude           = "latitude"
	FieldLongitude          = "longitude"
)

// ColumnMap maps each field to the header labels that may carry it.
type ColumnMap map[string][]string

// DefaultColumnMap returns the labels used by the inspection report template.
func DefaultColumnMap() ColumnMap {
	return ColumnMap{
		FieldFunctionalLocation: {"Functional Location", "Functional Loc"},
		FieldReportDate:         {"Report Date", "Date"},
		FieldDefectFrom:         {"Defect From"},
		FieldTEVReading:         {"TEV/US In DB", "TEV/US (dB)", "TEV"},
		FieldHotspotDeltaT:      {"Hotspot ∆T In ⁰C", "Hotspot ΔT In °C", "Hotspot ∆T In °C", "Hotspot Delta T"},
		FieldSwitchgearType:     {"Switchgear Type"},
		FieldSwitchgearBrand:    {"Switchgear Brand"},
		FieldSubstationName:     {"Substation Name", "Substation"},
		FieldDefectDescription1: {"Defect Description 1"},
		FieldDefectDescription2: {"Defect Description 2"},
		FieldDefectOwner:        {"Defect Owner"},
		FieldLatitude:           {"latitude", "lat"},
		FieldLongitude:          {"longitude", "lon", "lng"},
	}
}

type columnMapFile struct {
	Columns map[string][]string `yaml:"columns" toml:"columns"`
}

// LoadColumnMap reads extra header aliases from a YAML or TOML file and
// merges them in front of the defaults.
func LoadColumnMap(path string) (ColumnMap, error) {
	columns := DefaultColumnMap()
	path = strings.TrimSpace(path)
	if path == "" {
		return columns, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrapf(err, "read column map %q", path)
	}

	var file columnMapFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, errs.Wrapf(err, "decode yaml column map %q", path)
		}
	case ".toml":
		if err := toml.Unmarshal(raw, &file); err != nil {
			return nil, errs.Wrapf(err, "decode toml column map %q", path)
		}
	default:
		return nil, fmt.Errorf("unsupported column map format %q", filepath.Ext(path))
	}

	for field, labels := range file.Columns {
		field = strings.ToLower(strings.TrimSpace(field))
		if _, ok := columns[field]; !ok {
			return nil, fmt.Errorf("column map %q: unknown field %q", path, field)
		}
		columns[field] = append(append([]string{}, labels...), columns[field]...)
	}
	return columns, nil
}

// headerKey folds a label for matching: lower case, single spaces, and the
// common look-alike symbols unified.
func headerKey(label string) string {
	replacer := strings.NewReplacer(
		"\ufeff", "",
		"Δ", "∆",
		"δ", "∆",
		"°", "⁰",
		"º", "⁰",
	)
	folded := strings.ToLower(replacer.Replace(label))
	return strings.Join(strings.Fields(folded), " ")
}

// index resolves which column carries each field for one header row.
func (m ColumnMap) index(header []string) map[string]int {
	byLabel := make(map[string]int, len(header))
	for i, cell := range header {
		key := headerKey(cell)
		if key == "" {
			continue
		}
		if _, exists := byLabel[key]; !exists {
			byLabel[key] = i
		}
	}

	out := make(map[string]int, len(m))
	for field, labels := range m {
		for _, label := range labels {
			if col, ok := byLabel[headerKey(label)]; ok {
				out[field] = col
				break
			}
		}
	}
	return out
}
