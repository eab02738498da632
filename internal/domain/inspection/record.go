package inspection

import (
	"math"
	"strings"
	"time"
)

// DateLayout is the calendar-day layout used for report dates everywhere.
const DateLayout = "2006-01-02"

// NormalizedRow is one inspection row after column mapping and coercion.
type NormalizedRow struct {
	FunctionalLocation string     `json:"functional_location" jsonschema:"required,minLength=1"`
	ReportDate         *time.Time `json:"report_date,omitempty" jsonschema:"format=date-time"`
	DefectFrom         string     `json:"defect_from"`
	TEVReading         *float64   `json:"tev_us_in_db,omitempty"`
	HotspotDeltaT      *float64   `json:"hotspot_delta_t_in_c,omitempty"`
	SwitchgearType     string     `json:"switchgear_type"`
	SwitchgearBrand    string     `json:"switchgear_brand"`
	SubstationName     string     `json:"substation_name"`
	DefectDescription1 string     `json:"defect_description_1"`
	DefectDescription2 string     `json:"defect_description_2"`
	DefectOwner        string     `json:"defect_owner"`
	Latitude           *float64   `json:"latitude,omitempty"`
	Longitude          *float64   `json:"longitude,omitempty"`
}

// Status derives the severity from the row readings.
func (r NormalizedRow) Status() Status {
	return ClassifyStatus(r.TEVReading, r.HotspotDeltaT)
}

// Location returns the trimmed functional location used as the asset key.
func (r NormalizedRow) Location() string {
	return strings.TrimSpace(r.FunctionalLocation)
}

// SameContent reports whether both rows carry identical inspection content.
// Functional location and coordinates are not part of the comparison.
func (r NormalizedRow) SameContent(other NormalizedRow) bool {
	return sameDate(r.ReportDate, other.ReportDate) &&
		r.DefectFrom == other.DefectFrom &&
		sameReading(r.TEVReading, other.TEVReading) &&
		sameReading(r.HotspotDeltaT, other.HotspotDeltaT) &&
		r.SwitchgearType == other.SwitchgearType &&
		r.SwitchgearBrand == other.SwitchgearBrand &&
		r.SubstationName == other.SubstationName &&
		r.DefectDescription1 == other.DefectDescription1 &&
		r.DefectDescription2 == other.DefectDescription2 &&
		r.DefectOwner == other.DefectOwner
}

// SameFinding reports whether both rows describe the same inspection finding,
// keyed by report date and the primary defect description.
func (r NormalizedRow) SameFinding(other NormalizedRow) bool {
	return sameDate(r.ReportDate, other.ReportDate) &&
		r.DefectDescription1 == other.DefectDescription1
}

// HasCoordinates is true when both latitude and longitude are present and in range.
func (r NormalizedRow) HasCoordinates() bool {
	if r.Latitude == nil || r.Longitude == nil {
		return false
	}
	return ValidCoordinates(*r.Latitude, *r.Longitude)
}

func ValidCoordinates(lat float64, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// FormatDate renders a nullable report date as YYYY-MM-DD or "".
func FormatDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format(DateLayout)
}

// ParseDate is the inverse of FormatDate; an empty string yields nil.
func ParseDate(raw string) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(DateLayout, trimmed, time.UTC)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDate(a *time.Time, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Format(DateLayout) == b.Format(DateLayout)
}

// FiniteReading returns nil for a missing, NaN or infinite value.
func FiniteReading(value *float64) *float64 {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return nil
	}
	return value
}

// WithFiniteValues drops NaN and infinite readings and coordinates so they
// are stored and compared as absent.
func (r NormalizedRow) WithFiniteValues() NormalizedRow {
	r.TEVReading = FiniteReading(r.TEVReading)
	r.HotspotDeltaT = FiniteReading(r.HotspotDeltaT)
	r.Latitude = FiniteReading(r.Latitude)
	r.Longitude = FiniteReading(r.Longitude)
	return r
}

func sameReading(a *float64, b *float64) bool {
	a, b = FiniteReading(a), FiniteReading(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
