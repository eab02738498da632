package inspection

import "strings"

// Status is the severity category stamped on every stored record.
type Status string

const (
	StatusCritical    Status = "Critical"
	StatusMajor       Status = "Major"
	StatusNonCritical Status = "Non-Critical"
	StatusUnknown     Status = "Unknown"
)

const (
	criticalThreshold = 10.0
	majorThreshold    = 5.0
)

// ClassifyStatus grades the TEV reading first and only falls back to the
// hotspot delta when the TEV reading is absent or not positive.
func ClassifyStatus(tev *float64, hotspot *float64) Status {
	if status, ok := gradeReading(tev); ok {
		return status
	}
	if status, ok := gradeReading(hotspot); ok {
		return status
	}
	return StatusUnknown
}

func gradeReading(reading *float64) (Status, bool) {
	reading = FiniteReading(reading)
	if reading == nil {
		return "", false
	}
	value := *reading
	switch {
	case value >= criticalThreshold:
		return StatusCritical, true
	case value >= majorThreshold:
		return StatusMajor, true
	case value > 0:
		return StatusNonCritical, true
	default:
		return "", false
	}
}

// ParseStatus matches status labels case-insensitively.
func ParseStatus(raw string) (Status, bool) {
	raw = strings.TrimSpace(raw)
	for _, status := range AllStatuses() {
		if strings.EqualFold(raw, string(status)) {
			return status, true
		}
	}
	return "", false
}

func AllStatuses() []Status {
	return []Status{StatusCritical, StatusMajor, StatusNonCritical, StatusUnknown}
}
