package inspection

import (
	"math"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		name    string
		tev     *float64
		hotspot *float64
		want    Status
	}{
		{name: "tev critical", tev: ptr(12), want: StatusCritical},
		{name: "tev critical boundary", tev: ptr(10), want: StatusCritical},
		{name: "tev major", tev: ptr(7), want: StatusMajor},
		{name: "tev major boundary", tev: ptr(5), want: StatusMajor},
		{name: "tev non critical", tev: ptr(2), want: StatusNonCritical},
		{name: "zero tev and null hotspot", tev: ptr(0), want: StatusUnknown},
		{name: "null tev falls back to hotspot", hotspot: ptr(15), want: StatusCritical},
		{name: "zero tev falls back to hotspot", tev: ptr(0), hotspot: ptr(6), want: StatusMajor},
		{name: "negative readings", tev: ptr(-3), hotspot: ptr(-1), want: StatusUnknown},
		{name: "tev wins over hotspot", tev: ptr(1), hotspot: ptr(20), want: StatusNonCritical},
		{name: "both absent", want: StatusUnknown},
		{name: "nan tev falls back to hotspot", tev: ptr(math.NaN()), hotspot: ptr(6), want: StatusMajor},
		{name: "infinite tev is ignored", tev: ptr(math.Inf(1)), want: StatusUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyStatus(tc.tev, tc.hotspot); got != tc.want {
				t.Fatalf("ClassifyStatus() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	if got, ok := ParseStatus("Non-Critical"); !ok || got != StatusNonCritical {
		t.Fatalf("ParseStatus() = %q, %v", got, ok)
	}
	if got, ok := ParseStatus(" critical "); !ok || got != StatusCritical {
		t.Fatalf("ParseStatus(lowercase) = %q, %v", got, ok)
	}
	if _, ok := ParseStatus("minor"); ok {
		t.Fatalf("ParseStatus() expected unknown label to fail")
	}
}
