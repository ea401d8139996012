package rules

import (
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/skylane/fareguard/internal/types"
)

func TestParsePeriod_Durations(t *testing.T) {
	tests := []struct {
		name   string
		period string
		unit   string
		want   PeriodUnit
		value  int
	}{
		{"minutes", "090", "N", UnitMinutes, 90},
		{"hours", "024", "H", UnitHours, 24},
		{"zero hours", "000", "H", UnitHours, 0},
		{"days", "007", "D", UnitDays, 7},
		{"months", "003", "M", UnitMonths, 3},
		{"one year days", "365", "D", UnitDays, 365},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePeriod(tt.period, tt.unit)
			if err != nil {
				t.Fatalf("ParsePeriod(%q, %q) error: %v", tt.period, tt.unit, err)
			}
			if p.Unit() != tt.want || p.Value() != tt.value {
				t.Errorf("got unit=%v value=%d, want unit=%v value=%d",
					p.Unit(), p.Value(), tt.want, tt.value)
			}
		})
	}
}

func TestParsePeriod_Weekdays(t *testing.T) {
	tests := []struct {
		period string
		unit   string
		wd     time.Weekday
		occ    int
	}{
		{"FRI", "2", time.Friday, 2},
		{"SUN", "1", time.Sunday, 1},
		{"MON", "52", time.Monday, 52},
	}

	for _, tt := range tests {
		t.Run(tt.period+"/"+tt.unit, func(t *testing.T) {
			p, err := ParsePeriod(tt.period, tt.unit)
			if err != nil {
				t.Fatalf("ParsePeriod(%q, %q) error: %v", tt.period, tt.unit, err)
			}
			if !p.IsDayOfWeek() || p.Weekday() != tt.wd || p.Occurrence() != tt.occ {
				t.Errorf("got weekday=%v occ=%d, want weekday=%v occ=%d",
					p.Weekday(), p.Occurrence(), tt.wd, tt.occ)
			}
		})
	}
}

func TestParsePeriod_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		period string
		unit   string
	}{
		{"empty", "", ""},
		{"short period", "07", "D"},
		{"unknown unit letter", "007", "X"},
		{"weekday with letter unit", "FRI", "D"},
		{"numeric with occurrence unit", "007", "2"},
		{"occurrence zero", "FRI", "0"},
		{"occurrence too large", "FRI", "53"},
		{"garbage period", "AB1", "D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePeriod(tt.period, tt.unit)
			if !errors.Is(err, types.ErrInvalidPeriod) {
				t.Errorf("ParsePeriod(%q, %q) err = %v, want ErrInvalidPeriod",
					tt.period, tt.unit, err)
			}
			if p.IsValid() {
				t.Error("invalid parse returned a valid period")
			}
		})
	}
}

func TestPeriodOfStay_IsOneYear(t *testing.T) {
	for _, tt := range []struct {
		period, unit string
		oneYear      bool
	}{
		{"365", "D", true},
		{"012", "M", true},
		{"364", "D", false},
		{"011", "M", false},
		{"365", "H", false},
	} {
		p, err := ParsePeriod(tt.period, tt.unit)
		if err != nil {
			t.Fatalf("ParsePeriod(%q, %q) error: %v", tt.period, tt.unit, err)
		}
		if p.IsOneYear() != tt.oneYear {
			t.Errorf("%q/%q IsOneYear() = %v, want %v", tt.period, tt.unit, p.IsOneYear(), tt.oneYear)
		}
	}
}

func TestPeriodOfStay_String(t *testing.T) {
	p, _ := ParsePeriod("007", "D")
	if got := p.String(); got != "007 DAYS" {
		t.Errorf("String() = %q, want %q", got, "007 DAYS")
	}
	p, _ = ParsePeriod("FRI", "2")
	if got := p.String(); got != "02ND FRI" {
		t.Errorf("String() = %q, want %q", got, "02ND FRI")
	}
}

func TestParsePeriod_TextRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("duration periods survive the text round trip", prop.ForAll(
		func(value int, unitIdx int) bool {
			unit := []string{"N", "H", "D", "M"}[unitIdx]
			p, err := ParsePeriod(paddedPeriod(value), unit)
			if err != nil {
				return false
			}
			q, err := ParsePeriod(p.PeriodText(), p.UnitText())
			return err == nil && q == p
		},
		gen.IntRange(0, 999),
		gen.IntRange(0, 3),
	))

	properties.Property("weekday periods survive the text round trip", prop.ForAll(
		func(wdIdx int, occ int) bool {
			p, err := ParsePeriod(weekdayAbbrev[wdIdx], paddedOccurrence(occ))
			if err != nil {
				return false
			}
			q, err := ParsePeriod(p.PeriodText(), p.UnitText())
			return err == nil && q == p
		},
		gen.IntRange(0, 6),
		gen.IntRange(1, 52),
	))

	properties.TestingRun(t)
}

func paddedPeriod(value int) string {
	return fmt.Sprintf("%03d", value)
}

func paddedOccurrence(occ int) string {
	return strconv.Itoa(occ)
}
