package rules

import (
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/skylane/fareguard/internal/types"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func mustPeriod(t *testing.T, period, unit string) PeriodOfStay {
	t.Helper()
	p, err := ParsePeriod(period, unit)
	if err != nil {
		t.Fatalf("ParsePeriod(%q, %q) error: %v", period, unit, err)
	}
	return p
}

func TestComputeDeadline_WeekdayOccurrence(t *testing.T) {
	// Monday June 10th; the 2nd Friday at or before is May 31st.
	ref := date(2024, time.June, 10, 10, 0)
	p := mustPeriod(t, "FRI", "2")

	got, err := ComputeDeadline(ref, 0, p, Before, true)
	if err != nil {
		t.Fatalf("ComputeDeadline error: %v", err)
	}
	want := date(2024, time.May, 31, 23, 59)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestComputeDeadline_WeekdayAfter(t *testing.T) {
	// The occurrence offset is computed the same way in both directions, so
	// counting forward from Monday the 10th a 1st-FRI deadline lands on
	// Thursday the 13th, one day short of the calendar Friday.
	ref := date(2024, time.June, 10, 10, 0)
	p := mustPeriod(t, "FRI", "1")

	got, err := ComputeDeadline(ref, 0, p, After, true)
	if err != nil {
		t.Fatalf("ComputeDeadline error: %v", err)
	}
	want := date(2024, time.June, 13, 23, 59)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestComputeDeadline_MonthClamping(t *testing.T) {
	tests := []struct {
		name string
		ref  time.Time
		want time.Time
	}{
		{
			name: "leap february",
			ref:  date(2024, time.March, 31, 8, 0),
			want: date(2024, time.February, 29, 23, 59),
		},
		{
			name: "non-leap february",
			ref:  date(2023, time.March, 31, 8, 0),
			want: date(2023, time.February, 28, 23, 59),
		},
		{
			name: "no clamping needed",
			ref:  date(2024, time.March, 15, 8, 0),
			want: date(2024, time.February, 15, 23, 59),
		},
	}

	p := mustPeriod(t, "001", "M")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeDeadline(tt.ref, 0, p, Before, true)
			if err != nil {
				t.Fatalf("ComputeDeadline error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeDeadline_MonthAcrossYearBoundary(t *testing.T) {
	p := mustPeriod(t, "002", "M")
	got, err := ComputeDeadline(date(2024, time.January, 15, 8, 0), 0, p, Before, true)
	if err != nil {
		t.Fatalf("ComputeDeadline error: %v", err)
	}
	want := date(2023, time.November, 15, 23, 59)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestComputeDeadline_ZeroHourWindow(t *testing.T) {
	p := mustPeriod(t, "000", "H")
	ref := date(2024, time.May, 1, 12, 0)

	got, err := ComputeDeadline(ref, 0, p, Before, true)
	if err != nil {
		t.Fatalf("ComputeDeadline error: %v", err)
	}
	want := date(2024, time.May, 1, 11, 1)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestComputeDeadline_HourPeriodKeepsComputedTime(t *testing.T) {
	p := mustPeriod(t, "024", "H")
	ref := date(2024, time.April, 15, 9, 30)

	got, err := ComputeDeadline(ref, 0, p, After, true)
	if err != nil {
		t.Fatalf("ComputeDeadline error: %v", err)
	}
	want := date(2024, time.April, 16, 9, 30)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestComputeDeadline_TimeOfDay(t *testing.T) {
	p := mustPeriod(t, "007", "D")
	ref := date(2024, time.June, 10, 10, 0)

	tests := []struct {
		name      string
		tod       TimeOfDay
		forLatest bool
		wantHH    int
		wantMM    int
	}{
		{"explicit noon", 720, true, 12, 0},
		{"end of day encoding normalizes", 1440, true, 23, 59},
		{"latest default", 0, true, 23, 59},
		{"earliest default", 0, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeDeadline(ref, tt.tod, p, Before, tt.forLatest)
			if err != nil {
				t.Fatalf("ComputeDeadline error: %v", err)
			}
			if got.Hour() != tt.wantHH || got.Minute() != tt.wantMM {
				t.Errorf("got %02d:%02d, want %02d:%02d",
					got.Hour(), got.Minute(), tt.wantHH, tt.wantMM)
			}
			if got.Day() != 3 || got.Month() != time.June {
				t.Errorf("deadline moved off June 3rd: %v", got)
			}
		})
	}
}

func TestComputeDeadline_InvalidInputs(t *testing.T) {
	valid := mustPeriod(t, "007", "D")
	invalid, _ := ParsePeriod("bad", "D")

	if _, err := ComputeDeadline(date(2024, time.June, 10, 0, 0), 0, invalid, Before, true); !errors.Is(err, types.ErrInvalidPeriod) {
		t.Errorf("invalid period err = %v, want ErrInvalidPeriod", err)
	}
	if _, err := ComputeDeadline(time.Time{}, 0, valid, Before, true); !errors.Is(err, types.ErrInvalidReference) {
		t.Errorf("zero reference err = %v, want ErrInvalidReference", err)
	}
}

func TestAddPeriod(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		period string
		unit   string
		want   time.Time
	}{
		{
			name:  "days keep time",
			start: date(2024, time.June, 1, 14, 30),
			period: "003", unit: "D",
			want: date(2024, time.June, 4, 14, 30),
		},
		{
			name:  "months clamp to shorter month",
			start: date(2024, time.March, 31, 9, 0),
			period: "011", unit: "M",
			want: date(2025, time.February, 28, 9, 0),
		},
		{
			name:  "hours",
			start: date(2024, time.June, 1, 22, 0),
			period: "006", unit: "H",
			want: date(2024, time.June, 2, 4, 0),
		},
		{
			name:  "first future saturday",
			start: date(2024, time.June, 10, 8, 0), // Monday
			period: "SAT", unit: "1",
			want: date(2024, time.June, 15, 8, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustPeriod(t, tt.period, tt.unit)
			got, err := AddPeriod(tt.start, p)
			if err != nil {
				t.Fatalf("AddPeriod error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetermineReturnDate(t *testing.T) {
	a := date(2024, time.June, 1, 0, 0)
	b := date(2024, time.June, 5, 0, 0)

	tests := []struct {
		name       string
		periodDate time.Time
		ruleDate   time.Time
		ind        types.EarlierLater
		want       time.Time
	}{
		{"earlier indicator", b, a, types.ApplyEarlier, a},
		{"later indicator", a, b, types.ApplyLater, b},
		{"no indicator keeps period date", a, b, types.EarlierLaterNone, a},
		{"zero period date falls back", time.Time{}, b, types.ApplyEarlier, b},
		{"zero rule date falls back", a, time.Time{}, types.ApplyLater, a},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineReturnDate(tt.periodDate, tt.ruleDate, tt.ind); !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeDeadline_DayPeriodProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	base := date(2024, time.January, 1, 12, 0)

	properties.Property("day deadlines shift by exactly the period", prop.ForAll(
		func(days int, refOffset int) bool {
			ref := base.AddDate(0, 0, refOffset)
			p, err := ParsePeriod(paddedPeriod(days), "D")
			if err != nil {
				return false
			}
			before, err := ComputeDeadline(ref, 0, p, Before, true)
			if err != nil {
				return false
			}
			return before.AddDate(0, 0, days).Truncate(24*time.Hour).
				Equal(ref.Truncate(24 * time.Hour))
		},
		gen.IntRange(0, 999),
		gen.IntRange(0, 730),
	))

	properties.Property("before never exceeds after", prop.ForAll(
		func(days int, refOffset int) bool {
			ref := base.AddDate(0, 0, refOffset)
			p, err := ParsePeriod(paddedPeriod(days), "D")
			if err != nil {
				return false
			}
			before, err1 := ComputeDeadline(ref, 0, p, Before, true)
			after, err2 := ComputeDeadline(ref, 0, p, After, true)
			return err1 == nil && err2 == nil && !before.After(after)
		},
		gen.IntRange(0, 999),
		gen.IntRange(0, 730),
	))

	properties.TestingRun(t)
}
