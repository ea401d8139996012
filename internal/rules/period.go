// internal/rules/period.go
package rules

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/skylane/fareguard/internal/types"
)

/*
 * Period-of-stay parsing.
 *
 * A catalog period is either a duration or a weekday occurrence:
 *
 *   period "000".."999" + unit "N"|"H"|"D"|"M"   (minutes/hours/days/months)
 *   period "SUN".."SAT" + unit "1".."52"          (Nth occurrence of weekday)
 *
 * The two encodings are mutually exclusive: a weekday period with a letter
 * unit, or a numeric period with an occurrence unit, is invalid. Parsing is
 * total and pure; validity is classified, never thrown, so a malformed
 * catalog value degrades to an ignored sub-restriction downstream.
 */

// PeriodUnit classifies the unit of a period of stay.
type PeriodUnit int

const (
	UnitInvalid PeriodUnit = iota
	UnitMinutes
	UnitHours
	UnitDays
	UnitMonths
	UnitWeekday
)

// Catalog unit letters.
const (
	unitLetterMinutes = "N"
	unitLetterHours   = "H"
	unitLetterDays    = "D"
	unitLetterMonths  = "M"
)

var weekdayAbbrev = [7]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

// One-year sentinels: a 365-day or 12-month maximum stay encodes "no
// maximum stay restriction".
const (
	oneYearDays   = 365
	oneYearMonths = 12
)

const maxWeekdayOccurrence = 52

// PeriodOfStay is a parsed period/unit pair. The zero value is invalid.
type PeriodOfStay struct {
	value      int
	unit       PeriodUnit
	weekday    time.Weekday
	occurrence int
	valid      bool
}

// ParsePeriod parses a raw catalog period/unit pair. The returned error is
// types.ErrInvalidPeriod for any malformed combination; the PeriodOfStay is
// still returned (invalid) so callers can carry it into diagnostics.
func ParsePeriod(period, unit string) (PeriodOfStay, error) {
	p := PeriodOfStay{unit: UnitInvalid}

	period = strings.TrimSpace(period)
	unit = strings.TrimSpace(unit)
	if len(period) != 3 || unit == "" {
		return p, types.ErrInvalidPeriod
	}

	if wd, ok := parseWeekday(period); ok {
		occ, err := strconv.Atoi(unit)
		if err != nil || occ < 1 || occ > maxWeekdayOccurrence {
			return p, types.ErrInvalidPeriod
		}
		p.unit = UnitWeekday
		p.weekday = wd
		p.occurrence = occ
		p.valid = true
		return p, nil
	}

	value, err := strconv.Atoi(period)
	if err != nil || value < 0 {
		return p, types.ErrInvalidPeriod
	}

	switch unit {
	case unitLetterMinutes:
		p.unit = UnitMinutes
	case unitLetterHours:
		p.unit = UnitHours
	case unitLetterDays:
		p.unit = UnitDays
	case unitLetterMonths:
		p.unit = UnitMonths
	default:
		return p, types.ErrInvalidPeriod
	}
	p.value = value
	p.valid = true
	return p, nil
}

func parseWeekday(s string) (time.Weekday, bool) {
	for n, abbrev := range weekdayAbbrev {
		if s == abbrev {
			return time.Weekday(n), true
		}
	}
	return 0, false
}

// IsValid reports whether the period parsed to a usable specification.
func (p PeriodOfStay) IsValid() bool { return p.valid }

// IsDayOfWeek reports whether the period is a weekday-occurrence specifier.
func (p PeriodOfStay) IsDayOfWeek() bool { return p.unit == UnitWeekday }

// Unit returns the period's unit classification.
func (p PeriodOfStay) Unit() PeriodUnit { return p.unit }

// Value returns the duration count for duration periods; zero for weekday
// periods.
func (p PeriodOfStay) Value() int { return p.value }

// Weekday returns the target weekday for weekday periods.
func (p PeriodOfStay) Weekday() time.Weekday { return p.weekday }

// Occurrence returns the occurrence count for weekday periods.
func (p PeriodOfStay) Occurrence() int { return p.occurrence }

// IsOneYear recognizes the 365-day/12-month encoding used to represent "no
// maximum stay restriction".
func (p PeriodOfStay) IsOneYear() bool {
	return (p.unit == UnitDays && p.value == oneYearDays) ||
		(p.unit == UnitMonths && p.value == oneYearMonths)
}

// PeriodText returns the canonical 3-character period encoding. Re-parsing
// (PeriodText, UnitText) yields an equal value for any valid period.
func (p PeriodOfStay) PeriodText() string {
	if !p.valid {
		return "***"
	}
	if p.unit == UnitWeekday {
		return weekdayAbbrev[p.weekday]
	}
	return fmt.Sprintf("%03d", p.value)
}

// UnitText returns the canonical unit encoding.
func (p PeriodOfStay) UnitText() string {
	switch p.unit {
	case UnitMinutes:
		return unitLetterMinutes
	case UnitHours:
		return unitLetterHours
	case UnitDays:
		return unitLetterDays
	case UnitMonths:
		return unitLetterMonths
	case UnitWeekday:
		return fmt.Sprintf("%02d", p.occurrence)
	default:
		return "*"
	}
}

// String returns a human-readable form for diagnostics, e.g. "007 DAYS" or
// "02ND FRI".
func (p PeriodOfStay) String() string {
	if !p.valid {
		return "INVALID PERIOD"
	}
	if p.unit == UnitWeekday {
		return fmt.Sprintf("%02d%s %s", p.occurrence, ordinalSuffix(p.occurrence), weekdayAbbrev[p.weekday])
	}
	return fmt.Sprintf("%03d %s", p.value, unitName(p.unit))
}

func unitName(u PeriodUnit) string {
	switch u {
	case UnitMinutes:
		return "MINUTES"
	case UnitHours:
		return "HOURS"
	case UnitDays:
		return "DAYS"
	case UnitMonths:
		return "MONTHS"
	default:
		return "UNKNOWN"
	}
}

func ordinalSuffix(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "TH"
	}
	switch n % 10 {
	case 1:
		return "ST"
	case 2:
		return "ND"
	case 3:
		return "RD"
	default:
		return "TH"
	}
}
