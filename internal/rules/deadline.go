// internal/rules/deadline.go
package rules

import (
	"time"

	"github.com/skylane/fareguard/internal/types"
)

/*
 * Deadline computation.
 *
 * ComputeDeadline is the single timing primitive shared by every temporal
 * rule category; callers differ only in which reference date-time they
 * supply (reservation date, ticketing date, departure/arrival date) and in
 * the direction the period is applied.
 *
 * Three period shapes:
 *   - weekday occurrence: whole-day offset to the Nth occurrence of the
 *     target weekday at or before/after the reference
 *   - months: calendar month arithmetic with end-of-month clamping
 *     (one month before Mar 31 is the last day of February)
 *   - minutes/hours/days: fixed duration in minutes
 *
 * Time-of-day handling: when the rule files no explicit time of day, the
 * deadline lands on 23:59 for "latest" comparisons and 00:00 for "earliest"
 * comparisons, except hour/minute periods, which keep the computed time.
 * Two filed-data quirks are preserved as named constants below.
 */

// Direction applies a period before or after the reference date-time.
type Direction int

const (
	Before Direction = iota
	After
)

// TimeOfDay is minutes after midnight as filed in the catalog; zero means
// not filed.
type TimeOfDay int

const (
	// ZeroHourWindowMinutes: a filed 0-hour period is treated as a 59
	// minute window. Historical catalog behavior; downstream consumers
	// depend on the exact boundary.
	ZeroHourWindowMinutes = 59

	// EndOfDayTOD is the filed 24:00 encoding. It is normalized to 23:59
	// so a deadline never displays as midnight of the following day.
	EndOfDayTOD TimeOfDay = 1440

	lastHour   = 23
	lastMinute = 59

	minutesPerHour = 60
	minutesPerDay  = 24 * 60
	daysPerWeek    = 7
)

// filed reports whether the time of day carries a usable value.
func (t TimeOfDay) filed() bool { return t > 0 && t <= EndOfDayTOD }

// clock returns the hour and minute the time of day designates, with the
// 24:00 encoding normalized to 23:59.
func (t TimeOfDay) clock() (hour, minute int) {
	if t == EndOfDayTOD {
		return lastHour, lastMinute
	}
	return int(t) / minutesPerHour, int(t) % minutesPerHour
}

// ComputeDeadline computes the concrete deadline a period places on the
// reference date-time. forLatest selects the default time of day (23:59 vs
// 00:00) when the rule files none. Fails with types.ErrInvalidPeriod for an
// unusable period and types.ErrInvalidReference for a zero reference.
func ComputeDeadline(ref time.Time, tod TimeOfDay, p PeriodOfStay, dir Direction, forLatest bool) (time.Time, error) {
	if !p.IsValid() {
		return time.Time{}, types.ErrInvalidPeriod
	}
	if ref.IsZero() {
		return time.Time{}, types.ErrInvalidReference
	}

	switch p.Unit() {
	case UnitWeekday:
		return weekdayDeadline(ref, tod, p, dir, forLatest), nil
	case UnitMonths:
		shifted := shiftMonthsClamped(ref, p.Value(), dir)
		return atTimeOfDay(shifted, tod, forLatest), nil
	default:
		return durationDeadline(ref, tod, p, dir, forLatest), nil
	}
}

// weekdayDeadline finds the Nth occurrence of the period's weekday relative
// to the reference, as a whole-day offset. The offset is computed the same
// way for both directions, so the After result can land one day before the
// calendar weekday; downstream consumers depend on the exact boundary.
func weekdayDeadline(ref time.Time, tod TimeOfDay, p PeriodOfStay, dir Direction, forLatest bool) time.Time {
	days := int(ref.Weekday()) - int(p.Weekday())
	if days > 0 {
		days += (p.Occurrence() - 1) * daysPerWeek
	} else {
		days += p.Occurrence() * daysPerWeek
	}
	if dir == Before {
		days = -days
	}
	return atTimeOfDay(ref.AddDate(0, 0, days), tod, forLatest)
}

// durationDeadline applies a minute/hour/day period as a fixed duration.
func durationDeadline(ref time.Time, tod TimeOfDay, p PeriodOfStay, dir Direction, forLatest bool) time.Time {
	var minutes int
	switch p.Unit() {
	case UnitDays:
		minutes = p.Value() * minutesPerDay
	case UnitHours:
		if p.Value() == 0 {
			minutes = ZeroHourWindowMinutes
		} else {
			minutes = p.Value() * minutesPerHour
		}
	case UnitMinutes:
		minutes = p.Value()
	}

	if dir == Before {
		minutes = -minutes
	}
	shifted := ref.Add(time.Duration(minutes) * time.Minute)

	// Hour and minute periods keep the computed clock time unless the rule
	// files an explicit time of day.
	if !tod.filed() && (p.Unit() == UnitHours || p.Unit() == UnitMinutes) {
		return shifted
	}
	return atTimeOfDay(shifted, tod, forLatest)
}

// shiftMonthsClamped moves the reference by whole calendar months, clamping
// the day to the target month's length so the result is never rolled into
// the following month.
func shiftMonthsClamped(ref time.Time, months int, dir Direction) time.Time {
	if dir == Before {
		months = -months
	}
	year, month := ref.Year(), int(ref.Month())
	month += months
	for month < 1 {
		month += 12
		year--
	}
	for month > 12 {
		month -= 12
		year++
	}

	day := ref.Day()
	if last := endOfMonthDay(year, time.Month(month)); day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day,
		ref.Hour(), ref.Minute(), 0, 0, ref.Location())
}

// endOfMonthDay returns the last day number of the given month.
func endOfMonthDay(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// atTimeOfDay pins t's clock to the filed time of day, or to the 23:59 /
// 00:00 default when none is filed.
func atTimeOfDay(t time.Time, tod TimeOfDay, forLatest bool) time.Time {
	hour, minute := 0, 0
	if tod.filed() {
		hour, minute = tod.clock()
	} else if forLatest {
		hour, minute = lastHour, lastMinute
	}
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}

// AddPeriod is the stay-rule companion to ComputeDeadline: it moves a travel
// date forward by the period, keeping the time of day. Weekday periods land
// on the Nth future occurrence of the target weekday.
func AddPeriod(t time.Time, p PeriodOfStay) (time.Time, error) {
	if !p.IsValid() {
		return time.Time{}, types.ErrInvalidPeriod
	}
	if t.IsZero() {
		return time.Time{}, types.ErrInvalidReference
	}

	switch p.Unit() {
	case UnitMinutes:
		return t.Add(time.Duration(p.Value()) * time.Minute), nil
	case UnitHours:
		return t.Add(time.Duration(p.Value()) * time.Hour), nil
	case UnitDays:
		return t.AddDate(0, 0, p.Value()), nil
	case UnitMonths:
		return shiftMonthsClamped(t, p.Value(), After), nil
	case UnitWeekday:
		days := int(p.Weekday()) - int(t.Weekday())
		if days > 0 {
			days += (p.Occurrence() - 1) * daysPerWeek
		} else {
			days += p.Occurrence() * daysPerWeek
		}
		return t.AddDate(0, 0, days), nil
	}
	return time.Time{}, types.ErrInvalidPeriod
}

// DetermineReturnDate arbitrates between a period-derived return bound and a
// fixed filed date. With no indicator the period-derived bound wins when
// present.
func DetermineReturnDate(periodDate, ruleDate time.Time, ind types.EarlierLater) time.Time {
	switch {
	case periodDate.IsZero():
		return ruleDate
	case ruleDate.IsZero():
		return periodDate
	}
	switch ind {
	case types.ApplyEarlier:
		if ruleDate.Before(periodDate) {
			return ruleDate
		}
		return periodDate
	case types.ApplyLater:
		if ruleDate.After(periodDate) {
			return ruleDate
		}
		return periodDate
	default:
		return periodDate
	}
}

// AlignToZone expresses t in the time zone of the reference date-time, so
// ticketing times compare correctly against departure-city deadlines.
func AlignToZone(t, ref time.Time) time.Time {
	return t.In(ref.Location())
}
