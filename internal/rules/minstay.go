// internal/rules/minstay.go
package rules

import (
	"errors"
	"strconv"
	"time"

	"github.com/skylane/fareguard/internal/types"
)

/*
 * Minimum-stay validation (category 6).
 *
 * The stay window opens at departure from the point the From geo reference
 * selects (default: the pricing unit origin) and return travel may not begin
 * before window open + period, arbitrated against an optional fixed date.
 *
 * Fare-component phase can only settle the check when the component itself
 * contains candidate return departures and the rule's scope stays inside
 * the component; inbound components, one-way fares, undated opens and
 * pricing-unit-scoped geo references all defer to SoftPass.
 */

// noMinimumStay is the filed period meaning the record carries no minimum
// stay requirement.
const noMinimumStay = "000"

// stayBound pins a computed stay boundary to its effective time of day.
// Hour and minute periods keep the computed clock time unless the rule
// files an explicit time.
func stayBound(d time.Time, tod TimeOfDay, p PeriodOfStay, forLatest bool) time.Time {
	if p.IsValid() && (p.Unit() == UnitHours || p.Unit() == UnitMinutes) && !tod.filed() {
		return d
	}
	return atTimeOfDay(d, tod, forLatest)
}

// dowPermitted checks a departure weekday against the filed digit set,
// 1 (Monday) through 7 (Sunday).
func dowPermitted(filed string, wd time.Weekday) bool {
	digit := strconv.Itoa((int(wd)+6)%7 + 1)
	for i := 0; i < len(filed); i++ {
		if string(filed[i]) == digit {
			return true
		}
	}
	return false
}

func (v *Validator) validateMinStayFC(r *types.MinStayRule, itin *types.Itinerary, fc *types.FareComponent) Result {
	if r.MinStay == noMinimumStay {
		v.diag.Printf("MIN STAY: NO MINIMUM STAY REQUIRED - PASS\n")
		return verdictResult(Pass)
	}

	front := fc.First()
	if front == nil {
		return verdictResult(Fail)
	}
	if fc.Direction != types.DirectionOutbound || fc.OneWay {
		// Return travel is not visible from this component.
		return softResult(PendingStay)
	}
	if front.OpenWithoutDate() {
		return softResult(PendingStay)
	}

	p, perr := ParsePeriod(r.MinStay, r.MinStayUnit)
	if perr != nil && r.MinStayDate.IsZero() {
		v.diag.Printf("MIN STAY: UNUSABLE PERIOD %q/%q - SKIP\n", r.MinStay, r.MinStayUnit)
		return verdictResult(Skip)
	}

	if r.OriginDOW != "" {
		if len(fc.Segments) > 1 {
			// The rule's origin may be any of the component's departures.
			return softResult(PendingStay)
		}
		if !dowPermitted(r.OriginDOW, front.Departure.Weekday()) {
			v.diag.Printf("MIN STAY: OUTBOUND DAY OF WEEK NOT IN RESTRICTED SET - SKIP\n")
			return verdictResult(Skip)
		}
	}

	puScope := false
	if r.GeoTo != 0 {
		entry, err := v.geo.GeoTableEntry(r.GeoTo)
		if err != nil {
			v.diag.Printf("MIN STAY: GEO %d UNRESOLVABLE - FAIL\n", r.GeoTo)
			return verdictResult(Fail)
		}
		if entry.Scope == TSIScopeJourney || entry.Scope == TSIScopeSubJourney {
			puScope = true
		}
	}

	earliest, res, ok := v.earliestReturn(front.Departure, p, perr, r)
	if !ok {
		return res
	}

	// Scan departures after the window opens; within the component these
	// are the only candidate return points.
	var passed, failed int
	for _, seg := range fc.Segments[1:] {
		if !seg.IsAir() || seg.OpenWithoutDate() {
			continue
		}
		if seg.Departure.Before(earliest) {
			failed++
		} else {
			passed++
		}
	}

	switch {
	case passed == 0 && failed == 0:
		// The return lies outside this component.
		return softResult(PendingStay)
	case failed == 0:
		if puScope {
			// The To reference points at pricing-unit structure; the real
			// return point may differ from what this component shows.
			return softResult(PendingStay)
		}
		return verdictResult(Pass)
	case passed == 0:
		if puScope {
			return softResult(PendingStay)
		}
		v.diag.Printf("MIN STAY: RETURN BEFORE EARLIEST PERMITTED %s - FAIL\n",
			earliest.Format(time.RFC3339))
		return verdictResult(Fail)
	default:
		return softResult(PendingStay)
	}
}

func (v *Validator) validateMinStayPU(r *types.MinStayRule, itin *types.Itinerary,
	pu *types.PricingUnit, fu *types.FareUsage) Result {

	if r.MinStay == noMinimumStay {
		v.diag.Printf("MIN STAY: NO MINIMUM STAY REQUIRED - PASS\n")
		return verdictResult(Pass)
	}
	if pu.Kind == types.PricingUnitOneWay {
		// No return travel to hold back.
		return verdictResult(Pass)
	}

	p, perr := ParsePeriod(r.MinStay, r.MinStayUnit)
	if perr != nil && r.MinStayDate.IsZero() {
		v.diag.Printf("MIN STAY: UNUSABLE PERIOD %q/%q - SKIP\n", r.MinStay, r.MinStayUnit)
		return verdictResult(Skip)
	}

	fromDT, res, ok := v.stayFromDate(r.GeoFrom, itin, pu, fu, "MIN STAY")
	if !ok {
		return res
	}
	if r.OriginDOW != "" && !dowPermitted(r.OriginDOW, fromDT.Weekday()) {
		v.diag.Printf("MIN STAY: OUTBOUND DAY OF WEEK NOT IN RESTRICTED SET - SKIP\n")
		return verdictResult(Skip)
	}

	toSeg, toDT, res, ok := v.stayToDate(r.GeoTo, itin, pu, fu, false, "MIN STAY")
	if !ok {
		return res
	}
	if toSeg.OpenWithoutDate() {
		// An undated open return can be flown any time after the window.
		return verdictResult(Pass)
	}

	earliest, res, ok := v.earliestReturn(fromDT, p, perr, r)
	if !ok {
		return res
	}

	if toDT.Before(earliest) {
		v.diag.Printf("MIN STAY: RETURN %s BEFORE EARLIEST PERMITTED %s - FAIL\n",
			toDT.Format(time.RFC3339), earliest.Format(time.RFC3339))
		return verdictResult(Fail)
	}
	return verdictResult(Pass)
}

// earliestReturn computes the earliest permitted return date-time from the
// stay window open.
func (v *Validator) earliestReturn(fromDT time.Time, p PeriodOfStay, perr error, r *types.MinStayRule) (time.Time, Result, bool) {
	var periodDate time.Time
	if perr == nil {
		d, err := AddPeriod(fromDT, p)
		if err != nil {
			v.diag.Printf("MIN STAY: CANNOT APPLY PERIOD %s - SKIP\n", p)
			return time.Time{}, verdictResult(Skip), false
		}
		periodDate = d
	}
	earliest := DetermineReturnDate(periodDate, r.MinStayDate, r.EarlierLater)
	if earliest.IsZero() {
		return time.Time{}, verdictResult(Skip), false
	}
	return stayBound(earliest, TimeOfDay(r.TOD), p, false), Result{}, true
}

// stayFromDate resolves the stay window's opening date-time.
func (v *Validator) stayFromDate(ref types.GeoTableRef, itin *types.Itinerary,
	pu *types.PricingUnit, fu *types.FareUsage, tag string) (time.Time, Result, bool) {

	rs, err := ResolveScope(v.geo, ref, ScopePricingUnit, itin, fu.Component, pu)
	switch {
	case err == nil:
	case errors.Is(err, types.ErrNoScopeMatch):
		v.diag.Printf("%s: FROM GEO %d MATCHES NO SECTOR - SKIP\n", tag, ref)
		return time.Time{}, verdictResult(Skip), false
	default:
		v.diag.Printf("%s: FROM GEO %d UNRESOLVABLE - FAIL\n", tag, ref)
		return time.Time{}, verdictResult(Fail), false
	}
	return scopedTime(rs.Segments[0]), Result{}, true
}

// stayToDate resolves the return reference segment and its date-time. With
// no geo reference the turnaround segment is the return point; complete
// selects arrival of the unit's final segment instead of the turnaround
// departure.
func (v *Validator) stayToDate(ref types.GeoTableRef, itin *types.Itinerary,
	pu *types.PricingUnit, fu *types.FareUsage, complete bool, tag string) (*types.TravelSegment, time.Time, Result, bool) {

	if ref == 0 {
		if complete {
			segs := pu.Segments()
			for n := len(segs) - 1; n >= 0; n-- {
				if segs[n].IsAir() {
					return segs[n], segs[n].Arrival, Result{}, true
				}
			}
			return nil, time.Time{}, verdictResult(Skip), false
		}
		if pu.Turnaround == nil {
			v.diag.Printf("%s: NO TURNAROUND DERIVED - SKIP\n", tag)
			return nil, time.Time{}, verdictResult(Skip), false
		}
		return pu.Turnaround, pu.Turnaround.Departure, Result{}, true
	}

	rs, err := ResolveScope(v.geo, ref, ScopePricingUnit, itin, fu.Component, pu)
	switch {
	case err == nil:
	case errors.Is(err, types.ErrNoScopeMatch):
		v.diag.Printf("%s: TO GEO %d MATCHES NO SECTOR - SKIP\n", tag, ref)
		return nil, time.Time{}, verdictResult(Skip), false
	default:
		v.diag.Printf("%s: TO GEO %d UNRESOLVABLE - FAIL\n", tag, ref)
		return nil, time.Time{}, verdictResult(Fail), false
	}
	s := rs.Segments[0]
	return s.Seg, scopedTime(s), Result{}, true
}
