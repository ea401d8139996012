// internal/rules/maxstay.go
package rules

import (
	"time"

	"github.com/skylane/fareguard/internal/types"
)

/*
 * Maximum-stay validation (category 7).
 *
 * Mirror image of minimum stay: return travel must commence (or travel must
 * complete, per the filed indicator) no later than window open + period. A
 * one-year period is the filed encoding for "no maximum stay restriction"
 * and skips.
 *
 * Side effect at pricing-unit scope: the computed latest return date
 * tightens the fare usage's not-valid-after date, which becomes the NVB
 * date printed on the ticket. The merge happens regardless of verdict so a
 * failing combination still reports the bound that was violated.
 */

func (v *Validator) validateMaxStayFC(r *types.MaxStayRule, itin *types.Itinerary, fc *types.FareComponent) Result {
	p, perr := ParsePeriod(r.MaxStay, r.MaxStayUnit)
	if perr == nil && p.IsOneYear() {
		v.diag.Printf("MAX STAY: ONE YEAR PERIOD - NO RESTRICTION - SKIP\n")
		return verdictResult(Skip)
	}
	if perr != nil && r.MaxStayDate.IsZero() {
		v.diag.Printf("MAX STAY: UNUSABLE PERIOD %q/%q - SKIP\n", r.MaxStay, r.MaxStayUnit)
		return verdictResult(Skip)
	}

	front := fc.First()
	if front == nil {
		return verdictResult(Fail)
	}
	if fc.Direction != types.DirectionOutbound || fc.OneWay {
		return softResult(PendingStay)
	}
	if front.OpenWithoutDate() {
		return softResult(PendingStay)
	}

	puScope := false
	if r.GeoTo != 0 {
		entry, err := v.geo.GeoTableEntry(r.GeoTo)
		if err != nil {
			v.diag.Printf("MAX STAY: GEO %d UNRESOLVABLE - FAIL\n", r.GeoTo)
			return verdictResult(Fail)
		}
		if entry.Scope == TSIScopeJourney || entry.Scope == TSIScopeSubJourney {
			puScope = true
		}
	}

	latest, res, ok := v.latestReturn(front.Departure, p, perr, r)
	if !ok {
		return res
	}

	var passed, failed int
	for _, seg := range fc.Segments[1:] {
		if !seg.IsAir() || seg.OpenWithoutDate() {
			continue
		}
		if seg.Departure.After(latest) {
			failed++
		} else {
			passed++
		}
	}

	switch {
	case passed == 0 && failed == 0:
		return softResult(PendingStay)
	case failed == 0:
		if puScope {
			return softResult(PendingStay)
		}
		return verdictResult(Pass)
	case passed == 0:
		if puScope {
			return softResult(PendingStay)
		}
		v.diag.Printf("MAX STAY: RETURN AFTER LATEST PERMITTED %s - FAIL\n",
			latest.Format(time.RFC3339))
		return verdictResult(Fail)
	default:
		return softResult(PendingStay)
	}
}

func (v *Validator) validateMaxStayPU(r *types.MaxStayRule, itin *types.Itinerary,
	pu *types.PricingUnit, fu *types.FareUsage) Result {

	p, perr := ParsePeriod(r.MaxStay, r.MaxStayUnit)
	if perr == nil && p.IsOneYear() {
		v.diag.Printf("MAX STAY: ONE YEAR PERIOD - NO RESTRICTION - SKIP\n")
		return verdictResult(Skip)
	}
	if perr != nil && r.MaxStayDate.IsZero() {
		v.diag.Printf("MAX STAY: UNUSABLE PERIOD %q/%q - SKIP\n", r.MaxStay, r.MaxStayUnit)
		return verdictResult(Skip)
	}
	if pu.Kind == types.PricingUnitOneWay {
		return verdictResult(Pass)
	}

	fromDT, res, ok := v.stayFromDate(r.GeoFrom, itin, pu, fu, "MAX STAY")
	if !ok {
		return res
	}
	toSeg, toDT, res, ok := v.stayToDate(r.GeoTo, itin, pu, fu, !r.ReturnMustCommence, "MAX STAY")
	if !ok {
		return res
	}

	latest, res, ok := v.latestReturn(fromDT, p, perr, r)
	if !ok {
		return res
	}
	fu.NotValidAfter.MergeEarlier(latest)

	if toSeg.OpenWithoutDate() {
		// The NVB date above is what actually enforces the bound.
		return verdictResult(Pass)
	}
	if toDT.After(latest) {
		v.diag.Printf("MAX STAY: RETURN %s AFTER LATEST PERMITTED %s - FAIL\n",
			toDT.Format(time.RFC3339), latest.Format(time.RFC3339))
		return verdictResult(Fail)
	}
	return verdictResult(Pass)
}

// latestReturn computes the latest permitted return date-time from the stay
// window open.
func (v *Validator) latestReturn(fromDT time.Time, p PeriodOfStay, perr error, r *types.MaxStayRule) (time.Time, Result, bool) {
	var periodDate time.Time
	if perr == nil {
		d, err := AddPeriod(fromDT, p)
		if err != nil {
			v.diag.Printf("MAX STAY: CANNOT APPLY PERIOD %s - SKIP\n", p)
			return time.Time{}, verdictResult(Skip), false
		}
		periodDate = d
	}
	latest := DetermineReturnDate(periodDate, r.MaxStayDate, r.EarlierLater)
	if latest.IsZero() {
		return time.Time{}, verdictResult(Skip), false
	}
	return stayBound(latest, TimeOfDay(r.TOD), p, true), Result{}, true
}
