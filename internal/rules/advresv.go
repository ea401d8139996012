// internal/rules/advresv.go
package rules

import (
	"errors"
	"time"

	"github.com/skylane/fareguard/internal/types"
)

/*
 * Advance reservation and ticketing validation (category 5).
 *
 * A record constrains up to three things, combined left to right:
 *
 *   reservation  booking must fall inside the filed window before departure
 *                of the pricing unit origin (or whatever the geo reference
 *                selects), or exactly on the departure date when advance
 *                reservation is not permitted
 *   ticketing    ticket issuance must happen within a period after the
 *                reservation and/or within a period before departure; an
 *                exception window measured back from departure voids the
 *                ticketing requirements for late bookings
 *   confirmation sectors up to the filed boundary must hold confirmed space
 *
 * Fare-component phase runs the same checks against the component's own
 * segments; a check whose true reference point is the pricing unit origin
 * passes only softly unless the component is known to contain it. When the
 * exception window matched, the settled verdict escalates to Stop so later
 * records in the category sequence cannot re-impose ticketing requirements.
 */

func (v *Validator) validateAdvResTkt(r *types.AdvanceResTktRule, itin *types.Itinerary,
	fc *types.FareComponent, pu *types.PricingUnit, fu *types.FareUsage) Result {

	forFC := pu == nil

	scoped, scopeRes, ok := v.advResScope(r, itin, fc, pu, fu)
	if !ok {
		return scopeRes
	}

	refDT := scopedTime(scoped[0])
	bookDT := latestBooking(scoped, itin)
	tktDT := itin.TicketingDate
	if !refDT.IsZero() {
		tktDT = AlignToZone(tktDT, refDT)
	}

	soft := false
	var pending []PendingCheck
	if forFC && !r.EachSector && fc.First() != itin.First() {
		// The component does not start the journey, so the pricing unit
		// origin may lie outside it and the reference departure is only a
		// guess.
		if r.NotPermitted || r.FirstResPeriod != "" || r.LastResPeriod != "" {
			soft = true
			pending = append(pending, PendingReservation)
		}
		if departFiled(r.DepartOpt) {
			soft = true
			pending = append(pending, PendingTicketing)
		}
	}

	rebook := make(map[*types.TravelSegment]bool)
	var matchedExc bool

	resV, resProcessed := v.checkReservation(r, refDT, bookDT)
	tktV, tktProcessed := v.checkTicketing(r, refDT, bookDT, tktDT, pu, &matchedExc)
	confV, confProcessed, confSoft := v.checkConfirmedSectors(r, itin, fc, pu, rebook)
	if confSoft {
		soft = true
		pending = append(pending, PendingConfirmation)
	}

	var chain Chain
	conn := ConnIf
	for _, sub := range []struct {
		verdict   Verdict
		processed bool
	}{
		{resV, resProcessed},
		{tktV, tktProcessed},
		{confV, confProcessed},
	} {
		if !sub.processed {
			continue
		}
		vv := sub.verdict
		chain.Apply(conn, func() Verdict { return vv })
		conn = ConnAnd
	}

	verdict := chain.Result()
	res := Result{Verdict: verdict}
	if len(rebook) > 0 && verdict != Fail {
		res.Rebook = rebook
	}

	if matchedExc && verdict != Fail {
		// The exception window voided ticketing requirements; stop the
		// category sequence so later records cannot reinstate them.
		if soft {
			res.Verdict = StopSoft
			res.Pending = pending
		} else {
			res.Verdict = Stop
		}
		v.diag.Printf("ADVANCE RESTKT: TICKETING EXCEPTION MATCHED - %s\n", res.Verdict)
		return res
	}

	if verdict == NotProcessed {
		v.diag.Printf("ADVANCE RESTKT: NO RESTRICTIONS FILED - SKIP\n")
		return verdictResult(Skip)
	}
	if verdict == Pass && soft {
		res.Verdict = SoftPass
		res.Pending = pending
	}
	return res
}

// advResScope selects the segments the record applies to. The third return
// is false when scope resolution itself decided the result.
func (v *Validator) advResScope(r *types.AdvanceResTktRule, itin *types.Itinerary,
	fc *types.FareComponent, pu *types.PricingUnit, fu *types.FareUsage) ([]ScopedSegment, Result, bool) {

	param := ScopePricingUnit
	if pu == nil {
		param = ScopeFareComponent
	} else if r.EachSector {
		// Each-sector records validate the fare usage's own component even
		// at pricing-unit scope.
		param = ScopeFareComponent
		fc = fu.Component
		pu = nil
	}

	rs, err := ResolveScope(v.geo, r.GeoTable, param, itin, fc, pu)
	switch {
	case err == nil:
	case errors.Is(err, types.ErrNeedsWiderScope):
		v.diag.Printf("ADVANCE RESTKT: GEO %d NEEDS PRICING UNIT - SOFTPASS\n", r.GeoTable)
		return nil, softResult(PendingGeoScope), false
	case errors.Is(err, types.ErrNoScopeMatch):
		if r.GeoTable != 0 {
			v.diag.Printf("ADVANCE RESTKT: GEO %d MATCHES NO SECTOR - SKIP\n", r.GeoTable)
			return nil, verdictResult(Skip), false
		}
		v.diag.Printf("ADVANCE RESTKT: NO VALIDATABLE SECTOR - FAIL\n")
		return nil, verdictResult(Fail), false
	default:
		v.diag.Printf("ADVANCE RESTKT: GEO %d UNRESOLVABLE - FAIL\n", r.GeoTable)
		return nil, verdictResult(Fail), false
	}
	return rs.Segments, Result{}, true
}

// scopedTime returns the date-time the scope tagging designates on a
// segment: arrival for destination-only matches, departure otherwise.
func scopedTime(s ScopedSegment) time.Time {
	if s.DestMatch && !s.OrigMatch {
		return s.Seg.Arrival
	}
	return s.Seg.Departure
}

// latestBooking returns the strictest (latest) booking date among the
// scoped segments, falling back to the ticketing date when none is
// recorded.
func latestBooking(scoped []ScopedSegment, itin *types.Itinerary) time.Time {
	var latest time.Time
	for _, s := range scoped {
		if b := s.Seg.Booking; !b.IsZero() && b.After(latest) {
			latest = b
		}
	}
	if latest.IsZero() {
		return itin.TicketingDate
	}
	return latest
}

// checkReservation validates the reservation window against the reference
// departure. Returns processed=false when the record files no reservation
// restriction.
func (v *Validator) checkReservation(r *types.AdvanceResTktRule, refDT, bookDT time.Time) (Verdict, bool) {
	if !r.NotPermitted && r.FirstResPeriod == "" && r.LastResPeriod == "" {
		return NotProcessed, false
	}
	if !r.WaiverResDate.IsZero() && bookDT.Before(r.WaiverResDate) {
		v.diag.Printf("ADVANCE RES: BOOKED BEFORE WAIVER DATE %s - PASS\n",
			r.WaiverResDate.Format("2006-01-02"))
		return Pass, true
	}
	if refDT.IsZero() {
		v.diag.Printf("ADVANCE RES: OPEN SEGMENT WITHOUT DATE - NOT CHECKED\n")
		return NotProcessed, false
	}

	if r.NotPermitted {
		ry, rm, rd := refDT.Date()
		by, bm, bd := bookDT.Date()
		if ry != by || rm != bm || rd != bd {
			v.diag.Printf("ADVANCE RES: ADVANCE RESERVATION NOT PERMITTED - FAIL\n")
			return Fail, true
		}
		return Pass, true
	}

	if p, err := ParsePeriod(r.FirstResPeriod, r.FirstResUnit); err == nil {
		limit, err := ComputeDeadline(refDT, TimeOfDay(r.FirstResTOD), p, Before, false)
		if err == nil && bookDT.Before(limit) {
			v.diag.Printf("ADVANCE RES: BOOKED %s BEFORE EARLIEST PERMITTED %s - FAIL\n",
				bookDT.Format(time.RFC3339), limit.Format(time.RFC3339))
			return Fail, true
		}
	}

	if p, err := ParsePeriod(r.LastResPeriod, r.LastResUnit); err == nil {
		limit, err := ComputeDeadline(refDT, TimeOfDay(r.LastResTOD), p, Before, true)
		if err == nil && bookDT.After(limit) {
			v.diag.Printf("ADVANCE RES: BOOKED %s AFTER DEADLINE %s - FAIL\n",
				bookDT.Format(time.RFC3339), limit.Format(time.RFC3339))
			return Fail, true
		}
	}
	return Pass, true
}

// checkTicketing validates the ticketing limits. matchedExc is set when the
// booking falls inside the exception window, which voids the ticketing
// requirements entirely.
func (v *Validator) checkTicketing(r *types.AdvanceResTktRule, refDT, bookDT, tktDT time.Time,
	pu *types.PricingUnit, matchedExc *bool) (Verdict, bool) {

	if r.TktPeriod == "" && !departFiled(r.DepartOpt) {
		return NotProcessed, false
	}
	if !r.WaiverTktDate.IsZero() && tktDT.Before(r.WaiverTktDate) {
		v.diag.Printf("ADVANCE TKT: TICKETED BEFORE WAIVER DATE %s - NOT CHECKED\n",
			r.WaiverTktDate.Format("2006-01-02"))
		return NotProcessed, false
	}

	if r.ExcPeriod != "" && !refDT.IsZero() {
		p, err := ParsePeriod(r.ExcPeriod, r.ExcUnit)
		if err != nil {
			v.diag.Printf("ADVANCE TKT: UNUSABLE EXCEPTION PERIOD %q/%q - FAIL\n",
				r.ExcPeriod, r.ExcUnit)
			return Fail, true
		}
		excLimit, err := ComputeDeadline(refDT, 0, p, Before, true)
		if err == nil && !bookDT.Before(excLimit) {
			*matchedExc = true
			v.diag.Printf("ADVANCE TKT: BOOKED INSIDE EXCEPTION WINDOW FROM %s - NO TICKETING REQUIREMENT\n",
				excLimit.Format(time.RFC3339))
			return NotProcessed, false
		}
	}

	// Latest limits from both measurements, arbitrated by the filed
	// indicator; with no indicator both must hold, so the earlier wins.
	var limits []time.Time

	if p, err := ParsePeriod(r.TktPeriod, r.TktUnit); err == nil {
		base := bookDT
		if v.cfg.SkipBookingDateValidation {
			base = tktDT
		}
		if limit, err := ComputeDeadline(base, TimeOfDay(r.TktTOD), p, After, true); err == nil {
			limits = append(limits, limit)
		}
	}

	if departFiled(r.DepartOpt) && !refDT.IsZero() {
		if p, err := ParsePeriod(r.DepartPeriod, r.DepartUnit); err == nil {
			switch r.DepartOpt {
			case types.TicketedLatestBeforeDeparture:
				if limit, err := ComputeDeadline(refDT, 0, p, Before, true); err == nil {
					limits = append(limits, limit)
				}
			case types.TicketedEarliestPermitted:
				limit, err := ComputeDeadline(refDT, 0, p, Before, false)
				if err == nil && tktDT.Before(limit) {
					v.diag.Printf("ADVANCE TKT: TICKETED %s BEFORE EARLIEST PERMITTED %s - FAIL\n",
						tktDT.Format(time.RFC3339), limit.Format(time.RFC3339))
					return Fail, true
				}
			}
		}
	}

	if len(limits) == 0 {
		return Pass, true
	}

	effective := limits[0]
	if len(limits) == 2 {
		switch r.BothInd {
		case types.ApplyLater:
			if limits[1].After(effective) {
				effective = limits[1]
			}
		default:
			if limits[1].Before(effective) {
				effective = limits[1]
			}
		}
	}

	if tktDT.After(effective) {
		v.diag.Printf("ADVANCE TKT: TICKETED %s AFTER DEADLINE %s - FAIL\n",
			tktDT.Format(time.RFC3339), effective.Format(time.RFC3339))
		return Fail, true
	}
	if pu != nil {
		pu.LatestTicketing.MergeEarlier(effective)
	}
	return Pass, true
}

// checkConfirmedSectors scans for confirmed space up to the filed boundary.
// At fare-component scope the turnaround (and the pricing unit's first
// sector) may not be visible yet; an unconfirmed sector then defers the
// decision via confSoft instead of failing a requirement that may not apply
// to it.
func (v *Validator) checkConfirmedSectors(r *types.AdvanceResTktRule, itin *types.Itinerary,
	fc *types.FareComponent, pu *types.PricingUnit,
	rebook map[*types.TravelSegment]bool) (verdict Verdict, processed, confSoft bool) {

	confSector := r.ConfirmedSector
	if confSector == 0 {
		confSector = types.ConfirmToTurnaround
	}

	resFiled := r.NotPermitted || r.FirstResPeriod != "" || r.LastResPeriod != ""
	if !resFiled && confSector == types.ConfirmToTurnaround {
		return NotProcessed, false, false
	}

	boundaryUnknown := false
	var pool []*types.TravelSegment
	switch {
	case pu != nil:
		pool = pu.Segments()
	default:
		pool = fc.Segments
		switch confSector {
		case types.ConfirmToTurnaround:
			boundaryUnknown = true
		case types.ConfirmFirstSector:
			boundaryUnknown = fc.First() != itin.First()
		}
	}

	stillChecking := true
	for _, seg := range pool {
		if !stillChecking {
			break
		}
		if !seg.IsAir() {
			if seg.Kind == types.SegmentOpen && confSector == types.ConfirmAllSectors &&
				!seg.Status.Confirmed() {
				if !v.cfg.AllowRebook {
					v.diag.Printf("CONFIRMED SECTOR: OPEN SECTOR %d NOT CONFIRMED - FAIL\n", seg.Order)
					return Fail, true, confSoft
				}
				rebook[seg] = true
			}
			continue
		}

		if !seg.Status.Confirmed() {
			if boundaryUnknown {
				// The sector may lie past the requirement's boundary; only
				// the pricing unit can tell.
				confSoft = true
				continue
			}
			if !v.cfg.AllowRebook {
				v.diag.Printf("CONFIRMED SECTOR: SECTOR %d %s-%s NOT CONFIRMED - FAIL\n",
					seg.Order, seg.Origin, seg.Destination)
				return Fail, true, confSoft
			}
			v.diag.Printf("CONFIRMED SECTOR: SECTOR %d MARKED FOR REBOOK\n", seg.Order)
			rebook[seg] = true
		}

		switch confSector {
		case types.ConfirmFirstSector:
			stillChecking = false
		case types.ConfirmToTurnaround:
			if pu != nil && seg == pu.Turnaround {
				stillChecking = false
			}
		}
	}
	return Pass, true, confSoft
}

// departFiled reports whether the record files a before-departure ticketing
// limit; the unfiled byte and the zero value are both "none".
func departFiled(o types.TicketedOption) bool {
	return o == types.TicketedLatestBeforeDeparture || o == types.TicketedEarliestPermitted
}
