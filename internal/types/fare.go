package types

import (
	"sync"
	"time"
)

// FareComponent is a priced origin-to-destination unit: an ordered,
// non-owning view of a contiguous travel segment range. Immutable once
// priced.
type FareComponent struct {
	Segments  []*TravelSegment
	Direction Direction
	Carrier   CarrierCode

	// OneWay marks a one-way fare type; round-trip stay rules defer such
	// fares to pricing-unit scope.
	OneWay bool
}

// First returns the component's first segment, or nil when empty.
func (fc *FareComponent) First() *TravelSegment {
	if len(fc.Segments) == 0 {
		return nil
	}
	return fc.Segments[0]
}

// Last returns the component's last segment, or nil when empty.
func (fc *FareComponent) Last() *TravelSegment {
	if len(fc.Segments) == 0 {
		return nil
	}
	return fc.Segments[len(fc.Segments)-1]
}

// PricingUnitKind is the combination shape of a pricing unit.
type PricingUnitKind int

const (
	PricingUnitOneWay PricingUnitKind = iota
	PricingUnitRoundTrip
	PricingUnitCircleTrip
	PricingUnitOpenJaw
)

// PricingUnit is an ordered set of fare components priced together. It owns
// no segments, only references, plus the derived turnaround segment and the
// monotonic ticketing-deadline bookkeeping shared by all fare components
// priced within it.
type PricingUnit struct {
	Components []*FareComponent
	Kind       PricingUnitKind

	// Turnaround is the first segment after the outbound portion; stay
	// rules and confirmed-sector scans stop at this boundary.
	Turnaround *TravelSegment

	// LatestTicketing accumulates the tightest ticketing deadline found
	// across fare component validations within this unit.
	LatestTicketing TicketDeadline
}

// Segments returns the unit's travel segments in component order. The slice
// holds the shared references, not copies.
func (pu *PricingUnit) Segments() []*TravelSegment {
	var segs []*TravelSegment
	for _, fc := range pu.Components {
		segs = append(segs, fc.Segments...)
	}
	return segs
}

// SegmentsToTurnaround returns the unit's segments up to and including the
// turnaround boundary, or all segments when no turnaround is derived.
func (pu *PricingUnit) SegmentsToTurnaround() []*TravelSegment {
	segs := pu.Segments()
	if pu.Turnaround == nil {
		return segs
	}
	for n, s := range segs {
		if s == pu.Turnaround {
			return segs[:n+1]
		}
	}
	return segs
}

// FareUsage is one fare component's participation in a pricing unit, with
// the validation side effects recorded against it.
type FareUsage struct {
	Component *FareComponent
	Unit      *PricingUnit

	// NonRefundable is set when a rule marks the fare non-refundable.
	NonRefundable bool

	// NotValidAfter accumulates the earliest latest-return date found by
	// maximum-stay validation (the NVB date on the ticket).
	NotValidAfter TicketDeadline
}

// TicketDeadline is a date-time that only tightens. Writes go through
// MergeEarlier/MergeLater so the strictest value wins regardless of the
// order fare components are validated in, including concurrently.
type TicketDeadline struct {
	mu  sync.Mutex
	t   time.Time
	set bool
}

// MergeEarlier records t if it is earlier than the stored value, or if no
// value has been recorded yet.
func (d *TicketDeadline) MergeEarlier(t time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.set || t.Before(d.t) {
		d.t = t
		d.set = true
	}
}

// MergeLater records t if it is later than the stored value, or if no value
// has been recorded yet.
func (d *TicketDeadline) MergeLater(t time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.set || t.After(d.t) {
		d.t = t
		d.set = true
	}
}

// Value returns the stored deadline and whether one has been recorded.
func (d *TicketDeadline) Value() (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.t, d.set
}
