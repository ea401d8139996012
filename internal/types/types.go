// Package types provides the itinerary and fare domain models shared across
// fareguard components.
//
// Zero-dependency design: types.go, rules.go and errors.go use only the
// standard library so the engine can be embedded without pulling in storage
// or CLI dependencies. ID utilities in ids.go import uuid but are isolated
// for selective inclusion.
//
// Ownership: TravelSegments are owned by the Itinerary. FareComponents and
// PricingUnits hold references into the itinerary's segment list, never
// copies; two fare components priced over the same leg share the same
// *TravelSegment.
package types

import (
	"time"
)

// LocationCode is an airport or city code (e.g. "DFW", "LON").
type LocationCode string

// CarrierCode is a two-character airline designator.
type CarrierCode string

// VendorCode identifies the source of a filed rule (e.g. "ATP", "SITA").
type VendorCode string

// SegmentKind distinguishes flown air segments from placeholders.
type SegmentKind int

const (
	// SegmentAir is a dated, flown air segment.
	SegmentAir SegmentKind = iota
	// SegmentOpen is an open segment booked without a travel date.
	SegmentOpen
	// SegmentArunk is a surface break (arrival unknown); never validated
	// against temporal rules but kept for ordinal continuity.
	SegmentArunk
)

// ResStatus is the reservation status of a travel segment.
type ResStatus int

const (
	ResUnknown ResStatus = iota
	ResConfirmed
	// ResNoSeat means the carrier confirmed the booking without seat
	// inventory; counts as confirmed for advance-reservation checks.
	ResNoSeat
	ResWaitlisted
	ResRequested
)

// Confirmed reports whether the status satisfies a confirmed-sector
// requirement. No-seat bookings count.
func (s ResStatus) Confirmed() bool {
	return s == ResConfirmed || s == ResNoSeat
}

// TravelSegment is one leg of an itinerary.
type TravelSegment struct {
	Order       int // 1-based position within the owning itinerary
	Kind        SegmentKind
	Origin      LocationCode
	Destination LocationCode
	Departure   time.Time
	Arrival     time.Time
	Booking     time.Time // when the reservation for this segment was made
	Status      ResStatus

	// ChangedSinceExchange marks a segment that differs from the originally
	// ticketed itinerary during an exchange transaction.
	ChangedSinceExchange bool
}

// IsAir reports whether the segment is a flown air segment.
func (s *TravelSegment) IsAir() bool { return s.Kind == SegmentAir }

// OpenWithoutDate reports whether the segment is open and undated. Such
// segments short-circuit deadline computation.
func (s *TravelSegment) OpenWithoutDate() bool {
	return s.Kind == SegmentOpen && s.Departure.IsZero()
}

// Direction is the travel direction of a fare component relative to the
// journey origin.
type Direction int

const (
	DirectionUnknown Direction = iota
	DirectionOutbound
	DirectionInbound
)

// Itinerary owns the ordered travel segments of one journey.
type Itinerary struct {
	Segments []*TravelSegment

	// TicketingDate is the date-time ticketing is (or was) performed for
	// this itinerary; the reference date for ticketing restrictions.
	TicketingDate time.Time
}

// First returns the first segment, or nil for an empty itinerary.
func (i *Itinerary) First() *TravelSegment {
	if len(i.Segments) == 0 {
		return nil
	}
	return i.Segments[0]
}

// SegmentOrder returns the 1-based itinerary position of seg, or 0 when the
// segment does not belong to this itinerary.
func (i *Itinerary) SegmentOrder(seg *TravelSegment) int {
	for n, s := range i.Segments {
		if s == seg {
			return n + 1
		}
	}
	return 0
}
