// Package request decodes validation requests from JSON and assembles the
// itinerary, fare component and pricing unit structures the engine works
// on. Segments are referenced by their 1-based itinerary ordinal
// throughout, so a request stays readable next to the booking record it
// describes.
package request

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/skylane/fareguard/internal/types"
)

// Segment is one travel segment of the request.
type Segment struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Departure   time.Time `json:"departure"`
	Arrival     time.Time `json:"arrival"`
	Booking     time.Time `json:"booking,omitempty"`
	Kind        string    `json:"kind,omitempty"`   // air (default), open, arunk
	Status      string    `json:"status,omitempty"` // confirmed (default), noseat, waitlisted, requested
}

// FareComponent groups contiguous segments under one fare.
type FareComponent struct {
	Segments  []int  `json:"segments"` // 1-based itinerary ordinals
	Direction string `json:"direction"`
	Carrier   string `json:"carrier,omitempty"`
	OneWay    bool   `json:"oneWay,omitempty"`
}

// PricingUnit combines fare components priced together.
type PricingUnit struct {
	Components []int  `json:"components"` // indexes into fareComponents
	Kind       string `json:"kind"`
	Turnaround int    `json:"turnaround,omitempty"` // 1-based segment ordinal
}

// RuleRef selects one catalog record to validate.
type RuleRef struct {
	Category int    `json:"category"`
	Vendor   string `json:"vendor"`
	Carrier  string `json:"carrier"`
	Tariff   int    `json:"tariff"`
	Rule     string `json:"rule"`
	Item     int    `json:"item"`
}

// Request is a complete validation request.
type Request struct {
	TicketingDate  time.Time       `json:"ticketingDate"`
	Segments       []Segment       `json:"segments"`
	FareComponents []FareComponent `json:"fareComponents"`
	PricingUnits   []PricingUnit   `json:"pricingUnits"`
	Rules          []RuleRef       `json:"rules"`
}

// RuleSelector is a decoded rule reference.
type RuleSelector struct {
	Category types.Category
	Key      types.RuleKey
}

// Built is the assembled domain view of a request. Usages holds one fare
// usage per component within each unit, in unit order.
type Built struct {
	Itinerary  *types.Itinerary
	Components []*types.FareComponent
	Units      []*types.PricingUnit
	Usages     []*types.FareUsage
	Rules      []RuleSelector
}

// Decode reads a JSON request.
func Decode(r io.Reader) (*Request, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var req Request
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	return &req, nil
}

// Build assembles and cross-validates the request.
func (r *Request) Build() (*Built, error) {
	if len(r.Segments) == 0 {
		return nil, fmt.Errorf("request has no segments")
	}

	itin := &types.Itinerary{TicketingDate: r.TicketingDate}
	for n, s := range r.Segments {
		seg, err := buildSegment(n+1, s)
		if err != nil {
			return nil, err
		}
		itin.Segments = append(itin.Segments, seg)
	}

	b := &Built{Itinerary: itin}
	for n, fc := range r.FareComponents {
		built, err := buildComponent(n, fc, itin)
		if err != nil {
			return nil, err
		}
		b.Components = append(b.Components, built)
	}

	for n, pu := range r.PricingUnits {
		unit, usages, err := buildUnit(n, pu, itin, b.Components)
		if err != nil {
			return nil, err
		}
		b.Units = append(b.Units, unit)
		b.Usages = append(b.Usages, usages...)
	}

	for n, ref := range r.Rules {
		sel, err := buildRule(n, ref)
		if err != nil {
			return nil, err
		}
		b.Rules = append(b.Rules, sel)
	}
	return b, nil
}

func buildSegment(order int, s Segment) (*types.TravelSegment, error) {
	kind := types.SegmentAir
	switch s.Kind {
	case "", "air":
	case "open":
		kind = types.SegmentOpen
	case "arunk":
		kind = types.SegmentArunk
	default:
		return nil, fmt.Errorf("segment %d: unknown kind %q", order, s.Kind)
	}

	status := types.ResConfirmed
	switch s.Status {
	case "", "confirmed":
	case "noseat":
		status = types.ResNoSeat
	case "waitlisted":
		status = types.ResWaitlisted
	case "requested":
		status = types.ResRequested
	case "unknown":
		status = types.ResUnknown
	default:
		return nil, fmt.Errorf("segment %d: unknown status %q", order, s.Status)
	}

	if kind == types.SegmentAir && s.Departure.IsZero() {
		return nil, fmt.Errorf("segment %d: air segment needs a departure date", order)
	}

	return &types.TravelSegment{
		Order:       order,
		Kind:        kind,
		Origin:      types.LocationCode(s.Origin),
		Destination: types.LocationCode(s.Destination),
		Departure:   s.Departure,
		Arrival:     s.Arrival,
		Booking:     s.Booking,
		Status:      status,
	}, nil
}

func buildComponent(n int, fc FareComponent, itin *types.Itinerary) (*types.FareComponent, error) {
	if len(fc.Segments) == 0 {
		return nil, fmt.Errorf("fare component %d: no segments", n)
	}

	direction := types.DirectionUnknown
	switch fc.Direction {
	case "outbound":
		direction = types.DirectionOutbound
	case "inbound":
		direction = types.DirectionInbound
	case "":
	default:
		return nil, fmt.Errorf("fare component %d: unknown direction %q", n, fc.Direction)
	}

	built := &types.FareComponent{
		Direction: direction,
		Carrier:   types.CarrierCode(fc.Carrier),
		OneWay:    fc.OneWay,
	}
	for _, ord := range fc.Segments {
		if ord < 1 || ord > len(itin.Segments) {
			return nil, fmt.Errorf("fare component %d: segment ordinal %d out of range", n, ord)
		}
		built.Segments = append(built.Segments, itin.Segments[ord-1])
	}
	return built, nil
}

func buildUnit(n int, pu PricingUnit, itin *types.Itinerary, components []*types.FareComponent) (*types.PricingUnit, []*types.FareUsage, error) {
	if len(pu.Components) == 0 {
		return nil, nil, fmt.Errorf("pricing unit %d: no components", n)
	}

	var kind types.PricingUnitKind
	switch pu.Kind {
	case "one-way":
		kind = types.PricingUnitOneWay
	case "", "round-trip":
		kind = types.PricingUnitRoundTrip
	case "circle-trip":
		kind = types.PricingUnitCircleTrip
	case "open-jaw":
		kind = types.PricingUnitOpenJaw
	default:
		return nil, nil, fmt.Errorf("pricing unit %d: unknown kind %q", n, pu.Kind)
	}

	unit := &types.PricingUnit{Kind: kind}
	for _, idx := range pu.Components {
		if idx < 0 || idx >= len(components) {
			return nil, nil, fmt.Errorf("pricing unit %d: component index %d out of range", n, idx)
		}
		unit.Components = append(unit.Components, components[idx])
	}

	if pu.Turnaround != 0 {
		if pu.Turnaround < 1 || pu.Turnaround > len(itin.Segments) {
			return nil, nil, fmt.Errorf("pricing unit %d: turnaround ordinal %d out of range", n, pu.Turnaround)
		}
		seg := itin.Segments[pu.Turnaround-1]
		if !containsSegment(unit.Segments(), seg) {
			return nil, nil, fmt.Errorf("pricing unit %d: turnaround segment %d not in the unit", n, pu.Turnaround)
		}
		unit.Turnaround = seg
	}

	usages := make([]*types.FareUsage, 0, len(unit.Components))
	for _, fc := range unit.Components {
		usages = append(usages, &types.FareUsage{Component: fc, Unit: unit})
	}
	return unit, usages, nil
}

func buildRule(n int, ref RuleRef) (RuleSelector, error) {
	cat := types.Category(ref.Category)
	switch cat {
	case types.CategoryAdvResTkt, types.CategoryMinStay, types.CategoryMaxStay:
	default:
		return RuleSelector{}, fmt.Errorf("rule %d: unsupported category %d", n, ref.Category)
	}
	return RuleSelector{
		Category: cat,
		Key: types.RuleKey{
			Vendor:  types.VendorCode(ref.Vendor),
			Carrier: types.CarrierCode(ref.Carrier),
			Tariff:  ref.Tariff,
			Rule:    ref.Rule,
			Item:    ref.Item,
		},
	}, nil
}

func containsSegment(segs []*types.TravelSegment, seg *types.TravelSegment) bool {
	for _, s := range segs {
		if s == seg {
			return true
		}
	}
	return false
}
