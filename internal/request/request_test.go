package request

import (
	"strings"
	"testing"
	"time"

	"github.com/skylane/fareguard/internal/types"
)

const sampleRequest = `{
	"ticketingDate": "2024-04-15T10:00:00Z",
	"segments": [
		{"origin": "JFK", "destination": "CDG", "departure": "2024-06-01T09:00:00Z", "arrival": "2024-06-01T16:00:00Z", "booking": "2024-04-10T12:00:00Z"},
		{"origin": "CDG", "destination": "JFK", "departure": "2024-06-10T11:00:00Z", "arrival": "2024-06-10T19:00:00Z", "booking": "2024-04-10T12:00:00Z"}
	],
	"fareComponents": [
		{"segments": [1], "direction": "outbound", "carrier": "AA"},
		{"segments": [2], "direction": "inbound", "carrier": "AA"}
	],
	"pricingUnits": [
		{"components": [0, 1], "kind": "round-trip", "turnaround": 2}
	],
	"rules": [
		{"category": 5, "vendor": "ATP", "carrier": "AA", "tariff": 1, "rule": "2000", "item": 100}
	]
}`

func TestDecodeAndBuild(t *testing.T) {
	req, err := Decode(strings.NewReader(sampleRequest))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	b, err := req.Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if len(b.Itinerary.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(b.Itinerary.Segments))
	}
	if b.Itinerary.Segments[0].Order != 1 || b.Itinerary.Segments[1].Order != 2 {
		t.Error("segment ordinals not assigned in itinerary order")
	}
	if len(b.Components) != 2 || b.Components[0].Direction != types.DirectionOutbound {
		t.Error("fare components not assembled")
	}
	if b.Components[0].Segments[0] != b.Itinerary.Segments[0] {
		t.Error("fare component does not share the itinerary's segment")
	}

	if len(b.Units) != 1 {
		t.Fatalf("got %d pricing units, want 1", len(b.Units))
	}
	pu := b.Units[0]
	if pu.Kind != types.PricingUnitRoundTrip || pu.Turnaround != b.Itinerary.Segments[1] {
		t.Error("pricing unit kind or turnaround wrong")
	}
	if len(b.Usages) != 2 || b.Usages[0].Unit != pu {
		t.Error("fare usages not built per component")
	}

	if len(b.Rules) != 1 || b.Rules[0].Category != types.CategoryAdvResTkt {
		t.Fatalf("rules not decoded: %+v", b.Rules)
	}
	if b.Rules[0].Key.Item != 100 || b.Rules[0].Key.Vendor != "ATP" {
		t.Errorf("rule key = %+v", b.Rules[0].Key)
	}
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"bogus": true}`))
	if err == nil {
		t.Error("expected an error for unknown fields")
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"no segments", func(r *Request) { r.Segments = nil }},
		{"segment ordinal out of range", func(r *Request) { r.FareComponents[0].Segments = []int{9} }},
		{"component index out of range", func(r *Request) { r.PricingUnits[0].Components = []int{5} }},
		{"turnaround outside the unit", func(r *Request) {
			r.PricingUnits[0].Components = []int{0}
			r.PricingUnits[0].Turnaround = 2
		}},
		{"unknown category", func(r *Request) { r.Rules[0].Category = 9 }},
		{"unknown direction", func(r *Request) { r.FareComponents[0].Direction = "sideways" }},
		{"air segment without departure", func(r *Request) { r.Segments[0].Departure = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Decode(strings.NewReader(sampleRequest))
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			tt.mutate(req)
			if _, err := req.Build(); err == nil {
				t.Error("expected a build error")
			}
		})
	}
}
