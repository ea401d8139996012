package rules

import (
	"testing"
	"time"

	"github.com/skylane/fareguard/internal/types"
)

func TestMaxStay_OneYearMeansNoRestriction(t *testing.T) {
	itin, fcOut, _, _ := simpleRoundTrip(
		date(2024, time.June, 1, 9, 0), date(2024, time.June, 10, 11, 0))
	v := newTestValidator(Config{}, nil)

	for _, rule := range []*types.MaxStayRule{
		{MaxStay: "365", MaxStayUnit: "D"},
		{MaxStay: "012", MaxStayUnit: "M"},
	} {
		if res := v.ValidateFareComponent(rule, itin, fcOut); res.Verdict != Skip {
			t.Errorf("%s/%s: verdict = %v, want Skip", rule.MaxStay, rule.MaxStayUnit, res.Verdict)
		}
	}
}

func TestMaxStay_PricingUnit(t *testing.T) {
	rule := &types.MaxStayRule{
		MaxStay:            "003",
		MaxStayUnit:        "D",
		ReturnMustCommence: true,
	}

	tests := []struct {
		name    string
		retDep  time.Time
		verdict Verdict
	}{
		{"return inside the window", date(2024, time.June, 3, 11, 0), Pass},
		{"return on the last day", date(2024, time.June, 4, 22, 0), Pass},
		{"return too late", date(2024, time.June, 10, 11, 0), Fail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			itin, fcOut, _, pu := simpleRoundTrip(date(2024, time.June, 1, 9, 0), tt.retDep)
			fu := &types.FareUsage{Component: fcOut, Unit: pu}

			v := newTestValidator(Config{}, nil)
			res := v.ValidatePricingUnit(rule, itin, pu, fu)
			if res.Verdict != tt.verdict {
				t.Errorf("verdict = %v, want %v", res.Verdict, tt.verdict)
			}
		})
	}
}

func TestMaxStay_RecordsNotValidAfterDate(t *testing.T) {
	rule := &types.MaxStayRule{
		MaxStay:            "003",
		MaxStayUnit:        "D",
		ReturnMustCommence: true,
	}

	// The NVB date is recorded even when the combination fails, so the
	// violated bound is reportable.
	itin, fcOut, _, pu := simpleRoundTrip(
		date(2024, time.June, 1, 9, 0), date(2024, time.June, 10, 11, 0))
	fu := &types.FareUsage{Component: fcOut, Unit: pu}

	v := newTestValidator(Config{}, nil)
	if res := v.ValidatePricingUnit(rule, itin, pu, fu); res.Verdict != Fail {
		t.Fatalf("verdict = %v, want Fail", res.Verdict)
	}

	nvb, set := fu.NotValidAfter.Value()
	if !set {
		t.Fatal("not-valid-after date not recorded")
	}
	if want := date(2024, time.June, 4, 23, 59); !nvb.Equal(want) {
		t.Errorf("NVB = %v, want %v", nvb, want)
	}
}

func TestMaxStay_TravelCompletion(t *testing.T) {
	// Without the commence indicator the bound applies to arrival of the
	// unit's final segment.
	rule := &types.MaxStayRule{MaxStay: "003", MaxStayUnit: "D"}

	itin, fcOut, _, pu := simpleRoundTrip(
		date(2024, time.June, 1, 9, 0), date(2024, time.June, 4, 20, 0))
	fu := &types.FareUsage{Component: fcOut, Unit: pu}

	// Departs within the window but lands June 5th, past the bound.
	itin.Segments[1].Arrival = date(2024, time.June, 5, 4, 0)

	v := newTestValidator(Config{}, nil)
	if res := v.ValidatePricingUnit(rule, itin, pu, fu); res.Verdict != Fail {
		t.Errorf("verdict = %v, want Fail", res.Verdict)
	}
}

func TestMaxStay_HourPeriodKeepsComputedTime(t *testing.T) {
	rule := &types.MaxStayRule{
		MaxStay:            "072",
		MaxStayUnit:        "H",
		ReturnMustCommence: true,
	}

	// 72 hours from June 1st 09:00 is June 4th 09:00 sharp, not end of day.
	itin, fcOut, _, pu := simpleRoundTrip(
		date(2024, time.June, 1, 9, 0), date(2024, time.June, 4, 10, 0))
	fu := &types.FareUsage{Component: fcOut, Unit: pu}

	v := newTestValidator(Config{}, nil)
	if res := v.ValidatePricingUnit(rule, itin, pu, fu); res.Verdict != Fail {
		t.Errorf("verdict = %v, want Fail one hour past the bound", res.Verdict)
	}
}

func TestMaxStay_InboundComponentDefers(t *testing.T) {
	itin, _, fcIn, _ := simpleRoundTrip(
		date(2024, time.June, 1, 9, 0), date(2024, time.June, 10, 11, 0))

	rule := &types.MaxStayRule{MaxStay: "003", MaxStayUnit: "D"}
	v := newTestValidator(Config{}, nil)
	if res := v.ValidateFareComponent(rule, itin, fcIn); res.Verdict != SoftPass {
		t.Errorf("verdict = %v, want SoftPass", res.Verdict)
	}
}

func TestMaxStay_OneWayPricingUnit(t *testing.T) {
	out := airSeg(1, "JFK", "CDG", date(2024, time.June, 1, 9, 0), date(2024, time.June, 1, 16, 0))
	itin := &types.Itinerary{Segments: []*types.TravelSegment{out}}
	fc := &types.FareComponent{Segments: itin.Segments, Direction: types.DirectionOutbound, OneWay: true}
	pu := &types.PricingUnit{Components: []*types.FareComponent{fc}, Kind: types.PricingUnitOneWay}
	fu := &types.FareUsage{Component: fc, Unit: pu}

	rule := &types.MaxStayRule{MaxStay: "003", MaxStayUnit: "D"}
	v := newTestValidator(Config{}, nil)
	if res := v.ValidatePricingUnit(rule, itin, pu, fu); res.Verdict != Pass {
		t.Errorf("verdict = %v, want Pass for a one-way unit", res.Verdict)
	}
}

func TestMaxStay_UnusablePeriodSkips(t *testing.T) {
	itin, fcOut, _, pu := simpleRoundTrip(
		date(2024, time.June, 1, 9, 0), date(2024, time.June, 10, 11, 0))
	fu := &types.FareUsage{Component: fcOut, Unit: pu}

	rule := &types.MaxStayRule{MaxStay: "bad", MaxStayUnit: "Q"}
	v := newTestValidator(Config{}, nil)
	if res := v.ValidatePricingUnit(rule, itin, pu, fu); res.Verdict != Skip {
		t.Errorf("verdict = %v, want Skip", res.Verdict)
	}
}
