// internal/rules/validator.go
package rules

import (
	"github.com/skylane/fareguard/internal/types"
)

/*
 * Validation orchestration.
 *
 * A Validator dispatches catalog records to their category validator and is
 * invoked at two points of the pricing flow:
 *
 *   ValidateFareComponent   early, per fare component, before pricing units
 *                           exist. Checks that need wider structure return
 *                           SoftPass with the pending checks recorded.
 *   ValidatePricingUnit     per fare usage once the pricing unit is built.
 *                           SoftPassed records are re-validated here and
 *                           settle to a terminal verdict.
 *
 * A Result never panics into the caller: catalog defects degrade per the
 * category's own semantics (skip, fail, or ignore a sub-restriction).
 */

// Config carries the validation options a pricing request can toggle.
type Config struct {
	// AllowRebook records unconfirmed sectors for re-booking instead of
	// failing the confirmed-sector check outright.
	AllowRebook bool

	// SkipBookingDateValidation measures ticket-after-reservation limits
	// from the ticketing date instead of the booking date. Used for
	// transactions where segment booking dates are not trustworthy.
	SkipBookingDateValidation bool
}

// PendingCheck names a check a SoftPass defers to pricing-unit scope.
type PendingCheck int

const (
	// PendingGeoScope: the rule's geo reference needs sub-journey or
	// journey structure.
	PendingGeoScope PendingCheck = iota
	// PendingReservation: reservation deadlines depend on the pricing unit
	// origin.
	PendingReservation
	// PendingTicketing: ticketing deadlines depend on the pricing unit
	// origin.
	PendingTicketing
	// PendingStay: the stay window needs the return portion of the unit.
	PendingStay
	// PendingConfirmation: the confirmed-sector scan needs the turnaround
	// boundary.
	PendingConfirmation
)

// String returns the diagnostic name of the pending check.
func (p PendingCheck) String() string {
	switch p {
	case PendingGeoScope:
		return "GEO SCOPE"
	case PendingReservation:
		return "RESERVATION"
	case PendingTicketing:
		return "TICKETING"
	case PendingStay:
		return "STAY"
	case PendingConfirmation:
		return "CONFIRMATION"
	default:
		return "UNKNOWN"
	}
}

// Result is one validator invocation's outcome. Pending is only populated
// alongside SoftPass/StopSoft; Rebook only when Config.AllowRebook let an
// unconfirmed sector pass.
type Result struct {
	Verdict Verdict

	// Pending lists what must be re-checked at pricing-unit scope.
	Pending []PendingCheck

	// Rebook marks segments that must be re-booked to their ticketed
	// booking code for the verdict to hold.
	Rebook map[*types.TravelSegment]bool
}

func verdictResult(v Verdict) Result { return Result{Verdict: v} }

func softResult(pending ...PendingCheck) Result {
	return Result{Verdict: SoftPass, Pending: pending}
}

// Validator validates category rule records against itinerary structure.
// Safe for concurrent use; all mutable state lives in the per-call Result
// and in the monotonic deadline fields of the fare structures themselves.
type Validator struct {
	cfg  Config
	geo  GeoLookup
	diag Collector
}

// NewValidator builds a validator over the given geo catalog. A nil diag
// discards diagnostics.
func NewValidator(cfg Config, geo GeoLookup, diag Collector) *Validator {
	if diag == nil {
		diag = NopCollector{}
	}
	return &Validator{cfg: cfg, geo: geo, diag: diag}
}

// ValidateFareComponent validates a record at fare-component scope.
func (v *Validator) ValidateFareComponent(rule types.CategoryRule, itin *types.Itinerary, fc *types.FareComponent) Result {
	if res, done := v.checkUnavailable(rule); done {
		return res
	}
	switch r := rule.(type) {
	case *types.AdvanceResTktRule:
		return v.validateAdvResTkt(r, itin, fc, nil, nil)
	case *types.MinStayRule:
		return v.validateMinStayFC(r, itin, fc)
	case *types.MaxStayRule:
		return v.validateMaxStayFC(r, itin, fc)
	}
	v.diag.Printf("CATEGORY %d: UNKNOWN RECORD TYPE - SKIP\n", rule.Category())
	return verdictResult(Skip)
}

// ValidatePricingUnit validates a record at pricing-unit scope for one fare
// usage.
func (v *Validator) ValidatePricingUnit(rule types.CategoryRule, itin *types.Itinerary, pu *types.PricingUnit, fu *types.FareUsage) Result {
	if res, done := v.checkUnavailable(rule); done {
		return res
	}
	switch r := rule.(type) {
	case *types.AdvanceResTktRule:
		return v.validateAdvResTkt(r, itin, fu.Component, pu, fu)
	case *types.MinStayRule:
		return v.validateMinStayPU(r, itin, pu, fu)
	case *types.MaxStayRule:
		return v.validateMaxStayPU(r, itin, pu, fu)
	}
	v.diag.Printf("CATEGORY %d: UNKNOWN RECORD TYPE - SKIP\n", rule.Category())
	return verdictResult(Skip)
}

// checkUnavailable handles the shared unavailability preamble: incomplete
// records fail, text-only records skip.
func (v *Validator) checkUnavailable(rule types.CategoryRule) (Result, bool) {
	switch rule.Unavailable() {
	case types.TagUnavailable:
		v.diag.Printf("CATEGORY %d ITEM %d: DATA UNAVAILABLE - FAIL\n",
			rule.Category(), rule.Key().Item)
		return verdictResult(Fail), true
	case types.TagTextOnly:
		v.diag.Printf("CATEGORY %d ITEM %d: TEXT ONLY - SKIP\n",
			rule.Category(), rule.Key().Item)
		return verdictResult(Skip), true
	}
	return Result{}, false
}
