// internal/rules/geoscope.go
package rules

import (
	"errors"
	"fmt"

	"github.com/skylane/fareguard/internal/types"
)

/*
 * Geographic scope resolution.
 *
 * A rule's geo table reference designates which travel segments the rule
 * applies to and whether the reference point is each segment's departure or
 * arrival. Resolution selects an ordered subset of itinerary segments and
 * tags each as origin-matched or destination-matched; the tag determines
 * which of the segment's two date-times downstream comparisons use.
 *
 * With no geo reference (ref 0) a default heuristic applies: all of the
 * fare component's segments at fare-component phase, or the pricing unit's
 * segments up to the turnaround point at pricing-unit phase. The default is
 * what lets most rules run during the earlier, cheaper phase.
 *
 * A concrete reference resolves through the catalog to a TSI scope class.
 * When the class requires structure not yet available (sub-journey or
 * journey scope while only a fare component is known), resolution signals
 * types.ErrNeedsWiderScope rather than guessing; the validator turns that
 * into a SoftPass.
 */

// ScopeParam is the scope the caller is validating at.
type ScopeParam int

const (
	ScopeFareComponent ScopeParam = iota
	ScopeSubJourney
	ScopePricingUnit
	ScopeJourney
)

// TSIClass is the scope class a geo table entry resolves to.
type TSIClass int

const (
	TSIScopeFareComponent TSIClass = iota
	TSIScopeSubJourney
	TSIScopeJourney
	// TSIScopeSJAndFC entries apply at sub-journey scope when a pricing
	// unit exists and degrade to fare-component scope before that.
	TSIScopeSJAndFC
)

// MatchPoint says which end of a segment a geo entry references.
type MatchPoint int

const (
	MatchDeparture MatchPoint = iota
	MatchArrival
	MatchEither
)

// GeoTableEntry is a resolved catalog geo specification.
type GeoTableEntry struct {
	Ref   types.GeoTableRef
	Scope TSIClass
	Point MatchPoint

	// Loc1/Loc2 restrict matching to segments touching these locations;
	// empty codes match any location.
	Loc1 types.LocationCode
	Loc2 types.LocationCode
}

// GeoLookup resolves geo table references against the catalog.
type GeoLookup interface {
	GeoTableEntry(ref types.GeoTableRef) (GeoTableEntry, error)
}

// ScopedSegment is one selected segment with its directional tags.
type ScopedSegment struct {
	Seg       *types.TravelSegment
	OrigMatch bool
	DestMatch bool
}

// ResolvedScope is the ordered segment subset a rule applies to, plus the
// TSI scope class actually used. Callers inspect Scope to decide whether a
// SoftPass was avoidable.
type ResolvedScope struct {
	Segments []ScopedSegment
	Scope    TSIClass
}

// First returns the first resolved segment, or nil.
func (r ResolvedScope) First() *ScopedSegment {
	if len(r.Segments) == 0 {
		return nil
	}
	return &r.Segments[0]
}

// ResolveScope selects the travel segments a rule's geo reference applies
// to. fc may be nil at pricing-unit phase; pu is nil at fare-component
// phase. Fails with types.ErrNoScopeMatch when the reference selects zero
// segments, and types.ErrNeedsWiderScope when evaluation is only possible
// once the pricing unit or journey exists.
func ResolveScope(lookup GeoLookup, ref types.GeoTableRef, param ScopeParam,
	itin *types.Itinerary, fc *types.FareComponent, pu *types.PricingUnit) (ResolvedScope, error) {

	if ref == 0 {
		return defaultScope(param, fc, pu)
	}

	entry, err := lookup.GeoTableEntry(ref)
	if err != nil {
		if errors.Is(err, types.ErrRecordNotFound) {
			return ResolvedScope{}, fmt.Errorf("geo table %d: %w", ref, err)
		}
		return ResolvedScope{}, err
	}

	candidates, err := scopeCandidates(entry.Scope, itin, fc, pu)
	if err != nil {
		return ResolvedScope{Scope: entry.Scope}, err
	}

	resolved := ResolvedScope{Scope: entry.Scope}
	for _, seg := range candidates {
		if !seg.IsAir() {
			continue
		}
		if tagged, ok := matchSegment(entry, seg); ok {
			resolved.Segments = append(resolved.Segments, tagged)
		}
	}
	if len(resolved.Segments) == 0 {
		return resolved, types.ErrNoScopeMatch
	}
	return resolved, nil
}

// defaultScope implements the no-geo-reference heuristic.
func defaultScope(param ScopeParam, fc *types.FareComponent, pu *types.PricingUnit) (ResolvedScope, error) {
	var segs []*types.TravelSegment
	scope := TSIScopeFareComponent
	switch {
	case param == ScopeFareComponent && fc != nil:
		segs = fc.Segments
	case pu != nil:
		segs = pu.SegmentsToTurnaround()
		scope = TSIScopeSubJourney
	case fc != nil:
		segs = fc.Segments
	}

	resolved := ResolvedScope{Scope: scope}
	for _, seg := range segs {
		if !seg.IsAir() {
			continue
		}
		resolved.Segments = append(resolved.Segments, ScopedSegment{Seg: seg, OrigMatch: true})
	}
	if len(resolved.Segments) == 0 {
		return resolved, types.ErrNoScopeMatch
	}
	return resolved, nil
}

// scopeCandidates picks the segment pool the entry's scope class draws
// from, or signals that the pool does not exist yet.
func scopeCandidates(scope TSIClass, itin *types.Itinerary, fc *types.FareComponent, pu *types.PricingUnit) ([]*types.TravelSegment, error) {
	switch scope {
	case TSIScopeFareComponent:
		if fc == nil {
			if pu == nil {
				return nil, types.ErrNoScopeMatch
			}
			return pu.Segments(), nil
		}
		return fc.Segments, nil
	case TSIScopeSubJourney:
		if pu == nil {
			return nil, types.ErrNeedsWiderScope
		}
		return pu.Segments(), nil
	case TSIScopeSJAndFC:
		if pu != nil {
			return pu.Segments(), nil
		}
		if fc == nil {
			return nil, types.ErrNeedsWiderScope
		}
		return fc.Segments, nil
	case TSIScopeJourney:
		// Journey scope needs fare path structure; the itinerary alone is
		// only trustworthy once pricing units exist.
		if pu == nil {
			return nil, types.ErrNeedsWiderScope
		}
		return itin.Segments, nil
	}
	return nil, types.ErrNoScopeMatch
}

// matchSegment applies the entry's location filter and directional tagging.
func matchSegment(entry GeoTableEntry, seg *types.TravelSegment) (ScopedSegment, bool) {
	origOK := locMatches(entry, seg.Origin)
	destOK := locMatches(entry, seg.Destination)

	tagged := ScopedSegment{Seg: seg}
	switch entry.Point {
	case MatchDeparture:
		tagged.OrigMatch = origOK
	case MatchArrival:
		tagged.DestMatch = destOK
	case MatchEither:
		tagged.OrigMatch = origOK
		tagged.DestMatch = destOK
	}
	return tagged, tagged.OrigMatch || tagged.DestMatch
}

// locMatches checks a point against the entry's location filter. An entry
// with neither location filed matches any point; once a location is filed
// the point must equal one of them.
func locMatches(entry GeoTableEntry, loc types.LocationCode) bool {
	if entry.Loc1 == "" && entry.Loc2 == "" {
		return true
	}
	return entry.Loc1 == loc || entry.Loc2 == loc
}
