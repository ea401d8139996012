// Package catalog holds the in-memory rule catalog the validation engine
// resolves records and geo references against.
//
// Lookups are synchronous and allocation-free on the hot path: the full
// catalog is loaded up front (see store.go) and queried under a read lock.
// Effective dating is applied at lookup time against the ticketing date, so
// one key can be refreshed in place without touching the engine.
package catalog

import (
	"fmt"
	"sync"
	"time"

	"github.com/skylane/fareguard/internal/rules"
	"github.com/skylane/fareguard/internal/types"
)

// Catalog is the in-memory rule and geo store. Safe for concurrent use.
type Catalog struct {
	mu  sync.RWMutex
	adv map[types.RuleKey]*types.AdvanceResTktRule
	min map[types.RuleKey]*types.MinStayRule
	max map[types.RuleKey]*types.MaxStayRule
	geo map[types.GeoTableRef]rules.GeoTableEntry
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		adv: make(map[types.RuleKey]*types.AdvanceResTktRule),
		min: make(map[types.RuleKey]*types.MinStayRule),
		max: make(map[types.RuleKey]*types.MaxStayRule),
		geo: make(map[types.GeoTableRef]rules.GeoTableEntry),
	}
}

// PutAdvResTkt stores or replaces an advance reservation/ticketing record.
func (c *Catalog) PutAdvResTkt(r *types.AdvanceResTktRule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.adv[r.RuleKey] = r
}

// PutMinStay stores or replaces a minimum-stay record.
func (c *Catalog) PutMinStay(r *types.MinStayRule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.min[r.RuleKey] = r
}

// PutMaxStay stores or replaces a maximum-stay record.
func (c *Catalog) PutMaxStay(r *types.MaxStayRule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.max[r.RuleKey] = r
}

// PutGeo stores or replaces a geo table entry.
func (c *Catalog) PutGeo(e rules.GeoTableEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.geo[e.Ref] = e
}

// GeoTableEntry implements rules.GeoLookup.
func (c *Catalog) GeoTableEntry(ref types.GeoTableRef) (rules.GeoTableEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.geo[ref]
	if !ok {
		return rules.GeoTableEntry{}, fmt.Errorf("geo table %d: %w", ref, types.ErrRecordNotFound)
	}
	return e, nil
}

// Rule returns the record for key in the given category that is effective
// at the given date-time. A record outside its effective window counts as
// not found.
func (c *Catalog) Rule(cat types.Category, key types.RuleKey, at time.Time) (types.CategoryRule, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var (
		rule                   types.CategoryRule
		effective, discontinue time.Time
		ok                     bool
	)
	switch cat {
	case types.CategoryAdvResTkt:
		var r *types.AdvanceResTktRule
		if r, ok = c.adv[key]; ok {
			rule, effective, discontinue = r, r.Effective, r.Discontinue
		}
	case types.CategoryMinStay:
		var r *types.MinStayRule
		if r, ok = c.min[key]; ok {
			rule, effective, discontinue = r, r.Effective, r.Discontinue
		}
	case types.CategoryMaxStay:
		var r *types.MaxStayRule
		if r, ok = c.max[key]; ok {
			rule, effective, discontinue = r, r.Effective, r.Discontinue
		}
	default:
		return nil, fmt.Errorf("category %d: %w", cat, types.ErrUnknownCategory)
	}

	if !ok {
		return nil, fmt.Errorf("category %d item %d: %w", cat, key.Item, types.ErrRecordNotFound)
	}
	if !effectiveAt(effective, discontinue, at) {
		return nil, fmt.Errorf("category %d item %d not effective at %s: %w",
			cat, key.Item, at.Format("2006-01-02"), types.ErrRecordNotFound)
	}
	return rule, nil
}

// Len reports the stored record counts per kind, for startup logging.
func (c *Catalog) Len() (adv, min, max, geo int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.adv), len(c.min), len(c.max), len(c.geo)
}

// effectiveAt checks a [effective, discontinue] window; zero bounds are
// open.
func effectiveAt(effective, discontinue, at time.Time) bool {
	if at.IsZero() {
		return true
	}
	if !effective.IsZero() && at.Before(effective) {
		return false
	}
	if !discontinue.IsZero() && at.After(discontinue) {
		return false
	}
	return true
}
