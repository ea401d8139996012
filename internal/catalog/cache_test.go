package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/skylane/fareguard/internal/rules"
	"github.com/skylane/fareguard/internal/types"
)

func testKey(item int) types.RuleKey {
	return types.RuleKey{Vendor: "ATP", Carrier: "AA", Tariff: 1, Rule: "2000", Item: item}
}

func TestCatalog_RuleLookup(t *testing.T) {
	c := New()
	c.PutMinStay(&types.MinStayRule{RuleKey: testKey(10), MinStay: "003", MinStayUnit: "D"})

	rule, err := c.Rule(types.CategoryMinStay, testKey(10), time.Now())
	if err != nil {
		t.Fatalf("Rule error: %v", err)
	}
	if rule.Category() != types.CategoryMinStay || rule.Key().Item != 10 {
		t.Errorf("got category %d item %d", rule.Category(), rule.Key().Item)
	}

	if _, err := c.Rule(types.CategoryMinStay, testKey(11), time.Now()); !errors.Is(err, types.ErrRecordNotFound) {
		t.Errorf("missing item err = %v, want ErrRecordNotFound", err)
	}
	if _, err := c.Rule(types.Category(99), testKey(10), time.Now()); !errors.Is(err, types.ErrUnknownCategory) {
		t.Errorf("unknown category err = %v, want ErrUnknownCategory", err)
	}
}

func TestCatalog_EffectiveDating(t *testing.T) {
	c := New()
	c.PutAdvResTkt(&types.AdvanceResTktRule{
		RuleKey:     testKey(20),
		Effective:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Discontinue: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	})

	tests := []struct {
		name  string
		at    time.Time
		found bool
	}{
		{"inside the window", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), true},
		{"before effective", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), false},
		{"after discontinue", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), false},
		{"zero date matches anything", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Rule(types.CategoryAdvResTkt, testKey(20), tt.at)
			if found := err == nil; found != tt.found {
				t.Errorf("found = %v (err %v), want %v", found, err, tt.found)
			}
		})
	}
}

func TestCatalog_GeoLookup(t *testing.T) {
	c := New()
	c.PutGeo(rules.GeoTableEntry{Ref: 42, Scope: rules.TSIScopeJourney, Point: rules.MatchDeparture, Loc1: "CDG"})

	e, err := c.GeoTableEntry(42)
	if err != nil {
		t.Fatalf("GeoTableEntry error: %v", err)
	}
	if e.Scope != rules.TSIScopeJourney || e.Loc1 != "CDG" {
		t.Errorf("unexpected entry: %+v", e)
	}

	if _, err := c.GeoTableEntry(99); !errors.Is(err, types.ErrRecordNotFound) {
		t.Errorf("missing ref err = %v, want ErrRecordNotFound", err)
	}
}

func TestCatalog_PutReplaces(t *testing.T) {
	c := New()
	c.PutMaxStay(&types.MaxStayRule{RuleKey: testKey(30), MaxStay: "003", MaxStayUnit: "D"})
	c.PutMaxStay(&types.MaxStayRule{RuleKey: testKey(30), MaxStay: "006", MaxStayUnit: "M"})

	rule, err := c.Rule(types.CategoryMaxStay, testKey(30), time.Time{})
	if err != nil {
		t.Fatalf("Rule error: %v", err)
	}
	if got := rule.(*types.MaxStayRule).MaxStay; got != "006" {
		t.Errorf("MaxStay = %q, want the replacing record", got)
	}
}
