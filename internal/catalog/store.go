// internal/catalog/store.go
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/qustavo/dotsql"

	"github.com/skylane/fareguard/internal/rules"
	"github.com/skylane/fareguard/internal/types"
)

//go:embed queries/*.sql
var queriesFS embed.FS

// catalogDateLayout is how rule dates are stored in the catalog tables.
const catalogDateLayout = "2006-01-02"

// Store reads the rule catalog out of the database using named queries
// loaded from embedded .sql files.
type Store struct {
	dot  *dotsql.DotSql
	conn *sqlx.DB
}

// NewStore loads the embedded named queries against the given connection.
func NewStore(conn *sqlx.DB) (*Store, error) {
	var combined strings.Builder
	err := fs.WalkDir(queriesFS, "queries", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".sql" {
			return nil
		}
		content, err := queriesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		combined.Write(content)
		combined.WriteByte('\n')
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load query files: %w", err)
	}

	dot, err := dotsql.LoadFromString(combined.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse queries: %w", err)
	}
	return &Store{dot: dot, conn: conn}, nil
}

// LoadCatalog reads every rule and geo record into a fresh catalog.
func (s *Store) LoadCatalog() (*Catalog, error) {
	c := New()
	if err := s.loadAdvResTkt(c); err != nil {
		return nil, err
	}
	if err := s.loadMinStay(c); err != nil {
		return nil, err
	}
	if err := s.loadMaxStay(c); err != nil {
		return nil, err
	}
	if err := s.loadGeo(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) selectNamed(name string, dest any) error {
	query, err := s.dot.Raw(name)
	if err != nil {
		return fmt.Errorf("query not found: %s", name)
	}
	return s.conn.Select(dest, s.conn.Rebind(query))
}

type advRow struct {
	Vendor          string `db:"vendor"`
	Carrier         string `db:"carrier"`
	Tariff          int    `db:"tariff"`
	Rule            string `db:"rule"`
	Item            int    `db:"item"`
	UnavailTag      string `db:"unavail_tag"`
	Effective       string `db:"effective"`
	Discontinue     string `db:"discontinue"`
	FirstResPeriod  string `db:"first_res_period"`
	FirstResUnit    string `db:"first_res_unit"`
	FirstResTOD     int    `db:"first_res_tod"`
	LastResPeriod   string `db:"last_res_period"`
	LastResUnit     string `db:"last_res_unit"`
	LastResTOD      int    `db:"last_res_tod"`
	NotPermitted    bool   `db:"not_permitted"`
	WaiverResDate   string `db:"waiver_res_date"`
	WaiverTktDate   string `db:"waiver_tkt_date"`
	TktPeriod       string `db:"tkt_period"`
	TktUnit         string `db:"tkt_unit"`
	TktTOD          int    `db:"tkt_tod"`
	DepartPeriod    string `db:"depart_period"`
	DepartUnit      string `db:"depart_unit"`
	DepartOpt       string `db:"depart_opt"`
	BothInd         string `db:"both_ind"`
	ExcPeriod       string `db:"exc_period"`
	ExcUnit         string `db:"exc_unit"`
	GeoTable        int    `db:"geo_table"`
	EachSector      bool   `db:"each_sector"`
	ConfirmedSector string `db:"confirmed_sector"`
}

func (s *Store) loadAdvResTkt(c *Catalog) error {
	var rows []advRow
	if err := s.selectNamed("list-adv-res-tkt-rules", &rows); err != nil {
		return fmt.Errorf("failed to load advance res/tkt rules: %w", err)
	}
	for _, row := range rows {
		rec := &types.AdvanceResTktRule{
			RuleKey:         ruleKey(row.Vendor, row.Carrier, row.Tariff, row.Rule, row.Item),
			UnavailTag:      types.UnavailableTag(firstByte(row.UnavailTag)),
			Effective:       parseDate(row.Effective),
			Discontinue:     parseDate(row.Discontinue),
			FirstResPeriod:  row.FirstResPeriod,
			FirstResUnit:    row.FirstResUnit,
			FirstResTOD:     row.FirstResTOD,
			LastResPeriod:   row.LastResPeriod,
			LastResUnit:     row.LastResUnit,
			LastResTOD:      row.LastResTOD,
			NotPermitted:    row.NotPermitted,
			WaiverResDate:   parseDate(row.WaiverResDate),
			WaiverTktDate:   parseDate(row.WaiverTktDate),
			TktPeriod:       row.TktPeriod,
			TktUnit:         row.TktUnit,
			TktTOD:          row.TktTOD,
			DepartPeriod:    row.DepartPeriod,
			DepartUnit:      row.DepartUnit,
			DepartOpt:       types.TicketedOption(firstByte(row.DepartOpt)),
			BothInd:         types.EarlierLater(firstByte(row.BothInd)),
			ExcPeriod:       row.ExcPeriod,
			ExcUnit:         row.ExcUnit,
			GeoTable:        types.GeoTableRef(row.GeoTable),
			EachSector:      row.EachSector,
			ConfirmedSector: types.ConfirmedSector(firstByte(row.ConfirmedSector)),
		}
		c.PutAdvResTkt(rec)
	}
	return nil
}

type minStayRow struct {
	Vendor       string `db:"vendor"`
	Carrier      string `db:"carrier"`
	Tariff       int    `db:"tariff"`
	Rule         string `db:"rule"`
	Item         int    `db:"item"`
	UnavailTag   string `db:"unavail_tag"`
	Effective    string `db:"effective"`
	Discontinue  string `db:"discontinue"`
	MinStay      string `db:"min_stay"`
	MinStayUnit  string `db:"min_stay_unit"`
	MinStayDate  string `db:"min_stay_date"`
	EarlierLater string `db:"earlier_later"`
	TOD          int    `db:"tod"`
	OriginDOW    string `db:"origin_dow"`
	GeoFrom      int    `db:"geo_from"`
	GeoTo        int    `db:"geo_to"`
}

func (s *Store) loadMinStay(c *Catalog) error {
	var rows []minStayRow
	if err := s.selectNamed("list-min-stay-rules", &rows); err != nil {
		return fmt.Errorf("failed to load minimum stay rules: %w", err)
	}
	for _, row := range rows {
		c.PutMinStay(&types.MinStayRule{
			RuleKey:      ruleKey(row.Vendor, row.Carrier, row.Tariff, row.Rule, row.Item),
			UnavailTag:   types.UnavailableTag(firstByte(row.UnavailTag)),
			Effective:    parseDate(row.Effective),
			Discontinue:  parseDate(row.Discontinue),
			MinStay:      row.MinStay,
			MinStayUnit:  row.MinStayUnit,
			MinStayDate:  parseDate(row.MinStayDate),
			EarlierLater: types.EarlierLater(firstByte(row.EarlierLater)),
			TOD:          row.TOD,
			OriginDOW:    row.OriginDOW,
			GeoFrom:      types.GeoTableRef(row.GeoFrom),
			GeoTo:        types.GeoTableRef(row.GeoTo),
		})
	}
	return nil
}

type maxStayRow struct {
	Vendor             string `db:"vendor"`
	Carrier            string `db:"carrier"`
	Tariff             int    `db:"tariff"`
	Rule               string `db:"rule"`
	Item               int    `db:"item"`
	UnavailTag         string `db:"unavail_tag"`
	Effective          string `db:"effective"`
	Discontinue        string `db:"discontinue"`
	MaxStay            string `db:"max_stay"`
	MaxStayUnit        string `db:"max_stay_unit"`
	MaxStayDate        string `db:"max_stay_date"`
	EarlierLater       string `db:"earlier_later"`
	TOD                int    `db:"tod"`
	ReturnMustCommence bool   `db:"return_must_commence"`
	GeoFrom            int    `db:"geo_from"`
	GeoTo              int    `db:"geo_to"`
}

func (s *Store) loadMaxStay(c *Catalog) error {
	var rows []maxStayRow
	if err := s.selectNamed("list-max-stay-rules", &rows); err != nil {
		return fmt.Errorf("failed to load maximum stay rules: %w", err)
	}
	for _, row := range rows {
		c.PutMaxStay(&types.MaxStayRule{
			RuleKey:            ruleKey(row.Vendor, row.Carrier, row.Tariff, row.Rule, row.Item),
			UnavailTag:         types.UnavailableTag(firstByte(row.UnavailTag)),
			Effective:          parseDate(row.Effective),
			Discontinue:        parseDate(row.Discontinue),
			MaxStay:            row.MaxStay,
			MaxStayUnit:        row.MaxStayUnit,
			MaxStayDate:        parseDate(row.MaxStayDate),
			EarlierLater:       types.EarlierLater(firstByte(row.EarlierLater)),
			TOD:                row.TOD,
			ReturnMustCommence: row.ReturnMustCommence,
			GeoFrom:            types.GeoTableRef(row.GeoFrom),
			GeoTo:              types.GeoTableRef(row.GeoTo),
		})
	}
	return nil
}

type geoRow struct {
	Ref        int    `db:"ref"`
	Scope      string `db:"scope"`
	MatchPoint string `db:"match_point"`
	Loc1       string `db:"loc1"`
	Loc2       string `db:"loc2"`
}

func (s *Store) loadGeo(c *Catalog) error {
	var rows []geoRow
	if err := s.selectNamed("list-geo-tables", &rows); err != nil {
		return fmt.Errorf("failed to load geo tables: %w", err)
	}
	for _, row := range rows {
		scope, err := parseScope(row.Scope)
		if err != nil {
			return fmt.Errorf("geo table %d: %w", row.Ref, err)
		}
		point, err := parseMatchPoint(row.MatchPoint)
		if err != nil {
			return fmt.Errorf("geo table %d: %w", row.Ref, err)
		}
		c.PutGeo(rules.GeoTableEntry{
			Ref:   types.GeoTableRef(row.Ref),
			Scope: scope,
			Point: point,
			Loc1:  types.LocationCode(row.Loc1),
			Loc2:  types.LocationCode(row.Loc2),
		})
	}
	return nil
}

func ruleKey(vendor, carrier string, tariff int, rule string, item int) types.RuleKey {
	return types.RuleKey{
		Vendor:  types.VendorCode(vendor),
		Carrier: types.CarrierCode(carrier),
		Tariff:  tariff,
		Rule:    rule,
		Item:    item,
	}
}

// firstByte returns the stored single-character tag, with empty treated as
// the filed blank.
func firstByte(s string) byte {
	if s == "" {
		return ' '
	}
	return s[0]
}

// parseDate is lenient: rule dates are optional and an empty or malformed
// value means "not filed".
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(catalogDateLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

func parseScope(s string) (rules.TSIClass, error) {
	switch strings.TrimSpace(s) {
	case "FC", "":
		return rules.TSIScopeFareComponent, nil
	case "SJ":
		return rules.TSIScopeSubJourney, nil
	case "J":
		return rules.TSIScopeJourney, nil
	case "SJFC":
		return rules.TSIScopeSJAndFC, nil
	}
	return 0, fmt.Errorf("unknown geo scope %q", s)
}

func parseMatchPoint(s string) (rules.MatchPoint, error) {
	switch strings.TrimSpace(s) {
	case "D", "":
		return rules.MatchDeparture, nil
	case "A":
		return rules.MatchArrival, nil
	case "E":
		return rules.MatchEither, nil
	}
	return 0, fmt.Errorf("unknown geo match point %q", s)
}
