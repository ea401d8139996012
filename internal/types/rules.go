// internal/types/rules.go
package types

import "time"

/*
 * Catalog rule records for the temporal rule categories.
 *
 * One struct per category, all implementing CategoryRule. Records are
 * immutable once loaded from the catalog; the validation engine reads them
 * but never writes. Period/unit pairs stay in their raw catalog encoding
 * (3-character period, 1-2 character unit) and are parsed by the engine,
 * so malformed catalog data degrades at validation time per category
 * ("ignore this sub-restriction") instead of failing the whole load.
 *
 * Key types:
 *   - RuleKey: vendor/carrier/tariff/rule/item catalog key
 *   - AdvanceResTktRule: advance reservation and ticketing deadlines (cat 5)
 *   - MinStayRule: minimum stay before return travel (cat 6)
 *   - MaxStayRule: maximum stay before return travel (cat 7)
 */

// Category numbers a temporal rule category, following the filed category
// numbering of carrier rule tariffs.
type Category int

const (
	CategoryAdvResTkt Category = 5
	CategoryMinStay   Category = 6
	CategoryMaxStay   Category = 7
)

// RuleKey identifies a rule item within the catalog.
type RuleKey struct {
	Vendor  VendorCode
	Carrier CarrierCode
	Tariff  int
	Rule    string
	Item    int
}

// UnavailableTag is the rule record's availability marker.
type UnavailableTag byte

const (
	// TagAvailable marks a fully usable record.
	TagAvailable UnavailableTag = ' '
	// TagUnavailable marks an incomplete record; validation must fail.
	TagUnavailable UnavailableTag = 'X'
	// TagTextOnly marks a record that exists only as rule text and does
	// not constrain pricing; validation skips it.
	TagTextOnly UnavailableTag = 'Y'
)

// GeoTableRef references a geo specification table entry; zero means the
// rule carries no geo reference and default scope applies.
type GeoTableRef int

// EarlierLater selects which of two competing dates applies.
type EarlierLater byte

const (
	EarlierLaterNone EarlierLater = ' '
	ApplyEarlier     EarlierLater = 'E'
	ApplyLater       EarlierLater = 'L'
)

// ConfirmedSector says which sectors an advance-reservation rule requires
// confirmed space on.
type ConfirmedSector byte

const (
	// ConfirmToTurnaround: all sectors of all fare components within the
	// pricing unit prior to the turnaround point (the filed default).
	ConfirmToTurnaround ConfirmedSector = ' '
	// ConfirmFirstSector: only the first sector of the first fare
	// component of the pricing unit.
	ConfirmFirstSector ConfirmedSector = 'F'
	// ConfirmAllSectors: every sector in the pricing unit.
	ConfirmAllSectors ConfirmedSector = 'A'
	// ConfirmAllNoOpenReturn: every sector, but open return sectors are
	// tolerated.
	ConfirmAllNoOpenReturn ConfirmedSector = 'R'
)

// TicketedOption selects how a before-departure ticketing limit applies.
type TicketedOption byte

const (
	TicketedNone TicketedOption = ' '
	// TicketedLatestBeforeDeparture: ticket no later than the limit.
	TicketedLatestBeforeDeparture TicketedOption = 'L'
	// TicketedEarliestPermitted: ticket no earlier than the limit.
	TicketedEarliestPermitted TicketedOption = 'E'
)

// CategoryRule is the tagged-union surface shared by all category records.
// The validation engine type-switches on the concrete record to dispatch
// category semantics; these accessors cover the shared preamble.
type CategoryRule interface {
	Category() Category
	Key() RuleKey
	Unavailable() UnavailableTag
}

// AdvanceResTktRule is an advance reservation/ticketing restriction record.
type AdvanceResTktRule struct {
	RuleKey     RuleKey
	UnavailTag  UnavailableTag
	Effective   time.Time
	Discontinue time.Time

	// Reservation window, measured before departure of the pricing unit
	// origin (or the segment a geo reference selects). First = earliest
	// reservation permitted, Last = latest reservation required.
	FirstResPeriod string
	FirstResUnit   string
	FirstResTOD    int // minutes after midnight, 0 = not filed
	LastResPeriod  string
	LastResUnit    string
	LastResTOD     int

	// NotPermitted forbids advance reservation entirely; reservations must
	// be made on the departure date.
	NotPermitted bool

	// WaiverResDate / WaiverTktDate: bookings or tickets issued before the
	// waiver date bypass the corresponding restriction.
	WaiverResDate time.Time
	WaiverTktDate time.Time

	// Ticketing measured after reservation.
	TktPeriod string
	TktUnit   string
	TktTOD    int

	// Ticketing measured before departure.
	DepartPeriod string
	DepartUnit   string
	DepartOpt    TicketedOption

	// BothInd tie-breaks when both ticketing limits are filed.
	BothInd EarlierLater

	// Exception window: reservations made after departure-minus-ExcPeriod
	// void the ticketing restrictions.
	ExcPeriod string
	ExcUnit   string

	GeoTable GeoTableRef

	// EachSector forces fare-component scope: every sector is validated
	// individually.
	EachSector bool

	ConfirmedSector ConfirmedSector
}

func (r *AdvanceResTktRule) Category() Category          { return CategoryAdvResTkt }
func (r *AdvanceResTktRule) Key() RuleKey                { return r.RuleKey }
func (r *AdvanceResTktRule) Unavailable() UnavailableTag { return r.UnavailTag }

// MinStayRule is a minimum-stay restriction record.
type MinStayRule struct {
	RuleKey     RuleKey
	UnavailTag  UnavailableTag
	Effective   time.Time
	Discontinue time.Time

	// MinStay is the raw period: "000"-"999" or a weekday abbreviation;
	// "000" means no minimum stay.
	MinStay     string
	MinStayUnit string

	// MinStayDate is a fixed earliest-return date alternative; EarlierLater
	// arbitrates when both the period and the date are filed.
	MinStayDate  time.Time
	EarlierLater EarlierLater

	// TOD bounds the earliest return time on the computed day.
	TOD int

	// OriginDOW restricts which weekdays outbound travel may start on,
	// as a string of digits 1 (Monday) through 7 (Sunday).
	OriginDOW string

	GeoFrom GeoTableRef
	GeoTo   GeoTableRef
}

func (r *MinStayRule) Category() Category          { return CategoryMinStay }
func (r *MinStayRule) Key() RuleKey                { return r.RuleKey }
func (r *MinStayRule) Unavailable() UnavailableTag { return r.UnavailTag }

// MaxStayRule is a maximum-stay restriction record.
type MaxStayRule struct {
	RuleKey     RuleKey
	UnavailTag  UnavailableTag
	Effective   time.Time
	Discontinue time.Time

	// MaxStay is the raw period; the one-year encoding (365 days or 12
	// months) means no maximum stay restriction.
	MaxStay     string
	MaxStayUnit string

	MaxStayDate  time.Time
	EarlierLater EarlierLater

	TOD int

	// ReturnMustCommence: the limit applies to departure of the return
	// segment; otherwise to completion of travel.
	ReturnMustCommence bool

	GeoFrom GeoTableRef
	GeoTo   GeoTableRef
}

func (r *MaxStayRule) Category() Category          { return CategoryMaxStay }
func (r *MaxStayRule) Key() RuleKey                { return r.RuleKey }
func (r *MaxStayRule) Unavailable() UnavailableTag { return r.UnavailTag }
