package types

import "errors"

// Sentinel errors for fareguard validation and catalog operations.
var (
	// ErrInvalidPeriod indicates a malformed catalog period/unit pair.
	// Validators treat the affected sub-restriction as not filed rather
	// than failing the whole rule.
	ErrInvalidPeriod = errors.New("invalid period/unit specification")

	// ErrInvalidReference indicates a zero reference date-time was passed
	// to deadline computation (e.g. an undated open segment leaked in).
	ErrInvalidReference = errors.New("invalid reference date-time")

	// ErrNoScopeMatch indicates a geo reference resolved to zero travel
	// segments and the scope cannot be widened.
	ErrNoScopeMatch = errors.New("geo reference matches no travel segment")

	// ErrNeedsWiderScope indicates evaluation is only possible once the
	// pricing unit or fare path exists; validators surface it as SoftPass.
	ErrNeedsWiderScope = errors.New("geo scope requires pricing unit or journey structure")

	// ErrRecordNotFound indicates no catalog record matches the lookup key.
	ErrRecordNotFound = errors.New("catalog record not found")

	// ErrUnknownCategory indicates a rule record of a category this engine
	// does not validate.
	ErrUnknownCategory = errors.New("unknown rule category")
)
