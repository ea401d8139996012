// internal/rules/verdict.go
package rules

/*
 * Verdict type and combination algebra.
 *
 * A Verdict is the non-boolean outcome of one validator invocation:
 *
 *   Pass         restriction satisfied
 *   Fail         restriction violated; fare removed from this pricing context
 *   Skip         rule exists but does not constrain pricing (text only,
 *                "no restriction" sentinel, inapplicable day-of-week)
 *   SoftPass     not decidable at the current scope; the caller must re-run
 *                the same validator once the pricing unit or fare path exists
 *   Stop         terminal for the whole category sequence on this fare
 *   StopSoft     Stop, but the underlying result was a SoftPass
 *   NotProcessed validator declined to evaluate (e.g. ticketing waiver)
 *
 * Chain implements the left-to-right combination of sequential sub-results
 * with IF/AND/OR connectors:
 *   - IF seeds the running result.
 *   - AND short-circuits on a running Fail; a Fail after a SoftPass
 *     downgrades the chain to Fail; otherwise the new result replaces the
 *     running one.
 *   - OR is only evaluated when the running result is not already
 *     Pass/SoftPass, and its result replaces the running one.
 * Final mapping: a retained Fail yields Fail; otherwise a SoftPass seen
 * anywhere dominates a final Pass.
 */

// Verdict is the outcome of validating one rule against one fare scope.
type Verdict int

const (
	NotProcessed Verdict = iota
	Fail
	Pass
	Skip
	SoftPass
	Stop
	StopSoft
)

// String returns the diagnostic name of the verdict.
func (v Verdict) String() string {
	switch v {
	case NotProcessed:
		return "NOT PROCESSED"
	case Fail:
		return "FAIL"
	case Pass:
		return "PASS"
	case Skip:
		return "SKIP"
	case SoftPass:
		return "SOFTPASS"
	case Stop:
		return "STOP"
	case StopSoft:
		return "STOP SOFT"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the verdict ends rule processing for this fare
// at the current phase. SoftPass is not terminal: it carries an obligation
// to re-validate at wider scope.
func (v Verdict) Terminal() bool {
	return v == Fail || v == Stop || v == StopSoft
}

// Settled reports whether the verdict needs no pricing-unit re-validation.
func (v Verdict) Settled() bool {
	return v != SoftPass && v != StopSoft
}

// Connector joins sequential sub-results within one validator run.
type Connector int

const (
	ConnIf Connector = iota
	ConnAnd
	ConnOr
)

// Chain combines sub-results left to right. The zero value is ready to use;
// a chain with no applied results yields NotProcessed.
type Chain struct {
	current Verdict
	sawSoft bool
	started bool
}

// Apply evaluates the next sub-result under the given connector. eval is a
// thunk so OR branches are not evaluated when the running result already
// passes, and AND branches are not evaluated after a retained Fail.
func (c *Chain) Apply(conn Connector, eval func() Verdict) {
	switch conn {
	case ConnIf:
		c.set(eval())
	case ConnAnd:
		if c.started && c.current == Fail {
			return
		}
		v := eval()
		if c.current == SoftPass && v == Fail {
			c.current = Fail
			return
		}
		c.set(v)
	case ConnOr:
		if c.started && (c.current == Pass || c.current == SoftPass) {
			return
		}
		c.set(eval())
	}
}

func (c *Chain) set(v Verdict) {
	c.current = v
	c.started = true
	if v == SoftPass {
		c.sawSoft = true
	}
}

// Result returns the combined verdict of the chain.
func (c *Chain) Result() Verdict {
	if !c.started {
		return NotProcessed
	}
	if c.current == Pass && c.sawSoft {
		return SoftPass
	}
	return c.current
}
