package matching

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrCounterDrift means a node's counters violate the Matched <= Business or
// Carry <= Business - Matched invariant. The node must not be mutated; it is
// flagged for manual review instead of being clamped, so no ledger history is
// lost.
var ErrCounterDrift = errors.New("node counters violate matching invariants")

// NodeState is the leg-pair bookkeeping of one tree node.
//
// Carry is the slice of (Business - Matched) deferred from previous runs;
// volume accrued since the last match is Business - Matched - Carry. Keeping
// carry as a subset rather than a separate pool is what conserves volume
// across runs: consuming carried volume advances Matched too, so nothing is
// ever counted twice.
type NodeState struct {
	LeftBusiness  decimal.Decimal
	RightBusiness decimal.Decimal
	LeftMatched   decimal.Decimal
	RightMatched  decimal.Decimal
	LeftCarry     decimal.Decimal
	RightCarry    decimal.Decimal
}

// MatchResult is the outcome of one MatchNode invocation.
type MatchResult struct {
	Matched decimal.Decimal // min of the two legs' available volume
	Capped  decimal.Decimal // matched volume after the power-capacity cap
	Bonus   decimal.Decimal // capped * binaryPct / 100
	State   NodeState       // updated node state
}

var hundred = decimal.NewFromInt(100)

// MatchNode consumes available volume on both legs, carry first then fresh
// business, caps the match at powerCapacity and prices the bonus at binaryPct.
// Bookkeeping proceeds even when the capped match is zero (negative or zero
// capacity): the full available volume on each leg rolls into that leg's
// carry, nothing is paid, nothing is lost.
//
// Matched is monotonically non-decreasing; Business is never touched.
func MatchNode(s NodeState, binaryPct, powerCapacity decimal.Decimal) (MatchResult, error) {
	leftAvail, err := available(s.LeftBusiness, s.LeftMatched, s.LeftCarry)
	if err != nil {
		return MatchResult{}, err
	}
	rightAvail, err := available(s.RightBusiness, s.RightMatched, s.RightCarry)
	if err != nil {
		return MatchResult{}, err
	}

	matched := decimal.Min(leftAvail, rightAvail)
	capped := decimal.Min(matched, powerCapacity)
	if capped.IsNegative() {
		capped = decimal.Zero
	}
	bonus := capped.Mul(binaryPct).Div(hundred)

	s.LeftMatched = s.LeftMatched.Add(capped)
	s.RightMatched = s.RightMatched.Add(capped)
	s.LeftCarry = leftAvail.Sub(capped)
	s.RightCarry = rightAvail.Sub(capped)

	return MatchResult{Matched: matched, Capped: capped, Bonus: bonus, State: s}, nil
}

// available returns carry + volume accrued since the last match. Both legs of
// the consumption model live here: the fresh slice is business - matched -
// carry, so the total is business - matched and carried volume is never
// re-counted after its leg's Matched advanced past it.
func available(business, matched, carry decimal.Decimal) (decimal.Decimal, error) {
	unabsorbed := business.Sub(matched)
	if unabsorbed.IsNegative() || carry.GreaterThan(unabsorbed) || carry.IsNegative() {
		return decimal.Zero, ErrCounterDrift
	}
	fresh := unabsorbed.Sub(carry)
	return carry.Add(fresh), nil
}
