package lifecycle

import (
	"errors"
	"time"
)

var (
	// ErrNilCheckoutLedger is returned when an Engine is constructed without a ledger.
	ErrNilCheckoutLedger = errors.New("checkout ledger must not be nil")

	// ErrExemplaryAlreadyBorrowed is returned by ledger write paths when an open
	// checkout already exists for the exemplary (write-time exclusivity).
	ErrExemplaryAlreadyBorrowed = errors.New("exemplary already has an open checkout")

	// ErrNoOpenCheckout is returned by ledger write paths when a return is
	// attempted for an exemplary that has no open checkout.
	ErrNoOpenCheckout = errors.New("exemplary has no open checkout")

	// ErrUnknownDerivedField is returned when a Predicate references a derived
	// field outside the closed set of evaluator fields.
	ErrUnknownDerivedField = errors.New("unknown derived field in predicate")

	// ErrUnknownOperator is returned when a Predicate carries an operator other
	// than equals / not-equals.
	ErrUnknownOperator = errors.New("unknown predicate operator")
)

// ExemplaryIDString represents an exemplary identifier in its string form.
type ExemplaryIDString = string

// ToLedgerDate normalizes a timestamp to a calendar date (UTC, midnight).
// All checkout and quarantine arithmetic operates on whole days.
func ToLedgerDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
