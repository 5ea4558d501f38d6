package lifecycle

import (
	"errors"
	"time"
)

const (
	// DefaultLoanPeriodDays is the loan period used when the host does not override it.
	DefaultLoanPeriodDays = 20

	// DefaultQuarantineDays is the post-return quarantine window used when the
	// host does not override it.
	DefaultQuarantineDays = 7
)

var (
	// ErrInvalidLoanPeriod is returned when a policy carries a non-positive loan period.
	ErrInvalidLoanPeriod = errors.New("loan period must be positive")

	// ErrInvalidQuarantineWindow is returned when a policy carries a negative quarantine window.
	ErrInvalidQuarantineWindow = errors.New("quarantine window must not be negative")
)

// Policy holds the configurable day counts that drive checkout and
// quarantine arithmetic. The zero value is not valid; construct with
// DefaultPolicy and adjust.
type Policy struct {
	LoanPeriodDays int
	QuarantineDays int
}

// DefaultPolicy returns the policy with the standard loan period and
// quarantine window.
func DefaultPolicy() Policy {
	return Policy{
		LoanPeriodDays: DefaultLoanPeriodDays,
		QuarantineDays: DefaultQuarantineDays,
	}
}

// Validate ensures the policy day counts are usable.
func (p Policy) Validate() error {
	if p.LoanPeriodDays <= 0 {
		return ErrInvalidLoanPeriod
	}

	if p.QuarantineDays < 0 {
		return ErrInvalidQuarantineWindow
	}

	return nil
}

// ExpectedReturnDate computes the date a checkout made on checkoutDate is due.
func (p Policy) ExpectedReturnDate(checkoutDate time.Time) time.Time {
	return ToLedgerDate(checkoutDate).AddDate(0, 0, p.LoanPeriodDays)
}

// QuarantineEnd computes the first date on which an exemplary returned on
// returnDate is out of quarantine.
func (p Policy) QuarantineEnd(returnDate time.Time) time.Time {
	return ToLedgerDate(returnDate).AddDate(0, 0, p.QuarantineDays)
}
