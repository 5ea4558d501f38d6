package core

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrExemplaryNotFound is returned when a command addresses an exemplary
	// that does not exist in the catalog.
	ErrExemplaryNotFound = errors.New("exemplary does not exist")

	// ErrExemplaryNotAvailable is returned when a borrow addresses an
	// exemplary that is not available for checkout.
	ErrExemplaryNotAvailable = errors.New("exemplary is not available")

	// ErrExemplaryBorrowed is returned when a placement command addresses an
	// exemplary that is currently checked out.
	ErrExemplaryBorrowed = errors.New("exemplary is currently borrowed")

	// ErrExemplaryInQuarantine is returned when a placement command addresses
	// an exemplary whose quarantine window has not elapsed yet.
	ErrExemplaryInQuarantine = errors.New("exemplary is still in quarantine")

	// ErrExemplaryNotBorrowed is returned when a return addresses an
	// exemplary without an open checkout.
	ErrExemplaryNotBorrowed = errors.New("exemplary is not borrowed")

	// ErrQuarantineStillActive is returned when a return-to-shelf action is
	// attempted before the quarantine window has elapsed.
	ErrQuarantineStillActive = errors.New("quarantine window has not elapsed")

	// ErrNotPastQuarantine is returned when a return-to-shelf action
	// addresses an exemplary that is not waiting past its quarantine.
	ErrNotPastQuarantine = errors.New("exemplary is not past quarantine")

	// ErrDateInFuture is returned when a command carries a business date
	// after today.
	ErrDateInFuture = errors.New("date must not be in the future")

	// ErrReturnBeforeCheckout is returned when a return date precedes the
	// checkout date of the open checkout.
	ErrReturnBeforeCheckout = errors.New("return date precedes the checkout date")

	// ErrShelfNotFound is returned when a placement command addresses a
	// shelf that does not exist.
	ErrShelfNotFound = errors.New("shelf does not exist")

	// ErrBookNotFound is returned when a command addresses a book that does
	// not exist in the catalog.
	ErrBookNotFound = errors.New("book does not exist")

	// ErrAuthorsDiffer is returned when a fuse addresses books written by
	// different authors.
	ErrAuthorsDiffer = errors.New("books by different authors cannot be fused")

	// ErrSurvivorAmongDuplicates is returned when the surviving book of a
	// fuse is also listed as a duplicate.
	ErrSurvivorAmongDuplicates = errors.New("surviving book must not be among the duplicates")
)

// RuleViolation ties a business rule violation to the exemplary it concerns.
// It unwraps to the underlying rule sentinel so callers can match with errors.Is.
type RuleViolation struct {
	ExemplaryID uuid.UUID
	Rule        error
}

func (v RuleViolation) Error() string {
	return fmt.Sprintf("exemplary %s: %s", v.ExemplaryID, v.Rule)
}

func (v RuleViolation) Unwrap() error {
	return v.Rule
}

// ViolationFor wraps a rule sentinel with the exemplary it was violated by.
func ViolationFor(exemplaryID uuid.UUID, rule error) error {
	return RuleViolation{ExemplaryID: exemplaryID, Rule: rule}
}
