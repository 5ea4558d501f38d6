package lifecycle

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNilExemplaryID is returned when a record is built without an exemplary reference.
	ErrNilExemplaryID = errors.New("exemplary id must not be nil")

	// ErrNilUserID is returned when a checkout record is built without a user reference.
	ErrNilUserID = errors.New("user id must not be nil")

	// ErrZeroCheckoutDate is returned when a checkout record is built without a checkout date.
	ErrZeroCheckoutDate = errors.New("checkout date must not be zero")

	// ErrReturnBeforeCheckout is returned when a return date precedes the checkout date.
	ErrReturnBeforeCheckout = errors.New("return date must not precede checkout date")
)

// CheckoutRecord is a DTO used to move borrow events between the
// CheckoutLedger and the engine.
//
// It is built on scalars to be agnostic of the ledger's storage layout.
// A zero ReturnDate means the checkout is still open.
//
// While its properties are exported, it should only be constructed with the
// supplied factory methods:
//   - BuildOpenCheckout
//   - BuildClosedCheckout
type CheckoutRecord struct {
	ExemplaryID  uuid.UUID
	UserID       uuid.UUID
	CheckoutDate time.Time
	ReturnDate   time.Time
}

// BuildOpenCheckout is a factory method for a CheckoutRecord with no return date.
func BuildOpenCheckout(exemplaryID uuid.UUID, userID uuid.UUID, checkoutDate time.Time) (CheckoutRecord, error) {
	if exemplaryID == uuid.Nil {
		return CheckoutRecord{}, ErrNilExemplaryID
	}

	if userID == uuid.Nil {
		return CheckoutRecord{}, ErrNilUserID
	}

	if checkoutDate.IsZero() {
		return CheckoutRecord{}, ErrZeroCheckoutDate
	}

	return CheckoutRecord{
		ExemplaryID:  exemplaryID,
		UserID:       userID,
		CheckoutDate: ToLedgerDate(checkoutDate),
	}, nil
}

// BuildClosedCheckout is a factory method for a CheckoutRecord with a return date.
// Returns an error if the return date precedes the checkout date.
func BuildClosedCheckout(
	exemplaryID uuid.UUID,
	userID uuid.UUID,
	checkoutDate time.Time,
	returnDate time.Time,
) (CheckoutRecord, error) {

	record, err := BuildOpenCheckout(exemplaryID, userID, checkoutDate)
	if err != nil {
		return CheckoutRecord{}, err
	}

	if ToLedgerDate(returnDate).Before(record.CheckoutDate) {
		return CheckoutRecord{}, ErrReturnBeforeCheckout
	}

	record.ReturnDate = ToLedgerDate(returnDate)

	return record, nil
}

// IsOpen reports whether the checkout has not been returned yet.
func (c CheckoutRecord) IsOpen() bool {
	return c.ReturnDate.IsZero()
}

// ExpectedReturnDate computes the due date for this checkout under the given policy.
func (c CheckoutRecord) ExpectedReturnDate(policy Policy) time.Time {
	return policy.ExpectedReturnDate(c.CheckoutDate)
}
