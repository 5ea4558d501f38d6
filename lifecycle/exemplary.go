package lifecycle

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrEmptyIdentifier is returned when an exemplary snapshot is built without an identifier.
	ErrEmptyIdentifier = errors.New("exemplary identifier must not be empty")

	// ErrStoredExemplaryHasLocation is returned when a snapshot claims to be in
	// storage while still referencing a shelf.
	ErrStoredExemplaryHasLocation = errors.New("an exemplary in storage must not have a shelf location")
)

// ExemplarySnapshot carries the stored fields of one exemplary that are
// relevant to lifecycle evaluation.
//
// A zero ShelfID means the exemplary has no shelf location (it is in the
// reserve or the quarantine area). A zero ReturnToShelfDate means the
// exemplary has not been through the explicit return-to-shelf action.
//
// While its properties are exported, it should only be constructed with the
// supplied factory method BuildExemplarySnapshot.
type ExemplarySnapshot struct {
	ID                uuid.UUID
	Identifier        ExemplaryIDString
	InStorage         bool
	ShelfID           uuid.UUID
	ReturnToShelfDate time.Time
}

// BuildExemplarySnapshot is a factory method for ExemplarySnapshot.
//
// It enforces the storage invariant: an exemplary flagged as in storage must
// not reference a shelf.
func BuildExemplarySnapshot(
	id uuid.UUID,
	identifier ExemplaryIDString,
	inStorage bool,
	shelfID uuid.UUID,
	returnToShelfDate time.Time,
) (ExemplarySnapshot, error) {

	if id == uuid.Nil {
		return ExemplarySnapshot{}, ErrNilExemplaryID
	}

	if identifier == "" {
		return ExemplarySnapshot{}, ErrEmptyIdentifier
	}

	if inStorage && shelfID != uuid.Nil {
		return ExemplarySnapshot{}, ErrStoredExemplaryHasLocation
	}

	snapshot := ExemplarySnapshot{
		ID:         id,
		Identifier: identifier,
		InStorage:  inStorage,
		ShelfID:    shelfID,
	}

	if !returnToShelfDate.IsZero() {
		snapshot.ReturnToShelfDate = ToLedgerDate(returnToShelfDate)
	}

	return snapshot, nil
}

// HasLocation reports whether the exemplary references a shelf.
func (e ExemplarySnapshot) HasLocation() bool {
	return e.ShelfID != uuid.Nil
}

// HasReturnToShelfDate reports whether the explicit return-to-shelf action
// has been recorded for the exemplary.
func (e ExemplarySnapshot) HasReturnToShelfDate() bool {
	return !e.ReturnToShelfDate.IsZero()
}
