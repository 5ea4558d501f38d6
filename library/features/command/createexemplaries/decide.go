package createexemplaries

import (
	"time"

	"github.com/mediatheque/exemplary-lifecycle-go/library/core"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
)

// Decide implements the business logic to determine whether the exemplaries
// may be created. This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: a book and a target location
//	WHEN: CreateExemplaries command is received
//	THEN: the exemplaries are created, on the shelf or in the reserve
//	ERROR: "book does not exist" if the book is unknown to the catalog
//	ERROR: "shelf does not exist" if a target shelf is given but unknown
//	ERROR: "date must not be in the future" if the acquisition date is after today
func Decide(bookExists bool, shelfExists bool, command Command, today time.Time) core.DecisionResult {
	if command.AcquisitionDate.After(lifecycle.ToLedgerDate(today)) {
		return core.RejectedDecision(core.ErrDateInFuture)
	}

	if !bookExists {
		return core.RejectedDecision(core.ErrBookNotFound)
	}

	if !command.TargetsReserve() && !shelfExists {
		return core.RejectedDecision(core.ErrShelfNotFound)
	}

	return core.AcceptedDecision()
}
