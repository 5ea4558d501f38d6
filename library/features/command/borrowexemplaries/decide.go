package borrowexemplaries

import (
	"time"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/library/core"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
)

// Decide implements the business logic to determine whether the exemplaries
// may be borrowed. This is a pure function with no side effects - it takes
// the current lifecycle state and a command and returns the decision based
// on the business rules.
//
// Business Rules:
//
//	GIVEN: a set of exemplaries and a user
//	WHEN: BorrowExemplaries command is received
//	THEN: one checkout is opened per exemplary
//	ERROR: "date must not be in the future" if the checkout date is after today
//	ERROR: "exemplary does not exist" if an exemplary is unknown to the catalog
//	ERROR: "exemplary is not available" if an exemplary is borrowed, quarantined, or in the reserve
//	IDEMPOTENCY: if every exemplary is already checked out by this user, no write happens (no-op)
func Decide(
	exemplaries []lifecycle.ExemplarySnapshot,
	evaluations map[uuid.UUID]lifecycle.Evaluation,
	openCheckouts []lifecycle.CheckoutRecord,
	command Command,
	today time.Time,
) core.DecisionResult {

	if command.CheckoutDate.After(lifecycle.ToLedgerDate(today)) {
		return core.RejectedDecision(core.ErrDateInFuture)
	}

	known := make(map[uuid.UUID]bool, len(exemplaries))
	for _, exemplary := range exemplaries {
		known[exemplary.ID] = true
	}

	openByThisUser := make(map[uuid.UUID]bool, len(openCheckouts))
	for _, record := range openCheckouts {
		if record.UserID == command.UserID {
			openByThisUser[record.ExemplaryID] = true
		}
	}

	for _, id := range command.ExemplaryIDs {
		if !known[id] {
			return core.RejectedDecision(core.ViolationFor(id, core.ErrExemplaryNotFound))
		}
	}

	if allBorrowedBy(openByThisUser, command.ExemplaryIDs) {
		return core.IdempotentDecision() // idempotency - this user already holds every exemplary
	}

	for _, id := range command.ExemplaryIDs {
		if !evaluations[id].IsAvailable {
			return core.RejectedDecision(core.ViolationFor(id, core.ErrExemplaryNotAvailable))
		}
	}

	return core.AcceptedDecision()
}

func allBorrowedBy(openByUser map[uuid.UUID]bool, exemplaryIDs []uuid.UUID) bool {
	for _, id := range exemplaryIDs {
		if !openByUser[id] {
			return false
		}
	}

	return true
}
