package returnexemplaries

import (
	"time"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/library/core"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
)

// Decide implements the business logic to determine whether the exemplaries
// may be returned. This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: a set of exemplaries with open checkouts
//	WHEN: ReturnExemplaries command is received
//	THEN: each open checkout is closed with the return date
//	ERROR: "date must not be in the future" if the return date is after today
//	ERROR: "return date precedes the checkout date" if a checkout was opened later
//	ERROR: "exemplary is not borrowed" if some but not all exemplaries lack an open checkout
//	IDEMPOTENCY: if none of the exemplaries has an open checkout, no write happens (no-op)
func Decide(
	openCheckouts []lifecycle.CheckoutRecord,
	command Command,
	today time.Time,
) core.DecisionResult {

	if command.ReturnDate.After(lifecycle.ToLedgerDate(today)) {
		return core.RejectedDecision(core.ErrDateInFuture)
	}

	openByExemplary := make(map[uuid.UUID]lifecycle.CheckoutRecord, len(openCheckouts))
	for _, record := range openCheckouts {
		openByExemplary[record.ExemplaryID] = record
	}

	borrowedCount := 0

	for _, id := range command.ExemplaryIDs {
		record, found := openByExemplary[id]
		if !found {
			continue
		}

		borrowedCount++

		if command.ReturnDate.Before(record.CheckoutDate) {
			return core.RejectedDecision(core.ViolationFor(id, core.ErrReturnBeforeCheckout))
		}
	}

	if borrowedCount == 0 {
		return core.IdempotentDecision() // idempotency - everything is already returned
	}

	if borrowedCount < len(command.ExemplaryIDs) {
		for _, id := range command.ExemplaryIDs {
			if _, found := openByExemplary[id]; !found {
				return core.RejectedDecision(core.ViolationFor(id, core.ErrExemplaryNotBorrowed))
			}
		}
	}

	return core.AcceptedDecision()
}
