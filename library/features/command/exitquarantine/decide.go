package exitquarantine

import (
	"time"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/library/core"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
)

// Decide implements the business logic to determine whether the exemplaries
// may leave the quarantine area. This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: a set of exemplaries waiting in the quarantine area
//	WHEN: ExitQuarantine command is received
//	THEN: the return-to-shelf date is stamped and the exemplaries go onto the shelf
//	ERROR: "date must not be in the future" if the return-to-shelf date is after today
//	ERROR: "shelf does not exist" if the target shelf is unknown
//	ERROR: "exemplary does not exist" if an exemplary is unknown to the catalog
//	ERROR: "quarantine window has not elapsed" if an exemplary is still mid-window
//	ERROR: "exemplary is not past quarantine" for any other state
//	IDEMPOTENCY: if every exemplary is already stamped and back on a shelf, no write happens (no-op)
func Decide(
	exemplaries []lifecycle.ExemplarySnapshot,
	evaluations map[uuid.UUID]lifecycle.Evaluation,
	shelfExists bool,
	command Command,
	today time.Time,
) core.DecisionResult {

	if command.ReturnToShelfDate.After(lifecycle.ToLedgerDate(today)) {
		return core.RejectedDecision(core.ErrDateInFuture)
	}

	if !shelfExists {
		return core.RejectedDecision(core.ErrShelfNotFound)
	}

	snapshotsByID := make(map[uuid.UUID]lifecycle.ExemplarySnapshot, len(exemplaries))
	for _, exemplary := range exemplaries {
		snapshotsByID[exemplary.ID] = exemplary
	}

	for _, id := range command.ExemplaryIDs {
		if _, found := snapshotsByID[id]; !found {
			return core.RejectedDecision(core.ViolationFor(id, core.ErrExemplaryNotFound))
		}
	}

	if allBackOnShelf(snapshotsByID, evaluations, command.ExemplaryIDs) {
		return core.IdempotentDecision() // idempotency - the quarantine exit already happened
	}

	for _, id := range command.ExemplaryIDs {
		evaluation := evaluations[id]

		if evaluation.IsInQuarantine {
			return core.RejectedDecision(core.ViolationFor(id, core.ErrQuarantineStillActive))
		}

		if !evaluation.IsPastQuarantine {
			return core.RejectedDecision(core.ViolationFor(id, core.ErrNotPastQuarantine))
		}
	}

	return core.AcceptedDecision()
}

func allBackOnShelf(
	snapshotsByID map[uuid.UUID]lifecycle.ExemplarySnapshot,
	evaluations map[uuid.UUID]lifecycle.Evaluation,
	exemplaryIDs []uuid.UUID,
) bool {

	for _, id := range exemplaryIDs {
		if !snapshotsByID[id].HasReturnToShelfDate() || !evaluations[id].IsAvailable {
			return false
		}
	}

	return true
}
