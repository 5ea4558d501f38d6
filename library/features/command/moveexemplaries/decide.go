package moveexemplaries

import (
	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/library/core"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
)

// Decide implements the business logic to determine whether the exemplaries
// may be moved. This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: a set of exemplaries and a target location
//	WHEN: MoveExemplaries command is received
//	THEN: the exemplaries are placed on the target shelf, or into the reserve
//	ERROR: "shelf does not exist" if a target shelf is given but unknown
//	ERROR: "exemplary does not exist" if an exemplary is unknown to the catalog
//	ERROR: "exemplary is currently borrowed" if an exemplary has an open checkout
//	ERROR: "exemplary is still in quarantine" if an exemplary's quarantine window is running
//	IDEMPOTENCY: if every exemplary is already at the target location, no write happens (no-op)
func Decide(
	exemplaries []lifecycle.ExemplarySnapshot,
	evaluations map[uuid.UUID]lifecycle.Evaluation,
	targetShelfExists bool,
	command Command,
) core.DecisionResult {

	if !command.TargetsReserve() && !targetShelfExists {
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

	for _, id := range command.ExemplaryIDs {
		evaluation := evaluations[id]

		if evaluation.Status == lifecycle.StatusBorrowed {
			return core.RejectedDecision(core.ViolationFor(id, core.ErrExemplaryBorrowed))
		}

		if evaluation.IsInQuarantine {
			return core.RejectedDecision(core.ViolationFor(id, core.ErrExemplaryInQuarantine))
		}
	}

	if allAtTarget(snapshotsByID, command) {
		return core.IdempotentDecision() // idempotency - everything is already where the move points
	}

	return core.AcceptedDecision()
}

func allAtTarget(snapshotsByID map[uuid.UUID]lifecycle.ExemplarySnapshot, command Command) bool {
	for _, id := range command.ExemplaryIDs {
		snapshot := snapshotsByID[id]

		if command.TargetsReserve() {
			if !snapshot.InStorage {
				return false
			}

			continue
		}

		if snapshot.ShelfID != command.TargetShelfID {
			return false
		}
	}

	return true
}
