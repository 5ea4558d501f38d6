package lifecycle

import (
	"time"

	"github.com/google/uuid"
)

// Evaluation is the derived lifecycle state for one exemplary at one instant.
// It is a pure function of the exemplary's stored fields and its checkout
// history; it is never persisted except as an explicit read-model snapshot.
type Evaluation struct {
	ExemplaryID      uuid.UUID
	Status           Status
	IsAvailable      bool
	IsInQuarantine   bool
	IsPastQuarantine bool
	IsInReserve      bool
}

// Evaluate derives the lifecycle state of one exemplary.
//
// open is the exemplary's open checkout, if any; latestClosed is the most
// recently closed checkout, if any. Callers that read these from a
// CheckoutLedger should prefer Engine.EvaluateOne / Engine.EvaluateBatch,
// which also resolve inconsistent reads.
//
// Derivation rules:
//
//	GIVEN: an exemplary snapshot and its checkout history
//	WHEN: an open checkout exists
//	THEN: Borrowed, unavailable
//	WHEN: no open checkout and the storage flag is set
//	THEN: InReserve, unavailable
//	WHEN: the latest return is younger than the quarantine window
//	THEN: Undefined with IsInQuarantine, unavailable
//	WHEN: quarantine has elapsed but no return-to-shelf action was recorded
//	THEN: Undefined with IsPastQuarantine, unavailable
//	WHEN: a shelf location exists
//	THEN: InShelf, available
//	WHEN: no location and the exemplary never circulated
//	THEN: InReserve, unavailable (acquired but not yet shelved)
//	OTHERWISE: Undefined (return-to-shelf recorded but no location; inconsistent data)
func Evaluate(
	exemplary ExemplarySnapshot,
	open *CheckoutRecord,
	latestClosed *CheckoutRecord,
	today time.Time,
	policy Policy,
) Evaluation {

	evaluation := Evaluation{
		ExemplaryID: exemplary.ID,
		Status:      StatusUndefined,
	}

	if open != nil {
		evaluation.Status = StatusBorrowed
		return evaluation
	}

	if exemplary.InStorage {
		evaluation.Status = StatusInReserve
		evaluation.IsInReserve = true
		return evaluation
	}

	day := ToLedgerDate(today)

	if latestClosed != nil {
		quarantineEnd := policy.QuarantineEnd(latestClosed.ReturnDate)

		if day.Before(quarantineEnd) {
			evaluation.IsInQuarantine = true
			return evaluation
		}

		if !exemplary.HasReturnToShelfDate() {
			evaluation.IsPastQuarantine = true
			return evaluation
		}
	}

	if exemplary.HasLocation() {
		evaluation.Status = StatusInShelf
		evaluation.IsAvailable = true
		return evaluation
	}

	if latestClosed == nil {
		evaluation.Status = StatusInReserve
		evaluation.IsInReserve = true
		return evaluation
	}

	// Circulated, out of quarantine, return-to-shelf recorded, but no shelf:
	// the placement data is inconsistent.
	return evaluation
}
