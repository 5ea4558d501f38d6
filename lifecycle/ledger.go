package lifecycle

import (
	"context"

	"github.com/google/uuid"
)

// CheckoutLedger is the engine's read interface onto the checkout history.
// Both methods are batched: implementations must answer for an arbitrary set
// of exemplaries with a bounded number of queries (one, for the Postgres
// implementation), never one query per exemplary.
//
// The dependency is one-directional: the ledger's own write workflows never
// call back into the engine.
type CheckoutLedger interface {
	// ListOpen returns every open (unreturned) checkout for the given
	// exemplaries. A well-formed ledger holds at most one open checkout per
	// exemplary; the engine tolerates and reports violations.
	ListOpen(ctx context.Context, exemplaryIDs []uuid.UUID) ([]CheckoutRecord, error)

	// ListLatestClosed returns, per exemplary, the most recently closed
	// checkout if any. Exemplaries with no closed checkout are absent from
	// the result.
	ListLatestClosed(ctx context.Context, exemplaryIDs []uuid.UUID) (map[uuid.UUID]CheckoutRecord, error)
}
