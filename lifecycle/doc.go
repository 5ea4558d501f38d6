// Package lifecycle provides the core abstractions and types for deriving
// the lifecycle state of physical book copies (exemplaries) from their
// checkout history and location data.
//
// This package defines the pure computation layer: it owns no records and
// issues no queries of its own. Checkout history is read through the
// CheckoutLedger interface, and the exemplary's stored fields (storage
// flag, shelf reference, return-to-shelf date) arrive as an
// ExemplarySnapshot.
//
// The engine derives, per exemplary:
//   - a single discrete Status (Undefined, InReserve, InShelf, Borrowed)
//   - the availability flag used by borrowing and shelving workflows
//   - the quarantine flags (in quarantine / past quarantine)
//   - the reserve flag
//
// Key types:
//   - Evaluation: the derived state for one exemplary
//   - Engine: single and batch evaluators over a CheckoutLedger
//   - Predicate: a composable filter over derived boolean fields
//
// Common usage pattern:
//
//	engine, err := lifecycle.NewEngine(ledger, lifecycle.WithPolicy(policy))
//	if err != nil {
//		// handle error
//	}
//
//	evaluations, err := engine.EvaluateBatch(ctx, snapshots)
//	if err != nil {
//		// handle error
//	}
//
//	available, err := engine.Select(ctx, snapshots, lifecycle.Eq(lifecycle.FieldIsAvailable, true))
package lifecycle
