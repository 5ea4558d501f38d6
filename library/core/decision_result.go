package core

// DecisionResult represents the outcome of a business decision in a Decide function.
// This enables type-safe, functional programming style decision modeling.
//
// IMPORTANT: DecisionResult should only be constructed using the provided factory methods:
// IdempotentDecision(), AcceptedDecision(), or RejectedDecision(err).
// Do not construct DecisionResult directly to ensure type safety.
type DecisionResult struct {
	Outcome string // "idempotent", "accepted", or "rejected"
	Err     error
}

const (
	idempotentOutcome = "idempotent"
	acceptedOutcome   = "accepted"
	rejectedOutcome   = "rejected"
)

// IdempotentDecision creates a DecisionResult indicating no state change is needed.
func IdempotentDecision() DecisionResult {
	return DecisionResult{
		Outcome: idempotentOutcome,
	}
}

// AcceptedDecision creates a DecisionResult indicating the command passed all
// business rules and its writes should be carried out.
func AcceptedDecision() DecisionResult {
	return DecisionResult{
		Outcome: acceptedOutcome,
	}
}

// RejectedDecision creates a DecisionResult indicating a business rule violation.
func RejectedDecision(err error) DecisionResult {
	return DecisionResult{
		Outcome: rejectedOutcome,
		Err:     err,
	}
}

// ShouldWrite returns true if the decision requires persistence work.
func (r DecisionResult) ShouldWrite() bool {
	return r.Outcome == acceptedOutcome
}

// HasError returns the rule violation if there is one, otherwise nil.
func (r DecisionResult) HasError() error {
	if r.Outcome == rejectedOutcome {
		return r.Err
	}

	return nil
}
