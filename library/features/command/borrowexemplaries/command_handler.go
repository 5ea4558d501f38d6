package borrowexemplaries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/library/shell"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
)

// Catalog defines the interface needed by the CommandHandler for reading exemplaries.
type Catalog interface {
	LoadExemplaries(ctx context.Context, ids []uuid.UUID) ([]lifecycle.ExemplarySnapshot, error)
}

// Ledger defines the interface needed by the CommandHandler for checkout operations.
type Ledger interface {
	ListOpen(ctx context.Context, exemplaryIDs []uuid.UUID) ([]lifecycle.CheckoutRecord, error)
	OpenCheckouts(ctx context.Context, exemplaryIDs []uuid.UUID, userID uuid.UUID, checkoutDate time.Time) error
}

// StatusEngine defines the interface needed by the CommandHandler for lifecycle evaluation.
type StatusEngine interface {
	EvaluateBatch(ctx context.Context, exemplaries []lifecycle.ExemplarySnapshot) (map[uuid.UUID]lifecycle.Evaluation, error)
}

// CommandHandler orchestrates the complete borrow workflow with pure business logic and retry.
// It handles the core workflow: Load -> Evaluate -> Decide -> Write.
// External wrappers handle all observability concerns.
type CommandHandler struct {
	catalog      Catalog
	ledger       Ledger
	engine       StatusEngine
	clock        func() time.Time
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// WithClock overrides the handler's notion of "today". Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(h *CommandHandler) {
		h.clock = clock
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(catalog Catalog, ledger Ledger, engine StatusEngine, opts ...Option) CommandHandler {
	handler := CommandHandler{
		catalog: catalog,
		ledger:  ledger,
		engine:  engine,
		clock:   time.Now,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the complete borrow workflow with retry logic.
// It delegates business logic to executeCommand and handles retry with exponential backoff.
// Returns HandlerResult containing business outcomes and execution metadata for observability.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	var isIdempotent bool

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		idempotent, execErr := h.executeCommand(retryCtx, command)
		isIdempotent = idempotent

		return execErr
	}, h.retryOptions...)

	if isIdempotent {
		return shell.NewIdempotentResult(retryMetrics), err
	}

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	return shell.NewSuccessResult(retryMetrics), nil
}

// executeCommand contains the core command processing logic that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (bool, error) {
	exemplaries, err := h.catalog.LoadExemplaries(ctx, command.ExemplaryIDs)
	if err != nil {
		return false, err
	}

	openCheckouts, err := h.ledger.ListOpen(ctx, command.ExemplaryIDs)
	if err != nil {
		return false, err
	}

	evaluations, err := h.engine.EvaluateBatch(ctx, exemplaries)
	if err != nil {
		return false, err
	}

	result := Decide(exemplaries, evaluations, openCheckouts, command, h.clock())

	if !result.ShouldWrite() {
		return result.HasError() == nil, result.HasError()
	}

	// The ledger writes the whole batch in one statement and enforces borrow
	// exclusivity at write time; a race with another borrower surfaces as
	// ErrExemplaryAlreadyBorrowed and a transient failure applies nothing, so
	// a retry re-runs Decide against unchanged state.
	if openErr := h.ledger.OpenCheckouts(ctx, command.ExemplaryIDs, command.UserID, command.CheckoutDate); openErr != nil {
		return false, openErr
	}

	return false, nil
}
