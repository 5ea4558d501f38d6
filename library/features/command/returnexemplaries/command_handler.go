package returnexemplaries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/library/shell"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
)

// Ledger defines the interface needed by the CommandHandler for checkout operations.
type Ledger interface {
	ListOpen(ctx context.Context, exemplaryIDs []uuid.UUID) ([]lifecycle.CheckoutRecord, error)
	CloseCheckouts(ctx context.Context, exemplaryIDs []uuid.UUID, returnDate time.Time) error
}

// Catalog defines the interface needed by the CommandHandler for catalog writes.
type Catalog interface {
	ClearReturnToShelfDate(ctx context.Context, ids []uuid.UUID) error
}

// CommandHandler orchestrates the complete return workflow with pure business logic and retry.
// Returning closes the open checkout and resets the return-to-shelf date so the
// fresh quarantine cycle starts clean.
type CommandHandler struct {
	ledger       Ledger
	catalog      Catalog
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
func NewCommandHandler(ledger Ledger, catalog Catalog, opts ...Option) CommandHandler {
	handler := CommandHandler{
		ledger:  ledger,
		catalog: catalog,
		clock:   time.Now,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the complete return workflow with retry logic.
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
	openCheckouts, err := h.ledger.ListOpen(ctx, command.ExemplaryIDs)
	if err != nil {
		return false, err
	}

	result := Decide(openCheckouts, command, h.clock())

	if !result.ShouldWrite() {
		return result.HasError() == nil, result.HasError()
	}

	// One statement for the whole batch: a transient failure applies nothing,
	// so a retry re-runs Decide against unchanged state.
	if closeErr := h.ledger.CloseCheckouts(ctx, command.ExemplaryIDs, command.ReturnDate); closeErr != nil {
		return false, closeErr
	}

	if clearErr := h.catalog.ClearReturnToShelfDate(ctx, command.ExemplaryIDs); clearErr != nil {
		return false, clearErr
	}

	return false, nil
}
