package exitquarantine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/library/shell"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle/postgrescatalog"
)

// Catalog defines the interface needed by the CommandHandler for catalog operations.
type Catalog interface {
	LoadExemplaries(ctx context.Context, ids []uuid.UUID) ([]lifecycle.ExemplarySnapshot, error)
	LoadShelf(ctx context.Context, id uuid.UUID) (*postgrescatalog.Shelf, error)
	StampReturnToShelf(ctx context.Context, ids []uuid.UUID, date time.Time) error
	PlaceOnShelf(ctx context.Context, ids []uuid.UUID, shelfID uuid.UUID) error
}

// StatusEngine defines the interface needed by the CommandHandler for lifecycle evaluation.
type StatusEngine interface {
	EvaluateBatch(ctx context.Context, exemplaries []lifecycle.ExemplarySnapshot) (map[uuid.UUID]lifecycle.Evaluation, error)
}

// CommandHandler orchestrates the complete quarantine exit workflow with pure
// business logic and retry.
type CommandHandler struct {
	catalog      Catalog
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
func NewCommandHandler(catalog Catalog, engine StatusEngine, opts ...Option) CommandHandler {
	handler := CommandHandler{
		catalog: catalog,
		engine:  engine,
		clock:   time.Now,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the complete quarantine exit workflow with retry logic.
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

	shelf, err := h.catalog.LoadShelf(ctx, command.ShelfID)
	if err != nil {
		return false, err
	}

	evaluations, err := h.engine.EvaluateBatch(ctx, exemplaries)
	if err != nil {
		return false, err
	}

	result := Decide(exemplaries, evaluations, shelf != nil, command, h.clock())

	if !result.ShouldWrite() {
		return result.HasError() == nil, result.HasError()
	}

	if stampErr := h.catalog.StampReturnToShelf(ctx, command.ExemplaryIDs, command.ReturnToShelfDate); stampErr != nil {
		return false, stampErr
	}

	return false, h.catalog.PlaceOnShelf(ctx, command.ExemplaryIDs, command.ShelfID)
}
