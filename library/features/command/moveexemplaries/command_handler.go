package moveexemplaries

import (
	"context"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/library/shell"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle/postgrescatalog"
)

// Catalog defines the interface needed by the CommandHandler for catalog operations.
type Catalog interface {
	LoadExemplaries(ctx context.Context, ids []uuid.UUID) ([]lifecycle.ExemplarySnapshot, error)
	LoadShelf(ctx context.Context, id uuid.UUID) (*postgrescatalog.Shelf, error)
	PlaceOnShelf(ctx context.Context, ids []uuid.UUID, shelfID uuid.UUID) error
	MoveToStorage(ctx context.Context, ids []uuid.UUID) error
}

// StatusEngine defines the interface needed by the CommandHandler for lifecycle evaluation.
type StatusEngine interface {
	EvaluateBatch(ctx context.Context, exemplaries []lifecycle.ExemplarySnapshot) (map[uuid.UUID]lifecycle.Evaluation, error)
}

// CommandHandler orchestrates the complete move workflow with pure business logic and retry.
type CommandHandler struct {
	catalog      Catalog
	engine       StatusEngine
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

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(catalog Catalog, engine StatusEngine, opts ...Option) CommandHandler {
	handler := CommandHandler{
		catalog: catalog,
		engine:  engine,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the complete move workflow with retry logic.
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

	targetShelfExists := false
	if !command.TargetsReserve() {
		shelf, shelfErr := h.catalog.LoadShelf(ctx, command.TargetShelfID)
		if shelfErr != nil {
			return false, shelfErr
		}

		targetShelfExists = shelf != nil
	}

	evaluations, err := h.engine.EvaluateBatch(ctx, exemplaries)
	if err != nil {
		return false, err
	}

	result := Decide(exemplaries, evaluations, targetShelfExists, command)

	if !result.ShouldWrite() {
		return result.HasError() == nil, result.HasError()
	}

	if command.TargetsReserve() {
		return false, h.catalog.MoveToStorage(ctx, command.ExemplaryIDs)
	}

	return false, h.catalog.PlaceOnShelf(ctx, command.ExemplaryIDs, command.TargetShelfID)
}
