package fusebooks

import (
	"context"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/library/shell"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle/postgrescatalog"
)

// Catalog defines the interface needed by the CommandHandler for catalog operations.
type Catalog interface {
	LoadBooks(ctx context.Context, ids []uuid.UUID) ([]postgrescatalog.Book, error)
	ReparentExemplaries(ctx context.Context, duplicateBookIDs []uuid.UUID, survivorID uuid.UUID) (int64, error)
	DeleteBooks(ctx context.Context, ids []uuid.UUID) error
}

// CommandHandler orchestrates the complete book fusion workflow with pure
// business logic and retry.
type CommandHandler struct {
	catalog      Catalog
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
func NewCommandHandler(catalog Catalog, opts ...Option) CommandHandler {
	handler := CommandHandler{
		catalog: catalog,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the complete fusion workflow with retry logic.
// Returns HandlerResult containing execution metadata for observability.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return h.executeCommand(retryCtx, command)
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	return shell.NewSuccessResult(retryMetrics), nil
}

// executeCommand contains the core command processing logic that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) error {
	allIDs := append([]uuid.UUID{command.SurvivorID}, command.DuplicateIDs...)

	books, err := h.catalog.LoadBooks(ctx, allIDs)
	if err != nil {
		return err
	}

	result := Decide(books, command)

	if !result.ShouldWrite() {
		return result.HasError()
	}

	if _, reparentErr := h.catalog.ReparentExemplaries(ctx, command.DuplicateIDs, command.SurvivorID); reparentErr != nil {
		return reparentErr
	}

	return h.catalog.DeleteBooks(ctx, command.DuplicateIDs)
}
