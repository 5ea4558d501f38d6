package createshelves

import (
	"context"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/library/shell"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle/postgrescatalog"
)

// Catalog defines the interface needed by the CommandHandler for catalog operations.
type Catalog interface {
	InsertShelves(ctx context.Context, shelves []postgrescatalog.Shelf) error
}

// CommandHandler creates consecutively numbered shelves in a room. The
// command carries no lifecycle state, so there is no Decide step; validation
// lives in the command and shelf factories.
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

// Handle creates the shelves with retry logic.
// Returns HandlerResult containing execution metadata for observability.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	shelves := make([]postgrescatalog.Shelf, 0, command.Count)

	for number := command.FirstNumber; number < command.FirstNumber+command.Count; number++ {
		shelf, buildErr := postgrescatalog.BuildShelf(uuid.New(), command.RoomID, number)
		if buildErr != nil {
			return shell.HandlerResult{}, buildErr
		}

		shelves = append(shelves, shelf)
	}

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return h.catalog.InsertShelves(retryCtx, shelves)
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	return shell.NewSuccessResult(retryMetrics), nil
}
