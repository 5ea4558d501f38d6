package createexemplaries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/library/shell"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle/postgrescatalog"
)

// Catalog defines the interface needed by the CommandHandler for catalog operations.
type Catalog interface {
	LoadBooks(ctx context.Context, ids []uuid.UUID) ([]postgrescatalog.Book, error)
	LoadShelf(ctx context.Context, id uuid.UUID) (*postgrescatalog.Shelf, error)
	InsertExemplaries(ctx context.Context, exemplaries []postgrescatalog.NewExemplary) error
}

// CommandHandler orchestrates the complete acquisition workflow with pure
// business logic and retry.
type CommandHandler struct {
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
func NewCommandHandler(catalog Catalog, opts ...Option) CommandHandler {
	handler := CommandHandler{
		catalog: catalog,
		clock:   time.Now,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the complete acquisition workflow with retry logic.
// Returns HandlerResult containing business outcomes and execution metadata for observability.
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
	books, err := h.catalog.LoadBooks(ctx, []uuid.UUID{command.BookID})
	if err != nil {
		return err
	}

	shelfExists := false
	if !command.TargetsReserve() {
		shelf, shelfErr := h.catalog.LoadShelf(ctx, command.ShelfID)
		if shelfErr != nil {
			return shelfErr
		}

		shelfExists = shelf != nil
	}

	result := Decide(len(books) == 1, shelfExists, command, h.clock())

	if !result.ShouldWrite() {
		return result.HasError()
	}

	exemplaries := make([]postgrescatalog.NewExemplary, 0, command.Count)

	for _, identifier := range command.Identifiers() {
		exemplary, buildErr := postgrescatalog.BuildNewExemplary(
			uuid.New(),
			identifier,
			command.BookID,
			command.AcquisitionDate,
			command.PriceCents,
			command.TargetsReserve(),
			command.ShelfID,
		)
		if buildErr != nil {
			return buildErr
		}

		exemplaries = append(exemplaries, exemplary)
	}

	return h.catalog.InsertExemplaries(ctx, exemplaries)
}
