package availableexemplaries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
)

// Searcher defines the interface needed by the QueryHandler for predicate
// search. The search runs inside the database, so the candidate set is never
// materialized in memory.
type Searcher interface {
	SearchExemplaryIDs(
		ctx context.Context,
		predicate lifecycle.Predicate,
		today time.Time,
		policy lifecycle.Policy,
	) ([]uuid.UUID, error)
}

// Catalog defines the interface needed by the QueryHandler for hydrating results.
type Catalog interface {
	LoadExemplaries(ctx context.Context, ids []uuid.UUID) ([]lifecycle.ExemplarySnapshot, error)
}

// QueryHandler answers availability queries by pushing the derived-field
// predicate down into the checkout ledger's search.
type QueryHandler struct {
	searcher Searcher
	catalog  Catalog
	policy   lifecycle.Policy
	clock    func() time.Time
}

// Option configures a QueryHandler.
type Option func(*QueryHandler) error

// WithPolicy overrides the loan period and quarantine window day counts.
func WithPolicy(policy lifecycle.Policy) Option {
	return func(h *QueryHandler) error {
		if err := policy.Validate(); err != nil {
			return err
		}

		h.policy = policy

		return nil
	}
}

// WithClock overrides the handler's notion of "today". Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(h *QueryHandler) error {
		h.clock = clock
		return nil
	}
}

// NewQueryHandler creates a new QueryHandler with optional configuration.
func NewQueryHandler(searcher Searcher, catalog Catalog, opts ...Option) (QueryHandler, error) {
	handler := QueryHandler{
		searcher: searcher,
		catalog:  catalog,
		policy:   lifecycle.DefaultPolicy(),
		clock:    time.Now,
	}

	for _, opt := range opts {
		if err := opt(&handler); err != nil {
			return QueryHandler{}, err
		}
	}

	return handler, nil
}

// Handle answers the query, ordered by exemplary identifier.
func (h QueryHandler) Handle(ctx context.Context, _ Query) ([]AvailableExemplary, error) {
	ids, err := h.searcher.SearchExemplaryIDs(
		ctx, lifecycle.Eq(lifecycle.FieldIsAvailable, true), h.clock(), h.policy)
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []AvailableExemplary{}, nil
	}

	exemplaries, err := h.catalog.LoadExemplaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	available := make([]AvailableExemplary, 0, len(exemplaries))

	for _, exemplary := range exemplaries {
		available = append(available, AvailableExemplary{
			ExemplaryID: exemplary.ID,
			Identifier:  exemplary.Identifier,
			ShelfID:     exemplary.ShelfID,
		})
	}

	return available, nil
}
