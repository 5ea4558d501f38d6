package exemplarystatuses

import (
	"context"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
)

// Catalog defines the interface needed by the QueryHandler for reading exemplaries.
type Catalog interface {
	LoadExemplaries(ctx context.Context, ids []uuid.UUID) ([]lifecycle.ExemplarySnapshot, error)
	LoadAllExemplaries(ctx context.Context) ([]lifecycle.ExemplarySnapshot, error)
}

// StatusEngine defines the interface needed by the QueryHandler for lifecycle evaluation.
type StatusEngine interface {
	EvaluateBatch(ctx context.Context, exemplaries []lifecycle.ExemplarySnapshot) (map[uuid.UUID]lifecycle.Evaluation, error)
}

// SnapshotStore defines the optional interface for caching evaluated views.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot lifecycle.EvaluationSnapshot) error
	LoadSnapshot(ctx context.Context, viewType string, fingerprint string) (*lifecycle.EvaluationSnapshot, error)
}

// QueryHandler answers status queries by deriving evaluations on the fly.
// With a snapshot store configured it serves a cached view when one was
// already derived for the same exemplary set on the same day.
type QueryHandler struct {
	catalog   Catalog
	engine    StatusEngine
	snapshots SnapshotStore
	clock     func() time.Time
}

// Option configures a QueryHandler.
type Option func(*QueryHandler)

// WithSnapshotStore enables day-grained caching of evaluated views.
// Writes do not invalidate a cached view: a borrow or return can be served
// stale until the next day. Leave the store unset where reads must see
// same-day writes.
func WithSnapshotStore(snapshots SnapshotStore) Option {
	return func(h *QueryHandler) {
		h.snapshots = snapshots
	}
}

// WithClock overrides the handler's notion of "today". Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(h *QueryHandler) {
		h.clock = clock
	}
}

// NewQueryHandler creates a new QueryHandler with optional configuration.
func NewQueryHandler(catalog Catalog, engine StatusEngine, opts ...Option) QueryHandler {
	handler := QueryHandler{
		catalog: catalog,
		engine:  engine,
		clock:   time.Now,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle answers the query. Statuses are ordered by exemplary identifier, the
// order the catalog returns.
func (h QueryHandler) Handle(ctx context.Context, query Query) ([]ExemplaryStatus, error) {
	today := lifecycle.ToLedgerDate(h.clock())

	if cached, found := h.loadCachedView(ctx, query, today); found {
		return cached, nil
	}

	statuses, err := h.deriveStatuses(ctx, query)
	if err != nil {
		return nil, err
	}

	h.saveCachedView(ctx, query, today, statuses)

	return statuses, nil
}

func (h QueryHandler) deriveStatuses(ctx context.Context, query Query) ([]ExemplaryStatus, error) {
	var (
		exemplaries []lifecycle.ExemplarySnapshot
		err         error
	)

	if len(query.ExemplaryIDs) == 0 {
		exemplaries, err = h.catalog.LoadAllExemplaries(ctx)
	} else {
		exemplaries, err = h.catalog.LoadExemplaries(ctx, query.ExemplaryIDs)
	}

	if err != nil {
		return nil, err
	}

	evaluations, err := h.engine.EvaluateBatch(ctx, exemplaries)
	if err != nil {
		return nil, err
	}

	statuses := make([]ExemplaryStatus, 0, len(exemplaries))

	for _, exemplary := range exemplaries {
		evaluation := evaluations[exemplary.ID]

		statuses = append(statuses, ExemplaryStatus{
			ExemplaryID:      exemplary.ID,
			Identifier:       exemplary.Identifier,
			Status:           evaluation.Status.String(),
			IsAvailable:      evaluation.IsAvailable,
			IsInQuarantine:   evaluation.IsInQuarantine,
			IsPastQuarantine: evaluation.IsPastQuarantine,
			IsInReserve:      evaluation.IsInReserve,
		})
	}

	return statuses, nil
}

// loadCachedView serves a snapshot only when it was evaluated for the same
// day; evaluations shift at day boundaries as quarantine windows elapse.
func (h QueryHandler) loadCachedView(ctx context.Context, query Query, today time.Time) ([]ExemplaryStatus, bool) {
	if h.snapshots == nil {
		return nil, false
	}

	snapshot, err := h.snapshots.LoadSnapshot(ctx, ViewType, query.Fingerprint())
	if err != nil || snapshot == nil {
		return nil, false
	}

	if !snapshot.EvaluatedAt.Equal(today) {
		return nil, false
	}

	var statuses []ExemplaryStatus
	if unmarshalErr := jsoniter.ConfigFastest.Unmarshal(snapshot.Data, &statuses); unmarshalErr != nil {
		return nil, false
	}

	return statuses, true
}

// saveCachedView is best effort: a failed save never fails the query.
func (h QueryHandler) saveCachedView(ctx context.Context, query Query, today time.Time, statuses []ExemplaryStatus) {
	if h.snapshots == nil {
		return
	}

	data, marshalErr := jsoniter.ConfigFastest.Marshal(statuses)
	if marshalErr != nil {
		return
	}

	snapshot, buildErr := lifecycle.BuildEvaluationSnapshot(ViewType, query.Fingerprint(), today, data)
	if buildErr != nil {
		return
	}

	_ = h.snapshots.SaveSnapshot(ctx, snapshot)
}
