package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	logMsgMultipleOpenCheckouts = "multiple open checkouts found for exemplary, resolving to latest"
	logAttrExemplaryID          = "exemplary_id"
	logAttrOpenCheckoutCount    = "open_checkout_count"

	metricConsistencyWarnings = "lifecycle_consistency_warnings"
)

// Engine derives lifecycle states for exemplaries by combining their stored
// fields with checkout history read from a CheckoutLedger.
//
// The engine is stateless and safe for concurrent use. It performs no writes:
// borrow/return/move workflows own their records and only consult the engine.
type Engine struct {
	ledger           CheckoutLedger
	policy           Policy
	clock            func() time.Time
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
}

// Option defines a functional option for configuring an Engine.
type Option func(*Engine) error

// WithPolicy overrides the loan period and quarantine window day counts.
func WithPolicy(policy Policy) Option {
	return func(e *Engine) error {
		if err := policy.Validate(); err != nil {
			return err
		}

		e.policy = policy

		return nil
	}
}

// WithClock overrides the engine's notion of "today". Intended for tests and
// for hosts that evaluate as-of a fixed business date.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) error {
		e.clock = clock
		return nil
	}
}

// WithLogger sets the logger for the Engine.
// The logger receives consistency warnings at warn level.
func WithLogger(logger Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Engine, enabling
// automatic trace/span correlation of consistency warnings.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(e *Engine) error {
		e.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Engine.
// The collector receives a counter increment per consistency warning.
func WithMetrics(collector MetricsCollector) Option {
	return func(e *Engine) error {
		e.metricsCollector = collector
		return nil
	}
}

// NewEngine creates an Engine reading from the given ledger, with optional
// configuration.
func NewEngine(ledger CheckoutLedger, options ...Option) (Engine, error) {
	if ledger == nil {
		return Engine{}, ErrNilCheckoutLedger
	}

	engine := Engine{
		ledger: ledger,
		policy: DefaultPolicy(),
		clock:  time.Now,
	}

	for _, option := range options {
		if err := option(&engine); err != nil {
			return Engine{}, err
		}
	}

	return engine, nil
}

// Policy returns the policy the engine evaluates with.
func (e Engine) Policy() Policy {
	return e.policy
}

// EvaluateOne derives the lifecycle state of a single exemplary.
func (e Engine) EvaluateOne(ctx context.Context, exemplary ExemplarySnapshot) (Evaluation, error) {
	evaluations, err := e.EvaluateBatch(ctx, []ExemplarySnapshot{exemplary})
	if err != nil {
		return Evaluation{}, err
	}

	return evaluations[exemplary.ID], nil
}

// EvaluateBatch derives the lifecycle state of every given exemplary from one
// consistent pair of ledger reads: one ListOpen call and one ListLatestClosed
// call regardless of batch size. The result maps exemplary id to Evaluation
// and contains an entry for every input snapshot.
func (e Engine) EvaluateBatch(ctx context.Context, exemplaries []ExemplarySnapshot) (map[uuid.UUID]Evaluation, error) {
	evaluations := make(map[uuid.UUID]Evaluation, len(exemplaries))
	if len(exemplaries) == 0 {
		return evaluations, nil
	}

	exemplaryIDs := make([]uuid.UUID, 0, len(exemplaries))
	for _, exemplary := range exemplaries {
		exemplaryIDs = append(exemplaryIDs, exemplary.ID)
	}

	openCheckouts, err := e.ledger.ListOpen(ctx, exemplaryIDs)
	if err != nil {
		return nil, err
	}

	latestClosed, err := e.ledger.ListLatestClosed(ctx, exemplaryIDs)
	if err != nil {
		return nil, err
	}

	openByExemplary := e.resolveOpenCheckouts(ctx, openCheckouts)
	today := e.clock()

	for _, exemplary := range exemplaries {
		var open *CheckoutRecord
		if record, found := openByExemplary[exemplary.ID]; found {
			open = &record
		}

		var closed *CheckoutRecord
		if record, found := latestClosed[exemplary.ID]; found {
			closed = &record
		}

		evaluations[exemplary.ID] = Evaluate(exemplary, open, closed, today, e.policy)
	}

	return evaluations, nil
}

// Select returns the ids of the exemplaries whose derived state matches the
// predicate. It shares EvaluateBatch's bounded-ledger-reads guarantee.
func (e Engine) Select(
	ctx context.Context,
	exemplaries []ExemplarySnapshot,
	predicate Predicate,
) ([]uuid.UUID, error) {

	evaluations, err := e.EvaluateBatch(ctx, exemplaries)
	if err != nil {
		return nil, err
	}

	matching := make([]uuid.UUID, 0, len(exemplaries))

	for _, exemplary := range exemplaries {
		matches, matchErr := predicate.Matches(evaluations[exemplary.ID])
		if matchErr != nil {
			return nil, matchErr
		}

		if matches {
			matching = append(matching, exemplary.ID)
		}
	}

	return matching, nil
}

// resolveOpenCheckouts groups open checkouts per exemplary. A well-formed
// ledger yields at most one per exemplary; when more are read the latest by
// checkout date wins and a consistency warning is reported.
func (e Engine) resolveOpenCheckouts(ctx context.Context, openCheckouts []CheckoutRecord) map[uuid.UUID]CheckoutRecord {
	resolved := make(map[uuid.UUID]CheckoutRecord, len(openCheckouts))
	countPerExemplary := make(map[uuid.UUID]int, len(openCheckouts))

	for _, record := range openCheckouts {
		countPerExemplary[record.ExemplaryID]++

		current, found := resolved[record.ExemplaryID]
		if !found || record.CheckoutDate.After(current.CheckoutDate) {
			resolved[record.ExemplaryID] = record
		}
	}

	for exemplaryID, count := range countPerExemplary {
		if count > 1 {
			e.warnInconsistentOpenCheckouts(ctx, exemplaryID, count)
		}
	}

	return resolved
}

func (e Engine) warnInconsistentOpenCheckouts(ctx context.Context, exemplaryID uuid.UUID, count int) {
	if e.contextualLogger != nil {
		e.contextualLogger.WarnContext(ctx, logMsgMultipleOpenCheckouts,
			logAttrExemplaryID, exemplaryID.String(),
			logAttrOpenCheckoutCount, count)
	} else if e.logger != nil {
		e.logger.Warn(logMsgMultipleOpenCheckouts,
			logAttrExemplaryID, exemplaryID.String(),
			logAttrOpenCheckoutCount, count)
	}

	if e.metricsCollector != nil {
		labels := map[string]string{logAttrExemplaryID: exemplaryID.String()}

		if contextualCollector, ok := e.metricsCollector.(ContextualMetricsCollector); ok {
			contextualCollector.IncrementCounterContext(ctx, metricConsistencyWarnings, labels)
		} else {
			e.metricsCollector.IncrementCounter(metricConsistencyWarnings, labels)
		}
	}
}
