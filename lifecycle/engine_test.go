package lifecycle_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
	"github.com/mediatheque/exemplary-lifecycle-go/testutil/lifecycle/fixtures"
	"github.com/mediatheque/exemplary-lifecycle-go/testutil/observability/testdoubles"
)

const msgMultipleOpenCheckouts = "multiple open checkouts found for exemplary, resolving to latest"

func Test_NewEngine_WithNilLedger_Errors(t *testing.T) {
	_, err := lifecycle.NewEngine(nil)

	assert.ErrorIs(t, err, lifecycle.ErrNilCheckoutLedger)
}

func Test_NewEngine_WithInvalidPolicy_Errors(t *testing.T) {
	ledger := fixtures.NewFakeCheckoutLedger()

	_, err := lifecycle.NewEngine(ledger, lifecycle.WithPolicy(lifecycle.Policy{LoanPeriodDays: 0, QuarantineDays: 7}))

	assert.ErrorIs(t, err, lifecycle.ErrInvalidLoanPeriod)
}

func Test_NewEngine_DefaultsToStandardPolicy(t *testing.T) {
	ledger := fixtures.NewFakeCheckoutLedger()

	engine, err := lifecycle.NewEngine(ledger)

	require.NoError(t, err)
	assert.Equal(t, lifecycle.DefaultPolicy(), engine.Policy())
}

func Test_EvaluateBatch_ReadsLedgerOnceRegardlessOfBatchSize(t *testing.T) {
	batchSizes := []int{1, 10, 250}

	for _, batchSize := range batchSizes {
		t.Run(fmt.Sprintf("batch of %d", batchSize), func(t *testing.T) {
			// setup
			ledger := fixtures.NewFakeCheckoutLedger()
			engine := newEngine(t, ledger, lifecycle.WithClock(fixtures.FixedClock(day(5))))

			exemplaries := make([]lifecycle.ExemplarySnapshot, 0, batchSize)
			for i := 0; i < batchSize; i++ {
				exemplaries = append(exemplaries, buildExemplary(t, uuid.New(), false, uuid.New(), time.Time{}))
			}

			// act
			evaluations, err := engine.EvaluateBatch(context.Background(), exemplaries)

			// assert
			require.NoError(t, err)
			assert.Len(t, evaluations, batchSize)
			assert.Equal(t, 1, ledger.GetListOpenCalls())
			assert.Equal(t, 1, ledger.GetListLatestClosedCalls())
		})
	}
}

func Test_EvaluateBatch_WithEmptyBatch_SkipsLedgerReads(t *testing.T) {
	// setup
	ledger := fixtures.NewFakeCheckoutLedger()
	engine := newEngine(t, ledger)

	// act
	evaluations, err := engine.EvaluateBatch(context.Background(), nil)

	// assert
	require.NoError(t, err)
	assert.Empty(t, evaluations)
	assert.Equal(t, 0, ledger.GetListOpenCalls())
	assert.Equal(t, 0, ledger.GetListLatestClosedCalls())
}

func Test_EvaluateBatch_CombinesLedgerStateIntoEvaluations(t *testing.T) {
	// setup
	borrowedID := uuid.New()
	quarantinedID := uuid.New()
	shelvedID := uuid.New()
	userID := uuid.New()

	openCheckout, err := lifecycle.BuildOpenCheckout(borrowedID, userID, day(3))
	require.NoError(t, err)

	closedCheckout, err := lifecycle.BuildClosedCheckout(quarantinedID, userID, day(1), day(10))
	require.NoError(t, err)

	ledger := fixtures.NewFakeCheckoutLedger().
		WithOpenCheckouts(openCheckout).
		WithLatestClosed(closedCheckout)

	engine := newEngine(t, ledger, lifecycle.WithClock(fixtures.FixedClock(day(12))))

	exemplaries := []lifecycle.ExemplarySnapshot{
		buildExemplary(t, borrowedID, false, uuid.Nil, time.Time{}),
		buildExemplary(t, quarantinedID, false, uuid.Nil, time.Time{}),
		buildExemplary(t, shelvedID, false, uuid.New(), time.Time{}),
	}

	// act
	evaluations, err := engine.EvaluateBatch(context.Background(), exemplaries)

	// assert
	require.NoError(t, err)
	require.Len(t, evaluations, 3)
	assert.Equal(t, lifecycle.StatusBorrowed, evaluations[borrowedID].Status)
	assert.True(t, evaluations[quarantinedID].IsInQuarantine)
	assert.True(t, evaluations[shelvedID].IsAvailable)
}

func Test_EvaluateBatch_PropagatesLedgerErrors(t *testing.T) {
	ledgerFailure := errors.New("connection refused")

	tests := []struct {
		name   string
		ledger *fixtures.FakeCheckoutLedger
	}{
		{
			name:   "ListOpen fails",
			ledger: fixtures.NewFakeCheckoutLedger().FailListOpenWith(ledgerFailure),
		},
		{
			name:   "ListLatestClosed fails",
			ledger: fixtures.NewFakeCheckoutLedger().FailListLatestClosedWith(ledgerFailure),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newEngine(t, tt.ledger)
			exemplaries := []lifecycle.ExemplarySnapshot{
				buildExemplary(t, uuid.New(), false, uuid.Nil, time.Time{}),
			}

			_, err := engine.EvaluateBatch(context.Background(), exemplaries)

			assert.ErrorIs(t, err, ledgerFailure)
		})
	}
}

func Test_EvaluateOne_DerivesSingleEvaluation(t *testing.T) {
	// setup
	exemplaryID := uuid.New()
	ledger := fixtures.NewFakeCheckoutLedger()
	engine := newEngine(t, ledger, lifecycle.WithClock(fixtures.FixedClock(day(5))))

	// act
	evaluation, err := engine.EvaluateOne(
		context.Background(),
		buildExemplary(t, exemplaryID, false, uuid.New(), time.Time{}),
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, exemplaryID, evaluation.ExemplaryID)
	assert.Equal(t, lifecycle.StatusInShelf, evaluation.Status)
	assert.True(t, evaluation.IsAvailable)
}

func Test_EvaluateBatch_WithMultipleOpenCheckouts_ResolvesToLatestAndWarns(t *testing.T) {
	// setup
	exemplaryID := uuid.New()
	userID := uuid.New()

	olderCheckout, err := lifecycle.BuildOpenCheckout(exemplaryID, userID, day(2))
	require.NoError(t, err)

	latestCheckout, err := lifecycle.BuildOpenCheckout(exemplaryID, uuid.New(), day(5))
	require.NoError(t, err)

	ledger := fixtures.NewFakeCheckoutLedger().WithOpenCheckouts(olderCheckout, latestCheckout)

	logSpy := testdoubles.NewLogHandlerSpy(false)
	metricsSpy := testdoubles.NewMetricsCollectorSpy(true)

	engine := newEngine(t, ledger,
		lifecycle.WithClock(fixtures.FixedClock(day(6))),
		lifecycle.WithLogger(slog.New(logSpy)),
		lifecycle.WithMetrics(metricsSpy),
	)

	// act
	evaluations, err := engine.EvaluateBatch(context.Background(), []lifecycle.ExemplarySnapshot{
		buildExemplary(t, exemplaryID, false, uuid.Nil, time.Time{}),
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusBorrowed, evaluations[exemplaryID].Status)

	warned := logSpy.HasWarnLogWithMessage(msgMultipleOpenCheckouts).
		WithAttr("exemplary_id", exemplaryID.String()).
		WithIntAttr("open_checkout_count", 2).
		Assert()
	assert.True(t, warned, "expected a consistency warning with exemplary id and checkout count")

	counted := metricsSpy.HasCounterRecordForMetric("lifecycle_consistency_warnings").
		WithLabel("exemplary_id", exemplaryID.String()).
		Assert()
	assert.True(t, counted, "expected a consistency warning counter increment")
}

func Test_EvaluateBatch_WithMultipleOpenCheckouts_PrefersContextualLogger(t *testing.T) {
	// setup
	exemplaryID := uuid.New()

	first, err := lifecycle.BuildOpenCheckout(exemplaryID, uuid.New(), day(2))
	require.NoError(t, err)

	second, err := lifecycle.BuildOpenCheckout(exemplaryID, uuid.New(), day(4))
	require.NoError(t, err)

	ledger := fixtures.NewFakeCheckoutLedger().WithOpenCheckouts(first, second)

	logSpy := testdoubles.NewLogHandlerSpy(false)
	contextualSpy := testdoubles.NewContextualLoggerSpy(true)

	engine := newEngine(t, ledger,
		lifecycle.WithLogger(slog.New(logSpy)),
		lifecycle.WithContextualLogger(contextualSpy),
	)

	// act
	_, err = engine.EvaluateBatch(context.Background(), []lifecycle.ExemplarySnapshot{
		buildExemplary(t, exemplaryID, false, uuid.Nil, time.Time{}),
	})

	// assert
	require.NoError(t, err)
	assert.True(t, contextualSpy.HasWarnLog(msgMultipleOpenCheckouts))
	assert.Equal(t, 0, logSpy.GetRecordCount(), "plain logger must not be used when a contextual logger is set")
}

func Test_EvaluateBatch_WithSingleOpenCheckout_DoesNotWarn(t *testing.T) {
	// setup
	exemplaryID := uuid.New()

	openCheckout, err := lifecycle.BuildOpenCheckout(exemplaryID, uuid.New(), day(2))
	require.NoError(t, err)

	ledger := fixtures.NewFakeCheckoutLedger().WithOpenCheckouts(openCheckout)
	logSpy := testdoubles.NewLogHandlerSpy(false)
	engine := newEngine(t, ledger, lifecycle.WithLogger(slog.New(logSpy)))

	// act
	_, err = engine.EvaluateBatch(context.Background(), []lifecycle.ExemplarySnapshot{
		buildExemplary(t, exemplaryID, false, uuid.Nil, time.Time{}),
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, 0, logSpy.GetRecordCount())
}

func Test_Select_FiltersByDerivedField(t *testing.T) {
	// setup
	shelvedID := uuid.New()
	borrowedID := uuid.New()
	quarantinedID := uuid.New()
	userID := uuid.New()

	openCheckout, err := lifecycle.BuildOpenCheckout(borrowedID, userID, day(3))
	require.NoError(t, err)

	closedCheckout, err := lifecycle.BuildClosedCheckout(quarantinedID, userID, day(1), day(10))
	require.NoError(t, err)

	ledger := fixtures.NewFakeCheckoutLedger().
		WithOpenCheckouts(openCheckout).
		WithLatestClosed(closedCheckout)

	engine := newEngine(t, ledger, lifecycle.WithClock(fixtures.FixedClock(day(12))))

	exemplaries := []lifecycle.ExemplarySnapshot{
		buildExemplary(t, shelvedID, false, uuid.New(), time.Time{}),
		buildExemplary(t, borrowedID, false, uuid.Nil, time.Time{}),
		buildExemplary(t, quarantinedID, false, uuid.Nil, time.Time{}),
	}

	tests := []struct {
		name        string
		predicate   lifecycle.Predicate
		expectedIDs []uuid.UUID
	}{
		{
			name:        "equals true selects available exemplaries",
			predicate:   lifecycle.Eq(lifecycle.FieldIsAvailable, true),
			expectedIDs: []uuid.UUID{shelvedID},
		},
		{
			name:        "equals false selects unavailable exemplaries",
			predicate:   lifecycle.Eq(lifecycle.FieldIsAvailable, false),
			expectedIDs: []uuid.UUID{borrowedID, quarantinedID},
		},
		{
			name:        "not equals true behaves like equals false",
			predicate:   lifecycle.Neq(lifecycle.FieldIsAvailable, true),
			expectedIDs: []uuid.UUID{borrowedID, quarantinedID},
		},
		{
			name:        "quarantine field selects the quarantined exemplary",
			predicate:   lifecycle.Eq(lifecycle.FieldIsInQuarantine, true),
			expectedIDs: []uuid.UUID{quarantinedID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// act
			matching, selectErr := engine.Select(context.Background(), exemplaries, tt.predicate)

			// assert
			require.NoError(t, selectErr)
			assert.ElementsMatch(t, tt.expectedIDs, matching)
		})
	}
}

func Test_Select_WithZeroPredicate_Errors(t *testing.T) {
	// setup
	ledger := fixtures.NewFakeCheckoutLedger()
	engine := newEngine(t, ledger)

	exemplaries := []lifecycle.ExemplarySnapshot{
		buildExemplary(t, uuid.New(), false, uuid.Nil, time.Time{}),
	}

	// act
	_, err := engine.Select(context.Background(), exemplaries, lifecycle.Predicate{})

	// assert
	assert.ErrorIs(t, err, lifecycle.ErrUnknownDerivedField)
}

func newEngine(t *testing.T, ledger lifecycle.CheckoutLedger, options ...lifecycle.Option) lifecycle.Engine {
	t.Helper()

	engine, err := lifecycle.NewEngine(ledger, options...)
	require.NoError(t, err)

	return engine
}

func buildExemplary(
	t *testing.T,
	id uuid.UUID,
	inStorage bool,
	shelfID uuid.UUID,
	returnToShelfDate time.Time,
) lifecycle.ExemplarySnapshot {

	t.Helper()

	snapshot, err := lifecycle.BuildExemplarySnapshot(id, "EX-"+id.String()[:8], inStorage, shelfID, returnToShelfDate)
	require.NoError(t, err)

	return snapshot
}
