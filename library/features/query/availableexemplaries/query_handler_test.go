package availableexemplaries_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediatheque/exemplary-lifecycle-go/library/features/query/availableexemplaries"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
)

func today() time.Time {
	return time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
}

type fakeStore struct {
	ids         []uuid.UUID
	exemplaries []lifecycle.ExemplarySnapshot

	searchedPredicate lifecycle.Predicate
	searchedToday     time.Time
	searchedPolicy    lifecycle.Policy
	loadedIDs         []uuid.UUID
}

func (f *fakeStore) SearchExemplaryIDs(
	_ context.Context,
	predicate lifecycle.Predicate,
	searchToday time.Time,
	policy lifecycle.Policy,
) ([]uuid.UUID, error) {

	f.searchedPredicate = predicate
	f.searchedToday = searchToday
	f.searchedPolicy = policy

	return f.ids, nil
}

func (f *fakeStore) LoadExemplaries(_ context.Context, ids []uuid.UUID) ([]lifecycle.ExemplarySnapshot, error) {
	f.loadedIDs = ids
	return f.exemplaries, nil
}

func Test_QueryHandler_Handle_SearchesAndHydrates(t *testing.T) {
	// setup
	exemplaryID := uuid.New()
	shelfID := uuid.New()
	snapshot, err := lifecycle.BuildExemplarySnapshot(exemplaryID, "EX-001", false, shelfID, time.Time{})
	require.NoError(t, err)

	store := &fakeStore{
		ids:         []uuid.UUID{exemplaryID},
		exemplaries: []lifecycle.ExemplarySnapshot{snapshot},
	}
	handler, err := availableexemplaries.NewQueryHandler(store, store,
		availableexemplaries.WithClock(today))
	require.NoError(t, err)

	// act
	available, handleErr := handler.Handle(context.Background(), availableexemplaries.Query{})

	// assert
	require.NoError(t, handleErr)
	require.Len(t, available, 1)
	assert.Equal(t, exemplaryID, available[0].ExemplaryID)
	assert.Equal(t, "EX-001", available[0].Identifier)
	assert.Equal(t, shelfID, available[0].ShelfID)

	assert.Equal(t, lifecycle.Eq(lifecycle.FieldIsAvailable, true), store.searchedPredicate)
	assert.Equal(t, today(), store.searchedToday)
	assert.Equal(t, lifecycle.DefaultPolicy(), store.searchedPolicy)
	assert.Equal(t, []uuid.UUID{exemplaryID}, store.loadedIDs)
}

func Test_QueryHandler_Handle_NoMatchesSkipsHydration(t *testing.T) {
	store := &fakeStore{}
	handler, err := availableexemplaries.NewQueryHandler(store, store,
		availableexemplaries.WithClock(today))
	require.NoError(t, err)

	available, handleErr := handler.Handle(context.Background(), availableexemplaries.Query{})

	require.NoError(t, handleErr)
	assert.Empty(t, available)
	assert.Nil(t, store.loadedIDs)
}

func Test_QueryHandler_Handle_SearchesWithCustomPolicy(t *testing.T) {
	store := &fakeStore{}
	policy := lifecycle.Policy{LoanPeriodDays: 30, QuarantineDays: 14}
	handler, err := availableexemplaries.NewQueryHandler(store, store,
		availableexemplaries.WithClock(today),
		availableexemplaries.WithPolicy(policy))
	require.NoError(t, err)

	_, handleErr := handler.Handle(context.Background(), availableexemplaries.Query{})

	require.NoError(t, handleErr)
	assert.Equal(t, policy, store.searchedPolicy)
}

func Test_NewQueryHandler_WithInvalidPolicy_Errors(t *testing.T) {
	store := &fakeStore{}

	_, err := availableexemplaries.NewQueryHandler(store, store,
		availableexemplaries.WithPolicy(lifecycle.Policy{}))

	assert.ErrorIs(t, err, lifecycle.ErrInvalidLoanPeriod)
}
