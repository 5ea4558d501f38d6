package moveexemplaries_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediatheque/exemplary-lifecycle-go/library/core"
	"github.com/mediatheque/exemplary-lifecycle-go/library/features/command/moveexemplaries"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle/postgrescatalog"
)

func snapshotOnShelf(t *testing.T, id uuid.UUID, shelfID uuid.UUID) lifecycle.ExemplarySnapshot {
	t.Helper()

	snapshot, err := lifecycle.BuildExemplarySnapshot(id, "EX-"+id.String()[:8], false, shelfID, time.Time{})
	require.NoError(t, err)

	return snapshot
}

func snapshotInStorage(t *testing.T, id uuid.UUID) lifecycle.ExemplarySnapshot {
	t.Helper()

	snapshot, err := lifecycle.BuildExemplarySnapshot(id, "EX-"+id.String()[:8], true, uuid.Nil, time.Time{})
	require.NoError(t, err)

	return snapshot
}

func shelvedEvaluation(id uuid.UUID) lifecycle.Evaluation {
	return lifecycle.Evaluation{ExemplaryID: id, Status: lifecycle.StatusInShelf, IsAvailable: true}
}

func Test_Decide_MoveToExistingShelf_Accepts(t *testing.T) {
	exemplaryID := uuid.New()
	exemplaries := []lifecycle.ExemplarySnapshot{snapshotInStorage(t, exemplaryID)}
	evaluations := map[uuid.UUID]lifecycle.Evaluation{
		exemplaryID: {ExemplaryID: exemplaryID, Status: lifecycle.StatusInReserve, IsInReserve: true},
	}

	command, err := moveexemplaries.BuildCommand([]uuid.UUID{exemplaryID}, uuid.New())
	require.NoError(t, err)

	result := moveexemplaries.Decide(exemplaries, evaluations, true, command)

	assert.True(t, result.ShouldWrite())
	assert.NoError(t, result.HasError())
}

func Test_Decide_MoveToUnknownShelf_Rejects(t *testing.T) {
	exemplaryID := uuid.New()

	command, err := moveexemplaries.BuildCommand([]uuid.UUID{exemplaryID}, uuid.New())
	require.NoError(t, err)

	result := moveexemplaries.Decide(nil, nil, false, command)

	assert.ErrorIs(t, result.HasError(), core.ErrShelfNotFound)
}

func Test_Decide_MoveOfBorrowedExemplary_Rejects(t *testing.T) {
	exemplaryID := uuid.New()
	exemplaries := []lifecycle.ExemplarySnapshot{snapshotOnShelf(t, exemplaryID, uuid.New())}
	evaluations := map[uuid.UUID]lifecycle.Evaluation{
		exemplaryID: {ExemplaryID: exemplaryID, Status: lifecycle.StatusBorrowed},
	}

	command, err := moveexemplaries.BuildCommand([]uuid.UUID{exemplaryID}, uuid.New())
	require.NoError(t, err)

	result := moveexemplaries.Decide(exemplaries, evaluations, true, command)

	assert.ErrorIs(t, result.HasError(), core.ErrExemplaryBorrowed)
}

func Test_Decide_MoveOfQuarantinedExemplary_Rejects(t *testing.T) {
	exemplaryID := uuid.New()
	exemplaries := []lifecycle.ExemplarySnapshot{snapshotOnShelf(t, exemplaryID, uuid.New())}
	evaluations := map[uuid.UUID]lifecycle.Evaluation{
		exemplaryID: {ExemplaryID: exemplaryID, Status: lifecycle.StatusUndefined, IsInQuarantine: true},
	}

	command, err := moveexemplaries.BuildCommand([]uuid.UUID{exemplaryID}, uuid.New())
	require.NoError(t, err)

	result := moveexemplaries.Decide(exemplaries, evaluations, true, command)

	assert.ErrorIs(t, result.HasError(), core.ErrExemplaryInQuarantine)
}

func Test_Decide_MoveToCurrentLocation_IsIdempotent(t *testing.T) {
	shelfID := uuid.New()
	exemplaryID := uuid.New()
	exemplaries := []lifecycle.ExemplarySnapshot{snapshotOnShelf(t, exemplaryID, shelfID)}
	evaluations := map[uuid.UUID]lifecycle.Evaluation{exemplaryID: shelvedEvaluation(exemplaryID)}

	command, err := moveexemplaries.BuildCommand([]uuid.UUID{exemplaryID}, shelfID)
	require.NoError(t, err)

	result := moveexemplaries.Decide(exemplaries, evaluations, true, command)

	assert.False(t, result.ShouldWrite())
	assert.NoError(t, result.HasError())
}

func Test_Decide_MoveToReserveOfStoredExemplary_IsIdempotent(t *testing.T) {
	exemplaryID := uuid.New()
	exemplaries := []lifecycle.ExemplarySnapshot{snapshotInStorage(t, exemplaryID)}
	evaluations := map[uuid.UUID]lifecycle.Evaluation{
		exemplaryID: {ExemplaryID: exemplaryID, Status: lifecycle.StatusInReserve, IsInReserve: true},
	}

	command, err := moveexemplaries.BuildCommand([]uuid.UUID{exemplaryID}, uuid.Nil)
	require.NoError(t, err)

	result := moveexemplaries.Decide(exemplaries, evaluations, false, command)

	assert.False(t, result.ShouldWrite())
	assert.NoError(t, result.HasError())
}

type fakeCatalog struct {
	exemplaries []lifecycle.ExemplarySnapshot
	shelf       *postgrescatalog.Shelf
	evaluations map[uuid.UUID]lifecycle.Evaluation
	placed      []uuid.UUID
	placedOn    uuid.UUID
	stored      []uuid.UUID
}

func (f *fakeCatalog) LoadExemplaries(_ context.Context, _ []uuid.UUID) ([]lifecycle.ExemplarySnapshot, error) {
	return f.exemplaries, nil
}

func (f *fakeCatalog) LoadShelf(_ context.Context, _ uuid.UUID) (*postgrescatalog.Shelf, error) {
	return f.shelf, nil
}

func (f *fakeCatalog) PlaceOnShelf(_ context.Context, ids []uuid.UUID, shelfID uuid.UUID) error {
	f.placed = append(f.placed, ids...)
	f.placedOn = shelfID

	return nil
}

func (f *fakeCatalog) MoveToStorage(_ context.Context, ids []uuid.UUID) error {
	f.stored = append(f.stored, ids...)
	return nil
}

func (f *fakeCatalog) EvaluateBatch(
	_ context.Context,
	_ []lifecycle.ExemplarySnapshot,
) (map[uuid.UUID]lifecycle.Evaluation, error) {

	return f.evaluations, nil
}

func Test_CommandHandler_Handle_PlacesOnTargetShelf(t *testing.T) {
	shelfID := uuid.New()
	exemplaryID := uuid.New()
	catalog := &fakeCatalog{
		exemplaries: []lifecycle.ExemplarySnapshot{snapshotInStorage(t, exemplaryID)},
		shelf:       &postgrescatalog.Shelf{ID: shelfID, RoomID: uuid.New(), Number: 3},
		evaluations: map[uuid.UUID]lifecycle.Evaluation{
			exemplaryID: {ExemplaryID: exemplaryID, Status: lifecycle.StatusInReserve, IsInReserve: true},
		},
	}
	handler := moveexemplaries.NewCommandHandler(catalog, catalog)

	command, err := moveexemplaries.BuildCommand([]uuid.UUID{exemplaryID}, shelfID)
	require.NoError(t, err)

	result, handleErr := handler.Handle(context.Background(), command)

	require.NoError(t, handleErr)
	assert.False(t, result.Idempotent)
	assert.Equal(t, []uuid.UUID{exemplaryID}, catalog.placed)
	assert.Equal(t, shelfID, catalog.placedOn)
	assert.Empty(t, catalog.stored)
}

func Test_CommandHandler_Handle_MovesToStorage(t *testing.T) {
	shelfID := uuid.New()
	exemplaryID := uuid.New()
	catalog := &fakeCatalog{
		exemplaries: []lifecycle.ExemplarySnapshot{snapshotOnShelf(t, exemplaryID, shelfID)},
		evaluations: map[uuid.UUID]lifecycle.Evaluation{exemplaryID: shelvedEvaluation(exemplaryID)},
	}
	handler := moveexemplaries.NewCommandHandler(catalog, catalog)

	command, err := moveexemplaries.BuildCommand([]uuid.UUID{exemplaryID}, uuid.Nil)
	require.NoError(t, err)

	result, handleErr := handler.Handle(context.Background(), command)

	require.NoError(t, handleErr)
	assert.False(t, result.Idempotent)
	assert.Equal(t, []uuid.UUID{exemplaryID}, catalog.stored)
	assert.Empty(t, catalog.placed)
}
