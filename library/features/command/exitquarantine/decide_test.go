package exitquarantine_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediatheque/exemplary-lifecycle-go/library/core"
	"github.com/mediatheque/exemplary-lifecycle-go/library/features/command/exitquarantine"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle/postgrescatalog"
)

func today() time.Time {
	return time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
}

func quarantinedSnapshot(t *testing.T, id uuid.UUID) lifecycle.ExemplarySnapshot {
	t.Helper()

	snapshot, err := lifecycle.BuildExemplarySnapshot(id, "EX-"+id.String()[:8], false, uuid.Nil, time.Time{})
	require.NoError(t, err)

	return snapshot
}

func pastQuarantineEvaluation(id uuid.UUID) lifecycle.Evaluation {
	return lifecycle.Evaluation{ExemplaryID: id, Status: lifecycle.StatusUndefined, IsPastQuarantine: true}
}

func Test_Decide_PastQuarantine_Accepts(t *testing.T) {
	exemplaryID := uuid.New()
	exemplaries := []lifecycle.ExemplarySnapshot{quarantinedSnapshot(t, exemplaryID)}
	evaluations := map[uuid.UUID]lifecycle.Evaluation{exemplaryID: pastQuarantineEvaluation(exemplaryID)}

	command, err := exitquarantine.BuildCommand([]uuid.UUID{exemplaryID}, uuid.New(), today())
	require.NoError(t, err)

	result := exitquarantine.Decide(exemplaries, evaluations, true, command, today())

	assert.True(t, result.ShouldWrite())
	assert.NoError(t, result.HasError())
}

func Test_Decide_StillInQuarantine_Rejects(t *testing.T) {
	exemplaryID := uuid.New()
	exemplaries := []lifecycle.ExemplarySnapshot{quarantinedSnapshot(t, exemplaryID)}
	evaluations := map[uuid.UUID]lifecycle.Evaluation{
		exemplaryID: {ExemplaryID: exemplaryID, Status: lifecycle.StatusUndefined, IsInQuarantine: true},
	}

	command, err := exitquarantine.BuildCommand([]uuid.UUID{exemplaryID}, uuid.New(), today())
	require.NoError(t, err)

	result := exitquarantine.Decide(exemplaries, evaluations, true, command, today())

	assert.ErrorIs(t, result.HasError(), core.ErrQuarantineStillActive)
}

func Test_Decide_NotWaitingPastQuarantine_Rejects(t *testing.T) {
	exemplaryID := uuid.New()
	exemplaries := []lifecycle.ExemplarySnapshot{quarantinedSnapshot(t, exemplaryID)}
	evaluations := map[uuid.UUID]lifecycle.Evaluation{
		exemplaryID: {ExemplaryID: exemplaryID, Status: lifecycle.StatusInReserve, IsInReserve: true},
	}

	command, err := exitquarantine.BuildCommand([]uuid.UUID{exemplaryID}, uuid.New(), today())
	require.NoError(t, err)

	result := exitquarantine.Decide(exemplaries, evaluations, true, command, today())

	assert.ErrorIs(t, result.HasError(), core.ErrNotPastQuarantine)
}

func Test_Decide_UnknownShelf_Rejects(t *testing.T) {
	exemplaryID := uuid.New()

	command, err := exitquarantine.BuildCommand([]uuid.UUID{exemplaryID}, uuid.New(), today())
	require.NoError(t, err)

	result := exitquarantine.Decide(nil, nil, false, command, today())

	assert.ErrorIs(t, result.HasError(), core.ErrShelfNotFound)
}

func Test_Decide_FutureDate_Rejects(t *testing.T) {
	exemplaryID := uuid.New()

	command, err := exitquarantine.BuildCommand([]uuid.UUID{exemplaryID}, uuid.New(), today().AddDate(0, 0, 2))
	require.NoError(t, err)

	result := exitquarantine.Decide(nil, nil, true, command, today())

	assert.ErrorIs(t, result.HasError(), core.ErrDateInFuture)
}

func Test_Decide_AlreadyBackOnShelf_IsIdempotent(t *testing.T) {
	exemplaryID := uuid.New()

	snapshot, err := lifecycle.BuildExemplarySnapshot(
		exemplaryID, "EX-1", false, uuid.New(), today().AddDate(0, 0, -1))
	require.NoError(t, err)

	evaluations := map[uuid.UUID]lifecycle.Evaluation{
		exemplaryID: {ExemplaryID: exemplaryID, Status: lifecycle.StatusInShelf, IsAvailable: true},
	}

	command, buildErr := exitquarantine.BuildCommand([]uuid.UUID{exemplaryID}, uuid.New(), today())
	require.NoError(t, buildErr)

	result := exitquarantine.Decide([]lifecycle.ExemplarySnapshot{snapshot}, evaluations, true, command, today())

	assert.False(t, result.ShouldWrite())
	assert.NoError(t, result.HasError())
}

type fakeCatalog struct {
	exemplaries []lifecycle.ExemplarySnapshot
	shelf       *postgrescatalog.Shelf
	evaluations map[uuid.UUID]lifecycle.Evaluation
	stamped     []uuid.UUID
	stampedOn   time.Time
	placed      []uuid.UUID
}

func (f *fakeCatalog) LoadExemplaries(_ context.Context, _ []uuid.UUID) ([]lifecycle.ExemplarySnapshot, error) {
	return f.exemplaries, nil
}

func (f *fakeCatalog) LoadShelf(_ context.Context, _ uuid.UUID) (*postgrescatalog.Shelf, error) {
	return f.shelf, nil
}

func (f *fakeCatalog) StampReturnToShelf(_ context.Context, ids []uuid.UUID, date time.Time) error {
	f.stamped = append(f.stamped, ids...)
	f.stampedOn = date

	return nil
}

func (f *fakeCatalog) PlaceOnShelf(_ context.Context, ids []uuid.UUID, _ uuid.UUID) error {
	f.placed = append(f.placed, ids...)
	return nil
}

func (f *fakeCatalog) EvaluateBatch(
	_ context.Context,
	_ []lifecycle.ExemplarySnapshot,
) (map[uuid.UUID]lifecycle.Evaluation, error) {

	return f.evaluations, nil
}

func Test_CommandHandler_Handle_StampsAndPlaces(t *testing.T) {
	exemplaryID := uuid.New()
	shelfID := uuid.New()
	catalog := &fakeCatalog{
		exemplaries: []lifecycle.ExemplarySnapshot{quarantinedSnapshot(t, exemplaryID)},
		shelf:       &postgrescatalog.Shelf{ID: shelfID, RoomID: uuid.New(), Number: 1},
		evaluations: map[uuid.UUID]lifecycle.Evaluation{exemplaryID: pastQuarantineEvaluation(exemplaryID)},
	}
	handler := exitquarantine.NewCommandHandler(catalog, catalog, exitquarantine.WithClock(today))

	command, err := exitquarantine.BuildCommand([]uuid.UUID{exemplaryID}, shelfID, today())
	require.NoError(t, err)

	result, handleErr := handler.Handle(context.Background(), command)

	require.NoError(t, handleErr)
	assert.False(t, result.Idempotent)
	assert.Equal(t, []uuid.UUID{exemplaryID}, catalog.stamped)
	assert.Equal(t, today(), catalog.stampedOn)
	assert.Equal(t, []uuid.UUID{exemplaryID}, catalog.placed)
}
