package createshelves_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediatheque/exemplary-lifecycle-go/library/features/command/createshelves"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle/postgrescatalog"
)

type fakeCatalog struct {
	inserted []postgrescatalog.Shelf
}

func (f *fakeCatalog) InsertShelves(_ context.Context, shelves []postgrescatalog.Shelf) error {
	f.inserted = append(f.inserted, shelves...)
	return nil
}

func Test_CommandHandler_Handle_CreatesConsecutivelyNumberedShelves(t *testing.T) {
	catalog := &fakeCatalog{}
	handler := createshelves.NewCommandHandler(catalog)
	roomID := uuid.New()

	command, err := createshelves.BuildCommand(roomID, 4, 3)
	require.NoError(t, err)

	result, handleErr := handler.Handle(context.Background(), command)

	require.NoError(t, handleErr)
	assert.False(t, result.Idempotent)
	require.Len(t, catalog.inserted, 3)

	for i, shelf := range catalog.inserted {
		assert.Equal(t, roomID, shelf.RoomID)
		assert.Equal(t, 4+i, shelf.Number)
		assert.NotEqual(t, uuid.Nil, shelf.ID)
	}
}

func Test_BuildCommand_InvalidInput(t *testing.T) {
	testCases := []struct {
		name        string
		roomID      uuid.UUID
		firstNumber int
		count       int
		expectedErr error
	}{
		{"nil room id", uuid.Nil, 1, 1, postgrescatalog.ErrNilRoomID},
		{"zero first number", uuid.New(), 0, 1, postgrescatalog.ErrNonPositiveShelfNumber},
		{"zero count", uuid.New(), 1, 0, createshelves.ErrNonPositiveCount},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := createshelves.BuildCommand(tc.roomID, tc.firstNumber, tc.count)

			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}
