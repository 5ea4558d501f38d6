package createshelves

import (
	"errors"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle/postgrescatalog"
)

const (
	commandType = "CreateShelves"
)

var (
	// ErrNonPositiveCount is returned when a command is built without a positive shelf count.
	ErrNonPositiveCount = errors.New("shelf count must be positive")
)

// Command represents the intent to install numbered shelves in a room.
type Command struct {
	RoomID      uuid.UUID
	FirstNumber int
	Count       int
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(roomID uuid.UUID, firstNumber int, count int) (Command, error) {
	if roomID == uuid.Nil {
		return Command{}, postgrescatalog.ErrNilRoomID
	}

	if firstNumber <= 0 {
		return Command{}, postgrescatalog.ErrNonPositiveShelfNumber
	}

	if count <= 0 {
		return Command{}, ErrNonPositiveCount
	}

	return Command{
		RoomID:      roomID,
		FirstNumber: firstNumber,
		Count:       count,
	}, nil
}
