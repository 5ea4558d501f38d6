package fusebooks

import (
	"errors"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle/postgrescatalog"
)

const (
	commandType = "FuseBooks"
)

var (
	// ErrNoDuplicateIDs is returned when a command is built without duplicate books.
	ErrNoDuplicateIDs = errors.New("at least one duplicate book id is required")
)

// Command represents the intent to fuse duplicate book records into one
// surviving record. Every exemplary of the duplicates is re-parented to the
// survivor, then the duplicate records are removed.
type Command struct {
	SurvivorID   uuid.UUID
	DuplicateIDs []uuid.UUID
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(survivorID uuid.UUID, duplicateIDs []uuid.UUID) (Command, error) {
	if survivorID == uuid.Nil {
		return Command{}, postgrescatalog.ErrNilBookID
	}

	if len(duplicateIDs) == 0 {
		return Command{}, ErrNoDuplicateIDs
	}

	for _, id := range duplicateIDs {
		if id == uuid.Nil {
			return Command{}, postgrescatalog.ErrNilBookID
		}
	}

	return Command{
		SurvivorID:   survivorID,
		DuplicateIDs: duplicateIDs,
	}, nil
}
