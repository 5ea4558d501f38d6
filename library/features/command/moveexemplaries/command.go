package moveexemplaries

import (
	"errors"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
)

const (
	commandType = "MoveExemplaries"
)

var (
	// ErrNoExemplaryIDs is returned when a command is built without target exemplaries.
	ErrNoExemplaryIDs = errors.New("at least one exemplary id is required")
)

// Command represents the intent to move a set of exemplaries to a new
// location: onto a shelf, or into the reserve when TargetShelfID is zero.
type Command struct {
	ExemplaryIDs  []uuid.UUID
	TargetShelfID uuid.UUID
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// TargetsReserve reports whether the move puts the exemplaries into storage.
func (c Command) TargetsReserve() bool {
	return c.TargetShelfID == uuid.Nil
}

// BuildCommand creates a new Command with the provided parameters.
// A zero targetShelfID moves the exemplaries into the reserve.
func BuildCommand(exemplaryIDs []uuid.UUID, targetShelfID uuid.UUID) (Command, error) {
	if len(exemplaryIDs) == 0 {
		return Command{}, ErrNoExemplaryIDs
	}

	for _, id := range exemplaryIDs {
		if id == uuid.Nil {
			return Command{}, lifecycle.ErrNilExemplaryID
		}
	}

	return Command{
		ExemplaryIDs:  exemplaryIDs,
		TargetShelfID: targetShelfID,
	}, nil
}
