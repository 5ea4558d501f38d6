package exitquarantine

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
)

const (
	commandType = "ExitQuarantine"
)

var (
	// ErrNoExemplaryIDs is returned when a command is built without target exemplaries.
	ErrNoExemplaryIDs = errors.New("at least one exemplary id is required")

	// ErrNilShelfID is returned when a command is built without a target shelf.
	ErrNilShelfID = errors.New("shelf id must not be nil")

	// ErrZeroReturnToShelfDate is returned when a command is built without a return-to-shelf date.
	ErrZeroReturnToShelfDate = errors.New("return-to-shelf date must not be zero")
)

// Command represents the explicit return-to-shelf action that ends an
// exemplary's stay in the quarantine area: the date is stamped and the
// exemplary goes back onto a shelf.
type Command struct {
	ExemplaryIDs      []uuid.UUID
	ShelfID           uuid.UUID
	ReturnToShelfDate time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
// The return-to-shelf date is normalized to a calendar date.
func BuildCommand(exemplaryIDs []uuid.UUID, shelfID uuid.UUID, returnToShelfDate time.Time) (Command, error) {
	if len(exemplaryIDs) == 0 {
		return Command{}, ErrNoExemplaryIDs
	}

	for _, id := range exemplaryIDs {
		if id == uuid.Nil {
			return Command{}, lifecycle.ErrNilExemplaryID
		}
	}

	if shelfID == uuid.Nil {
		return Command{}, ErrNilShelfID
	}

	if returnToShelfDate.IsZero() {
		return Command{}, ErrZeroReturnToShelfDate
	}

	return Command{
		ExemplaryIDs:      exemplaryIDs,
		ShelfID:           shelfID,
		ReturnToShelfDate: lifecycle.ToLedgerDate(returnToShelfDate),
	}, nil
}
