package returnexemplaries

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
)

const (
	commandType = "ReturnExemplaries"
)

var (
	// ErrNoExemplaryIDs is returned when a command is built without target exemplaries.
	ErrNoExemplaryIDs = errors.New("at least one exemplary id is required")

	// ErrZeroReturnDate is returned when a command is built without a return date.
	ErrZeroReturnDate = errors.New("return date must not be zero")
)

// Command represents the intent to return a set of borrowed exemplaries.
// Returning closes the open checkout and starts a fresh quarantine cycle, so
// any earlier return-to-shelf action is reset as part of the workflow.
type Command struct {
	ExemplaryIDs []uuid.UUID
	ReturnDate   time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
// The return date is normalized to a calendar date.
func BuildCommand(exemplaryIDs []uuid.UUID, returnDate time.Time) (Command, error) {
	if len(exemplaryIDs) == 0 {
		return Command{}, ErrNoExemplaryIDs
	}

	for _, id := range exemplaryIDs {
		if id == uuid.Nil {
			return Command{}, lifecycle.ErrNilExemplaryID
		}
	}

	if returnDate.IsZero() {
		return Command{}, ErrZeroReturnDate
	}

	return Command{
		ExemplaryIDs: exemplaryIDs,
		ReturnDate:   lifecycle.ToLedgerDate(returnDate),
	}, nil
}
