package borrowexemplaries

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
)

const (
	commandType = "BorrowExemplaries"
)

var (
	// ErrNoExemplaryIDs is returned when a command is built without target exemplaries.
	ErrNoExemplaryIDs = errors.New("at least one exemplary id is required")
)

// Command represents the intent of a user to borrow a set of exemplaries.
// It encapsulates all the necessary information required to execute the borrow use case.
type Command struct {
	ExemplaryIDs []uuid.UUID
	UserID       uuid.UUID
	CheckoutDate time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
// The checkout date is normalized to a calendar date.
func BuildCommand(exemplaryIDs []uuid.UUID, userID uuid.UUID, checkoutDate time.Time) (Command, error) {
	if len(exemplaryIDs) == 0 {
		return Command{}, ErrNoExemplaryIDs
	}

	for _, id := range exemplaryIDs {
		if id == uuid.Nil {
			return Command{}, lifecycle.ErrNilExemplaryID
		}
	}

	if userID == uuid.Nil {
		return Command{}, lifecycle.ErrNilUserID
	}

	if checkoutDate.IsZero() {
		return Command{}, lifecycle.ErrZeroCheckoutDate
	}

	return Command{
		ExemplaryIDs: exemplaryIDs,
		UserID:       userID,
		CheckoutDate: lifecycle.ToLedgerDate(checkoutDate),
	}, nil
}
