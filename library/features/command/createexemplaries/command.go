package createexemplaries

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle/postgrescatalog"
)

const (
	commandType = "CreateExemplaries"
)

var (
	// ErrNonPositiveCount is returned when a command is built without a positive exemplary count.
	ErrNonPositiveCount = errors.New("exemplary count must be positive")

	// ErrEmptyIdentifierPrefix is returned when a command is built without an identifier prefix.
	ErrEmptyIdentifierPrefix = errors.New("identifier prefix must not be empty")
)

// Command represents the intent to acquire new exemplaries of a book.
// A zero ShelfID places the new exemplaries into the reserve; otherwise they
// go straight onto the given shelf.
type Command struct {
	BookID           uuid.UUID
	ShelfID          uuid.UUID
	IdentifierPrefix string
	Count            int
	AcquisitionDate  time.Time
	PriceCents       int64
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// TargetsReserve reports whether the new exemplaries are held back from shelving.
func (c Command) TargetsReserve() bool {
	return c.ShelfID == uuid.Nil
}

// Identifiers returns the generated exemplary identifiers, prefix plus a
// running number starting at 1.
func (c Command) Identifiers() []string {
	identifiers := make([]string, 0, c.Count)
	for n := 1; n <= c.Count; n++ {
		identifiers = append(identifiers, fmt.Sprintf("%s-%03d", c.IdentifierPrefix, n))
	}

	return identifiers
}

// BuildCommand creates a new Command with the provided parameters.
// The acquisition date is normalized to a calendar date.
func BuildCommand(
	bookID uuid.UUID,
	shelfID uuid.UUID,
	identifierPrefix string,
	count int,
	acquisitionDate time.Time,
	priceCents int64,
) (Command, error) {

	if bookID == uuid.Nil {
		return Command{}, postgrescatalog.ErrNilBookID
	}

	if identifierPrefix == "" {
		return Command{}, ErrEmptyIdentifierPrefix
	}

	if count <= 0 {
		return Command{}, ErrNonPositiveCount
	}

	if acquisitionDate.IsZero() {
		return Command{}, postgrescatalog.ErrZeroAcquisitionDate
	}

	if priceCents < 0 {
		return Command{}, postgrescatalog.ErrNegativePrice
	}

	return Command{
		BookID:           bookID,
		ShelfID:          shelfID,
		IdentifierPrefix: identifierPrefix,
		Count:            count,
		AcquisitionDate:  lifecycle.ToLedgerDate(acquisitionDate),
		PriceCents:       priceCents,
	}, nil
}
