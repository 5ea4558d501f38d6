package postgrescatalog

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
)

var (
	// ErrNilBookID is returned when a book reference is missing.
	ErrNilBookID = errors.New("book id must not be nil")

	// ErrEmptyTitle is returned when a book is built without a title.
	ErrEmptyTitle = errors.New("book title must not be empty")

	// ErrEmptyAuthor is returned when a book is built without an author.
	ErrEmptyAuthor = errors.New("book author must not be empty")

	// ErrNilRoomID is returned when a shelf is built without a room reference.
	ErrNilRoomID = errors.New("room id must not be nil")

	// ErrNilShelfID is returned when a shelf is built without an id.
	ErrNilShelfID = errors.New("shelf id must not be nil")

	// ErrNonPositiveShelfNumber is returned when a shelf number is zero or negative.
	ErrNonPositiveShelfNumber = errors.New("shelf number must be positive")

	// ErrZeroAcquisitionDate is returned when an exemplary is built without an acquisition date.
	ErrZeroAcquisitionDate = errors.New("acquisition date must not be zero")

	// ErrNegativePrice is returned when an exemplary carries a negative price.
	ErrNegativePrice = errors.New("price must not be negative")
)

// Book is the stored form of a book record.
type Book struct {
	ID              uuid.UUID
	Title           string
	Author          string
	Genre           string
	PublicationYear int
}

// BuildBook is a factory method for a Book with validation.
func BuildBook(id uuid.UUID, title, author, genre string, publicationYear int) (Book, error) {
	if id == uuid.Nil {
		return Book{}, ErrNilBookID
	}

	if title == "" {
		return Book{}, ErrEmptyTitle
	}

	if author == "" {
		return Book{}, ErrEmptyAuthor
	}

	return Book{
		ID:              id,
		Title:           title,
		Author:          author,
		Genre:           genre,
		PublicationYear: publicationYear,
	}, nil
}

// Shelf is the stored form of a shelf within a room.
type Shelf struct {
	ID     uuid.UUID
	RoomID uuid.UUID
	Number int
}

// BuildShelf is a factory method for a Shelf with validation.
func BuildShelf(id uuid.UUID, roomID uuid.UUID, number int) (Shelf, error) {
	if id == uuid.Nil {
		return Shelf{}, ErrNilShelfID
	}

	if roomID == uuid.Nil {
		return Shelf{}, ErrNilRoomID
	}

	if number <= 0 {
		return Shelf{}, ErrNonPositiveShelfNumber
	}

	return Shelf{ID: id, RoomID: roomID, Number: number}, nil
}

// NewExemplary carries the fields of an exemplary to be created.
//
// A zero ShelfID places the exemplary without a location; combined with
// InStorage it lands in the reserve.
type NewExemplary struct {
	ID              uuid.UUID
	Identifier      string
	BookID          uuid.UUID
	AcquisitionDate time.Time
	PriceCents      int64
	InStorage       bool
	ShelfID         uuid.UUID
}

// BuildNewExemplary is a factory method for a NewExemplary with validation.
// It enforces the storage invariant: an exemplary in storage must not
// reference a shelf.
func BuildNewExemplary(
	id uuid.UUID,
	identifier string,
	bookID uuid.UUID,
	acquisitionDate time.Time,
	priceCents int64,
	inStorage bool,
	shelfID uuid.UUID,
) (NewExemplary, error) {

	if id == uuid.Nil {
		return NewExemplary{}, lifecycle.ErrNilExemplaryID
	}

	if identifier == "" {
		return NewExemplary{}, lifecycle.ErrEmptyIdentifier
	}

	if bookID == uuid.Nil {
		return NewExemplary{}, ErrNilBookID
	}

	if acquisitionDate.IsZero() {
		return NewExemplary{}, ErrZeroAcquisitionDate
	}

	if priceCents < 0 {
		return NewExemplary{}, ErrNegativePrice
	}

	if inStorage && shelfID != uuid.Nil {
		return NewExemplary{}, lifecycle.ErrStoredExemplaryHasLocation
	}

	return NewExemplary{
		ID:              id,
		Identifier:      identifier,
		BookID:          bookID,
		AcquisitionDate: lifecycle.ToLedgerDate(acquisitionDate),
		PriceCents:      priceCents,
		InStorage:       inStorage,
		ShelfID:         shelfID,
	}, nil
}
