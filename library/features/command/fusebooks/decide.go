package fusebooks

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/library/core"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle/postgrescatalog"
)

// Decide implements the business logic to determine whether the books may be
// fused. This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: a surviving book and a set of duplicate books
//	WHEN: FuseBooks command is received
//	THEN: every exemplary of the duplicates is re-parented and the duplicates are removed
//	ERROR: "surviving book must not be among the duplicates"
//	ERROR: "book does not exist" if the survivor or a duplicate is unknown
//	ERROR: "books by different authors cannot be fused"
func Decide(books []postgrescatalog.Book, command Command) core.DecisionResult {
	booksByID := make(map[uuid.UUID]postgrescatalog.Book, len(books))
	for _, book := range books {
		booksByID[book.ID] = book
	}

	for _, duplicateID := range command.DuplicateIDs {
		if duplicateID == command.SurvivorID {
			return core.RejectedDecision(core.ErrSurvivorAmongDuplicates)
		}
	}

	survivor, survivorFound := booksByID[command.SurvivorID]
	if !survivorFound {
		return core.RejectedDecision(core.ErrBookNotFound)
	}

	for _, duplicateID := range command.DuplicateIDs {
		duplicate, found := booksByID[duplicateID]
		if !found {
			return core.RejectedDecision(core.ErrBookNotFound)
		}

		if duplicate.Author != survivor.Author {
			return core.RejectedDecision(core.ErrAuthorsDiffer)
		}
	}

	return core.AcceptedDecision()
}

// FieldDifference describes one field of a duplicate that diverges from the
// survivor. Fusing keeps the survivor's value; the differences are surfaced so
// a curator can check nothing meaningful is lost.
type FieldDifference struct {
	BookID uuid.UUID
	Field  string
	Kept   string
	Lost   string
}

// PreviewDifferences lists the title, genre, and publication year divergences
// between the survivor and the duplicates.
func PreviewDifferences(books []postgrescatalog.Book, command Command) []FieldDifference {
	booksByID := make(map[uuid.UUID]postgrescatalog.Book, len(books))
	for _, book := range books {
		booksByID[book.ID] = book
	}

	survivor := booksByID[command.SurvivorID]
	differences := make([]FieldDifference, 0)

	for _, duplicateID := range command.DuplicateIDs {
		duplicate, found := booksByID[duplicateID]
		if !found {
			continue
		}

		if duplicate.Title != survivor.Title {
			differences = append(differences, FieldDifference{
				BookID: duplicateID, Field: "title", Kept: survivor.Title, Lost: duplicate.Title,
			})
		}

		if duplicate.Genre != survivor.Genre {
			differences = append(differences, FieldDifference{
				BookID: duplicateID, Field: "genre", Kept: survivor.Genre, Lost: duplicate.Genre,
			})
		}

		if duplicate.PublicationYear != survivor.PublicationYear {
			differences = append(differences, FieldDifference{
				BookID: duplicateID,
				Field:  "publication_year",
				Kept:   fmt.Sprintf("%d", survivor.PublicationYear),
				Lost:   fmt.Sprintf("%d", duplicate.PublicationYear),
			})
		}
	}

	return differences
}
