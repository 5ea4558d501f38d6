package availableexemplaries

import (
	"github.com/google/uuid"
)

const (
	queryType = "AvailableExemplaries"
)

// Query represents the request for every exemplary that is currently
// available for checkout.
type Query struct{}

// QueryType returns the type identifier for this query, used for observability and routing.
func (q Query) QueryType() string {
	return queryType
}

// AvailableExemplary is the reporting view of one available exemplary.
type AvailableExemplary struct {
	ExemplaryID uuid.UUID `json:"exemplary_id"`
	Identifier  string    `json:"identifier"`
	ShelfID     uuid.UUID `json:"shelf_id"`
}
