package exemplarystatuses

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
)

const (
	queryType = "ExemplaryStatuses"

	// ViewType identifies cached snapshots of this query in the snapshot store.
	ViewType = "ExemplaryStatuses"
)

// Query represents the request for the derived status of a set of
// exemplaries. An empty ExemplaryIDs asks for the whole catalog.
type Query struct {
	ExemplaryIDs []uuid.UUID
}

// QueryType returns the type identifier for this query, used for observability and routing.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates a new Query with the provided parameters.
func BuildQuery(exemplaryIDs []uuid.UUID) (Query, error) {
	for _, id := range exemplaryIDs {
		if id == uuid.Nil {
			return Query{}, lifecycle.ErrNilExemplaryID
		}
	}

	return Query{ExemplaryIDs: exemplaryIDs}, nil
}

// Fingerprint identifies the exemplary set this query asks about, so a cached
// snapshot is never served for a different set.
func (q Query) Fingerprint() string {
	if len(q.ExemplaryIDs) == 0 {
		return "all"
	}

	ids := make([]string, 0, len(q.ExemplaryIDs))
	for _, id := range q.ExemplaryIDs {
		ids = append(ids, id.String())
	}

	sort.Strings(ids)

	digest := sha256.Sum256([]byte(strings.Join(ids, ",")))

	return hex.EncodeToString(digest[:])
}

// ExemplaryStatus is the reporting view of one exemplary's derived state.
type ExemplaryStatus struct {
	ExemplaryID      uuid.UUID `json:"exemplary_id"`
	Identifier       string    `json:"identifier"`
	Status           string    `json:"status"`
	IsAvailable      bool      `json:"is_available"`
	IsInQuarantine   bool      `json:"is_in_quarantine"`
	IsPastQuarantine bool      `json:"is_past_quarantine"`
	IsInReserve      bool      `json:"is_in_reserve"`
}
