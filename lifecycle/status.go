package lifecycle

// Status is the single discrete lifecycle label derived for an exemplary.
// Exactly one Status applies per exemplary at any instant.
type Status int

const (
	// StatusUndefined marks an exemplary whose placement data is inconsistent
	// or which is held in the quarantine area (mid-window or awaiting the
	// explicit return-to-shelf action).
	StatusUndefined Status = iota

	// StatusInReserve marks an exemplary deliberately held back from public
	// shelving, or one that was never shelved after acquisition.
	StatusInReserve

	// StatusInShelf marks an exemplary placed on a shelf and borrowable.
	StatusInShelf

	// StatusBorrowed marks an exemplary with an open checkout.
	StatusBorrowed
)

// String provides a string representation of Status for logging and reporting.
func (s Status) String() string {
	switch s {
	case StatusInReserve:
		return "in_reserve"
	case StatusInShelf:
		return "in_shelf"
	case StatusBorrowed:
		return "borrowed"
	case StatusUndefined:
		return "undefined"
	default:
		return "undefined"
	}
}
