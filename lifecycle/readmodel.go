package lifecycle

import (
	"encoding/json"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var (
	// ErrInvalidSnapshotJSON is returned when snapshot JSON data is malformed or invalid.
	ErrInvalidSnapshotJSON = errors.New("snapshot json is not valid")

	// ErrEmptyViewType is returned when an empty view type is provided.
	ErrEmptyViewType = errors.New("view type must not be empty")

	// ErrEmptyFingerprint is returned when an empty fingerprint is provided.
	ErrEmptyFingerprint = errors.New("fingerprint must not be empty")

	// ErrSavingSnapshotFailed is returned when the snapshot save operation fails.
	ErrSavingSnapshotFailed = errors.New("saving snapshot failed")

	// ErrLoadingSnapshotFailed is returned when the snapshot load operation fails.
	ErrLoadingSnapshotFailed = errors.New("loading snapshot failed")

	// ErrDeletingSnapshotFailed is returned when the snapshot delete operation fails.
	ErrDeletingSnapshotFailed = errors.New("deleting snapshot failed")
)

// EvaluationSnapshot is a cached read model of a batch evaluation.
//
// Evaluations are normally derived on the fly; reporting callers that can
// tolerate stale data may persist one of these instead of re-deriving the
// whole catalog. The fingerprint identifies the exemplary set and predicate
// the snapshot was computed for, so a stale snapshot is never served for a
// different question.
type EvaluationSnapshot struct {
	ViewType    string          // Kind of view (e.g. "ExemplaryStatuses")
	Fingerprint string          // Hash of the exemplary set / predicate this snapshot answers
	EvaluatedAt time.Time       // The "today" the evaluations were derived for
	Data        json.RawMessage // Serialized evaluations as JSON
	CreatedAt   time.Time       // When this snapshot was created/updated
}

// Validate ensures the snapshot has valid data for storage operations.
func (s EvaluationSnapshot) Validate() error {
	if s.ViewType == "" {
		return ErrEmptyViewType
	}

	if s.Fingerprint == "" {
		return ErrEmptyFingerprint
	}

	if !jsoniter.ConfigFastest.Valid(s.Data) {
		return ErrInvalidSnapshotJSON
	}

	return nil
}

// BuildEvaluationSnapshot creates a new EvaluationSnapshot with validation.
func BuildEvaluationSnapshot(
	viewType string,
	fingerprint string,
	evaluatedAt time.Time,
	data json.RawMessage,
) (EvaluationSnapshot, error) {

	snapshot := EvaluationSnapshot{
		ViewType:    viewType,
		Fingerprint: fingerprint,
		EvaluatedAt: ToLedgerDate(evaluatedAt),
		Data:        data,
		CreatedAt:   time.Now(),
	}

	if err := snapshot.Validate(); err != nil {
		return EvaluationSnapshot{}, err
	}

	return snapshot, nil
}
