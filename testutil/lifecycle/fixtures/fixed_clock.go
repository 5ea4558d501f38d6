package fixtures

import "time"

// FixedClock returns a clock function that always reports the given instant.
// Use it with lifecycle.WithClock to evaluate as-of a fixed business date.
func FixedClock(instant time.Time) func() time.Time {
	return func() time.Time {
		return instant
	}
}
