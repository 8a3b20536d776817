package faillog

import "errors"

var ErrCannotPersist = errors.New("cannot persist failure log")

// Repository is the append-on-failure, remove-on-success log of post links
// that did not fully download. Implementations must serialize access: workers
// finish concurrently and each outcome is applied immediately.
type Repository interface {
	// Load returns the current set of failed links. A missing log file is
	// an empty set, not an error.
	Load() ([]string, error)

	// Record appends the link if absent. Idempotent.
	Record(link string) error

	// Clear removes the link. No-op if absent.
	Clear(link string) error
}
