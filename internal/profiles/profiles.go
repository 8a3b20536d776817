package profiles

import (
	"errors"

	"github.com/kcgrab/kcgrab/internal/domain"
)

var ErrNotFound = errors.New("profile not found")

// Repository caches author metadata per platform so repeated runs don't
// re-fetch profiles. Backed by <platform>/profiles.json on disk.
type Repository interface {
	Get(pf domain.Platform, userID string) (*domain.Profile, error)
	Put(pf domain.Platform, profile domain.Profile) error
}
