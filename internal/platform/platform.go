package platform

import (
	"context"

	"github.com/kcgrab/kcgrab/internal/domain"
)

// PageSize is the fixed listing page size imposed by the platform API.
const PageSize = 50

// ListingEntry is one row of a paginated profile listing.
type ListingEntry struct {
	PostID string
	Title  string
}

type Client interface {
	// GetProfile fetches author metadata, including the total post count.
	GetProfile(ctx context.Context, ref domain.ProfileReference) (*domain.Profile, error)

	// GetPost fetches a single post's metadata and file manifest.
	GetPost(ctx context.Context, ref domain.PostReference) (*domain.PostRecord, error)

	// ListPage fetches one page of a profile's post listing at the given
	// offset. An empty page means the end of the listing.
	ListPage(ctx context.Context, ref domain.ProfileReference, offset int) ([]ListingEntry, error)
}
