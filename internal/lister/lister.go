package lister

import (
	"context"

	"github.com/kcgrab/kcgrab/internal/domain"
)

// Client walks a profile's paginated post listing and applies a selection
// policy. The result is ordered; restart by calling List again with the same
// arguments.
type Client interface {
	List(ctx context.Context, ref domain.ProfileReference, sel domain.Selection) ([]domain.PostReference, error)
}
