package downloader

import (
	"context"

	"github.com/kcgrab/kcgrab/internal/domain"
)

// Client drives the whole pipeline: resolve targets, fetch posts, write
// files, keep the failure log consistent, report totals. Errors are absorbed
// per post; a run never aborts because one post failed.
type Client interface {
	// DownloadPosts downloads the given posts with the configured worker
	// pool.
	DownloadPosts(ctx context.Context, refs []domain.PostReference) (*domain.Report, error)

	// DownloadProfile lists a profile with the selection policy and
	// downloads the result.
	DownloadProfile(ctx context.Context, ref domain.ProfileReference, sel domain.Selection) (*domain.Report, error)

	// RetryFailed re-attempts every link in the failure log. Fully
	// successful posts are removed from the log.
	RetryFailed(ctx context.Context) (*domain.Report, error)
}
