package writer

import (
	"context"

	"github.com/kcgrab/kcgrab/internal/domain"
)

type Client interface {
	// WriteFiles creates the target directory and downloads every
	// attachment into it. The returned outcomes preserve attachment
	// order; one failed attachment does not stop the others.
	WriteFiles(ctx context.Context, target domain.DownloadTarget) ([]domain.FileOutcome, error)

	// WriteSummary renders the post's title, description, embeds and
	// attachment URLs to files.md or files.txt in the target directory,
	// overwriting any previous version.
	WriteSummary(target domain.DownloadTarget, format string) error
}
