package app

import (
	"context"
	"fmt"

	"github.com/kcgrab/kcgrab/internal/domain"
	"github.com/kcgrab/kcgrab/internal/downloader"
	"github.com/kcgrab/kcgrab/internal/resolver"
	"github.com/kcgrab/kcgrab/pkg/logger"
)

// dispatch maps the CLI request onto one orchestrator operation. Bad input
// tokens are reported individually; valid ones still run.
func dispatch(ctx context.Context, log logger.Logger, dl downloader.Client, req *Request) (*domain.Report, error) {
	switch {
	case req.RetryFailed:
		return dl.RetryFailed(ctx)

	case req.Links != "":
		refs, errs := resolver.PostLinks(req.Links)
		for _, err := range errs {
			log.Error("Skipping invalid link", "error", err)
		}
		if len(refs) == 0 {
			return nil, fmt.Errorf("no valid post links in input")
		}
		return dl.DownloadPosts(ctx, refs)

	case req.Profile != "" && req.IDs != "":
		profile, err := resolver.ProfileLink(req.Profile)
		if err != nil {
			return nil, err
		}
		refs, errs := resolver.PostIDs(profile, req.IDs)
		for _, err := range errs {
			log.Error("Skipping invalid post ID", "error", err)
		}
		if len(refs) == 0 {
			return nil, fmt.Errorf("no valid post IDs in input")
		}
		return dl.DownloadPosts(ctx, refs)

	case req.Profile != "":
		profile, err := resolver.ProfileLink(req.Profile)
		if err != nil {
			return nil, err
		}
		sel, err := resolver.Selection(req.Mode)
		if err != nil {
			return nil, err
		}
		return dl.DownloadProfile(ctx, profile, sel)

	default:
		return nil, fmt.Errorf("nothing to do: pass post links, a profile link, or -retry")
	}
}
