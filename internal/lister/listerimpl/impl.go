package listerimpl

import (
	"context"
	"fmt"

	"github.com/kcgrab/kcgrab/internal/domain"
	"github.com/kcgrab/kcgrab/internal/lister"
	"github.com/kcgrab/kcgrab/internal/platform"
	"github.com/kcgrab/kcgrab/pkg/config"
	apperrors "github.com/kcgrab/kcgrab/pkg/errors"
	"github.com/kcgrab/kcgrab/pkg/logger"
	"github.com/samber/lo"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Platform platform.Client
	Config   *config.Config
	Logger   logger.Logger
}

type ListerImpl struct {
	Platform platform.Client
	Config   *config.Config
	Logger   logger.Logger
}

func New(opts Opts) *ListerImpl {
	return &ListerImpl{
		Platform: opts.Platform,
		Config:   opts.Config,
		Logger:   opts.Logger.WithComponent("ProfileLister"),
	}
}

var _ lister.Client = (*ListerImpl)(nil)

func (l *ListerImpl) List(ctx context.Context, ref domain.ProfileReference, sel domain.Selection) ([]domain.PostReference, error) {
	profile, err := l.Platform.GetProfile(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetching profile %s/%s: %w", ref.Service, ref.UserID, err)
	}

	var entries []platform.ListingEntry
	switch sel.Mode {
	case domain.SelectAll:
		entries, err = l.collect(ctx, ref, 0, profile.PostCount)
	case domain.SelectSinglePage:
		entries, err = l.Platform.ListPage(ctx, ref, sel.Offset)
	case domain.SelectOffsetRange:
		entries, err = l.collectRange(ctx, ref, sel, profile.PostCount)
	case domain.SelectIDRange:
		entries, err = l.collectBetween(ctx, ref, sel, profile.PostCount)
	default:
		return nil, apperrors.MalformedInput(string(sel.Mode), "unknown selection mode")
	}
	if err != nil {
		return nil, err
	}

	entries = lo.UniqBy(entries, func(e platform.ListingEntry) string { return e.PostID })

	// The listing is newest-first; ordering is applied to the final
	// sequence, not per page.
	if l.Config.Download.DownloadOlderFirst {
		entries = lo.Reverse(entries)
	}

	refs := make([]domain.PostReference, 0, len(entries))
	for _, e := range entries {
		refs = append(refs, domain.PostReference{
			Platform: ref.Platform,
			Service:  ref.Service,
			UserID:   ref.UserID,
			PostID:   e.PostID,
		})
	}

	l.Logger.Info("Listed profile posts",
		"service", ref.Service,
		"user_id", ref.UserID,
		"mode", string(sel.Mode),
		"count", len(refs))
	return refs, nil
}

// collect walks pages from startOffset until upperBound listing positions are
// covered or the API returns an empty page.
func (l *ListerImpl) collect(ctx context.Context, ref domain.ProfileReference, startOffset, upperBound int) ([]platform.ListingEntry, error) {
	var entries []platform.ListingEntry
	for offset := startOffset; upperBound < 0 || offset < upperBound; offset += platform.PageSize {
		page, err := l.Platform.ListPage(ctx, ref, offset)
		if err != nil {
			return nil, fmt.Errorf("listing page at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}
		entries = append(entries, page...)
	}
	return entries, nil
}

func (l *ListerImpl) collectRange(ctx context.Context, ref domain.ProfileReference, sel domain.Selection, postCount int) ([]platform.ListingEntry, error) {
	start, end := sel.Offset, sel.End
	if end < 0 || end > postCount {
		end = postCount
	}
	if start >= end {
		return nil, nil
	}

	// Page offsets are aligned to the platform page size; the exact
	// position range is sliced afterwards.
	firstPage := (start / platform.PageSize) * platform.PageSize
	entries, err := l.collect(ctx, ref, firstPage, end)
	if err != nil {
		return nil, err
	}

	low := start - firstPage
	high := end - firstPage
	if low > len(entries) {
		return nil, nil
	}
	if high > len(entries) {
		high = len(entries)
	}
	return entries[low:high], nil
}

// collectBetween scans the full listing and keeps the posts between the two
// boundary IDs, inclusive.
func (l *ListerImpl) collectBetween(ctx context.Context, ref domain.ProfileReference, sel domain.Selection, postCount int) ([]platform.ListingEntry, error) {
	entries, err := l.collect(ctx, ref, 0, postCount)
	if err != nil {
		return nil, err
	}

	first, last := -1, -1
	for i, e := range entries {
		if e.PostID == sel.FirstID && first < 0 {
			first = i
		}
		if e.PostID == sel.LastID && last < 0 {
			last = i
		}
	}
	if first < 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrBoundaryNotFound, sel.FirstID)
	}
	if last < 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrBoundaryNotFound, sel.LastID)
	}
	if first > last {
		first, last = last, first
	}
	return entries[first : last+1], nil
}
