package downloaderimpl

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kcgrab/kcgrab/internal/domain"
	"github.com/kcgrab/kcgrab/internal/profiles"
	"github.com/kcgrab/kcgrab/internal/resolver"
	apperrors "github.com/kcgrab/kcgrab/pkg/errors"
	"github.com/kcgrab/kcgrab/pkg/retry"
	"github.com/panjf2000/ants/v2"
)

type postStatus int

const (
	statusSucceeded postStatus = iota
	statusFailed
	statusSkipped
)

func (d *DownloaderImpl) DownloadProfile(ctx context.Context, ref domain.ProfileReference, sel domain.Selection) (*domain.Report, error) {
	refs, err := d.Lister.List(ctx, ref, sel)
	if err != nil {
		return nil, err
	}
	return d.DownloadPosts(ctx, refs)
}

func (d *DownloaderImpl) DownloadPosts(ctx context.Context, refs []domain.PostReference) (*domain.Report, error) {
	workers := d.Config.Download.Workers
	if workers < 1 {
		workers = 1
	}

	d.Logger.Info("Starting downloads", "posts", len(refs), "workers", workers)

	pool, err := ants.NewPool(workers, ants.WithPreAlloc(true))
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg         sync.WaitGroup
		statsMutex sync.Mutex
		report     domain.Report
	)

	for _, ref := range refs {
		wg.Add(1)
		refToProcess := ref

		err := pool.Submit(func() {
			defer wg.Done()
			select {
			case <-ctx.Done():
				d.Logger.Info("Skipping post due to context cancellation", "post_id", refToProcess.PostID)
				statsMutex.Lock()
				report.Skipped++
				statsMutex.Unlock()
				return
			default:
				status := d.processPost(ctx, refToProcess)
				statsMutex.Lock()
				switch status {
				case statusSucceeded:
					report.Succeeded++
				case statusFailed:
					report.Failed++
					report.FailedLinks = append(report.FailedLinks, d.postLink(refToProcess))
				case statusSkipped:
					report.Skipped++
				}
				statsMutex.Unlock()
			}
		})
		if err != nil {
			wg.Done()
			d.Logger.Error("Failed to submit post to worker pool", "post_id", refToProcess.PostID, "error", err)
			statsMutex.Lock()
			report.Failed++
			statsMutex.Unlock()
		}
	}

	wg.Wait()

	d.Logger.Info("Download run completed",
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped)
	return &report, nil
}

func (d *DownloaderImpl) RetryFailed(ctx context.Context) (*domain.Report, error) {
	links, err := d.FailLog.Load()
	if err != nil {
		return nil, fmt.Errorf("loading failure log: %w", err)
	}
	if len(links) == 0 {
		d.Logger.Info("Failure log is empty, nothing to retry")
		return &domain.Report{}, nil
	}

	var refs []domain.PostReference
	for _, link := range links {
		ref, err := resolver.PostLink(link)
		if err != nil {
			d.Logger.Warn("Dropping unparseable failure log entry", "link", link, "error", err)
			if clearErr := d.FailLog.Clear(link); clearErr != nil {
				d.Logger.Error("Failed to clear failure log entry", "link", link, "error", clearErr)
			}
			continue
		}
		refs = append(refs, ref)
	}

	d.Logger.Info("Retrying failed downloads", "count", len(refs))
	return d.DownloadPosts(ctx, refs)
}

// processPost runs the full pipeline for one post. Every error is converted
// into a failure classification here; nothing propagates to abort the run.
func (d *DownloaderImpl) processPost(ctx context.Context, ref domain.PostReference) postStatus {
	link := d.postLink(ref)

	record, err := d.fetchWithRetry(ctx, ref)
	if err != nil {
		d.Logger.Error("Failed to fetch post", "link", link, "error", err)
		d.recordFailure(link)
		return statusFailed
	}

	if record.IsEmpty() && !d.Config.Download.TakeEmptyPosts {
		d.Logger.Debug("Excluding empty post", "post_id", ref.PostID)
		return statusSkipped
	}

	authorName, err := d.authorName(ctx, ref.Profile())
	if err != nil {
		d.Logger.Error("Failed to resolve author", "link", link, "error", err)
		d.recordFailure(link)
		return statusFailed
	}

	target := domain.DownloadTarget{
		Record: record,
		Dir:    d.postDir(record, authorName),
	}

	if d.Config.Download.SaveInfo {
		if err := d.Writer.WriteSummary(target, d.Config.Download.SaveInfoFormat); err != nil {
			// Summary failure does not block the file downloads.
			d.Logger.Error("Failed to write summary", "dir", target.Dir, "error", err)
		}
	}

	outcomes, err := d.Writer.WriteFiles(ctx, target)
	if err != nil || !domain.AllSucceeded(outcomes) {
		failed := 0
		for _, o := range outcomes {
			if !o.Success {
				failed++
			}
		}
		d.Logger.Warn("Post downloaded with failures",
			"link", link,
			"failed_files", failed,
			"total_files", len(outcomes),
			"error", err)
		d.recordFailure(link)
		return statusFailed
	}

	if err := d.FailLog.Clear(link); err != nil {
		d.Logger.Error("Failed to clear failure log entry", "link", link, "error", err)
	}
	d.Logger.Info("Post downloaded", "link", link, "files", len(outcomes))
	return statusSucceeded
}

// fetchWithRetry applies the orchestrator's retry policy: bounded constant
// backoff for rate limits and transient network errors, immediate failure for
// a missing post.
func (d *DownloaderImpl) fetchWithRetry(ctx context.Context, ref domain.PostReference) (*domain.PostRecord, error) {
	var record *domain.PostRecord

	operation := func() error {
		rec, err := d.Platform.GetPost(ctx, ref)
		if err != nil {
			if apperrors.IsPostNotFound(err) || !apperrors.IsRetryable(err) {
				return retry.Permanent(err)
			}
			return err
		}
		record = rec
		return nil
	}

	err := retry.Do(ctx, d.Logger, "fetch post "+ref.PostID, operation, retry.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return record, nil
}

// authorName returns the profile's display name, fetching and caching it on
// first use.
func (d *DownloaderImpl) authorName(ctx context.Context, ref domain.ProfileReference) (string, error) {
	cached, err := d.ProfileRepo.Get(ref.Platform, ref.UserID)
	if err == nil {
		return cached.Name, nil
	}
	if !errors.Is(err, profiles.ErrNotFound) {
		d.Logger.Warn("Profile cache read failed", "user_id", ref.UserID, "error", err)
	}

	profile, err := d.Platform.GetProfile(ctx, ref)
	if err != nil {
		return "", err
	}
	if err := d.ProfileRepo.Put(ref.Platform, *profile); err != nil {
		d.Logger.Warn("Profile cache write failed", "user_id", ref.UserID, "error", err)
	}
	return profile.Name, nil
}

func (d *DownloaderImpl) recordFailure(link string) {
	if err := d.FailLog.Record(link); err != nil {
		d.Logger.Error("Failed to record failure log entry", "link", link, "error", err)
	}
}
