package writerimpl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kcgrab/kcgrab/internal/domain"
	apperrors "github.com/kcgrab/kcgrab/pkg/errors"
	"github.com/kcgrab/kcgrab/pkg/formatter"
	"golang.org/x/sync/errgroup"
)

type plannedFile struct {
	index      int
	attachment domain.Attachment
	localPath  string
	duplicate  bool
	offSite    bool
}

func (w *WriterImpl) WriteFiles(ctx context.Context, target domain.DownloadTarget) ([]domain.FileOutcome, error) {
	if err := os.MkdirAll(target.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", apperrors.ErrIO, target.Dir, err)
	}

	planned := w.plan(target)
	outcomes := make([]domain.FileOutcome, len(planned))

	concurrency := w.cfg.Download.FileConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, pf := range planned {
		outcomes[i] = domain.FileOutcome{URL: pf.attachment.URL, LocalPath: pf.localPath}

		if pf.offSite {
			w.logger.Warn("Ignoring attachment from not allowed domain", "url", pf.attachment.URL)
			outcomes[i].Success = true
			outcomes[i].LocalPath = ""
			continue
		}
		if pf.duplicate {
			outcomes[i].Success = true
			continue
		}

		i, pf := i, pf
		g.Go(func() error {
			if err := w.downloadOne(gctx, pf); err != nil {
				w.logger.Error("Download failed",
					"url", pf.attachment.URL,
					"path", pf.localPath,
					"error", err)
				outcomes[i].Err = err
				return nil
			}
			outcomes[i].Success = true
			return nil
		})
	}

	// Completion order is irrelevant: outcomes are indexed by attachment
	// position.
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// plan assigns each attachment its on-disk name and flags duplicates and
// off-platform URLs up front.
func (w *WriterImpl) plan(target domain.DownloadTarget) []plannedFile {
	seen := make(map[string]bool)
	planned := make([]plannedFile, 0, len(target.Record.Attachments))

	for i, att := range target.Record.Attachments {
		name := formatter.AttachmentFileName(i+1, att.Filename, att.URL)
		pf := plannedFile{
			index:      i,
			attachment: att,
			localPath:  filepath.Join(target.Dir, name),
		}
		switch {
		case !w.hostAllowed(att.URL):
			pf.offSite = true
		case seen[name]:
			pf.duplicate = true
		default:
			seen[name] = true
		}
		planned = append(planned, pf)
	}
	return planned
}

func (w *WriterImpl) downloadOne(ctx context.Context, pf plannedFile) error {
	if w.cfg.Download.SkipExistingFiles {
		if done, err := w.alreadyComplete(ctx, pf); err == nil && done {
			w.logger.Debug("Skipped existing file", "path", pf.localPath)
			return nil
		}
	}

	// Large files may stream for minutes, so there is no overall deadline.
	// A stalled body read instead cancels the request, keeping the worker
	// free to fail the file and move on.
	reqCtx, cancelReq := context.WithCancel(ctx)
	defer cancelReq()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pf.attachment.URL, nil)
	if err != nil {
		return apperrors.Wrap(err, "building request")
	}

	resp, err := w.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrTransientNetwork, err)
	}
	defer safeClose(resp.Body, w)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", apperrors.ErrRateLimited, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: status %d", apperrors.ErrTransientNetwork, resp.StatusCode)
	}

	out, err := os.Create(pf.localPath)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrIO, err)
	}

	window := w.cfg.Platform.HTTPTimeout
	watchdog := time.AfterFunc(window, cancelReq)
	written, copyErr := io.Copy(out, &stallGuard{r: resp.Body, watchdog: watchdog, window: window})
	watchdog.Stop()
	closeErr := out.Close()

	if copyErr == nil && closeErr == nil && resp.ContentLength > 0 && written != resp.ContentLength {
		copyErr = fmt.Errorf("%w: short body, got %d of %d bytes",
			apperrors.ErrTransientNetwork, written, resp.ContentLength)
	}
	if copyErr != nil || closeErr != nil {
		// Drop the partial file so the presence heuristic stays honest.
		_ = os.Remove(pf.localPath)
		if copyErr != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrTransientNetwork, copyErr)
		}
		return fmt.Errorf("%w: %v", apperrors.ErrIO, closeErr)
	}

	w.logger.Info("Downloaded file",
		"path", pf.localPath,
		"bytes", formatter.FormatNumber(int(written)))
	return nil
}

// alreadyComplete treats a pre-existing non-zero file as done. When the server
// advertises a Content-Length on HEAD, a size mismatch forces a re-download.
func (w *WriterImpl) alreadyComplete(ctx context.Context, pf plannedFile) (bool, error) {
	info, err := os.Stat(pf.localPath)
	if err != nil || info.Size() == 0 {
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, pf.attachment.URL, nil)
	if err != nil {
		return true, nil
	}
	resp, err := w.http.Do(req)
	if err != nil {
		// Cannot verify; keep the existing file.
		return true, nil
	}
	safeClose(resp.Body, w)

	expected, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if err != nil || expected <= 0 {
		return true, nil
	}
	if info.Size() != expected {
		w.logger.Warn("Re-downloading incomplete file",
			"path", pf.localPath,
			"have", info.Size(),
			"want", expected)
		return false, nil
	}
	return true, nil
}

// stallGuard re-arms the cancellation timer on every body read that makes
// progress, so only a connection with no progress for a full window is cut.
type stallGuard struct {
	r        io.Reader
	watchdog *time.Timer
	window   time.Duration
}

func (s *stallGuard) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if n > 0 {
		s.watchdog.Reset(s.window)
	}
	return n, err
}

func safeClose(closer io.ReadCloser, w *WriterImpl) {
	if err := closer.Close(); err != nil {
		w.logger.Error("Error closing response body", "error", err)
	}
}
