package writerimpl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kcgrab/kcgrab/internal/domain"
	"github.com/kcgrab/kcgrab/pkg/config"
	apperrors "github.com/kcgrab/kcgrab/pkg/errors"
	"github.com/kcgrab/kcgrab/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter(t *testing.T, server *httptest.Server) *WriterImpl {
	t.Helper()

	cfg := &config.Config{}
	cfg.Platform.HTTPTimeout = 5 * time.Second
	cfg.Download.SkipExistingFiles = true
	cfg.Download.FileConcurrency = 3

	w := &WriterImpl{
		http:   server.Client(),
		cfg:    cfg,
		logger: logger.New(logger.Opts{}).WithComponent("FileWriter"),
	}
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	w.allowedDomains = []string{u.Host}
	return w
}

func testRecord(atts ...domain.Attachment) *domain.PostRecord {
	return &domain.PostRecord{
		Reference: domain.PostReference{
			Platform: domain.PlatformKemono,
			Service:  "patreon",
			UserID:   "9919437",
			PostID:   "123456789",
		},
		Title:       "A Post",
		Attachments: atts,
	}
}

func TestWriteFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/aa/cover.png":
			_, _ = rw.Write([]byte("png-bytes"))
		case "/data/bb/clip.mp4":
			_, _ = rw.Write([]byte("mp4-bytes"))
		default:
			rw.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	w := newTestWriter(t, server)
	dir := filepath.Join(t.TempDir(), "posts", "123456789")
	target := domain.DownloadTarget{
		Record: testRecord(
			domain.Attachment{Filename: "cover.png", URL: server.URL + "/data/aa/cover.png"},
			domain.Attachment{Filename: "clip.mp4", URL: server.URL + "/data/bb/clip.mp4"},
		),
		Dir: dir,
	}

	outcomes, err := w.WriteFiles(context.Background(), target)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.True(t, domain.AllSucceeded(outcomes))
	assert.Equal(t, filepath.Join(dir, "1-cover.png"), outcomes[0].LocalPath)
	assert.Equal(t, filepath.Join(dir, "2-clip.mp4"), outcomes[1].LocalPath)

	data, err := os.ReadFile(outcomes[0].LocalPath)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestWriteFilesPartialFailureKeepsOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/data/bad" {
			rw.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = rw.Write([]byte("ok"))
	}))
	defer server.Close()

	w := newTestWriter(t, server)
	target := domain.DownloadTarget{
		Record: testRecord(
			domain.Attachment{Filename: "a.png", URL: server.URL + "/data/good"},
			domain.Attachment{Filename: "b.png", URL: server.URL + "/data/bad"},
			domain.Attachment{Filename: "c.png", URL: server.URL + "/data/good"},
		),
		Dir: t.TempDir(),
	}

	outcomes, err := w.WriteFiles(context.Background(), target)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.False(t, domain.AllSucceeded(outcomes))
	assert.True(t, outcomes[0].Success)
	assert.False(t, outcomes[1].Success)
	assert.ErrorIs(t, outcomes[1].Err, apperrors.ErrTransientNetwork)
	assert.True(t, outcomes[2].Success)
}

func TestWriteFilesRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	w := newTestWriter(t, server)
	target := domain.DownloadTarget{
		Record: testRecord(domain.Attachment{Filename: "a.png", URL: server.URL + "/data/a"}),
		Dir:    t.TempDir(),
	}

	outcomes, err := w.WriteFiles(context.Background(), target)
	require.NoError(t, err)
	assert.ErrorIs(t, outcomes[0].Err, apperrors.ErrRateLimited)
}

func TestWriteFilesOffSiteAttachmentIgnored(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = rw.Write([]byte("ok"))
	}))
	defer server.Close()

	w := newTestWriter(t, server)
	dir := t.TempDir()
	target := domain.DownloadTarget{
		Record: testRecord(
			domain.Attachment{Filename: "a.png", URL: "https://elsewhere.example.com/a.png"},
		),
		Dir: dir,
	}

	outcomes, err := w.WriteFiles(context.Background(), target)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	assert.True(t, outcomes[0].Success)
	assert.Empty(t, outcomes[0].LocalPath)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteFilesSkipsExistingCompleteFile(t *testing.T) {
	body := []byte("already-here")
	var gets atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			gets.Add(1)
		}
		_, _ = rw.Write(body)
	}))
	defer server.Close()

	w := newTestWriter(t, server)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1-a.png"), body, 0o644))

	target := domain.DownloadTarget{
		Record: testRecord(domain.Attachment{Filename: "a.png", URL: server.URL + "/data/a"}),
		Dir:    dir,
	}

	outcomes, err := w.WriteFiles(context.Background(), target)
	require.NoError(t, err)
	assert.True(t, outcomes[0].Success)
	assert.Zero(t, gets.Load(), "existing complete file must not be re-fetched")
}

func TestWriteFilesRedownloadsSizeMismatch(t *testing.T) {
	body := []byte("full-length-content")
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = rw.Write(body)
	}))
	defer server.Close()

	w := newTestWriter(t, server)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1-a.png"), []byte("trunc"), 0o644))

	target := domain.DownloadTarget{
		Record: testRecord(domain.Attachment{Filename: "a.png", URL: server.URL + "/data/a"}),
		Dir:    dir,
	}

	outcomes, err := w.WriteFiles(context.Background(), target)
	require.NoError(t, err)
	assert.True(t, outcomes[0].Success)

	data, err := os.ReadFile(filepath.Join(dir, "1-a.png"))
	require.NoError(t, err)
	assert.Equal(t, body, data)
}

func TestWriteFilesStalledBodyFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		_, _ = rw.Write([]byte("head-of-file"))
		rw.(http.Flusher).Flush()
		// Stall until the client gives up.
		<-r.Context().Done()
	}))
	defer server.Close()

	w := newTestWriter(t, server)
	w.cfg.Platform.HTTPTimeout = 50 * time.Millisecond
	dir := t.TempDir()

	target := domain.DownloadTarget{
		Record: testRecord(domain.Attachment{Filename: "a.png", URL: server.URL + "/data/a"}),
		Dir:    dir,
	}

	start := time.Now()
	outcomes, err := w.WriteFiles(context.Background(), target)
	require.NoError(t, err)

	assert.False(t, outcomes[0].Success)
	assert.ErrorIs(t, outcomes[0].Err, apperrors.ErrTransientNetwork)
	assert.Less(t, time.Since(start), 5*time.Second, "a stalled body must not block the worker")

	// The partial file is gone.
	_, statErr := os.Stat(filepath.Join(dir, "1-a.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteFilesZeroConcurrencyStillDownloads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = rw.Write([]byte("ok"))
	}))
	defer server.Close()

	w := newTestWriter(t, server)
	w.cfg.Download.FileConcurrency = 0

	outcomes, err := w.WriteFiles(context.Background(), domain.DownloadTarget{
		Record: testRecord(domain.Attachment{Filename: "a.png", URL: server.URL + "/data/a"}),
		Dir:    t.TempDir(),
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Success)
}

func TestWriteFilesCreatesDirForEmptyPost(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	w := newTestWriter(t, server)
	dir := filepath.Join(t.TempDir(), "posts", "42")

	outcomes, err := w.WriteFiles(context.Background(), domain.DownloadTarget{
		Record: testRecord(),
		Dir:    dir,
	})
	require.NoError(t, err)
	assert.Empty(t, outcomes)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWriteSummaryMarkdown(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()
	w := newTestWriter(t, server)

	record := testRecord(domain.Attachment{Filename: "a.png", URL: "https://c1.kemono.su/data/a.png"})
	record.Description = "<p>hello <a href=\"https://example.com\">link</a></p>"
	record.Embeds = []domain.Embed{{Label: "video", URL: "https://youtu.be/x"}}
	dir := t.TempDir()

	require.NoError(t, w.WriteSummary(domain.DownloadTarget{Record: record, Dir: dir}, "md"))

	data, err := os.ReadFile(filepath.Join(dir, "files.md"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "# A Post")
	assert.Contains(t, content, "[link](https://example.com)")
	assert.Contains(t, content, "## Embedded Content")
	assert.Contains(t, content, "- [video](https://youtu.be/x)")
	assert.Contains(t, content, "- a.png: https://c1.kemono.su/data/a.png")
}

func TestWriteSummaryPlain(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()
	w := newTestWriter(t, server)

	record := testRecord()
	record.Description = "<p>hello</p>"
	dir := t.TempDir()

	require.NoError(t, w.WriteSummary(domain.DownloadTarget{Record: record, Dir: dir}, "txt"))

	data, err := os.ReadFile(filepath.Join(dir, "files.txt"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Title: A Post")
	assert.Contains(t, content, "hello")
	assert.NotContains(t, content, "<p>")
}
