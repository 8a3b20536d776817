package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kcgrab/kcgrab/internal/domain"
	"github.com/kcgrab/kcgrab/internal/downloader"
	"github.com/kcgrab/kcgrab/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

// blockingDownloader runs until cancelled, then spends a moment on the
// bookkeeping a real post task does after cancellation (failure log entry,
// partial file removal) before reporting.
type blockingDownloader struct {
	started chan struct{}
	cleaned atomic.Bool
}

func (d *blockingDownloader) DownloadPosts(ctx context.Context, _ []domain.PostReference) (*domain.Report, error) {
	return d.waitAndCleanUp(ctx)
}

func (d *blockingDownloader) DownloadProfile(ctx context.Context, _ domain.ProfileReference, _ domain.Selection) (*domain.Report, error) {
	return d.waitAndCleanUp(ctx)
}

func (d *blockingDownloader) RetryFailed(ctx context.Context) (*domain.Report, error) {
	return d.waitAndCleanUp(ctx)
}

func (d *blockingDownloader) waitAndCleanUp(ctx context.Context) (*domain.Report, error) {
	close(d.started)
	<-ctx.Done()
	time.Sleep(50 * time.Millisecond)
	d.cleaned.Store(true)
	return &domain.Report{}, nil
}

var _ downloader.Client = (*blockingDownloader)(nil)

func TestStopWaitsForRunCleanup(t *testing.T) {
	dl := &blockingDownloader{started: make(chan struct{})}
	log := logger.New(logger.Opts{})

	fxApp := fx.New(
		fx.Logger(log),
		fx.Supply(&Request{RetryFailed: true}),
		fx.Provide(
			func() logger.Logger { return log },
			fx.Annotate(
				func() *blockingDownloader { return dl },
				fx.As(new(downloader.Client)),
			),
		),
		fx.Invoke(run),
	)

	require.NoError(t, fxApp.Start(context.Background()))
	<-dl.started

	require.NoError(t, fxApp.Stop(context.Background()))
	assert.True(t, dl.cleaned.Load(),
		"Stop must not return before the in-flight run finished its cleanup")
}

func TestStopGivesUpWhenRunExceedsStopDeadline(t *testing.T) {
	dl := &blockingDownloader{started: make(chan struct{})}
	log := logger.New(logger.Opts{})

	fxApp := fx.New(
		fx.Logger(log),
		fx.Supply(&Request{RetryFailed: true}),
		fx.Provide(
			func() logger.Logger { return log },
			fx.Annotate(
				func() *blockingDownloader { return dl },
				fx.As(new(downloader.Client)),
			),
		),
		fx.Invoke(run),
	)

	require.NoError(t, fxApp.Start(context.Background()))
	<-dl.started

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	require.Error(t, fxApp.Stop(ctx))
}
