package app

import (
	"context"

	"github.com/kcgrab/kcgrab/internal/downloader"
	"github.com/kcgrab/kcgrab/internal/downloader/downloaderimpl"
	"github.com/kcgrab/kcgrab/internal/faillog"
	"github.com/kcgrab/kcgrab/internal/lister"
	"github.com/kcgrab/kcgrab/internal/lister/listerimpl"
	"github.com/kcgrab/kcgrab/internal/platform"
	"github.com/kcgrab/kcgrab/internal/platform/platformimpl"
	"github.com/kcgrab/kcgrab/internal/profiles"
	"github.com/kcgrab/kcgrab/internal/writer"
	"github.com/kcgrab/kcgrab/internal/writer/writerimpl"
	"github.com/kcgrab/kcgrab/pkg/config"
	"github.com/kcgrab/kcgrab/pkg/formatter"
	"github.com/kcgrab/kcgrab/pkg/logger"
	"go.uber.org/fx"
)

// Request is the single run the CLI asks for.
type Request struct {
	Links       string // direct post links, comma/space/newline separated
	IDs         string // bare post IDs, resolved against Profile
	Profile     string // profile link
	Mode        string // profile fetch mode: all | <offset> | <a>-<b> | <id1>-<id2>
	RetryFailed bool
}

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
	),
	fx.Provide(
		fx.Annotate(
			platformimpl.New,
			fx.As(new(platform.Client)),
		), fx.Annotate(
			listerimpl.New,
			fx.As(new(lister.Client)),
		), fx.Annotate(
			writerimpl.New,
			fx.As(new(writer.Client)),
		),
		fx.Annotate(
			downloaderimpl.New,
			fx.As(new(downloader.Client)),
		),
	),
	faillog.Module,
	profiles.Module,
	fx.Invoke(run),
)

func run(lc fx.Lifecycle, shutdowner fx.Shutdowner, log logger.Logger, dl downloader.Client, req *Request) {
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						log.Error("Shutdown failed", "error", err)
					}
				}()
				if err := execute(runCtx, log, dl, req); err != nil {
					log.Error("Run failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// In-flight post tasks observe cancellation and finish or
			// fail cleanly with their failure log entries written. The
			// process must not exit before that bookkeeping is done.
			cancel()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func execute(ctx context.Context, log logger.Logger, dl downloader.Client, req *Request) error {
	report, err := dispatch(ctx, log, dl, req)
	if err != nil {
		return err
	}

	log.Info("Run summary",
		"succeeded", formatter.FormatNumber(report.Succeeded),
		"failed", formatter.FormatNumber(report.Failed),
		"skipped", formatter.FormatNumber(report.Skipped))
	for _, link := range report.FailedLinks {
		log.Warn("Failed link kept for retry", "link", link)
	}
	return nil
}
