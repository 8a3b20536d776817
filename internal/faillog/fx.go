package faillog

import (
	"github.com/kcgrab/kcgrab/pkg/config"
	"github.com/kcgrab/kcgrab/pkg/logger"
	"go.uber.org/fx"
)

var Module = fx.Module("faillog_repository",
	fx.Provide(
		fx.Annotate(
			func(cfg *config.Config, log logger.Logger) *File {
				return NewFile(cfg.Download.FailedLogPath, log)
			},
			fx.As(new(Repository)),
		),
	),
)
