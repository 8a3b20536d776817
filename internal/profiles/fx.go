package profiles

import (
	"github.com/kcgrab/kcgrab/pkg/config"
	"go.uber.org/fx"
)

var Module = fx.Module("profiles_repository",
	fx.Provide(
		fx.Annotate(
			func(cfg *config.Config) *File {
				return NewFile(cfg.Download.BaseDir)
			},
			fx.As(new(Repository)),
		),
	),
)
