package downloaderimpl

import (
	"fmt"
	"path/filepath"

	"github.com/kcgrab/kcgrab/internal/domain"
	"github.com/kcgrab/kcgrab/internal/downloader"
	"github.com/kcgrab/kcgrab/internal/faillog"
	"github.com/kcgrab/kcgrab/internal/lister"
	"github.com/kcgrab/kcgrab/internal/platform"
	"github.com/kcgrab/kcgrab/internal/profiles"
	"github.com/kcgrab/kcgrab/internal/writer"
	"github.com/kcgrab/kcgrab/pkg/config"
	"github.com/kcgrab/kcgrab/pkg/formatter"
	"github.com/kcgrab/kcgrab/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Platform    platform.Client
	Lister      lister.Client
	Writer      writer.Client
	FailLog     faillog.Repository
	ProfileRepo profiles.Repository
	Logger      logger.Logger
	Config      *config.Config
}

type DownloaderImpl struct {
	Platform    platform.Client
	Lister      lister.Client
	Writer      writer.Client
	FailLog     faillog.Repository
	ProfileRepo profiles.Repository
	Logger      logger.Logger
	Config      *config.Config
}

func New(opts Opts) *DownloaderImpl {
	return &DownloaderImpl{
		Platform:    opts.Platform,
		Lister:      opts.Lister,
		Writer:      opts.Writer,
		FailLog:     opts.FailLog,
		ProfileRepo: opts.ProfileRepo,
		Logger:      opts.Logger.WithComponent("Downloader"),
		Config:      opts.Config,
	}
}

var _ downloader.Client = (*DownloaderImpl)(nil)

// postLink is the canonical web link for a post, the form the failure log
// stores.
func (d *DownloaderImpl) postLink(ref domain.PostReference) string {
	host := d.Config.Platform.KemonoDomain
	if ref.Platform == domain.PlatformCoomer {
		host = d.Config.Platform.CoomerDomain
	}
	return fmt.Sprintf("https://%s/%s/user/%s/post/%s", host, ref.Service, ref.UserID, ref.PostID)
}

// postDir builds the deterministic destination directory:
// <base>/<platform>/<AuthorName>-<Service>-<UserId>/posts/<PostId>[_<Title>].
// The post ID always leads the folder name, so two posts never collide on
// title alone.
func (d *DownloaderImpl) postDir(record *domain.PostRecord, authorName string) string {
	ref := record.Reference

	authorDir := fmt.Sprintf("%s-%s-%s",
		formatter.SanitizeFolderName(authorName),
		formatter.SanitizeFolderName(ref.Service),
		formatter.SanitizeFolderName(ref.UserID),
	)

	folder := ref.PostID
	if d.Config.Download.PostFolderName == "title" {
		if title := formatter.SanitizeTitle(record.Title); title != "" {
			folder = ref.PostID + "_" + title
		}
	}

	return filepath.Join(d.Config.Download.BaseDir, string(ref.Platform), authorDir, "posts", folder)
}
