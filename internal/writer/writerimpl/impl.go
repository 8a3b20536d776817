package writerimpl

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/kcgrab/kcgrab/internal/writer"
	"github.com/kcgrab/kcgrab/pkg/config"
	"github.com/kcgrab/kcgrab/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type WriterImpl struct {
	http           *http.Client
	allowedDomains []string
	cfg            *config.Config
	logger         logger.Logger
}

func New(opts Opts) *WriterImpl {
	return &WriterImpl{
		// No overall client timeout: large files stream for minutes.
		// Header receipt is bounded and the request context carries
		// cancellation.
		http: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: opts.Config.Platform.HTTPTimeout,
			},
		},
		allowedDomains: []string{
			opts.Config.Platform.KemonoDomain,
			opts.Config.Platform.CoomerDomain,
		},
		cfg:    opts.Config,
		logger: opts.Logger.WithComponent("FileWriter"),
	}
}

var _ writer.Client = (*WriterImpl)(nil)

// hostAllowed reports whether the URL points at one of the configured
// platform domains or their file-server subdomains.
func (w *WriterImpl) hostAllowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	for _, d := range w.allowedDomains {
		if u.Host == d || strings.HasSuffix(u.Host, "."+d) {
			return true
		}
	}
	return false
}
