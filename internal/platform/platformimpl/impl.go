package platformimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kcgrab/kcgrab/internal/domain"
	"github.com/kcgrab/kcgrab/internal/platform"
	"github.com/kcgrab/kcgrab/pkg/config"
	apperrors "github.com/kcgrab/kcgrab/pkg/errors"
	"github.com/kcgrab/kcgrab/pkg/logger"
	"go.uber.org/fx"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:135.0) Gecko/20100101 Firefox/135.0"

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type PlatformImpl struct {
	http     *http.Client
	baseURLs map[domain.Platform]string
	logger   logger.Logger
}

func New(opts Opts) *PlatformImpl {
	return &PlatformImpl{
		http: &http.Client{Timeout: opts.Config.Platform.HTTPTimeout},
		baseURLs: map[domain.Platform]string{
			domain.PlatformKemono: "https://" + opts.Config.Platform.KemonoDomain,
			domain.PlatformCoomer: "https://" + opts.Config.Platform.CoomerDomain,
		},
		logger: opts.Logger.WithComponent("PlatformClient"),
	}
}

var _ platform.Client = (*PlatformImpl)(nil)

func (p *PlatformImpl) apiURL(pf domain.Platform, path string) (string, error) {
	base, ok := p.baseURLs[pf]
	if !ok {
		return "", apperrors.MalformedInput(string(pf), "unknown platform")
	}
	return base + "/api/v1" + path, nil
}

// getJSON performs one API GET and decodes the body into out. HTTP statuses
// are mapped onto the download error taxonomy.
func (p *PlatformImpl) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return apperrors.Wrap(err, "building request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrTransientNetwork, err)
	}
	defer safeClose(resp.Body, p.logger)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", apperrors.ErrPostNotFound, url)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d from %s", apperrors.ErrRateLimited, resp.StatusCode, url)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d from %s", apperrors.ErrTransientNetwork, resp.StatusCode, url)
	case resp.StatusCode != http.StatusOK:
		return apperrors.WrapWithCode(
			fmt.Errorf("status %d from %s", resp.StatusCode, url),
			fmt.Sprintf("HTTP_%d", resp.StatusCode),
			"unexpected API response",
		)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(err, "decoding API response")
	}
	return nil
}

func safeClose(closer io.ReadCloser, log logger.Logger) {
	if err := closer.Close(); err != nil {
		log.Error("Error closing response body", "error", err)
	}
}
