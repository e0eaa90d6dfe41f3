package identity

import (
	"context"
	"net/http"
	"time"

	"github.com/maxbolgarin/cliex"
	"github.com/maxbolgarin/errm"
)

// AvatarVerifier resolves avatar URLs to their final location
type AvatarVerifier struct {
	cli *cliex.HTTP
}

func NewAvatarVerifier(userAgent string, timeout time.Duration) (*AvatarVerifier, error) {
	cli, err := cliex.NewWithConfig(cliex.Config{
		UserAgent:      userAgent,
		RequestTimeout: timeout,
	})
	if err != nil {
		return nil, errm.Wrap(err, "failed to create HTTP client")
	}
	return &AvatarVerifier{cli: cli}, nil
}

// Verify sends a HEAD request following redirects and returns the final URL.
// On any failure the original URL is returned with an error.
func (v *AvatarVerifier) Verify(ctx context.Context, avatarURL string) (string, error) {
	resp, err := v.cli.C().R().SetContext(ctx).Head(avatarURL)
	if err != nil {
		return avatarURL, errm.Wrap(err, "failed to request avatar")
	}
	if resp.StatusCode() != http.StatusOK {
		return avatarURL, errm.New("unexpected avatar status: %d", resp.StatusCode())
	}
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		return raw.Request.URL.String(), nil
	}
	return avatarURL, nil
}
