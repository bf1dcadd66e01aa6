// Package services contains external integration services for OAuth providers
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/benchmetrics/compscore/config"
	"github.com/benchmetrics/compscore/models"
	"github.com/benchmetrics/compscore/utils"
)

// ErrRefreshFailed indicates the provider rejected the refresh token or the
// token endpoint was unreachable.
var ErrRefreshFailed = errors.New("token refresh failed")

// RefreshedToken is the result of a successful refresh grant.
type RefreshedToken struct {
	AccessToken string
	ExpiresAt   time.Time
}

// TokenRefresher exchanges a refresh token for a new access token at the
// provider's token endpoint.
type TokenRefresher interface {
	Refresh(ctx context.Context, provider models.ProviderType, refreshToken string) (*RefreshedToken, error)
}

type httpTokenRefresher struct {
	oauth  config.OAuthConfig
	client *http.Client
}

// NewTokenRefresher creates a token refresher backed by the configured
// per-provider token endpoints.
func NewTokenRefresher(oauth config.OAuthConfig) TokenRefresher {
	return &httpTokenRefresher{
		oauth: oauth,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (r *httpTokenRefresher) Refresh(ctx context.Context, provider models.ProviderType, refreshToken string) (*RefreshedToken, error) {
	cfg, ok := r.oauth.ProviderConfig(string(provider))
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %s", ErrRefreshFailed, provider)
	}
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: empty refresh token", ErrRefreshFailed)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", cfg.ClientID)
	form.Set("client_secret", cfg.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s token http status: %d", ErrRefreshFailed, provider, resp.StatusCode)
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access_token", ErrRefreshFailed)
	}

	ttl := utils.DefaultTokenTTL
	if out.ExpiresIn > 0 {
		ttl = time.Duration(out.ExpiresIn) * time.Second
	}

	return &RefreshedToken{
		AccessToken: out.AccessToken,
		ExpiresAt:   utils.UTCNow().Add(ttl),
	}, nil
}
