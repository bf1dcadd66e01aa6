// Package services provides external service integrations for ad platform APIs
package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benchmetrics/compscore/config"
	"github.com/benchmetrics/compscore/models"
	"github.com/benchmetrics/compscore/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oauthConfigWithTokenURL(tokenURL string) config.OAuthConfig {
	provider := config.OAuthProviderConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     tokenURL,
	}
	return config.OAuthConfig{
		GoogleAds:       provider,
		MetaAds:         provider,
		LinkedInAds:     provider,
		TikTokAds:       provider,
		GoogleAnalytics: provider,
	}
}

func TestTokenRefresherRefresh(t *testing.T) {
	var calls int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "old-refresh-token", r.PostForm.Get("refresh_token"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"new-access-token","expires_in":3600,"token_type":"Bearer"}`))
	}))
	defer server.Close()

	refresher := NewTokenRefresher(oauthConfigWithTokenURL(server.URL))

	before := utils.UTCNow()
	token, err := refresher.Refresh(context.Background(), models.ProviderGoogleAds, "old-refresh-token")
	require.NoError(t, err)
	require.NotNil(t, token)

	assert.Equal(t, "new-access-token", token.AccessToken)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))

	// expires_at should be roughly now + expires_in
	assert.WithinDuration(t, before.Add(time.Hour), token.ExpiresAt, 5*time.Second)
}

func TestTokenRefresherDefaultTTL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"new-access-token"}`))
	}))
	defer server.Close()

	refresher := NewTokenRefresher(oauthConfigWithTokenURL(server.URL))

	before := utils.UTCNow()
	token, err := refresher.Refresh(context.Background(), models.ProviderMetaAds, "refresh-token")
	require.NoError(t, err)

	// Missing expires_in falls back to the default token TTL.
	assert.WithinDuration(t, before.Add(utils.DefaultTokenTTL), token.ExpiresAt, 5*time.Second)
}

func TestTokenRefresherErrors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
	}{
		{
			name:       "provider rejects refresh token",
			statusCode: http.StatusBadRequest,
			body:       `{"error":"invalid_grant"}`,
		},
		{
			name:       "provider internal error",
			statusCode: http.StatusInternalServerError,
			body:       `{}`,
		},
		{
			name:       "empty access token in response",
			statusCode: http.StatusOK,
			body:       `{"access_token":"","expires_in":3600}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			refresher := NewTokenRefresher(oauthConfigWithTokenURL(server.URL))

			token, err := refresher.Refresh(context.Background(), models.ProviderLinkedInAds, "refresh-token")
			require.Error(t, err)
			assert.Nil(t, token)
			assert.ErrorIs(t, err, ErrRefreshFailed)
		})
	}
}

func TestTokenRefresherUnknownProvider(t *testing.T) {
	refresher := NewTokenRefresher(config.OAuthConfig{})

	token, err := refresher.Refresh(context.Background(), models.ProviderType("unknown"), "refresh-token")
	require.Error(t, err)
	assert.Nil(t, token)
	assert.ErrorIs(t, err, ErrRefreshFailed)
}

func TestTokenRefresherEmptyRefreshToken(t *testing.T) {
	refresher := NewTokenRefresher(oauthConfigWithTokenURL("http://localhost:0"))

	token, err := refresher.Refresh(context.Background(), models.ProviderGoogleAds, "")
	require.Error(t, err)
	assert.Nil(t, token)
	assert.ErrorIs(t, err, ErrRefreshFailed)
}
