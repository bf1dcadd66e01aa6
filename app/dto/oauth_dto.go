package dto

// ConnectOAuthAccountRequest represents the request to connect an ad platform account
type ConnectOAuthAccountRequest struct {
	UserID       uint   `json:"-"`
	CompanyID    uint   `json:"-"`
	Provider     string `json:"provider" validate:"required,oneof=google_ads meta_ads linkedin_ads tiktok_ads google_analytics"`
	AccountID    string `json:"account_id" validate:"required,max=255"`
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
	ExpiresIn    int    `json:"expires_in" validate:"omitempty,min=0"`
}

// OAuthAccountDTO represents a connected account in responses. Tokens are
// never exposed.
type OAuthAccountDTO struct {
	UUID         string  `json:"uuid"`
	Provider     string  `json:"provider"`
	Platform     string  `json:"platform"`
	AccountID    string  `json:"account_id"`
	Status       string  `json:"status"`
	ExpiresAt    string  `json:"expires_at"`
	LastSyncedAt *string `json:"last_synced_at,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// ConnectOAuthAccountResponse represents the response to connecting an account
type ConnectOAuthAccountResponse struct {
	Message string          `json:"message"`
	Account OAuthAccountDTO `json:"account"`
}

// DisconnectOAuthAccountRequest represents the request to disconnect a provider
type DisconnectOAuthAccountRequest struct {
	UserID   uint   `json:"-"`
	Provider string `json:"-"`
}

// DisconnectOAuthAccountResponse represents the response to a disconnect
type DisconnectOAuthAccountResponse struct {
	Message string `json:"message"`
}

// ListOAuthAccountsResponse represents the connected accounts of a user
type ListOAuthAccountsResponse struct {
	Message string            `json:"message"`
	Items   []OAuthAccountDTO `json:"items"`
}
