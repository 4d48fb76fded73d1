package dto

import authdomain "autoreply-backend/internal/auth/domain"

// GoogleSignInRequest carries the OAuth authorization code obtained by the
// dashboard with offline access and the gmail.modify scope.
type GoogleSignInRequest struct {
	Code        string `json:"code" binding:"required"`
	RedirectURI string `json:"redirect_uri,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	User         *authdomain.User `json:"user"`
}
