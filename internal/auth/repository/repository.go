package repository

import authdomain "autoreply-backend/internal/auth/domain"

// UserRepository defines the interface for user and session data access.
type UserRepository interface {
	Create(user *authdomain.User) error
	FindByEmail(email string) (*authdomain.User, error)
	FindByID(id string) (*authdomain.User, error)
	Update(user *authdomain.User) error

	// UpdateGmailTokens persists rotated provider tokens. An empty refresh
	// token keeps the stored one.
	UpdateGmailTokens(userID, accessToken, refreshToken string) error

	SaveRefreshToken(token *authdomain.RefreshToken) error
	FindRefreshToken(token string) (*authdomain.RefreshToken, error)
	DeleteRefreshToken(token string) error
}
