package usecase

import (
	"context"

	authdomain "autoreply-backend/internal/auth/domain"
	authdto "autoreply-backend/internal/auth/dto"
)

// AuthUsecase is the thin session glue around the rule CRUD surface. Its one
// job beyond issuing JWTs is capturing the Gmail refresh token during
// Google sign-in so the auto-reply job can act for the user later.
type AuthUsecase interface {
	GoogleSignIn(ctx context.Context, req *authdto.GoogleSignInRequest) (*authdto.TokenResponse, error)
	ValidateToken(token string) (*authdomain.User, error)
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
}
