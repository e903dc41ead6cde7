package auth

import (
	"context"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	// LoginWithGoogle signs in an existing user whose email matches the
	// verified Google account.
	LoginWithGoogle(ctx context.Context, email string, googleID string, emailVerified bool) (TokenResponse, error)
}
