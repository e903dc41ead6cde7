package auth

import "errors"

var (
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrInvalidToken             = errors.New("invalid or expired token")
	ErrGoogleEmailNotVerified   = errors.New("google account email is not verified")
	ErrGoogleAccountNotLinked   = errors.New("no account is registered for this google email")
	ErrGoogleLoginDisabled      = errors.New("google login is not configured")
	ErrOAuthStateMismatch       = errors.New("oauth state mismatch")
	ErrGoogleAccessDeniedByUser = errors.New("google access denied by user")
)
