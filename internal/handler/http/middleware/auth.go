package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// Claims is the identity carried by an access token.
type Claims struct {
	UserID     string
	Email      string
	Role       user.Role
	EmployeeID string
}

// ClaimsFromContext reads the verified token claims set by jwtauth.Verifier.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil || claims == nil {
		return Claims{}, false
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return Claims{}, false
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	employeeID, _ := claims["employee_id"].(string)

	return Claims{
		UserID:     userID,
		Email:      email,
		Role:       user.Role(role),
		EmployeeID: employeeID,
	}, true
}

// AuthRequired rejects requests without a valid access token.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			tokenType, ok := claims["type"].(string)
			if !ok || tokenType != "access" {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}
