package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt"

func TestJWTService_GenerateAccessToken(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)
	employeeID := "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"

	tokenString, expiresAt, err := svc.GenerateAccessToken("user-1", "hr@example.com", &employeeID, user.RoleHR)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	token, err := svc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)

	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "HR", claims["role"])
	assert.Equal(t, "access", claims["type"])
	assert.Equal(t, employeeID, claims["employee_id"])
}

func TestJWTService_SSEToken_RoundTrip(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	tokenString, expiresIn, err := svc.GenerateSSEToken("user-2", user.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	claims, err := svc.ValidateSSEToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.UserID)
	assert.Equal(t, user.RoleAdmin, claims.Role)
}

func TestJWTService_ValidateSSEToken_RejectsAccessToken(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	accessToken, _, err := svc.GenerateAccessToken("user-3", "e@example.com", nil, user.RoleEmployee)
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(accessToken)
	assert.Error(t, err)
}

func TestJWTService_ValidateSSEToken_RejectsExpired(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour).(*JWTService)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	tokenString, _, err := svc.GenerateSSEToken("user-4", user.RoleHR)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateSSEToken(tokenString)
	assert.Error(t, err)
}

func TestJWTService_ValidateSSEToken_RejectsOtherSecret(t *testing.T) {
	issuer := NewJWTService(testSecret, time.Hour)
	verifier := NewJWTService("another-secret", time.Hour)

	tokenString, _, err := issuer.GenerateSSEToken("user-5", user.RoleHR)
	require.NoError(t, err)

	_, err = verifier.ValidateSSEToken(tokenString)
	assert.Error(t, err)
}
