package auth

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-jwt"

func strPtr(s string) *string { return &s }

func setupAuth(t *testing.T) (auth.AuthService, jwt.Service, *memory.Store) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	store := memory.NewStore()
	store.AddUser(user.User{ID: "u-emp", Email: "emp@example.com", PasswordHash: strPtr(string(hash)), Role: user.RoleEmployee, EmailVerified: true})
	store.AddUser(user.User{ID: "u-google", Email: "google@example.com", Role: user.RoleHR, GoogleID: strPtr("g-1")})
	store.AddUser(user.User{ID: "u-nolink", Email: "nolink@example.com", Role: user.RoleEmployee})
	store.AddEmployee(employee.Employee{ID: "e-emp", UserID: strPtr("u-emp"), EmployeeCode: "EMP-001", FullName: "Employee", IsActive: true})

	jwtService := jwt.NewJWTService(testSecret, time.Hour)
	return NewAuthService(memory.NewUserRepository(store), jwtService), jwtService, store
}

func TestLogin_Success(t *testing.T) {
	// Setup
	svc, jwtService, _ := setupAuth(t)
	ctx := context.Background()

	// Act
	resp, err := svc.Login(ctx, auth.LoginRequest{Email: "emp@example.com", Password: "password123"})

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "EMPLOYEE", resp.Role)
	require.NotNil(t, resp.EmployeeID)
	assert.Equal(t, "e-emp", *resp.EmployeeID)
	assert.Greater(t, resp.AccessTokenExpiresIn, time.Now().Unix())

	token, err := jwtService.JWTAuth().Decode(resp.AccessToken)
	require.NoError(t, err)
	employeeID, _ := token.Get("employee_id")
	assert.Equal(t, "e-emp", employeeID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _, _ := setupAuth(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  auth.LoginRequest
	}{
		{"wrong password", auth.LoginRequest{Email: "emp@example.com", Password: "nope"}},
		{"unknown email", auth.LoginRequest{Email: "ghost@example.com", Password: "password123"}},
		{"google only account", auth.LoginRequest{Email: "google@example.com", Password: "password123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.req)
			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		})
	}
}

func TestLogin_ValidationError(t *testing.T) {
	svc, _, _ := setupAuth(t)

	_, err := svc.Login(context.Background(), auth.LoginRequest{Email: "not-an-email"})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
}

func TestLoginWithGoogle(t *testing.T) {
	svc, _, store := setupAuth(t)
	ctx := context.Background()

	t.Run("unverified email", func(t *testing.T) {
		_, err := svc.LoginWithGoogle(ctx, "google@example.com", "g-1", false)
		assert.ErrorIs(t, err, auth.ErrGoogleEmailNotVerified)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.LoginWithGoogle(ctx, "ghost@example.com", "g-9", true)
		assert.ErrorIs(t, err, auth.ErrGoogleAccountNotLinked)
	})

	t.Run("linked account", func(t *testing.T) {
		resp, err := svc.LoginWithGoogle(ctx, "google@example.com", "g-1", true)
		require.NoError(t, err)
		assert.Equal(t, "HR", resp.Role)
	})

	t.Run("different google id", func(t *testing.T) {
		_, err := svc.LoginWithGoogle(ctx, "google@example.com", "g-2", true)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("first google login links the account", func(t *testing.T) {
		_, err := svc.LoginWithGoogle(ctx, "nolink@example.com", "g-3", true)
		require.NoError(t, err)

		u, err := memory.NewUserRepository(store).GetByID(ctx, "u-nolink")
		require.NoError(t, err)
		require.NotNil(t, u.GoogleID)
		assert.Equal(t, "g-3", *u.GoogleID)
	})
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret")))
}
