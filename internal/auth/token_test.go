package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	user := &models.User{ID: 42, Username: "amina", Role: models.RoleManager}

	token, expiresAt, err := svc.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	identity, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), identity.UserID)
	assert.Equal(t, "amina", identity.Username)
	assert.Equal(t, models.RoleManager, identity.Role)
}

func TestTokenService_RejectsForeignSignature(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Hour)
	verifier := NewTokenService("secret-b", time.Hour)

	token, _, err := issuer.Issue(&models.User{ID: 1, Username: "x", Role: models.RoleStaff})
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	claims := &Claims{
		Username: "old",
		Role:     string(models.RoleStaff),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			Issuer:    "backoffice-service",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsUnknownRole(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	token, _, err := svc.Issue(&models.User{ID: 3, Username: "ghost", Role: "TEACHER"})
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRoleFromCasdoor(t *testing.T) {
	assert.Equal(t, models.RoleCashier, roleFromCasdoor(" cashier ", false))
	assert.Equal(t, models.RoleAdmin, roleFromCasdoor("", true))
	assert.Equal(t, models.RoleStaff, roleFromCasdoor("stylist", false))
}
