package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

func TestUserService_CreateAndAuthenticate(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	user, err := env.services.User().Create(ctx, &CreateUserRequest{Username: "nadia", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, user.Role, "role defaults to staff")
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	_, err = env.services.User().Create(ctx, &CreateUserRequest{Username: "nadia", Password: "another-pass"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	login, err := env.services.User().Authenticate(ctx, &LoginRequest{Username: "nadia", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", login.TokenType)
	assert.Equal(t, "token-nadia", login.AccessToken)

	stored, err := env.services.User().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)

	_, err = env.services.User().Authenticate(ctx, &LoginRequest{Username: "nadia", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.services.User().Authenticate(ctx, &LoginRequest{Username: "ghost", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_DeactivatedUserCannotLogIn(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	user := env.createUser(t, "theo", models.RoleCashier)

	_, err := env.services.User().SetActive(ctx, user.ID, false, Actor{UserID: user.ID, Role: models.RoleCashier})
	assert.True(t, IsUnauthorized(err))

	updated, err := env.services.User().SetActive(ctx, user.ID, false, owner)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = env.services.User().Authenticate(ctx, &LoginRequest{Username: "theo", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestUserService_UpdateRole(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	user := env.createUser(t, "lou", models.RoleStaff)

	_, err := env.services.User().UpdateRole(ctx, user.ID, "SUPERSTAR", owner)
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = env.services.User().UpdateRole(ctx, user.ID, models.RoleManager, Actor{UserID: user.ID, Role: models.RoleStaff})
	assert.True(t, IsUnauthorized(err))

	promoted, err := env.services.User().UpdateRole(ctx, user.ID, models.RoleManager, owner)
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, promoted.Role)

	role := models.RoleManager
	list, err := env.services.User().List(ctx, repositories.UserFilters{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
}
