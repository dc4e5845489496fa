package serviceimpl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/domain/dto"
	"taskboard/domain/models"
	"taskboard/domain/services"
	"taskboard/pkg/utils"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	token, user, err := env.users.Register(ctx, &dto.RegisterRequest{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "secret123", user.Password)

	userID, claims, err := utils.ParseToken(token, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, models.RoleUser, claims.Role)

	_, _, err = env.users.Register(ctx, &dto.RegisterRequest{Name: "Again", Email: "alice@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, loggedIn, err := env.users.Login(ctx, &dto.LoginRequest{Email: "ALICE@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, _, err = env.users.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, _, err = env.users.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestRegisterAdmin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, admin, err := env.users.Register(ctx, &dto.RegisterRequest{Name: "Root", Email: "root@example.com", Password: "secret123", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	closed := NewUserService(env.userRepo, env.taskRepo, nil, UserServiceConfig{JWTSecret: testJWTSecret})
	_, _, err = closed.Register(ctx, &dto.RegisterRequest{Name: "Eve", Email: "eve@example.com", Password: "secret123", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, _, err = closed.Register(ctx, &dto.RegisterRequest{Name: "Eve", Email: "eve@example.com", Password: "secret123", Role: "owner"})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestResolveIdentity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	token, user, err := env.users.Register(ctx, &dto.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	actor, err := env.users.ResolveIdentity(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.ID)
	assert.True(t, env.cache.has(identityCacheKey(user.ID)))

	cached, err := env.users.ResolveIdentity(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, actor, cached)

	_, err = env.users.ResolveIdentity(ctx, "not-a-token")
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	expired, err := utils.GenerateToken(user.ID, user.Name, user.Email, user.Role, testJWTSecret, -time.Minute)
	require.NoError(t, err)
	_, err = env.users.ResolveIdentity(ctx, expired)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
	assert.ErrorIs(t, err, utils.ErrExpiredToken)

	// token ยังไม่หมดอายุแต่ user ถูกลบไปแล้ว
	require.NoError(t, env.users.DeleteUser(ctx, actor, user.ID))
	assert.False(t, env.cache.has(identityCacheKey(user.ID)))
	_, err = env.users.ResolveIdentity(ctx, token)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	alice := env.createUser(t, "alice@example.com", models.RoleUser)
	bob := env.createUser(t, "bob@example.com", models.RoleUser)

	renamed, err := env.users.UpdateUser(ctx, alice, alice.ID, &dto.UpdateUserRequest{Name: "Alice Liddell"})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", renamed.Name)

	_, err = env.users.UpdateUser(ctx, alice, alice.ID, &dto.UpdateUserRequest{Role: models.RoleAdmin})
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = env.users.UpdateUser(ctx, alice, bob.ID, &dto.UpdateUserRequest{Name: "Bobby"})
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = env.users.UpdateUser(ctx, alice, alice.ID, &dto.UpdateUserRequest{Email: "bob@example.com"})
	assert.ErrorIs(t, err, services.ErrValidation)

	promoted, err := env.users.UpdateUser(ctx, admin, bob.ID, &dto.UpdateUserRequest{Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)
}

func TestDeleteUserReferencedByTask(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	alice := env.createUser(t, "alice@example.com", models.RoleUser)
	bob := env.createUser(t, "bob@example.com", models.RoleUser)

	task, err := env.tasks.CreateTask(ctx, admin, createRequest(alice.ID), nil)
	require.NoError(t, err)

	assert.ErrorIs(t, env.users.DeleteUser(ctx, bob, alice.ID), services.ErrForbidden)
	assert.ErrorIs(t, env.users.DeleteUser(ctx, admin, alice.ID), services.ErrConflict)

	require.NoError(t, env.tasks.DeleteTask(ctx, admin, task.ID))
	require.NoError(t, env.users.DeleteUser(ctx, admin, alice.ID))

	_, err = env.users.GetUser(ctx, alice.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}
