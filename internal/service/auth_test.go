package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/policy"
	"github.com/Skotchmaster/storefront/internal/transport"
	pkg_hash "github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var testSecret = []byte("test-secret")

func newAuth(e *env) *AuthService {
	return &AuthService{
		Repo:       e.repo,
		Secret:     testSecret,
		TokenTTL:   time.Hour,
		BcryptCost: 4,
		Notifier:   e.notifier,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	svc := newAuth(e)
	ctx := context.Background()

	u, err := svc.Register(ctx, transport.RegisterRequest{Name: " Alice ", Email: "Alice@Example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, policy.RoleCustomer, u.Role)
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.Len(t, e.events.OfType(events.UserRegistered), 1)

	res, err := svc.Login(ctx, transport.LoginRequest{Email: "ALICE@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)

	claims, err := tokens.Parse(res.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, policy.RoleCustomer, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)
}

func TestRegister_DuplicateEmailKeepsOriginal(t *testing.T) {
	e := newEnv(t)
	svc := newAuth(e)
	ctx := context.Background()

	orig, err := svc.Register(ctx, transport.RegisterRequest{Name: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, transport.RegisterRequest{Name: "mallory", Email: "ALICE@example.com", Password: "other-pass"})
	require.ErrorIs(t, err, ErrDuplicateEmail)

	var stored models.User
	require.NoError(t, e.db.Where("id = ?", orig.ID).First(&stored).Error)
	assert.Equal(t, "alice", stored.Name)
	assert.True(t, pkg_hash.CheckPassword(stored.PasswordHash, "secret123"))

	var n int64
	require.NoError(t, e.db.Model(&models.User{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestRegister_Validation(t *testing.T) {
	svc := newAuth(newEnv(t))

	_, err := svc.Register(context.Background(), transport.RegisterRequest{Email: "nope", Password: "123"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.has("name"))
	assert.True(t, ve.has("email"))
	assert.True(t, ve.has("psw"))
}

func TestLogin_Failures(t *testing.T) {
	e := newEnv(t)
	svc := newAuth(e)
	ctx := context.Background()
	_, err := svc.Register(ctx, transport.RegisterRequest{Name: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, transport.LoginRequest{Email: "bob@example.com", Password: "secret123"})
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Login(ctx, transport.LoginRequest{Email: "alice@example.com", Password: "wrong-pass"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	e := newEnv(t)
	svc := newAuth(e)
	ctx := context.Background()
	alice, err := svc.Register(ctx, transport.RegisterRequest{Name: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	bob, err := svc.Register(ctx, transport.RegisterRequest{Name: "bob", Email: "bob@example.com", Password: "secret123"})
	require.NoError(t, err)

	aliceID := policy.Identity{UserID: alice.ID, Role: alice.Role}
	err = svc.ChangePassword(ctx, aliceID, bob.ID, transport.PasswordRequest{Password: "newpass1"})
	require.ErrorIs(t, err, policy.ErrForbidden)

	err = svc.ChangePassword(ctx, aliceID, alice.ID, transport.PasswordRequest{Password: "x"})
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.ChangePassword(ctx, aliceID, alice.ID, transport.PasswordRequest{Password: "newpass1"}))
	_, err = svc.Login(ctx, transport.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, transport.LoginRequest{Email: "alice@example.com", Password: "newpass1"})
	require.NoError(t, err)

	ghost := uuid.New()
	err = svc.ChangePassword(ctx, policy.Identity{UserID: ghost, Role: policy.RoleCustomer}, ghost, transport.PasswordRequest{Password: "newpass1"})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	e := newEnv(t)
	svc := newAuth(e)
	ctx := context.Background()

	admin, err := svc.EnsureAdmin(ctx, "admin", "admin@example.com", "adminpass")
	require.NoError(t, err)
	assert.Equal(t, policy.RoleAdmin, admin.Role)

	again, err := svc.EnsureAdmin(ctx, "admin", "admin@example.com", "adminpass")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	bob, err := svc.Register(ctx, transport.RegisterRequest{Name: "bob", Email: "bob@example.com", Password: "secret123"})
	require.NoError(t, err)
	promoted, err := svc.EnsureAdmin(ctx, "bob", "bob@example.com", "ignored1")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, promoted.ID)

	u, err := svc.User(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, policy.RoleAdmin, u.Role)
}
