package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/policy"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	pkg_hash "github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type AuthService struct {
	Repo       *repo.GormRepo
	Secret     []byte
	TokenTTL   time.Duration
	BcryptCost int
	Notifier   *Notifier
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateStruct(req).OrNil(); err != nil {
		return nil, err
	}

	pwHash, err := pkg_hash.HashPassword(req.Password, s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         policy.RoleCustomer,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, fmt.Errorf("register %s: %w", user.Email, ErrDuplicateEmail)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	l.Info("user_registered", "user_id", user.ID)
	s.Notifier.publish(ctx, l, events.TopicUsers, user.ID.String(), events.Event{
		Type:   events.UserRegistered,
		ID:     user.ID.String(),
		UserID: user.ID.String(),
		Data:   map[string]any{"email": user.Email, "name": user.Name},
	})
	return &user, nil
}

// Login reports unknown emails and wrong passwords as different errors; clients
// of the storefront rely on the distinction.
func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*LoginResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validateStruct(req).OrNil(); err != nil {
		return nil, err
	}

	user, err := s.Repo.UserByEmail(ctx, req.Email)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("login %s: %w", req.Email, ErrUserNotFound)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, req.Password) {
		return nil, fmt.Errorf("login %s: %w", req.Email, ErrInvalidCredentials)
	}

	tok, exp, err := tokens.Issue(s.Secret, user.ID, user.Role, time.Now(), s.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Token: tok, ExpiresAt: exp, User: user}, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, caller policy.Identity, userID uuid.UUID, req transport.PasswordRequest) error {
	if err := validateStruct(req).OrNil(); err != nil {
		return err
	}
	if err := policy.Authorize(caller, policy.ChangePassword, policy.Resource{OwnerID: userID}); err != nil {
		return err
	}

	pwHash, err := pkg_hash.HashPassword(req.Password, s.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	n, err := s.Repo.UpdatePassword(ctx, userID, pwHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrUserNotFound)
	}
	logging.FromContext(ctx).Info("password_changed", "user_id", userID)
	return nil
}

func (s *AuthService) User(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	u, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrUserNotFound)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return u, nil
}

// EnsureAdmin creates the bootstrap admin account, or promotes an existing
// account with that email.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.ensure_admin")

	existing, err := s.Repo.UserByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != policy.RoleAdmin {
			if err := s.Repo.SetRole(ctx, existing.ID, policy.RoleAdmin); err != nil {
				return nil, fmt.Errorf("promote admin: %w", err)
			}
			existing.Role = policy.RoleAdmin
			l.Info("admin_promoted", "user_id", existing.ID)
		}
		return existing, nil
	case !repo.IsNotFound(err):
		return nil, fmt.Errorf("lookup admin: %w", err)
	}

	req := transport.RegisterRequest{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email), Password: password}
	if err := validateStruct(req).OrNil(); err != nil {
		return nil, err
	}
	pwHash, err := pkg_hash.HashPassword(password, s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	admin := models.User{Name: req.Name, Email: req.Email, PasswordHash: pwHash, Role: policy.RoleAdmin}
	if err := s.Repo.CreateUser(ctx, &admin); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	l.Info("admin_created", "user_id", admin.ID)
	return &admin, nil
}
